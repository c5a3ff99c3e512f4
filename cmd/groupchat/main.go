package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/thereayou/groupchat/cmd/server"
	"github.com/thereayou/groupchat/internal/config"
)

func main() {
	server.LoadEnv()
	cfg := config.MustLoad()
	server.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}
