package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thereayou/groupchat/internal/config"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/pkg/auth"
)

func APIEndpoints(r *gin.Engine, cfg config.Config, h Handlers, jwtMgr *auth.JWTManager, revoker auth.TokenRevoker) {
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
		cors.New(corsConfig(cfg.CORS.AllowedOrigins)),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket, токен в ?token= или в заголовке
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, revoker), h.WebSocket.HandleWebSocket)

	api := r.Group("/api", gzip.Gzip(gzip.DefaultCompression))

	// Auth endpoints
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protected := api.Group("", middleware.AuthMiddleware(jwtMgr, revoker))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/me", h.Auth.Me)

		protected.POST("/contacts", h.Contacts.AddContact)
		protected.GET("/contacts", h.Contacts.ListContacts)
		protected.GET("/contacts/latest", h.Contacts.LatestMessages)
		protected.GET("/contacts/search/:query", h.Contacts.SearchUsers)
		protected.GET("/contacts/contact/:contactId", h.Contacts.GetContact)

		protected.GET("/messages/direct/:userId", h.Messages.GetDirectMessages)

		protected.POST("/groups", h.Groups.CreateGroup)
		protected.GET("/groups", h.Groups.ListGroups)
		protected.GET("/groups/:groupId", h.Groups.GetGroup)
		protected.PATCH("/groups/:groupId", h.Groups.RenameGroup)
		protected.DELETE("/groups/:groupId", h.Groups.DeleteGroup)
		protected.GET("/groups/:groupId/members", h.Groups.ListMembers)
		protected.POST("/groups/:groupId/members", h.Groups.AddMember)
		protected.DELETE("/groups/:groupId/members/:userId", h.Groups.RemoveMember)
		protected.POST("/groups/:groupId/admins", h.Groups.AddAdmin)
		protected.POST("/groups/:groupId/leave", h.Groups.LeaveGroup)
		protected.GET("/groups/:groupId/messages", h.Messages.GetGroupMessages)

		protected.POST("/uploads/presign", h.Uploads.Presign)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
