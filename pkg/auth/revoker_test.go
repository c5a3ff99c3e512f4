package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisRevoker(client)
	ctx := context.Background()

	if revoked, err := r.IsRevoked(ctx, "tok"); err != nil || revoked {
		t.Fatalf("fresh token: revoked=%v err=%v", revoked, err)
	}
	if err := r.Revoke(ctx, "tok", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, err := r.IsRevoked(ctx, "tok"); err != nil || !revoked {
		t.Fatalf("after revoke: revoked=%v err=%v", revoked, err)
	}
	if !mr.Exists("blacklist:tok") {
		t.Fatalf("expected blacklist key in redis")
	}

	mr.FastForward(2 * time.Minute)
	if revoked, _ := r.IsRevoked(ctx, "tok"); revoked {
		t.Fatalf("revocation should expire with the token")
	}
}

func TestRedisRevoker_IgnoresExpiredTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := NewRedisRevoker(client)
	if err := r.Revoke(context.Background(), "tok", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mr.Exists("blacklist:tok") {
		t.Fatalf("already expired token should not be stored")
	}
}

func TestMemoryRevoker(t *testing.T) {
	r := NewMemoryRevoker()
	ctx := context.Background()

	_ = r.Revoke(ctx, "a", time.Minute)
	_ = r.Revoke(ctx, "b", time.Nanosecond)
	time.Sleep(time.Millisecond)

	if revoked, _ := r.IsRevoked(ctx, "a"); !revoked {
		t.Fatalf("a should be revoked")
	}
	if revoked, _ := r.IsRevoked(ctx, "b"); revoked {
		t.Fatalf("b should have expired")
	}
	if revoked, _ := r.IsRevoked(ctx, "c"); revoked {
		t.Fatalf("c was never revoked")
	}
}
