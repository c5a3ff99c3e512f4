package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/pkg/auth"
)

func newTestAuth(t *testing.T) (*AuthService, *auth.MemoryRevoker) {
	t.Helper()
	revoker := auth.NewMemoryRevoker()
	svc := NewAuthService(newTestDB(t),
		auth.NewJWTManager("access-secret", 15*time.Minute),
		auth.NewJWTManager("refresh-secret", time.Hour),
		revoker)
	return svc, revoker
}

func register(t *testing.T, svc *AuthService, email string) UserView {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName:   "Alice",
		LastName:    "Liddell",
		Email:       email,
		PhoneNumber: "+1" + uuid.NewString()[:8],
		Password:    "wonderland",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	user := register(t, svc, " Alice@Example.com ")
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	_, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "alice@example.com", PhoneNumber: "+100", Password: "x"})
	assertKind(t, err, ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{FirstName: "A", Email: "b@example.com"})
	assertKind(t, err, ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	user := register(t, svc, "alice@example.com")

	_, err := svc.Login(ctx, "alice@example.com", "wrong")
	assertKind(t, err, ErrUnauthenticated)
	_, err = svc.Login(ctx, "nobody@example.com", "wonderland")
	assertKind(t, err, ErrUnauthenticated)

	tokens, err := svc.Login(ctx, "ALICE@example.com", "wonderland")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.User.ID != user.ID || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("unexpected tokens %+v", tokens)
	}

	me, err := svc.Me(ctx, user.ID)
	if err != nil || me.ID != user.ID {
		t.Fatalf("Me = %+v, %v", me, err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	register(t, svc, "alice@example.com")

	first, err := svc.Login(ctx, "alice@example.com", "wonderland")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Refresh(ctx, first.AccessToken)
	assertKind(t, err, ErrUnauthenticated)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assertKind(t, err, ErrUnauthenticated)
}

func TestLogout_RevokesAccessAndRefresh(t *testing.T) {
	svc, revoker := newTestAuth(t)
	ctx := context.Background()
	user := register(t, svc, "alice@example.com")

	tokens, err := svc.Login(ctx, "alice@example.com", "wonderland")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, user.ID, tokens.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	revoked, err := revoker.IsRevoked(ctx, tokens.AccessToken)
	if err != nil || !revoked {
		t.Fatalf("expected access token revoked, got %v %v", revoked, err)
	}
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assertKind(t, err, ErrUnauthenticated)

	err = svc.Logout(ctx, user.ID, "garbage")
	assertKind(t, err, ErrUnauthenticated)
}
