package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
	"github.com/thereayou/groupchat/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

type AuthTokens struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// AuthService регистрация, вход и выдача токенов
type AuthService struct {
	db      *database.Database
	access  *auth.JWTManager
	refresh *auth.JWTManager
	revoker auth.TokenRevoker
}

func NewAuthService(db *database.Database, access, refresh *auth.JWTManager, revoker auth.TokenRevoker) *AuthService {
	return &AuthService{db: db, access: access, refresh: refresh, revoker: revoker}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.PhoneNumber)
	if email == "" || phone == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" {
		return UserView{}, invalidInput("firstName, emailId, phoneNumber and password are required")
	}

	taken, err := s.db.UserTaken(ctx, email, phone)
	if err != nil {
		return UserView{}, internal("failed to check user", err)
	}
	if taken {
		return UserView{}, alreadyExists("user with this email or phone number already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, invalidInput("cannot hash password")
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return UserView{}, internal("failed to create user", err)
	}
	return newUserView(user), nil
}

// Login выдаёт access и refresh токены
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthTokens, error) {
	user, err := s.db.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, database.ErrNotFound) {
		return AuthTokens{}, unauthenticated("invalid credentials")
	}
	if err != nil {
		return AuthTokens{}, internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthTokens{}, unauthenticated("invalid credentials")
	}
	return s.issue(ctx, user)
}

// Refresh меняет refresh токен на новую пару. Старый refresh больше не действует.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	userID, err := s.refresh.UserID(refreshToken)
	if err != nil {
		return AuthTokens{}, unauthenticated("invalid refresh token")
	}
	user, err := s.db.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return AuthTokens{}, unauthenticated("invalid refresh token")
	}
	if err != nil {
		return AuthTokens{}, internal("failed to load user", err)
	}
	stored := []byte(user.RefreshTokenHash)
	if len(stored) == 0 || subtle.ConstantTimeCompare(stored, []byte(hashToken(refreshToken))) != 1 {
		return AuthTokens{}, unauthenticated("invalid refresh token")
	}
	return s.issue(ctx, user)
}

// Logout отзывает access токен до его истечения и сбрасывает refresh
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, accessToken string) error {
	exp, err := s.access.Expiry(accessToken)
	if err != nil {
		return unauthenticated("invalid token")
	}
	if err := s.revoker.Revoke(ctx, accessToken, time.Until(exp)); err != nil {
		return internal("failed to revoke token", err)
	}
	if err := s.db.UpdateRefreshTokenHash(ctx, userID, ""); err != nil {
		return internal("failed to clear refresh token", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (UserView, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return UserView{}, lookupErr(err, "user")
	}
	return newUserView(user), nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (AuthTokens, error) {
	access, err := s.access.Generate(user.ID)
	if err != nil {
		return AuthTokens{}, internal("could not generate token", err)
	}
	refresh, err := s.refresh.Generate(user.ID)
	if err != nil {
		return AuthTokens{}, internal("could not generate token", err)
	}
	if err := s.db.UpdateRefreshTokenHash(ctx, user.ID, hashToken(refresh)); err != nil {
		return AuthTokens{}, internal("failed to store refresh token", err)
	}
	return AuthTokens{User: newUserView(user), AccessToken: access, RefreshToken: refresh}, nil
}

// hashToken JWT длиннее 72 байт, поэтому bcrypt здесь не подходит
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
