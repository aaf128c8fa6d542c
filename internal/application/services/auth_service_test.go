package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/config"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

type fakeAuthRepo struct {
	tokens map[string]*ports.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: make(map[string]*ports.RefreshToken)}
}

func (r *fakeAuthRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.tokens[tokenHash] = &ports.RefreshToken{
		ID:        len(r.tokens) + 1,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeAuthRepo) GetRefreshToken(_ context.Context, tokenHash string) (*ports.RefreshToken, error) {
	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return token, nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if token, ok := r.tokens[tokenHash]; ok {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-secret",
		ExpiresIn:        15 * time.Minute,
		RefreshExpiresIn: 24 * time.Hour,
		Issuer:           "toodoo-test",
	}
}

type authFixture struct {
	svc      *AuthService
	userRepo *fakeUserRepo
	authRepo *fakeAuthRepo
}

func newAuthFixture(users ...*entities.User) *authFixture {
	f := &authFixture{
		userRepo: newFakeUserRepo(users...),
		authRepo: newFakeAuthRepo(),
	}
	f.svc = NewAuthService(f.userRepo, f.authRepo, testJWTConfig(), logger.NewNop())
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "s3cret-pw",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("register did not return a token pair")
	}
	if resp.User.PasswordHash != "" {
		t.Error("password hash leaked in the response")
	}

	login, err := f.svc.Login(ctx, ports.LoginRequest{Email: "alice@example.com", Password: "s3cret-pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user = %v, want %v", login.User.ID, resp.User.ID)
	}

	if _, err := f.svc.Login(ctx, ports.LoginRequest{Email: "alice@example.com", Password: "wrong"}); err == nil {
		t.Error("wrong password accepted")
	}
	if _, err := f.svc.Login(ctx, ports.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pw"}); err == nil {
		t.Error("unknown email accepted")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	existing := &entities.User{
		ID: uuid.New(), Email: "taken@example.com", Username: "taken",
		PasswordHash: string(hash), IsActive: true,
	}
	f := newAuthFixture(existing)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email: "taken@example.com", Username: "fresh", Password: "pw",
	}); err == nil {
		t.Error("duplicate email accepted")
	}
	if _, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email: "fresh@example.com", Username: "taken", Password: "pw",
	}); err == nil {
		t.Error("duplicate username accepted")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	f := newAuthFixture(&entities.User{
		ID: uuid.New(), Email: "gone@example.com", Username: "gone",
		PasswordHash: string(hash), IsActive: false,
	})

	if _, err := f.svc.Login(context.Background(), ports.LoginRequest{Email: "gone@example.com", Password: "pw"}); err == nil {
		t.Error("inactive account accepted")
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email: "bob@example.com", Username: "bob", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	claims, err := f.svc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != resp.User.ID.String() || claims.Username != "bob" || claims.Email != "bob@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := f.svc.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}

	// A token signed with a different secret must be rejected.
	other := NewAuthService(f.userRepo, f.authRepo, config.JWTConfig{
		Secret: "other-secret", ExpiresIn: time.Minute, RefreshExpiresIn: time.Hour,
	}, logger.NewNop())
	foreign, err := other.generateAccessToken(resp.User)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	if _, err := f.svc.ValidateToken(foreign); err == nil {
		t.Error("token with wrong signature accepted")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email: "carol@example.com", Username: "carol", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rotated, err := f.svc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.RefreshToken == resp.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old token was revoked by the rotation.
	if _, err := f.svc.RefreshToken(ctx, resp.RefreshToken); err == nil {
		t.Error("revoked refresh token accepted")
	}

	if _, err := f.svc.RefreshToken(ctx, "ffffffffffffffff"); err == nil {
		t.Error("unknown refresh token accepted")
	}
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ports.RegisterRequest{
		Email: "dave@example.com", Username: "dave", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := f.svc.Logout(ctx, resp.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, resp.RefreshToken); err == nil {
		t.Error("refresh token survived logout")
	}
}
