package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/apperr"
	"reviewhub/internal/httpapi/credentials"
	"reviewhub/internal/httpapi/models"
)

func newTestAuthService(userRepo *MockUserRepository, mailer *MockMailer, ttl time.Duration) AuthService {
	cfg := &config.Config{JWTSecret: "test-secret", AccessTokenTTL: ttl}
	return NewAuthService(userRepo, mailer, cfg, zap.NewNop())
}

func TestRequestSignup_NewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	userRepo.On("FindByUsername", mock.Anything, "leto").Return(nil, apperr.NotFoundf("user not found"))
	userRepo.On("FindByEmail", mock.Anything, "leto@arrakis.io").Return(nil, apperr.NotFoundf("user not found"))
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mailer.On("Send", "confirmation_code", mock.AnythingOfType("string"), []string{"leto@arrakis.io"}).Return(nil)

	user, err := svc.RequestSignup(context.Background(), "leto", "leto@arrakis.io")
	require.NoError(t, err)
	assert.Equal(t, "leto", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ConfirmationCodeHash)

	userRepo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRequestSignup_ReservedUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	for _, name := range []string{"me", "Me", "ME"} {
		_, err := svc.RequestSignup(context.Background(), name, "me@arrakis.io")
		assert.ErrorIs(t, err, apperr.ErrValidation, "username %q", name)
	}
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestSignup_RepeatRotatesCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	existing := &models.User{
		ID:                   "u-1",
		Username:             "leto",
		Email:                "leto@arrakis.io",
		Role:                 models.RoleUser,
		ConfirmationCodeHash: "old-hash",
	}
	userRepo.On("FindByUsername", mock.Anything, "leto").Return(existing, nil)
	userRepo.On("FindByEmail", mock.Anything, "leto@arrakis.io").Return(existing, nil)
	userRepo.On("Save", mock.Anything, existing).Return(nil)
	mailer.On("Send", "confirmation_code", mock.AnythingOfType("string"), []string{"leto@arrakis.io"}).Return(nil)

	user, err := svc.RequestSignup(context.Background(), "leto", "leto@arrakis.io")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.NotEqual(t, "old-hash", user.ConfirmationCodeHash)

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestRequestSignup_Conflicts(t *testing.T) {
	t.Run("username taken by another email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := newTestAuthService(userRepo, mailer, time.Hour)

		other := &models.User{ID: "u-1", Username: "leto", Email: "other@arrakis.io"}
		userRepo.On("FindByUsername", mock.Anything, "leto").Return(other, nil)
		userRepo.On("FindByEmail", mock.Anything, "leto@arrakis.io").Return(nil, apperr.NotFoundf("user not found"))

		_, err := svc.RequestSignup(context.Background(), "leto", "leto@arrakis.io")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("email taken by another username", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := newTestAuthService(userRepo, mailer, time.Hour)

		other := &models.User{ID: "u-2", Username: "paul", Email: "leto@arrakis.io"}
		userRepo.On("FindByUsername", mock.Anything, "leto").Return(nil, apperr.NotFoundf("user not found"))
		userRepo.On("FindByEmail", mock.Anything, "leto@arrakis.io").Return(other, nil)

		_, err := svc.RequestSignup(context.Background(), "leto", "leto@arrakis.io")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestRequestSignup_MailFailureFailsOperation(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	userRepo.On("FindByUsername", mock.Anything, "leto").Return(nil, apperr.NotFoundf("user not found"))
	userRepo.On("FindByEmail", mock.Anything, "leto@arrakis.io").Return(nil, apperr.NotFoundf("user not found"))
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mailer.On("Send", "confirmation_code", mock.AnythingOfType("string"), []string{"leto@arrakis.io"}).
		Return(assert.AnError)

	_, err := svc.RequestSignup(context.Background(), "leto", "leto@arrakis.io")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestConfirmSignup_UnknownUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, apperr.NotFoundf("user %q not found", "ghost"))

	_, err := svc.ConfirmSignup(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConfirmSignup_WrongCode(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	hash, err := credentials.HashCode("THECORRECTCODE00000000000000000A")
	require.NoError(t, err)
	user := &models.User{ID: "u-1", Username: "leto", Email: "leto@arrakis.io", ConfirmationCodeHash: hash}
	userRepo.On("FindByUsername", mock.Anything, "leto").Return(user, nil)

	_, err = svc.ConfirmSignup(context.Background(), "leto", "NOTTHECODE0000000000000000000000")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmSignup_IssuesTokenWithClaims(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	code := "THECORRECTCODE00000000000000000A"
	hash, err := credentials.HashCode(code)
	require.NoError(t, err)
	user := &models.User{
		ID:                   "u-1",
		Username:             "irulan",
		Email:                "irulan@corrino.io",
		Role:                 models.RoleModerator,
		IsSuperuser:          true,
		ConfirmationCodeHash: hash,
	}
	userRepo.On("FindByUsername", mock.Anything, "irulan").Return(user, nil)
	mailer.On("Send", "your_token", mock.AnythingOfType("string"), []string{"irulan@corrino.io"}).Return(nil)

	token, err := svc.ConfirmSignup(context.Background(), "irulan", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "irulan", claims.Username)
	assert.Equal(t, models.RoleModerator, claims.Role)
	assert.True(t, claims.Superuser)
}

func TestValidateToken_Invalid(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// a token signed under another secret must not validate
	otherCfg := &config.Config{JWTSecret: "other-secret", AccessTokenTTL: time.Hour}
	other := NewAuthService(userRepo, mailer, otherCfg, zap.NewNop()).(*authService)
	token, err := other.generateAccessToken(&models.User{ID: "u-1", Username: "leto", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestValidateToken_Expired(t *testing.T) {
	userRepo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newTestAuthService(userRepo, mailer, -time.Minute).(*authService)

	token, err := svc.generateAccessToken(&models.User{ID: "u-1", Username: "leto", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
