package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/apperr"
	"reviewhub/internal/httpapi/credentials"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/mail"
)

// Claims is the resolved identity carried by a validated access token.
type Claims struct {
	UserID    string
	Username  string
	Role      string
	Superuser bool
}

type AuthService interface {
	// RequestSignup creates the user (or reuses a pending one with the
	// same username/email pairing), rotates the confirmation code and
	// emails it. The code never appears in the return value.
	RequestSignup(ctx context.Context, username, email string) (*models.User, error)

	// ConfirmSignup redeems a confirmation code for an access token.
	// Unknown username, wrong code and success are three distinct
	// outcomes.
	ConfirmSignup(ctx context.Context, username, code string) (string, error)

	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	mailer    mail.Mailer
	logger    *zap.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repository.UserRepository, mailer mail.Mailer, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		mailer:    mailer,
		logger:    logger,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.AccessTokenTTL,
	}
}

func (s *authService) RequestSignup(ctx context.Context, username, email string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	// Only the exact (username, email) pairing may be reused; either
	// half belonging to a different record is a conflict.
	var user *models.User
	switch {
	case byName == nil && byEmail == nil:
		user = &models.User{Username: username, Email: email, Role: models.RoleUser}
	case byName != nil && byName.Email == email:
		user = byName
	case byName != nil:
		return nil, apperr.Conflictf("username %q already taken", username)
	default:
		return nil, apperr.Conflictf("email already taken")
	}

	code, err := credentials.GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := credentials.HashCode(code)
	if err != nil {
		return nil, err
	}
	user.ConfirmationCodeHash = hash

	if user.ID == "" {
		err = s.userRepo.Create(ctx, user)
	} else {
		err = s.userRepo.Save(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send("confirmation_code", code, []string{email}); err != nil {
		return nil, err
	}

	s.logger.Info("signup requested", zap.String("username", username))
	return user, nil
}

func (s *authService) ConfirmSignup(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := credentials.VerifyCode(user.ConfirmationCodeHash, code); err != nil {
		return "", apperr.Validationf("confirmation code is not valid")
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", err
	}

	if err := s.mailer.Send("your_token", token, []string{user.Email}); err != nil {
		return "", err
	}

	s.logger.Info("signup confirmed", zap.String("username", username), zap.String("role", user.Role))
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"username":  user.Username,
		"role":      user.Role,
		"superuser": user.IsSuperuser,
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticatedf("token is invalid or expired")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticatedf("token claims malformed")
	}
	userID, _ := mapClaims["user_id"].(string)
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	superuser, _ := mapClaims["superuser"].(bool)
	if userID == "" || username == "" {
		return nil, apperr.Unauthenticatedf("token claims malformed")
	}

	return &Claims{UserID: userID, Username: username, Role: role, Superuser: superuser}, nil
}
