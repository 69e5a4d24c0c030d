package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"adpnorm/internal/config"
	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

const accessAudience = "access"

// Claims represents the JWT claims of an authenticated API client.
type Claims struct {
	jwt.RegisteredClaims
	ClientRef uuid.UUID `json:"client_ref"`
	ClientID  string    `json:"client_id"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenInput is the DTO for client credential exchange.
type TokenInput struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required,min=8"`
}

// RegisterClientInput is the DTO for creating an API client.
type RegisterClientInput struct {
	Name         string
	ClientID     string
	ClientSecret string
}

// AuthService defines the authentication contract.
type AuthService interface {
	IssueToken(ctx context.Context, input TokenInput) (*Token, error)
	ValidateToken(tokenString string) (*Claims, error)
	RegisterClient(ctx context.Context, input RegisterClientInput) (*domain.APIClient, error)
}

type authService struct {
	clientRepo port.APIClientRepository
	cfg        config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(clientRepo port.APIClientRepository, cfg config.JWTConfig) AuthService {
	return &authService{
		clientRepo: clientRepo,
		cfg:        cfg,
	}
}

func (s *authService) IssueToken(ctx context.Context, input TokenInput) (*Token, error) {
	client, err := s.clientRepo.GetByClientID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.IssueToken: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(input.ClientSecret)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiry := now.Add(s.cfg.AccessTokenExpiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		ClientRef: client.ID,
		ClientID:  client.ClientID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiry,
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, accessAudience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *authService) RegisterClient(ctx context.Context, input RegisterClientInput) (*domain.APIClient, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" || len(input.ClientSecret) < 8 {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.ClientSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth.RegisterClient: hashing secret: %w", err)
	}

	client := &domain.APIClient{
		ID:         uuid.New(),
		ClientID:   clientID,
		SecretHash: string(hash),
		Name:       strings.TrimSpace(input.Name),
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
