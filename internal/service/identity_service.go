package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/suar-net/suar-relay/internal/config"
	"github.com/suar-net/suar-relay/internal/model"
)

// TokenVerifier turns a bearer token into the identity it was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

type IdentityService struct {
	verifier TokenVerifier
	logger   *log.Logger
}

func NewIdentityService(v TokenVerifier, l *log.Logger) *IdentityService {
	return &IdentityService{
		verifier: v,
		logger:   l,
	}
}

// NewTokenVerifier builds the verifier selected by cfg.Mode.
func NewTokenVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	switch cfg.Mode {
	case "jwt":
		return NewJWTVerifier(cfg.JWTSecret, cfg.JWTAudience), nil
	case "remote":
		return NewRemoteVerifier(cfg.URL, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
	}
}

// Resolve extracts the bearer token from an Authorization header value and
// verifies it. It never returns an error: a missing header, a malformed one
// or a failed verification all resolve to (nil, false). The verifier is not
// called unless a bearer token is present.
func (s *IdentityService) Resolve(ctx context.Context, authHeader string) (*model.Identity, bool) {
	token, ok := BearerToken(authHeader)
	if !ok {
		return nil, false
	}

	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Printf("Token verification failed: %v", err)
		return nil, false
	}
	if identity == nil || identity.ID == "" {
		s.logger.Printf("Token verification returned no identity")
		return nil, false
	}
	return identity, true
}

// BearerToken returns the token of a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	headerParts := strings.SplitN(header, " ", 2)
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(headerParts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	audience string
}

func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*model.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &model.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

const maxIdentityResponseSize = 1 << 20

// RemoteVerifier asks an external identity service who a token belongs to
// via GET {baseURL}/auth/v1/user.
type RemoteVerifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRemoteVerifier(baseURL, apiKey string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrTokenInvalid
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxIdentityResponseSize)).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, ErrTokenInvalid
	}

	return &model.Identity{ID: user.ID, Email: user.Email}, nil
}
