package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suar-net/suar-relay/internal/config"
	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/ratelimit"
	"github.com/suar-net/suar-relay/internal/repository"
	"github.com/suar-net/suar-relay/internal/service"
)

const testSecret = "handler-test-secret"

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testEnv struct {
	router   http.Handler
	repo     *repository.MemoryRepository
	recorder *service.HistoryRecorder
}

func newTestEnv(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()
	logger := discardLogger()
	repo := repository.NewMemoryRepository()
	recorder := service.NewHistoryRecorder(repo.History(), time.Second, logger)
	cfg := config.DefaultRelayConfig()

	router := SetupRouter(Dependencies{
		ProxyService:       service.NewHTTPProxyService(cfg, recorder),
		IdentityService:    service.NewIdentityService(service.NewJWTVerifier(testSecret, ""), logger),
		HistoryService:     service.NewHistoryService(repo.History(), cfg.HistoryLimit),
		CollectionService:  service.NewCollectionService(repo.Collection()),
		EnvironmentService: service.NewEnvironmentService(repo.Environment()),
		Store:              repo,
		Limiter:            limiter,
		Logger:             logger,
	})

	return &testEnv{router: router, repo: repo, recorder: recorder}
}

func (e *testEnv) waitHistory(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.recorder.Wait(ctx))
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := model.Claims{
		Email: userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type mockProxyService struct {
	mock.Mock
}

func (m *mockProxyService) Relay(ctx context.Context, identity *model.Identity, dto *model.DTOProxyRequest) (*model.DTOProxyResponse, error) {
	args := m.Called(ctx, identity, dto)
	resp, _ := args.Get(0).(*model.DTOProxyResponse)
	return resp, args.Error(1)
}

type mockHistoryService struct {
	mock.Mock
}

func (m *mockHistoryService) List(ctx context.Context, identity *model.Identity) ([]*model.HistoryRecord, error) {
	args := m.Called(ctx, identity)
	records, _ := args.Get(0).([]*model.HistoryRecord)
	return records, args.Error(1)
}

func (m *mockHistoryService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	return m.Called(ctx, identity, id).Error(0)
}

type stubIdentity struct {
	identity *model.Identity
}

func (s stubIdentity) Resolve(ctx context.Context, authHeader string) (*model.Identity, bool) {
	if s.identity == nil || authHeader == "" {
		return nil, false
	}
	return s.identity, true
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error {
	return context.DeadlineExceeded
}
