package rest_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collectibles/internal/aggregator"
	"github.com/feral-file/ff-collectibles/internal/api/middleware"
	"github.com/feral-file/ff-collectibles/internal/api/rest"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
	"github.com/feral-file/ff-collectibles/internal/mocks"
)

const (
	ethWallet = "0x1111111111111111111111111111111111111111"
	solWallet = "86xCnPeV69n6t3DnyGvkKobf9FdN2H9oiVDdaMpo2MMY"
	contract  = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type response struct {
	Chains  map[string]map[string][]domain.Collectible `json:"chains"`
	Errors  map[string]string                          `json:"errors"`
	Partial bool                                       `json:"partial"`
	Count   int                                        `json:"count"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T, maxWallets int, auth middleware.AuthConfig) (*mocks.MockAggregator, *gin.Engine) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	agg := mocks.NewMockAggregator(ctrl)
	router := gin.New()
	router.Use(middleware.RequestID())
	rest.SetupRoutes(router, rest.NewHandler(agg, maxWallets), auth)
	return agg, router
}

func doGet(t *testing.T, router *gin.Engine, target string, headers ...string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func ethSnapshot() *aggregator.Snapshot {
	return &aggregator.Snapshot{Chains: map[domain.Blockchain]domain.CollectibleState{
		domain.BlockchainEthereum: {
			ethWallet: {{ID: domain.KeyOf("1", contract), TokenID: "1", ContractAddress: contract, Wallet: ethWallet, IsOwned: true}},
		},
		domain.BlockchainSolana: {},
	}}
}

func TestHandler_GetCollectibles(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{})

	agg.EXPECT().
		GetAllCollectibles(gomock.Any(), []string{ethWallet, solWallet}).
		Return(ethSnapshot(), nil)

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet+","+solWallet+"&wallet="+ethWallet)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Partial)
	assert.Empty(t, body.Errors)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Chains["ethereum"][ethWallet], 1)
	assert.Equal(t, domain.KeyOf("1", contract), body.Chains["ethereum"][ethWallet][0].ID)
	assert.True(t, body.Chains["ethereum"][ethWallet][0].IsOwned)
	assert.Empty(t, body.Chains["solana"])
	assert.NotEmpty(t, w.Header().Get(middleware.REQUEST_ID_HEADER))
}

func TestHandler_GetCollectibles_Partial(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{})

	snapshot := ethSnapshot()
	delete(snapshot.Chains, domain.BlockchainSolana)
	partial := &aggregator.PartialError{Errors: map[domain.Blockchain]error{
		domain.BlockchainSolana: errors.New("rpc unavailable"),
	}}
	require.ErrorIs(t, partial, domain.ErrPartialResult)

	agg.EXPECT().GetAllCollectibles(gomock.Any(), gomock.Any()).Return(snapshot, partial)

	w, body := doGet(t, router, "/api/v1/collectibles?wallet="+ethWallet+"&wallet="+solWallet)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Partial)
	assert.Equal(t, "rpc unavailable", body.Errors["solana"])
	assert.Len(t, body.Chains["ethereum"][ethWallet], 1)
}

func TestHandler_GetCollectibles_AllChainsFailed(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{})

	failure := fmt.Errorf("wrapped: %w", domain.ErrAllChainsFailed)
	agg.EXPECT().GetAllCollectibles(gomock.Any(), gomock.Any()).Return(&aggregator.Snapshot{}, failure)

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "upstream_error", body.Error.Code)
	assert.False(t, body.Partial)
}

func TestHandler_GetCollectibles_Timeout(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{})

	agg.EXPECT().
		GetAllCollectibles(gomock.Any(), gomock.Any()).
		Return(&aggregator.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrAllChainsFailed, context.DeadlineExceeded))

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "timeout", body.Error.Code)
}

func TestHandler_GetCollectibles_UnexpectedError(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{})

	agg.EXPECT().GetAllCollectibles(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", body.Error.Code)
}

func TestHandler_GetCollectibles_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{name: "no wallets", query: "", status: http.StatusBadRequest, code: "bad_request"},
		{name: "blank wallets", query: "?wallets=,%20,", status: http.StatusBadRequest, code: "bad_request"},
		{name: "invalid ethereum address", query: "?wallets=0x1234", status: http.StatusBadRequest, code: "validation_failed"},
		{name: "invalid solana address", query: "?wallet=not-base58!", status: http.StatusBadRequest, code: "validation_failed"},
		{
			name:   "too many wallets",
			query:  "?wallets=" + strings.Join([]string{ethWallet, solWallet, "0x2222222222222222222222222222222222222222"}, ","),
			status: http.StatusUnprocessableEntity,
			code:   "too_many_wallets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setupRouter(t, 2, middleware.AuthConfig{})

			w, body := doGet(t, router, "/api/v1/collectibles"+tt.query)

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandler_GetCollectibles_RequiresAuth(t *testing.T) {
	agg, router := setupRouter(t, 10, middleware.AuthConfig{APIKeys: []string{"secret"}})

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", body.Error.Code)

	agg.EXPECT().GetAllCollectibles(gomock.Any(), gomock.Any()).Return(ethSnapshot(), nil)

	w, _ = doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet, "Authorization", "ApiKey secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func signedToken(t *testing.T, maxWallets int) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, middleware.Claims{
		MaxWallets: maxWallets,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "client-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(key)
	require.NoError(t, err)

	return token, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestHandler_GetCollectibles_TokenWalletLimit(t *testing.T) {
	token, publicPEM := signedToken(t, 1)
	agg, router := setupRouter(t, 10, middleware.AuthConfig{JWTPublicKey: publicPEM})

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet+","+solWallet, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "too_many_wallets", body.Error.Code)

	agg.EXPECT().GetAllCollectibles(gomock.Any(), []string{ethWallet}).Return(ethSnapshot(), nil)

	w, _ = doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GetCollectibles_TokenCannotRaiseServerLimit(t *testing.T) {
	token, publicPEM := signedToken(t, 5)
	_, router := setupRouter(t, 1, middleware.AuthConfig{JWTPublicKey: publicPEM})

	w, body := doGet(t, router, "/api/v1/collectibles?wallets="+ethWallet+","+solWallet, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "too_many_wallets", body.Error.Code)
}

func TestHandler_HealthCheck(t *testing.T) {
	_, router := setupRouter(t, 10, middleware.AuthConfig{APIKeys: []string{"secret"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
