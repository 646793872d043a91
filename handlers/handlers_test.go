package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/logging"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/notify"
	"github.com/yourusername/coinvest-api/testutil"
	"gorm.io/gorm"
)

type MockMailer struct {
	mu       sync.Mutex
	subjects []string
}

func (m *MockMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

type MockStorage struct {
	UploadProofFunc func(key string, body []byte, contentType string) (string, error)
	ProofURLFunc    func(key string) (string, error)
}

func (m *MockStorage) ProofURL(ctx context.Context, key string) (string, error) {
	if m.ProofURLFunc != nil {
		return m.ProofURLFunc(key)
	}
	return "https://storage.example.com/" + key, nil
}

func (m *MockStorage) UploadProof(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.UploadProofFunc != nil {
		return m.UploadProofFunc(key, data, contentType)
	}
	return "https://storage.example.com/" + key, nil
}

type MockStellarClient struct {
	ValidateAccountFunc   func(accountID string) error
	VerifyTransactionFunc func(txHash string) (bool, error)
	BuildPayoutTxFunc     func(destination, amount string) (string, error)
}

func (m *MockStellarClient) ValidateAccount(accountID string) error {
	return m.ValidateAccountFunc(accountID)
}

func (m *MockStellarClient) VerifyTransaction(txHash string) (bool, error) {
	return m.VerifyTransactionFunc(txHash)
}

func (m *MockStellarClient) BuildPayoutTx(destination, amount string) (string, error) {
	return m.BuildPayoutTxFunc(destination, amount)
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	mailer  *MockMailer
	storage *MockStorage
	stellar *MockStellarClient
	admin   *models.Profile
	user    *models.Profile
}

func newTestServer(t *testing.T, mutate ...func(*Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	cfg := testutil.Config()
	log := logging.Discard()
	mailer := &MockMailer{}
	notifier := notify.New(mailer, log)
	t.Cleanup(notifier.Wait)

	s := &testServer{
		db:      db,
		cfg:     cfg,
		mailer:  mailer,
		storage: &MockStorage{},
		stellar: &MockStellarClient{
			ValidateAccountFunc:   func(string) error { return nil },
			VerifyTransactionFunc: func(string) (bool, error) { return true, nil },
			BuildPayoutTxFunc:     func(string, string) (string, error) { return "base64_xdr", nil },
		},
		admin: testutil.CreateProfile(t, db, models.Profile{Email: "admin@example.com", Role: models.RoleAdmin}),
		user:  testutil.CreateProfile(t, db, models.Profile{Email: "user@example.com"}),
	}

	deps := Dependencies{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Notifier: notifier,
		Storage:  s.storage,
		Stellar:  s.stellar,
	}
	for _, m := range mutate {
		m(&deps)
	}
	s.router = SetupRoutes(deps)
	return s
}

func (s *testServer) token(t *testing.T, p *models.Profile) string {
	t.Helper()
	token, err := middleware.GenerateToken(p.ID, p.Role, middleware.PurposeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
