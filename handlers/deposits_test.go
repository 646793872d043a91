package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func (s *testServer) postDeposit(t *testing.T, fields map[string]string, file []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("proof", "proof.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/deposits", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestCreateDeposit(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)
	token := s.token(t, s.user)

	var uploadedKey, uploadedType string
	s.storage.UploadProofFunc = func(key string, body []byte, contentType string) (string, error) {
		uploadedKey, uploadedType = key, contentType
		assert.Equal(t, pngHeader, body)
		return "https://storage.example.com/" + key, nil
	}

	valid := map[string]string{"plan_id": plan.ID.String(), "amount": "250", "crypto_type": "BTC", "tx_hash": "abc"}

	t.Run("Valid Request", func(t *testing.T) {
		w := s.postDeposit(t, valid, pngHeader, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var deposit models.Deposit
		decodeJSON(t, w, &deposit)
		assert.Equal(t, models.DepositStatusPending, deposit.Status)
		assert.Equal(t, s.cfg.Wallets["BTC"], deposit.WalletAddress)
		assert.Contains(t, deposit.ProofImageURL, uploadedKey)
		assert.Contains(t, uploadedKey, "proofs/"+s.user.ID.String()+"/")
		assert.Equal(t, "image/png", uploadedType)
	})

	tests := []struct {
		name     string
		override map[string]string
		file     []byte
		want     int
	}{
		{"Below Plan Minimum", map[string]string{"amount": "50"}, pngHeader, http.StatusBadRequest},
		{"Above Plan Maximum", map[string]string{"amount": "1000.01"}, pngHeader, http.StatusBadRequest},
		{"Unparseable Amount", map[string]string{"amount": "lots"}, pngHeader, http.StatusBadRequest},
		{"Unsupported Crypto", map[string]string{"crypto_type": "DOGE"}, pngHeader, http.StatusBadRequest},
		{"No Wallet For Crypto", map[string]string{"crypto_type": "ETH"}, pngHeader, http.StatusBadRequest},
		{"Unknown Plan", map[string]string{"plan_id": "7f7e1c1e-9a59-4f38-8c1a-2d6c1b0a9e11"}, pngHeader, http.StatusNotFound},
		{"Missing Proof", nil, nil, http.StatusBadRequest},
		{"Proof Not An Image", nil, []byte("%PDF-1.4 not an image"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{}
			for k, v := range valid {
				fields[k] = v
			}
			for k, v := range tt.override {
				fields[k] = v
			}
			w := s.postDeposit(t, fields, tt.file, token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, int64(1), testutil.Count(t, s.db, &models.Deposit{}, ""), "rejected submissions must not create rows")
}

func TestCreateDepositStorageFailures(t *testing.T) {
	t.Run("Storage Not Configured", func(t *testing.T) {
		s := newTestServer(t, func(d *Dependencies) { d.Storage = nil })
		plan := testutil.CreatePlan(t, s.db)
		w := s.postDeposit(t, map[string]string{"plan_id": plan.ID.String(), "amount": "250", "crypto_type": "BTC"}, pngHeader, s.token(t, s.user))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Upload Error", func(t *testing.T) {
		s := newTestServer(t)
		s.storage.UploadProofFunc = func(string, []byte, string) (string, error) { return "", errors.New("bucket gone") }
		plan := testutil.CreatePlan(t, s.db)
		w := s.postDeposit(t, map[string]string{"plan_id": plan.ID.String(), "amount": "250", "crypto_type": "BTC"}, pngHeader, s.token(t, s.user))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "bucket gone")
		assert.Zero(t, testutil.Count(t, s.db, &models.Deposit{}, ""))
	})
}

func createPendingDeposit(t *testing.T, s *testServer, plan *models.InvestmentPlan, amount int64, crypto, txHash string) *models.Deposit {
	t.Helper()
	d := models.Deposit{
		UserID:        s.user.ID,
		PlanID:        plan.ID,
		Amount:        decimal.NewFromInt(amount),
		CryptoType:    crypto,
		WalletAddress: "platform-wallet",
		TxHash:        txHash,
		Status:        models.DepositStatusPending,
	}
	require.NoError(t, s.db.Create(&d).Error)
	return &d
}

func TestApproveDeposit(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)
	deposit := createPendingDeposit(t, s, plan, 400, models.CryptoBTC, "")
	adminToken := s.token(t, s.admin)

	w := s.do(t, http.MethodPost, "/api/admin/deposits/"+deposit.ID.String()+"/approve", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.ApprovalResult
	decodeJSON(t, w, &result)
	assert.Equal(t, decimal.NewFromInt(460).String(), result.Investment.ExpectedReturn.String())
	assert.Equal(t, decimal.NewFromInt(400).String(), result.Investment.PrincipalAmount.String())

	profile := testutil.Reload[models.Profile](t, s.db, s.user.ID)
	assert.Equal(t, decimal.NewFromInt(400).String(), profile.TotalInvested.String())

	w = s.do(t, http.MethodPost, "/api/admin/deposits/"+deposit.ID.String()+"/approve", nil, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int64(1), testutil.Count(t, s.db, &models.ActiveInvestment{}, ""))

	w = s.do(t, http.MethodPost, "/api/admin/deposits/not-a-uuid/approve", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectDeposit(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)
	deposit := createPendingDeposit(t, s, plan, 400, models.CryptoBTC, "")
	path := "/api/admin/deposits/" + deposit.ID.String() + "/reject"

	w := s.do(t, http.MethodPost, path, gin.H{}, s.token(t, s.admin))
	assert.Equal(t, http.StatusBadRequest, w.Code, "reason is required")

	w = s.do(t, http.MethodPost, path, gin.H{"reason": "amount mismatch"}, s.token(t, s.admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DepositStatusRejected, testutil.Reload[models.Deposit](t, s.db, deposit.ID).Status)
}

func TestListDeposits(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)
	mine := createPendingDeposit(t, s, plan, 150, models.CryptoBTC, "")
	createPendingDeposit(t, s, plan, 200, models.CryptoBTC, "")

	w := s.do(t, http.MethodGet, "/api/deposits", nil, s.token(t, s.user))
	require.Equal(t, http.StatusOK, w.Code)
	var deposits []models.Deposit
	decodeJSON(t, w, &deposits)
	assert.Len(t, deposits, 2)

	w = s.do(t, http.MethodGet, "/api/deposits/"+mine.ID.String(), nil, s.token(t, s.admin))
	assert.Equal(t, http.StatusNotFound, w.Code, "deposits are only visible to their owner")

	w = s.do(t, http.MethodGet, "/api/admin/deposits?status=pending&limit=1", nil, s.token(t, s.admin))
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data  []models.Deposit `json:"data"`
		Total int64            `json:"total"`
	}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Data, 1)

	w = s.do(t, http.MethodGet, "/api/wallets", nil, s.token(t, s.user))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), s.cfg.Wallets["BTC"])
}

func TestVerifyDeposit(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)
	xlm := createPendingDeposit(t, s, plan, 150, models.CryptoXLM, "abc123")
	btc := createPendingDeposit(t, s, plan, 150, models.CryptoBTC, "abc123")

	var checked string
	s.stellar.VerifyTransactionFunc = func(hash string) (bool, error) {
		checked = hash
		return true, nil
	}

	w := s.do(t, http.MethodGet, "/api/admin/deposits/"+xlm.ID.String()+"/verify", nil, s.token(t, s.admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", checked)
	assert.Contains(t, w.Body.String(), `"successful":true`)

	w = s.do(t, http.MethodGet, "/api/admin/deposits/"+btc.ID.String()+"/verify", nil, s.token(t, s.admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.stellar.VerifyTransactionFunc = func(string) (bool, error) { return false, errors.New("not found") }
	w = s.do(t, http.MethodGet, "/api/admin/deposits/"+xlm.ID.String()+"/verify", nil, s.token(t, s.admin))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestProofLinksAreSignedOnRead(t *testing.T) {
	s := newTestServer(t)
	plan := testutil.CreatePlan(t, s.db)

	w := s.postDeposit(t, map[string]string{"plan_id": plan.ID.String(), "amount": "250", "crypto_type": "BTC"}, pngHeader, s.token(t, s.user))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Deposit
	decodeJSON(t, w, &created)

	stored := testutil.Reload[models.Deposit](t, s.db, created.ID)
	require.NotEmpty(t, stored.ProofKey)

	s.storage.ProofURLFunc = func(key string) (string, error) {
		return "https://signed.example.com/" + key + "?sig=fresh", nil
	}
	want := "https://signed.example.com/" + stored.ProofKey + "?sig=fresh"
	adminToken := s.token(t, s.admin)

	w = s.do(t, http.MethodGet, "/api/admin/deposits", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []models.Deposit `json:"data"`
	}
	decodeJSON(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, want, page.Data[0].ProofImageURL)

	w = s.do(t, http.MethodGet, "/api/admin/deposits/"+created.ID.String()+"/proof", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var link map[string]string
	decodeJSON(t, w, &link)
	assert.Equal(t, want, link["url"])

	w = s.do(t, http.MethodGet, "/api/admin/users/"+s.user.ID.String(), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Deposits []models.Deposit `json:"deposits"`
	}
	decodeJSON(t, w, &detail)
	require.Len(t, detail.Deposits, 1)
	assert.Equal(t, want, detail.Deposits[0].ProofImageURL)

	t.Run("No Stored Key", func(t *testing.T) {
		legacy := createPendingDeposit(t, s, plan, 300, models.CryptoBTC, "")
		w := s.do(t, http.MethodGet, "/api/admin/deposits/"+legacy.ID.String()+"/proof", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Storage Disabled", func(t *testing.T) {
		s := newTestServer(t, func(d *Dependencies) { d.Storage = nil })
		d := createPendingDeposit(t, s, testutil.CreatePlan(t, s.db), 300, models.CryptoBTC, "")
		require.NoError(t, s.db.Model(d).Update("proof_key", "proofs/x/1.png").Error)
		w := s.do(t, http.MethodGet, "/api/admin/deposits/"+d.ID.String()+"/proof", nil, s.token(t, s.admin))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
