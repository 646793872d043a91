package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/config"
	"github.com/yourusername/coinvest-api/middleware"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/services"
	"github.com/yourusername/coinvest-api/utils"
)

const maxProofSize = 5 << 20

type DepositHandler struct {
	deposits *services.DepositService
	storage  utils.ProofStorage
	stellar  utils.StellarClientInterface
	cfg      *config.Config
	log      *logrus.Logger
}

// NewDepositHandler wires the handler. storage and stellar may be nil when
// not configured; the endpoints that need them answer 503.
func NewDepositHandler(deposits *services.DepositService, storage utils.ProofStorage, stellar utils.StellarClientInterface, cfg *config.Config, log *logrus.Logger) *DepositHandler {
	return &DepositHandler{deposits: deposits, storage: storage, stellar: stellar, cfg: cfg, log: log}
}

type CreateDepositForm struct {
	PlanID     string `form:"plan_id" binding:"required,uuid"`
	Amount     string `form:"amount" binding:"required"`
	CryptoType string `form:"crypto_type" binding:"required,cryptotype"`
	TxHash     string `form:"tx_hash" binding:"max=128"`
}

type ReviewRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// Wallets lists the platform deposit address per currency.
func (h *DepositHandler) Wallets(c *gin.Context) {
	c.JSON(http.StatusOK, h.cfg.ConfiguredWallets())
}

func (h *DepositHandler) Create(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var form CreateDepositForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	input := services.DepositInput{
		PlanID:     uuid.MustParse(form.PlanID),
		Amount:     amount,
		CryptoType: form.CryptoType,
		TxHash:     form.TxHash,
	}
	if _, _, err := h.deposits.Validate(c.Request.Context(), input); err != nil {
		respondError(c, h.log, err)
		return
	}

	file, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Proof of payment image is required"})
		return
	}
	if file.Size > maxProofSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Proof image must be 5MB or smaller"})
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Proof storage is not configured"})
		return
	}

	key, url, status, err := h.uploadProof(c, profile.ID, file)
	if err != nil {
		if status == http.StatusInternalServerError {
			respondError(c, h.log, err)
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	input.ProofImageURL = url
	input.ProofKey = key

	deposit, err := h.deposits.Create(c.Request.Context(), profile, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

// uploadProof checks the file really is an image by sniffing its first bytes,
// then stores it. It returns the object key and a link to it.
func (h *DepositHandler) uploadProof(c *gin.Context, userID uuid.UUID, file *multipart.FileHeader) (string, string, int, error) {
	f, err := file.Open()
	if err != nil {
		return "", "", http.StatusBadRequest, fmt.Errorf("unreadable proof file")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", http.StatusBadRequest, fmt.Errorf("unreadable proof file")
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", http.StatusBadRequest, fmt.Errorf("proof must be an image")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", http.StatusInternalServerError, err
	}

	key := utils.ProofKey(userID.String(), time.Now(), filepath.Ext(file.Filename))
	url, err := h.storage.UploadProof(c.Request.Context(), key, f, file.Size, contentType)
	if err != nil {
		return "", "", http.StatusInternalServerError, err
	}
	return key, url, http.StatusOK, nil
}

// resignProofs replaces each stored link with a fresh one built from the key.
// Rows without a key keep whatever URL they were saved with.
func resignProofs(ctx context.Context, storage utils.ProofStorage, log *logrus.Logger, deposits []models.Deposit) {
	if storage == nil {
		return
	}
	for i := range deposits {
		d := &deposits[i]
		if d.ProofKey == "" {
			continue
		}
		url, err := storage.ProofURL(ctx, d.ProofKey)
		if err != nil {
			log.WithError(err).WithField("deposit_id", d.ID).Warn("failed to sign proof URL")
			continue
		}
		d.ProofImageURL = url
	}
}

func (h *DepositHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	deposits, err := h.deposits.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *DepositHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	deposit, err := h.deposits.GetForUser(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

func (h *DepositHandler) AdminList(c *gin.Context) {
	page := pageQuery(c)
	deposits, total, err := h.deposits.List(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resignProofs(c.Request.Context(), h.storage, h.log, deposits)
	c.JSON(http.StatusOK, paginated(deposits, total, page))
}

func (h *DepositHandler) Approve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	result, err := h.deposits.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DepositHandler) Reject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	deposit, err := h.deposits.Reject(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

// Proof answers with a freshly signed link to the deposit's proof image.
func (h *DepositHandler) Proof(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	deposit, err := h.deposits.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if deposit.ProofKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deposit has no stored proof"})
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Proof storage is not configured"})
		return
	}

	url, err := h.storage.ProofURL(c.Request.Context(), deposit.ProofKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit_id": deposit.ID, "url": url})
}

// Verify looks an XLM deposit's transaction hash up on Horizon.
func (h *DepositHandler) Verify(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	deposit, err := h.deposits.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if deposit.CryptoType != models.CryptoXLM || deposit.TxHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only XLM deposits with a transaction hash can be verified on-chain"})
		return
	}
	if h.stellar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stellar client is not configured"})
		return
	}

	successful, err := h.stellar.VerifyTransaction(deposit.TxHash)
	if err != nil {
		h.log.WithError(err).WithField("deposit_id", deposit.ID).Warn("horizon lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to verify transaction: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deposit_id": deposit.ID,
		"tx_hash":    deposit.TxHash,
		"successful": successful,
	})
}
