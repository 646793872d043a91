package utils

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/txnbuild"
)

var (
	ErrPayoutAccountNotConfigured = errors.New("stellar payout account not configured")
	ErrAccountNotFound            = errors.New("stellar account does not exist")
)

type StellarClientInterface interface {
	ValidateAccount(accountID string) error
	VerifyTransaction(txHash string) (bool, error)
	BuildPayoutTx(destination, amount string) (string, error)
}

type StellarClient struct {
	client        *horizonclient.Client
	payoutAccount string
}

func NewStellarClient(horizonURL, payoutAccount string) *StellarClient {
	return &StellarClient{
		client: &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       &http.Client{Timeout: 15 * time.Second},
		},
		payoutAccount: payoutAccount,
	}
}

// ValidateAccount checks that the account exists (is funded) on the ledger.
func (s *StellarClient) ValidateAccount(accountID string) error {
	if err := ValidateWalletAddress("XLM", accountID); err != nil {
		return err
	}
	_, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if horizonclient.IsNotFoundError(err) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	return nil
}

// VerifyTransaction reports whether a transaction with the given hash landed successfully on the ledger.
func (s *StellarClient) VerifyTransaction(txHash string) (bool, error) {
	tx, err := s.client.TransactionDetail(txHash)
	if err != nil {
		return false, fmt.Errorf("failed to load transaction: %w", err)
	}
	return tx.Successful, nil
}

// BuildPayoutTx returns an unsigned payment envelope from the platform payout account.
// The admin signs and submits it off-platform.
func (s *StellarClient) BuildPayoutTx(destination, amount string) (string, error) {
	if s.payoutAccount == "" {
		return "", ErrPayoutAccountNotConfigured
	}

	sourceAccount, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: s.payoutAccount})
	if err != nil {
		return "", fmt.Errorf("failed to load payout account: %w", err)
	}

	tx, err := BuildPaymentTx(&sourceAccount, destination, "XLM", "", amount)
	if err != nil {
		return "", err
	}

	xdr, err := tx.Base64()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction to XDR: %w", err)
	}
	return xdr, nil
}

func BuildPaymentTx(source txnbuild.Account, destination, assetCode, issuer, amount string) (*txnbuild.Transaction, error) {
	var asset txnbuild.Asset
	if assetCode == "XLM" {
		asset = txnbuild.NativeAsset{}
	} else {
		asset = txnbuild.CreditAsset{Code: assetCode, Issuer: issuer}
	}

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount:        source,
			IncrementSequenceNum: true,
			BaseFee:              txnbuild.MinBaseFee,
			Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
			Operations: []txnbuild.Operation{
				&txnbuild.Payment{
					Destination: destination,
					Amount:      amount,
					Asset:       asset,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment transaction: %w", err)
	}
	return tx, nil
}
