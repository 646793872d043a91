package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/yourusername/coinvest-api/models"
)

var ErrInvalidWalletAddress = errors.New("invalid wallet address")

var (
	btcAddress  = regexp.MustCompile(`^(bc1[a-z0-9]{25,62}|[13][a-km-zA-HJ-NP-Z1-9]{25,34})$`)
	evmAddress  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronAddress = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
)

// ValidateWalletAddress checks that address is well-formed for the given network.
// USDT is accepted on both ERC-20 and TRC-20 address formats.
func ValidateWalletAddress(cryptoType, address string) error {
	address = strings.TrimSpace(address)
	var ok bool
	switch cryptoType {
	case models.CryptoXLM:
		ok = strkey.IsValidEd25519PublicKey(address)
	case models.CryptoBTC:
		ok = btcAddress.MatchString(address)
	case models.CryptoETH:
		ok = evmAddress.MatchString(address)
	case models.CryptoUSDT:
		ok = evmAddress.MatchString(address) || tronAddress.MatchString(address)
	default:
		return fmt.Errorf("unsupported crypto type %q", cryptoType)
	}
	if !ok {
		return fmt.Errorf("%w for %s", ErrInvalidWalletAddress, cryptoType)
	}
	return nil
}
