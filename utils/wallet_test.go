package utils

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWalletAddress(t *testing.T) {
	kp, err := keypair.Random()
	require.NoError(t, err)

	tests := []struct {
		name       string
		cryptoType string
		address    string
		wantErr    bool
	}{
		{"Stellar public key", "XLM", kp.Address(), false},
		{"Stellar secret seed rejected", "XLM", kp.Seed(), true},
		{"Stellar garbage", "XLM", "GABC", true},
		{"Bitcoin legacy", "BTC", "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", false},
		{"Bitcoin bech32", "BTC", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", false},
		{"Bitcoin bad", "BTC", "0xdeadbeef", true},
		{"Ethereum", "ETH", "0x52908400098527886E0F7030069857D2E4169EE7", false},
		{"Ethereum short", "ETH", "0x5290840009852788", true},
		{"USDT ERC-20", "USDT", "0x52908400098527886E0F7030069857D2E4169EE7", false},
		{"USDT TRC-20", "USDT", "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8", false},
		{"Unsupported", "DOGE", "D8vFz4p1L37jdg47HXKtSHA5uYLYxbGgPD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWalletAddress(tt.cryptoType, tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
