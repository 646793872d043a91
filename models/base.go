package models

import (
	"github.com/google/uuid"
)

// Roles stored on profiles.role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Supported deposit / withdrawal currencies
const (
	CryptoBTC  = "BTC"
	CryptoETH  = "ETH"
	CryptoUSDT = "USDT"
	CryptoXLM  = "XLM"
)

var SupportedCryptoTypes = []string{CryptoBTC, CryptoETH, CryptoUSDT, CryptoXLM}

func IsSupportedCrypto(cryptoType string) bool {
	for _, c := range SupportedCryptoTypes {
		if c == cryptoType {
			return true
		}
	}
	return false
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Profile{}, &InvestmentPlan{}, &Deposit{}, &ActiveInvestment{},
		&Withdrawal{}, &Transaction{}, &Referral{}, &Conversation{}, &Message{},
	}
}
