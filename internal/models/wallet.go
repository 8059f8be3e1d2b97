package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the installed pseudo-wallet. Address is derived from Mnemonic.
type Wallet struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

// TokenHolding is one token balance in the wallet's token list
type TokenHolding struct {
	Name    string          `json:"name"`
	Symbol  string          `json:"symbol"`
	Balance decimal.Decimal `json:"balance"`
	Value   decimal.Decimal `json:"value"`
}

// WalletView is what the presentation layer renders for the wallet screen
type WalletView struct {
	Wallet  *Wallet         `json:"wallet"`
	Balance decimal.Decimal `json:"balance"`
	Tokens  []TokenHolding  `json:"tokens"`
}

// SendReceipt is the result of a mock transfer
type SendReceipt struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}
