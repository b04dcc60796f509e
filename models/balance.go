package models

import "github.com/shopspring/decimal"

// WalletBalance is the balance held in a single wallet (spot or earn) for
// one asset.
type WalletBalance struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceData is a per-asset balance snapshot entry.
type BalanceData struct {
	Asset      string          `json:"asset"`
	AssetClass string          `json:"asset_class,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	Wallets    []WalletBalance `json:"wallets,omitempty"`
}

// BalanceUpdateData is a single ledger movement reported after the
// initial snapshot.
type BalanceUpdateData struct {
	LedgerID   string          `json:"ledger_id"`
	RefID      string          `json:"ref_id"`
	Timestamp  string          `json:"timestamp"`
	Type       string          `json:"type"`
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Fee        decimal.Decimal `json:"fee"`
	WalletType string          `json:"wallet_type"`
	WalletID   string          `json:"wallet_id"`
}
