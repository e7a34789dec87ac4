package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SafetyReport holds the token metrics the venue reports before entry.
type SafetyReport struct {
	TokenID      string          `json:"tokenId"`
	LiquidityUsd decimal.Decimal `json:"liquidityUsd"`
	BuyTaxPct    decimal.Decimal `json:"buyTaxPct"`
	SellTaxPct   decimal.Decimal `json:"sellTaxPct"`
	HolderCount  int             `json:"holderCount"`
	TopHolderPct decimal.Decimal `json:"topHolderPct"`
	IsHoneypot   bool            `json:"isHoneypot"`
	CheckedAt    time.Time       `json:"checkedAt"`
}

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderRequest struct {
	TokenID   string          `json:"tokenId"`
	Side      OrderSide       `json:"side"`
	AmountUsd decimal.Decimal `json:"amountUsd"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderReceipt struct {
	TxID        string    `json:"txId"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}
