package summary

import (
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/internal/transactions"
)

// Summary aggregates a store's ledger over one date window.
type Summary struct {
	TotalIncome  decimal.Decimal               `json:"total_income"`
	TotalExpense decimal.Decimal               `json:"total_expense"`
	Net          decimal.Decimal               `json:"net"`
	Transactions []transactions.TransactionDTO `json:"transactions"`
}
