package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
)

// TransactionDTO is the transport shape for a ledger entry.
type TransactionDTO struct {
	ID        uuid.UUID              `json:"id"`
	StoreID   uuid.UUID              `json:"store_id"`
	Type      enums.TransactionType  `json:"type"`
	Amount    decimal.Decimal        `json:"amount"`
	Category  *enums.ExpenseCategory `json:"category,omitempty"`
	Note      *string                `json:"note,omitempty"`
	Date      time.Time              `json:"date"`
	CreatedAt time.Time              `json:"created_at"`
}

// CreateTransactionDTO holds the validated data for a new ledger entry.
type CreateTransactionDTO struct {
	StoreID  uuid.UUID
	Type     enums.TransactionType
	Amount   decimal.Decimal
	Category *enums.ExpenseCategory
	Note     *string
	Date     time.Time
}

func FromModel(tx *models.Transaction) *TransactionDTO {
	if tx == nil {
		return nil
	}
	return &TransactionDTO{
		ID:        tx.ID,
		StoreID:   tx.StoreID,
		Type:      tx.Type,
		Amount:    tx.Amount,
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date,
		CreatedAt: tx.CreatedAt,
	}
}

func FromModels(rows []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateTransactionDTO) ToModel() *models.Transaction {
	return &models.Transaction{
		StoreID:  c.StoreID,
		Type:     c.Type,
		Amount:   c.Amount,
		Category: c.Category,
		Note:     c.Note,
		Date:     c.Date,
	}
}
