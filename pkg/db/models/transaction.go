package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/pkg/enums"
)

// Transaction is one income or expense fact scoped to a store. Rows are
// immutable once written; only creation and deletion exist.
type Transaction struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID              `gorm:"column:store_id;type:uuid;not null;index"`
	Type      enums.TransactionType  `gorm:"column:type;type:text;not null"`
	Amount    decimal.Decimal        `gorm:"column:amount;type:numeric(14,2);not null"`
	Category  *enums.ExpenseCategory `gorm:"column:category;type:text"`
	Note      *string                `gorm:"column:note"`
	Date      time.Time              `gorm:"column:date;not null;index"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
