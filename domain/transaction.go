package domain

import "time"

// Transaction is an append-only ledger entry. Rows are never updated or deleted.
type Transaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FromID    uint64    `gorm:"column:from_id;not null;index" json:"fromId"`
	ToID      uint64    `gorm:"column:to_id;not null;index" json:"toId"`
	Amount    int64     `gorm:"column:amount;not null" json:"amount"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}
