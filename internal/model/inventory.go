package model

import (
	"time"
)

// MovementType classifies a stock movement. "in" and "out" carry a positive
// quantity and the sign is implied; "adjustment" carries an explicit signed
// delta supplied by the caller.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut || t == MovementAdjustment
}

// InventoryLog is one row of the append-only stock audit trail. Quantity is
// the signed delta as applied to the product; CurrentStock snapshots the
// stock right after the movement. Rows are never updated or deleted.
type InventoryLog struct {
	ID           uint         `json:"id" gorm:"primarykey"`
	ProductID    uint         `json:"product_id" gorm:"index;not null"`
	UserID       *uint        `json:"user_id,omitempty" gorm:"index"`
	Type         MovementType `json:"type" gorm:"type:varchar(20);not null"`
	Quantity     int          `json:"quantity" gorm:"not null"`
	CurrentStock int          `json:"current_stock" gorm:"not null"`
	Note         string       `json:"note" gorm:"type:varchar(255)"`
	CreatedAt    time.Time    `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
