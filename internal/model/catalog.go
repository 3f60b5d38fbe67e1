package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products on the menu. A category cannot be deleted while
// it still owns products; handlers enforce that before calling Delete.
type Category struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	UUID        string    `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(120);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(255)"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}

// Product is the sellable catalog entry. Stock is the single most contended
// field: every mutation (sale decrement, ledger movement, cancellation
// restock) goes through a SELECT ... FOR UPDATE on this row.
type Product struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	UUID        string          `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	CategoryID  uint            `json:"category_id" gorm:"index"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string          `json:"slug" gorm:"type:varchar(280);uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text"`
	SKU         string          `json:"sku" gorm:"type:varchar(100);uniqueIndex"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(16,2);not null"`
	CostPrice   decimal.Decimal `json:"cost_price" gorm:"type:decimal(16,2)"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	MinStock    int             `json:"min_stock" gorm:"not null;default:0"`
	IsAvailable bool            `json:"is_available" gorm:"default:true"`
	IsFeatured  bool            `json:"is_featured" gorm:"default:false"`
	SortOrder   int             `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
