package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderType says where the customer eats.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeAway OrderType = "take_away"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeAway
}

// PaymentMethod is how the customer pays. QRIS is the electronic flow that
// goes through the payment gateway; cash settles immediately at the counter.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodQRIS PaymentMethod = "qris"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodQRIS
}

// OrderStatus is the kitchen-side lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// PaymentStatus mirrors the gateway-side payment lifecycle. It evolves
// independently of OrderStatus; the reconciler is the only writer that
// couples the two.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSettlement PaymentStatus = "settlement"
	PaymentStatusChallenge  PaymentStatus = "challenge"
	PaymentStatusDeny       PaymentStatus = "deny"
	PaymentStatusExpire     PaymentStatus = "expire"
	PaymentStatusCancel     PaymentStatus = "cancel"
)

// Order is a placed order with its immutable line items. UUID is the opaque
// token shared with clients and the payment gateway; the numeric ID never
// leaves the service.
type Order struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	UUID          string          `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	UserID        *uint           `json:"user_id,omitempty" gorm:"index"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(255)"`
	Type          OrderType       `json:"type" gorm:"type:varchar(20);not null;default:'dine_in'"`
	TableNumber   string          `json:"table_number" gorm:"type:varchar(10)"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(16,2);not null"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null"`
	SnapToken     string          `json:"snap_token,omitempty" gorm:"type:varchar(255)"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.NewString()
	}
	return nil
}

// OrderItem is one cart line, priced at placement time. Rows are created
// together with the order and never updated afterwards.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primarykey"`
	OrderID   uint            `json:"order_id" gorm:"index;not null"`
	ProductID uint            `json:"product_id" gorm:"index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(16,2);not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(16,2);not null"`
	CreatedAt time.Time       `json:"created_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
