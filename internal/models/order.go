package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values. An order is created pending and only ever moves
// forward; settled orders absorb re-processing as no-ops.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order represents a purchase attempt. TotalAmount is fixed at creation time
// from the snapshotted line prices, never recomputed from the live catalog.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"type:varchar(36);index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2)"`
	Status      string          `json:"status" gorm:"type:varchar(20);default:pending;index"`
	// PaymentRef is the gateway's charge reference, empty until the gateway
	// call succeeds. Webhook reconciliation looks orders up by this value.
	PaymentRef string `json:"payment_ref" gorm:"type:varchar(255);index"`
	// CheckoutKey is a digest of the ordered line set, used to reject a
	// duplicate in-flight checkout for the same user and goods.
	CheckoutKey string      `json:"-" gorm:"type:varchar(64);index"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one purchased plugin. Price is the snapshot taken at checkout
// and is immutable once the parent order exists.
type OrderItem struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID  string          `json:"order_id" gorm:"type:varchar(36);index"`
	PluginID string          `json:"plugin_id" gorm:"type:varchar(36);index"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Plugin   *Plugin         `json:"plugin,omitempty" gorm:"foreignKey:PluginID"`
}

// Settled reports whether the status is terminal for the payment workflow.
func Settled(status string) bool {
	return status == OrderPaid || status == OrderCompleted || status == OrderCancelled
}

// CanTransition reports whether an order status change is legal. There is no
// path from a settled state back to an earlier one.
func CanTransition(from, to string) bool {
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderCancelled
	case OrderPaid:
		return to == OrderCompleted
	default:
		return false
	}
}
