package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order lifecycle labels. Updates are not checked against a transition graph.
const (
	StatusRequested = "requested"
	StatusApproved  = "approved"
	StatusPreparing = "preparing"
	StatusDelivery  = "delivery"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses lists the defined order statuses in lifecycle order.
var Statuses = []string{
	StatusRequested,
	StatusApproved,
	StatusPreparing,
	StatusDelivery,
	StatusCompleted,
	StatusCancelled,
}

// IsKnownStatus reports whether status is one of the defined labels.
func IsKnownStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order represents a customer order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID               int64           `bun:",pk,autoincrement" json:"id"`
	Number           string          `bun:"order_number,notnull,unique" json:"order_number"`
	CustomerName     string          `bun:"customer_name,notnull" json:"customer_name"`
	CustomerPhone    string          `bun:"customer_phone,nullzero" json:"customer_phone,omitempty"`
	CustomerTelegram string          `bun:"customer_telegram,nullzero" json:"customer_telegram,omitempty"`
	CustomerEmail    string          `bun:"customer_email,nullzero" json:"customer_email,omitempty"`
	Message          string          `bun:"message,nullzero" json:"message,omitempty"`
	Total            decimal.Decimal `bun:"total,type:decimal(12,2),notnull" json:"total"`
	Status           string          `bun:"status,notnull" json:"status"`
	CreatedAt        time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time       `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"order_items,omitempty"`
}

// Contact returns the messaging handle when present, otherwise the phone.
func (o *Order) Contact() string {
	if o.CustomerTelegram != "" {
		return o.CustomerTelegram
	}
	return o.CustomerPhone
}

// OrderItem is a line of an order. Name and price are copied from the
// product at checkout so later catalog edits never change past orders.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID          int64           `bun:",pk,autoincrement" json:"id"`
	OrderID     int64           `bun:"order_id,notnull" json:"order_id"`
	ProductID   *int64          `bun:"product_id" json:"product_id"`
	ProductName string          `bun:"product_name,notnull" json:"product_name"`
	Quantity    int             `bun:"quantity,notnull" json:"quantity"`
	Price       decimal.Decimal `bun:"price,type:decimal(12,2),notnull" json:"price"`
	ImageURL    string          `bun:"image_url,nullzero" json:"image_url,omitempty"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Amount is price × quantity for the line.
func (i *OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
