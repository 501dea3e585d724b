package models

import "time"

// Order is written once, in the same database transaction that debits the
// buyer's balance.
type Order struct {
	ID            string      `db:"id" json:"id"`
	UserID        string      `db:"user_id" json:"user_id"`
	ItemID        string      `db:"item_id" json:"item_id"`
	Quantity      int         `db:"quantity" json:"quantity"`
	UnitPrice     int64       `db:"unit_price" json:"unit_price"`
	Discount      int64       `db:"discount" json:"discount"`
	AmountCharged int64       `db:"amount_charged" json:"amount_charged"`
	Coupon        *string     `db:"coupon" json:"coupon,omitempty"`
	Status        OrderStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

type OrderStatus string

const OrderCompleted OrderStatus = "completed"

type Receipt struct {
	OrderID       string  `json:"orderId"`
	ItemID        string  `json:"itemId"`
	Quantity      int     `json:"quantity"`
	Subtotal      int64   `json:"total"`
	Discount      int64   `json:"discount"`
	Payable       int64   `json:"paid"`
	AppliedCoupon *string `json:"coupon"`
	NewBalance    int64   `json:"newBalance"`
}
