package domain

import (
	"time"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusPacked     OrderStatus = "Packed"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusProcessing, StatusPacked, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	OrderID         string      `dynamodbav:"order_id"   json:"_id"`
	CreatedAt       time.Time   `dynamodbav:"created_at" json:"createdAt"`
	Status          OrderStatus `dynamodbav:"status"     json:"status"`
	Items           []OrderItem `dynamodbav:"items"      json:"items"`
	Total           float64     `dynamodbav:"total"      json:"total"`
	PaymentMethod   string      `dynamodbav:"payment_method"    json:"paymentMethod"`
	IsPaid          bool        `dynamodbav:"is_paid"           json:"isPaid"`
	PaymentIntentID string      `dynamodbav:"payment_intent_id" json:"paymentIntentId,omitempty"`
	CODReference    string      `dynamodbav:"cod_reference"     json:"codReference,omitempty"`
	CancelReason    string      `dynamodbav:"cancel_reason"     json:"cancelReason,omitempty"`
	User            OrderUser   `dynamodbav:"user"              json:"user"`
}

type OrderItem struct {
	Name       string  `dynamodbav:"name"       json:"name"`
	Qty        int     `dynamodbav:"qty"        json:"qty"`
	Price      float64 `dynamodbav:"price"      json:"price"`
	Color      string  `dynamodbav:"color"      json:"color,omitempty"`
	Dimensions string  `dynamodbav:"dimensions" json:"dimensions,omitempty"`
}

// OrderUser is a snapshot of the buyer taken at checkout; it never tracks
// later profile edits.
type OrderUser struct {
	FullName string `dynamodbav:"full_name" json:"fullName"`
	Mobile   string `dynamodbav:"mobile"    json:"mobile"`
	Email    string `dynamodbav:"email"     json:"email,omitempty"`
	Street   string `dynamodbav:"street"    json:"street,omitempty"`
	Area     string `dynamodbav:"area"      json:"area,omitempty"`
	City     string `dynamodbav:"city"      json:"city,omitempty"`
	ZipCode  string `dynamodbav:"zip_code"  json:"zipCode,omitempty"`
}

type ChangeStatusRequest struct {
	Status       OrderStatus `json:"status" binding:"required"`
	Confirmation string      `json:"confirmation" binding:"required"`
}
