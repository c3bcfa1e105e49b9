package domain

import "time"

// PaymentProvider supported payment providers
type PaymentProvider string

const (
	PaymentProviderMercadoPago PaymentProvider = "mercadopago"
)

// Provider payment status strings, stored verbatim
const (
	ProviderStatusApproved  = "approved"
	ProviderStatusRejected  = "rejected"
	ProviderStatusCancelled = "cancelled"
	ProviderStatusPending   = "pending"
)

// Payment is an append-only record of a provider payment notification.
// Rows are inserted by webhook ingestion and never mutated.
type Payment struct {
	PaymentDate time.Time `gorm:"column:payment_date" json:"payment_date"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	ID                string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	TenantID          string          `gorm:"column:tenant_id;index" json:"tenant_id"`
	SubscriptionID    *string         `gorm:"column:subscription_id;index" json:"subscription_id,omitempty"`
	Provider          PaymentProvider `gorm:"column:provider" json:"provider"`
	ProviderPaymentID string          `gorm:"column:provider_payment_id;uniqueIndex:idx_provider_payment;size:64" json:"provider_payment_id"`
	Amount            float64         `gorm:"column:amount" json:"amount"`
	Currency          string          `gorm:"column:currency;default:BRL" json:"currency"`
	Status            string          `gorm:"column:status" json:"status"` // provider status, verbatim
	PaymentMethod     string          `gorm:"column:payment_method" json:"payment_method"`
	Metadata          string          `gorm:"column:metadata;type:text" json:"metadata,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// WebhookPayload is the notification body pushed by the payment provider
type WebhookPayload struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData carries the provider-side payment ID
type WebhookData struct {
	ID string `json:"id"`
}

// PaymentSummary for listing payments
type PaymentSummary struct {
	ID                string  `json:"id"`
	Provider          string  `json:"provider"`
	ProviderPaymentID string  `json:"provider_payment_id"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	PaymentMethod     string  `json:"payment_method"`
	PaymentDate       string  `json:"payment_date"`
}

// ToSummary converts a Payment to its list representation
func (p *Payment) ToSummary() PaymentSummary {
	return PaymentSummary{
		ID:                p.ID,
		Provider:          string(p.Provider),
		ProviderPaymentID: p.ProviderPaymentID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		PaymentMethod:     p.PaymentMethod,
		PaymentDate:       p.PaymentDate.Format(time.RFC3339),
	}
}
