package domain

import "time"

// Subscription status constants
const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Plan and payment method constants
const (
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"

	PaymentMethodCreditCard = "credit_card"
	PaymentMethodBoleto     = "boleto"
	PaymentMethodPix        = "pix"
)

// Subscription is the billing contract governing a tenant's paid access.
// One live subscription per tenant; canceled rows stay as history.
type Subscription struct {
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	TrialEndsAt   *time.Time `gorm:"column:trial_ends_at" json:"trial_ends_at,omitempty"`
	NextBillingAt *time.Time `gorm:"column:next_billing_at" json:"next_billing_at,omitempty"`
	CanceledAt    *time.Time `gorm:"column:canceled_at" json:"canceled_at,omitempty"`

	ID            string  `gorm:"column:id;primaryKey;size:36" json:"id"`
	TenantID      string  `gorm:"column:tenant_id;index" json:"tenant_id"`
	Status        string  `gorm:"column:status;default:pending" json:"status"` // pending, active, past_due, canceled, expired
	Plan          string  `gorm:"column:plan" json:"plan"`                     // basic, premium, enterprise
	Amount        float64 `gorm:"column:amount" json:"amount"`
	Currency      string  `gorm:"column:currency;default:BRL" json:"currency"`
	BillingCycle  string  `gorm:"column:billing_cycle;default:monthly" json:"billing_cycle"`
	PaymentMethod string  `gorm:"column:payment_method" json:"payment_method"` // credit_card, boleto, pix
	Metadata      string  `gorm:"column:metadata;type:text" json:"metadata,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsTerminal reports whether the subscription can no longer transition
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCanceled
}

// PlanPrice defines pricing for a plan
type PlanPrice struct {
	Plan     string  `json:"plan" yaml:"plan"`
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

// CheckoutRequest starts a subscription purchase
type CheckoutRequest struct {
	Plan          string `json:"plan" binding:"required,oneof=basic premium enterprise"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=credit_card boleto pix"`
}

// CheckoutResponse returns the created subscription and the gateway checkout URL
type CheckoutResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	CheckoutURL  string                `json:"checkout_url"`
}

// CancelRequest cancels a tenant's subscription
type CancelRequest struct {
	Reason string `json:"reason"`
}

// SubscriptionResponse is the API representation of a subscription
type SubscriptionResponse struct {
	ID            string  `json:"id"`
	Plan          string  `json:"plan"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	BillingCycle  string  `json:"billing_cycle"`
	PaymentMethod string  `json:"payment_method"`
	NextBillingAt string  `json:"next_billing_at,omitempty"`
	CanceledAt    string  `json:"canceled_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ToResponse converts a Subscription to its API representation
func (s *Subscription) ToResponse() *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:            s.ID,
		Plan:          s.Plan,
		Status:        s.Status,
		Amount:        s.Amount,
		Currency:      s.Currency,
		BillingCycle:  s.BillingCycle,
		PaymentMethod: s.PaymentMethod,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	if s.NextBillingAt != nil {
		resp.NextBillingAt = s.NextBillingAt.Format(time.RFC3339)
	}
	if s.CanceledAt != nil {
		resp.CanceledAt = s.CanceledAt.Format(time.RFC3339)
	}
	return resp
}
