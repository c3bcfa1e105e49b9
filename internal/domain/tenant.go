package domain

import "time"

// Tenant status constants
const (
	TenantStatusTrial    = "trial"
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// Tenant represents one customer business with its own isolated data store
type Tenant struct {
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at" json:"trial_ends_at,omitempty"`

	ID        string `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string `gorm:"column:name" json:"name"`
	Subdomain string `gorm:"column:subdomain;uniqueIndex;size:63" json:"subdomain"`
	Status    string `gorm:"column:status;default:trial" json:"status"` // trial, active, inactive
	OwnerID   string `gorm:"column:owner_id;index" json:"owner_id"`

	// Mirror of the current subscription status, written only by the
	// lifecycle service in the same transaction as the subscription row.
	SubscriptionStatus *string `gorm:"column:subscription_status" json:"subscription_status,omitempty"`

	DatabaseName string `gorm:"column:database_name;size:64" json:"database_name"`
	Provisioned  bool   `gorm:"column:provisioned;default:false" json:"provisioned"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// SignupRequest is the request body for tenant signup
type SignupRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Subdomain string `json:"subdomain" binding:"required,min=3,max=50"`
	OwnerID   string `json:"owner_id" binding:"required"`
}

// TenantResponse is the API representation of a tenant
type TenantResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Subdomain          string `json:"subdomain"`
	TenantURL          string `json:"tenant_url"`
	Status             string `json:"status"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
	TrialEndsAt        string `json:"trial_ends_at,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// ToResponse converts a Tenant to its API representation
func (t *Tenant) ToResponse(baseDomain string) *TenantResponse {
	resp := &TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		TenantURL: "https://" + t.Subdomain + "." + baseDomain,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.SubscriptionStatus != nil {
		resp.SubscriptionStatus = *t.SubscriptionStatus
	}
	if t.TrialEndsAt != nil {
		resp.TrialEndsAt = t.TrialEndsAt.Format(time.RFC3339)
	}
	return resp
}
