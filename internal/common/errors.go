package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// Tenant errors
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrSubdomainTaken  = errors.New("subdomain already in use")
	ErrReservedName    = errors.New("subdomain is reserved")
	ErrTenantSuspended = errors.New("tenant is not active")

	// Subscription errors
	ErrInvalidPlan          = errors.New("unknown plan")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionExists   = errors.New("tenant already has a live subscription")

	// Infrastructure errors
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrProvisioningFailed = errors.New("tenant provisioning failed")
	ErrUnauthorized       = errors.New("unauthorized")
)
