package customer

import "time"

const (
	// StatusActive marks a customer with live hosting service.
	StatusActive = "active"
	// StatusSuspended marks a customer paused for non-payment.
	StatusSuspended = "suspended"
)

// Customer represents a hosting client with machines on the floor.
type Customer struct {
	ID             string
	Email          string
	Name           string
	PoolSubaccount string
	PortalKeyHash  []byte
	Status         string
	CreatedAt      time.Time
}
