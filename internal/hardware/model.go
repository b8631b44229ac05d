package hardware

import "time"

const (
	// StatusProvisioning — racked but not yet hashing.
	StatusProvisioning = "provisioning"
	// StatusActive — hashing in production.
	StatusActive = "active"
	// StatusMaintenance — temporarily pulled for repair.
	StatusMaintenance = "maintenance"
	// StatusRetired — permanently decommissioned.
	StatusRetired = "retired"
)

// Miner is a single hosted machine.
type Miner struct {
	ID          string
	CustomerID  string
	Model       string
	HashrateTHs float64
	PowerWatts  int64
	Rack        string
	Status      string
	CreatedAt   time.Time
}

// FleetTotals aggregates a customer's racked machines.
type FleetTotals struct {
	Machines    int
	Active      int
	HashrateTHs float64
	PowerWatts  int64
}
