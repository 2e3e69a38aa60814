package domain

// Vehicle is the transport subsystem's view of a vehicle, consumed read-only
// by the orchestrator. Mutations go back through the transport gateway.
type Vehicle struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	StatusID int64   `json:"status_id"`
	Status   string  `json:"status"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	CityID   *int64  `json:"city_id,omitempty"`
	CityName string  `json:"city_name,omitempty"`
}

// Vehicle status names recognized by the transport subsystem.
const (
	VehicleStatusAvailable = "available"
	VehicleStatusInUse     = "in use"
)

// Account is the user subsystem's profile snapshot.
type Account struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	CityName string `json:"city_name"`
	Bonuses  int64  `json:"bonuses"`
}
