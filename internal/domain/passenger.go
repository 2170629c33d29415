package domain

// Role represents a user's role in the campus system.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleDriver  Role = "driver"
	RoleAdmin   Role = "admin"
)

// Passenger is a read-only view of a user from the identity source.
// The bus core never mutates these rows.
type Passenger struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	IsApproved   bool
	HomeLocation *Coordinate // nil when the user never set a home point
}
