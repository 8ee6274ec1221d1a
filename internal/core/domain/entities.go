package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleDonor     Role = "DONOR"
	RoleVolunteer Role = "VOLUNTEER"
	RoleAdmin     Role = "ADMIN"
)

// ValidRole reports whether s is one of the known roles
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus represents whether an account may act
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountBlocked AccountStatus = "BLOCKED"
)

// Actor represents the authenticated user driving an action
type Actor struct {
	ID     uint
	Role   Role
	Status AccountStatus
}

// IsBlocked reports whether the actor is barred from every mutating action
func (a Actor) IsBlocked() bool {
	return a.Status == AccountBlocked
}

// Owns reports whether the actor created the request
func (a Actor) Owns(r RequestSnapshot) bool {
	return a.ID == r.RequesterID
}

// IsAssignedDonor reports whether the actor is the donor committed to the request
func (a Actor) IsAssignedDonor(r RequestSnapshot) bool {
	return r.AssignedDonorID != nil && *r.AssignedDonorID == a.ID
}

// RequestSnapshot is the slice of a donation request the decision core needs.
// It is a point-in-time view; preconditions are re-checked at commit time by
// conditional updates in the persistence layer.
type RequestSnapshot struct {
	ID              uint
	RequesterID     uint
	Status          RequestStatus
	AssignedDonorID *uint
}

// User represents a user in the domain layer
type User struct {
	ID         uint
	Code       string
	Username   string
	Email      string
	Password   string // Hashed
	Phone      string
	BloodGroup BloodGroup
	Role       Role
	Status     AccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Actor returns the decision-core view of the user
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Status: u.Status}
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
