package models

import (
	"time"

	"bloodlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Code       string         `gorm:"uniqueIndex;size:36;not null" json:"code"`
	Username   string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	Phone      string         `gorm:"size:20" json:"phone"`
	BloodGroup string         `gorm:"size:3" json:"blood_group"`
	Role       string         `gorm:"size:20;default:'DONOR'" json:"role"`
	Status     string         `gorm:"size:20;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Actor returns the decision-core view of the user
func (u *User) Actor() domain.Actor {
	return domain.Actor{
		ID:     u.ID,
		Role:   domain.Role(u.Role),
		Status: domain.AccountStatus(u.Status),
	}
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	Code       string    `json:"code"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	BloodGroup string    `json:"blood_group,omitempty"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Code:       u.Code,
		Username:   u.Username,
		Email:      u.Email,
		Phone:      u.Phone,
		BloodGroup: u.BloodGroup,
		Role:       u.Role,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Donation Request Tables
// ============================================================

// DonationRequest represents donation_requests table
type DonationRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"uniqueIndex;size:36;not null" json:"code"`
	RequesterID     uint           `gorm:"not null;index" json:"requester_id"`
	BloodGroup      string         `gorm:"size:3;not null;index" json:"blood_group"`
	Status          string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	AssignedDonorID *uint          `gorm:"index" json:"assigned_donor_id"`
	ScheduledAt     time.Time      `gorm:"not null" json:"scheduled_at"`
	Hospital        string         `gorm:"size:200" json:"hospital"`
	Location        string         `gorm:"size:200" json:"location"`
	Message         string         `gorm:"type:text" json:"message"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Requester     *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	AssignedDonor *User `gorm:"foreignKey:AssignedDonorID" json:"assigned_donor,omitempty"`
}

func (DonationRequest) TableName() string {
	return "donation_requests"
}

// Snapshot returns the decision-core view of the request
func (r *DonationRequest) Snapshot() domain.RequestSnapshot {
	return domain.RequestSnapshot{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		Status:          domain.RequestStatus(r.Status),
		AssignedDonorID: r.AssignedDonorID,
	}
}

// DonorContact is the assigned donor's contact card shown on a request
type DonorContact struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// DonationRequestResponse DTO
type DonationRequestResponse struct {
	ID            uint          `json:"id"`
	Code          string        `json:"code"`
	RequesterID   uint          `json:"requester_id"`
	RequesterName string        `json:"requester_name,omitempty"`
	BloodGroup    string        `json:"blood_group"`
	Status        string        `json:"status"`
	AssignedDonor *DonorContact `json:"assigned_donor,omitempty"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	Hospital      string        `json:"hospital,omitempty"`
	Location      string        `json:"location,omitempty"`
	Message       string        `json:"message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (r *DonationRequest) ToResponse() *DonationRequestResponse {
	resp := &DonationRequestResponse{
		ID:          r.ID,
		Code:        r.Code,
		RequesterID: r.RequesterID,
		BloodGroup:  r.BloodGroup,
		Status:      r.Status,
		ScheduledAt: r.ScheduledAt,
		Hospital:    r.Hospital,
		Location:    r.Location,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.Requester != nil {
		resp.RequesterName = r.Requester.Username
	}
	if r.AssignedDonor != nil {
		resp.AssignedDonor = &DonorContact{
			Username: r.AssignedDonor.Username,
			Email:    r.AssignedDonor.Email,
			Phone:    r.AssignedDonor.Phone,
		}
	}

	return resp
}

// RequestEvent represents request_events table (append-only audit history)
type RequestEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   uint      `gorm:"not null;index" json:"request_id"`
	EventType   string    `gorm:"size:50;not null" json:"event_type"`
	FromStatus  *string   `gorm:"size:20" json:"from_status"`
	ToStatus    *string   `gorm:"size:20" json:"to_status"`
	Note        string    `gorm:"type:text" json:"note"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
	IPAddress   string    `gorm:"size:50" json:"ip_address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Request   *DonationRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Performer *User            `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (RequestEvent) TableName() string {
	return "request_events"
}

// Event Types
const (
	EvTypeCreate       = "CREATE"
	EvTypeUpdate       = "UPDATE"
	EvTypeDonate       = "DONATE"
	EvTypeStatusChange = "STATUS_CHANGE"
	EvTypeDelete       = "DELETE"
)

// ============================================================
// Funding Tables
// ============================================================

// FundRecord represents fund_records table
type FundRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DonorName  string         `gorm:"size:100;not null" json:"donor_name"`
	Amount     float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note       string         `gorm:"type:text" json:"note"`
	RecordedBy uint           `gorm:"not null" json:"recorded_by"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Recorder *User `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}

func (FundRecord) TableName() string {
	return "fund_records"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&DonationRequest{},
		&RequestEvent{},
		&FundRecord{},
	)
}
