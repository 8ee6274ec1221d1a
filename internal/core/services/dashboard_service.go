package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers      int64 `json:"total_users"`
	TotalAdmins     int64 `json:"total_admins"`
	TotalVolunteers int64 `json:"total_volunteers"`
	TotalDonors     int64 `json:"total_donors"`
	BlockedUsers    int64 `json:"blocked_users"`

	// Request Statistics
	TotalRequests      int64 `json:"total_requests"`
	PendingRequests    int64 `json:"pending_requests"`
	InProgressRequests int64 `json:"inprogress_requests"`
	DoneRequests       int64 `json:"done_requests"`
	CanceledRequests   int64 `json:"canceled_requests"`

	// Monthly Statistics
	RequestsThisMonth  int64 `json:"requests_this_month"`
	CompletedThisMonth int64 `json:"completed_this_month"`

	// Funds
	TotalFunds float64 `json:"total_funds"`

	// Recent Activity
	RecentRequests []RequestSummary `json:"recent_requests"`

	// Top Donors
	TopDonors []DonorStats `json:"top_donors"`
}

// RequestSummary represents donation request summary
type RequestSummary struct {
	ID         uint      `json:"id"`
	BloodGroup string    `json:"blood_group"`
	Hospital   string    `json:"hospital"`
	Status     string    `json:"status"`
	Requester  string    `json:"requester"`
	CreatedAt  time.Time `json:"created_at"`
}

// DonorStats represents donor statistics
type DonorStats struct {
	DonorID    uint   `json:"donor_id"`
	Username   string `json:"username"`
	BloodGroup string `json:"blood_group"`
	Completed  int64  `json:"completed"`
	InProgress int64  `json:"in_progress"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "ADMIN").Count(&data.TotalAdmins)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "VOLUNTEER").Count(&data.TotalVolunteers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "DONOR").Count(&data.TotalDonors)
	s.db.WithContext(ctx).Table("users").Where("status = ? AND deleted_at IS NULL", "BLOCKED").Count(&data.BlockedUsers)

	// Request counts by status
	s.db.WithContext(ctx).Table("donation_requests").Where("deleted_at IS NULL").Count(&data.TotalRequests)
	s.db.WithContext(ctx).Table("donation_requests").Where("status = ? AND deleted_at IS NULL", "PENDING").Count(&data.PendingRequests)
	s.db.WithContext(ctx).Table("donation_requests").Where("status = ? AND deleted_at IS NULL", "INPROGRESS").Count(&data.InProgressRequests)
	s.db.WithContext(ctx).Table("donation_requests").Where("status = ? AND deleted_at IS NULL", "DONE").Count(&data.DoneRequests)
	s.db.WithContext(ctx).Table("donation_requests").Where("status = ? AND deleted_at IS NULL", "CANCELED").Count(&data.CanceledRequests)

	// This month statistics
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("donation_requests").
		Where("created_at >= ? AND deleted_at IS NULL", startOfMonth).
		Count(&data.RequestsThisMonth)

	s.db.WithContext(ctx).Table("donation_requests").
		Where("status = ? AND updated_at >= ? AND deleted_at IS NULL", "DONE", startOfMonth).
		Count(&data.CompletedThisMonth)

	// Total funds
	s.db.WithContext(ctx).Table("fund_records").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalFunds)

	// Recent requests
	var recentRequests []struct {
		ID         uint
		BloodGroup string
		Hospital   string
		Status     string
		Requester  string
		CreatedAt  time.Time
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select("donation_requests.id, donation_requests.blood_group, donation_requests.hospital, donation_requests.status, users.username as requester, donation_requests.created_at").
		Joins("LEFT JOIN users ON donation_requests.requester_id = users.id").
		Where("donation_requests.deleted_at IS NULL").
		Order("donation_requests.created_at DESC").
		Limit(10).
		Scan(&recentRequests)

	data.RecentRequests = make([]RequestSummary, len(recentRequests))
	for i, r := range recentRequests {
		data.RecentRequests[i] = RequestSummary{
			ID:         r.ID,
			BloodGroup: r.BloodGroup,
			Hospital:   r.Hospital,
			Status:     r.Status,
			Requester:  r.Requester,
			CreatedAt:  r.CreatedAt,
		}
	}

	// Top donors by completed donations
	var topDonors []struct {
		DonorID    uint
		Username   string
		BloodGroup string
		Completed  int64
		InProgress int64
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select(`
			donation_requests.assigned_donor_id as donor_id,
			users.username,
			users.blood_group,
			SUM(CASE WHEN donation_requests.status = 'DONE' THEN 1 ELSE 0 END) as completed,
			SUM(CASE WHEN donation_requests.status = 'INPROGRESS' THEN 1 ELSE 0 END) as in_progress
		`).
		Joins("LEFT JOIN users ON donation_requests.assigned_donor_id = users.id").
		Where("donation_requests.deleted_at IS NULL AND donation_requests.assigned_donor_id IS NOT NULL").
		Group("donation_requests.assigned_donor_id, users.username, users.blood_group").
		Order("completed DESC").
		Limit(5).
		Scan(&topDonors)

	data.TopDonors = make([]DonorStats, len(topDonors))
	for i, d := range topDonors {
		data.TopDonors[i] = DonorStats{
			DonorID:    d.DonorID,
			Username:   d.Username,
			BloodGroup: d.BloodGroup,
			Completed:  d.Completed,
			InProgress: d.InProgress,
		}
	}

	return data, nil
}

// ============================================================
// Volunteer Dashboard
// ============================================================

// VolunteerDashboardData represents volunteer dashboard data
type VolunteerDashboardData struct {
	// Queue Statistics
	PendingRequests    int64 `json:"pending_requests"`
	InProgressRequests int64 `json:"inprogress_requests"`
	CompletedToday     int64 `json:"completed_today"`

	// Pending by blood group
	PendingByGroup []GroupCount `json:"pending_by_group"`

	// Oldest Open Requests
	OpenRequests []RequestSummary `json:"open_requests"`

	// Scheduled Soon
	UpcomingSchedules []ScheduleInfo `json:"upcoming_schedules"`
}

// GroupCount represents a per blood group count
type GroupCount struct {
	BloodGroup string `json:"blood_group"`
	Count      int64  `json:"count"`
}

// ScheduleInfo represents an upcoming donation schedule
type ScheduleInfo struct {
	ID          uint      `json:"id"`
	BloodGroup  string    `json:"blood_group"`
	Hospital    string    `json:"hospital"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Donor       string    `json:"donor"`
}

// GetVolunteerDashboard returns volunteer dashboard data
func (s *DashboardService) GetVolunteerDashboard(ctx context.Context) (*VolunteerDashboardData, error) {
	data := &VolunteerDashboardData{}

	// Queue statistics
	s.db.WithContext(ctx).Table("donation_requests").
		Where("status = ? AND deleted_at IS NULL", "PENDING").
		Count(&data.PendingRequests)

	s.db.WithContext(ctx).Table("donation_requests").
		Where("status = ? AND deleted_at IS NULL", "INPROGRESS").
		Count(&data.InProgressRequests)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("donation_requests").
		Where("status = ? AND updated_at >= ? AND deleted_at IS NULL", "DONE", startOfDay).
		Count(&data.CompletedToday)

	// Pending requests by blood group
	var groups []struct {
		BloodGroup string
		Count      int64
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select("blood_group, COUNT(*) as count").
		Where("status = ? AND deleted_at IS NULL", "PENDING").
		Group("blood_group").
		Order("count DESC").
		Scan(&groups)

	data.PendingByGroup = make([]GroupCount, len(groups))
	for i, g := range groups {
		data.PendingByGroup[i] = GroupCount{BloodGroup: g.BloodGroup, Count: g.Count}
	}

	// Oldest open requests first so the queue gets worked down
	var openRequests []struct {
		ID         uint
		BloodGroup string
		Hospital   string
		Status     string
		Requester  string
		CreatedAt  time.Time
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select("donation_requests.id, donation_requests.blood_group, donation_requests.hospital, donation_requests.status, users.username as requester, donation_requests.created_at").
		Joins("LEFT JOIN users ON donation_requests.requester_id = users.id").
		Where("donation_requests.status IN ? AND donation_requests.deleted_at IS NULL", []string{"PENDING", "INPROGRESS"}).
		Order("donation_requests.created_at ASC").
		Limit(10).
		Scan(&openRequests)

	data.OpenRequests = make([]RequestSummary, len(openRequests))
	for i, r := range openRequests {
		data.OpenRequests[i] = RequestSummary{
			ID:         r.ID,
			BloodGroup: r.BloodGroup,
			Hospital:   r.Hospital,
			Status:     r.Status,
			Requester:  r.Requester,
			CreatedAt:  r.CreatedAt,
		}
	}

	// Upcoming schedules this week
	endOfWeek := time.Now().AddDate(0, 0, 7)
	var schedules []struct {
		ID          uint
		BloodGroup  string
		Hospital    string
		Location    string
		ScheduledAt time.Time
		Donor       string
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select("donation_requests.id, donation_requests.blood_group, donation_requests.hospital, donation_requests.location, donation_requests.scheduled_at, COALESCE(users.username, '') as donor").
		Joins("LEFT JOIN users ON donation_requests.assigned_donor_id = users.id").
		Where("donation_requests.status = ? AND donation_requests.scheduled_at BETWEEN ? AND ? AND donation_requests.deleted_at IS NULL",
			"INPROGRESS", time.Now(), endOfWeek).
		Order("donation_requests.scheduled_at ASC").
		Limit(10).
		Scan(&schedules)

	data.UpcomingSchedules = make([]ScheduleInfo, len(schedules))
	for i, sc := range schedules {
		data.UpcomingSchedules[i] = ScheduleInfo{
			ID:          sc.ID,
			BloodGroup:  sc.BloodGroup,
			Hospital:    sc.Hospital,
			Location:    sc.Location,
			ScheduledAt: sc.ScheduledAt,
			Donor:       sc.Donor,
		}
	}

	return data, nil
}

// ============================================================
// Donor Dashboard
// ============================================================

// DonorDashboardData represents donor dashboard data
type DonorDashboardData struct {
	// My Requests Summary
	MyRequests       int64 `json:"my_requests"`
	MyOpenRequests   int64 `json:"my_open_requests"`
	MyDoneRequests   int64 `json:"my_done_requests"`
	DonationsDone    int64 `json:"donations_done"`
	DonationsOngoing int64 `json:"donations_ongoing"`

	// Matching pending requests for my blood group
	MatchingRequests []RequestSummary `json:"matching_requests"`

	// My Commitments
	MyCommitments []ScheduleInfo `json:"my_commitments"`
}

// GetDonorDashboard returns donor dashboard data
func (s *DashboardService) GetDonorDashboard(ctx context.Context, userID uint, bloodGroup string) (*DonorDashboardData, error) {
	data := &DonorDashboardData{}

	// My requests
	s.db.WithContext(ctx).Table("donation_requests").
		Where("requester_id = ? AND deleted_at IS NULL", userID).
		Count(&data.MyRequests)

	s.db.WithContext(ctx).Table("donation_requests").
		Where("requester_id = ? AND status IN ? AND deleted_at IS NULL", userID, []string{"PENDING", "INPROGRESS"}).
		Count(&data.MyOpenRequests)

	s.db.WithContext(ctx).Table("donation_requests").
		Where("requester_id = ? AND status = ? AND deleted_at IS NULL", userID, "DONE").
		Count(&data.MyDoneRequests)

	// My donations
	s.db.WithContext(ctx).Table("donation_requests").
		Where("assigned_donor_id = ? AND status = ? AND deleted_at IS NULL", userID, "DONE").
		Count(&data.DonationsDone)

	s.db.WithContext(ctx).Table("donation_requests").
		Where("assigned_donor_id = ? AND status = ? AND deleted_at IS NULL", userID, "INPROGRESS").
		Count(&data.DonationsOngoing)

	// Pending requests matching my blood group, not my own
	var matching []struct {
		ID         uint
		BloodGroup string
		Hospital   string
		Status     string
		Requester  string
		CreatedAt  time.Time
	}
	query := s.db.WithContext(ctx).Table("donation_requests").
		Select("donation_requests.id, donation_requests.blood_group, donation_requests.hospital, donation_requests.status, users.username as requester, donation_requests.created_at").
		Joins("LEFT JOIN users ON donation_requests.requester_id = users.id").
		Where("donation_requests.status = ? AND donation_requests.requester_id != ? AND donation_requests.deleted_at IS NULL", "PENDING", userID)
	if bloodGroup != "" {
		query = query.Where("donation_requests.blood_group = ?", bloodGroup)
	}
	query.Order("donation_requests.created_at ASC").Limit(10).Scan(&matching)

	data.MatchingRequests = make([]RequestSummary, len(matching))
	for i, r := range matching {
		data.MatchingRequests[i] = RequestSummary{
			ID:         r.ID,
			BloodGroup: r.BloodGroup,
			Hospital:   r.Hospital,
			Status:     r.Status,
			Requester:  r.Requester,
			CreatedAt:  r.CreatedAt,
		}
	}

	// My active commitments
	var commitments []struct {
		ID          uint
		BloodGroup  string
		Hospital    string
		Location    string
		ScheduledAt time.Time
		Donor       string
	}
	s.db.WithContext(ctx).Table("donation_requests").
		Select("donation_requests.id, donation_requests.blood_group, donation_requests.hospital, donation_requests.location, donation_requests.scheduled_at, COALESCE(users.username, '') as donor").
		Joins("LEFT JOIN users ON donation_requests.requester_id = users.id").
		Where("donation_requests.assigned_donor_id = ? AND donation_requests.status = ? AND donation_requests.deleted_at IS NULL", userID, "INPROGRESS").
		Order("donation_requests.scheduled_at ASC").
		Scan(&commitments)

	data.MyCommitments = make([]ScheduleInfo, len(commitments))
	for i, c := range commitments {
		data.MyCommitments[i] = ScheduleInfo{
			ID:          c.ID,
			BloodGroup:  c.BloodGroup,
			Hospital:    c.Hospital,
			Location:    c.Location,
			ScheduledAt: c.ScheduledAt,
			Donor:       c.Donor,
		}
	}

	return data, nil
}
