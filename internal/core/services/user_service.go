package services

import (
	"context"
	"errors"
	"log"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/adapters/persistence/repositories"
	"bloodlink-api/internal/core/domain"
	"bloodlink-api/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrCannotModifySelf = errors.New("cannot modify own account this way")
	ErrInvalidRole      = errors.New("invalid role")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrWeakPassword     = errors.New("password must be at least 8 characters")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// List lists users with pagination, optionally filtered by role
func (s *UserService) List(ctx context.Context, role string, page, limit int) (*ListUsersOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	if role != "" && !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	offset := (page - 1) * limit
	users, total, err := s.userRepo.List(ctx, role, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// SetRole changes a user's role (admin operation)
func (s *UserService) SetRole(ctx context.Context, userID uint, role string, adminID uint) (*models.User, error) {
	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if userID == adminID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("Role of user %s set to %s by admin %d", user.Username, role, adminID)
	return user, nil
}

// Block blocks a user account; a blocked actor may perform no mutating action
func (s *UserService) Block(ctx context.Context, userID, adminID uint) (*models.User, error) {
	if userID == adminID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Status = string(domain.AccountBlocked)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User %s blocked by admin %d", user.Username, adminID)
	return user, nil
}

// Unblock reactivates a blocked user account
func (s *UserService) Unblock(ctx context.Context, userID, adminID uint) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Status = string(domain.AccountActive)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User %s unblocked by admin %d", user.Username, adminID)
	return user, nil
}

// Delete removes a user account (admin operation)
func (s *UserService) Delete(ctx context.Context, userID, adminID uint) error {
	if userID == adminID {
		return ErrCannotModifySelf
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	BloodGroup *string `json:"blood_group,omitempty"`
}

// UpdateProfile updates the caller's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUserAlreadyExists
		}
		user.Email = *input.Email
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.BloodGroup != nil {
		group, err := domain.ParseBloodGroup(*input.BloodGroup)
		if err != nil {
			return nil, err
		}
		user.BloodGroup = string(group)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and sets a new one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(currentPassword, user.Password) {
		return ErrWrongPassword
	}
	if !password.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}
