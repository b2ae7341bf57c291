package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/youssefm/gymclass-server/internal/models"
	"github.com/youssefm/gymclass-server/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// DefaultInvitationAllowance is the invitation quota every user starts
// with and is restored to by an admin reset.
const DefaultInvitationAllowance = 10

// DefaultClassSlots is used when a class is added without an explicit
// slot count.
const DefaultClassSlots = 15

// ErrInvalidCredentials is returned on login with an unknown email or
// wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidTimeSlot is returned when a class time slot is not a valid
// RFC3339 timestamp.
var ErrInvalidTimeSlot = errors.New("invalid timeSlot, expected an RFC3339 timestamp")

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// Invitations
	Invite(ctx context.Context, req models.InviteRequest) (*models.InviteResponse, error)
	GetInvitationsLeft(ctx context.Context, userID string) (*models.InvitationsLeftResponse, error)
	ResetInvitations(ctx context.Context, userID string) error

	// Class management
	AddClass(ctx context.Context, req models.AddClassRequest) (*models.ClassResponse, error)
	EditClass(ctx context.Context, req models.EditClassRequest) (*models.ClassListResponse, error)
	DeleteClass(ctx context.Context, classID string) error
	ListClasses(ctx context.Context) (*models.ClassListResponse, error)
	SearchClasses(ctx context.Context, name string) (*models.ClassListResponse, error)

	// Booking
	BookClass(ctx context.Context, req models.BookClassRequest) (*models.BookingResponse, error)
	GetClassAvailability(ctx context.Context, classID string) (*models.AvailabilityResponse, error)
	CancelBooking(ctx context.Context, userID, classID string) error
	CancelBookingByID(ctx context.Context, bookingID string) error
	GetBookingHistory(ctx context.Context, userID string) (*models.BookingHistoryResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
		now:           time.Now,
	}
}

// Authentication methods
func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:              uuid.New().String(),
		Email:           req.Email,
		Name:            req.Name,
		Password:        string(hashedPassword),
		IsAdmin:         req.IsAdmin,
		InvitationsLeft: DefaultInvitationAllowance,
	}

	// The unique index on email catches duplicates; no pre-check needed
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Status:  "success",
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		IsAdmin:   user.IsAdmin,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// Invitation methods
func (s *DefaultService) Invite(ctx context.Context, req models.InviteRequest) (*models.InviteResponse, error) {
	inv := &models.Invitation{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		InvitedName:  req.InvitedName,
		InvitedAge:   req.InvitedAge,
		InvitedEmail: req.InvitedEmail,
		InvitedPhone: req.InvitedPhone,
		CreatedAt:    s.now().UTC(),
	}

	// The repository decrements the allowance and inserts the invitation
	// atomically, so quota checks cannot race
	left, err := s.repo.CreateInvitation(ctx, inv)
	if err != nil {
		return nil, err
	}

	return &models.InviteResponse{
		Status:          "success",
		InvitationID:    inv.ID,
		InvitationsLeft: left,
	}, nil
}

func (s *DefaultService) GetInvitationsLeft(ctx context.Context, userID string) (*models.InvitationsLeftResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}

	return &models.InvitationsLeftResponse{
		Status:          "success",
		UserID:          user.ID,
		InvitationsLeft: user.InvitationsLeft,
	}, nil
}

func (s *DefaultService) ResetInvitations(ctx context.Context, userID string) error {
	return s.repo.ResetInvitations(ctx, userID, DefaultInvitationAllowance)
}

// Class management methods
func (s *DefaultService) AddClass(ctx context.Context, req models.AddClassRequest) (*models.ClassResponse, error) {
	timeSlot, err := parseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	slots := req.AvailableSlots
	if slots <= 0 {
		slots = DefaultClassSlots
	}

	class := &models.Class{
		ID:              uuid.New().String(),
		Name:            req.Name,
		CoachName:       req.CoachName,
		DayOfWeek:       req.DayOfWeek,
		TimeSlot:        timeSlot,
		DurationMinutes: req.DurationMinutes,
		Capacity:        slots, // capacity ceiling fixed at creation
		AvailableSlots:  slots,
	}

	if err := s.repo.CreateClass(ctx, class); err != nil {
		return nil, fmt.Errorf("error creating class: %w", err)
	}

	return &models.ClassResponse{
		Status: "success",
		Class:  class,
	}, nil
}

func (s *DefaultService) EditClass(ctx context.Context, req models.EditClassRequest) (*models.ClassListResponse, error) {
	timeSlot, err := parseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateClass(ctx, req.ClassID, req.CoachName, timeSlot, req.DayOfWeek); err != nil {
		return nil, err
	}

	return s.ListClasses(ctx)
}

func (s *DefaultService) DeleteClass(ctx context.Context, classID string) error {
	return s.repo.DeleteClass(ctx, classID)
}

func (s *DefaultService) ListClasses(ctx context.Context) (*models.ClassListResponse, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}

	return &models.ClassListResponse{
		Status:  "success",
		Classes: classes,
	}, nil
}

func (s *DefaultService) SearchClasses(ctx context.Context, name string) (*models.ClassListResponse, error) {
	classes, err := s.repo.SearchClassesByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error searching classes: %w", err)
	}

	return &models.ClassListResponse{
		Status:  "success",
		Classes: classes,
	}, nil
}

// Booking methods
func (s *DefaultService) BookClass(ctx context.Context, req models.BookClassRequest) (*models.BookingResponse, error) {
	booking, err := s.repo.BookClass(ctx, req.UserID, req.ClassID)
	if err != nil {
		return nil, err
	}

	return &models.BookingResponse{
		Status:    "success",
		BookingID: booking.ID,
		ClassID:   booking.ClassID,
	}, nil
}

func (s *DefaultService) GetClassAvailability(ctx context.Context, classID string) (*models.AvailabilityResponse, error) {
	class, err := s.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return &models.AvailabilityResponse{
		Status:         "success",
		ClassID:        class.ID,
		AvailableSlots: class.AvailableSlots,
	}, nil
}

// CancelBooking cancels by (user, class). The deadline rule runs inside
// the repository transaction against the locked class row.
func (s *DefaultService) CancelBooking(ctx context.Context, userID, classID string) error {
	return s.repo.CancelBookingByIDs(ctx, userID, classID, s.checkCancellationDeadline)
}

// CancelBookingByID cancels by booking id. The deadline rule applies
// here too: both cancellation paths enforce the same policy.
func (s *DefaultService) CancelBookingByID(ctx context.Context, bookingID string) error {
	return s.repo.CancelBookingByID(ctx, bookingID, s.checkCancellationDeadline)
}

func (s *DefaultService) GetBookingHistory(ctx context.Context, userID string) (*models.BookingHistoryResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}

	bookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting bookings: %w", err)
	}

	return &models.BookingHistoryResponse{
		Status:   "success",
		UserID:   userID,
		Bookings: bookings,
	}, nil
}

// Helper methods
func (s *DefaultService) checkCancellationDeadline(classTimeSlot time.Time) error {
	if !CancellationAllowed(classTimeSlot, s.now()) {
		return ErrCancellationDeadline
	}
	return nil
}

func parseTimeSlot(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
	return t.UTC(), nil
}

func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := s.now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":   user.ID, // subject
		"admin": user.IsAdmin,
		"exp":   expirationTime.Unix(),
		"iat":   s.now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
