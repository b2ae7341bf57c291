package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/youssefm/gymclass-server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Class operations
	CreateClass(ctx context.Context, class *models.Class) error
	UpdateClass(ctx context.Context, classID, coachName string, timeSlot time.Time, dayOfWeek string) error
	DeleteClass(ctx context.Context, classID string) error
	GetClass(ctx context.Context, classID string) (*models.Class, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
	SearchClassesByName(ctx context.Context, name string) ([]models.Class, error)

	// Capacity ledger operations
	BookClass(ctx context.Context, userID, classID string) (*models.Booking, error)
	CancelBookingByIDs(ctx context.Context, userID, classID string, deadline CancelDeadlineFunc) error
	CancelBookingByID(ctx context.Context, bookingID string, deadline CancelDeadlineFunc) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]models.BookingWithClass, error)

	// Invitation ledger operations
	CreateInvitation(ctx context.Context, inv *models.Invitation) (invitationsLeft int, err error)
	ResetInvitations(ctx context.Context, userID string, allowance int) error
}

// CancelDeadlineFunc decides, given the class start time, whether a
// cancellation may proceed. It is evaluated inside the transaction so
// the decision is based on the locked row.
type CancelDeadlineFunc func(classTimeSlot time.Time) error

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// isUniqueViolation reports whether err is a Postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, is_admin, invitations_left, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password,
		user.IsAdmin, user.InvitationsLeft, user.CreatedAt, user.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

// Class repository methods
func (r *PostgresRepository) CreateClass(ctx context.Context, class *models.Class) error {
	query := `
		INSERT INTO classes (id, name, coach_name, day_of_week, time_slot, duration_minutes,
			capacity, available_slots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if class.ID == "" {
		class.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		class.ID, class.Name, class.CoachName, class.DayOfWeek, class.TimeSlot,
		class.DurationMinutes, class.Capacity, class.AvailableSlots,
		class.CreatedAt, class.UpdatedAt)

	return err
}

func (r *PostgresRepository) UpdateClass(
	ctx context.Context,
	classID string,
	coachName string,
	timeSlot time.Time,
	dayOfWeek string,
) error {
	query := `
		UPDATE classes
		SET coach_name = $1, time_slot = $2, day_of_week = $3, updated_at = $4
		WHERE id = $5
	`

	res, err := r.db.ExecContext(ctx, query, coachName, timeSlot, dayOfWeek, time.Now().UTC(), classID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClassNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteClass(ctx context.Context, classID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClassNotFound
	}

	return nil
}

func (r *PostgresRepository) GetClass(ctx context.Context, classID string) (*models.Class, error) {
	query := `SELECT * FROM classes WHERE id = $1`

	var class models.Class
	err := r.db.GetContext(ctx, &class, query, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	return &class, nil
}

func (r *PostgresRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	query := `SELECT * FROM classes ORDER BY time_slot ASC`

	classes := []models.Class{}
	err := r.db.SelectContext(ctx, &classes, query)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *PostgresRepository) SearchClassesByName(ctx context.Context, name string) ([]models.Class, error) {
	query := `SELECT * FROM classes WHERE name ILIKE $1 ORDER BY time_slot ASC`

	classes := []models.Class{}
	err := r.db.SelectContext(ctx, &classes, query, "%"+name+"%")
	if err != nil {
		return nil, err
	}

	return classes, nil
}

// Capacity ledger methods
//
// BookClass runs the whole check-then-mutate sequence in one transaction.
// The class row is locked with SELECT ... FOR UPDATE so concurrent
// bookings against the same class are serialised: without the lock two
// transactions could both read a positive slot count and both decrement,
// overbooking the class.
func (r *PostgresRepository) BookClass(ctx context.Context, userID, classID string) (*models.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	// Lock the class row for the duration of the transaction
	var availableSlots int
	err = tx.QueryRowContext(ctx,
		`SELECT available_slots FROM classes WHERE id = $1 FOR UPDATE`,
		classID).Scan(&availableSlots)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrClassNotFound
		}
		return nil, err
	}

	// Reject duplicate bookings for the same (user, class) pair
	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE user_id = $1 AND class_id = $2)`,
		userID, classID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		err = ErrDuplicateBooking
		return nil, err
	}

	if availableSlots <= 0 {
		err = ErrClassFull
		return nil, err
	}

	booking := &models.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		ClassID:   classID,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, class_id, created_at) VALUES ($1, $2, $3, $4)`,
		booking.ID, booking.UserID, booking.ClassID, booking.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateBooking
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE classes SET available_slots = available_slots - 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), classID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return booking, nil
}

// cancelBookingTx deletes the booking and frees its slot inside tx.
// The class row must already be locked; deadline is consulted after the
// class start time is read so the rule applies to the current row state.
func (r *PostgresRepository) cancelBookingTx(
	ctx context.Context,
	tx *sql.Tx,
	bookingID string,
	classID string,
	deadline CancelDeadlineFunc,
) error {
	var timeSlot time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT time_slot FROM classes WHERE id = $1 FOR UPDATE`,
		classID).Scan(&timeSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClassNotFound
		}
		return err
	}

	if err := deadline(timeSlot); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE classes SET available_slots = available_slots + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), classID)
	return err
}

func (r *PostgresRepository) CancelBookingByIDs(
	ctx context.Context,
	userID string,
	classID string,
	deadline CancelDeadlineFunc,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var bookingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM bookings WHERE user_id = $1 AND class_id = $2`,
		userID, classID).Scan(&bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrBookingNotFound
		}
		return err
	}

	err = r.cancelBookingTx(ctx, tx, bookingID, classID, deadline)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) CancelBookingByID(
	ctx context.Context,
	bookingID string,
	deadline CancelDeadlineFunc,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var classID string
	err = tx.QueryRowContext(ctx,
		`SELECT class_id FROM bookings WHERE id = $1`,
		bookingID).Scan(&classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrBookingNotFound
		}
		return err
	}

	err = r.cancelBookingTx(ctx, tx, bookingID, classID, deadline)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `SELECT * FROM bookings WHERE id = $1`

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *PostgresRepository) GetUserBookings(ctx context.Context, userID string) ([]models.BookingWithClass, error) {
	query := `
		SELECT b.id, b.user_id, b.class_id, b.created_at,
			c.name AS class_name, c.coach_name, c.day_of_week, c.time_slot
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	bookings := []models.BookingWithClass{}
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// Invitation ledger methods
//
// CreateInvitation inserts the invitation and decrements the user's
// allowance as one transaction, with the user row locked so the counter
// is decremented exactly once per accepted invitation even under
// concurrent requests.
func (r *PostgresRepository) CreateInvitation(ctx context.Context, inv *models.Invitation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var invitationsLeft int
	err = tx.QueryRowContext(ctx,
		`SELECT invitations_left FROM users WHERE id = $1 FOR UPDATE`,
		inv.UserID).Scan(&invitationsLeft)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrUserNotFound
		}
		return 0, err
	}

	if invitationsLeft <= 0 {
		err = ErrNoInvitationsLeft
		return 0, err
	}

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invitations (id, user_id, invited_name, invited_age, invited_email, invited_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.UserID, inv.InvitedName, inv.InvitedAge,
		inv.InvitedEmail, inv.InvitedPhone, inv.CreatedAt)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET invitations_left = invitations_left - 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), inv.UserID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return invitationsLeft - 1, nil
}

func (r *PostgresRepository) ResetInvitations(ctx context.Context, userID string, allowance int) error {
	query := `UPDATE users SET invitations_left = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, allowance, time.Now().UTC(), userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
