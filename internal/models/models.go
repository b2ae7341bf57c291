package models

import (
	"time"
)

// User represents a gym member (or admin) in the system
type User struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Name            string    `db:"name" json:"name"`
	Password        string    `db:"password" json:"-"` // Password hash, not returned in JSON
	IsAdmin         bool      `db:"is_admin" json:"isAdmin"`
	InvitationsLeft int       `db:"invitations_left" json:"invitationsLeft"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Class represents a scheduled gym class with limited capacity
type Class struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	CoachName       string    `db:"coach_name" json:"coachName"`
	DayOfWeek       string    `db:"day_of_week" json:"dayOfWeek"`
	TimeSlot        time.Time `db:"time_slot" json:"timeSlot"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Capacity        int       `db:"capacity" json:"capacity"`
	AvailableSlots  int       `db:"available_slots" json:"availableSlots"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Booking represents a user's reservation of one slot in a class
type Booking struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ClassID   string    `db:"class_id" json:"classId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BookingWithClass is a booking joined with the class it reserves,
// returned by the booking history endpoint
type BookingWithClass struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ClassID   string    `db:"class_id" json:"classId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	ClassName string    `db:"class_name" json:"className"`
	CoachName string    `db:"coach_name" json:"coachName"`
	DayOfWeek string    `db:"day_of_week" json:"dayOfWeek"`
	TimeSlot  time.Time `db:"time_slot" json:"timeSlot"`
}

// Invitation records one use of a user's invitation allowance
type Invitation struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	InvitedName  string    `db:"invited_name" json:"invitedName"`
	InvitedAge   int       `db:"invited_age" json:"invitedAge"`
	InvitedEmail string    `db:"invited_email" json:"invitedEmail"`
	InvitedPhone string    `db:"invited_phone" json:"invitedPhone"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
