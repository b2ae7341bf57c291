package models

// Request models
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"isAdmin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type InviteRequest struct {
	UserID       string `json:"userId" binding:"required"`
	InvitedName  string `json:"invitedName" binding:"required"`
	InvitedAge   int    `json:"invitedAge" binding:"required,gt=0"`
	InvitedEmail string `json:"invitedEmail" binding:"required,email"`
	InvitedPhone string `json:"invitedPhone" binding:"required"`
}

type ResetInvitationsRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type AddClassRequest struct {
	Name            string `json:"name" binding:"required"`
	CoachName       string `json:"coachName" binding:"required"`
	DayOfWeek       string `json:"dayOfWeek" binding:"required"`
	TimeSlot        string `json:"timeSlot" binding:"required"` // RFC3339
	DurationMinutes int    `json:"duration" binding:"required,gt=0"`
	AvailableSlots  int    `json:"availableSlots"` // defaults to 15 when omitted
}

type EditClassRequest struct {
	ClassID   string `json:"classId" binding:"required"`
	CoachName string `json:"coachName" binding:"required"`
	TimeSlot  string `json:"timeSlot" binding:"required"` // RFC3339
	DayOfWeek string `json:"dayOfWeek" binding:"required"`
}

type DeleteClassRequest struct {
	ClassID string `json:"classId" binding:"required"`
}

type BookClassRequest struct {
	UserID  string `json:"userId" binding:"required"`
	ClassID string `json:"classId" binding:"required"`
}

type CancelBookingRequest struct {
	UserID  string `json:"userId" binding:"required"`
	ClassID string `json:"classId" binding:"required"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type InviteResponse struct {
	Status          string `json:"status"`
	InvitationID    string `json:"invitationId,omitempty"`
	InvitationsLeft int    `json:"invitationsLeft"`
}

type InvitationsLeftResponse struct {
	Status          string `json:"status"`
	UserID          string `json:"userId"`
	InvitationsLeft int    `json:"invitationsLeft"`
}

type ClassResponse struct {
	Status string `json:"status"`
	Class  *Class `json:"class,omitempty"`
}

type ClassListResponse struct {
	Status  string  `json:"status"`
	Classes []Class `json:"classes"`
}

type AvailabilityResponse struct {
	Status         string `json:"status"`
	ClassID        string `json:"classId"`
	AvailableSlots int    `json:"availableSlots"`
}

type BookingResponse struct {
	Status    string `json:"status"`
	BookingID string `json:"bookingId,omitempty"`
	ClassID   string `json:"classId,omitempty"`
}

type BookingHistoryResponse struct {
	Status   string             `json:"status"`
	UserID   string             `json:"userId"`
	Bookings []BookingWithClass `json:"bookings"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
