package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/youssefm/gymclass-server/internal/models"
	"github.com/youssefm/gymclass-server/internal/repository"
	"github.com/youssefm/gymclass-server/internal/service"
	"github.com/youssefm/gymclass-server/internal/utils"
)

// Handler translates HTTP requests into service calls
type Handler struct {
	svc    service.Service
	logger *utils.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{
		svc:    svc,
		logger: utils.NewLogger(),
	}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	user := router.Group("/user")
	{
		user.POST("/register", h.Register)
		user.POST("/login", h.Login)
		user.POST("/invite", h.Invite)
		user.GET("/:userId/invitations", h.GetInvitationsLeft)
		user.GET("/bookings/:userId", h.GetBookingHistory)
		user.DELETE("/bookings/cancel/:bookingId", h.CancelBookingByID)
	}

	class := router.Group("/class")
	{
		class.GET("/search", h.SearchClasses)
		class.POST("/book", h.BookClass)
		class.GET("/availability/:classId", h.GetClassAvailability)
		class.DELETE("/cancel", h.CancelBooking)
	}

	admin := router.Group("/admin", AuthMiddleware(), AdminOnly())
	{
		admin.PUT("/reset-invitations", h.ResetInvitations)
		admin.POST("/class/add", h.AddClass)
		admin.PUT("/class/edit", h.EditClass)
		admin.DELETE("/class/delete", h.DeleteClass)
		admin.GET("/classes", h.ListClasses)
	}
}

// User handlers
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Missing or invalid fields: name, email, password")
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Email and password are required")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Invitation handlers
func (h *Handler) Invite(c *gin.Context) {
	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "All fields (userId, invitedName, invitedAge, invitedEmail, invitedPhone) are required")
		return
	}

	resp, err := h.svc.Invite(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetInvitationsLeft(c *gin.Context) {
	resp, err := h.svc.GetInvitationsLeft(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ResetInvitations(c *gin.Context) {
	var req models.ResetInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "userId is required")
		return
	}

	if err := h.svc.ResetInvitations(c.Request.Context(), req.UserID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "User invitations reset successfully",
	})
}

// Class management handlers
func (h *Handler) AddClass(c *gin.Context) {
	var req models.AddClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "name, coachName, dayOfWeek, timeSlot and duration are required")
		return
	}

	resp, err := h.svc.AddClass(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) EditClass(c *gin.Context) {
	var req models.EditClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "classId, coachName, timeSlot and dayOfWeek are required")
		return
	}

	resp, err := h.svc.EditClass(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteClass(c *gin.Context) {
	var req models.DeleteClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "classId is required")
		return
	}

	if err := h.svc.DeleteClass(c.Request.Context(), req.ClassID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Class deleted successfully",
	})
}

func (h *Handler) ListClasses(c *gin.Context) {
	resp, err := h.svc.ListClasses(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SearchClasses(c *gin.Context) {
	resp, err := h.svc.SearchClasses(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Booking handlers
func (h *Handler) BookClass(c *gin.Context) {
	var req models.BookClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "userId and classId are required")
		return
	}

	resp, err := h.svc.BookClass(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetClassAvailability(c *gin.Context) {
	resp, err := h.svc.GetClassAvailability(c.Request.Context(), c.Param("classId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "userId and classId are required")
		return
	}

	if err := h.svc.CancelBooking(c.Request.Context(), req.UserID, req.ClassID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Reservation canceled successfully",
	})
}

func (h *Handler) CancelBookingByID(c *gin.Context) {
	if err := h.svc.CancelBookingByID(c.Request.Context(), c.Param("bookingId")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Reservation canceled successfully",
	})
}

func (h *Handler) GetBookingHistory(c *gin.Context) {
	resp, err := h.svc.GetBookingHistory(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Error mapping helpers
func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}

// handleError maps service outcomes to HTTP responses. Store failures
// are logged and answered with a generic 500 so internals never leak.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrClassNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateBooking),
		errors.Is(err, repository.ErrClassFull),
		errors.Is(err, repository.ErrNoInvitationsLeft):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "CONFLICT",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrCancellationDeadline):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "POLICY_VIOLATION",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrInvalidTimeSlot):
		h.badRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Status:  "error",
			Code:    "UNAUTHORIZED",
			Message: err.Error(),
		})
	default:
		h.logger.Error("store failure on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		})
	}
}
