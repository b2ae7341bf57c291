package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/youssefm/gymclass-server/internal/api"
	"github.com/youssefm/gymclass-server/internal/config"
	"github.com/youssefm/gymclass-server/internal/models"
	"github.com/youssefm/gymclass-server/internal/repository"
	"github.com/youssefm/gymclass-server/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	JWTSecret   []byte
	DB          *sqlx.DB
	TestUserID  string
	TestUserJWT string
	AdminID     string
	AdminJWT    string
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	// Load configuration from environment
	cfg := config.LoadConfig()

	// Override with test-specific config
	if cfg.Database.DBName == "gymclass" && cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	} else if cfg.Database.TestDBName == "" {
		// Fallback to hardcoded test DB if not in environment
		cfg.Database.DBName = "gymclass_test"
	}

	// Use a test JWT secret
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	assert.NoError(t, err, "Failed to set up test database")

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start every test run from a clean slate
	cleanupTestDatabase(t, repo)

	userID, userJWT := CreateTestUser(t, repo, cfg.Auth.JWTSecret, "testuser@example.com", false)
	adminID, adminJWT := CreateTestUser(t, repo, cfg.Auth.JWTSecret, "admin@example.com", true)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		DB:          db,
		TestUserID:  userID,
		TestUserJWT: userJWT,
		AdminID:     adminID,
		AdminJWT:    adminJWT,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		cleanupTestDatabase(nil, t.Repository)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes any existing test users and data
func cleanupTestDatabase(t *testing.T, repo repository.Repository) {
	pgRepo, ok := repo.(*repository.PostgresRepository)
	if !ok {
		return
	}
	db := pgRepo.GetDB()

	// Delete in dependency order
	for _, table := range []string{"bookings", "invitations", "classes", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		if t != nil && err != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

// CreateTestUser inserts a user directly and returns its id and a signed JWT
func CreateTestUser(t *testing.T, repo repository.Repository, jwtSecret, email string, isAdmin bool) (string, string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.DefaultCost)

	user := &models.User{
		ID:              uuid.New().String(),
		Email:           email,
		Name:            "Test User",
		Password:        string(hashedPassword),
		IsAdmin:         isAdmin,
		InvitationsLeft: service.DefaultInvitationAllowance,
	}

	err := repo.CreateUser(context.Background(), user)
	assert.NoError(t, err, "Failed to create test user")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"admin": user.IsAdmin,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	assert.NoError(t, err, "Failed to generate JWT token")

	return user.ID, tokenString
}

// CreateTestClass creates a class through the admin endpoint and returns its id
func CreateTestClass(t *testing.T, tc *TestContext, name string, timeSlot time.Time, slots int) string {
	req := models.AddClassRequest{
		Name:            name,
		CoachName:       "Coach Carter",
		DayOfWeek:       timeSlot.Weekday().String(),
		TimeSlot:        timeSlot.Format(time.RFC3339),
		DurationMinutes: 60,
		AvailableSlots:  slots,
	}

	w := PerformRequest(tc.Router, http.MethodPost, "/admin/class/add", req, AuthHeaders(tc.AdminJWT))
	assert.Equal(t, http.StatusOK, w.Code, "Failed to create test class: %s", w.Body.String())

	var resp models.ClassResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.NotNil(t, resp.Class)

	return resp.Class.ID
}

// ClassAvailability reads the current slot count via the public endpoint
func ClassAvailability(t *testing.T, tc *TestContext, classID string) int {
	w := PerformRequest(tc.Router, http.MethodGet, "/class/availability/"+classID, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AvailabilityResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)

	return resp.AvailableSlots
}

// AssertSlotInvariant checks capacity == available_slots + active bookings for a class
func AssertSlotInvariant(t *testing.T, tc *TestContext, classID string) {
	var capacity, available int
	err := tc.DB.QueryRow(
		"SELECT capacity, available_slots FROM classes WHERE id = $1", classID,
	).Scan(&capacity, &available)
	assert.NoError(t, err)

	var active int
	err = tc.DB.QueryRow(
		"SELECT COUNT(*) FROM bookings WHERE class_id = $1", classID,
	).Scan(&active)
	assert.NoError(t, err)

	assert.GreaterOrEqual(t, available, 0, "available slots must never go negative")
	assert.Equal(t, capacity, available+active,
		"capacity must equal available slots plus active bookings")
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
