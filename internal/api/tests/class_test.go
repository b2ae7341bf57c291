package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/youssefm/gymclass-server/internal/api/testutils"
	"github.com/youssefm/gymclass-server/internal/models"
)

func TestClassManagement(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	timeSlot := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	t.Run("AddClass", func(t *testing.T) {
		req := models.AddClassRequest{
			Name:            "Morning Yoga",
			CoachName:       "Dana",
			DayOfWeek:       "Monday",
			TimeSlot:        timeSlot.Format(time.RFC3339),
			DurationMinutes: 45,
			AvailableSlots:  20,
		}

		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/admin/class/add",
			req, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ClassResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.NotNil(t, resp.Class)
		assert.Equal(t, 20, resp.Class.AvailableSlots)
		assert.Equal(t, 20, resp.Class.Capacity)
	})

	t.Run("AddClassDefaultSlots", func(t *testing.T) {
		req := models.AddClassRequest{
			Name:            "Spin",
			CoachName:       "Marco",
			DayOfWeek:       "Tuesday",
			TimeSlot:        timeSlot.Format(time.RFC3339),
			DurationMinutes: 30,
		}

		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/admin/class/add",
			req, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ClassResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, 15, resp.Class.AvailableSlots)
	})

	t.Run("AddClassMissingFields", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/admin/class/add",
			map[string]string{"name": "Incomplete"}, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AddClassBadTimeSlot", func(t *testing.T) {
		req := models.AddClassRequest{
			Name:            "Pilates",
			CoachName:       "Dana",
			DayOfWeek:       "Friday",
			TimeSlot:        "next tuesday",
			DurationMinutes: 45,
		}

		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/admin/class/add",
			req, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AdminRoutesRequireToken", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/admin/classes", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AdminRoutesRejectNonAdmin", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/admin/classes",
			nil, testutils.AuthHeaders(testCtx.TestUserJWT))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("EditClass", func(t *testing.T) {
		classID := testutils.CreateTestClass(t, testCtx, "Boxing", timeSlot, 10)

		newSlot := timeSlot.Add(24 * time.Hour)
		req := models.EditClassRequest{
			ClassID:   classID,
			CoachName: "Rocky",
			TimeSlot:  newSlot.Format(time.RFC3339),
			DayOfWeek: newSlot.Weekday().String(),
		}

		w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/class/edit",
			req, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusOK, w.Code)

		// Edit returns the full class list with the change applied
		var resp models.ClassListResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)

		found := false
		for _, class := range resp.Classes {
			if class.ID == classID {
				found = true
				assert.Equal(t, "Rocky", class.CoachName)
			}
		}
		assert.True(t, found, "edited class should appear in the returned list")
	})

	t.Run("EditMissingClass", func(t *testing.T) {
		req := models.EditClassRequest{
			ClassID:   "11111111-2222-3333-4444-555555555555",
			CoachName: "Nobody",
			TimeSlot:  timeSlot.Format(time.RFC3339),
			DayOfWeek: "Monday",
		}

		w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/class/edit",
			req, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteClass", func(t *testing.T) {
		classID := testutils.CreateTestClass(t, testCtx, "Temporary", timeSlot, 5)

		w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/admin/class/delete",
			models.DeleteClassRequest{ClassID: classID}, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusOK, w.Code)

		w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/class/availability/"+classID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteMissingClass", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/admin/class/delete",
			models.DeleteClassRequest{ClassID: "11111111-2222-3333-4444-555555555555"},
			testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("SearchClasses", func(t *testing.T) {
		testutils.CreateTestClass(t, testCtx, "Evening Yoga", timeSlot, 10)

		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/class/search?name=yoga", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ClassListResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)

		// ILIKE match: both "Morning Yoga" and "Evening Yoga"
		assert.GreaterOrEqual(t, len(resp.Classes), 2)
		for _, class := range resp.Classes {
			assert.Contains(t, class.Name, "Yoga")
		}
	})

	t.Run("ListClasses", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/admin/classes",
			nil, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ClassListResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Classes)
	})
}
