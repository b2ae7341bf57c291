package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/youssefm/gymclass-server/internal/api/testutils"
	"github.com/youssefm/gymclass-server/internal/models"
)

func inviteRequest(userID string, n int) models.InviteRequest {
	return models.InviteRequest{
		UserID:       userID,
		InvitedName:  fmt.Sprintf("Friend %d", n),
		InvitedAge:   25 + n,
		InvitedEmail: fmt.Sprintf("friend%d@example.com", n),
		InvitedPhone: fmt.Sprintf("+3120000%04d", n),
	}
}

func invitationsLeft(t *testing.T, testCtx *testutils.TestContext, userID string) int {
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet,
		"/user/"+userID+"/invitations", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.InvitationsLeftResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	return resp.InvitationsLeft
}

func TestInvite(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	t.Run("Success", func(t *testing.T) {
		assert.Equal(t, 10, invitationsLeft(t, testCtx, testCtx.TestUserID))

		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/user/invite",
			inviteRequest(testCtx.TestUserID, 1), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.InviteResponse
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, 9, resp.InvitationsLeft)
		assert.Equal(t, 9, invitationsLeft(t, testCtx, testCtx.TestUserID))

		// Exactly one invitation row written
		var count int
		err = testCtx.DB.QueryRow(
			"SELECT COUNT(*) FROM invitations WHERE user_id = $1", testCtx.TestUserID,
		).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("MissingFields", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/user/invite",
			map[string]string{"userId": testCtx.TestUserID}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/user/invite",
			inviteRequest("11111111-2222-3333-4444-555555555555", 2), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UnknownUserInvitationsLeft", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodGet,
			"/user/11111111-2222-3333-4444-555555555555/invitations", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Exhausts the allowance, checks the 11th invite is refused, then
// verifies the admin reset restores the default quota.
func TestInvitationQuotaAndReset(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	userID := testCtx.TestUserID

	for i := 1; i <= 10; i++ {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/user/invite",
			inviteRequest(userID, i), nil)
		assert.Equal(t, http.StatusOK, w.Code, "invite %d should succeed", i)
	}

	assert.Equal(t, 0, invitationsLeft(t, testCtx, userID))

	// 11th invite is refused and the counter stays at 0
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/user/invite",
		inviteRequest(userID, 11), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResp models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &errResp)
	assert.NoError(t, err)
	assert.Equal(t, "CONFLICT", errResp.Code)

	assert.Equal(t, 0, invitationsLeft(t, testCtx, userID))

	// No 11th invitation row
	var count int
	err = testCtx.DB.QueryRow(
		"SELECT COUNT(*) FROM invitations WHERE user_id = $1", userID,
	).Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 10, count)

	// Admin reset restores the allowance
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/reset-invitations",
		models.ResetInvitationsRequest{UserID: userID}, testutils.AuthHeaders(testCtx.AdminJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 10, invitationsLeft(t, testCtx, userID))
}

func TestResetInvitations(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	t.Run("RequiresAdmin", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/reset-invitations",
			models.ResetInvitationsRequest{UserID: testCtx.TestUserID},
			testutils.AuthHeaders(testCtx.TestUserJWT))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/reset-invitations",
			map[string]string{}, testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/admin/reset-invitations",
			models.ResetInvitationsRequest{UserID: "11111111-2222-3333-4444-555555555555"},
			testutils.AuthHeaders(testCtx.AdminJWT))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
