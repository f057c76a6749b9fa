package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintduel/ladder-server/internal/domain"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertTier verifies a trophy count resolves to the expected tier
func AssertTier(t *testing.T, trophies int, expected domain.Tier) {
	t.Helper()
	assert.Equal(t, expected, domain.GetTier(trophies).Name, "trophies %d resolved to wrong tier", trophies)
}

// AssertProgression verifies the stored facts of a progression state
func AssertProgression(t *testing.T, state *domain.ProgressionState, trophies, prestige int) {
	t.Helper()
	require.NotNil(t, state)
	assert.Equal(t, trophies, state.Trophies, "unexpected trophy count")
	assert.Equal(t, prestige, state.PrestigeLevel, "unexpected prestige level")
}
