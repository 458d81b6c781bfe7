package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	const valid = "0f8fad5b-d9cb-469f-a165-70867728950e"
	assert.Equal(t, valid, GetTraceID(SetTraceID(context.Background(), valid)))

	generated := GetTraceID(SetTraceID(context.Background(), "not a uuid\n"))
	assert.NotEqual(t, "not a uuid\n", generated)
	assert.Len(t, generated, 36)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"name":"vega"}`, false},
		{"unknown field", `{"name":"vega","mass":2}`, true},
		{"trailing object", `{"name":"vega"}{"name":"deneb"}`, true},
		{"empty", ``, true},
		{"oversized", `{"name":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.input))
			var out body
			err := DecodeJSON(req, &out)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "vega", out.Name)
		})
	}
}

func TestValidateRequest_UsesJSONNames(t *testing.T) {
	t.Parallel()

	type body struct {
		QuestionID string `json:"questionId" validate:"required"`
	}
	err := ValidateRequest(&body{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "questionId")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"server error", http.StatusInternalServerError, "ERROR"},
		{"conflict", http.StatusConflict, "WARN"},
		{"client error", http.StatusNotFound, "DEBUG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, buf := logger.NewTestContext(t)
			ctx = SetTraceID(ctx, "")
			req := httptest.NewRequest(http.MethodGet, "/api/mastery", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			RespondWithErrorAndLog(rec, req, tc.status, "Something failed",
				errors.New("dial postgres://admin:hunter2@db:5432/app"))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Something failed", resp.Error)
			assert.Equal(t, GetTraceID(ctx), resp.TraceID)
			assert.NotContains(t, rec.Body.String(), "hunter2")

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0]["level"])
			assert.NotContains(t, buf.String(), "hunter2")
		})
	}
}
