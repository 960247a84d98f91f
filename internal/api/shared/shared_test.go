package shared

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTraceID(t *testing.T) {
	ctx := SetTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))

	generated := GetTraceID(SetTraceID(context.Background(), ""))
	assert.Len(t, generated, 36)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{"valid username", CreateUserRequest{Username: "mia_01"}, false},
		{"short username", CreateUserRequest{Username: "ab"}, true},
		{"grade zero", NewSubmitReviewRequest(domain.GradeBlackout), false},
		{"grade five", NewSubmitReviewRequest(domain.GradePerfect), false},
		{"grade out of range", NewSubmitReviewRequest(domain.Grade(6)), true},
		{"missing quality", SubmitReviewRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	r = r.WithContext(SetTraceID(r.Context(), "trace-1"))
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusNotFound, "user not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body["error"])
	assert.Equal(t, "trace-1", body["trace_id"])
	assert.NotContains(t, body, "Code")
}
