package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var h BaseHandler
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		h.HandleError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandleErrorDomainErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.NewDomainError(shared.CodeNotFound, "Declaration not found"), http.StatusNotFound, "NOT_FOUND"},
		{"invalid state", shared.NewDomainError(shared.CodeInvalidState, "Declaration is already committed"), http.StatusConflict, "INVALID_STATE"},
		{"parse error", shared.NewParseError("invalid amount"), http.StatusBadRequest, "PARSE_ERROR"},
		{"insufficient data", shared.NewInsufficientDataError("all weights are zero"), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{"reconciliation", shared.NewReconciliationError("shares do not sum to total"), http.StatusInternalServerError, "RECONCILIATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithError(t, tt.err)
			assert.Equal(t, tt.status, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleErrorUnknownError(t *testing.T) {
	w := serveWithError(t, errors.New("database gone"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	// Raw infrastructure errors are never leaked to clients
	assert.NotContains(t, resp.Error.Message, "database gone")
}

func TestHandleErrorIncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var h BaseHandler
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		c.Set("request_id", "req-42")
		h.HandleError(c, shared.ErrNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-42", resp.Error.RequestID)
}
