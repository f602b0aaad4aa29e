package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentbooks/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type splitPayload struct {
	TotalAmount string `json:"total_amount" binding:"required"`
	Currency    string `json:"currency" binding:"omitempty,currency"`
	Method      string `json:"method" binding:"required,oneof=EQUAL PROPORTIONAL"`
}

func newValidationTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	r := gin.New()
	r.POST("/split", func(c *gin.Context) {
		var payload splitPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(payload))
	})
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCurrencyValidatorAcceptsSupportedCodes(t *testing.T) {
	r := newValidationTestEngine()

	for _, currency := range []string{"BRL", "USD", "EUR"} {
		w := postJSON(t, r, "/split", splitPayload{
			TotalAmount: "100.00",
			Currency:    currency,
			Method:      "EQUAL",
		})
		assert.Equal(t, http.StatusOK, w.Code, currency)
	}
}

func TestCurrencyValidatorRejectsUnknownCode(t *testing.T) {
	r := newValidationTestEngine()

	w := postJSON(t, r, "/split", splitPayload{
		TotalAmount: "100.00",
		Currency:    "GBP",
		Method:      "EQUAL",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "currency", resp.Error.Details[0].Field)
	assert.Equal(t, "Unsupported currency code", resp.Error.Details[0].Message)
}

func TestValidationUsesJSONFieldNames(t *testing.T) {
	r := newValidationTestEngine()

	w := postJSON(t, r, "/split", splitPayload{Currency: "BRL"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)

	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "total_amount")
	assert.Contains(t, fields, "method")
}

func TestOneofValidationMessage(t *testing.T) {
	r := newValidationTestEngine()

	w := postJSON(t, r, "/split", splitPayload{
		TotalAmount: "100.00",
		Method:      "WEIGHTED",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "method", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be one of: EQUAL PROPORTIONAL", resp.Error.Details[0].Message)
}
