package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindingContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindNestedOrFlat_Payment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		body        string
		wantAmount  *int64
		expectError bool
	}{
		{name: "nested", body: `{"payment": {"amount_cents": 2500}}`, wantAmount: int64Ptr(2500)},
		{name: "flat", body: `{"amount_cents": 1000}`, wantAmount: int64Ptr(1000)},
		{name: "envelope wins over flat fields", body: `{"amount_cents": 1, "payment": {"amount_cents": 700}}`, wantAmount: int64Ptr(700)},
		{name: "other envelope falls back to flat", body: `{"installment": {"amount_cents": 9}, "amount_cents": 300}`, wantAmount: int64Ptr(300)},
		{name: "missing amount", body: `{"payment": {}}`},
		{name: "missing amount flat", body: `{}`},
		{name: "amount as string", body: `{"amount_cents": "100"}`, expectError: true},
		{name: "nested not an object", body: `{"payment": "100"}`, expectError: true},
		{name: "not json", body: `amount=100`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req recordPaymentRequest
			err := BindNestedOrFlat(bindingContext(tt.body), "payment", &req)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, req.AmountCents)
		})
	}
}

func TestBindNestedOrFlat_Reschedule(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "nested", body: `{"installment": {"due_date": "2026-03-15"}}`, want: "2026-03-15"},
		{name: "flat", body: `{"due_date": "2026-04-01"}`, want: "2026-04-01"},
		{name: "missing date", body: `{"installment": {}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req rescheduleRequest
			require.NoError(t, BindNestedOrFlat(bindingContext(tt.body), "installment", &req))
			assert.Equal(t, tt.want, req.DueDate)
		})
	}
}

func TestBindNestedOrFlat_RejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := `{"amount_cents": 1, "note": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	var req recordPaymentRequest
	err := BindNestedOrFlat(bindingContext(body), "payment", &req)

	var tooLarge *http.MaxBytesError
	assert.True(t, errors.As(err, &tooLarge))
	assert.Nil(t, req.AmountCents)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestBindNestedOrFlat_ReturnsReadError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", failingReader{})

	var req recordPaymentRequest
	err := BindNestedOrFlat(c, "payment", &req)
	assert.ErrorContains(t, err, "connection reset")
	assert.Nil(t, req.AmountCents)
}

func int64Ptr(v int64) *int64 { return &v }
