package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps settlement request bodies; the largest is a purchase
// with its installment plan.
const maxBodyBytes = 1 << 20

// BindNestedOrFlat decodes the JSON body into obj. Clients may send the
// fields wrapped in an envelope named key, e.g. {"payment": {"amount_cents": 500}},
// {"installment": {"due_date": "2026-03-15"}} or {"purchase": {...}}, or flat
// at the top level. The envelope wins when present. The body is read once,
// capped at maxBodyBytes, and a failed read is returned as an error.
func BindNestedOrFlat(c *gin.Context, key string, obj any) error {
	if c.Request.Body == nil {
		return fmt.Errorf("empty request body")
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	var envelope map[string]json.RawMessage
	if json.Unmarshal(body, &envelope) == nil {
		if nested, ok := envelope[key]; ok {
			return json.Unmarshal(nested, obj)
		}
	}

	return json.Unmarshal(body, obj)
}
