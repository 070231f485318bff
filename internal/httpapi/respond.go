package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/fjod/storefront/internal/checkout"
)

// Responder writes the `{success, message?, ...}` envelope. In legacy mode
// (the default) failures still go out as HTTP 200 with success:false, which
// is what the existing storefront frontend expects. Strict mode uses real
// status codes.
type Responder struct {
	strict bool
}

func NewResponder(strict bool) *Responder {
	return &Responder{strict: strict}
}

func (rp *Responder) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// OK writes a success envelope. The payload is nested under "data" and the
// message stays top level, matching the shape the frontend already consumes.
// Either may be empty.
func (rp *Responder) OK(w http.ResponseWriter, message string, data any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	rp.writeJSON(w, http.StatusOK, body)
}

// Fail writes a success:false envelope. The status is honored only in
// strict mode.
func (rp *Responder) Fail(w http.ResponseWriter, status int, message string) {
	if !rp.strict {
		status = http.StatusOK
	}
	rp.writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// FailErr classifies a domain error onto a status code and writes it out.
func (rp *Responder) FailErr(w http.ResponseWriter, err error) {
	rp.Fail(w, kindStatus(checkout.Classify(err)), err.Error())
}

func kindStatus(kind checkout.FailureKind) int {
	switch kind {
	case checkout.KindValidation:
		return http.StatusBadRequest
	case checkout.KindNotFound:
		return http.StatusNotFound
	case checkout.KindStockConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
