// internal/app/system/httpx/httpx.go
//
// JSON envelope helpers. Every API response uses the shape
//
//	{ "success": bool, "message"?: string, "code"?: string, "data"?: ... }
//
// so clients can branch on success without inspecting status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/coursedeck/internal/app/system/apperr"
)

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// MaxJSONBody caps JSON request bodies.
const MaxJSONBody = 1 << 20 // 1 MB

// OK writes a 200 with data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 with a human-readable message and optional data.
func OKMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 with data.
func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error writes the failure envelope for err, mapping its kind to a status
// code. Internal errors are logged with their cause; the client only sees
// a generic message.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.MessageOf(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		msg = "internal server error"
	}
	writeJSON(w, status, Envelope{Success: false, Message: msg, Code: apperr.CodeOf(err)})
}

// DecodeJSON reads a JSON body into dst, enforcing the size cap and
// rejecting trailing garbage. Unknown fields are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	if dec.More() {
		return apperr.BadRequest("unexpected data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		// Headers are already out; nothing useful left to do.
		_ = err
	}
}
