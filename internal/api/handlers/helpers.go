package handlers

import (
	"delivery-quote-service/internal/api/dto"
	"delivery-quote-service/internal/platform/obs"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// writeJSON encodes v before any header is sent, so an encode failure still
// reaches the client as a 500 envelope.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		obs.FromContext(r.Context()).Error("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(dto.ErrorResponse{
			Success:   false,
			Error:     "Server error",
			RequestID: middleware.GetReqID(r.Context()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		obs.FromContext(r.Context()).Warn("write response failed", zap.Error(err))
	}
}

// WriteError writes the failure envelope. fields may be nil.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, fields []string) {
	writeJSON(w, r, status, dto.ErrorResponse{
		Success:   false,
		Error:     msg,
		Fields:    fields,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteError(w, r, status, msg, nil)
}
