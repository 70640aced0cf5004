package handlers

import (
	"context"
	"delivery-quote-service/internal/api/dto"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Quoter interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Calculation, error)
}

type CalculateHandler struct {
	Quotes Quoter
}

// Calculate prices one parcel and returns the itemized breakdown.
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req dto.CalculateRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			ve := &domain.ValidationError{Invalid: []string{typeErr.Field}}
			WriteError(w, r, http.StatusBadRequest, ve.Error(), ve.Fields())
			return
		}
		writeError(w, r, http.StatusBadRequest, "Invalid JSON format in request")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	quoteReq, err := req.ToDomain()
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			WriteError(w, r, http.StatusBadRequest, ve.Error(), ve.Fields())
			return
		}
		obs.FromContext(r.Context()).Error("validate request failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	calc, err := h.Quotes.Quote(r.Context(), quoteReq)
	if err != nil {
		obs.FromContext(r.Context()).Error("quote failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CalculateResponse{
		Success:       true,
		Breakdown:     dto.NewBreakdownResponse(calc.Breakdown),
		CalculationID: calc.ID.String(),
	})
}
