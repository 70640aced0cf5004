package handlers

import (
	"delivery-quote-service/internal/api/dto"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CalculationHandler struct {
	Repo ports.CalculationRepository
}

// List browses stored calculations, newest first.
func (h *CalculationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ports.CalculationFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.ToLower(strings.TrimSpace(q.Get("package_type"))),
	}

	var invalid []string
	var err error
	if filter.IsFragile, err = optionalBool(q.Get("is_fragile")); err != nil {
		invalid = append(invalid, "is_fragile")
	}
	if filter.NeedsInsurance, err = optionalBool(q.Get("needs_insurance")); err != nil {
		invalid = append(invalid, "needs_insurance")
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > ports.MaxListLimit {
			invalid = append(invalid, "limit")
		}
		filter.Limit = n
	}
	if len(invalid) > 0 {
		ve := &domain.ValidationError{Invalid: invalid}
		WriteError(w, r, http.StatusBadRequest, ve.Error(), ve.Fields())
		return
	}

	calcs, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		obs.FromContext(r.Context()).Error("list calculations failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	res := dto.ListCalculationsResponse{
		Success:      true,
		Calculations: make([]dto.CalculationResponse, 0, len(calcs)),
	}
	for _, c := range calcs {
		res.Calculations = append(res.Calculations, dto.NewCalculationResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one stored calculation.
func (h *CalculationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "calculation not found")
		return
	}

	calc, err := h.Repo.Get(r.Context(), id)
	if errors.Is(err, domain.ErrCalculationNotFound) {
		writeError(w, r, http.StatusNotFound, "calculation not found")
		return
	}
	if err != nil {
		obs.FromContext(r.Context()).Error("get calculation failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GetCalculationResponse{
		Success:     true,
		Calculation: dto.NewCalculationResponse(calc),
	})
}

func optionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
