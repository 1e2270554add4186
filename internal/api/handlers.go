package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calcservice"
	"github.com/starford/tempus/internal/iso"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *calcservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *calcservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// calculate decodes the body into the request type of op and runs it.
func (h *Handler) calculate(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := calcservice.NewRequest(op)
		if err != nil {
			writeError(w, h.logger, op, err)
			return
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
				return
			}
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
			return
		}
		resp, err := h.svc.Calculate(r.Context(), op, req)
		if err != nil {
			writeError(w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Add handles POST /api/add.
//
//	@Summary		Add a duration to a value
//	@Tags			arithmetic
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ArithmeticRequest	true	"Value and duration"
//	@Success		200		{object}	models.ValueResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/add [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpAdd)(w, r)
}

// Subtract handles POST /api/subtract.
//
//	@Summary		Subtract a duration from a value
//	@Tags			arithmetic
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ArithmeticRequest	true	"Value and duration"
//	@Success		200		{object}	models.ValueResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/subtract [post]
func (h *Handler) Subtract(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpSubtract)(w, r)
}

// Until handles POST /api/until.
//
//	@Summary		Duration from one value to another
//	@Tags			difference
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DifferenceRequest	true	"Both values and difference options"
//	@Success		200		{object}	models.DurationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/until [post]
func (h *Handler) Until(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpUntil)(w, r)
}

// Since handles POST /api/since.
//
//	@Summary		Duration from another value back to this one
//	@Tags			difference
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DifferenceRequest	true	"Both values and difference options"
//	@Success		200		{object}	models.DurationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/since [post]
func (h *Handler) Since(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpSince)(w, r)
}

// Round handles POST /api/round.
func (h *Handler) Round(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpRound)(w, r)
}

// DurationRound handles POST /api/duration/round.
//
//	@Summary		Round and balance a duration
//	@Tags			duration
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DurationRoundRequest	true	"Duration, optional relativeTo and rounding options"
//	@Success		200		{object}	models.DurationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/duration/round [post]
func (h *Handler) DurationRound(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpDurationRound)(w, r)
}

// DurationTotal handles POST /api/duration/total.
func (h *Handler) DurationTotal(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpDurationTotal)(w, r)
}

// DurationAdd handles POST /api/duration/add.
func (h *Handler) DurationAdd(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpDurationAdd)(w, r)
}

// DurationCompare handles POST /api/duration/compare.
func (h *Handler) DurationCompare(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpDurationCompare)(w, r)
}

// Resolve handles POST /api/resolve.
//
//	@Summary		Resolve local fields in a time zone to an exact instant
//	@Tags			zones
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResolveRequest	true	"ZonedDateTime record and offset/disambiguation options"
//	@Success		200		{object}	models.ValueResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [post]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpResolve)(w, r)
}

// With handles POST /api/with.
//
//	@Summary		Replace some fields of a value
//	@Tags			arithmetic
//	@Accept			json
//	@Produce		json
//	@Param			body	body		WithRequest	true	"Value record, replacement fields and overflow/offset/disambiguation options"
//	@Success		200		{object}	models.ValueResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/with [post]
func (h *Handler) With(w http.ResponseWriter, r *http.Request) {
	h.calculate(calcservice.OpWith)(w, r)
}

// zonePath extracts the zone id from /api/zones/{id}/day. Zone ids contain
// slashes, so the id is taken from the wildcard; encoded slashes are accepted.
func zonePath(r *http.Request) (string, bool) {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	id, ok := strings.CutSuffix(raw, "/day")
	if !ok || id == "" {
		return "", false
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	return id, true
}

// ZoneDay handles GET /api/zones/{id}/day.
//
//	@Summary		Start and length of a local day in a zone
//	@Tags			zones
//	@Produce		json
//	@Param			id		path		string	true	"Zone id, e.g. America/New_York"
//	@Param			date	query		string	true	"ISO date, e.g. 2021-11-07"
//	@Success		200		{object}	models.DayResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/zones/{id}/day [get]
func (h *Handler) ZoneDay(w http.ResponseWriter, r *http.Request) {
	id, ok := zonePath(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, h.logger, calcservice.OpDay, err)
		return
	}
	resp, err := h.svc.Day(r.Context(), id, date)
	if err != nil {
		writeError(w, h.logger, calcservice.OpDay, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseDate(s string) (iso.Date, error) {
	if s == "" {
		return iso.Date{}, fmt.Errorf("api: %w: query parameter 'date' is required", apperr.ErrInvalidOption)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return iso.Date{}, fmt.Errorf("api: %w: date %q is not YYYY-MM-DD", apperr.ErrInvalidOption, s)
	}
	return iso.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ListZones handles GET /api/zones.
//
//	@Summary		List catalog zones
//	@Tags			zones
//	@Produce		json
//	@Success		200	{object}	ZoneListResponse
//	@Security		BearerAuth
//	@Router			/zones [get]
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ZoneListResponse{Zones: h.svc.ListZones(r.Context())})
}

// Options handles GET /api/options.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OptionsResponse{
		Options:   calcservice.Options(),
		Calendars: h.svc.Calendars(),
	})
}
