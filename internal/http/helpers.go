package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"gastos/internal/app"
	"gastos/internal/core"
	"gastos/internal/report"
)

const maxBodyBytes = 1 << 20

// parsePeriod reads ?year=&month= with a zero-based month. Missing values
// fall back to def.
func parsePeriod(r *http.Request, def core.Period) (core.Period, error) {
	p := def
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: year %q", app.ErrInvalidPeriod, v)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("%w: month %q", app.ErrInvalidPeriod, v)
		}
		p.Month = m
	}
	if !p.Valid() {
		return core.Period{}, fmt.Errorf("%w: %d-%d", app.ErrInvalidPeriod, p.Year, p.Month)
	}
	return p, nil
}

var errBadJSON = errors.New("malformed request body")

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadJSON):
		return http.StatusBadRequest
	case app.IsValidation(err):
		return http.StatusUnprocessableEntity
	case app.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail writes err with its mapped status. Internal failures hide the cause.
func fail(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, report.ErrRender) {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
