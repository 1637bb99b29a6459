package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"price-recon/internal/catalog"
	"price-recon/internal/config"
	"price-recon/internal/reconcile/model"
	recSvc "price-recon/internal/reconcile/service"
	"price-recon/internal/store"
)

// RunStore — история прогонов. nil — прогоны не сохраняются.
type RunStore interface {
	SaveRun(ctx context.Context, run store.Run) error
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetRun(ctx context.Context, id string) (store.Run, error)
}

// badRequest — ошибка входных данных, отдаётся клиентом как 400.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func badf(format string, args ...any) error { return badRequest{fmt.Errorf(format, args...)} }

type compareResponse struct {
	RunID   string         `json:"run_id,omitempty"`
	Records []model.Record `json:"records"`
	Stats   model.Stats    `json:"stats"`
}

// Compare — POST /compare, multipart: fileA, fileB, formatA, formatB,
// threshold, workers, duplicate_policy.
func Compare(cfg config.Config, runs RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll() //nolint:errcheck

		opt, err := formOptions(r, cfg.Options())
		if err != nil {
			writeErr(w, log, err)
			return
		}

		a, nameA, err := formCatalog(r, "fileA", "formatA")
		if err != nil {
			writeErr(w, log, err)
			return
		}
		b, nameB, err := formCatalog(r, "fileB", "formatB")
		if err != nil {
			writeErr(w, log, err)
			return
		}

		res, err := recSvc.Run(r.Context(), a, b, opt)
		if err != nil {
			if errors.Is(err, recSvc.ErrInvalidPriceFormat) {
				err = badRequest{err}
			}
			writeErr(w, log, err)
			return
		}
		logRejected(log, res.Rejected)

		resp := compareResponse{Records: res.Records, Stats: res.Stats}
		if runs != nil {
			run := store.NewRun(nameA, nameB, res)
			if err := runs.SaveRun(r.Context(), run); err != nil {
				writeErr(w, log, err)
				return
			}
			resp.RunID = run.ID
			w.Header().Set("X-Run-ID", run.ID)
		}

		writeJSON(w, http.StatusOK, resp)

		log.Info().
			Str("run_id", resp.RunID).
			Int("catalogA", res.Stats.CatalogA).
			Int("catalogB", res.Stats.CatalogB).
			Int("matched", res.Stats.Matched).
			Int("below_threshold", res.Stats.BelowThreshold).
			Int("invalid_prices", res.Stats.InvalidPrices).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")
	}
}

// ListRuns — GET /runs?limit=N.
func ListRuns(runs RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoi(r.URL.Query().Get("limit"), 20)
		list, err := runs.ListRuns(r.Context(), limit)
		if err != nil {
			writeErr(w, zerolog.Ctx(r.Context()), err)
			return
		}
		if list == nil {
			list = []store.Run{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetRun — GET /runs/{id}, прогон вместе с записями.
func GetRun(runs RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runs.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, zerolog.Ctx(r.Context()), err)
			return
		}
		if run.Records == nil {
			run.Records = []model.Record{}
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func formCatalog(r *http.Request, fileField, formatField string) ([]model.Product, string, error) {
	format, err := catalog.ParseFormat(r.FormValue(formatField))
	if err != nil {
		return nil, "", badRequest{err}
	}
	file, header, err := r.FormFile(fileField)
	if err != nil {
		return nil, "", badf("missing %s: %v", fileField, err)
	}
	defer file.Close()
	products, err := catalog.Read(file, header.Filename, format)
	if err != nil {
		return nil, "", badf("failed to read %s: %v", fileField, err)
	}
	return products, header.Filename, nil
}

// formOptions накладывает поля формы на параметры из конфига.
func formOptions(r *http.Request, opt model.Options) (model.Options, error) {
	if s := strings.TrimSpace(r.FormValue("threshold")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
			return opt, badf("threshold must be a number within 0..100, got %q", s)
		}
		opt.Threshold = v
	}
	if s := strings.TrimSpace(r.FormValue("workers")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return opt, badf("workers must be >= 1, got %q", s)
		}
		opt.Workers = n
	}
	if s := r.FormValue("duplicate_policy"); s != "" {
		dup, err := model.ParseDuplicatePolicy(s)
		if err != nil {
			return opt, badRequest{err}
		}
		opt.Duplicates = dup
	}
	return opt, nil
}

func logRejected(log *zerolog.Logger, rejected []model.Rejection) {
	for _, rj := range rejected {
		log.Debug().
			Str("name", rj.Name).
			Str("price", rj.Price).
			Str("reason", rj.Reason).
			Str("best", rj.Best).
			Float64("score", rj.Score).
			Msg("rejected")
	}
}

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return 499 // клиент ушёл
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, log *zerolog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
