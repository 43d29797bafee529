package main

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/solbras/fatura-cli/internal/extract"
	"github.com/solbras/fatura-cli/internal/model"
	"github.com/solbras/fatura-cli/internal/pdftext"
	"github.com/solbras/fatura-cli/internal/scorer"
	"github.com/solbras/fatura-cli/internal/store"
)

const (
	appName    = "fatura-cli"
	appVersion = "1.2.0"
)

type server struct {
	extractor *extract.Extractor
	store     store.Store
	maxUpload int64
	started   time.Time
}

func (s *server) routes(rps float64, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	// Extraction routes share one token bucket; health stays unmetered.
	r.Group(func(r chi.Router) {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(rps), burst)))
		r.Post("/extract", s.handleExtract)
		r.Post("/validate", s.handleValidate)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"app":         appName,
		"version":     appVersion,
		"uptime_secs": int(time.Since(s.started).Seconds()),
		"now":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	buf, name, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	rec, err := s.extractUpload(r, buf, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	buf, name, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	gold, err := s.readGold(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.extractUpload(r, buf, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// No gold record is a distinct outcome from a low score.
	if gold == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"record": rec,
			"note":   "no gold record supplied, nothing to score",
		})
		return
	}

	report, err := scorer.Score(rec, gold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record": rec,
		"report": report,
	})
}

// readGold reads the optional gold record from the "gold" multipart file
// part or, failing that, an inline "gold" form value holding JSON. A nil
// result with nil error means no gold was supplied at all.
func (s *server) readGold(r *http.Request) (*model.InvoiceRecord, error) {
	if file, header, err := r.FormFile("gold"); err == nil {
		defer file.Close()
		buf, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		return scorer.ParseGold(buf, ext == ".yaml" || ext == ".yml")
	}
	if inline := r.FormValue("gold"); inline != "" {
		return scorer.ParseGold([]byte(inline), false)
	}
	return nil, nil
}

// extractUpload runs the pipeline on an uploaded PDF and persists the run
// when a store is attached.
func (s *server) extractUpload(r *http.Request, buf []byte, name string) (*model.InvoiceRecord, error) {
	run := model.Run{Source: name, Status: model.RunStatusOK}

	frags, err := pdftext.Extract(buf)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		s.saveRun(r, &run)
		return nil, err
	}

	rec := s.extractor.Extract(frags)
	run.Record = &rec
	s.saveRun(r, &run)
	return &rec, nil
}

func (s *server) saveRun(r *http.Request, run *model.Run) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRun(r.Context(), run); err != nil {
		zap.L().Warn("failed to persist run", zap.String("source", run.Source), zap.Error(err))
	}
}

// readUpload reads one required multipart file field, writing the error
// response itself when the field is missing or oversized.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	maxUpload := s.maxUpload
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+" upload is required")
		return nil, "", false
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read "+field+" upload: "+err.Error())
		return nil, "", false
	}
	return buf, header.Filename, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
