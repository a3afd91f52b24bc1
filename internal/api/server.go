package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/example/gemini-relay/internal/models"
	"github.com/example/gemini-relay/internal/providers/llm"
)

// Submitter is the part of the relay the handlers need.
type Submitter interface {
	Submit(ctx context.Context, input string) (*models.Exchange, error)
}

type Server struct {
	relay Submitter
	log   zerolog.Logger
}

func NewServer(relay Submitter, log zerolog.Logger) *Server {
	return &Server{relay: relay, log: log}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /{$}", s.handlePageSubmit)
	mux.HandleFunc("POST /api/submit", s.handleSubmitJSON)
}

// Handler returns the routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = hlog.NewHandler(s.log)(h)
	return h
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, http.StatusOK, pageData{})
}

func (s *Server) handlePageSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := r.PostFormValue("prompt")
	ex, err := s.relay.Submit(r.Context(), input)
	if clientGone(r, err) {
		return
	}
	status := http.StatusOK
	if err != nil {
		ex = failed(ex, input, err)
		status = statusFor(ex)
	}
	s.writePage(w, r, status, pageData{Input: input, Exchange: ex})
}

func (s *Server) handleSubmitJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, "invalid body", "", http.StatusBadRequest)
		return
	}
	ex, err := s.relay.Submit(r.Context(), req.Prompt)
	if clientGone(r, err) {
		return
	}
	switch {
	case ex == nil && err == nil:
		w.WriteHeader(http.StatusNoContent)
	case err != nil:
		ex = failed(ex, req.Prompt, err)
		jsonErr(w, ex.Error, ex.ErrorKind, statusFor(ex))
	default:
		respondJSON(w, http.StatusOK, ex)
	}
}

// writePage renders into a buffer first so a template failure still yields a clean 500.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, d pageData) {
	var buf bytes.Buffer
	if err := renderPage(&buf, d); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// clientGone reports whether err only reflects the caller disconnecting, in
// which case there is nobody to answer.
func clientGone(r *http.Request, err error) bool {
	return err != nil && r.Context().Err() != nil && errors.Is(err, context.Canceled)
}

// failed makes sure a failed submission has an exchange carrying a message.
func failed(ex *models.Exchange, input string, err error) *models.Exchange {
	if ex != nil && ex.Failed() {
		return ex
	}
	kind := llm.KindOf(err)
	if kind == "" {
		kind = llm.KindService
	}
	if ex == nil {
		ex = models.NewExchange(input, "")
	}
	ex.ErrorKind = string(kind)
	ex.Error = llm.Message(kind)
	return ex
}

func statusFor(ex *models.Exchange) int {
	if ex != nil && ex.ErrorKind == string(llm.KindQuota) {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func jsonErr(w http.ResponseWriter, msg, kind string, code int) {
	body := map[string]string{"error": msg}
	if kind != "" {
		body["kind"] = kind
	}
	respondJSON(w, code, body)
}
