package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ent0n29/chatterbox/internal/brain"
	"github.com/ent0n29/chatterbox/internal/chat"
	"github.com/ent0n29/chatterbox/internal/observability"
)

// CrashReply is the shape-only error contract: callers detect failure
// by the missing history field, not by status code.
const CrashReply = "Backend error — check logs"

// Exchanger runs one chat exchange.
type Exchanger interface {
	Exchange(ctx context.Context, message string, history []brain.Turn) chat.Result
}

// Server exposes the chat pipeline over HTTP.
type Server struct {
	service       Exchanger
	brainMode     string
	memoryBackend string
}

func New(service Exchanger, brainMode, memoryBackend string) *Server {
	return &Server{
		service:       service,
		brainMode:     brainMode,
		memoryBackend: memoryBackend,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.With(recoverToCrashReply).Post("/chat", s.handleChat)

	return r
}

type chatRequest struct {
	Message string       `json:"message"`
	History []brain.Turn `json:"history"`
}

type chatResponse struct {
	Response string       `json:"response"`
	History  []brain.Turn `json:"history"`
}

// crashResponse deliberately has no history field.
type crashResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		log.Printf("chat: bad request body: %v", err)
		respondJSON(w, http.StatusOK, crashResponse{Response: CrashReply})
		return
	}

	result := s.service.Exchange(r.Context(), req.Message, req.History)

	history := result.History
	if history == nil {
		history = []brain.Turn{}
	}
	respondJSON(w, http.StatusOK, chatResponse{Response: result.Response, History: history})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"brain_mode":     s.brainMode,
		"memory_backend": s.memoryBackend,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ready",
		"brain_mode":     s.brainMode,
		"memory_backend": s.memoryBackend,
	})
}

// recoverToCrashReply converts a panicking exchange into the degraded
// error shape instead of chi's default 500.
func recoverToCrashReply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("chat: recovered panic: %v", rec)
				respondJSON(w, http.StatusOK, crashResponse{Response: CrashReply})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		// Only a genuinely empty body reads as io.EOF; a truncated
		// document surfaces io.ErrUnexpectedEOF and stays an error.
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
