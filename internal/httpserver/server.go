// internal/httpserver/server.go
//
// HTTP wiring for the Verba backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", /api/v1/ping.
//   - Game endpoints: POST/PUT /api/v1/games, GET /api/v1/games/{id}.
//   - Catalog lookups: GET /api/v1/teams, GET /api/v1/vocs.
//   - Admin endpoints under /api/v1/admin, JWT-guarded except sign_in.
//
// Notes:
//   - Every business response uses the {code, message, data} envelope
//     with HTTP 200; the code is 0 on success and the error taxonomy
//     value otherwise. Malformed JSON is the exception (HTTP 400), as
//     is a missing/invalid admin token (HTTP 401).

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/verba-game/go-server/internal/game"
	"github.com/verba-game/go-server/internal/service"
	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/verr"
)

// Server bundles the router with the services it exposes.
type Server struct {
	r         *chi.Mux
	store     *store.SQLite
	games     *service.Games
	words     *service.Words
	users     *service.Users
	jwtSecret []byte
}

// New constructs a Server, installs middleware, and registers routes.
func New(st *store.SQLite, games *service.Games, words *service.Words, users *service.Users, jwtSecret []byte) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		store:     st,
		games:     games,
		words:     words,
		users:     users,
		jwtSecret: jwtSecret,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(30 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"verba-go","endpoints":["/health","/api/v1/games","/api/v1/admin/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", s.handlePing)
		r.Get("/teams", s.handleTeams)
		r.Get("/vocs", s.handleVocs)
		r.Post("/games", s.handleCreateGame)
		r.Put("/games", s.handleCompleteRound)
		r.Get("/games/{id}", s.handleGameView)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/users/sign_in", s.handleSignIn)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/words/search", s.handleSearchWords)
				r.Put("/words", s.handleUpdateWord)
				r.Put("/words/load_definitions", s.handleLoadDefinitions)
				r.Get("/words/stats", s.handleWordStats)
			})
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ envelope ------------------------------------

type envelope struct {
	Code    int     `json:"code"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
}

func respond(w http.ResponseWriter, data any) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Code: 0, Data: data})
}

func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	code := verr.CodeOf(err)
	if code == verr.CodeInfrastructure {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	msg := envelopeMessage(err)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Code: int(code), Message: &msg})
}

// envelopeMessage keeps the "[Tag] text" rendering for untagged errors
// too, so clients see a uniform message shape.
func envelopeMessage(err error) string {
	var e *verr.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return verr.Infra(err).Error()
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return false
	}
	return true
}

// ------------------------------ handlers ------------------------------------

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	respond(w, "pong")
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.store.AllTeams(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	views := make([]game.TeamView, len(teams))
	for i, t := range teams {
		views[i] = game.TeamView(t)
	}
	respond(w, views)
}

func (s *Server) handleVocs(w http.ResponseWriter, r *http.Request) {
	vocs, err := s.words.Vocs(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, vocs)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := s.games.Create(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, view)
}

func (s *Server) handleCompleteRound(w http.ResponseWriter, r *http.Request) {
	var req service.CompleteRoundRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := s.games.CompleteRound(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, view)
}

func (s *Server) handleGameView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondErr(w, r, verr.New(verr.CodeValidation, "Game id must be an integer"))
		return
	}
	view, err := s.games.View(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, view)
}
