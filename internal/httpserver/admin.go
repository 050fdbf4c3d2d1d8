// internal/httpserver/admin.go
//
// Admin surface: sign-in plus the JWT guard and word catalog handlers.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/verba-game/go-server/internal/service"
)

// bearerToken pulls the token out of an Authorization header, "" when
// absent or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// requireAdmin rejects requests without a valid HS256 token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, resp)
}

func (s *Server) handleSearchWords(w http.ResponseWriter, r *http.Request) {
	var req service.SearchWordsRequest
	if !decode(w, r, &req) {
		return
	}
	views, err := s.words.Search(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, views)
}

func (s *Server) handleUpdateWord(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateWordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.words.Update(r.Context(), req); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, nil)
}

func (s *Server) handleLoadDefinitions(w http.ResponseWriter, r *http.Request) {
	var req service.LoadDefinitionsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.words.LoadDefinitions(r.Context(), req); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, nil)
}

func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.words.Stats(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, stats)
}
