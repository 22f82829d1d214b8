// Package httpapi exposes the ranking service REST handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/esc-ranker/internal/errs"
	"github.com/and161185/esc-ranker/internal/model"
	"github.com/and161185/esc-ranker/internal/obs"
	"github.com/and161185/esc-ranker/internal/service"
	"github.com/and161185/esc-ranker/internal/token"
)

// TokenVerifier validates bearer tokens. Implemented by token.Issuer.
type TokenVerifier interface {
	Verify(tokenString string) (token.Identity, error)
}

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	rankings service.RankingService
	verifier TokenVerifier
	log      *zap.Logger
	ready    func(ctx context.Context) error
	mux      *http.ServeMux
}

// New constructs the HTTP server with injected services. ready is the
// readiness probe, typically the DB pool ping; nil disables the check.
func New(auth service.AuthService, rankings service.RankingService, verifier TokenVerifier, log *zap.Logger, ready func(ctx context.Context) error) *Server {
	s := &Server{
		auth:     auth,
		rankings: rankings,
		verifier: verifier,
		log:      log,
		ready:    ready,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.Handle("POST /api/rankings", s.requireAuth(s.handleCreateRanking))
	s.mux.Handle("GET /api/rankings", s.requireAuth(s.handleListRankings))
	s.mux.Handle("GET /api/rankings/{id}", s.requireAuth(s.handleGetRanking))
	s.mux.Handle("PUT /api/rankings/{id}", s.requireAuth(s.handleUpdateRanking))
	s.mux.Handle("DELETE /api/rankings/{id}", s.requireAuth(s.handleDeleteRanking))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", obs.Handler())
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = obs.Instrument(h)
	h = Logging(s.log)(h)
	h = Recover(s.log)(h)
	h = RequestID(h)
	return h
}

// --- Auth ---

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	ProfilePicURL string `json:"profile_pic_url"`
	Description   string `json:"description"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	userID, err := s.auth.Register(r.Context(), service.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		Email:         req.Email,
		ProfilePicURL: req.ProfilePicURL,
		Description:   req.Description,
	})
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		s.internalError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{UserID: userID})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			// One message for unknown user and wrong password.
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.internalError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		Username:  sess.Username,
		UserID:    sess.UserID.String(),
		ExpiresAt: sess.ExpiresAt,
	})
}

// --- Rankings ---

type createRankingRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Year          int    `json:"year"`
	RankingString string `json:"ranking_string"`
}

type updateRankingRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	RankingString string `json:"ranking_string"`
}

type rankingResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Year          int       `json:"year"`
	RankingString string    `json:"ranking_string"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toRankingResponse(rk model.Ranking) rankingResponse {
	return rankingResponse{
		ID:            rk.ID.String(),
		OwnerID:       rk.OwnerID.String(),
		Name:          rk.Name,
		Description:   rk.Description,
		Year:          rk.Year,
		RankingString: rk.RankingString,
		UpdatedAt:     rk.UpdatedAt,
	}
}

func (s *Server) handleCreateRanking(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createRankingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Name == "" || req.RankingString == "" {
		writeError(w, http.StatusBadRequest, "name and ranking_string are required")
		return
	}

	rk, err := s.rankings.Create(r.Context(), ident.UserID, model.NewRanking{
		Name:          req.Name,
		Description:   req.Description,
		Year:          req.Year,
		RankingString: req.RankingString,
	})
	if err != nil {
		s.internalError(w, r, "create ranking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRankingResponse(*rk))
}

func (s *Server) handleListRankings(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := s.rankings.ListOwned(r.Context(), ident.UserID)
	if err != nil {
		s.internalError(w, r, "list rankings", err)
		return
	}
	out := make([]rankingResponse, 0, len(list))
	for _, rk := range list {
		out = append(out, toRankingResponse(rk))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}

	// Read by id is not owner-scoped: any authenticated user may fetch
	// any ranking. Only list and mutations are tied to the caller.
	rk, err := s.rankings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.internalError(w, r, "get ranking", err)
		return
	}
	writeJSON(w, http.StatusOK, toRankingResponse(*rk))
}

func (s *Server) handleUpdateRanking(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}
	var req updateRankingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Name == "" || req.RankingString == "" {
		writeError(w, http.StatusBadRequest, "name and ranking_string are required")
		return
	}

	err = s.rankings.Update(r.Context(), id, ident.UserID, model.RankingUpdate{
		Name:          req.Name,
		Description:   req.Description,
		RankingString: req.RankingString,
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// Absent and foreign targets answer the same.
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.internalError(w, r, "update ranking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRanking(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return
	}

	if err := s.rankings.Delete(r.Context(), id, ident.UserID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.internalError(w, r, "delete ranking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Probes ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- helpers ---

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	// Store faults stay opaque to the client.
	s.log.Error(op,
		zap.Error(err),
		zap.String("request_id", RequestIDFromCtx(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
