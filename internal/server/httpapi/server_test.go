package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/esc-ranker/internal/errs"
	"github.com/and161185/esc-ranker/internal/model"
	"github.com/and161185/esc-ranker/internal/repository"
	"github.com/and161185/esc-ranker/internal/service"
)

// In-memory stores backing the real services for end-to-end handler tests.

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*model.User
}

var _ repository.UserRepository = (*memUsers)(nil)

func (m *memUsers) Exists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byName[username]
	return ok, nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byName == nil {
		m.byName = map[string]*model.User{}
	}
	if _, ok := m.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	m.byName[u.Username] = &cpy
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type memRankings struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Ranking
}

var _ repository.RankingRepository = (*memRankings)(nil)

func (m *memRankings) Create(_ context.Context, r *model.Ranking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = map[uuid.UUID]*model.Ranking{}
	}
	r.UpdatedAt = time.Now()
	cpy := *r
	m.byID[r.ID] = &cpy
	return nil
}

func (m *memRankings) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Ranking
	for _, r := range m.byID {
		if r.OwnerID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRankings) GetByID(_ context.Context, id uuid.UUID) (*model.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *memRankings) Update(_ context.Context, id, ownerID uuid.UUID, upd model.RankingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok || r.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	r.Name = upd.Name
	r.Description = upd.Description
	r.RankingString = upd.RankingString
	r.UpdatedAt = time.Now()
	return nil
}

func (m *memRankings) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok || r.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	iss := newVerifier(t)
	auth := service.NewAuthService(&memUsers{}, iss)
	rankings := service.NewRankingService(&memRankings{})
	api := New(auth, rankings, iss, zaptest.NewLogger(t), nil)
	return api.Handler()
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func register(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", registerRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	return decode[registerResponse](t, rec).UserID
}

func login(t *testing.T, h http.Handler, username, password string) loginResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", loginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	return decode[loginResponse](t, rec)
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	// Register alice.
	u1 := register(t, h, "alice", "pw1")
	if _, err := uuid.FromString(u1); err != nil {
		t.Fatalf("user id is not a uuid: %q", u1)
	}

	// The same username again is a conflict.
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", registerRequest{Username: "alice", Password: "pw2"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d, want 409", rec.Code)
	}

	// Missing fields.
	rec = do(t, h, http.MethodPost, "/api/auth/register", "", registerRequest{Username: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("register without password: status %d, want 400", rec.Code)
	}

	// Unknown user and wrong password answer identically.
	recGhost := do(t, h, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "ghost", Password: "pw1"})
	recWrong := do(t, h, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "alice", Password: "pw2"})
	if recGhost.Code != http.StatusUnauthorized || recWrong.Code != http.StatusUnauthorized {
		t.Fatalf("login failures: %d/%d, want 401/401", recGhost.Code, recWrong.Code)
	}
	if recGhost.Body.String() != recWrong.Body.String() {
		t.Fatalf("login failure bodies differ: %q vs %q", recGhost.Body.String(), recWrong.Body.String())
	}

	// Valid login returns a token bound to alice.
	sess := login(t, h, "alice", "pw1")
	if sess.Token == "" || sess.Username != "alice" || sess.UserID != u1 {
		t.Fatalf("bad session: %+v", sess)
	}
	if time.Until(sess.ExpiresAt) <= 0 {
		t.Fatalf("token already expired: %v", sess.ExpiresAt)
	}
}

func TestRankingEndpoints_Scenario(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	u1 := register(t, h, "alice", "pw1")
	register(t, h, "bob", "pw2")
	alice := login(t, h, "alice", "pw1").Token
	bob := login(t, h, "bob", "pw2").Token

	// Unauthenticated requests never reach business logic.
	if rec := do(t, h, http.MethodGet, "/api/rankings", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d, want 401", rec.Code)
	}

	// Alice creates a ranking.
	rec := do(t, h, http.MethodPost, "/api/rankings", alice, createRankingRequest{
		Name: "ESC2024", Year: 2024, RankingString: "SE,HR,CH",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[rankingResponse](t, rec)
	if created.OwnerID != u1 || created.Name != "ESC2024" {
		t.Fatalf("bad created ranking: %+v", created)
	}

	// Her list contains it; bob's does not.
	list := decode[[]rankingResponse](t, do(t, h, http.MethodGet, "/api/rankings", alice, nil))
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("alice list: %+v", list)
	}
	if list := decode[[]rankingResponse](t, do(t, h, http.MethodGet, "/api/rankings", bob, nil)); len(list) != 0 {
		t.Fatalf("bob list should be empty: %+v", list)
	}

	// Get by id is not owner-scoped: bob can read alice's ranking.
	if rec := do(t, h, http.MethodGet, "/api/rankings/"+created.ID, bob, nil); rec.Code != http.StatusOK {
		t.Fatalf("foreign get by id: status %d, want 200", rec.Code)
	}

	upd := updateRankingRequest{Name: "ESC2024 final", RankingString: "HR,SE,CH"}

	// Bob cannot mutate it; absent and foreign are the same 404.
	if rec := do(t, h, http.MethodPut, "/api/rankings/"+created.ID, bob, upd); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign update: status %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/rankings/"+created.ID, bob, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d, want 404", rec.Code)
	}

	// Alice can; updated_at advances.
	time.Sleep(5 * time.Millisecond)
	if rec := do(t, h, http.MethodPut, "/api/rankings/"+created.ID, alice, upd); rec.Code != http.StatusNoContent {
		t.Fatalf("owner update: status %d: %s", rec.Code, rec.Body.String())
	}
	after := decode[rankingResponse](t, do(t, h, http.MethodGet, "/api/rankings/"+created.ID, alice, nil))
	if after.Name != "ESC2024 final" || after.RankingString != "HR,SE,CH" {
		t.Fatalf("update not applied: %+v", after)
	}
	if !after.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %v -> %v", created.UpdatedAt, after.UpdatedAt)
	}
	if after.Year != created.Year {
		t.Fatalf("year must not change on update: %+v", after)
	}

	// Owner delete succeeds; the id is gone afterwards.
	if rec := do(t, h, http.MethodDelete, "/api/rankings/"+created.ID, alice, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/rankings/"+created.ID, alice, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestRankingEndpoints_BadInput(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	register(t, h, "alice", "pw1")
	alice := login(t, h, "alice", "pw1").Token

	if rec := do(t, h, http.MethodPost, "/api/rankings", alice, createRankingRequest{Year: 2024}); rec.Code != http.StatusBadRequest {
		t.Fatalf("create without name: status %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/rankings/not-a-uuid", alice, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/rankings/not-a-uuid", alice, updateRankingRequest{Name: "x", RankingString: "y"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id on update: status %d, want 400", rec.Code)
	}
}

func TestProbes(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	if rec := do(t, h, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz without probe: status %d", rec.Code)
	}
}

func TestReadyz_ProbeFailure(t *testing.T) {
	t.Parallel()

	iss := newVerifier(t)
	auth := service.NewAuthService(&memUsers{}, iss)
	rankings := service.NewRankingService(&memRankings{})
	api := New(auth, rankings, iss, zaptest.NewLogger(t), func(context.Context) error {
		return context.DeadlineExceeded
	})

	rec := do(t, api.Handler(), http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing probe: status %d, want 503", rec.Code)
	}
}
