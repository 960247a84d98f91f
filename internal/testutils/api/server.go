package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-words/internal/api/middleware"
	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service/auth"
)

// Route names, matching the client's operation names.
const (
	RouteCreateUser       = "create_user"
	RouteGetUser          = "get_user"
	RouteGetUserStats     = "get_user_stats"
	RouteGetWord          = "get_word"
	RouteAddWordToList    = "add_word_to_list"
	RouteGetUserWords     = "get_user_words"
	RouteGetDueWords      = "get_due_words"
	RouteSubmitReview     = "submit_review"
	RouteGetReviewHistory = "get_review_history"
	RouteEndSession       = "end_session"

	// Cookie-session routes of the alternate contract.
	RouteSessionMe   = "session_me"
	RouteSessionUser = "session_user"
)

// BasePath is where the contract is mounted.
const BasePath = "/api"

// Submission is one accepted review.
type Submission struct {
	Username string
	Word     string
	Quality  int
}

// Server is a fake vocabulary service.
type Server struct {
	*httptest.Server

	tokens auth.TokenService
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	nextID      int64
	users       map[string]domain.Identity
	dictionary  map[string]domain.WordDetail
	lists       map[string][]*domain.UserWord
	due         map[string][]domain.DueItem
	history     map[string][]domain.ReviewRecord
	stats       map[string]domain.Stats
	calls       map[string]int
	requestIDs  []string
	authHeaders []string
	submissions []Submission
	faults      map[string]*Fault
	gates       map[string][]*Gate
}

// Option configures a Server.
type Option func(*Server)

// WithTokens makes every username-scoped route require a bearer token whose
// subject matches the username in the path.
func WithTokens(tokens auth.TokenService) Option {
	return func(s *Server) { s.tokens = tokens }
}

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer starts a fake service and registers its shutdown with t.Cleanup.
func NewServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		users:      make(map[string]domain.Identity),
		dictionary: make(map[string]domain.WordDetail),
		lists:      make(map[string][]*domain.UserWord),
		due:        make(map[string][]domain.DueItem),
		history:    make(map[string][]domain.ReviewRecord),
		stats:      make(map[string]domain.Stats),
		calls:      make(map[string]int),
		faults:     make(map[string]*Fault),
		gates:      make(map[string][]*Gate),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the URL to configure the client with.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/words/{word}", s.route(RouteGetWord, s.getWord))
		r.Post("/users", s.route(RouteCreateUser, s.createUser))
		r.Post("/auth/logout", s.route(RouteEndSession, s.endSession))

		r.Get("/auth/me", s.route(RouteSessionMe, s.notAuthenticated))
		r.Get("/user", s.route(RouteSessionUser, s.notAuthenticated))

		r.Route("/users/{username}", func(r chi.Router) {
			if s.tokens != nil {
				r.Use(middleware.NewAuthMiddleware(s.tokens).Authenticate)
				r.Use(s.requireOwner)
			}
			r.Get("/", s.route(RouteGetUser, s.getUser))
			r.Get("/stats", s.route(RouteGetUserStats, s.getStats))
			r.Get("/words", s.route(RouteGetUserWords, s.getUserWords))
			r.Post("/words/{word}", s.route(RouteAddWordToList, s.addWord))
			r.Get("/review", s.route(RouteGetDueWords, s.getDue))
			r.Post("/review/{word}", s.route(RouteSubmitReview, s.submitReview))
			r.Get("/review/{word}/history", s.route(RouteGetReviewHistory, s.getHistory))
		})
	})
	return r
}

// requireOwner rejects tokens issued for a different username.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := middleware.GetUsername(r)
		if subject != param(r, "username") {
			shared.RespondWithError(w, r, http.StatusForbidden, "token does not match user")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// route wraps h with call counting, fault injection and gating.
func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		s.requestIDs = append(s.requestIDs, r.Header.Get(shared.RequestIDHeader))
		s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
		fault := s.takeFault(name)
		gate := s.takeGate(name)
		s.mu.Unlock()

		if fault != nil && fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-r.Context().Done():
				return
			}
		}

		rec := httptest.NewRecorder()
		switch {
		case fault != nil && fault.Drop:
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		case fault != nil && fault.Body != "":
			rec.Header().Set("Content-Type", "application/json")
			rec.WriteHeader(statusOr(fault.Status, http.StatusOK))
			_, _ = rec.WriteString(fault.Body)
		case fault != nil && fault.Status != 0:
			shared.RespondWithError(rec, r, fault.Status, fault.Message)
		default:
			h(rec, r)
		}

		if gate != nil {
			close(gate.arrived)
			select {
			case <-gate.release:
			case <-r.Context().Done():
				return
			}
		}

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.Code)
		_, _ = w.Write(rec.Body.Bytes())
	}
}

func statusOr(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}

// takeFault returns the active fault for name, consuming one use. Caller holds mu.
func (s *Server) takeFault(name string) *Fault {
	f, ok := s.faults[name]
	if !ok {
		return nil
	}
	out := *f
	if f.Times > 0 {
		f.Times--
		if f.Times == 0 {
			delete(s.faults, name)
		}
	}
	return &out
}

// takeGate pops the next gate for name. Caller holds mu.
func (s *Server) takeGate(name string) *Gate {
	q := s.gates[name]
	if len(q) == 0 {
		return nil
	}
	s.gates[name] = q[1:]
	return q[0]
}

// Fail installs f for route, replacing any previous fault.
func (s *Server) Fail(route string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = &f
}

// HoldNext holds the next response of route until the returned gate is
// released. Gates queue in call order.
func (s *Server) HoldNext(route string) *Gate {
	g := newGate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates[route] = append(s.gates[route], g)
	return g
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests across all routes.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// RequestIDs returns the X-Request-ID of every request, in arrival order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// AuthHeaders returns the Authorization header of every request.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

// Submissions returns every accepted review, in order.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}

// AddUser registers username as if created earlier.
func (s *Server) AddUser(username string) domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username)
}

func (s *Server) addUserLocked(username string) domain.Identity {
	s.nextID++
	id := domain.Identity{ID: s.nextID, Username: username, CreatedAt: s.now().UTC()}
	s.users[username] = id
	return id
}

// HasUser reports whether username exists.
func (s *Server) HasUser(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// AddDictionaryWord makes detail available to GET /words/{word}.
func (s *Server) AddDictionaryWord(detail domain.WordDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionary[strings.ToLower(detail.Word)] = detail
}

// SetDue replaces username's due queue; each word is also put on the list.
func (s *Server) SetDue(username string, words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.DueItem, 0, len(words))
	for _, w := range words {
		items = append(items, domain.DueItem{Word: w})
		if s.findLocked(username, w) == nil {
			s.appendWordLocked(username, w)
		}
	}
	s.due[username] = items
}

// SetStats pins the stats returned for username.
func (s *Server) SetStats(username string, stats domain.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[username] = stats
}

// param returns a path parameter, unescaped.
func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
