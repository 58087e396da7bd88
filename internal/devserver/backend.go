// Package devserver is an in-memory stand-in for the team-collaboration
// backend. It serves the REST routes the session client calls, with state
// that can be seeded from a file or steered from tests.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/dmitrijs2005/clansession/internal/cryptox"
	"github.com/dmitrijs2005/clansession/internal/logging"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// Call is one request observed by the server.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// CaptchaKey and CaptchaToken are issued by every captcha/get.
const (
	CaptchaKey    = "0123456789abcdef"
	CaptchaToken  = "captcha-token-1"
	CaptchaSlideX = 120.0
)

// Backend holds the fake backend state and its router.
type Backend struct {
	router http.Handler
	log    logging.Logger
	jwt    *jwtIssuer

	mu          sync.Mutex
	calls       []Call
	teams       []api.Team
	teamsFail   string
	switchHook  func(sectID int64)
	teamsHook   func()
	tasks       []api.GlobalTask
	users       map[string][]byte
	hashCost    int
	access      map[string]string
	refresh     map[string]string
	issued      int
	profile     *api.UserProfile
	permissions []api.Permission
	requireCode bool
	failStatus  map[string]int
}

type Option func(*Backend)

// WithLogger logs every request at debug level.
func WithLogger(l logging.Logger) Option { return func(b *Backend) { b.log = l } }

// WithHashCost sets the bcrypt cost for stored passwords.
func WithHashCost(cost int) Option { return func(b *Backend) { b.hashCost = cost } }

// WithJWT makes the backend issue HS256-signed access tokens valid for ttl
// and reject expired ones. Without it tokens are opaque counters.
func WithJWT(secret []byte, ttl time.Duration) Option {
	return func(b *Backend) { b.jwt = &jwtIssuer{secret: secret, ttl: ttl} }
}

func NewBackend(opts ...Option) *Backend {
	s := &Backend{
		log:        logging.Discard(),
		users:      map[string][]byte{},
		hashCost:   bcrypt.DefaultCost,
		access:     map[string]string{},
		refresh:    map[string]string{},
		failStatus: map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/v1/sectCharacter/teams", s.authed(s.handleTeams)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sectCharacter/switchTeam/{id:[0-9]+}", s.authed(s.handleSwitch)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/sectCharacter/setDefault/{id:[0-9]+}", s.authed(s.handleSetDefault)).Methods(http.MethodPut)
	r.HandleFunc("/api/task/my/global", s.authed(s.handleGlobalTasks)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/systemUser/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/systemUser/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/systemUser/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/systemUser/refresh-token", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/systemUser/getUserInfo", s.authed(s.handleUserInfo)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/systemUser/getPermissionList", s.authed(s.handlePermissions)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/captcha/get", s.handleCaptchaGet).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/captcha/check", s.handleCaptchaCheck).Methods(http.MethodPost)
	s.router = r
	return s
}

func (s *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Backend) SetTeams(teams ...api.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append([]api.Team(nil), teams...)
}

// FailTeams makes the teams listing answer success=false with msg. An empty
// msg restores normal replies.
func (s *Backend) FailTeams(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamsFail = msg
}

// FailWithStatus makes path answer with a bare HTTP status.
func (s *Backend) FailWithStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus[path] = status
}

// OnSwitch runs fn inside the switch handler before it replies.
func (s *Backend) OnSwitch(fn func(sectID int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switchHook = fn
}

// OnTeams runs fn inside the teams listing handler before it reads the
// list. Tests use it to hold a reload in flight.
func (s *Backend) OnTeams(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamsHook = fn
}

func (s *Backend) SetGlobalTasks(tasks ...api.GlobalTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

// AddUser stores a bcrypt hash of password. Passwords bcrypt cannot hash
// are logged and skipped.
func (s *Backend) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setPasswordLocked(username, password); err != nil {
		s.log.Warn(context.Background(), "add user failed", "username", username, "error", err)
	}
}

func (s *Backend) setPasswordLocked(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.users[username] = hash
	return nil
}

// RequireCaptcha makes login demand a non-empty captcha verification.
func (s *Backend) RequireCaptcha() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireCode = true
}

func (s *Backend) SetProfile(p api.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}

func (s *Backend) SetPermissions(p ...api.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = p
}

// IssueTokens registers a token pair for username as if it logged in.
func (s *Backend) IssueTokens(username string) (api.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// Calls returns the requests seen so far, optionally limited to a path.
func (s *Backend) Calls(path ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(path) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		if c.Path == path[0] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Backend) issueLocked(username string) (api.TokenPair, error) {
	s.issued++
	p := api.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", s.issued),
		RefreshToken: fmt.Sprintf("refresh-%d", s.issued),
	}
	if s.jwt != nil {
		tok, err := s.jwt.issue(username, s.issued)
		if err != nil {
			return api.TokenPair{}, err
		}
		p.AccessToken = tok
	}
	s.access[p.AccessToken] = username
	s.refresh[p.RefreshToken] = username
	return p, nil
}

// writePair issues a pair for username and replies with it. The caller holds
// s.mu.
func (s *Backend) writePair(w http.ResponseWriter, username string) {
	p, err := s.issueLocked(username)
	if err != nil {
		writeFail(w, "500", "token issue failed")
		return
	}
	writeOK(w, p)
}

func (s *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get(common.AuthorizationHeaderName),
			RequestID:     r.Header.Get(common.RequestIDHeaderName),
		})
		status := s.failStatus[r.URL.Path]
		s.mu.Unlock()

		if id := r.Header.Get(common.RequestIDHeaderName); id != "" {
			r = r.WithContext(logging.ContextWith(r.Context(), "request_id", id))
		}
		s.log.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authed rejects requests without a live bearer token with HTTP 401.
func (s *Backend) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix)
		s.mu.Lock()
		_, live := s.access[tok]
		s.mu.Unlock()
		if live && s.jwt != nil {
			if _, err := s.jwt.subject(tok); err != nil {
				live = false
			}
		}
		if !ok || !live {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

func (s *Backend) handleTeams(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	hook := s.teamsHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	teams := append([]api.Team(nil), s.teams...)
	fail := s.teamsFail
	s.mu.Unlock()

	if fail != "" {
		writeFail(w, "500", fail)
		return
	}
	writeOK(w, teams)
}

func (s *Backend) handleSwitch(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	idx := s.findTeamLocked(id)
	if idx >= 0 {
		for i := range s.teams {
			s.teams[i].IsCurrent = i == idx
		}
	}
	hook := s.switchHook
	s.mu.Unlock()

	if idx < 0 {
		writeFail(w, "404", "team not found")
		return
	}
	if hook != nil {
		hook(id)
	}
	writeOK[any](w, nil)
}

func (s *Backend) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	s.mu.Lock()
	idx := s.findTeamLocked(id)
	if idx >= 0 {
		for i := range s.teams {
			s.teams[i].IsDefault = i == idx
		}
	}
	s.mu.Unlock()

	if idx < 0 {
		writeFail(w, "404", "team not found")
		return
	}
	writeOK[any](w, nil)
}

func (s *Backend) findTeamLocked(id int64) int {
	for i, t := range s.teams {
		if t.SectID == id {
			return i
		}
	}
	return -1
}

func (s *Backend) handleGlobalTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	page, _ := strconv.Atoi(q.Get("pageNum"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	s.mu.Lock()
	var matched []api.GlobalTask
	for _, t := range s.tasks {
		if status == "" || t.TaskStatus == status {
			matched = append(matched, t)
		}
	}
	s.mu.Unlock()

	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	writeOK(w, api.Page[api.GlobalTask]{
		Records: append([]api.GlobalTask{}, matched[start:end]...),
		Total:   int64(len(matched)),
		Size:    size,
		Current: page,
		Pages:   int(math.Ceil(float64(len(matched)) / float64(size))),
	})
}

func (s *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, "400", "bad request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requireCode && req.Code == "" {
		writeFail(w, "400", "captcha required")
		return
	}
	hash, ok := s.users[req.Username]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeFail(w, "401", "invalid username or password")
		return
	}
	s.writePair(w, req.Username)
}

func (s *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, "400", "bad request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		writeFail(w, "409", "username already exists")
		return
	}
	if err := s.setPasswordLocked(req.Username, req.Password); err != nil {
		writeFail(w, "400", "password not accepted")
		return
	}
	writeOK[any](w, nil)
}

func (s *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix)
	s.mu.Lock()
	delete(s.access, tok)
	s.mu.Unlock()
	writeOK[any](w, nil)
}

func (s *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, "400", "bad request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.refresh[body.RefreshToken]
	if !ok {
		writeFail(w, "401", "refresh token invalid")
		return
	}
	delete(s.refresh, body.RefreshToken)
	s.writePair(w, user)
}

func (s *Backend) handleUserInfo(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	p := s.profile
	s.mu.Unlock()
	if p == nil {
		writeFail(w, "404", "user not found")
		return
	}
	writeOK(w, *p)
}

func (s *Backend) handlePermissions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	p := append([]api.Permission{}, s.permissions...)
	s.mu.Unlock()
	writeOK(w, p)
}

func (s *Backend) handleCaptchaGet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaptchaType string `json:"captchaType"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	c := api.Captcha{
		Token:               CaptchaToken,
		SecretKey:           CaptchaKey,
		OriginalImageBase64: "iVBORw0KGgo=",
	}
	switch req.CaptchaType {
	case api.CaptchaBlockPuzzle:
		c.JigsawImageBase64 = "iVBORw0KGgo="
	case api.CaptchaClickWord:
		c.WordList = []string{"山", "水", "云"}
	default:
		writeCaptcha[any](w, "6110", "unsupported captcha type", nil)
		return
	}
	writeCaptcha(w, "0000", "", &c)
}

// handleCaptchaCheck accepts a block puzzle whose x lies within 5px of
// CaptchaSlideX, and any click-word answer with three points.
func (s *Backend) handleCaptchaCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaptchaType string `json:"captchaType"`
		PointJSON   string `json:"pointJson"`
		Token       string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token != CaptchaToken {
		writeCaptcha[any](w, "6111", "captcha expired", nil)
		return
	}

	plain, err := cryptox.DecryptECB(req.PointJSON, CaptchaKey)
	if err != nil {
		writeCaptcha[any](w, "6111", "captcha check failed", nil)
		return
	}

	ok := false
	switch req.CaptchaType {
	case api.CaptchaBlockPuzzle:
		var p api.Point
		ok = json.Unmarshal([]byte(plain), &p) == nil && math.Abs(p.X-CaptchaSlideX) <= 5
	case api.CaptchaClickWord:
		var ps []api.Point
		ok = json.Unmarshal([]byte(plain), &ps) == nil && len(ps) == 3
	}
	if !ok {
		writeCaptcha[any](w, "6111", "captcha check failed", nil)
		return
	}
	writeCaptcha[any](w, "0000", "", nil)
}

func writeOK[T any](w http.ResponseWriter, data T) {
	writeJSON(w, api.Envelope[T]{Success: true, Message: "ok", Data: &data, Code: "200", Timestamp: time.Now().UnixMilli()})
}

func writeFail(w http.ResponseWriter, code, msg string) {
	writeJSON(w, api.Envelope[any]{Success: false, Message: msg, Code: code, Timestamp: time.Now().UnixMilli()})
}

func writeCaptcha[T any](w http.ResponseWriter, code, msg string, data *T) {
	writeJSON(w, map[string]any{"repCode": code, "repMsg": msg, "repData": data})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
