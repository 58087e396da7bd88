package team

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"github.com/dmitrijs2005/clansession/internal/client/prefs"
	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/common"
	"github.com/dmitrijs2005/clansession/internal/logging"
)

const (
	keyCurrentSectID = "current_sect_id"
	keyCurrentCharID = "current_char_id"
	keyViewMode      = "view_mode"
)

// Failure messages used when the backend rejects a call without one.
const (
	msgLoadTeams   = "load teams failed"
	msgSwitchTeam  = "switch team failed"
	msgSetDefault  = "set default team failed"
	msgGlobalTasks = "load global tasks failed"
)

type Team = api.Team

type ViewMode string

const (
	ViewSingle ViewMode = "SINGLE"
	ViewGlobal ViewMode = "GLOBAL"
)

var (
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrNotGlobalMode   = errors.New("global view mode is not active")
)

// API is the slice of the backend the Manager needs.
type API interface {
	Teams(ctx context.Context) ([]api.Team, error)
	SwitchTeam(ctx context.Context, sectID int64) error
	SetDefaultTeam(ctx context.Context, sectID int64) error
	GlobalTasks(ctx context.Context, status string, page, size int) (*api.Page[api.GlobalTask], error)
}

// State is a snapshot of the observable values.
type State struct {
	Current  *Team
	Teams    []Team
	ViewMode ViewMode
}

type Manager struct {
	api   API
	prefs *prefs.Prefs
	log   logging.Logger

	mu          sync.Mutex
	initialized bool
	current     *Team
	teams       []Team
	mode        ViewMode
	subs        map[int]chan State
	nextSub     int
}

// New binds a Manager to repo, which should be the team_prefs namespace.
func New(client API, repo metadata.Repository, log logging.Logger) *Manager {
	return &Manager{
		api:   client,
		prefs: prefs.New(repo),
		log:   log,
		teams: []Team{},
		mode:  ViewSingle,
		subs:  make(map[int]chan State),
	}
}

// Init restores the persisted view mode. Later calls do nothing.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}

	raw, ok, err := m.prefs.String(ctx, keyViewMode)
	if err != nil {
		return fmt.Errorf("restore view mode: %w", err)
	}
	mode := ViewSingle
	if ok && ViewMode(raw).Valid() {
		mode = ViewMode(raw)
	}

	m.mode = mode
	m.initialized = true
	m.publishLocked()
	return nil
}

func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// LoadTeams fetches the team list, replaces the cached one and reselects the
// current team.
func (m *Manager) LoadTeams(ctx context.Context) ([]Team, error) {
	if !m.Initialized() {
		return nil, common.ErrNotInitialized
	}

	teams, err := m.api.Teams(ctx)
	if err != nil {
		return nil, withMessage(err, msgLoadTeams)
	}

	persisted, hasPersisted, err := m.prefs.Int64(ctx, keyCurrentSectID)
	if err = prefs.IgnoreMalformed(err); err != nil {
		return nil, fmt.Errorf("read current team: %w", err)
	}

	selected := selectCurrent(teams, persisted, hasPersisted)
	if err := m.persistSelection(ctx, selected); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.teams = teams
	m.current = selected
	m.publishLocked()
	m.mu.Unlock()

	m.log.Debug(ctx, "teams loaded", "count", len(teams), "current", sectIDOf(selected))
	return slices.Clone(teams), nil
}

// SwitchTeam asks the backend to switch to sectID, applies the switch
// locally from the cached list, then reloads the list.
func (m *Manager) SwitchTeam(ctx context.Context, sectID int64) error {
	if !m.Initialized() {
		return common.ErrNotInitialized
	}

	if err := m.api.SwitchTeam(ctx, sectID); err != nil {
		return withMessage(err, msgSwitchTeam)
	}

	m.mu.Lock()
	var picked *Team
	if i := indexOf(m.teams, sectID); i >= 0 {
		t := m.teams[i]
		picked = &t
	}
	m.mu.Unlock()

	if picked != nil {
		if err := m.persistSelection(ctx, picked); err != nil {
			return err
		}
		m.mu.Lock()
		m.current = picked
		m.publishLocked()
		m.mu.Unlock()
	}

	if _, err := m.LoadTeams(ctx); err != nil {
		m.log.Warn(ctx, "reload after team switch failed", "sect_id", sectID, "error", err)
	}
	return nil
}

// SetDefaultTeam marks sectID as the account default and reloads the list.
// The current selection only changes through the reload.
func (m *Manager) SetDefaultTeam(ctx context.Context, sectID int64) error {
	if !m.Initialized() {
		return common.ErrNotInitialized
	}

	if err := m.api.SetDefaultTeam(ctx, sectID); err != nil {
		return withMessage(err, msgSetDefault)
	}

	if _, err := m.LoadTeams(ctx); err != nil {
		m.log.Warn(ctx, "reload after set default failed", "sect_id", sectID, "error", err)
	}
	return nil
}

func (m *Manager) SetViewMode(ctx context.Context, mode ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidViewMode, mode)
	}
	if !m.Initialized() {
		return common.ErrNotInitialized
	}
	if err := m.prefs.SetString(ctx, keyViewMode, string(mode)); err != nil {
		return fmt.Errorf("persist view mode: %w", err)
	}

	m.mu.Lock()
	m.mode = mode
	m.publishLocked()
	m.mu.Unlock()
	return nil
}

// GlobalTasks lists tasks across all teams. It needs global view mode.
func (m *Manager) GlobalTasks(ctx context.Context, status string, page, size int) (*api.Page[api.GlobalTask], error) {
	if !m.Initialized() {
		return nil, common.ErrNotInitialized
	}
	if !m.IsGlobalMode() {
		return nil, ErrNotGlobalMode
	}
	out, err := m.api.GlobalTasks(ctx, status, page, size)
	if err != nil {
		return nil, withMessage(err, msgGlobalTasks)
	}
	return out, nil
}

// Clear forgets everything: current team, list and view mode in memory,
// and the whole persisted namespace.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.teams = []Team{}
	m.mode = ViewSingle
	m.publishLocked()
	m.mu.Unlock()

	return m.prefs.Clear(ctx)
}

func (m *Manager) persistSelection(ctx context.Context, t *Team) error {
	err := m.prefs.Edit(ctx, func(e *prefs.Prefs) error {
		if t == nil {
			return e.Remove(ctx, keyCurrentSectID, keyCurrentCharID)
		}
		if err := e.SetInt64(ctx, keyCurrentSectID, t.SectID); err != nil {
			return err
		}
		return e.SetInt64(ctx, keyCurrentCharID, t.CharID)
	})
	if err != nil {
		return fmt.Errorf("persist current team: %w", err)
	}
	return nil
}

func selectCurrent(teams []Team, persisted int64, hasPersisted bool) *Team {
	pick := func(match func(Team) bool) *Team {
		for _, t := range teams {
			if match(t) {
				return &t
			}
		}
		return nil
	}

	if hasPersisted {
		if t := pick(func(t Team) bool { return t.SectID == persisted }); t != nil {
			return t
		}
	}
	if t := pick(func(t Team) bool { return t.IsCurrent }); t != nil {
		return t
	}
	return pick(func(t Team) bool { return t.IsDefault })
}

func indexOf(teams []Team, sectID int64) int {
	return slices.IndexFunc(teams, func(t Team) bool { return t.SectID == sectID })
}

func sectIDOf(t *Team) any {
	if t == nil {
		return nil
	}
	return t.SectID
}

// withMessage fills in a fallback message for backend rejections that carry
// none. Other errors pass through.
func withMessage(err error, fallback string) error {
	var be *api.BackendError
	if errors.As(err, &be) && be.Message == "" {
		return &api.BackendError{Code: be.Code, Message: fallback}
	}
	return err
}

func (v ViewMode) Valid() bool {
	return v == ViewSingle || v == ViewGlobal
}
