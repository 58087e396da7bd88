// Package usercache keeps a snapshot of the signed-in user's profile, the
// permission list and the last known sect for quick reads without a round
// trip.
//
// The profile snapshot goes stale after a TTL (30 minutes by default).
// Permissions and the sect entry never go stale; they live until Clear.
package usercache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/clansession/internal/client/prefs"
	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clansession/internal/clock"
)

const (
	keyUserInfo        = "user_info"
	keyCacheTime       = "cache_time"
	keyPermissions     = "permissions"
	keyCurrentSectID   = "current_sect_id"
	keyCurrentSectName = "current_sect_name"

	DefaultTTL = 30 * time.Minute
)

// CachedUser is the profile snapshot.
type CachedUser struct {
	CharID    int64   `json:"charId"`
	Username  string  `json:"username"`
	Nickname  *string `json:"nickname,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Signature *string `json:"signature,omitempty"`
}

// DecodeError reports a stored snapshot that no longer parses.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode cached user: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

type Cache struct {
	prefs *prefs.Prefs
	clock clock.Clock
	ttl   time.Duration
}

type Option func(*Cache)

func WithClock(c clock.Clock) Option { return func(uc *Cache) { uc.clock = c } }

func WithTTL(d time.Duration) Option { return func(uc *Cache) { uc.ttl = d } }

func New(repo metadata.Repository, opts ...Option) *Cache {
	c := &Cache{prefs: prefs.New(repo), clock: clock.System(), ttl: DefaultTTL}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Save stores u and stamps the cache time.
func (c *Cache) Save(ctx context.Context, u CachedUser) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	now := c.clock.Now().UnixMilli()
	return c.prefs.Edit(ctx, func(e *prefs.Prefs) error {
		if err := e.SetString(ctx, keyUserInfo, string(b)); err != nil {
			return err
		}
		return e.SetInt64(ctx, keyCacheTime, now)
	})
}

// Get returns the snapshot, or nil when none is stored or it is stale and
// ignoreExpiry is false. A snapshot that fails to parse yields *DecodeError.
func (c *Cache) Get(ctx context.Context, ignoreExpiry bool) (*CachedUser, error) {
	if !ignoreExpiry {
		expired, err := c.IsCacheExpired(ctx)
		if err != nil || expired {
			return nil, err
		}
	}

	raw, ok, err := c.prefs.String(ctx, keyUserInfo)
	if err != nil || !ok {
		return nil, err
	}

	var u CachedUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &u, nil
}

// IsCacheExpired is true when now - cache_time > TTL. A missing cache time
// counts as expired.
func (c *Cache) IsCacheExpired(ctx context.Context) (bool, error) {
	ms, ok, err := c.prefs.Int64(ctx, keyCacheTime)
	if err = prefs.IgnoreMalformed(err); err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return c.clock.Now().UnixMilli()-ms > c.ttl.Milliseconds(), nil
}

// UpdateAvatar patches the avatar of the cached snapshot. Nothing happens
// when no snapshot exists.
func (c *Cache) UpdateAvatar(ctx context.Context, avatar string) error {
	return c.patch(ctx, func(u *CachedUser) { u.Avatar = &avatar })
}

// UpdateNickname patches the nickname of the cached snapshot.
func (c *Cache) UpdateNickname(ctx context.Context, nickname string) error {
	return c.patch(ctx, func(u *CachedUser) { u.Nickname = &nickname })
}

func (c *Cache) patch(ctx context.Context, fn func(u *CachedUser)) error {
	u, err := c.Get(ctx, true)
	if err != nil || u == nil {
		return err
	}
	fn(u)
	return c.Save(ctx, *u)
}

// IsLoggedIn reports whether any snapshot is cached, stale or not. It says
// nothing about tokens.
func (c *Cache) IsLoggedIn(ctx context.Context) (bool, error) {
	u, err := c.Get(ctx, true)
	return u != nil, err
}

func (c *Cache) UserID(ctx context.Context) (int64, bool, error) {
	u, err := c.Get(ctx, true)
	if err != nil || u == nil {
		return 0, false, err
	}
	return u.CharID, true, nil
}

func (c *Cache) Username(ctx context.Context) (string, bool, error) {
	u, err := c.Get(ctx, true)
	if err != nil || u == nil {
		return "", false, err
	}
	return u.Username, true, nil
}

// DisplayName prefers the nickname over the username.
func (c *Cache) DisplayName(ctx context.Context) (string, bool, error) {
	u, err := c.Get(ctx, true)
	if err != nil || u == nil {
		return "", false, err
	}
	if u.Nickname != nil {
		return *u.Nickname, true, nil
	}
	return u.Username, true, nil
}

func (c *Cache) Avatar(ctx context.Context) (string, bool, error) {
	u, err := c.Get(ctx, true)
	if err != nil || u == nil || u.Avatar == nil {
		return "", false, err
	}
	return *u.Avatar, true, nil
}

func (c *Cache) SavePermissions(ctx context.Context, perms []string) error {
	return c.prefs.SetStringSet(ctx, keyPermissions, perms)
}

// Permissions returns the stored set, empty when none.
func (c *Cache) Permissions(ctx context.Context) ([]string, error) {
	set, _, err := c.prefs.StringSet(ctx, keyPermissions)
	if err = prefs.IgnoreMalformed(err); err != nil {
		return nil, err
	}
	if set == nil {
		set = []string{}
	}
	return set, nil
}

func (c *Cache) HasPermission(ctx context.Context, perm string) (bool, error) {
	set, err := c.Permissions(ctx)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(set, perm)
	return found, nil
}

// SaveCurrentSect remembers the sect the user last worked in.
func (c *Cache) SaveCurrentSect(ctx context.Context, sectID int64, sectName string) error {
	return c.prefs.Edit(ctx, func(e *prefs.Prefs) error {
		if err := e.SetInt64(ctx, keyCurrentSectID, sectID); err != nil {
			return err
		}
		return e.SetString(ctx, keyCurrentSectName, sectName)
	})
}

func (c *Cache) CurrentSectID(ctx context.Context) (int64, bool, error) {
	id, ok, err := c.prefs.Int64(ctx, keyCurrentSectID)
	return id, ok, prefs.IgnoreMalformed(err)
}

func (c *Cache) CurrentSectName(ctx context.Context) (string, bool, error) {
	return c.prefs.String(ctx, keyCurrentSectName)
}

// Clear wipes the whole namespace.
func (c *Cache) Clear(ctx context.Context) error {
	return c.prefs.Clear(ctx)
}
