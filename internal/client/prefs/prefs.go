// Package prefs layers typed accessors (strings, ints, bools, string sets)
// over a metadata.Repository.
//
// Absent keys read as (zero, false, nil). Values that exist but cannot be
// parsed as the requested type are reported as ErrMalformed.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dmitrijs2005/clansession/internal/client/repositories/metadata"
)

var ErrMalformed = errors.New("malformed value")

type Prefs struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *Prefs {
	return &Prefs{repo: repo}
}

// Edit applies fn's writes as one unit.
func (p *Prefs) Edit(ctx context.Context, fn func(e *Prefs) error) error {
	return p.repo.Update(ctx, func(tx metadata.Repository) error {
		return fn(New(tx))
	})
}

func (p *Prefs) String(ctx context.Context, key string) (string, bool, error) {
	v, err := p.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (p *Prefs) SetString(ctx context.Context, key, value string) error {
	return p.repo.Set(ctx, key, []byte(value))
}

// Int reads a value that must fit the platform int; larger ones are
// reported as ErrMalformed instead of being truncated.
func (p *Prefs) Int(ctx context.Context, key string) (int, bool, error) {
	s, ok, err := p.String(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformed, key)
	}
	return int(n), true, nil
}

func (p *Prefs) SetInt(ctx context.Context, key string, value int) error {
	return p.SetInt64(ctx, key, int64(value))
}

func (p *Prefs) Int64(ctx context.Context, key string) (int64, bool, error) {
	s, ok, err := p.String(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrMalformed, key)
	}
	return n, true, nil
}

func (p *Prefs) SetInt64(ctx context.Context, key string, value int64) error {
	return p.SetString(ctx, key, strconv.FormatInt(value, 10))
}

func (p *Prefs) Bool(ctx context.Context, key string) (bool, bool, error) {
	s, ok, err := p.String(ctx, key)
	if err != nil || !ok {
		return false, false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, fmt.Errorf("%w: %s", ErrMalformed, key)
	}
	return b, true, nil
}

func (p *Prefs) SetBool(ctx context.Context, key string, value bool) error {
	return p.SetString(ctx, key, strconv.FormatBool(value))
}

// StringSet returns the stored set in sorted order.
func (p *Prefs) StringSet(ctx context.Context, key string) ([]string, bool, error) {
	v, err := p.repo.Get(ctx, key)
	if err != nil || v == nil {
		return nil, false, err
	}
	var out []string
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, false, fmt.Errorf("%w: %s", ErrMalformed, key)
	}
	return out, true, nil
}

// SetStringSet stores values deduplicated and sorted.
func (p *Prefs) SetStringSet(ctx context.Context, key string, values []string) error {
	set := slices.Clone(values)
	slices.Sort(set)
	set = slices.Compact(set)
	if set == nil {
		set = []string{}
	}
	b, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return p.repo.Set(ctx, key, b)
}

func (p *Prefs) Remove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := p.repo.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Clear wipes every key of the underlying namespace.
func (p *Prefs) Clear(ctx context.Context) error {
	return p.repo.Clear(ctx)
}

// IgnoreMalformed maps ErrMalformed to nil so unparsable stored values read
// as absent. Storage failures pass through.
func IgnoreMalformed(err error) error {
	if errors.Is(err, ErrMalformed) {
		return nil
	}
	return err
}
