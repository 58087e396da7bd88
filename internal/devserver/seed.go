package devserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clansession/internal/client/api"
	"gopkg.in/yaml.v3"
)

// Seed is the initial state of a Backend.
type Seed struct {
	Users          []SeedUser       `json:"users"`
	Profile        *api.UserProfile `json:"profile"`
	Permissions    []api.Permission `json:"permissions"`
	Teams          []api.Team       `json:"teams"`
	Tasks          []api.GlobalTask `json:"tasks"`
	RequireCaptcha bool             `json:"require_captcha"`
}

type SeedUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoadSeed reads a seed from a JSON file, or from YAML when the extension
// is .yaml or .yml. Field names are the JSON ones in both cases.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
	}

	s := &Seed{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// Apply loads seed into the backend. Users are added to the existing ones;
// everything else is replaced.
func (s *Backend) Apply(seed *Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range seed.Users {
		if err := s.setPasswordLocked(u.Username, u.Password); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	if seed.Profile != nil {
		p := *seed.Profile
		s.profile = &p
	}
	s.permissions = append([]api.Permission(nil), seed.Permissions...)
	s.teams = append([]api.Team(nil), seed.Teams...)
	s.tasks = append([]api.GlobalTask(nil), seed.Tasks...)
	s.requireCode = seed.RequireCaptcha
	return nil
}
