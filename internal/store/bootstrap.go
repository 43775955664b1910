package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SJJP-F-2025/requests-service/internal/models"
)

// DefaultAdmin is seeded into an absent users collection so a fresh install
// always has a way in.
var DefaultAdmin = models.User{
	PSNumber:   "PS1724",
	Password:   "PS1724",
	Credential: models.CredentialAdmin,
	Name:       "Administrator",
}

// Bootstrap makes sure every collection file exists, seeding users with the
// default administrator. Existing files are left alone, so a collection
// retired by a first-time sync stays retired only until the next bootstrap
// of a missing file with empty content.
func (s *JSONStore) Bootstrap() error {
	if !s.Exists(Users) {
		if err := Save(s, Users, []models.User{DefaultAdmin}); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}
	for _, c := range []Collection{Schools, Materials, Requests, Stock} {
		if s.Exists(c) {
			continue
		}
		if err := s.SaveRaw(c, []map[string]any{}); err != nil {
			return fmt.Errorf("failed to create %s: %w", c, err)
		}
	}
	return nil
}

// MigrateLegacyCoaches folds a leftover coaches.json into the users
// collection and removes the legacy file. One-off, best-effort: existing user
// fields win over coach fields, a coach without a password gets their PS
// number as one. Safe to call when the file is absent.
func (s *JSONStore) MigrateLegacyCoaches() {
	legacy := filepath.Join(s.dir, "coaches.json")
	if _, err := os.Stat(legacy); err != nil {
		return
	}

	var coaches []models.User
	data, err := os.ReadFile(legacy)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &coaches); err != nil {
		return
	}

	users := Load[models.User](s, Users)
	byPS := make(map[string]models.User, len(users))
	order := make([]string, 0, len(users))
	for _, u := range users {
		ps := strings.TrimSpace(u.PSNumber)
		if ps == "" {
			continue
		}
		u.PSNumber = ps
		if _, ok := byPS[ps]; !ok {
			order = append(order, ps)
		}
		byPS[ps] = u
	}

	for _, c := range coaches {
		ps := strings.TrimSpace(c.PSNumber)
		if ps == "" {
			continue
		}
		curr, ok := byPS[ps]
		if !ok {
			order = append(order, ps)
		}
		merged := models.User{PSNumber: ps}
		merged.Password = firstNonEmpty(curr.Password, c.Password, ps)
		if curr.Credential != "" {
			merged.Credential = curr.Credential
		} else if c.Credential != "" {
			merged.Credential = c.Credential
		} else {
			merged.Credential = models.CredentialCoach
		}
		merged.Name = firstNonEmpty(curr.Name, c.Name)
		byPS[ps] = merged
	}

	out := make([]models.User, 0, len(order))
	for _, ps := range order {
		out = append(out, byPS[ps])
	}
	if err := Save(s, Users, out); err != nil {
		return
	}
	_ = os.Remove(legacy)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
