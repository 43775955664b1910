package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// schoolService manages the schools reference collection. Reads pass through
// the authorization gate; writes are admin-only and local-first with a
// best-effort remote mirror.
type schoolService struct {
	local  *store.JSONStore
	remote remote.Store
	logger *slog.Logger
}

func NewSchoolService(local *store.JSONStore, rs remote.Store, logger *slog.Logger) SchoolService {
	return &schoolService{local: local, remote: rs, logger: logger}
}

func (s *schoolService) Visible(ctx context.Context, id models.Identity) []models.School {
	return VisibleSchools(id, store.Load[models.School](s.local, store.Schools))
}

func (s *schoolService) Save(ctx context.Context, id models.Identity, rows []validator.SchoolRow) (*SchoolSaveResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "schools", "edit")
	}
	if len(rows) == 0 {
		return nil, ErrNoRowsSelected
	}

	// A row without an ID aborts the whole batch; school IDs are assigned by
	// the administrator, never generated.
	for i, r := range rows {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("row %d: school id is required", i+1)
		}
	}

	result := &SchoolSaveResult{}
	incoming := make([]models.School, 0, len(rows))
	for _, r := range rows {
		coaches, warnings := normalizeCoachList(r.ID, r.Coaches)
		result.Warnings = append(result.Warnings, warnings...)
		incoming = append(incoming, models.School{
			ID:      strings.TrimSpace(r.ID),
			Nome:    strings.TrimSpace(r.Nome),
			City:    strings.TrimSpace(r.City),
			Coaches: datatypes.JSONSlice[string](coaches),
		})
	}

	current := store.Load[models.School](s.local, store.Schools)
	byID := make(map[string]int, len(current))
	for i, sc := range current {
		byID[sc.ID] = i
	}
	for _, sc := range incoming {
		if i, ok := byID[sc.ID]; ok {
			current[i] = sc
		} else {
			byID[sc.ID] = len(current)
			current = append(current, sc)
		}
	}
	if err := store.Save(s.local, store.Schools, current); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}
	result.Saved = len(incoming)

	if s.remote != nil {
		remoteRows := make([]remote.Row, 0, len(incoming))
		for _, sc := range incoming {
			remoteRows = append(remoteRows, sc.Row())
		}
		if err := s.remote.Upsert(ctx, remote.SchoolsTable, remote.SchoolsTable.Shape(remoteRows)); err != nil {
			s.logger.Warn("school sync failed, rows saved locally", "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("saved locally, remote sync failed: %v", err))
		} else {
			result.Synced = len(incoming)
		}
	}
	return result, nil
}

func (s *schoolService) Delete(ctx context.Context, id models.Identity, ids []string) (*DeleteResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "schools", "delete")
	}
	if len(ids) == 0 {
		return nil, ErrNoRowsSelected
	}

	wanted := make(map[string]bool, len(ids))
	for _, sid := range ids {
		wanted[sid] = true
	}

	current := store.Load[models.School](s.local, store.Schools)
	kept := make([]models.School, 0, len(current))
	deleted := make([]string, 0, len(ids))
	for _, sc := range current {
		if wanted[sc.ID] {
			deleted = append(deleted, sc.ID)
		} else {
			kept = append(kept, sc)
		}
	}
	if len(deleted) == 0 {
		return nil, ErrNoRowsSelected
	}
	if err := store.Save(s.local, store.Schools, kept); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}

	res := &DeleteResult{Deleted: len(deleted)}
	if s.remote != nil {
		if err := s.remote.Delete(ctx, remote.SchoolsTable.Name, remote.SchoolsTable.ConflictKey, deleted); err != nil {
			s.logger.Warn("remote school delete failed", "error", err)
			res.Warning = fmt.Sprintf("deleted locally, remote delete failed: %v", err)
		}
	}
	return res, nil
}

// normalizeCoachList trims and upper-cases PS numbers, dropping malformed and
// duplicate entries with a per-school warning. Membership is advisory: a PS
// number pointing at no existing user is kept.
func normalizeCoachList(schoolID string, raw []string) ([]string, []string) {
	seen := make(map[string]bool, len(raw))
	coaches := make([]string, 0, len(raw))
	var warnings []string
	for _, entry := range raw {
		ps := strings.ToUpper(strings.TrimSpace(entry))
		if ps == "" {
			continue
		}
		if !validator.ValidPSNumber(ps) {
			warnings = append(warnings, fmt.Sprintf("school %s: dropped invalid coach entry %q", schoolID, entry))
			continue
		}
		if seen[ps] {
			continue
		}
		seen[ps] = true
		coaches = append(coaches, ps)
	}
	return coaches, warnings
}
