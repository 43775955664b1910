package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// materialService serves the material catalog. The catalog is visible to
// every role; only admins may change it. It has no unique key locally or
// remotely, so the remote upsert is append-only and repeated saves may leave
// duplicate rows there until a forced replace sync.
type materialService struct {
	local  *store.JSONStore
	remote remote.Store
	logger *slog.Logger
}

func NewMaterialService(local *store.JSONStore, rs remote.Store, logger *slog.Logger) MaterialService {
	return &materialService{local: local, remote: rs, logger: logger}
}

func (s *materialService) List(ctx context.Context) []models.Material {
	return store.Load[models.Material](s.local, store.Materials)
}

func (s *materialService) Categories(ctx context.Context) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, m := range s.List(ctx) {
		c := strings.TrimSpace(m.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

func (s *materialService) ByCategory(ctx context.Context, category string) []models.Material {
	matched := make([]models.Material, 0)
	for _, m := range s.List(ctx) {
		if strings.EqualFold(strings.TrimSpace(m.Category), strings.TrimSpace(category)) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Save replaces the whole local catalog with the submitted rows and pushes
// them to the remote table.
func (s *materialService) Save(ctx context.Context, id models.Identity, rows []validator.MaterialRow) (*MaterialSaveResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "materials", "edit")
	}
	if len(rows) == 0 {
		return nil, ErrNoRowsSelected
	}

	catalog := make([]models.Material, 0, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("row %d: category is required", i+1)
		}
		catalog = append(catalog, models.Material{
			Category:    strings.TrimSpace(r.Category),
			Subcategory: strings.TrimSpace(r.Subcategory),
			Item:        strings.TrimSpace(r.Item),
		})
	}
	if err := store.Save(s.local, store.Materials, catalog); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}

	result := &MaterialSaveResult{Saved: len(catalog)}
	if s.remote != nil {
		remoteRows := make([]remote.Row, 0, len(catalog))
		for _, m := range catalog {
			remoteRows = append(remoteRows, m.Row())
		}
		if err := s.remote.Upsert(ctx, remote.MaterialsTable, remote.MaterialsTable.Shape(remoteRows)); err != nil {
			s.logger.Warn("material sync failed, catalog saved locally", "error", err)
			result.Warning = fmt.Sprintf("saved locally, remote sync failed: %v", err)
		} else {
			result.Synced = len(catalog)
		}
	}
	return result, nil
}
