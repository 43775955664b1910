package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// stockService serves the kimono stock grid. Stock writes are local-only; the
// remote copy catches up through the admin data sync, which is also why the
// destructive replace sync never clears the remote stock table.
type stockService struct {
	local  *store.JSONStore
	logger *slog.Logger
}

func NewStockService(local *store.JSONStore, logger *slog.Logger) StockService {
	return &stockService{local: local, logger: logger}
}

func (s *stockService) Visible(ctx context.Context, id models.Identity, schoolID string) []models.StockRow {
	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))
	rows := FilterStock(id, s.local.LoadStock(), schoolIDs)
	if schoolID == "" {
		return rows
	}
	scoped := make([]models.StockRow, 0, len(rows))
	for _, r := range rows {
		if r.SchoolID == schoolID {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// Summary aggregates the visible stock by project, then type, then size,
// summing quantities. Groups come back sorted for a stable rendering.
func (s *stockService) Summary(ctx context.Context, id models.Identity, schoolID string) []ProjectStock {
	totals := make(map[models.Project]map[string]map[string]int)
	for _, r := range s.Visible(ctx, id, schoolID) {
		project := r.Project
		if project == "" {
			project = models.ProjectOther
		}
		if totals[project] == nil {
			totals[project] = make(map[string]map[string]int)
		}
		if totals[project][r.Type] == nil {
			totals[project][r.Type] = make(map[string]int)
		}
		totals[project][r.Type][r.Size] += r.Quantity.Int()
	}

	summary := make([]ProjectStock, 0, len(totals))
	for project, types := range totals {
		ps := ProjectStock{Project: string(project)}
		for typ, sizes := range types {
			ts := TypeStock{Type: typ}
			for size, qty := range sizes {
				ts.Sizes = append(ts.Sizes, SizeCount{Size: size, Quantity: qty})
			}
			sort.Slice(ts.Sizes, func(i, j int) bool { return ts.Sizes[i].Size < ts.Sizes[j].Size })
			ps.Types = append(ps.Types, ts)
		}
		sort.Slice(ps.Types, func(i, j int) bool { return ps.Types[i].Type < ps.Types[j].Type })
		summary = append(summary, ps)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Project < summary[j].Project })
	return summary
}

func (s *stockService) Save(ctx context.Context, id models.Identity, edits []validator.StockEdit) (*StockSaveResult, error) {
	if len(edits) == 0 {
		return nil, ErrNoRowsSelected
	}

	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))
	incoming := make([]models.StockRow, 0, len(edits))
	for i, e := range edits {
		if strings.TrimSpace(e.SchoolID) == "" {
			return nil, fmt.Errorf("row %d: school id is required", i+1)
		}
		if e.Quantity < 0 {
			return nil, fmt.Errorf("row %d: quantity cannot be negative", i+1)
		}
		if !id.IsAdmin() && !schoolIDs[e.SchoolID] {
			return nil, NewPermissionError(id.PSNumber, "school "+e.SchoolID, "edit stock for")
		}
		rowID := e.ID
		if rowID == "" {
			rowID = uuid.NewString()
		}
		incoming = append(incoming, models.StockRow{
			ID:       rowID,
			SchoolID: strings.TrimSpace(e.SchoolID),
			Project:  models.Project(strings.ToUpper(strings.TrimSpace(e.Project))),
			Type:     strings.TrimSpace(e.Type),
			Size:     strings.TrimSpace(e.Size),
			Quantity: models.Quantity(e.Quantity),
		})
	}

	current := s.local.LoadStock()
	byID := make(map[string]int, len(current))
	for i, r := range current {
		byID[r.ID] = i
	}
	for _, r := range incoming {
		if i, ok := byID[r.ID]; ok {
			current[i] = r
		} else {
			byID[r.ID] = len(current)
			current = append(current, r)
		}
	}
	if err := store.Save(s.local, store.Stock, current); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}
	return &StockSaveResult{Saved: len(incoming)}, nil
}
