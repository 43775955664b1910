package store

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SJJP-F-2025/requests-service/internal/models"
)

// EnsureRequestDefaults assigns identifiers and required defaults to request
// records: a fresh UUID when the ID is missing, Pending status, and "unknown"
// for an absent requester. Returns whether anything changed; running it again
// on its own output is a no-op.
func EnsureRequestDefaults(rows []models.Request) ([]models.Request, bool) {
	changed := false
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
			changed = true
		}
		if rows[i].Status == "" {
			rows[i].Status = models.StatusPending
			changed = true
		}
		if rows[i].PSNumber == "" {
			rows[i].PSNumber = "unknown"
			changed = true
		}
	}
	return rows, changed
}

// EnsureStockDefaults assigns identifiers to stock rows and normalizes
// project labels to upper-case trimmed strings. Quantity decoding is handled
// leniently by models.Quantity; rows whose raw quantity could not be read are
// detected separately so the repaired value still reaches the file.
func EnsureStockDefaults(rows []models.StockRow) ([]models.StockRow, bool) {
	changed := false
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
			changed = true
		}
		if norm := models.Project(strings.ToUpper(strings.TrimSpace(string(rows[i].Project)))); norm != rows[i].Project {
			rows[i].Project = norm
			changed = true
		}
	}
	return rows, changed
}

// LoadRequests loads the requests collection and runs the defaults
// normalizer, persisting the collection back when anything was repaired.
// Running on every load makes it idempotent and self-healing for legacy
// records.
func (s *JSONStore) LoadRequests() []models.Request {
	rows, changed := EnsureRequestDefaults(Load[models.Request](s, Requests))
	if changed {
		_ = Save(s, Requests, rows)
	}
	return rows
}

// LoadStock loads the stock collection with the same self-healing contract as
// LoadRequests.
func (s *JSONStore) LoadStock() []models.StockRow {
	rows, changed := EnsureStockDefaults(Load[models.StockRow](s, Stock))
	if !changed && stockQuantityNeedsRepair(s.LoadRaw(Stock)) {
		changed = true
	}
	if changed {
		_ = Save(s, Stock, rows)
	}
	return rows
}

// stockQuantityNeedsRepair reports whether any raw stock row carries a
// quantity that is absent or unreadable as an integer. Those decode to 0 in
// memory and the file must be rewritten so the repaired value is persisted.
func stockQuantityNeedsRepair(rows []map[string]any) bool {
	for _, r := range rows {
		switch q := r["quantity"].(type) {
		case float64:
		case string:
			if _, err := strconv.Atoi(strings.TrimSpace(q)); err != nil {
				return true
			}
		default:
			return true
		}
	}
	return false
}
