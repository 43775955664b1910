package store

import (
	"os"
	"testing"

	"github.com/SJJP-F-2025/requests-service/internal/models"
)

func TestEnsureRequestDefaults(t *testing.T) {
	rows := []models.Request{
		{SchoolID: "S1", Category: "Judogi", Material: "Kimono J350", Quantity: 2},
		{ID: "fixed", SchoolID: "S1", PSNumber: "PS5", Status: models.StatusApproved},
	}

	out, changed := EnsureRequestDefaults(rows)
	if !changed {
		t.Fatal("expected changes on first pass")
	}
	if out[0].ID == "" {
		t.Error("missing ID should be assigned")
	}
	if out[0].Status != models.StatusPending {
		t.Errorf("missing status should default to Pending, got %q", out[0].Status)
	}
	if out[0].PSNumber != "unknown" {
		t.Errorf("missing requester should default to unknown, got %q", out[0].PSNumber)
	}
	if out[1].ID != "fixed" || out[1].Status != models.StatusApproved || out[1].PSNumber != "PS5" {
		t.Errorf("populated fields must not change: %+v", out[1])
	}

	// Second pass over its own output is a no-op.
	_, changed = EnsureRequestDefaults(out)
	if changed {
		t.Error("normalizer must be idempotent")
	}
}

func TestEnsureStockDefaults(t *testing.T) {
	rows := []models.StockRow{
		{SchoolID: "S1", Project: " moe ", Type: "Kimono", Size: "M", Quantity: 3},
	}

	out, changed := EnsureStockDefaults(rows)
	if !changed {
		t.Fatal("expected changes on first pass")
	}
	if out[0].ID == "" {
		t.Error("missing ID should be assigned")
	}
	if out[0].Project != models.ProjectMOE {
		t.Errorf("project should normalize to MOE, got %q", out[0].Project)
	}

	_, changed = EnsureStockDefaults(out)
	if changed {
		t.Error("normalizer must be idempotent")
	}
}

func TestLoadRequests_HealsLegacyFile(t *testing.T) {
	s := newTestStore(t)

	// Legacy shape: string quantity, missing id/status/requester.
	legacy := `[{"school_id": "S1", "category": "Judogi", "material": "Kimono", "quantity": "7"}]`
	if err := os.WriteFile(s.Path(Requests), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	rows := s.LoadRequests()
	if len(rows) != 1 {
		t.Fatalf("expected 1 request, got %d", len(rows))
	}
	r := rows[0]
	if r.ID == "" || r.Status != models.StatusPending || r.PSNumber != "unknown" {
		t.Errorf("defaults not applied: %+v", r)
	}
	if r.Quantity.Int() != 7 {
		t.Errorf("string quantity should decode to 7, got %d", r.Quantity.Int())
	}

	// The repaired collection is persisted, so a raw reload sees the IDs.
	raw := s.LoadRaw(Requests)
	if len(raw) != 1 || raw[0]["id"] == "" || raw[0]["id"] == nil {
		t.Errorf("healed file should carry assigned IDs: %+v", raw)
	}
}

func TestLoadStock_HealsUnreadableQuantity(t *testing.T) {
	s := newTestStore(t)

	// The only defect is the quantity; ids and project are already fine.
	legacy := `[{"id": "k1", "school_id": "S1", "project": "MOE", "type": "Kimono", "size": "M", "quantity": "many"}]`
	if err := os.WriteFile(s.Path(Stock), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	rows := s.LoadStock()
	if len(rows) != 1 || rows[0].Quantity.Int() != 0 {
		t.Fatalf("unreadable quantity should decode to 0, got %+v", rows)
	}

	// The repair is persisted; the file now carries a plain number.
	raw := s.LoadRaw(Stock)
	if len(raw) != 1 {
		t.Fatalf("expected 1 raw row, got %d", len(raw))
	}
	if q, ok := raw[0]["quantity"].(float64); !ok || q != 0 {
		t.Errorf("healed file should store a numeric quantity, got %v", raw[0]["quantity"])
	}

	// Reloading the healed file changes nothing further.
	if again := s.LoadStock(); len(again) != 1 || again[0].Quantity.Int() != 0 {
		t.Errorf("reload of the healed file should be stable, got %+v", again)
	}
}
