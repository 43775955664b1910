package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

func exportFixture(t *testing.T) ExportService {
	t.Helper()
	local, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(local, store.Schools, []models.School{
		{ID: "S1", Nome: "Escola Azul", City: "Lisboa"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(local, store.Users, []models.User{
		{PSNumber: "PS100", Name: "Ana Silva"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(local, store.Requests, []models.Request{
		{ID: "r1", SchoolID: "S1", Category: "Judogi", Material: "Kimono J350", Quantity: 2, Date: "2026-02-01", PSNumber: "PS100", Status: models.StatusPending},
		{ID: "r2", SchoolID: "S9", Category: "Outro", Material: "Tatami", Quantity: 1, Date: "2026-02-02", PSNumber: "PS999", Status: models.StatusApproved},
	}); err != nil {
		t.Fatal(err)
	}
	return NewExportService(local, testLogger())
}

func TestExportService_RequestsCSV(t *testing.T) {
	svc := exportFixture(t)

	content, filename, err := svc.RequestsCSV(context.Background(), admin)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(filename, "requests_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("unexpected filename %q", filename)
	}

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "id,school_id,school_name,category,material,quantity,status,date,ps_number,requester_name"
	if header != want {
		t.Errorf("unexpected header:\n got %s\nwant %s", header, want)
	}

	row := records[1]
	if row[2] != "Escola Azul" || row[9] != "Ana Silva" {
		t.Errorf("joined names missing: %v", row)
	}
	if row[5] != "2" {
		t.Errorf("quantity should render as a plain number, got %q", row[5])
	}

	// Broken references render as empty strings, not errors.
	if records[2][2] != "" || records[2][9] != "" {
		t.Errorf("unknown school/user should join to empty, got %v", records[2])
	}
}

func TestExportService_RequestsXLSX(t *testing.T) {
	svc := exportFixture(t)

	content, filename, err := svc.RequestsXLSX(context.Background(), admin)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("output is not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Requests")
	if err != nil {
		t.Fatalf("missing Requests sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "Escola Azul" {
		t.Errorf("joined school name missing: %v", rows[1])
	}
}

func TestExportService_AdminOnly(t *testing.T) {
	svc := exportFixture(t)

	if _, _, err := svc.RequestsCSV(context.Background(), coach); !IsPermissionError(err) {
		t.Errorf("coaches must not export, got %v", err)
	}
	if _, _, err := svc.RequestsXLSX(context.Background(), coach); !IsPermissionError(err) {
		t.Errorf("coaches must not export, got %v", err)
	}
}
