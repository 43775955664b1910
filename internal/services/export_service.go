package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

// exportColumns is the fixed report layout: the request fields plus
// school_name and requester_name joined in from the reference collections.
var exportColumns = []string{
	"id", "school_id", "school_name", "category", "material",
	"quantity", "status", "date", "ps_number", "requester_name",
}

// exportService renders the requests report. Admin only; coaches get their
// data through the regular scoped listings.
type exportService struct {
	local  *store.JSONStore
	logger *slog.Logger
}

func NewExportService(local *store.JSONStore, logger *slog.Logger) ExportService {
	return &exportService{local: local, logger: logger}
}

func (s *exportService) RequestsCSV(ctx context.Context, id models.Identity) ([]byte, string, error) {
	rows, err := s.reportRows(id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("exported requests report", "format", "csv", "rows", len(rows))
	return buf.Bytes(), exportFilename("csv"), nil
}

func (s *exportService) RequestsXLSX(ctx context.Context, id models.Identity) ([]byte, string, error) {
	rows, err := s.reportRows(id)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Requests"
	f.SetSheetName(f.GetSheetName(0), sheet)
	for col, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}
	s.logger.Info("exported requests report", "format", "xlsx", "rows", len(rows))
	return buf.Bytes(), exportFilename("xlsx"), nil
}

// reportRows joins requests with school and requester names, in collection
// order. Missing references render as empty names rather than failing the
// export.
func (s *exportService) reportRows(id models.Identity) ([][]string, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "the requests report", "export")
	}

	schoolNames := make(map[string]string)
	for _, sc := range store.Load[models.School](s.local, store.Schools) {
		schoolNames[sc.ID] = sc.Nome
	}
	userNames := make(map[string]string)
	for _, u := range store.Load[models.User](s.local, store.Users) {
		userNames[u.PSNumber] = u.Name
	}

	requests := s.local.LoadRequests()
	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []string{
			r.ID,
			r.SchoolID,
			schoolNames[r.SchoolID],
			r.Category,
			r.Material,
			strconv.Itoa(r.Quantity.Int()),
			string(r.Status),
			r.Date,
			r.PSNumber,
			userNames[r.PSNumber],
		})
	}
	return rows, nil
}

func exportFilename(ext string) string {
	return fmt.Sprintf("requests_%s.%s", time.Now().Format("20060102_150405"), ext)
}
