package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SJJP-F-2025/requests-service/internal/datasync"
	"github.com/SJJP-F-2025/requests-service/internal/events"
	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// dateLayout is the creation-date format stamped on new requests.
const dateLayout = "2006-01-02 15:04:05"

// requestService implements the equipment request workflow with local-first
// durability: every mutation lands in the local collection before the
// best-effort remote upsert, and reads prefer the remote copy with a silent
// fallback to the local file.
type requestService struct {
	local     *store.JSONStore
	remote    remote.Store
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewRequestService(local *store.JSONStore, rs remote.Store, v *validator.Validator, publisher events.EventPublisher, logger *slog.Logger) RequestService {
	return &requestService{local: local, remote: rs, validator: v, publisher: publisher, logger: logger}
}

func (s *requestService) Visible(ctx context.Context, id models.Identity) RequestList {
	list := s.list(ctx)
	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))
	list.Requests = FilterRequests(id, list.Requests, schoolIDs)
	return list
}

// list reads all requests, remote preferred. A remote failure degrades to the
// local collection and surfaces as a warning on the result, never an error.
func (s *requestService) list(ctx context.Context) RequestList {
	if s.remote != nil {
		rows, err := s.remote.Select(ctx, remote.RequestsTable.Name, datasync.PullPageSize)
		if err != nil {
			s.logger.Warn("remote request read failed, serving local copy", "error", err)
			return RequestList{
				Requests:      s.local.LoadRequests(),
				Source:        SourceLocal,
				RemoteWarning: fmt.Sprintf("remote store unavailable: %v", err),
			}
		}
		// A successful read is authoritative: the local cache is overwritten
		// with the remote rows, even when there are none.
		projected := remote.RequestsTable.Project(rows)
		if saveErr := s.local.SaveRaw(store.Requests, projected); saveErr != nil {
			s.logger.Warn("could not refresh local request cache", "error", saveErr)
		}
		if len(rows) > 0 {
			requests, _ := store.EnsureRequestDefaults(decodeRequests(projected))
			return RequestList{Requests: requests, Source: SourceRemote}
		}
		// An empty remote reads back through the freshly aligned local file.
	}
	return RequestList{Requests: s.local.LoadRequests(), Source: SourceLocal}
}

func (s *requestService) Submit(ctx context.Context, id models.Identity, items []validator.RequestItem) (PersistResult, error) {
	if len(items) == 0 {
		return PersistResult{}, ErrNoRowsSelected
	}

	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))
	records := make([]models.Request, 0, len(items))
	for i, item := range items {
		if err := s.validator.Validate(item); err != nil {
			return PersistResult{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		if !schoolIDs[item.SchoolID] {
			return PersistResult{}, NewPermissionError(id.PSNumber, "school "+item.SchoolID, "submit requests for")
		}
		records = append(records, models.Request{
			ID:       uuid.NewString(),
			SchoolID: item.SchoolID,
			Category: item.Category,
			Material: item.Material,
			Quantity: models.Quantity(item.Quantity),
			Date:     time.Now().Format(dateLayout),
			PSNumber: id.PSNumber,
			Status:   models.StatusPending,
		})
	}

	result := s.persist(ctx, records)
	if result.Saved > 0 {
		s.publish(ctx, events.TypeRequestSubmitted, map[string]any{
			"ps_number": id.PSNumber,
			"count":     result.Saved,
			"synced":    result.Synced,
		})
	}
	return result, nil
}

// persist merges records into the local collection by ID and then attempts
// the remote upsert. The local save is the durability guarantee; a remote
// failure leaves Synced at 0 and carries the error for the caller to surface.
func (s *requestService) persist(ctx context.Context, records []models.Request) PersistResult {
	if len(records) == 0 {
		return PersistResult{}
	}

	existing := s.local.LoadRequests()
	byID := make(map[string]int, len(existing))
	for i, r := range existing {
		byID[r.ID] = i
	}
	for _, r := range records {
		if i, ok := byID[r.ID]; ok {
			existing[i] = r
		} else {
			byID[r.ID] = len(existing)
			existing = append(existing, r)
		}
	}
	if err := store.Save(s.local, store.Requests, existing); err != nil {
		return PersistResult{Err: fmt.Errorf("local save failed: %w", err)}
	}

	result := PersistResult{Saved: len(records)}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	if s.remote == nil {
		result.Err = ErrRemoteNotConfigured
		result.UnsyncedIDs = ids
		return result
	}

	rows := make([]remote.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	if err := s.remote.Upsert(ctx, remote.RequestsTable, remote.RequestsTable.Shape(rows)); err != nil {
		s.logger.Warn("request sync failed, records saved locally", "count", len(records), "error", err)
		result.Err = err
		result.UnsyncedIDs = ids
		return result
	}
	result.Synced = len(records)
	result.SyncedIDs = ids
	return result
}

func (s *requestService) SaveEdits(ctx context.Context, id models.Identity, edits []validator.RequestEdit) (PersistResult, error) {
	if len(edits) == 0 {
		return PersistResult{}, ErrNoRowsSelected
	}
	for i, e := range edits {
		if err := s.validator.Validate(e); err != nil {
			return PersistResult{}, fmt.Errorf("edit %d: %w", i+1, err)
		}
	}

	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))
	current := s.local.LoadRequests()
	byID := make(map[string]int, len(current))
	for i, r := range current {
		byID[r.ID] = i
	}

	// Only Pending rows within the identity's scope are touched; everything
	// else is silently dropped, matching the grid editor behavior where
	// processed rows are shown read-only.
	changed := make([]models.Request, 0, len(edits))
	for _, e := range edits {
		i, ok := byID[e.ID]
		if !ok {
			continue
		}
		r := current[i]
		if !r.IsPending() {
			continue
		}
		if !id.IsAdmin() && !schoolIDs[r.SchoolID] {
			continue
		}
		if e.SchoolID != "" {
			if !id.IsAdmin() && !schoolIDs[e.SchoolID] {
				return PersistResult{}, NewPermissionError(id.PSNumber, "school "+e.SchoolID, "move requests to")
			}
			r.SchoolID = e.SchoolID
		}
		if e.Category != "" {
			r.Category = e.Category
		}
		if e.Material != "" {
			r.Material = e.Material
		}
		if e.Quantity > 0 {
			r.Quantity = models.Quantity(e.Quantity)
		}
		// Date is immutable after creation; edits never carry one.
		if e.Status != "" && id.IsAdmin() {
			r.Status = models.RequestStatus(e.Status)
		}
		current[i] = r
		changed = append(changed, r)
	}
	if len(changed) == 0 {
		return PersistResult{}, nil
	}
	return s.persist(ctx, changed), nil
}

func (s *requestService) UpdateStatus(ctx context.Context, id models.Identity, upd validator.StatusUpdate) (*StatusUpdateResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "requests", "change the status of")
	}
	if err := s.validator.Validate(upd); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(upd.IDs))
	for _, rid := range upd.IDs {
		wanted[rid] = true
	}

	current := s.local.LoadRequests()
	changed := make([]models.Request, 0, len(upd.IDs))
	for i, r := range current {
		// Only Pending rows take a status change; decided ones are read-only.
		if !wanted[r.ID] || !r.IsPending() {
			continue
		}
		current[i].Status = models.RequestStatus(upd.Status)
		changed = append(changed, current[i])
	}
	if len(changed) == 0 {
		return nil, ErrNoRowsSelected
	}

	result := s.persist(ctx, changed)
	out := &StatusUpdateResult{Updated: result.Saved, Synced: result.Synced}
	if result.Err != nil {
		out.Warning = fmt.Sprintf("saved locally, remote sync failed: %v", result.Err)
	}
	s.publish(ctx, events.TypeRequestStatusChanged, map[string]any{
		"ids":    upd.IDs,
		"status": upd.Status,
		"by":     id.PSNumber,
	})
	return out, nil
}

func (s *requestService) Delete(ctx context.Context, id models.Identity, ids []string) (*DeleteResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoRowsSelected
	}

	wanted := make(map[string]bool, len(ids))
	for _, rid := range ids {
		wanted[rid] = true
	}
	schoolIDs := VisibleSchoolIDs(id, store.Load[models.School](s.local, store.Schools))

	current := s.local.LoadRequests()
	kept := make([]models.Request, 0, len(current))
	deleted := make([]string, 0, len(ids))
	for _, r := range current {
		// Only Pending rows are deletable, for admins and coaches alike.
		remove := wanted[r.ID] && r.IsPending()
		if remove && !id.IsAdmin() {
			// Coaches are further limited to their own schools.
			remove = schoolIDs[r.SchoolID]
		}
		if remove {
			deleted = append(deleted, r.ID)
		} else {
			kept = append(kept, r)
		}
	}
	if len(deleted) == 0 {
		return nil, ErrNoRowsSelected
	}
	if err := store.Save(s.local, store.Requests, kept); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}

	res := &DeleteResult{Deleted: len(deleted)}
	if s.remote != nil {
		if err := s.remote.Delete(ctx, remote.RequestsTable.Name, remote.RequestsTable.ConflictKey, deleted); err != nil {
			s.logger.Warn("remote request delete failed", "count", len(deleted), "error", err)
			res.Warning = fmt.Sprintf("deleted locally, remote delete failed: %v", err)
		}
	}
	s.publish(ctx, events.TypeRequestDeleted, map[string]any{"ids": deleted, "by": id.PSNumber})
	return res, nil
}

func (s *requestService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}

// decodeRequests converts dynamic remote rows into typed requests through a
// JSON round trip, reusing the lenient Quantity decoding.
func decodeRequests(rows []remote.Row) []models.Request {
	data, err := json.Marshal(rows)
	if err != nil {
		return []models.Request{}
	}
	var requests []models.Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return []models.Request{}
	}
	return requests
}
