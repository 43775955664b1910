package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SJJP-F-2025/requests-service/internal/datasync"
	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// Sentinel errors shared across services.
var (
	ErrInvalidCredentials  = errors.New("invalid PS number or password")
	ErrSessionNotFound     = errors.New("session not found or expired")
	ErrRemoteNotConfigured = errors.New("remote store is not configured")
	ErrNoRowsSelected      = errors.New("no rows selected")
)

// PermissionError reports a role check failure at the authorization gate.
type PermissionError struct {
	PSNumber string
	Resource string
	Action   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s is not allowed to %s %s", e.PSNumber, e.Action, e.Resource)
}

func NewPermissionError(psNumber, resource, action string) *PermissionError {
	return &PermissionError{PSNumber: psNumber, Resource: resource, Action: action}
}

// IsPermissionError reports whether err is a role check failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// Source says where a read was served from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// PersistResult reports a local-first write: Saved rows always made it to the
// local collection; Synced counts the subset that also reached the remote
// store. Err carries the remote failure when Synced < Saved, so callers can
// flag the records as pending sync.
type PersistResult struct {
	Saved  int
	Synced int
	Err    error

	// UnsyncedIDs are the record IDs that missed the remote upsert; sessions
	// track them so the UI can show the rows as pending sync. SyncedIDs are
	// the ones that made it, used to clear earlier flags.
	UnsyncedIDs []string
	SyncedIDs   []string
}

// RequestList is a workflow read together with where it came from. When the
// remote store failed and the local cache served the read, RemoteWarning
// carries the degradation notice.
type RequestList struct {
	Requests      []models.Request
	Source        Source
	RemoteWarning string
}

// StatusUpdateResult reports an admin batch status change.
type StatusUpdateResult struct {
	Updated int    `json:"updated"`
	Synced  int    `json:"synced"`
	Warning string `json:"warning,omitempty"`
}

// DeleteResult reports a deletion with its best-effort remote mirror.
type DeleteResult struct {
	Deleted int    `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

// Session is the per-login state: the identity every authorization decision
// keys on plus the IDs of requests saved locally but not yet synced. It lives
// in the session store only and is never persisted to disk.
type Session struct {
	Token              string          `json:"token"`
	Identity           models.Identity `json:"identity"`
	UnsyncedRequestIDs []string        `json:"unsynced_request_ids,omitempty"`
}

type AuthService interface {
	Login(ctx context.Context, psNumber, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*Session, error)
	MarkUnsynced(ctx context.Context, token string, ids ...string) error
	ClearUnsynced(ctx context.Context, token string, ids ...string) error
}

type RequestService interface {
	// Visible lists the requests the identity may see, normalized, remote
	// preferred with silent local fallback.
	Visible(ctx context.Context, id models.Identity) RequestList

	// Submit validates and persists a batch of new request items.
	Submit(ctx context.Context, id models.Identity, items []validator.RequestItem) (PersistResult, error)

	// SaveEdits applies grid edits; only Pending rows are touched and only
	// admins may change status.
	SaveEdits(ctx context.Context, id models.Identity, edits []validator.RequestEdit) (PersistResult, error)

	// UpdateStatus applies one status to a batch of requests (admin only).
	UpdateStatus(ctx context.Context, id models.Identity, upd validator.StatusUpdate) (*StatusUpdateResult, error)

	// Delete removes pending requests the identity may delete.
	Delete(ctx context.Context, id models.Identity, ids []string) (*DeleteResult, error)
}

// SchoolSaveResult reports an admin school editor save.
type SchoolSaveResult struct {
	Saved    int      `json:"saved"`
	Synced   int      `json:"synced"`
	Warnings []string `json:"warnings,omitempty"`
}

type SchoolService interface {
	Visible(ctx context.Context, id models.Identity) []models.School
	Save(ctx context.Context, id models.Identity, rows []validator.SchoolRow) (*SchoolSaveResult, error)
	Delete(ctx context.Context, id models.Identity, ids []string) (*DeleteResult, error)
}

// UserSaveResult reports an admin user editor save, including the coaches
// mirror count.
type UserSaveResult struct {
	Saved    int    `json:"saved"`
	Synced   int    `json:"synced"`
	Mirrored int    `json:"mirrored"`
	Warning  string `json:"warning,omitempty"`
}

type UserService interface {
	List(ctx context.Context, id models.Identity) ([]models.User, error)
	Save(ctx context.Context, id models.Identity, rows []validator.UserRow) (*UserSaveResult, error)
	Delete(ctx context.Context, id models.Identity, psNumbers []string) (*DeleteResult, error)

	// Lookup maps PS numbers to display names for joined views.
	Lookup(ctx context.Context) map[string]string
}

// MaterialSaveResult reports a catalog save. Materials have no conflict key
// remotely, so Synced rows may append duplicates on repeated saves.
type MaterialSaveResult struct {
	Saved   int    `json:"saved"`
	Synced  int    `json:"synced"`
	Warning string `json:"warning,omitempty"`
}

type MaterialService interface {
	List(ctx context.Context) []models.Material
	Categories(ctx context.Context) []string
	ByCategory(ctx context.Context, category string) []models.Material
	Save(ctx context.Context, id models.Identity, rows []validator.MaterialRow) (*MaterialSaveResult, error)
}

// SizeCount is one size bucket of the aggregated stock view.
type SizeCount struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// TypeStock groups size buckets under a kimono type.
type TypeStock struct {
	Type  string      `json:"type"`
	Sizes []SizeCount `json:"sizes"`
}

// ProjectStock groups types under a project label.
type ProjectStock struct {
	Project string      `json:"project"`
	Types   []TypeStock `json:"types"`
}

// StockSaveResult reports a stock grid save. Stock saves are local-only; the
// remote copy catches up through the admin data sync.
type StockSaveResult struct {
	Saved int `json:"saved"`
}

type StockService interface {
	Visible(ctx context.Context, id models.Identity, schoolID string) []models.StockRow
	Summary(ctx context.Context, id models.Identity, schoolID string) []ProjectStock
	Save(ctx context.Context, id models.Identity, edits []validator.StockEdit) (*StockSaveResult, error)
}

type SyncService interface {
	Push(ctx context.Context, id models.Identity, opts validator.SyncOptions) (*datasync.Summary, error)
	Pull(ctx context.Context, id models.Identity) (*datasync.Summary, error)
}

type ExportService interface {
	// RequestsCSV renders all requests with derived school_name and
	// requester_name columns. Returns content and a suggested filename.
	RequestsCSV(ctx context.Context, id models.Identity) ([]byte, string, error)

	// RequestsXLSX renders the same report as a workbook.
	RequestsXLSX(ctx context.Context, id models.Identity) ([]byte, string, error)
}

// ServiceManager aggregates every service behind one wiring point.
type ServiceManager interface {
	Auth() AuthService
	Requests() RequestService
	Schools() SchoolService
	Users() UserService
	Materials() MaterialService
	Stock() StockService
	Sync() SyncService
	Export() ExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
