package datasync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

// fakeRemote implements remote.Store in memory, with per-table error
// injection.
type fakeRemote struct {
	tables     map[string][]remote.Row
	selectErr  map[string]error
	upsertErr  map[string]error
	cleared    []string
	deletedIDs map[string][]string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tables:     make(map[string][]remote.Row),
		selectErr:  make(map[string]error),
		upsertErr:  make(map[string]error),
		deletedIDs: make(map[string][]string),
	}
}

func (f *fakeRemote) Select(ctx context.Context, table string, limit int) ([]remote.Row, error) {
	if err := f.selectErr[table]; err != nil {
		return nil, err
	}
	rows := f.tables[table]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, spec remote.TableSpec, rows []remote.Row) error {
	if err := f.upsertErr[spec.Name]; err != nil {
		return err
	}
	f.tables[spec.Name] = append(f.tables[spec.Name], rows...)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, table, key string, ids []string) error {
	f.deletedIDs[table] = append(f.deletedIDs[table], ids...)
	return nil
}

func (f *fakeRemote) DeleteAll(ctx context.Context, table, key string) error {
	f.cleared = append(f.cleared, table)
	f.tables[table] = nil
	return nil
}

func testEngine(t *testing.T) (*Engine, *store.JSONStore, *fakeRemote) {
	t.Helper()
	local, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := local.Bootstrap(); err != nil {
		t.Fatal(err)
	}
	fake := newFakeRemote()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(local, fake, logger), local, fake
}

func resultFor(t *testing.T, summary Summary, table string) TableResult {
	t.Helper()
	for _, r := range summary.Results {
		if r.Table == table {
			return r
		}
	}
	t.Fatalf("no result for table %s", table)
	return TableResult{}
}

func TestPush_FirstTimeSyncRemovesLocalFile(t *testing.T) {
	engine, local, fake := testEngine(t)

	summary := engine.Push(context.Background(), false, false)
	if summary.Errors != 0 {
		t.Fatalf("unexpected errors: %+v", summary)
	}

	users := resultFor(t, summary, "users")
	if users.Status != StatusSynced || !users.LocalFileRemoved {
		t.Errorf("first sync should push and retire the local file: %+v", users)
	}
	if local.Exists(store.Users) {
		t.Error("users.json should be gone after first sync")
	}
	if len(fake.tables["users"]) != 1 {
		t.Errorf("expected the seeded admin remotely, got %d rows", len(fake.tables["users"]))
	}
}

func TestPush_MirrorsUsersIntoCoaches(t *testing.T) {
	engine, local, fake := testEngine(t)
	if err := store.Save(local, store.Users, []models.User{
		{PSNumber: "PS1", Password: "a", Credential: models.CredentialAdmin},
		{PSNumber: "PS2", Password: "b"},
	}); err != nil {
		t.Fatal(err)
	}

	summary := engine.Push(context.Background(), false, false)
	users := resultFor(t, summary, "users")
	if users.Mirrored != 2 {
		t.Fatalf("expected 2 mirrored coaches, got %d", users.Mirrored)
	}

	coaches := fake.tables["coaches"]
	if len(coaches) != 2 {
		t.Fatalf("expected 2 coach rows, got %d", len(coaches))
	}
	for _, c := range coaches {
		if _, ok := c["name"]; ok {
			t.Error("coach mirror must not carry the name field")
		}
		if c["credential"] == nil || c["credential"] == "" {
			t.Error("coach mirror should default an empty credential")
		}
	}
}

func TestPush_SkipsTableWithRemoteData(t *testing.T) {
	engine, _, fake := testEngine(t)
	fake.tables["users"] = []remote.Row{{"ps_number": "PS99"}}

	summary := engine.Push(context.Background(), false, false)
	users := resultFor(t, summary, "users")
	if users.Status != StatusSkipped {
		t.Errorf("non-empty remote table should be skipped, got %+v", users)
	}
	if len(fake.tables["users"]) != 1 {
		t.Error("skip must not push rows")
	}
}

func TestPush_ForcePushesOverRemoteData(t *testing.T) {
	engine, _, fake := testEngine(t)
	fake.tables["users"] = []remote.Row{{"ps_number": "PS99"}}

	summary := engine.Push(context.Background(), true, false)
	users := resultFor(t, summary, "users")
	if users.Status != StatusSynced {
		t.Errorf("force should push anyway, got %+v", users)
	}
	if users.LocalFileRemoved {
		t.Error("force pushes never count as first-time syncs")
	}
	if len(fake.cleared) != 0 {
		t.Error("force without replace must not clear tables")
	}
}

func TestPush_ForceReplaceClearsAllButStock(t *testing.T) {
	engine, local, fake := testEngine(t)
	if err := store.Save(local, store.Stock, []models.StockRow{
		{ID: "k1", SchoolID: "S1", Project: models.ProjectMOE, Quantity: 1},
	}); err != nil {
		t.Fatal(err)
	}

	engine.Push(context.Background(), true, true)

	clearedSet := map[string]bool{}
	for _, tbl := range fake.cleared {
		clearedSet[tbl] = true
	}
	for _, tbl := range []string{"users", "schools", "materials", "requests"} {
		if !clearedSet[tbl] {
			t.Errorf("replace should clear %s", tbl)
		}
	}
	if clearedSet["stock_kimonos"] {
		t.Error("replace must never clear the stock table")
	}
}

func TestPush_MissingFileIsAWarningNotAnError(t *testing.T) {
	engine, local, _ := testEngine(t)
	if err := local.Remove(store.Schools); err != nil {
		t.Fatal(err)
	}

	summary := engine.Push(context.Background(), false, false)
	schools := resultFor(t, summary, "schools")
	if schools.Status != StatusMissing || len(schools.Warnings) == 0 {
		t.Errorf("missing file should report a warning: %+v", schools)
	}
	if summary.Errors != 0 {
		t.Errorf("a missing file is not an error: %+v", summary)
	}
}

func TestPush_FailingTableDoesNotAbortOthers(t *testing.T) {
	engine, _, fake := testEngine(t)
	fake.upsertErr["schools"] = errors.New("boom")

	summary := engine.Push(context.Background(), false, false)
	if summary.Errors != 1 {
		t.Fatalf("expected exactly one failed table, got %+v", summary)
	}
	if res := resultFor(t, summary, "schools"); res.Status != StatusError || res.Error == "" {
		t.Errorf("failed table should carry its error: %+v", res)
	}
	if res := resultFor(t, summary, "requests"); res.Status != StatusSynced {
		t.Errorf("later tables should still sync: %+v", res)
	}
}

func TestPush_CheckFailureIsAWarning(t *testing.T) {
	engine, local, fake := testEngine(t)
	fake.selectErr["users"] = errors.New("timeout")

	summary := engine.Push(context.Background(), false, false)
	users := resultFor(t, summary, "users")
	if users.Status != StatusSynced {
		t.Errorf("a failed existence check should not stop the push: %+v", users)
	}
	if len(users.Warnings) == 0 {
		t.Error("the check failure should be reported as a warning")
	}
	if users.LocalFileRemoved || !local.Exists(store.Users) {
		t.Error("an unverified first sync must not remove the local file")
	}
}

func TestPull_OverwritesLocalFiles(t *testing.T) {
	engine, local, fake := testEngine(t)
	fake.tables["requests"] = []remote.Row{
		{"id": "r1", "school_id": "S1", "category": "Judogi", "material": "Kimono", "quantity": 2, "date": "2026-01-15", "ps_number": "PS1", "status": "Pending", "internal_col": "x"},
	}

	summary := engine.Pull(context.Background())
	if summary.Errors != 0 {
		t.Fatalf("unexpected errors: %+v", summary)
	}

	rows := local.LoadRaw(store.Requests)
	if len(rows) != 1 {
		t.Fatalf("expected 1 pulled request, got %d", len(rows))
	}
	if _, ok := rows[0]["internal_col"]; ok {
		t.Error("pull must project to the allowed field set")
	}
	if rows[0]["id"] != "r1" {
		t.Errorf("unexpected pulled row: %+v", rows[0])
	}

	// Pulling an empty table truncates the local file too.
	users := local.LoadRaw(store.Users)
	if len(users) != 0 {
		t.Errorf("empty remote users should overwrite the local seed, got %d rows", len(users))
	}
}
