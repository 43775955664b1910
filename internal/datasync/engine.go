// Package datasync moves whole collections between the local JSON store and
// the remote data store. Push treats the local files as a bootstrap seed and
// the remote as the eventual source of truth; pull goes the other way and
// overwrites local files unconditionally. Both directions are idempotent and
// re-runnable; there are no automatic retries, a failed table is simply
// reported and the user runs the sync again.
package datasync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

// PullPageSize bounds how many rows a pull fetches per table.
const PullPageSize = 100000

type TableStatus string

const (
	StatusSynced  TableStatus = "synced"
	StatusSkipped TableStatus = "skipped"
	StatusMissing TableStatus = "missing"
	StatusError   TableStatus = "error"
)

// TableResult reports one table's outcome within a push or pull pass.
// Warnings collect the non-fatal hiccups (check failures, mirror failures,
// local file cleanup failures) that never abort the pass.
type TableResult struct {
	Table            string      `json:"table"`
	Status           TableStatus `json:"status"`
	Rows             int         `json:"rows"`
	Mirrored         int         `json:"mirrored,omitempty"`
	LocalFileRemoved bool        `json:"local_file_removed,omitempty"`
	Warnings         []string    `json:"warnings,omitempty"`
	Error            string      `json:"error,omitempty"`
}

// Summary accumulates per-table counters across a whole pass. Synced counts
// tables, not rows; the caller surfaces it once at the end.
type Summary struct {
	Synced  int           `json:"synced"`
	Skipped int           `json:"skipped"`
	Errors  int           `json:"errors"`
	Results []TableResult `json:"results"`
}

// Engine orchestrates push and pull between a local store and a remote one.
type Engine struct {
	local  *store.JSONStore
	remote remote.Store
	logger *slog.Logger
}

func NewEngine(local *store.JSONStore, rs remote.Store, logger *slog.Logger) *Engine {
	return &Engine{local: local, remote: rs, logger: logger}
}

// replaceClearKeys names the column used to clear a table on the destructive
// replace path. Stock is deliberately absent: the original sync never cleared
// it, so replace leaves remote stock rows in place.
var replaceClearKeys = map[string]string{
	remote.UsersTable.Name:     "ps_number",
	remote.SchoolsTable.Name:   "id",
	remote.MaterialsTable.Name: "category",
	remote.RequestsTable.Name:  "id",
}

// Push uploads every local collection to its remote table. Per table: skip
// when the remote already has rows (unless force), shape to allowed fields,
// optionally clear remote rows first (force && replace only), upsert on the
// conflict key, remove the local seed file after a first-time sync, and
// mirror users into the coaches table. A failing table never aborts the
// remaining ones.
func (e *Engine) Push(ctx context.Context, force, replace bool) Summary {
	var summary Summary
	for _, spec := range remote.SyncTables {
		res := e.pushTable(ctx, spec, force, replace)
		switch res.Status {
		case StatusSynced:
			summary.Synced++
		case StatusSkipped:
			summary.Skipped++
		case StatusError:
			summary.Errors++
		}
		summary.Results = append(summary.Results, res)
	}
	e.logger.Info("data sync push finished",
		"synced", summary.Synced, "skipped", summary.Skipped, "errors", summary.Errors,
		"force", force, "replace", replace)
	return summary
}

func (e *Engine) pushTable(ctx context.Context, spec remote.TableSpec, force, replace bool) TableResult {
	res := TableResult{Table: spec.Name}
	collection := store.Collection(spec.Name)

	if !e.local.Exists(collection) {
		res.Status = StatusMissing
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s not found", collection.Filename()))
		return res
	}

	// Check whether the remote already holds data; a failed check is a
	// warning, not a stop; the upsert below may still succeed.
	firstTime := false
	existing, err := e.remote.Select(ctx, spec.Name, 1)
	switch {
	case err != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not check existing data: %v", err))
	case len(existing) > 0 && !force:
		e.logger.Info("skipping table, remote already has data", "table", spec.Name)
		res.Status = StatusSkipped
		return res
	default:
		firstTime = len(existing) == 0 && !force && !replace
	}

	shaped := spec.Shape(e.local.LoadRaw(collection))
	res.Rows = len(shaped)

	if force && replace {
		if key, ok := replaceClearKeys[spec.Name]; ok {
			if err := e.remote.DeleteAll(ctx, spec.Name, key); err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("could not clear remote table: %v", err))
			} else {
				e.logger.Info("cleared remote table before sync", "table", spec.Name)
			}
		}
	}

	if err := e.remote.Upsert(ctx, spec, shaped); err != nil {
		e.logger.Error("table sync failed", "table", spec.Name, "error", err)
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}
	res.Status = StatusSynced
	e.logger.Info("synced table", "table", spec.Name, "rows", len(shaped))

	// After the first successful push to an empty remote the local file is a
	// retired seed; remote is the source of truth from here on.
	if firstTime {
		if err := e.local.Remove(collection); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not delete local file: %v", err))
		} else {
			res.LocalFileRemoved = true
			e.logger.Info("deleted local file after first sync", "file", collection.Filename())
		}
	}

	if spec.Name == remote.UsersTable.Name {
		res.Mirrored = e.mirrorCoaches(ctx, shaped, &res)
	}
	return res
}

// mirrorCoaches upserts the reduced {ps_number, password, credential} shape
// into the coaches table. Failures are warnings; the mirror has its own
// lifecycle and catches up on the next sync.
func (e *Engine) mirrorCoaches(ctx context.Context, users []remote.Row, res *TableResult) int {
	mirrored := make([]remote.Row, 0, len(users))
	for _, u := range users {
		ps, _ := u["ps_number"].(string)
		if ps == "" {
			continue
		}
		cred := u["credential"]
		if cred == nil || cred == "" {
			cred = "Coach"
		}
		mirrored = append(mirrored, remote.Row{
			"ps_number":  ps,
			"password":   u["password"],
			"credential": cred,
		})
	}
	if len(mirrored) == 0 {
		return 0
	}
	if err := e.remote.Upsert(ctx, remote.CoachesTable, mirrored); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("mirror to coaches skipped: %v", err))
		return 0
	}
	e.logger.Info("mirrored users into coaches", "count", len(mirrored))
	return len(mirrored)
}

// Pull downloads every remote table into its local file, projecting rows to
// the allowed field set and overwriting the file unconditionally, with no
// merge or diffing. The remote is authoritative once data has migrated there.
func (e *Engine) Pull(ctx context.Context) Summary {
	var summary Summary
	for _, spec := range remote.SyncTables {
		res := TableResult{Table: spec.Name}
		rows, err := e.remote.Select(ctx, spec.Name, PullPageSize)
		if err == nil {
			err = e.local.SaveRaw(store.Collection(spec.Name), spec.Project(rows))
		}
		if err != nil {
			e.logger.Error("table pull failed", "table", spec.Name, "error", err)
			res.Status = StatusError
			res.Error = err.Error()
			summary.Errors++
		} else {
			res.Status = StatusSynced
			res.Rows = len(rows)
			summary.Synced++
			e.logger.Info("pulled table to local file", "table", spec.Name, "rows", len(rows))
		}
		summary.Results = append(summary.Results, res)
	}
	e.logger.Info("data sync pull finished", "pulled", summary.Synced, "errors", summary.Errors)
	return summary
}
