package remote

import (
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// Row is the dynamic record shape that crosses the sync boundary. Typed
// models are projected into Rows before they touch a remote table.
type Row = map[string]any

// TableSpec declares what a remote table accepts: its allowed fields and the
// conflict key the remote uses to turn an upsert into an idempotent merge.
// An empty ConflictKey means upserts are append-only inserts; materials has
// no unique constraint, so repeated syncs may duplicate catalog rows there.
// That asymmetry is inherited from the remote schema, not a bug to fix here.
type TableSpec struct {
	Name          string
	AllowedFields []string
	ConflictKey   string
}

var (
	UsersTable = TableSpec{
		Name:          "users",
		AllowedFields: []string{"ps_number", "password", "credential", "name"},
		ConflictKey:   "ps_number",
	}
	CoachesTable = TableSpec{
		Name:          "coaches",
		AllowedFields: []string{"ps_number", "password", "credential"},
		ConflictKey:   "ps_number",
	}
	SchoolsTable = TableSpec{
		Name:          "schools",
		AllowedFields: []string{"id", "nome", "city", "coaches"},
		ConflictKey:   "id",
	}
	MaterialsTable = TableSpec{
		Name:          "materials",
		AllowedFields: []string{"category", "subcategory", "item"},
		ConflictKey:   "",
	}
	RequestsTable = TableSpec{
		Name:          "requests",
		AllowedFields: []string{"id", "school_id", "category", "material", "quantity", "date", "ps_number", "status"},
		ConflictKey:   "id",
	}
	StockTable = TableSpec{
		Name:          "stock_kimonos",
		AllowedFields: []string{"id", "school_id", "project", "type", "size", "quantity"},
		ConflictKey:   "id",
	}
)

// SyncTables lists the tables the sync engine pushes and pulls, in order.
// The coaches mirror is not in the list; it is maintained as a side effect of
// syncing users.
var SyncTables = []TableSpec{UsersTable, SchoolsTable, MaterialsTable, RequestsTable, StockTable}

// SpecFor looks a table spec up by name.
func SpecFor(name string) (TableSpec, bool) {
	if name == CoachesTable.Name {
		return CoachesTable, true
	}
	for _, t := range SyncTables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

// Shape projects rows to the table's allowed fields, dropping everything else
// so pushes never trip over columns the remote schema does not have. Values
// get minimal cleanup on the way through: request quantities become plain
// integers when they parse (unreadable values pass through untouched) and
// school coach lists become a JSON-typed slice the database driver
// understands.
func (t TableSpec) Shape(rows []Row) []Row {
	allowed := make(map[string]bool, len(t.AllowedFields))
	for _, f := range t.AllowedFields {
		allowed[f] = true
	}

	shaped := make([]Row, 0, len(rows))
	for _, r := range rows {
		out := Row{}
		for k, v := range r {
			if !allowed[k] {
				continue
			}
			out[k] = t.cleanValue(k, v)
		}
		shaped = append(shaped, out)
	}
	return shaped
}

// Project maps rows to exactly the allowed field set, with nil for columns a
// remote row does not carry. This is the pull-side counterpart of Shape.
func (t TableSpec) Project(rows []Row) []Row {
	projected := make([]Row, 0, len(rows))
	for _, r := range rows {
		out := Row{}
		for _, f := range t.AllowedFields {
			out[f] = r[f]
		}
		projected = append(projected, out)
	}
	return projected
}

func (t TableSpec) cleanValue(field string, v any) any {
	switch {
	case field == "quantity" && t.Name == RequestsTable.Name:
		return coerceInt(v)
	case field == "coaches" && t.Name == SchoolsTable.Name:
		return datatypes.JSONSlice[string](coerceStringSlice(v))
	}
	return v
}

// coerceInt turns numeric values and numeric strings into plain ints.
// Anything it cannot read comes back unchanged; the remote rejects it with a
// per-table error instead of silently storing a zero.
func coerceInt(v any) any {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return v
}

func coerceStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case datatypes.JSONSlice[string]:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
