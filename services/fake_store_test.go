package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"safe2gether/supabase"
)

// fakeStore is an in-memory RecordStore for tests. Rows are plain maps
// and move through a JSON round-trip at the boundary, the same way
// PostgREST rows do.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	nextID int64

	// rejectProjection makes projected List calls fail, exercising the
	// full-row fallback path.
	rejectProjection bool
	// failUpdates makes every Update fail, exercising best-effort
	// write-back paths.
	failUpdates bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: map[string][]map[string]any{}}
}

// seed inserts a row, assigning an id when none is present, and
// returns the id.
func (f *fakeStore) seed(table string, row map[string]any) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := row["id"]; !ok {
		f.nextID++
		row["id"] = f.nextID
	}
	f.tables[table] = append(f.tables[table], row)
	id, _ := row["id"].(int64)
	if id == 0 {
		fmt.Sscan(fmt.Sprint(row["id"]), &id)
	}
	if id > f.nextID {
		f.nextID = id
	}
	return id
}

// row returns a copy of the stored row with the given id.
func (f *fakeStore) row(table string, id int64) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.tables[table] {
		if fmt.Sprint(row["id"]) == fmt.Sprint(id) {
			copied := map[string]any{}
			for k, v := range row {
				copied[k] = v
			}
			return copied
		}
	}
	return nil
}

func (f *fakeStore) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func matches(row map[string]any, filter supabase.Filter) bool {
	raw := fmt.Sprint(row[filter.Column])
	switch filter.Op {
	case "eq":
		return raw == filter.Value
	case "is":
		value, present := row[filter.Column]
		isNull := !present || value == nil
		return (filter.Value == "null") == isNull
	case "ilike":
		return strings.EqualFold(raw, strings.Trim(filter.Value, "%"))
	case "in":
		set := strings.Trim(filter.Value, "()")
		for _, part := range strings.Split(set, ",") {
			if raw == strings.TrimSpace(part) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchesAll(row map[string]any, filters []supabase.Filter) bool {
	for _, filter := range filters {
		if !matches(row, filter) {
			return false
		}
	}
	return true
}

func (f *fakeStore) List(ctx context.Context, table string, opts supabase.ListOptions, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectProjection && opts.Select != "" {
		return &supabase.StatusError{StatusCode: 400, Body: "unknown column in select"}
	}

	rows := []map[string]any{}
	for _, row := range f.tables[table] {
		if matchesAll(row, opts.Filters) {
			rows = append(rows, row)
		}
	}
	if opts.Order != "" {
		column, _, _ := strings.Cut(opts.Order, ".")
		desc := strings.HasSuffix(opts.Order, ".desc")
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fmt.Sprint(rows[i][column]), fmt.Sprint(rows[j][column])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return roundTrip(rows, dest)
}

func (f *fakeStore) Get(ctx context.Context, table string, id int64, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.tables[table] {
		if fmt.Sprint(row["id"]) == fmt.Sprint(id) {
			return roundTrip(row, dest)
		}
	}
	return supabase.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, table string, fields map[string]any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	row := map[string]any{"id": f.nextID}
	for k, v := range fields {
		row[k] = v
	}
	f.tables[table] = append(f.tables[table], row)
	return roundTrip(row, dest)
}

func (f *fakeStore) Update(ctx context.Context, table string, id int64, fields map[string]any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates {
		return &supabase.StatusError{StatusCode: 500, Body: "update disabled"}
	}
	for _, row := range f.tables[table] {
		if fmt.Sprint(row["id"]) == fmt.Sprint(id) {
			for k, v := range fields {
				row[k] = v
			}
			return roundTrip(row, dest)
		}
	}
	return supabase.ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, table string, id int64) (int, error) {
	return f.DeleteWhere(ctx, table, []supabase.Filter{supabase.Eq("id", id)})
}

func (f *fakeStore) DeleteWhere(ctx context.Context, table string, filters []supabase.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tables[table][:0]
	deleted := 0
	for _, row := range f.tables[table] {
		if matchesAll(row, filters) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return deleted, nil
}

// roundTrip copies a value into dest through JSON, matching how the
// real client decodes PostgREST responses.
func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
