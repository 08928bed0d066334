package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"bizdesk/internal/model"
	"bizdesk/internal/table"
)

// View is one mounted table with its record type erased, so the console and
// the terminal client can drive any collection the same way.
type View interface {
	Collection() string
	Fields() []FieldInfo
	Load(ctx context.Context) error
	Search(term string)
	Sort(field string) error
	Snapshot() Snapshot
	Get(id string) (any, bool)
	Rows() [][]string
	BeginEdit(id string) error
	CancelEdit()
	Edit(ctx context.Context, id string, patch json.RawMessage) (any, error)
	Create(ctx context.Context, payload json.RawMessage) (any, error)
	Remove(ctx context.Context, id string) error
	Close()
}

type FieldInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	ID   bool   `json:"id,omitempty"`
}

type Snapshot struct {
	Collection string           `json:"collection"`
	State      table.State      `json:"state"`
	Term       string           `json:"term"`
	Sort       *table.SortState `json:"sort,omitempty"`
	Editing    string           `json:"editing,omitempty"`
	Total      int              `json:"total"`
	Records    []any            `json:"records"`
}

type tableView[T any] struct {
	ctrl *table.Controller[T]
}

func (v *tableView[T]) Collection() string {
	return v.ctrl.Schema().Collection
}

func (v *tableView[T]) Fields() []FieldInfo {
	return fieldsOf(v.ctrl.Schema())
}

func (v *tableView[T]) Load(ctx context.Context) error {
	return v.ctrl.Load(ctx)
}

func (v *tableView[T]) Search(term string) {
	v.ctrl.Search(term)
}

func (v *tableView[T]) Sort(field string) error {
	_, err := v.ctrl.Sort(field)
	return err
}

func (v *tableView[T]) Snapshot() Snapshot {
	snap := v.ctrl.Snapshot()
	records := make([]any, 0, len(snap.Displayed))
	for _, r := range snap.Displayed {
		records = append(records, r)
	}

	return Snapshot{
		Collection: snap.Collection,
		State:      snap.State,
		Term:       snap.Term,
		Sort:       snap.Sort,
		Editing:    snap.Editing,
		Total:      snap.Total,
		Records:    records,
	}
}

func (v *tableView[T]) Get(id string) (any, bool) {
	return v.ctrl.Find(id)
}

// Rows renders the displayed set in schema column order.
func (v *tableView[T]) Rows() [][]string {
	schema := v.ctrl.Schema()
	displayed := v.ctrl.Displayed()

	rows := make([][]string, 0, len(displayed))
	for _, r := range displayed {
		rows = append(rows, schema.Row(r))
	}

	return rows
}

func (v *tableView[T]) BeginEdit(id string) error {
	_, err := v.ctrl.BeginEdit(id)
	return err
}

func (v *tableView[T]) CancelEdit() {
	v.ctrl.CancelEdit()
}

// Edit overlays patch on the current copy of the record, so callers may send
// only the fields they change.
func (v *tableView[T]) Edit(ctx context.Context, id string, patch json.RawMessage) (any, error) {
	current, ok := v.ctrl.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrRecordNotFound, id)
	}

	if err := json.Unmarshal(patch, &current); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	return v.ctrl.Edit(ctx, id, current)
}

func (v *tableView[T]) Create(ctx context.Context, payload json.RawMessage) (any, error) {
	var record T
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	return v.ctrl.Create(ctx, record)
}

func (v *tableView[T]) Remove(ctx context.Context, id string) error {
	return v.ctrl.Remove(ctx, id)
}

func (v *tableView[T]) Close() {
	v.ctrl.Close()
}

func fieldsOf[T any](schema table.Schema[T]) []FieldInfo {
	out := make([]FieldInfo, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		out = append(out, FieldInfo{Name: f.Name, Kind: f.Kind.String(), ID: f.Name == schema.IDField})
	}

	return out
}
