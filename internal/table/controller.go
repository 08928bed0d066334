package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateClosed  State = "closed"
)

// Backend is the REST contract a controller talks to. Create and Update
// return nil when the server answers without a body.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (*T, error)
	Update(ctx context.Context, id string, record T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type SortState struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

type Snapshot[T any] struct {
	Collection string     `json:"collection"`
	State      State      `json:"state"`
	Term       string     `json:"term"`
	Sort       *SortState `json:"sort,omitempty"`
	Editing    string     `json:"editing,omitempty"`
	Total      int        `json:"total"`
	Source     []T        `json:"-"`
	Displayed  []T        `json:"records"`
}

type Option[T any] func(*Controller[T])

func WithNotifier[T any](n Notifier) Option[T] {
	return func(c *Controller[T]) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithValidator installs a field check run on Create and Edit before any
// request is sent.
func WithValidator[T any](fn func(T) error) Option[T] {
	return func(c *Controller[T]) {
		c.validate = fn
	}
}

func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Controller[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller holds one table's record sets. The source set mirrors the last
// list fetched from the backend; the displayed set is the source after the
// search term and sort toggles are applied. Both are guarded by mu; network
// calls run without holding it, so edits on different records may race.
type Controller[T any] struct {
	schema   Schema[T]
	backend  Backend[T]
	notifier Notifier
	validate func(T) error
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	state     State
	source    []T
	displayed []T
	term      string
	sort      *SortState
	editing   string
}

// New binds a controller to parent. Cancelling parent, or calling Close,
// aborts all in-flight requests and disposes of the controller.
func New[T any](parent context.Context, schema Schema[T], backend Backend[T], opts ...Option[T]) (*Controller[T], error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("table %s: backend is required", schema.Collection)
	}

	ctx, cancel := context.WithCancel(parent)
	c := &Controller[T]{
		schema:    schema,
		backend:   backend,
		logger:    slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateLoading,
		source:    []T{},
		displayed: []T{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}

	return c, nil
}

func (c *Controller[T]) Schema() Schema[T] {
	return c.schema
}

func (c *Controller[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot[T]{
		Collection: c.schema.Collection,
		State:      c.state,
		Term:       c.term,
		Editing:    c.editing,
		Total:      len(c.source),
		Source:     slices.Clone(c.source),
		Displayed:  slices.Clone(c.displayed),
	}
	if c.sort != nil {
		s := *c.sort
		snap.Sort = &s
	}

	return snap
}

// Displayed returns a copy of the displayed set.
func (c *Controller[T]) Displayed() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.displayed)
}

func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, _, ok := lo.FindIndexOf(c.source, func(r T) bool {
		return c.schema.ID(r) == id
	})

	return record, ok
}

// Load fetches the whole collection once. On failure the previous sets stay
// as they were.
func (c *Controller[T]) Load(ctx context.Context) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}

	records, err := runBound(c, ctx, func(taskCtx context.Context) ([]T, error) {
		return c.backend.List(taskCtx)
	})
	if err != nil {
		return c.fail(err, "Load failed", fmt.Sprintf("Failed to load %s. Please try again.", c.schema.Collection), "")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}

	if records == nil {
		records = []T{}
	}
	c.source = records
	c.state = StateReady
	c.recomputeLocked()

	c.logger.Debug("table loaded", "collection", c.schema.Collection, "records", len(records))
	return nil
}

// Search replaces the term and rebuilds the displayed set from the source.
// An active sort is re-applied so the order matches the sort indicator.
func (c *Controller[T]) Search(term string) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.term = term
	c.recomputeLocked()

	return slices.Clone(c.displayed)
}

// Sort toggles the sort on field: the same field flips direction, a new
// field starts ascending. The displayed set is sorted stably in place, so
// earlier sorts break ties.
func (c *Controller[T]) Sort(field string) ([]T, error) {
	f, ok := c.schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := SortState{Field: f.Name, Direction: Ascending}
	if c.sort != nil && c.sort.Field == f.Name && c.sort.Direction == Ascending {
		next.Direction = Descending
	}
	c.sort = &next

	SortStable(c.displayed, f, next.Direction)

	return slices.Clone(c.displayed), nil
}

// BeginEdit marks id as the record in the edit dialog.
func (c *Controller[T]) BeginEdit(id string) (T, error) {
	record, ok := c.Find(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	c.mu.Lock()
	c.editing = id
	c.mu.Unlock()

	return record, nil
}

func (c *Controller[T]) CancelEdit() {
	c.mu.Lock()
	c.editing = ""
	c.mu.Unlock()
}

func (c *Controller[T]) Editing() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.editing
}

// Edit sends patch to the record's endpoint and, once the server accepts it,
// swaps the record in both sets for the server's copy. Patch is applied
// instead when the response does not carry the record with the same id. A
// failed edit leaves the dialog open.
func (c *Controller[T]) Edit(ctx context.Context, id string, patch T) (T, error) {
	var zero T
	if err := c.ensureOpen(); err != nil {
		return zero, err
	}

	if err := c.check(patch, id); err != nil {
		return zero, err
	}

	confirmed, err := runBound(c, ctx, func(taskCtx context.Context) (*T, error) {
		return c.backend.Update(taskCtx, id, patch)
	})
	if err != nil {
		return zero, c.fail(err, "Error", fmt.Sprintf("Failed to update %s %s. Please try again.", c.schema.Collection, id), id)
	}

	updated := c.confirmedOr(confirmed, id, patch)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	c.source = replaceByID(c.schema, c.source, id, updated)
	c.displayed = replaceByID(c.schema, c.displayed, id, updated)
	if c.editing == id {
		c.editing = ""
	}
	c.mu.Unlock()

	c.notify(LevelInfo, "Record updated", fmt.Sprintf("Record with ID %s has been updated.", id), id)
	return updated, nil
}

// Remove deletes the record upstream, then drops it from both sets. The
// remaining records keep their order.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}

	_, err := runBound(c, ctx, func(taskCtx context.Context) (struct{}, error) {
		return struct{}{}, c.backend.Delete(taskCtx, id)
	})
	if err != nil {
		return c.fail(err, "Error", fmt.Sprintf("Failed to delete %s %s. Please try again.", c.schema.Collection, id), id)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	matchID := func(r T, _ int) bool { return c.schema.ID(r) == id }
	c.source = lo.Reject(c.source, matchID)
	c.displayed = lo.Reject(c.displayed, matchID)
	if c.editing == id {
		c.editing = ""
	}
	c.mu.Unlock()

	c.notify(LevelInfo, "Record deleted", fmt.Sprintf("Record with ID %s has been deleted.", id), id)
	return nil
}

// Create posts a new record. The backend assigns identifiers; the confirmed
// record is appended to the source and the displayed set is rebuilt.
func (c *Controller[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := c.ensureOpen(); err != nil {
		return zero, err
	}

	if err := c.check(record, ""); err != nil {
		return zero, err
	}

	confirmed, err := runBound(c, ctx, func(taskCtx context.Context) (*T, error) {
		return c.backend.Create(taskCtx, record)
	})
	if err != nil {
		return zero, c.fail(err, "Error", fmt.Sprintf("Failed to create %s record. Please try again.", c.schema.Collection), "")
	}

	created := c.confirmedOr(confirmed, "", record)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	c.source = append(slices.Clone(c.source), created)
	c.recomputeLocked()
	c.mu.Unlock()

	id := c.schema.ID(created)
	c.notify(LevelInfo, "Record created", fmt.Sprintf("Record with ID %s has been created.", id), id)
	return created, nil
}

// Close cancels every in-flight request. Results that arrive afterwards are
// dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.state = StateClosed
	c.editing = ""
	c.mu.Unlock()

	c.cancel()
}

// confirmedOr returns the record decoded from a mutation response when it
// carries an identifier (equal to want, when want is set). Bodies such as
// {"message": "..."} decode to a record without one and yield fallback.
func (c *Controller[T]) confirmedOr(confirmed *T, want string, fallback T) T {
	if confirmed == nil {
		return fallback
	}

	var zero T
	id := c.schema.ID(*confirmed)
	if id == "" || id == c.schema.ID(zero) {
		return fallback
	}
	if want != "" && id != want {
		return fallback
	}

	return *confirmed
}

func (c *Controller[T]) ensureOpen() error {
	if c.ctx.Err() != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return ErrClosed
	}

	return nil
}

func (c *Controller[T]) check(record T, id string) error {
	if c.validate == nil {
		return nil
	}

	if err := c.validate(record); err != nil {
		c.notify(LevelError, "Invalid input", err.Error(), id)
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return nil
}

func (c *Controller[T]) fail(err error, title string, message string, id string) error {
	if errors.Is(err, ErrClosed) || c.ctx.Err() != nil {
		return ErrClosed
	}

	c.logger.Error("table operation failed", "collection", c.schema.Collection, "record_id", id, "error", err)
	c.notify(LevelError, title, message, id)

	return fmt.Errorf("%w: %w", ErrOperationFailed, err)
}

func (c *Controller[T]) notify(level Level, title string, message string, id string) {
	c.notifier.Notify(Notification{
		Level:      level,
		Title:      title,
		Message:    message,
		Collection: c.schema.Collection,
		RecordID:   id,
		Time:       time.Now().UTC(),
	})
}

func (c *Controller[T]) recomputeLocked() {
	c.displayed = Filter(c.schema, c.source, c.term)
	if c.sort == nil {
		return
	}

	if f, ok := c.schema.Field(c.sort.Field); ok {
		SortStable(c.displayed, f, c.sort.Direction)
	}
}

// runBound runs fn under a context that ends when either the caller's ctx or
// the controller's lifetime ends.
func runBound[T any, R any](c *Controller[T], ctx context.Context, fn func(context.Context) (R, error)) (R, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	return fn(taskCtx)
}

func replaceByID[T any](schema Schema[T], records []T, id string, updated T) []T {
	out := slices.Clone(records)
	for i := range out {
		if schema.ID(out[i]) == id {
			out[i] = updated
		}
	}

	return out
}
