package restclient

import (
	"context"
	"net/http"
)

// Collection binds a client to one collection path and record type. It
// satisfies table.Backend.
type Collection[T any] struct {
	client   *Client
	path     string
	listPath string
}

func NewCollection[T any](client *Client, path string) *Collection[T] {
	return &Collection[T]{client: client, path: path, listPath: path}
}

// WithListPath lists from a different path than the per-record endpoints,
// e.g. users listed per organization but edited by email.
func (c *Collection[T]) WithListPath(path string) *Collection[T] {
	if path != "" {
		c.listPath = path
	}
	return c
}

func (c *Collection[T]) Path() string {
	return c.path
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	records := []T{}
	if _, err := c.client.Do(ctx, http.MethodGet, ResourcePath(c.listPath), nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}

	return records, nil
}

func (c *Collection[T]) Create(ctx context.Context, record T) (*T, error) {
	return c.send(ctx, http.MethodPost, ResourcePath(c.path), record)
}

func (c *Collection[T]) Update(ctx context.Context, id string, record T) (*T, error) {
	return c.send(ctx, http.MethodPut, ResourcePath(c.path, id), record)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, err := c.client.Do(ctx, http.MethodDelete, ResourcePath(c.path, id), nil, nil)
	return err
}

func (c *Collection[T]) send(ctx context.Context, method string, path string, record T) (*T, error) {
	var confirmed T
	decoded, err := c.client.Do(ctx, method, path, record, &confirmed)
	if err != nil {
		return nil, err
	}
	if !decoded {
		return nil, nil
	}

	return &confirmed, nil
}
