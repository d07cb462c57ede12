package repository

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/record"
	"github.com/spec-kit/ticket-tracker/internal/tabular"
)

// Table is a typed view over one store file.
type Table[T any] struct {
	store *tabular.Store
	codec record.Codec[T]
}

// NewTable binds a codec to a store. The store header must equal the codec header.
func NewTable[T any](store *tabular.Store, codec record.Codec[T]) (*Table[T], error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if !slices.Equal(store.Header(), codec.Header) {
		return nil, fmt.Errorf("store %s header %v does not match record header %v", store.Path(), store.Header(), codec.Header)
	}
	return &Table[T]{store: store, codec: codec}, nil
}

// OpenTable creates the store for path and binds the codec to it.
func OpenTable[T any](path string, codec record.Codec[T], logger *zap.Logger, recorder tabular.Recorder) (*Table[T], error) {
	store, err := tabular.NewStore(path, codec.Header, logger, recorder)
	if err != nil {
		return nil, err
	}
	return NewTable(store, codec)
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.store.Path()
}

// Codec returns the record codec.
func (t *Table[T]) Codec() record.Codec[T] {
	return t.codec
}

// EnsureSchema creates or repairs the backing file.
func (t *Table[T]) EnsureSchema() error {
	return t.store.EnsureSchema()
}

// List decodes every valid row in file order.
func (t *Table[T]) List() ([]T, error) {
	rows, err := t.store.Load()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, t.codec.Decode(row))
	}
	return items, nil
}

// Replace overwrites the file with items.
func (t *Table[T]) Replace(items []T) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, t.codec.Encode(item))
	}
	return t.store.Save(rows)
}

// Append reads the current set, adds item at the end and rewrites the file.
func (t *Table[T]) Append(item T) error {
	items, err := t.List()
	if err != nil {
		return err
	}
	return t.Replace(append(items, item))
}
