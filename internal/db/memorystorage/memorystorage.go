// Package memorystorage is the process-local storage backend. Its state is
// lost on restart, so it is meant for development and tests.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/shoplist/internal/db/jsondb"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
