package storage

import (
	"context"

	"github.com/hoangchien/portfolio/internal/metrics"
)

// Instrumented wraps a Store and records upload counts and bytes.
func Instrumented(s Store) Store {
	return &instrumented{Store: s}
}

type instrumented struct {
	Store
}

func (i *instrumented) Save(ctx context.Context, data []byte, name string) (string, error) {
	loc, err := i.Store.Save(ctx, data, name)
	metrics.RecordUpload(i.Store.Name(), len(data), err)
	return loc, err
}
