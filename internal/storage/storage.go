// Package storage persists uploaded images and hands back a locator for them.
//
// BACKENDS:
// Two interchangeable implementations sit behind Store:
//   - Local writes under a directory the HTTP server exposes at /uploads/
//   - S3 writes to an S3-compatible bucket (AWS, MinIO, R2, ...)
//
// Services only ever see Store, so switching backends is a configuration
// change.
//
// LOCATORS:
// Every locator is an absolute URL (https://host/uploads/<file> or the
// bucket's public URL). A backend deletes only locators it produced itself;
// anything else, such as a URL written by a previously configured backend, is
// left alone.
package storage

import (
	"context"
	"path/filepath"
	"strings"
)

// Store saves bytes and returns where they can be fetched from.
type Store interface {
	// Save stores data under a fresh unique name derived from name's
	// extension and returns the locator.
	Save(ctx context.Context, data []byte, name string) (string, error)
	// Delete removes the object behind locator. Unknown or foreign
	// locators are not an error.
	Delete(ctx context.Context, locator string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// extOf returns the lowercased extension of name including the dot.
func extOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
