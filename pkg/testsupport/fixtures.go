// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"testing"

	"github.com/goliatone/go-formfields/pkg/datastore"
)

// Context returns a context that is cancelled when the test ends.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// CaptureTemplateOutput runs render against a fresh buffer and returns the
// returned string and what was written to the buffer.
func CaptureTemplateOutput(t *testing.T, render func(*bytes.Buffer) (string, error)) (returned, written string) {
	t.Helper()
	var buf bytes.Buffer
	returned, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return returned, buf.String()
}

// MustStore builds the default store for cfg on backend.
func MustStore(t *testing.T, cfg datastore.Config, backend datastore.Backend) datastore.DataStore {
	t.Helper()
	store, err := datastore.NewDefaultRegistry().Build(cfg, backend)
	if err != nil {
		t.Fatalf("build %s store %q: %v", cfg.ObjectType, cfg.ID, err)
	}
	return store
}
