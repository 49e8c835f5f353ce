package remote

import (
	"context"
	"errors"
)

// ErrNoEndpoint marks a deployment with no remote store configured.
var ErrNoEndpoint = errors.New("no remote endpoint configured")

// Offline is a Client for deployments without a remote store. Every
// call fails with a NetworkError, so the sync layer degrades to its
// local-only paths.
type Offline struct{}

// Create implements Client.
func (Offline) Create(context.Context, string, string, any) error {
	return &NetworkError{Op: "create", Err: ErrNoEndpoint}
}

// Get implements Client.
func (Offline) Get(context.Context, string, string) (Document, error) {
	return Document{}, &NetworkError{Op: "get", Err: ErrNoEndpoint}
}

// Update implements Client.
func (Offline) Update(context.Context, string, string, any) error {
	return &NetworkError{Op: "update", Err: ErrNoEndpoint}
}

// Delete implements Client.
func (Offline) Delete(context.Context, string, string) error {
	return &NetworkError{Op: "delete", Err: ErrNoEndpoint}
}

// List implements Client.
func (Offline) List(context.Context, string, Query) ([]Document, error) {
	return nil, &NetworkError{Op: "list", Err: ErrNoEndpoint}
}
