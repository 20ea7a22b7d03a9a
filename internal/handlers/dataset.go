package handlers

import (
	"context"
	"sync"

	"github.com/jjenkins/adressen/internal/table"
)

// Dataset owns the loaded address table shared by all requests. It holds
// the unfiltered model; each request derives its own filtered view from a
// snapshot, so request state never leaks between requests.
type Dataset struct {
	mu    sync.RWMutex
	model table.Model
}

// NewDataset creates an empty Dataset
func NewDataset(columns []table.Column, pageSize int) *Dataset {
	return &Dataset{model: table.New(columns, pageSize)}
}

// Apply feeds a loader event into the shared model
func (d *Dataset) Apply(msg table.Msg) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.model = d.model.Update(msg)
}

// Snapshot returns the current unfiltered model
func (d *Dataset) Snapshot() table.Model {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model
}

// WarmUp loads the data in the background and applies it. It returns at
// once; the returned channel is closed when the load has been applied.
func (d *Dataset) WarmUp(ctx context.Context, loader Loader) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Apply(loader.Load(ctx))
	}()
	return done
}
