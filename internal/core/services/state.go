package services

import (
	"context"
	"fmt"
	"sync"

	coreerrors "biosync/internal/core/errors"
)

// State is a step of a single sync run.
type State int

const (
	Idle State = iota
	Connecting
	FetchingDirectory
	FetchingPunches
	Reconciling
	Exporting
	Closing
	Done
	Failed
)

var stateNames = [...]string{
	Idle:              "idle",
	Connecting:        "connecting",
	FetchingDirectory: "fetching-directory",
	FetchingPunches:   "fetching-punches",
	Reconciling:       "reconciling",
	Exporting:         "exporting",
	Closing:           "closing",
	Done:              "done",
	Failed:            "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// DeviceGuard hands out one slot per device id, so runs against the same
// device queue up instead of fighting over the physical connection.
type DeviceGuard struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewDeviceGuard() *DeviceGuard {
	return &DeviceGuard{slots: make(map[string]chan struct{})}
}

var defaultGuard = NewDeviceGuard()

func (g *DeviceGuard) slot(id string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		g.slots[id] = ch
	}
	return ch
}

// Acquire blocks until the device is free or ctx ends. The returned func
// releases the slot and must be called exactly once.
func (g *DeviceGuard) Acquire(ctx context.Context, id string) (func(), error) {
	ch := g.slot(id)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", coreerrors.ErrDeviceBusy, id, ctx.Err())
	}
}
