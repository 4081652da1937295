// Package fake provides in-memory provider.Actuator/Console/Uploader
// implementations used by tests and by cmd/boardswarmd's demo mode. They
// stand in for the real hotplug/serial/DFU/PDU collaborators that stay
// out of this repository.
package fake

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/boardswarmd/internal/provider"
)

// ActuatorParams is the parameter shape the fake Actuator decodes its
// SetMode payload into, standing in for a real PDU/relay provider's
// params struct.
type ActuatorParams struct {
	State string `mapstructure:"state"`
}

// Actuator records every successful SetMode call it receives. It can be
// told to fail via SetErr for testing the mode sequencer's error path;
// failed calls are not recorded.
type Actuator struct {
	mu      sync.Mutex
	calls   []provider.Params
	states  []string
	failErr error
}

// SetErr makes every subsequent SetMode call fail with err.
func (a *Actuator) SetErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failErr = err
}

// SetMode implements provider.Actuator. It decodes params into
// ActuatorParams the way a real relay/PDU provider would, and records
// the resulting state so tests can assert on the sequence observed.
func (a *Actuator) SetMode(_ context.Context, params provider.Params) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failErr != nil {
		return a.failErr
	}
	var p ActuatorParams
	if err := provider.DecodeParams(params, &p); err != nil {
		return err
	}
	a.calls = append(a.calls, params)
	a.states = append(a.states, p.State)
	return nil
}

// Calls returns a copy of every params payload SetMode has accepted.
func (a *Actuator) Calls() []provider.Params {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]provider.Params, len(a.calls))
	copy(out, a.calls)
	return out
}

// States returns a copy of every decoded "state" field SetMode has seen,
// in call order.
func (a *Actuator) States() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.states))
	copy(out, a.states)
	return out
}

// Console is an in-memory loopback console: anything sent to Input is
// immediately visible on Output, and Configure calls are counted.
type Console struct {
	configureCount int32
	configureErr   error

	mu      sync.Mutex
	out     chan provider.Chunk
	closed  bool
}

// NewConsole creates a ready-to-use fake console.
func NewConsole() *Console {
	return &Console{out: make(chan provider.Chunk, 16)}
}

// SetConfigureErr makes Configure fail with err.
func (c *Console) SetConfigureErr(err error) {
	c.configureErr = err
}

// ConfigureCount reports how many times Configure has been called.
func (c *Console) ConfigureCount() int {
	return int(atomic.LoadInt32(&c.configureCount))
}

// Configure implements provider.Console.
func (c *Console) Configure(_ context.Context, _ provider.Params) error {
	atomic.AddInt32(&c.configureCount, 1)
	return c.configureErr
}

// Output implements provider.Console.
func (c *Console) Output(_ context.Context) (<-chan provider.Chunk, error) {
	return c.out, nil
}

// Input implements provider.Console, looping data straight back onto
// Output (an echo console).
func (c *Console) Input(_ context.Context) (provider.Sink, error) {
	return sinkFunc(func(ctx context.Context, data []byte) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return fmt.Errorf("fake console: closed")
		}
		select {
		case c.out <- provider.Chunk{Data: data}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}), nil
}

// Close ends the output stream, simulating unregistration.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

type sinkFunc func(ctx context.Context, data []byte) error

func (f sinkFunc) Send(ctx context.Context, data []byte) error { return f(ctx, data) }

// Uploader records uploaded bytes per target and counts Commit calls.
type Uploader struct {
	targets []string

	mu        sync.Mutex
	written   map[string]uint64
	committed int
}

// NewUploader creates a fake uploader that accepts the given targets.
func NewUploader(targets ...string) *Uploader {
	return &Uploader{targets: targets, written: make(map[string]uint64)}
}

// Targets implements provider.Uploader.
func (u *Uploader) Targets() []string { return u.targets }

// Upload implements provider.Uploader, copying data into an internal
// counter and reporting progress as it reads.
func (u *Uploader) Upload(ctx context.Context, target string, data io.Reader, _ uint64, progress provider.Progress) error {
	buf := make([]byte, 256)
	var total uint64
	for {
		n, err := data.Read(buf)
		if n > 0 {
			total += uint64(n)
			progress.Update(total)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	u.mu.Lock()
	u.written[target] = total
	u.mu.Unlock()
	return nil
}

// Commit implements provider.Uploader.
func (u *Uploader) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.committed++
	return nil
}

// Written reports how many bytes were written to target.
func (u *Uploader) Written(target string) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.written[target]
}

// CommitCount reports how many times Commit has been called.
func (u *Uploader) CommitCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.committed
}
