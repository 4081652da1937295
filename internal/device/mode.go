package device

import (
	"context"
	"fmt"
	"time"
)

// acquireTransition takes transitionSem, a one-slot semaphore used as a
// context-cancellable mutex: SetMode holds it for the whole transition,
// so two concurrent SetMode calls can never interleave their steps. The
// binding engine does not take it; slots may bind or unbind while a
// transition runs.
func (d *Device) acquireTransition(ctx context.Context) error {
	select {
	case d.transitionSem <- struct{}{}:
		return nil
	default:
	}
	select {
	case d.transitionSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ErrTransitionInProgress
	}
}

func (d *Device) releaseTransition() {
	<-d.transitionSem
}

func (d *Device) findMode(name string) *Mode {
	for _, m := range d.modes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// SetMode drives the device through the named mode's actuator
// sequence, one step at a time, in order: resolve the step's bound
// actuator, call SetMode on it, then wait out the step's stabilisation
// delay before moving to the next step. The whole transition — every
// step plus every delay — runs under a single per-device lock, so a
// second SetMode call never observes a half-applied mode. The binding
// engine is not held off by this lock.
//
// An actuator is resolved from the registry at the moment its step
// runs, not cached from bind time, so a provider that replaces its
// registration between transitions is picked up without restarting
// the device's binding engine.
func (d *Device) SetMode(ctx context.Context, name string) error {
	mode := d.findMode(name)
	if mode == nil {
		return fmt.Errorf("%w: %q", ErrModeNotFound, name)
	}

	if err := d.acquireTransition(ctx); err != nil {
		return err
	}
	defer d.releaseTransition()

	d.stateMu.Lock()
	current, hasMode := d.currentMode, d.hasMode
	if mode.DependsOn != "" && (!hasMode || current != mode.DependsOn) {
		d.stateMu.Unlock()
		return fmt.Errorf("%w: %q requires %q", ErrDependencyNotMet, name, mode.DependsOn)
	}
	// current-mode is observably None for the whole transition (spec
	// §4.4 step 2/atomicity clause); a failure below leaves it cleared
	// rather than rolling back to the previous value. Not notified:
	// per scenario S3, only the successful end-states are emitted.
	d.currentMode, d.hasMode = "", false
	d.stateMu.Unlock()

	for i, step := range mode.Sequence {
		id, ok := step.bound.get()
		if !ok {
			return fmt.Errorf("%w: %q step %d has no bound actuator", ErrActuatorFailed, name, i)
		}
		entry, ok := d.resources.Actuators().Lookup(id)
		if !ok {
			return fmt.Errorf("%w: %q step %d's actuator %d is no longer registered", ErrActuatorFailed, name, i, id)
		}

		if err := entry.Item.SetMode(ctx, step.Params); err != nil {
			return fmt.Errorf("device: mode %q step %d: %w: %w", name, i, ErrActuatorFailed, err)
		}

		if step.Stabilisation > 0 {
			if err := waitStabilisation(ctx, step.Stabilisation); err != nil {
				return err
			}
		}
	}

	d.stateMu.Lock()
	d.currentMode, d.hasMode = name, true
	d.stateMu.Unlock()
	d.notifier.notify()

	return nil
}

func waitStabilisation(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
