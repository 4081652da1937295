package fake

import (
	"context"
	"time"

	"github.com/nerrad567/boardswarmd/internal/provider"
)

// StaticSource registers a fixed set of actuators, consoles and
// uploaders once and then blocks until ctx is cancelled, at which point
// it unregisters everything it added. It stands in for the reference
// implementation's udev/pdudaemon provider tasks (main.rs spawns one
// goroutine-equivalent per provider kind) without talking to any real
// hardware or daemon.
type StaticSource struct {
	Actuators map[string]provider.Actuator
	Consoles  map[string]provider.Console
	Uploaders map[string]provider.Uploader

	// Matches supplies extra match properties per resource name, beyond
	// the mandatory "name" property every registration gets.
	Matches map[string]map[string]string
}

// Run implements provider.Source.
func (s *StaticSource) Run(ctx context.Context, reg provider.Registrar) error {
	var actuatorIDs, consoleIDs, uploaderIDs []uint64

	for name, a := range s.Actuators {
		actuatorIDs = append(actuatorIDs, reg.RegisterActuator(name, s.Matches[name], a))
	}
	for name, c := range s.Consoles {
		consoleIDs = append(consoleIDs, reg.RegisterConsole(name, s.Matches[name], c))
	}
	for name, u := range s.Uploaders {
		uploaderIDs = append(uploaderIDs, reg.RegisterUploader(name, s.Matches[name], u))
	}

	<-ctx.Done()

	for _, id := range actuatorIDs {
		reg.UnregisterActuator(id)
	}
	for _, id := range consoleIDs {
		reg.UnregisterConsole(id)
	}
	for _, id := range uploaderIDs {
		reg.UnregisterUploader(id)
	}
	return ctx.Err()
}

// DelayedSource registers one resource after a delay, to exercise the
// binding engine's "bind after appear" path without a real hotplug
// event.
type DelayedSource struct {
	Delay time.Duration
	Name  string
	Match map[string]string

	Actuator provider.Actuator
	Console  provider.Console
	Uploader provider.Uploader
}

// Run implements provider.Source.
func (s *DelayedSource) Run(ctx context.Context, reg provider.Registrar) error {
	select {
	case <-time.After(s.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	var id uint64
	switch {
	case s.Actuator != nil:
		id = reg.RegisterActuator(s.Name, s.Match, s.Actuator)
		defer reg.UnregisterActuator(id)
	case s.Console != nil:
		id = reg.RegisterConsole(s.Name, s.Match, s.Console)
		defer reg.UnregisterConsole(id)
	case s.Uploader != nil:
		id = reg.RegisterUploader(s.Name, s.Match, s.Uploader)
		defer reg.UnregisterUploader(id)
	}

	<-ctx.Done()
	return ctx.Err()
}
