package device

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/boardswarmd/internal/properties"
	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

// Run starts the device's binding engine and blocks until ctx is
// cancelled or a registry subscription reports Lag. Exactly one Run
// call should be active per Device at a time; the broker is
// responsible for restarting it (or not) if it returns.
//
// Run subscribes to all three registries before reading their
// Contents, so no Added/Removed event between the snapshot and the
// subscription opening can be missed — see registry.Registry.Monitor.
func (d *Device) Run(ctx context.Context) error {
	actuatorSub := d.resources.Actuators().Monitor()
	defer actuatorSub.Close()
	consoleSub := d.resources.Consoles().Monitor()
	defer consoleSub.Close()
	uploaderSub := d.resources.Uploaders().Monitor()
	defer uploaderSub.Close()

	changed := false
	for _, e := range d.resources.Actuators().Contents() {
		if d.bindActuatorEntry(e.ID, e.Properties) {
			changed = true
		}
	}
	for _, e := range d.resources.Consoles().Contents() {
		if d.bindConsoleEntry(ctx, e.ID, e.Properties, e.Item) {
			changed = true
		}
	}
	for _, e := range d.resources.Uploaders().Contents() {
		if d.bindUploaderEntry(e.ID, e.Properties) {
			changed = true
		}
	}
	if changed {
		d.notifier.notify()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.watchActuators(ctx, actuatorSub) })
	g.Go(func() error { return d.watchConsoles(ctx, consoleSub) })
	g.Go(func() error { return d.watchUploaders(ctx, uploaderSub) })
	return g.Wait()
}

func (d *Device) watchActuators(ctx context.Context, sub *registry.Subscription[provider.Actuator]) error {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		switch c.Kind {
		case registry.Added:
			if d.bindActuatorEntry(c.ID, c.Properties) {
				d.notifier.notify()
			}
		case registry.Removed:
			if d.unbindActuator(c.ID) {
				d.notifier.notify()
			}
		case registry.Lag:
			d.log.Warn("actuator registry subscription lagged; binding task stopping")
			return errLag
		}
	}
}

func (d *Device) watchConsoles(ctx context.Context, sub *registry.Subscription[provider.Console]) error {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		switch c.Kind {
		case registry.Added:
			if d.bindConsoleEntry(ctx, c.ID, c.Properties, c.Item) {
				d.notifier.notify()
			}
		case registry.Removed:
			if d.unbindConsole(c.ID) {
				d.notifier.notify()
			}
		case registry.Lag:
			d.log.Warn("console registry subscription lagged; binding task stopping")
			return errLag
		}
	}
}

func (d *Device) watchUploaders(ctx context.Context, sub *registry.Subscription[provider.Uploader]) error {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		switch c.Kind {
		case registry.Added:
			if d.bindUploaderEntry(c.ID, c.Properties) {
				d.notifier.notify()
			}
		case registry.Removed:
			if d.unbindUploader(c.ID) {
				d.notifier.notify()
			}
		case registry.Lag:
			d.log.Warn("uploader registry subscription lagged; binding task stopping")
			return errLag
		}
	}
}

// bindActuatorEntry tries to bind id to every unbound mode step whose
// match criteria props satisfies. A single actuator registration can
// fill steps across more than one mode.
func (d *Device) bindActuatorEntry(id uint64, props properties.Properties) bool {
	changed := false
	for _, m := range d.modes {
		for _, s := range m.Sequence {
			if _, ok := s.bound.get(); ok {
				continue
			}
			if !props.Matches(s.match) {
				continue
			}
			if s.bound.bindIfFree(id) {
				changed = true
				d.log.Info("actuator bound", "actuator_id", id, "mode", m.Name)
			}
		}
	}
	return changed
}

func (d *Device) unbindActuator(id uint64) bool {
	changed := false
	for _, m := range d.modes {
		for _, s := range m.Sequence {
			if s.bound.unbindIfMatches(id) {
				changed = true
				d.log.Info("actuator unbound", "actuator_id", id, "mode", m.Name)
			}
		}
	}
	return changed
}

// bindConsoleEntry tries to bind id to every unbound console slot
// props matches, configuring each newly bound console with the slot's
// parameters. Configure errors are logged and never prevent the bind.
func (d *Device) bindConsoleEntry(ctx context.Context, id uint64, props properties.Properties, console provider.Console) bool {
	changed := false
	for _, c := range d.consoles {
		if _, ok := c.bound.get(); ok {
			continue
		}
		if !props.Matches(c.match) {
			continue
		}
		if !c.bound.bindIfFree(id) {
			continue
		}
		changed = true
		d.log.Info("console bound", "console_id", id, "slot", c.Name)
		if err := console.Configure(ctx, c.Params); err != nil {
			d.log.Warn("console configure failed", "console_id", id, "slot", c.Name, "error", err)
		}
	}
	return changed
}

func (d *Device) unbindConsole(id uint64) bool {
	changed := false
	for _, c := range d.consoles {
		if c.bound.unbindIfMatches(id) {
			changed = true
			d.log.Info("console unbound", "console_id", id, "slot", c.Name)
		}
	}
	return changed
}

func (d *Device) bindUploaderEntry(id uint64, props properties.Properties) bool {
	changed := false
	for _, u := range d.uploaders {
		if _, ok := u.bound.get(); ok {
			continue
		}
		if !props.Matches(u.match) {
			continue
		}
		if u.bound.bindIfFree(id) {
			changed = true
			d.log.Info("uploader bound", "uploader_id", id, "slot", u.Name)
		}
	}
	return changed
}

func (d *Device) unbindUploader(id uint64) bool {
	changed := false
	for _, u := range d.uploaders {
		if u.bound.unbindIfMatches(id) {
			changed = true
			d.log.Info("uploader unbound", "uploader_id", id, "slot", u.Name)
		}
	}
	return changed
}
