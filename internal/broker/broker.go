package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/boardswarmd/internal/config"
	"github.com/nerrad567/boardswarmd/internal/device"
	"github.com/nerrad567/boardswarmd/internal/properties"
	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

// Broker is the Service Facade: the four resource registries, plus the
// supervisor that keeps every device's binding engine running.
type Broker struct {
	actuators *registry.Registry[provider.Actuator]
	consoles  *registry.Registry[provider.Console]
	uploaders *registry.Registry[provider.Uploader]
	devices   *registry.Registry[*device.Device]

	log     *slog.Logger
	metrics *Metrics

	group    *errgroup.Group
	groupCtx context.Context
	deviceWG sync.WaitGroup
}

// New creates a Broker whose supervised goroutines (device binding
// engines, provider sources) run under ctx; cancelling ctx stops all
// of them, and Wait reports the first error a provider source returned.
func New(ctx context.Context, log *slog.Logger, reg prometheus.Registerer) *Broker {
	g, gctx := errgroup.WithContext(ctx)
	return &Broker{
		actuators: registry.New[provider.Actuator](),
		consoles:  registry.New[provider.Console](),
		uploaders: registry.New[provider.Uploader](),
		devices:   registry.New[*device.Device](),
		log:       log,
		metrics:   newMetrics(reg),
		group:     g,
		groupCtx:  gctx,
	}
}

// Actuators implements device.Resources.
func (b *Broker) Actuators() *registry.Registry[provider.Actuator] { return b.actuators }

// Consoles implements device.Resources.
func (b *Broker) Consoles() *registry.Registry[provider.Console] { return b.consoles }

// Uploaders implements device.Resources.
func (b *Broker) Uploaders() *registry.Registry[provider.Uploader] { return b.uploaders }

// Devices returns the registry of configured devices.
func (b *Broker) Devices() *registry.Registry[*device.Device] { return b.devices }

func propsOf(name string, extra map[string]string) properties.Properties {
	p := make(properties.Properties, 1+len(extra))
	p[properties.NameKey] = name
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// RegisterActuator implements provider.Registrar.
func (b *Broker) RegisterActuator(name string, props map[string]string, a provider.Actuator) uint64 {
	id := b.actuators.Add(propsOf(name, props), a)
	b.recordRegistrySizes()
	return id
}

// UnregisterActuator implements provider.Registrar.
func (b *Broker) UnregisterActuator(id uint64) {
	b.actuators.Remove(id)
	b.recordRegistrySizes()
}

// RegisterConsole implements provider.Registrar.
func (b *Broker) RegisterConsole(name string, props map[string]string, c provider.Console) uint64 {
	id := b.consoles.Add(propsOf(name, props), c)
	b.recordRegistrySizes()
	return id
}

// UnregisterConsole implements provider.Registrar.
func (b *Broker) UnregisterConsole(id uint64) {
	b.consoles.Remove(id)
	b.recordRegistrySizes()
}

// RegisterUploader implements provider.Registrar.
func (b *Broker) RegisterUploader(name string, props map[string]string, u provider.Uploader) uint64 {
	id := b.uploaders.Add(propsOf(name, props), u)
	b.recordRegistrySizes()
	return id
}

// UnregisterUploader implements provider.Registrar.
func (b *Broker) UnregisterUploader(id uint64) {
	b.uploaders.Remove(id)
	b.recordRegistrySizes()
}

// LoadDevices builds one device.Device per configured device, adds it
// to the device registry, and spawns its binding engine — the Go
// equivalent of the reference implementation's
// "for d in config.devices { tokio::spawn(...) }" startup loop.
//
// Each device's Run is supervised by a plain WaitGroup, not the
// broker's errgroup: a device's binding engine is independent of every
// other device's and of every provider source (spec §4.3, §7 — a
// channel Lag or any other binding-engine error is logged and
// terminates only *that* device's task). Were these goroutines
// registered on the shared errgroup instead, one device returning
// errLag would cancel groupCtx and tear down every other device's
// binding engine and every provider source along with it.
func (b *Broker) LoadDevices(cfg *config.Config) {
	for _, dc := range cfg.Devices {
		dev := device.NewDevice(dc, b, b.log)
		b.devices.Add(properties.New(dc.Name), dev)
		b.metrics.BindingEngineRestarts.Inc()

		name := dc.Name
		b.deviceWG.Add(1)
		go func() {
			defer b.deviceWG.Done()
			if err := dev.Run(b.groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				b.log.Error("device binding engine stopped", "device", name, "error", err)
			}
		}()
	}
	b.recordRegistrySizes()
}

// Device looks up a configured device by name.
func (b *Broker) Device(name string) (*device.Device, bool) {
	e, ok := b.devices.FindByName(name)
	if !ok {
		return nil, false
	}
	return e.Item, true
}

// StartSource runs src under the broker's supervised group, with the
// broker itself as its Registrar.
func (b *Broker) StartSource(src provider.Source) {
	b.group.Go(func() error { return src.Run(b.groupCtx, b) })
}

// Wait blocks until every supervised goroutine (device binding engines
// and provider sources) has returned, and reports the first non-nil,
// non-context.Canceled error among the provider sources. Device binding
// engine errors never reach Wait's return value — they are logged in
// LoadDevices and otherwise swallowed, per spec §7's "do not tear down
// the service".
func (b *Broker) Wait() error {
	err := b.group.Wait()
	b.deviceWG.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
