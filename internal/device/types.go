package device

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nerrad567/boardswarmd/internal/config"
	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

// Resources is the slice of the broker a Device needs to bind its
// slots: the three resource registries. Defined here, rather than
// imported from the broker package, so device has no dependency on
// broker — broker depends on device, not the other way around.
type Resources interface {
	Actuators() *registry.Registry[provider.Actuator]
	Consoles() *registry.Registry[provider.Console]
	Uploaders() *registry.Registry[provider.Uploader]
}

// boundID tracks the single registry id, if any, currently occupying a
// slot. Binding is permanent: once set, it is only cleared when that
// exact id is removed.
type boundID struct {
	mu sync.Mutex
	id uint64
	ok bool
}

func (b *boundID) get() (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id, b.ok
}

// bindIfFree sets id as occupying the slot if it is currently empty,
// reporting whether it did so.
func (b *boundID) bindIfFree(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ok {
		return false
	}
	b.id, b.ok = id, true
	return true
}

// unbindIfMatches clears the slot if it currently holds id, reporting
// whether it did so.
func (b *boundID) unbindIfMatches(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ok || b.id != id {
		return false
	}
	b.id, b.ok = 0, false
	return true
}

// slot is the matching behaviour shared by console slots, uploader
// slots and mode steps.
type slot struct {
	match map[string]string
	bound boundID
}

func newSlot(match map[string]string) slot {
	return slot{match: match}
}

// ConsoleSlot is one console attachment point on a device.
type ConsoleSlot struct {
	slot
	Name   string
	Params provider.Params
}

// UploaderSlot is one uploader attachment point on a device.
type UploaderSlot struct {
	slot
	Name string
}

// ModeStep is one step of a Mode's actuator sequence.
type ModeStep struct {
	slot
	Params        provider.Params
	Stabilisation time.Duration
}

// Mode is one named, reachable device configuration: an ordered
// sequence of actuator steps, optionally depending on another mode
// already being active.
type Mode struct {
	Name      string
	DependsOn string
	Sequence  []*ModeStep
}

// available reports whether every step in the mode's sequence is
// currently bound to an actuator.
func (m *Mode) available() bool {
	for _, s := range m.Sequence {
		if _, ok := s.bound.get(); !ok {
			return false
		}
	}
	return true
}

// Device binds console/uploader slots and mode actuator steps to
// registry entries, and drives mode transitions.
type Device struct {
	name      string
	resources Resources
	log       *slog.Logger

	consoles  []*ConsoleSlot
	uploaders []*UploaderSlot
	modes     []*Mode

	transitionSem chan struct{}
	stateMu       sync.Mutex
	currentMode   string
	hasMode       bool

	notifier *notifier
}

// NewDevice builds a Device from its configuration. resources is used
// both to bind slots and, during SetMode, to resolve the actuator
// behind a bound step.
func NewDevice(cfg config.DeviceConfig, resources Resources, log *slog.Logger) *Device {
	d := &Device{
		name:          cfg.Name,
		resources:     resources,
		log:           log.With("device", cfg.Name),
		notifier:      newNotifier(),
		transitionSem: make(chan struct{}, 1),
	}

	for _, c := range cfg.Consoles {
		d.consoles = append(d.consoles, &ConsoleSlot{
			slot:   newSlot(c.Match),
			Name:   c.Name,
			Params: c.Parameters,
		})
	}
	for _, u := range cfg.Uploaders {
		d.uploaders = append(d.uploaders, &UploaderSlot{
			slot: newSlot(u.Match),
			Name: u.Name,
		})
	}
	for _, m := range cfg.Modes {
		mode := &Mode{Name: m.Name, DependsOn: m.Depends}
		for _, s := range m.Sequence {
			mode.Sequence = append(mode.Sequence, &ModeStep{
				slot:          newSlot(s.Match),
				Params:        s.Parameters,
				Stabilisation: s.Stabilisation.Duration,
			})
		}
		d.modes = append(d.modes, mode)
	}

	return d
}

// Name returns the device's configured name.
func (d *Device) Name() string { return d.name }

// Watch returns a channel that closes the next time the device's view
// changes (a slot binds or unbinds, or the current mode changes).
func (d *Device) Watch() <-chan struct{} { return d.notifier.watch() }

// SlotView is the binding state of one console or uploader slot.
type SlotView struct {
	Name  string `json:"name"`
	ID    uint64 `json:"id,omitempty"`
	Bound bool   `json:"bound"`
}

// ModeView is the availability of one declared mode.
type ModeView struct {
	Name      string `json:"name"`
	DependsOn string `json:"depends_on,omitempty"`
	Available bool   `json:"available"`
}

// View is a point-in-time snapshot of a device's full state, the
// shape emitted to device_info callers.
type View struct {
	Name        string     `json:"name"`
	Consoles    []SlotView `json:"consoles"`
	Uploaders   []SlotView `json:"uploaders"`
	Modes       []ModeView `json:"modes"`
	CurrentMode string     `json:"current_mode,omitempty"`
	HasMode     bool       `json:"has_mode"`
}

// View assembles the device's current snapshot.
func (d *Device) View() View {
	v := View{Name: d.name}

	for _, c := range d.consoles {
		sv := SlotView{Name: c.Name}
		sv.ID, sv.Bound = c.bound.get()
		v.Consoles = append(v.Consoles, sv)
	}
	for _, u := range d.uploaders {
		sv := SlotView{Name: u.Name}
		sv.ID, sv.Bound = u.bound.get()
		v.Uploaders = append(v.Uploaders, sv)
	}
	for _, m := range d.modes {
		v.Modes = append(v.Modes, ModeView{
			Name:      m.Name,
			DependsOn: m.DependsOn,
			Available: m.available(),
		})
	}

	d.stateMu.Lock()
	v.CurrentMode, v.HasMode = d.currentMode, d.hasMode
	d.stateMu.Unlock()

	return v
}
