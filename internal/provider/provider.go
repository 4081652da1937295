// Package provider defines the contracts boardswarmd expects from the
// external collaborators that actually touch hardware: actuators,
// consoles and uploaders. Concrete implementations (a serial port
// driver, a DFU uploader, a remote PDU client, a udev hotplug watcher)
// are out of scope for this repository — only the interfaces, and small
// fakes used for tests, live here.
package provider

import (
	"context"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
)

// Params is the opaque, provider-specific parameter payload forwarded
// from configuration or an RPC call straight through to a provider.
// It is kept as a loosely-typed tree rather than a central schema, per
// the "dynamic parameter payloads" design note: each provider interprets
// its own shape, typically via DecodeParams.
type Params = map[string]any

// DecodeParams decodes an opaque Params payload into a provider-specific
// struct pointed to by out, using mapstructure so YAML-sourced and
// RPC-sourced payloads (both map[string]any after unmarshalling) decode
// identically. Unknown keys are ignored; a provider that cares about
// strictness can pass a struct with `mapstructure:",remain"` captured.
func DecodeParams(params Params, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("provider: building params decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("provider: decoding params: %w", err)
	}
	return nil
}

// Actuator puts a device into a particular electrical/boot state by
// accepting an opaque parameter payload.
type Actuator interface {
	SetMode(ctx context.Context, params Params) error
}

// Chunk is one framed unit of console output. Err is set, with Data nil,
// when the output stream is ending because of a transport error; the
// channel is closed immediately after such a Chunk (and after ordinary
// completion).
type Chunk struct {
	Data []byte
	Err  error
}

// Sink accepts byte chunks for a console's input direction.
type Sink interface {
	Send(ctx context.Context, data []byte) error
}

// Console is a bidirectional byte stream attached to a device, typically
// a serial port.
type Console interface {
	// Configure applies slot parameters to the console. Errors are
	// logged by the caller and never abort binding.
	Configure(ctx context.Context, params Params) error

	// Output returns an unbounded stream of byte chunks from the
	// device. Framing is preserved per chunk. The channel is closed
	// when the console is unregistered or the transport fails.
	Output(ctx context.Context) (<-chan Chunk, error)

	// Input returns a sink accepting byte chunks bound for the device.
	Input(ctx context.Context) (Sink, error)
}

// Progress receives monotonically non-decreasing "bytes written"
// updates during an Uploader.Upload call.
type Progress interface {
	Update(written uint64)
}

// Uploader writes a firmware payload to one of a set of named targets
// and can be committed to finalise a (possibly multi-target) session.
type Uploader interface {
	// Targets enumerates the named targets this uploader accepts.
	Targets() []string

	// Upload consumes data (length bytes, advisory) and writes it to
	// target, reporting progress as it goes.
	Upload(ctx context.Context, target string, data io.Reader, length uint64, progress Progress) error

	// Commit finalises any staged upload, e.g. triggering DFU
	// manifestation. Separate from Upload because some providers need
	// an explicit finalisation step after multiple targets within one
	// session.
	Commit(ctx context.Context) error
}

// Registrar is the subset of the broker a provider.Source uses to
// publish and withdraw resources. It is defined here, rather than
// imported from the broker package, so provider has no dependency on
// broker — broker depends on provider, not the other way around.
type Registrar interface {
	RegisterActuator(name string, props map[string]string, a Actuator) uint64
	UnregisterActuator(id uint64)
	RegisterConsole(name string, props map[string]string, c Console) uint64
	UnregisterConsole(id uint64)
	RegisterUploader(name string, props map[string]string, u Uploader) uint64
	UnregisterUploader(id uint64)
}

// Source is a pluggable resource discovery loop (the Go analogue of the
// reference implementation's per-provider tokio tasks: udev hotplug
// watching, a PDU daemon's device list, ...). Run should block until ctx
// is cancelled, registering and unregistering resources with reg as they
// come and go.
type Source interface {
	Run(ctx context.Context, reg Registrar) error
}
