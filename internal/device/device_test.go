package device

import (
	"io"
	"log/slog"

	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/registry"
)

// testResources is a minimal Resources implementation backed by three
// fresh registries, used by every test in this package.
type testResources struct {
	actuators *registry.Registry[provider.Actuator]
	consoles  *registry.Registry[provider.Console]
	uploaders *registry.Registry[provider.Uploader]
}

func newTestResources() *testResources {
	return &testResources{
		actuators: registry.New[provider.Actuator](),
		consoles:  registry.New[provider.Console](),
		uploaders: registry.New[provider.Uploader](),
	}
}

func (r *testResources) Actuators() *registry.Registry[provider.Actuator]  { return r.actuators }
func (r *testResources) Consoles() *registry.Registry[provider.Console]   { return r.consoles }
func (r *testResources) Uploaders() *registry.Registry[provider.Uploader] { return r.uploaders }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
