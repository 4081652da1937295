// Command boardswarmd is the network-accessible broker that multiplexes
// access to physical hardware targets used for firmware bring-up, board
// farms and hardware-in-the-loop test benches.
//
// It loads a declarative device configuration, starts the providers it
// names, runs one binding engine per configured device, and serves the
// resulting registries and devices over an HTTP+WebSocket API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/boardswarmd/internal/api"
	"github.com/nerrad567/boardswarmd/internal/broker"
	"github.com/nerrad567/boardswarmd/internal/config"
	"github.com/nerrad567/boardswarmd/internal/infrastructure/logging"
	"github.com/nerrad567/boardswarmd/internal/provider"
	"github.com/nerrad567/boardswarmd/internal/provider/fake"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// defaultConfigPath is used when BOARDSWARMD_CONFIG is unset.
const defaultConfigPath = "/etc/boardswarmd/config.yaml"

func main() {
	fmt.Printf("boardswarmd %s (%s) built %s\n", version, commit, date)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration document path: the
// BOARDSWARMD_CONFIG environment variable if set, otherwise
// defaultConfigPath.
func getConfigPath() string {
	if p := os.Getenv("BOARDSWARMD_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently: 0 on clean shutdown, non-zero on configuration parse
// failure or transport bind failure, per spec §6.
func run(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting boardswarmd", "config", getConfigPath())

	sources := make([]provider.Source, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		src, err := buildProvider(pc)
		if err != nil {
			return fmt.Errorf("provider %q: %w", pc.Name, err)
		}
		sources = append(sources, src)
	}

	b := broker.New(ctx, log.Logger, prometheus.DefaultRegisterer)
	b.LoadDevices(cfg)
	for _, src := range sources {
		b.StartSource(src)
	}

	apiServer := api.New(api.Deps{
		Config:  cfg.Server,
		Logger:  log.Logger,
		Broker:  b,
		Version: version,
	})
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	log.Info("boardswarmd ready, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	if err := apiServer.Close(); err != nil {
		log.Error("API server shutdown error", "error", err)
	}

	if err := b.Wait(); err != nil {
		log.Error("broker stopped with error", "error", err)
	}

	log.Info("boardswarmd stopped")
	return nil
}

// buildProvider constructs the provider.Source named by a configuration
// stanza's Type field. Real providers (udev hotplug watching, a serial
// driver, a DFU uploader, a remote PDU client) are external
// collaborators out of scope for this repository per spec §1 — "fake"
// is the illustrative in-memory stand-in from internal/provider/fake,
// useful for demoing or smoke-testing a configuration document end to
// end without any hardware attached.
func buildProvider(pc config.ProviderConfig) (provider.Source, error) {
	switch pc.Type {
	case "fake":
		return &fake.StaticSource{}, nil
	default:
		return nil, fmt.Errorf("unknown provider type %q (only %q is built in; real providers are external collaborators per the project's scope)", pc.Type, "fake")
	}
}
