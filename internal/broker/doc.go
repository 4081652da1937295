// Package broker implements the Service Facade: the Broker holds the
// four resource registries (actuators, consoles, uploaders, devices),
// builds devices from configuration, and runs each device's
// binding-engine goroutine independently (a WaitGroup, so one device
// stopping never cancels another) while provider sources share an
// errgroup whose first error surfaces from Wait at shutdown.
//
// Broker implements provider.Registrar (so provider.Source
// implementations can publish and withdraw resources) and
// device.Resources (so a Device can resolve actuators/consoles/
// uploaders without importing broker itself).
package broker
