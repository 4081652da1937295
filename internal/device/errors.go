package device

import "errors"

// ErrNotFound reports that a requested resource (a console, uploader or
// actuator id or name) is not registered. An unknown device name is
// reported with broker.ErrDeviceNotFound instead.
var ErrNotFound = errors.New("device: not found")

// ErrModeNotFound is returned by SetMode when the device declares no
// mode with the requested name.
var ErrModeNotFound = errors.New("device: mode not found")

// ErrActuatorFailed is returned by SetMode when a step's actuator
// cannot be resolved against the registry (no bound id, or the bound
// id is no longer registered) or when the resolved actuator's SetMode
// call itself fails. Both are the "ActuatorFailed" outcome of spec
// §4.4 step 3 and abort the transition without rolling current-mode
// back to its previous value.
var ErrActuatorFailed = errors.New("device: actuator failed")

// ErrDependencyNotMet is returned by SetMode when the requested mode
// depends on a different mode than the one currently active.
var ErrDependencyNotMet = errors.New("device: mode dependency not met")

// ErrTransitionInProgress is returned by SetMode when another
// transition is already running on the same device and the caller's
// context is cancelled before it can acquire the transition lock.
var ErrTransitionInProgress = errors.New("device: transition already in progress")

// errLag is returned internally by the binding engine's watch loops
// when a registry subscription reports Lag; Run terminates on it so
// the caller can decide whether to restart the device's binding task.
var errLag = errors.New("device: registry subscription lagged")
