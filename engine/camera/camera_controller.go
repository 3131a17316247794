package camera

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (position, target). Camera reads from controller
// and computes view/projection matrices. Embeds both orbitCameraController and
// planarCameraController, enabling orbit and planar controls to work simultaneously
// from a single controller instance.
//
// Interactive input never moves the camera directly. Rotate, Pan and Dolly queue motion
// which Update releases gradually, so the camera glides to a stop after input ends.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point.
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// SetPose places the camera at a literal position looking at a literal target.
	// Spherical coordinates are derived from the pose and queued motion is discarded.
	// Parameters:
	//   - position: world-space camera position
	//   - target: world-space look-at point
	SetPose(position, target [3]float32)

	// SetView jumps to a preset pose with the target at the origin.
	// Queued motion is discarded; the pose is exact and never blended with the previous one.
	// Panics on a preset outside the defined set.
	// Parameters:
	//   - preset: the preset to apply
	SetView(preset Preset)

	// Update releases queued motion for a frame lasting dt seconds.
	// Called once per render tick whether or not playback is running.
	// Parameters:
	//   - dt: elapsed seconds since the previous update
	// Returns:
	//   - bool: true if the pose changed
	Update(dt float32) bool

	// Settled reports whether no queued motion remains.
	// Returns:
	//   - bool: true if Update would not move the camera
	Settled() bool

	// Damping returns the fraction of queued motion released per 60 Hz step.
	// Returns:
	//   - float32: damping factor in (0, 1]
	Damping() float32
}

// orbitCameraController defines orbit-specific control methods.
// Provides third-person orbit controls using spherical coordinates (radius, azimuth, elevation)
// relative to the target/pivot point.
type orbitCameraController interface {
	// Rotate queues an orbit around the target.
	// Parameters:
	//   - dAzimuth: horizontal angle change in radians
	//   - dElevation: vertical angle change in radians
	Rotate(dAzimuth, dElevation float32)

	// Dolly queues a change of orbit distance. Positive delta moves toward the target.
	// The distance scales exponentially so equal steps feel equal at any range.
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Dolly(delta float32)

	// Radius returns the current orbit radius (distance from target).
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// MinRadius returns the minimum allowed orbit radius.
	// Returns:
	//   - float32: minimum zoom distance
	MinRadius() float32

	// MaxRadius returns the maximum allowed orbit radius.
	// Returns:
	//   - float32: maximum zoom distance
	MaxRadius() float32

	// Azimuth returns the current horizontal angle around the Y axis.
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// MinElevation returns the minimum allowed elevation angle.
	// Returns:
	//   - float32: minimum elevation in radians
	MinElevation() float32

	// MaxElevation returns the maximum allowed elevation angle.
	// Returns:
	//   - float32: maximum elevation in radians
	MaxElevation() float32

	// MouseSensitivity returns the radians of orbit per pixel of mouse drag.
	// Returns:
	//   - float32: multiplier for mouse movement
	MouseSensitivity() float32

	// ZoomSpeed returns the zoom speed multiplier.
	// Returns:
	//   - float32: multiplier for zoom input
	ZoomSpeed() float32
}

// planarCameraController defines planar translation control methods.
// Panning shifts both position and target by the same offset along the camera's
// local right and up axes, preserving the orbit relationship.
type planarCameraController interface {
	// Pan queues a translation of camera and target.
	// Offsets are scaled by PanSpeed and the current radius, so a drag covers the same
	// share of the view at any zoom level.
	// Parameters:
	//   - dRight: movement along the local right axis
	//   - dUp: movement along the local up axis
	Pan(dRight, dUp float32)

	// PanSpeed returns the pan speed multiplier.
	// Returns:
	//   - float32: multiplier for pan input
	PanSpeed() float32
}
