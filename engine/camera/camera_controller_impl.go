package camera

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-mocap/common"
)

// settleEpsilon is the magnitude below which queued motion is dropped.
const settleEpsilon = 1e-5

// cameraControllerImpl is the single implementation of CameraController.
// Supports both orbit and planar controls simultaneously. Orbit input adjusts
// spherical coordinates and recomputes position; planar input translates both
// position and target along local camera axes, preserving the orbit relationship.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis, 0 = +Z
	elevation float32 // Vertical angle from horizontal plane

	// Queued motion released by Update
	pendingAzimuth   float32
	pendingElevation float32
	pendingDolly     float32 // log-scale radius change
	pendingRight     float32
	pendingUp        float32

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	damping          float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new camera controller at (0, 0.5, 2) looking at the origin.
// The returned controller supports both orbit and planar controls simultaneously.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0.5, 2},
		target:   [3]float32{0, 0, 0},

		minRadius:    0.1,
		maxRadius:    100.0,
		minElevation: -(math32.Pi/2 - 0.01),
		maxElevation: math32.Pi/2 - 0.01,

		damping:          0.05,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.05,
		panSpeed:         1.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.derivePose()
	return cc
}

// --- internal helpers ---

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := math32.Cos(cc.elevation)
	sinElev := math32.Sin(cc.elevation)
	cosAzim := math32.Cos(cc.azimuth)
	sinAzim := math32.Sin(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// derivePose computes spherical coordinates from the literal position and target, the
// inverse of updatePosition. Position is left untouched so preset poses stay exact.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) derivePose() {
	dx := cc.position[0] - cc.target[0]
	dy := cc.position[1] - cc.target[1]
	dz := cc.position[2] - cc.target[2]

	r := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if r < 1e-8 {
		cc.radius = cc.minRadius
		cc.azimuth = 0
		cc.elevation = 0
		return
	}
	cc.radius = r
	cc.elevation = math32.Asin(common.Clamp(dy/r, -1, 1))
	cc.azimuth = math32.Atan2(dx, dz)
}

// clearPending discards queued motion.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clearPending() {
	cc.pendingAzimuth = 0
	cc.pendingElevation = 0
	cc.pendingDolly = 0
	cc.pendingRight = 0
	cc.pendingUp = 0
}

// settled reports whether all queued motion is below settleEpsilon.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) settled() bool {
	return math32.Abs(cc.pendingAzimuth) < settleEpsilon &&
		math32.Abs(cc.pendingElevation) < settleEpsilon &&
		math32.Abs(cc.pendingDolly) < settleEpsilon &&
		math32.Abs(cc.pendingRight) < settleEpsilon &&
		math32.Abs(cc.pendingUp) < settleEpsilon
}

// localAxes computes the camera's local right and up axes consistent with the LookAt matrix.
// If position and target coincide, all returned components are zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (rx, ry, rz, ux, uy, uz float32) {
	// backward = normalize(position - target), matching LookAt's z-axis
	bx := cc.position[0] - cc.target[0]
	by := cc.position[1] - cc.target[1]
	bz := cc.position[2] - cc.target[2]
	bLen := math32.Sqrt(bx*bx + by*by + bz*bz)
	if bLen < 1e-8 {
		return
	}
	bx /= bLen
	by /= bLen
	bz /= bLen

	// right = normalize(cross(worldUp, backward)) where worldUp = (0, 1, 0)
	rx = bz
	rz = -bx
	rLen := math32.Sqrt(rx*rx + rz*rz)
	if rLen < 1e-8 {
		return
	}
	rx /= rLen
	rz /= rLen

	// up = cross(backward, right), matching LookAt's y-axis
	ux = by*rz - bz*ry
	uy = bz*rx - bx*rz
	uz = bx*ry - by*rx
	return
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1], cc.target[2]
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [3]float32{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) SetPose(position, target [3]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
	cc.target = target
	cc.clearPending()
	cc.derivePose()
}

func (cc *cameraControllerImpl) SetView(preset Preset) {
	if !preset.Valid() {
		panic(fmt.Sprintf("camera: undefined view %v", preset))
	}
	cc.SetPose(preset.Position(), [3]float32{0, 0, 0})
}

func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.settled() {
		cc.clearPending()
		return false
	}
	if dt <= 0 {
		return false
	}

	// Fraction of queued motion released this frame. At 60 Hz this is exactly the damping
	// factor; other rates integrate to the same curve.
	f := float32(1)
	if cc.damping < 1 {
		f = 1 - math32.Pow(1-cc.damping, dt*60)
	}

	cc.azimuth += cc.pendingAzimuth * f
	cc.elevation = common.Clamp(cc.elevation+cc.pendingElevation*f, cc.minElevation, cc.maxElevation)
	cc.radius = common.Clamp(cc.radius*math32.Exp(-cc.pendingDolly*f), cc.minRadius, cc.maxRadius)

	if cc.pendingRight != 0 || cc.pendingUp != 0 {
		rx, ry, rz, ux, uy, uz := cc.localAxes()
		scale := cc.panSpeed * cc.radius * f
		right, up := cc.pendingRight*scale, cc.pendingUp*scale
		cc.target[0] += rx*right + ux*up
		cc.target[1] += ry*right + uy*up
		cc.target[2] += rz*right + uz*up
	}

	keep := 1 - f
	cc.pendingAzimuth *= keep
	cc.pendingElevation *= keep
	cc.pendingDolly *= keep
	cc.pendingRight *= keep
	cc.pendingUp *= keep

	cc.updatePosition()
	return true
}

func (cc *cameraControllerImpl) Settled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.settled()
}

func (cc *cameraControllerImpl) Damping() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) Rotate(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth += dAzimuth
	cc.pendingElevation += dElevation
}

func (cc *cameraControllerImpl) Dolly(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingDolly += delta * cc.zoomSpeed
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) MinElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minElevation
}

func (cc *cameraControllerImpl) MaxElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxElevation
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) Pan(dRight, dUp float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingRight += dRight
	cc.pendingUp += dUp
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}
