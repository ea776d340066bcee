package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	/** @brief Vertical field of view, in degrees. */
	CameraFOVDegrees float32 = 50
	CameraNear       float32 = 0.1
	CameraFar        float32 = 100
)

/**
 * @brief An orbit-free first person camera described by a position and two
 * angles. The view and projection are rebuilt by Update.
 */
type Camera struct {
	/** @brief The position of this camera. */
	Position mgl32.Vec3
	/** @brief Rotation around the up axis, in radians. */
	HorizontalAngle float32
	/** @brief Rotation above the horizon, in radians. */
	VerticalAngle float32

	FOVDegrees float32
	Near       float32
	Far        float32

	direction mgl32.Vec3
	right     mgl32.Vec3
	up        mgl32.Vec3

	originalWidth  uint32
	originalHeight uint32

	viewMatrix mgl32.Mat4
	projMatrix mgl32.Mat4
}

/**
 * @brief Creates a camera for a window of the given size. Later aspect ratios
 * are expressed relative to this size.
 */
func NewCamera(width, height uint32) *Camera {
	c := &Camera{
		originalWidth:  width,
		originalHeight: height,
		FOVDegrees:     CameraFOVDegrees,
		Near:           CameraNear,
		Far:            CameraFar,
	}
	c.Reset()
	c.Update(width, height)
	return c
}

// Reset moves the camera back to its start pose.
func (c *Camera) Reset() {
	c.Position = mgl32.Vec3{0, 5, 0}
	c.HorizontalAngle = math.Pi / 2
	c.VerticalAngle = 0
	c.Rotate(0, 0)
}

// Rotate adds to both angles and recomputes the basis vectors. The matrices
// follow on the next Update.
func (c *Camera) Rotate(horizontal, vertical float32) {
	c.HorizontalAngle += horizontal
	c.VerticalAngle += vertical

	h := float64(c.HorizontalAngle)
	v := float64(c.VerticalAngle)
	c.direction = mgl32.Vec3{
		float32(math.Cos(v) * math.Sin(h)),
		float32(math.Sin(v)),
		float32(math.Cos(v) * math.Cos(h)),
	}
	c.right = mgl32.Vec3{
		float32(math.Sin(h - math.Pi/2)),
		0,
		float32(math.Cos(h - math.Pi/2)),
	}
	c.up = c.right.Cross(c.direction)
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.direction.Mul(amount))
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.right.Mul(amount))
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

/**
 * @brief Rebuilds the view and projection for a drawable of width x height.
 * The projection maps depth to [0, 1] and flips Y for Vulkan's clip space.
 */
func (c *Camera) Update(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	ratio := (float32(width) * float32(c.originalHeight)) / (float32(height) * float32(c.originalWidth))
	c.projMatrix = perspectiveZeroToOne(mgl32.DegToRad(c.FOVDegrees), ratio, c.Near, c.Far)
	c.projMatrix[5] *= -1

	c.viewMatrix = mgl32.LookAtV(c.Position, c.Position.Add(c.direction), c.up)
}

func (c *Camera) Direction() mgl32.Vec3 {
	return c.direction
}

func (c *Camera) Up() mgl32.Vec3 {
	return c.up
}

func (c *Camera) View() mgl32.Mat4 {
	return c.viewMatrix
}

func (c *Camera) Projection() mgl32.Mat4 {
	return c.projMatrix
}

// perspectiveZeroToOne is a right handed perspective with depth in [0, 1].
func perspectiveZeroToOne(fovy, aspect, near, far float32) mgl32.Mat4 {
	f := float32(1 / math.Tan(float64(fovy)/2))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far / (near - far), -1,
		0, 0, -(far * near) / (far - near), 0,
	}
}
