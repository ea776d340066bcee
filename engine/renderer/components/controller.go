package components

import (
	"github.com/spaghettifunk/vkscene/engine/core"
)

// CameraController turns input events into camera rotation. Key presses
// rotate by a fixed step, dragging with the left button rotates by the
// distance moved and a double click restores the start pose.
type CameraController struct {
	camera *Camera
	quit   func()

	RotateStep       float32
	MouseSensitivity float32

	dragging     bool
	lastX, lastY int32
	tracking     bool
}

func NewCameraController(camera *Camera, rotateStep, mouseSensitivity float32, quit func()) *CameraController {
	return &CameraController{
		camera:           camera,
		quit:             quit,
		RotateStep:       rotateStep,
		MouseSensitivity: mouseSensitivity,
	}
}

func (cc *CameraController) Register(bus *core.EventBus) {
	bus.Register(core.EVENT_CODE_KEY_PRESSED, cc.onKey)
	bus.Register(core.EVENT_CODE_BUTTON_PRESSED, cc.onButton)
	bus.Register(core.EVENT_CODE_BUTTON_RELEASED, cc.onButton)
	bus.Register(core.EVENT_CODE_MOUSE_MOVED, cc.onMouseMoved)
	bus.Register(core.EVENT_CODE_MOUSE_DOUBLE_CLICK, cc.onDoubleClick)
}

func (cc *CameraController) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	step := cc.RotateStep
	switch ke.KeyCode {
	case core.KEY_ESCAPE, core.KEY_Q:
		cc.quit()
	case core.KEY_A:
		cc.camera.Rotate(step, 0)
	case core.KEY_D:
		cc.camera.Rotate(-step, 0)
	case core.KEY_W:
		cc.camera.Rotate(0, -step)
	case core.KEY_S:
		cc.camera.Rotate(0, step)
	default:
		return false
	}
	return true
}

func (cc *CameraController) onButton(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok || me.Button != core.BUTTON_LEFT {
		return false
	}
	cc.dragging = context.Type == core.EVENT_CODE_BUTTON_PRESSED
	cc.lastX, cc.lastY = me.PosX, me.PosY
	cc.tracking = true
	return false
}

func (cc *CameraController) onMouseMoved(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	dx, dy := me.PosX-cc.lastX, me.PosY-cc.lastY
	moved := cc.tracking
	cc.lastX, cc.lastY = me.PosX, me.PosY
	cc.tracking = true

	if !cc.dragging || !moved {
		return false
	}
	cc.camera.Rotate(-float32(dx)*cc.MouseSensitivity, -float32(dy)*cc.MouseSensitivity)
	return true
}

func (cc *CameraController) onDoubleClick(context core.EventContext) bool {
	cc.camera.Reset()
	core.LogDebug("Camera reset.")
	return true
}
