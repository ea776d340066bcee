package components

import (
	"math"
	"testing"

	"github.com/spaghettifunk/vkscene/engine/core"
)

func newController(t *testing.T) (*CameraController, *Camera, *core.EventBus, *bool) {
	t.Helper()
	camera := NewCamera(800, 600)
	bus := core.NewEventBus()
	quit := false
	cc := NewCameraController(camera, 0.05, 0.005, func() { quit = true })
	cc.Register(bus)
	return cc, camera, bus, &quit
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestKeysRotateCamera(t *testing.T) {
	tests := []struct {
		key        core.KeyCode
		horizontal float32
		vertical   float32
	}{
		{core.KEY_A, 0.05, 0},
		{core.KEY_D, -0.05, 0},
		{core.KEY_W, 0, -0.05},
		{core.KEY_S, 0, 0.05},
	}
	for _, tt := range tests {
		t.Run(string(rune(tt.key)), func(t *testing.T) {
			_, camera, bus, _ := newController(t)
			h, v := camera.HorizontalAngle, camera.VerticalAngle

			if !bus.Fire(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: tt.key}}) {
				t.Fatal("key not handled")
			}
			if !near(camera.HorizontalAngle-h, tt.horizontal) || !near(camera.VerticalAngle-v, tt.vertical) {
				t.Fatalf("rotated by (%v, %v), want (%v, %v)", camera.HorizontalAngle-h, camera.VerticalAngle-v, tt.horizontal, tt.vertical)
			}
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []core.KeyCode{core.KEY_ESCAPE, core.KEY_Q} {
		_, _, bus, quit := newController(t)
		bus.Fire(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: key}})
		if !*quit {
			t.Fatalf("key %d did not quit", key)
		}
	}
}

func TestUnboundKeyIsNotHandled(t *testing.T) {
	_, _, bus, quit := newController(t)
	if bus.Fire(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: core.KEY_Z}}) {
		t.Fatal("unbound key reported as handled")
	}
	if *quit {
		t.Fatal("unbound key quit")
	}
}

func TestDragRotatesCamera(t *testing.T) {
	_, camera, bus, _ := newController(t)
	h, v := camera.HorizontalAngle, camera.VerticalAngle

	move := func(x, y int32) {
		bus.Fire(core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseEvent{PosX: x, PosY: y}})
	}
	button := func(code core.EventCode, x, y int32) {
		bus.Fire(core.EventContext{Type: code, Data: &core.MouseEvent{Button: core.BUTTON_LEFT, PosX: x, PosY: y}})
	}

	move(100, 100)
	move(120, 90)
	if camera.HorizontalAngle != h || camera.VerticalAngle != v {
		t.Fatal("moving without a button rotated the camera")
	}

	button(core.EVENT_CODE_BUTTON_PRESSED, 120, 90)
	move(130, 100)
	if !near(camera.HorizontalAngle-h, -10*0.005) || !near(camera.VerticalAngle-v, -10*0.005) {
		t.Fatalf("drag rotated by (%v, %v)", camera.HorizontalAngle-h, camera.VerticalAngle-v)
	}

	button(core.EVENT_CODE_BUTTON_RELEASED, 130, 100)
	h, v = camera.HorizontalAngle, camera.VerticalAngle
	move(200, 200)
	if camera.HorizontalAngle != h || camera.VerticalAngle != v {
		t.Fatal("moving after release rotated the camera")
	}
}

func TestDoubleClickResetsCamera(t *testing.T) {
	_, camera, bus, _ := newController(t)
	camera.Rotate(1, 0.5)
	camera.MoveForward(3)

	bus.Fire(core.EventContext{Type: core.EVENT_CODE_MOUSE_DOUBLE_CLICK, Data: &core.MouseEvent{}})
	if camera.HorizontalAngle != math.Pi/2 || camera.VerticalAngle != 0 {
		t.Fatalf("angles = (%v, %v) after reset", camera.HorizontalAngle, camera.VerticalAngle)
	}
	if camera.Position[1] != 5 {
		t.Fatalf("position = %v after reset", camera.Position)
	}
}
