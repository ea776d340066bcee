package core

import (
	"time"
)

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3

	KEYS_MAX_KEYS KeyCode = 0xFF
)

const (
	doubleClickWindow = 500 * time.Millisecond
	maxClickTravel    = 3
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

type clickState struct {
	count      int
	lastButton Button
	lastTime   time.Time
	lastX      int32
	lastY      int32
}

// Input holds current and previous states for keyboard and mouse and turns
// raw window input into events on the bus.
type Input struct {
	bus *EventBus
	now func() time.Time

	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	clicks clickState
}

func NewInput(bus *EventBus) *Input {
	return &Input{
		bus: bus,
		now: time.Now,
	}
}

// Update copies current states to previous states. Call once at the end of a frame.
func (in *Input) Update() {
	in.KeyboardPrevious = in.KeyboardCurrent
	in.MousePrevious = in.MouseCurrent
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	return in.KeyboardCurrent.Keys[key]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	return in.KeyboardPrevious.Keys[key]
}

func (in *Input) IsButtonDown(button Button) bool {
	return in.MouseCurrent.Buttons[button]
}

func (in *Input) MousePosition() (int32, int32) {
	return in.MouseCurrent.X, in.MouseCurrent.Y
}

func (in *Input) PreviousMousePosition() (int32, int32) {
	return in.MousePrevious.X, in.MousePrevious.Y
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	// Repeats fire a press each time; releases only on change.
	if !pressed && !in.KeyboardCurrent.Keys[key] {
		return
	}
	in.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	in.bus.Post(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || in.MouseCurrent.Buttons[button] == pressed {
		return
	}
	in.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	ev := &MouseEvent{Button: button, PosX: in.MouseCurrent.X, PosY: in.MouseCurrent.Y}
	in.bus.Post(EventContext{Type: code, Data: ev})

	if click, ok := in.classifyClick(button, pressed); ok {
		in.bus.Post(EventContext{Type: click, Data: ev})
	}
}

func (in *Input) ProcessMouseMove(x, y int32) {
	if in.MouseCurrent.X == x && in.MouseCurrent.Y == y {
		return
	}
	in.MouseCurrent.X = x
	in.MouseCurrent.Y = y
	in.bus.Post(EventContext{
		Type: EVENT_CODE_MOUSE_MOVED,
		Data: &MouseEvent{PosX: x, PosY: y},
	})
}

func (in *Input) ProcessMouseWheel(zDelta int8) {
	in.bus.Post(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{Scroll: zDelta},
	})
}

// classifyClick recognizes a release shortly after a press as a click and a
// press shortly after a click as a double click, both without moving more
// than a few pixels.
func (in *Input) classifyClick(button Button, pressed bool) (EventCode, bool) {
	now := in.now()
	x, y := in.MouseCurrent.X, in.MouseCurrent.Y
	c := &in.clicks

	var code EventCode
	found := false
	if now.Sub(c.lastTime) < doubleClickWindow &&
		abs32(c.lastX-x) <= maxClickTravel &&
		abs32(c.lastY-y) <= maxClickTravel &&
		c.lastButton == button && c.count < 2 {
		if !pressed && c.count == 0 {
			c.count++
			code, found = EVENT_CODE_MOUSE_CLICK, true
		} else if pressed && c.count == 1 {
			c.count++
			code, found = EVENT_CODE_MOUSE_DOUBLE_CLICK, true
		}
	} else {
		c.count = 0
	}

	c.lastButton = button
	c.lastTime = now
	c.lastX = x
	c.lastY = y
	return code, found
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
