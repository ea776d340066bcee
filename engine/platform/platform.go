package platform

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the GLFW window and feeds its input into core.Input.
type Platform struct {
	Window *glfw.Window
	input  *core.Input
}

func New(input *core.Input) *Platform {
	return &Platform{
		input: input,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create window")
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	core.LogInfo("Window '%s' created (%dx%d).", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages polls the window system; callbacks run inside.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func (p *Platform) RequestClose() {
	p.Window.SetShouldClose(true)
}

// ProcAddr is the loader entry point used to bind the Vulkan functions.
func (p *Platform) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) RequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "vkCreateWindowSurface")
	}
	return vk.SurfaceFromPointer(surface), nil
}

func (p *Platform) DrawableSize() (uint32, uint32) {
	width, height := p.Window.GetFramebufferSize()
	if width < 0 || height < 0 {
		return 0, 0
	}
	return uint32(width), uint32(height)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok {
		return
	}
	switch action {
	case glfw.Press, glfw.Repeat:
		p.input.ProcessKey(code, true)
	case glfw.Release:
		p.input.ProcessKey(code, false)
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	p.input.ProcessButton(b, action == glfw.Press)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(int32(xpos), int32(ypos))
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	switch {
	case yoff > 0:
		p.input.ProcessMouseWheel(1)
	case yoff < 0:
		p.input.ProcessMouseWheel(-1)
	}
}

var keyMap = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace:    core.KEY_BACKSPACE,
	glfw.KeyTab:          core.KEY_TAB,
	glfw.KeyEnter:        core.KEY_ENTER,
	glfw.KeyEscape:       core.KEY_ESCAPE,
	glfw.KeySpace:        core.KEY_SPACE,
	glfw.KeyLeft:         core.KEY_LEFT,
	glfw.KeyUp:           core.KEY_UP,
	glfw.KeyRight:        core.KEY_RIGHT,
	glfw.KeyDown:         core.KEY_DOWN,
	glfw.KeyF1:           core.KEY_F1,
	glfw.KeyF2:           core.KEY_F2,
	glfw.KeyF3:           core.KEY_F3,
	glfw.KeyF4:           core.KEY_F4,
	glfw.KeyLeftShift:    core.KEY_LSHIFT,
	glfw.KeyRightShift:   core.KEY_RSHIFT,
	glfw.KeyLeftControl:  core.KEY_LCONTROL,
	glfw.KeyRightControl: core.KEY_RCONTROL,
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	// GLFW letter keys share their ASCII values with ours.
	if key >= glfw.KeyA && key <= glfw.KeyZ {
		return core.KeyCode(key), true
	}
	code, ok := keyMap[key]
	return code, ok
}
