package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/assets"
	"github.com/spaghettifunk/vkscene/engine/config"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/platform"
	"github.com/spaghettifunk/vkscene/engine/renderer"
	"github.com/spaghettifunk/vkscene/engine/renderer/components"
	"github.com/spaghettifunk/vkscene/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

// Engine owns every subsystem and drives the frame loop on the calling
// goroutine, which must be the main OS thread.
type Engine struct {
	cfg          *config.Config
	currentStage Stage
	running      atomic.Bool
	isSuspended  bool

	bus          *core.EventBus
	input        *core.Input
	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	camera       *components.Camera
	controller   *components.CameraController

	width    uint32
	height   uint32
	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
}

func New(cfg *config.Config) *Engine {
	bus := core.NewEventBus()
	input := core.NewInput(bus)
	return &Engine{
		cfg:          cfg,
		currentStage: EngineStageUninitialized,
		bus:          bus,
		input:        input,
		platform:     platform.New(input),
		assetManager: assets.NewAssetManager(cfg.Assets.Dir),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}
}

func (e *Engine) Initialize(ctx context.Context) error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(core.ParseLogLevel(e.cfg.Log.Level))

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)
	e.bus.Register(core.EVENT_CODE_RESIZED, e.onResized)
	e.bus.Register(core.EVENT_CODE_ASSETS_CHANGED, e.onAssetsChanged)

	w := e.cfg.Window
	if err := e.platform.Startup(w.Title, w.X, w.Y, w.Width, w.Height); err != nil {
		return err
	}
	e.width, e.height = e.platform.DrawableSize()

	if err := e.assetManager.Initialize(e.cfg.Assets.DefaultTexture, e.cfg.Assets.Watch); err != nil {
		return err
	}
	vert, err := e.assetManager.LoadShader(e.cfg.Renderer.VertexShader)
	if err != nil {
		return err
	}
	frag, err := e.assetManager.LoadShader(e.cfg.Renderer.FragmentShader)
	if err != nil {
		return err
	}
	scene, err := e.assetManager.LoadScene(ctx)
	if err != nil {
		return err
	}

	e.camera = components.NewCamera(e.width, e.height)
	e.camera.FOVDegrees = e.cfg.Camera.FOVDegrees
	e.camera.Near = e.cfg.Camera.Near
	e.camera.Far = e.cfg.Camera.Far
	e.camera.Update(e.width, e.height)
	e.controller = components.NewCameraController(e.camera, e.cfg.Camera.RotateStep, e.cfg.Camera.MouseSensitivity, e.Stop)
	e.controller.Register(e.bus)

	driver, err := vulkan.NewGokiDriver(e.platform.ProcAddr())
	if err != nil {
		return err
	}
	e.renderer = renderer.New(driver, e.platform, e.camera, renderer.Config{
		AppName:        w.Title,
		Validation:     e.cfg.Renderer.Validation,
		VertexShader:   vert,
		FragmentShader: frag,
		ClearColor:     e.cfg.Renderer.ClearColor,
	})
	if err := e.renderer.Initialize(scene); err != nil {
		e.renderer = nil
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized.")
	return nil
}

// Run drives the frame loop until the window closes, Stop is called or a
// frame fails fatally.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.running.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	sleep := time.Duration(e.cfg.Renderer.FrameSleepMS) * time.Millisecond

	for e.running.Load() {
		e.platform.PumpMessages()
		e.bus.Dispatch()
		if e.platform.ShouldClose() {
			e.Stop()
			break
		}
		e.pollAssetChanges()

		e.checkDrawableSize()
		if e.isSuspended {
			time.Sleep(sleep)
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		e.camera.Update(e.width, e.height)
		if err := e.renderer.DrawFrame(); err != nil {
			core.LogError("Draw failed, shutting down: %s", err)
			e.running.Store(false)
			return err
		}

		if e.metrics.Update(delta) {
			core.LogDebug("FPS: %5.1f (%4.1fms)", e.metrics.FPS(), e.metrics.FrameTime())
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded.
		e.input.Update()
		time.Sleep(sleep)
	}
	return nil
}

// Stop ends the frame loop after the current iteration. Safe to call from
// any goroutine.
func (e *Engine) Stop() {
	if e.running.Swap(false) {
		core.LogInfo("Stop requested, shutting down.")
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if e.renderer != nil {
		e.renderer.Shutdown()
		e.renderer = nil
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	e.bus.Shutdown()
	if err := e.platform.Shutdown(); err != nil {
		return err
	}

	e.currentStage = EngineStageShutdown
	core.LogInfo("Engine shut down.")
	return nil
}

// checkDrawableSize polls the framebuffer size. A change marks the swapchain
// for rebuild; a zero size suspends rendering until the window is restored.
func (e *Engine) checkDrawableSize() {
	width, height := e.platform.DrawableSize()
	if width == e.width && height == e.height {
		return
	}
	e.bus.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
	})
}

// pollAssetChanges forwards a pending asset change onto the bus, on the
// render thread.
func (e *Engine) pollAssetChanges() {
	select {
	case path := <-e.assetManager.Changes():
		e.bus.Fire(core.EventContext{
			Type: core.EVENT_CODE_ASSETS_CHANGED,
			Data: &core.AssetEvent{Path: path},
		})
	default:
	}
}

func (e *Engine) onQuit(context core.EventContext) bool {
	core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.Stop()
	return true
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	e.width, e.height = se.WindowWidth, se.WindowHeight
	core.LogDebug("Window resize: %d, %d", e.width, e.height)

	// Handle minimization
	if e.width == 0 || e.height == 0 {
		if !e.isSuspended {
			core.LogInfo("Window minimized, suspending rendering.")
		}
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming rendering.")
		e.isSuspended = false
	}
	e.renderer.MarkResized()
	return true
}

func (e *Engine) onAssetsChanged(ev core.EventContext) bool {
	if ae, ok := ev.Data.(*core.AssetEvent); ok {
		core.LogInfo("Asset '%s' changed, reloading scene.", ae.Path)
	}
	scene, err := e.assetManager.LoadScene(context.Background())
	if err != nil {
		core.LogError("Scene reload failed, keeping the current scene: %s", err)
		return true
	}
	if err := e.renderer.ReloadScene(scene); err != nil {
		core.LogError("Scene upload failed: %s", err)
	}
	return true
}
