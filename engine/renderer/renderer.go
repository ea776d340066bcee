package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"github.com/spaghettifunk/vkscene/engine/renderer/vulkan"
)

type Config struct {
	AppName        string
	Validation     bool
	VertexShader   []byte
	FragmentShader []byte
	ClearColor     [4]float32
}

// Renderer is the engine's view of the Vulkan backend: the graphics context,
// the frame renderer drawing into it and the textures the scene samples.
type Renderer struct {
	context  *vulkan.GraphicsContext
	frames   *vulkan.FrameRenderer
	textures *vulkan.TextureRegistry

	// Set when a draw fails or the drawable size changes.
	needsRebuild bool
}

func New(driver vulkan.Driver, window vulkan.Window, camera vulkan.Camera, cfg Config) *Renderer {
	context := vulkan.NewGraphicsContext(driver, window, vulkan.ContextConfig{
		AppName:    cfg.AppName,
		Validation: cfg.Validation,
	})
	return &Renderer{
		context: context,
		frames: vulkan.NewFrameRenderer(context, camera, vulkan.RendererConfig{
			VertexShader:   cfg.VertexShader,
			FragmentShader: cfg.FragmentShader,
			ClearColor:     cfg.ClearColor,
		}),
		textures: vulkan.NewTextureRegistry(context),
	}
}

// Initialize brings up the device and the swapchain dependents and uploads
// scene.
func (r *Renderer) Initialize(scene *metadata.Scene) error {
	if err := r.context.Initialize(); err != nil {
		return err
	}
	if err := r.frames.Initialize(uint32(len(scene.Meshes))); err != nil {
		r.frames.Shutdown()
		r.context.Shutdown()
		return errors.Wrap(err, "frame renderer")
	}
	if err := r.frames.LoadScene(scene, r.textures); err != nil {
		r.Shutdown()
		return errors.Wrap(err, "loading scene")
	}
	return nil
}

// DrawFrame renders one frame, rebuilding first if a previous frame failed.
// A failed frame is dropped and only marks the swapchain; a failed rebuild
// is returned and is fatal.
func (r *Renderer) DrawFrame() error {
	if r.needsRebuild {
		if err := r.Rebuild(); err != nil {
			return errors.Wrap(err, "rebuilding swapchain")
		}
	}
	if err := r.frames.DrawFrame(); err != nil {
		core.LogWarn("Frame dropped, swapchain marked for rebuild: %s", err)
		r.needsRebuild = true
	}
	return nil
}

// MarkResized schedules a swapchain rebuild for the next frame.
func (r *Renderer) MarkResized() {
	r.needsRebuild = true
}

func (r *Renderer) Rebuild() error {
	if err := r.frames.Rebuild(); err != nil {
		return err
	}
	r.needsRebuild = false
	return nil
}

// ReloadScene swaps the uploaded scene for a freshly loaded one.
func (r *Renderer) ReloadScene(scene *metadata.Scene) error {
	if err := r.frames.ReloadScene(scene, r.textures); err != nil {
		return errors.Wrap(err, "reloading scene")
	}
	return nil
}

func (r *Renderer) Shutdown() {
	if err := r.context.WaitIdle(); err != nil {
		core.LogWarn("device wait idle before shutdown: %s", err)
	}
	r.textures.DestroyAll()
	r.frames.Shutdown()
	r.context.Shutdown()
}
