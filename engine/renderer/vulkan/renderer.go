package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// Camera supplies the view and projection for the transform uniform.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

type RendererConfig struct {
	VertexShader   []byte
	FragmentShader []byte
	ClearColor     [4]float32
}

// FrameRenderer owns the render pass, the pipeline and the per-image
// framebuffers, uniforms and command recordings.
type FrameRenderer struct {
	context *GraphicsContext
	camera  Camera
	cfg     RendererConfig

	Renderpass   *VulkanRenderpass
	Pipeline     *VulkanPipeline
	Framebuffers []*VulkanFramebuffer

	SetLayout      vk.DescriptorSetLayout
	DescriptorPool vk.DescriptorPool
	Uniforms       []*VulkanBuffer

	renderables []*Renderable
	modelCount  uint32
	// Swapchain image count the uniforms and descriptor sets are sized for.
	imageCount uint32
}

func NewFrameRenderer(context *GraphicsContext, camera Camera, cfg RendererConfig) *FrameRenderer {
	r := &FrameRenderer{
		context: context,
		camera:  camera,
		cfg:     cfg,
	}
	context.RegisterDependent("render-pass", []string{"swapchain", "depth-buffer"}, r.createRenderpass, func() {
		r.Renderpass.Destroy(context)
		r.Renderpass = nil
	})
	context.RegisterDependent("pipeline", []string{"render-pass"}, r.createPipeline, func() {
		r.Pipeline.Destroy(context)
		r.Pipeline = nil
	})
	context.RegisterDependent("framebuffers", []string{"render-pass", "image-views", "depth-buffer"}, r.createFramebuffers, r.destroyFramebuffers)
	// Per-image resources outlive a rebuild and are only reallocated when the
	// image count changes.
	context.RegisterDependent("image-resources", []string{"swapchain"}, r.createImageResources, func() {})
	context.RegisterDependent("command-recording", []string{"command-buffers", "framebuffers", "pipeline", "image-resources"}, r.recordCommandBuffers, func() {
		for _, cb := range context.CommandBuffers {
			cb.Reset()
		}
	})
	return r
}

// Initialize creates the resolution independent objects sized for modelCount
// drawables, then every swapchain dependent the renderer registered.
func (r *FrameRenderer) Initialize(modelCount uint32) error {
	layout, err := DescriptorSetLayoutCreate(r.context)
	if err != nil {
		return err
	}
	r.SetLayout = layout
	r.modelCount = modelCount

	if err := r.context.CreateDependents(); err != nil {
		return err
	}
	core.LogInfo("Frame renderer initialized.")
	return nil
}

// CreateDescriptorPool replaces the descriptor pool with one sized for
// modelCount drawables. Sets allocated from the old pool become invalid.
func (r *FrameRenderer) CreateDescriptorPool(modelCount uint32) error {
	r.destroyDescriptorPool()
	pool, err := DescriptorPoolCreate(r.context, modelCount)
	if err != nil {
		return err
	}
	r.DescriptorPool = pool
	r.modelCount = modelCount
	return nil
}

// createImageResources sizes the uniform buffers, the descriptor pool and
// every renderable's descriptor sets for the current swapchain image count.
// Nothing is touched while the count is unchanged.
func (r *FrameRenderer) createImageResources() error {
	count := r.context.ImageCount()
	if count == r.imageCount {
		return nil
	}
	if r.imageCount != 0 {
		core.LogInfo("Swapchain image count changed from %d to %d, reallocating per-image resources.", r.imageCount, count)
	}
	r.destroyUniforms()
	r.imageCount = 0

	uniforms, err := createUniformBuffers(r.context, count)
	if err != nil {
		return err
	}
	r.Uniforms = uniforms

	if err := r.CreateDescriptorPool(r.modelCount); err != nil {
		return err
	}
	for _, renderable := range r.renderables {
		if err := r.bindRenderable(renderable); err != nil {
			return errors.Wrapf(err, "mesh %q", renderable.Mesh.Name)
		}
	}
	r.imageCount = count
	return nil
}

func (r *FrameRenderer) destroyUniforms() {
	for _, uniform := range r.Uniforms {
		uniform.Destroy(r.context)
	}
	r.Uniforms = nil
}

func (r *FrameRenderer) destroyDescriptorPool() {
	if r.DescriptorPool != nil {
		r.context.driver.DestroyDescriptorPool(r.context.Device.LogicalDevice, r.DescriptorPool)
		r.DescriptorPool = nil
	}
}

func (r *FrameRenderer) createRenderpass() error {
	rp, err := RenderpassCreate(r.context, r.cfg.ClearColor, 1.0, 0)
	if err != nil {
		return err
	}
	r.Renderpass = rp
	return nil
}

func (r *FrameRenderer) createPipeline() error {
	vert, err := NewShaderStage(r.context, r.cfg.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return errors.Wrap(err, "vertex shader")
	}
	defer vert.Destroy(r.context)

	frag, err := NewShaderStage(r.context, r.cfg.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return errors.Wrap(err, "fragment shader")
	}
	defer frag.Destroy(r.context)

	extent := r.context.Swapchain.Extent
	pipeline, err := NewGraphicsPipeline(r.context, &VulkanPipelineConfig{
		Renderpass:           r.Renderpass,
		Stride:               metadata.VertexStride,
		Attributes:           vertexAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{r.SetLayout},
		Stages:               []vk.PipelineShaderStageCreateInfo{vert.ShaderStageCreateInfo, frag.ShaderStageCreateInfo},
		Viewport: vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		CullMode:   vk.CullModeFlags(vk.CullModeBackBit),
		DepthTest:  true,
		DepthWrite: true,
	})
	if err != nil {
		return err
	}
	r.Pipeline = pipeline
	return nil
}

func (r *FrameRenderer) createFramebuffers() error {
	extent := r.context.Swapchain.Extent
	r.Framebuffers = make([]*VulkanFramebuffer, 0, len(r.context.Swapchain.Views))
	for _, view := range r.context.Swapchain.Views {
		fb, err := FramebufferCreate(r.context, r.Renderpass, extent.Width, extent.Height, []vk.ImageView{view, r.context.Depth.View})
		if err != nil {
			r.destroyFramebuffers()
			return err
		}
		r.Framebuffers = append(r.Framebuffers, fb)
	}
	return nil
}

func (r *FrameRenderer) destroyFramebuffers() {
	for _, fb := range r.Framebuffers {
		fb.Destroy(r.context)
	}
	r.Framebuffers = nil
}

// BuildCommandBuffers re-records every image's command buffer with the
// current renderables. The device is idled first so no recording is pending.
func (r *FrameRenderer) BuildCommandBuffers() error {
	if err := r.context.WaitIdle(); err != nil {
		return err
	}
	return r.recordCommandBuffers()
}

func (r *FrameRenderer) recordCommandBuffers() error {
	driver := r.context.driver
	for i, cb := range r.context.CommandBuffers {
		if err := cb.Begin(r.context, false, false, true); err != nil {
			return err
		}
		r.Renderpass.Begin(r.context, cb, r.Framebuffers[i].Handle)
		r.Pipeline.Bind(r.context, cb)
		for _, renderable := range r.renderables {
			driver.CmdBindVertexBuffer(cb.Handle, renderable.VertexBuffer.Handle)
			driver.CmdBindIndexBuffer(cb.Handle, renderable.IndexBuffer.Handle)
			driver.CmdBindDescriptorSet(cb.Handle, r.Pipeline.PipelineLayout, renderable.DescriptorSets[i])
			driver.CmdDrawIndexed(cb.Handle, renderable.IndexCount)
		}
		r.Renderpass.End(r.context, cb)
		if err := cb.End(r.context); err != nil {
			return err
		}
	}
	return nil
}

// DrawFrame renders one frame. A stale swapchain is rebuilt in place and the
// frame is dropped.
func (r *FrameRenderer) DrawFrame() error {
	imageIndex, err := r.context.BeginFrame()
	if err != nil {
		if core.IsSwapchainStale(err) {
			return r.Rebuild()
		}
		return err
	}
	if err := r.UpdateUniform(imageIndex); err != nil {
		r.context.AbandonFrame()
		return err
	}
	if err := r.context.Submit(); err != nil {
		return err
	}
	if err := r.context.EndFrame(); err != nil {
		if core.IsSwapchainStale(err) {
			return r.Rebuild()
		}
		return err
	}
	return nil
}

// Rebuild recreates the swapchain and everything that depends on it.
func (r *FrameRenderer) Rebuild() error {
	return r.context.Rebuild()
}

func (r *FrameRenderer) Renderables() []*Renderable {
	return r.renderables
}

// DestroyRenderables releases every renderable. Their descriptor sets stay
// allocated until the pool is replaced.
func (r *FrameRenderer) DestroyRenderables() {
	for _, renderable := range r.renderables {
		renderable.Destroy(r.context)
	}
	r.renderables = nil
}

// Shutdown releases the renderer's own objects. The swapchain dependents go
// with the context.
func (r *FrameRenderer) Shutdown() {
	if err := r.context.WaitIdle(); err != nil {
		core.LogWarn("device wait idle before renderer shutdown: %s", err)
	}
	r.DestroyRenderables()
	r.destroyUniforms()
	r.imageCount = 0
	r.destroyDescriptorPool()
	if r.SetLayout != nil {
		r.context.driver.DestroyDescriptorSetLayout(r.context.Device.LogicalDevice, r.SetLayout)
		r.SetLayout = nil
	}
}
