package vulkan

import (
	"math"
	"runtime"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// Window is what the context needs from the platform layer.
type Window interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// DrawableSize is the framebuffer size in pixels, 0x0 while minimized.
	DrawableSize() (uint32, uint32)
}

type ContextConfig struct {
	AppName    string
	Validation bool
}

type frameSync struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       *VulkanFence
}

// GraphicsContext owns the instance, device, swapchain and frame pacing.
type GraphicsContext struct {
	driver Driver
	window Window
	cfg    ContextConfig

	Instance      vk.Instance
	debugCallback vk.DebugReportCallback
	Surface       vk.Surface

	Device    *VulkanDevice
	Swapchain *VulkanSwapchain
	Depth     *VulkanImage

	CommandPool vk.CommandPool
	// One per swapchain image.
	CommandBuffers []*VulkanCommandBuffer

	frames [MaxFramesInFlight]frameSync
	// Fence of the frame that last rendered into each swapchain image. Not owned.
	imagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32
	acquired     bool

	dependents *dependentGraph
	release    releaseStack
}

func NewGraphicsContext(driver Driver, window Window, cfg ContextConfig) *GraphicsContext {
	c := &GraphicsContext{
		driver:     driver,
		window:     window,
		cfg:        cfg,
		Device:     &VulkanDevice{},
		Swapchain:  &VulkanSwapchain{},
		dependents: newDependentGraph(),
	}
	c.registerDependents()
	return c
}

type initStage struct {
	name string
	run  func() error
}

// Initialize brings the context up stage by stage. A failure unwinds whatever
// was created and reports the stage through a *StageError.
func (c *GraphicsContext) Initialize() (err error) {
	defer func() {
		if err != nil {
			c.release.unwind()
		}
	}()

	stages := []initStage{
		{"instance", c.createInstance},
		{"surface", c.createSurface},
		{"physical-device", func() error { return SelectPhysicalDevice(c) }},
		{"logical-device", c.createLogicalDevice},
		{"swapchain", func() error {
			if err := c.createDependent("swapchain"); err != nil {
				return err
			}
			return c.createDependent("image-views")
		}},
		{"sync-objects", c.createSyncObjects},
		{"command-pool", c.createCommandPool},
		{"command-buffers", func() error { return c.createDependent("command-buffers") }},
		{"depth-buffer", func() error { return c.createDependent("depth-buffer") }},
	}

	for _, stage := range stages {
		if err := stage.run(); err != nil {
			core.LogError("Vulkan initialization failed at stage '%s': %s", stage.name, err)
			return &StageError{Stage: stage.name, Err: err}
		}
	}

	core.LogInfo("Vulkan context initialized successfully.")
	return nil
}

func (c *GraphicsContext) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(c.cfg.AppName),
		PEngineName:        VulkanSafeString("vkscene"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := appendUnique([]string{"VK_KHR_surface"}, c.window.RequiredInstanceExtensions()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = appendUnique(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}

	var layers []string
	if c.cfg.Validation {
		available, err := c.driver.InstanceLayers()
		if err != nil {
			return err
		}
		found := false
		for _, layer := range available {
			if layer == validationLayerName {
				found = true
				break
			}
		}
		if found {
			core.LogInfo("Validation layers enabled.")
			layers = []string{validationLayerName}
			requiredExtensions = appendUnique(requiredExtensions, vk.ExtDebugReportExtensionName)
		} else {
			core.LogWarn("Validation layer '%s' is missing, continuing without validation.", validationLayerName)
			c.cfg.Validation = false
		}
	}

	core.LogDebug("Required extensions: %v", requiredExtensions)
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	instance, err := c.driver.CreateInstance(&createInfo)
	if err != nil {
		return err
	}
	c.Instance = instance
	c.release.push("instance", func() {
		c.driver.DestroyInstance(c.Instance)
		c.Instance = nil
	})
	core.LogInfo("Vulkan Instance created.")

	if c.cfg.Validation {
		callback, err := c.driver.CreateDebugCallback(instance)
		if err != nil {
			return errors.Wrap(err, "debug callback")
		}
		c.debugCallback = callback
		c.release.push("debug-callback", func() {
			c.driver.DestroyDebugCallback(c.Instance, c.debugCallback)
			c.debugCallback = vk.NullDebugReportCallback
		})
		core.LogDebug("Vulkan debugger created.")
	}
	return nil
}

func (c *GraphicsContext) createSurface() error {
	surface, err := c.window.CreateSurface(c.Instance)
	if err != nil {
		return err
	}
	c.Surface = surface
	c.release.push("surface", func() {
		c.driver.DestroySurface(c.Instance, c.Surface)
		c.Surface = vk.NullSurface
	})
	return nil
}

func (c *GraphicsContext) createLogicalDevice() error {
	if err := DeviceCreate(c); err != nil {
		return err
	}
	c.release.push("logical-device", func() { DeviceDestroy(c) })
	return nil
}

func (c *GraphicsContext) createSyncObjects() error {
	device := c.Device.LogicalDevice
	for i := range c.frames {
		frame := &c.frames[i]
		imageAvailable, err := c.driver.CreateSemaphore(device)
		if err != nil {
			return errors.Wrap(err, "image available semaphore")
		}
		frame.imageAvailable = imageAvailable
		c.release.push("image-available-semaphore", func() {
			c.driver.DestroySemaphore(c.Device.LogicalDevice, frame.imageAvailable)
			frame.imageAvailable = vk.NullSemaphore
		})

		renderFinished, err := c.driver.CreateSemaphore(device)
		if err != nil {
			return errors.Wrap(err, "render finished semaphore")
		}
		frame.renderFinished = renderFinished
		c.release.push("render-finished-semaphore", func() {
			c.driver.DestroySemaphore(c.Device.LogicalDevice, frame.renderFinished)
			frame.renderFinished = vk.NullSemaphore
		})

		// Created signaled so the first wait on every slot returns at once.
		fence, err := NewFence(c, true)
		if err != nil {
			return err
		}
		frame.inFlight = fence
		c.release.push("in-flight-fence", func() {
			frame.inFlight.Destroy(c)
		})
	}
	return nil
}

func (c *GraphicsContext) createCommandPool() error {
	pool, err := c.driver.CreateCommandPool(c.Device.LogicalDevice, c.Device.GraphicsQueueIndex)
	if err != nil {
		return err
	}
	c.CommandPool = pool
	c.release.push("command-pool", func() {
		c.driver.DestroyCommandPool(c.Device.LogicalDevice, c.CommandPool)
		c.CommandPool = vk.NullCommandPool
	})
	core.LogInfo("Graphics command pool created.")
	return nil
}

func (c *GraphicsContext) createDependent(name string) error {
	if err := c.dependents.createOne(name); err != nil {
		return err
	}
	c.release.push(name, func() { c.dependents.destroyOne(name) })
	return nil
}

func (c *GraphicsContext) registerDependents() {
	c.dependents.register("swapchain", nil, c.createSwapchain, func() {
		c.Swapchain.Destroy(c)
	})
	c.dependents.register("image-views", []string{"swapchain"},
		func() error { return c.Swapchain.CreateViews(c) },
		func() { c.Swapchain.DestroyViews(c) },
	)
	c.dependents.register("command-buffers", []string{"swapchain"}, c.createCommandBuffers, c.freeCommandBuffers)
	c.dependents.register("depth-buffer", []string{"swapchain"}, c.createDepthBuffer, func() {
		c.Depth.Destroy(c)
		c.Depth = nil
	})
}

// RegisterDependent adds an object that is torn down and rebuilt with the
// swapchain. requires names objects that must exist before it.
func (c *GraphicsContext) RegisterDependent(name string, requires []string, create func() error, destroy func()) {
	c.dependents.register(name, requires, create, destroy)
}

// CreateDependents creates every registered dependent that does not exist yet.
func (c *GraphicsContext) CreateDependents() error {
	return c.dependents.createAll()
}

func (c *GraphicsContext) createSwapchain() error {
	width, height := c.window.DrawableSize()
	swapchain, err := SwapchainCreate(c, width, height)
	if err != nil {
		return err
	}
	c.Swapchain = swapchain
	c.imagesInFlight = make([]*VulkanFence, swapchain.ImageCount)
	return nil
}

func (c *GraphicsContext) createCommandBuffers() error {
	c.CommandBuffers = make([]*VulkanCommandBuffer, 0, c.Swapchain.ImageCount)
	for i := uint32(0); i < c.Swapchain.ImageCount; i++ {
		cb, err := NewVulkanCommandBuffer(c, c.CommandPool)
		if err != nil {
			c.freeCommandBuffers()
			return err
		}
		c.CommandBuffers = append(c.CommandBuffers, cb)
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (c *GraphicsContext) freeCommandBuffers() {
	for _, cb := range c.CommandBuffers {
		cb.Free(c, c.CommandPool)
	}
	c.CommandBuffers = nil
}

func (c *GraphicsContext) createDepthBuffer() error {
	if err := DeviceDetectDepthFormat(c); err != nil {
		return err
	}
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	depth, err := ImageCreate(
		c,
		c.Swapchain.Extent.Width,
		c.Swapchain.Extent.Height,
		c.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		aspect,
	)
	if err != nil {
		return err
	}
	if err := depth.TransitionLayout(c, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		depth.Destroy(c)
		return err
	}
	c.Depth = depth
	return nil
}

// ImageCount is the number of swapchain images.
func (c *GraphicsContext) ImageCount() uint32 {
	return c.Swapchain.ImageCount
}

// BeginFrame waits for the current slot to retire, acquires the next image and
// returns its index. Stale swapchain errors leave the slot untouched so the
// caller can rebuild and try again.
func (c *GraphicsContext) BeginFrame() (uint32, error) {
	frame := &c.frames[c.CurrentFrame]
	if err := frame.inFlight.Wait(c, math.MaxUint64); err != nil {
		return 0, err
	}

	index, err := c.driver.AcquireNextImage(c.Device.LogicalDevice, c.Swapchain.Handle, math.MaxUint64, frame.imageAvailable)
	if err != nil {
		return 0, err
	}

	// The image may still be in use by a frame from another slot.
	if previous := c.imagesInFlight[index]; previous != nil && previous != frame.inFlight {
		if err := previous.Wait(c, math.MaxUint64); err != nil {
			c.ImageIndex = index
			c.acquired = true
			c.AbandonFrame()
			return 0, err
		}
	}

	c.ImageIndex = index
	c.acquired = true
	return index, nil
}

// Submit queues the command buffer recorded for the acquired image. The slot
// fence is only reset here, so a frame abandoned before submission never
// leaves a fence that nothing will signal. A failed submission abandons the
// frame.
func (c *GraphicsContext) Submit() error {
	if !c.acquired {
		return errors.New("submit called without an acquired swapchain image")
	}
	frame := &c.frames[c.CurrentFrame]
	cb := c.CommandBuffers[c.ImageIndex]

	if err := frame.inFlight.Reset(c); err != nil {
		c.AbandonFrame()
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{frame.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.renderFinished},
	}
	if err := c.driver.QueueSubmit(c.Device.GraphicsQueue, &submitInfo, frame.inFlight.Handle); err != nil {
		c.AbandonFrame()
		return errors.Wrap(err, "queue submit")
	}
	c.imagesInFlight[c.ImageIndex] = frame.inFlight
	cb.UpdateSubmitted()
	return nil
}

// AbandonFrame gives up on the acquired image without presenting it and moves
// to the next slot. The slot's image-available semaphore is consumed by an
// empty submission that signals the slot fence. If the queue refuses that as
// well, the device is idled and both objects are recreated.
func (c *GraphicsContext) AbandonFrame() {
	if !c.acquired {
		return
	}
	frame := &c.frames[c.CurrentFrame]
	c.acquired = false
	c.CurrentFrame = (c.CurrentFrame + 1) % MaxFramesInFlight

	if err := frame.inFlight.Reset(c); err == nil {
		submitInfo := vk.SubmitInfo{
			SType:              vk.StructureTypeSubmitInfo,
			WaitSemaphoreCount: 1,
			PWaitSemaphores:    []vk.Semaphore{frame.imageAvailable},
			PWaitDstStageMask:  []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		}
		err := c.driver.QueueSubmit(c.Device.GraphicsQueue, &submitInfo, frame.inFlight.Handle)
		if err == nil {
			c.imagesInFlight[c.ImageIndex] = frame.inFlight
			return
		}
		core.LogWarn("Could not retire abandoned frame, recreating its sync objects: %s", err)
	}
	if err := c.recreateFrameSync(frame); err != nil {
		core.LogError("Recreating frame sync objects failed: %s", err)
	}
}

func (c *GraphicsContext) recreateFrameSync(frame *frameSync) error {
	device := c.Device.LogicalDevice
	if err := c.driver.DeviceWaitIdle(device); err != nil {
		return err
	}

	imageAvailable, err := c.driver.CreateSemaphore(device)
	if err != nil {
		return errors.Wrap(err, "image available semaphore")
	}
	c.driver.DestroySemaphore(device, frame.imageAvailable)
	frame.imageAvailable = imageAvailable

	fence, err := c.driver.CreateFence(device, true)
	if err != nil {
		return errors.Wrap(err, "in-flight fence")
	}
	c.driver.DestroyFence(device, frame.inFlight.Handle)
	frame.inFlight.Handle = fence
	frame.inFlight.IsSignaled = true
	return nil
}

// EndFrame presents the acquired image and moves to the next slot.
func (c *GraphicsContext) EndFrame() error {
	frame := &c.frames[c.CurrentFrame]
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.Swapchain.Handle},
		PImageIndices:      []uint32{c.ImageIndex},
	}
	err := c.driver.QueuePresent(c.Device.PresentQueue, &presentInfo)

	c.acquired = false
	c.CurrentFrame = (c.CurrentFrame + 1) % MaxFramesInFlight
	return err
}

// Rebuild tears down every swapchain dependent and creates them again against
// the current surface. Sync objects and the command pool survive.
func (c *GraphicsContext) Rebuild() error {
	if err := c.WaitIdle(); err != nil {
		return err
	}
	c.dependents.destroyAll()
	c.acquired = false

	if err := c.dependents.createAll(); err != nil {
		core.LogError("Swapchain rebuild failed: %s", err)
		return err
	}
	core.LogInfo("Swapchain rebuilt: %dx%d.", c.Swapchain.Extent.Width, c.Swapchain.Extent.Height)
	return nil
}

func (c *GraphicsContext) WaitIdle() error {
	if c.Device.LogicalDevice == nil {
		return nil
	}
	return c.driver.DeviceWaitIdle(c.Device.LogicalDevice)
}

// Shutdown destroys everything in reverse creation order. The renderer must
// have released its own resources first.
func (c *GraphicsContext) Shutdown() {
	if err := c.WaitIdle(); err != nil {
		core.LogWarn("device wait idle before shutdown: %s", err)
	}
	c.dependents.destroyAll()
	c.release.unwind()
	core.LogInfo("Vulkan context destroyed.")
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
