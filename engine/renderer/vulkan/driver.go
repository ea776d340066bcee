package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Driver is the slice of the Vulkan API the renderer depends on. Calls return Go
// errors instead of raw results; OUT_OF_DATE, SUBOPTIMAL and pool exhaustion come
// back wrapped around the core sentinels. NewGokiDriver forwards to the real
// loader.
type Driver interface {
	// Instance level.
	InstanceLayers() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)
	CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error)
	DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	// Physical device queries. Returned structs are already dereferenced.
	EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error)
	PhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties
	PhysicalDeviceFeatures(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures
	PhysicalDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	QueueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties
	SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	DeviceExtensions(pd vk.PhysicalDevice) ([]string, error)
	SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error)
	SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)
	FormatProperties(pd vk.PhysicalDevice, format vk.Format) vk.FormatProperties

	// Logical device.
	CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error)
	DestroyDevice(device vk.Device)
	DeviceQueue(device vk.Device, family uint32) vk.Queue
	DeviceWaitIdle(device vk.Device) error

	// Swapchain.
	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, error)
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) error

	// Images and samplers.
	CreateImage(device vk.Device, info *vk.ImageCreateInfo) (vk.Image, error)
	DestroyImage(device vk.Device, image vk.Image)
	ImageMemoryRequirements(device vk.Device, image vk.Image) vk.MemoryRequirements
	BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error
	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)
	CreateSampler(device vk.Device, info *vk.SamplerCreateInfo) (vk.Sampler, error)
	DestroySampler(device vk.Device, sampler vk.Sampler)

	// Buffers and memory.
	CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error)
	DestroyBuffer(device vk.Device, buffer vk.Buffer)
	BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements
	BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error
	AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error)
	FreeMemory(device vk.Device, memory vk.DeviceMemory)
	WriteMemory(device vk.Device, memory vk.DeviceMemory, offset vk.DeviceSize, data []byte) error
	ReadMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) ([]byte, error)

	// Synchronization.
	CreateSemaphore(device vk.Device) (vk.Semaphore, error)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)
	CreateFence(device vk.Device, signaled bool) (vk.Fence, error)
	DestroyFence(device vk.Device, fence vk.Fence)
	WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error
	ResetFence(device vk.Device, fence vk.Fence) error

	// Command pools and buffers.
	CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error
	EndCommandBuffer(cb vk.CommandBuffer) error

	// Recording.
	CmdPipelineBarrier(cb vk.CommandBuffer, src, dst vk.PipelineStageFlags, barrier vk.ImageMemoryBarrier)
	CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize)
	CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, width, height uint32)
	CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo)
	CmdEndRenderPass(cb vk.CommandBuffer)
	CmdBindPipeline(cb vk.CommandBuffer, pipeline vk.Pipeline)
	CmdBindVertexBuffer(cb vk.CommandBuffer, buffer vk.Buffer)
	CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer)
	CmdBindDescriptorSet(cb vk.CommandBuffer, layout vk.PipelineLayout, set vk.DescriptorSet)
	CmdDrawIndexed(cb vk.CommandBuffer, indexCount uint32)

	// Queues.
	QueueSubmit(queue vk.Queue, info *vk.SubmitInfo, fence vk.Fence) error
	QueueWaitIdle(queue vk.Queue) error

	// Pipeline objects.
	CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(device vk.Device, renderPass vk.RenderPass)
	CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout)
	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)
	CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)

	// Descriptors.
	CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error)
	DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool)
	AllocateDescriptorSets(device vk.Device, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error)
	UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet)
}
