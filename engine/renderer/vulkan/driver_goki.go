package vulkan

import (
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

type gokiDriver struct{}

// NewGokiDriver loads the Vulkan entry points through the given
// vkGetInstanceProcAddr and returns a Driver backed by them.
func NewGokiDriver(procAddr unsafe.Pointer) (Driver, error) {
	if procAddr == nil {
		return nil, errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize vk")
	}
	return &gokiDriver{}, nil
}

func (gokiDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := checkResult("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := checkResult("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range layers {
		layers[i].Deref()
		names = append(names, VulkanGoString(layers[i].LayerName[:]))
	}
	return names, nil
}

func (gokiDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if err := checkResult("vkCreateInstance", vk.CreateInstance(info, nil, &instance)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance")
	}
	return instance, nil
}

func (gokiDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (gokiDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error) {
	info := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}
	var callback vk.DebugReportCallback
	if err := checkResult("vkCreateDebugReportCallback", vk.CreateDebugReportCallback(instance, &info, nil, &callback)); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return callback, nil
}

func (gokiDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

func (gokiDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (gokiDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := checkResult("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := checkResult("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, err
	}
	return devices, nil
}

func (gokiDriver) PhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	properties.Limits.Deref()
	return properties
}

func (gokiDriver) PhysicalDeviceFeatures(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(pd, &features)
	features.Deref()
	return features
}

func (gokiDriver) PhysicalDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
	memory.Deref()
	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		memory.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
	}
	return memory
}

func (gokiDriver) QueueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i := range families {
		families[i].Deref()
	}
	return families
}

func (gokiDriver) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := checkResult("vkGetPhysicalDeviceSurfaceSupportKHR", vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &supported)); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func (gokiDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := checkResult("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, err
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := checkResult("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, extensions)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range extensions {
		extensions[i].Deref()
		names = append(names, VulkanGoString(extensions[i].ExtensionName[:]))
	}
	return names, nil
}

func (gokiDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := checkResult("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps)); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (gokiDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := checkResult("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if count == 0 {
		return formats, nil
	}
	if err := checkResult("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, formats)); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

func (gokiDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := checkResult("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if count == 0 {
		return modes, nil
	}
	if err := checkResult("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes, nil
}

func (gokiDriver) FormatProperties(pd vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(pd, format, &properties)
	properties.Deref()
	return properties
}

func (gokiDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	var device vk.Device
	if err := checkResult("vkCreateDevice", vk.CreateDevice(pd, info, nil, &device)); err != nil {
		return nil, err
	}
	return device, nil
}

func (gokiDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (gokiDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return queue
}

func (gokiDriver) DeviceWaitIdle(device vk.Device) error {
	return checkResult("vkDeviceWaitIdle", vk.DeviceWaitIdle(device))
}

func (gokiDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := checkResult("vkCreateSwapchainKHR", vk.CreateSwapchain(device, info, nil, &swapchain)); err != nil {
		return vk.NullSwapchain, err
	}
	return swapchain, nil
}

func (gokiDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (gokiDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if err := checkResult("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := checkResult("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images, nil
}

// AcquireNextImage treats SUBOPTIMAL as success: the image is usable and the
// following present reports the condition.
func (gokiDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, error) {
	var index uint32
	result := vk.AcquireNextImage(device, swapchain, timeout, semaphore, vk.NullFence, &index)
	if result == vk.Suboptimal {
		return index, nil
	}
	if err := checkResult("vkAcquireNextImageKHR", result); err != nil {
		return 0, err
	}
	return index, nil
}

func (gokiDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) error {
	return checkResult("vkQueuePresentKHR", vk.QueuePresent(queue, info))
}

func (gokiDriver) CreateImage(device vk.Device, info *vk.ImageCreateInfo) (vk.Image, error) {
	var image vk.Image
	if err := checkResult("vkCreateImage", vk.CreateImage(device, info, nil, &image)); err != nil {
		return vk.NullImage, err
	}
	return image, nil
}

func (gokiDriver) DestroyImage(device vk.Device, image vk.Image) {
	vk.DestroyImage(device, image, nil)
}

func (gokiDriver) ImageMemoryRequirements(device vk.Device, image vk.Image) vk.MemoryRequirements {
	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &requirements)
	requirements.Deref()
	return requirements
}

func (gokiDriver) BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error {
	return checkResult("vkBindImageMemory", vk.BindImageMemory(device, image, memory, 0))
}

func (gokiDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := checkResult("vkCreateImageView", vk.CreateImageView(device, info, nil, &view)); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func (gokiDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (gokiDriver) CreateSampler(device vk.Device, info *vk.SamplerCreateInfo) (vk.Sampler, error) {
	var sampler vk.Sampler
	if err := checkResult("vkCreateSampler", vk.CreateSampler(device, info, nil, &sampler)); err != nil {
		return vk.NullSampler, err
	}
	return sampler, nil
}

func (gokiDriver) DestroySampler(device vk.Device, sampler vk.Sampler) {
	vk.DestroySampler(device, sampler, nil)
}

func (gokiDriver) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buffer vk.Buffer
	if err := checkResult("vkCreateBuffer", vk.CreateBuffer(device, info, nil, &buffer)); err != nil {
		return vk.NullBuffer, err
	}
	return buffer, nil
}

func (gokiDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(device, buffer, nil)
}

func (gokiDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &requirements)
	requirements.Deref()
	return requirements
}

func (gokiDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	return checkResult("vkBindBufferMemory", vk.BindBufferMemory(device, buffer, memory, 0))
}

func (gokiDriver) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	var memory vk.DeviceMemory
	if err := checkResult("vkAllocateMemory", vk.AllocateMemory(device, info, nil, &memory)); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}

func (gokiDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(device, memory, nil)
}

func (gokiDriver) WriteMemory(device vk.Device, memory vk.DeviceMemory, offset vk.DeviceSize, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var pData unsafe.Pointer
	if err := checkResult("vkMapMemory", vk.MapMemory(device, memory, offset, vk.DeviceSize(len(data)), 0, &pData)); err != nil {
		return err
	}
	vk.Memcopy(pData, data)
	vk.UnmapMemory(device, memory)
	return nil
}

func (gokiDriver) ReadMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) ([]byte, error) {
	var pData unsafe.Pointer
	if err := checkResult("vkMapMemory", vk.MapMemory(device, memory, offset, size, 0, &pData)); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(pData), int(size)))
	vk.UnmapMemory(device, memory)
	return out, nil
}

func (gokiDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if err := checkResult("vkCreateSemaphore", vk.CreateSemaphore(device, &info, nil, &semaphore)); err != nil {
		return vk.NullSemaphore, err
	}
	return semaphore, nil
}

func (gokiDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (gokiDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := checkResult("vkCreateFence", vk.CreateFence(device, &info, nil, &fence)); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (gokiDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (gokiDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	return checkResult("vkWaitForFences", vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, timeout))
}

func (gokiDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	return checkResult("vkResetFences", vk.ResetFences(device, 1, []vk.Fence{fence}))
}

func (gokiDriver) CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := checkResult("vkCreateCommandPool", vk.CreateCommandPool(device, &info, nil, &pool)); err != nil {
		return vk.NullCommandPool, err
	}
	return pool, nil
}

func (gokiDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (gokiDriver) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	if err := checkResult("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(device, &info, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (gokiDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

func (gokiDriver) BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}
	return checkResult("vkBeginCommandBuffer", vk.BeginCommandBuffer(cb, &info))
}

func (gokiDriver) EndCommandBuffer(cb vk.CommandBuffer) error {
	return checkResult("vkEndCommandBuffer", vk.EndCommandBuffer(cb))
}

func (gokiDriver) CmdPipelineBarrier(cb vk.CommandBuffer, src, dst vk.PipelineStageFlags, barrier vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(cb, src, dst, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (gokiDriver) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize) {
	vk.CmdCopyBuffer(cb, src, dst, 1, []vk.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
}

func (gokiDriver) CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, width, height uint32) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cb, src, dst, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

func (gokiDriver) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cb, info, vk.SubpassContentsInline)
}

func (gokiDriver) CmdEndRenderPass(cb vk.CommandBuffer) {
	vk.CmdEndRenderPass(cb)
}

func (gokiDriver) CmdBindPipeline(cb vk.CommandBuffer, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, pipeline)
}

func (gokiDriver) CmdBindVertexBuffer(cb vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
}

func (gokiDriver) CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindIndexBuffer(cb, buffer, 0, vk.IndexTypeUint32)
}

func (gokiDriver) CmdBindDescriptorSet(cb vk.CommandBuffer, layout vk.PipelineLayout, set vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
}

func (gokiDriver) CmdDrawIndexed(cb vk.CommandBuffer, indexCount uint32) {
	vk.CmdDrawIndexed(cb, indexCount, 1, 0, 0, 0)
}

func (gokiDriver) QueueSubmit(queue vk.Queue, info *vk.SubmitInfo, fence vk.Fence) error {
	return checkResult("vkQueueSubmit", vk.QueueSubmit(queue, 1, []vk.SubmitInfo{*info}, fence))
}

func (gokiDriver) QueueWaitIdle(queue vk.Queue) error {
	return checkResult("vkQueueWaitIdle", vk.QueueWaitIdle(queue))
}

func (gokiDriver) CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.NullShaderModule, errors.Newf("invalid SPIR-V blob of %d bytes", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}
	var module vk.ShaderModule
	if err := checkResult("vkCreateShaderModule", vk.CreateShaderModule(device, &info, nil, &module)); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

func (gokiDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (gokiDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if err := checkResult("vkCreateRenderPass", vk.CreateRenderPass(device, info, nil, &renderPass)); err != nil {
		return vk.NullRenderPass, err
	}
	return renderPass, nil
}

func (gokiDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (gokiDriver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	if err := checkResult("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(device, info, nil, &layout)); err != nil {
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func (gokiDriver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(device, layout, nil)
}

func (gokiDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := checkResult("vkCreatePipelineLayout", vk.CreatePipelineLayout(device, info, nil, &layout)); err != nil {
		return vk.NullPipelineLayout, err
	}
	return layout, nil
}

func (gokiDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (gokiDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	result := vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	if err := checkResult("vkCreateGraphicsPipelines", result); err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}

func (gokiDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (gokiDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	if err := checkResult("vkCreateFramebuffer", vk.CreateFramebuffer(device, info, nil, &framebuffer)); err != nil {
		return vk.NullFramebuffer, err
	}
	return framebuffer, nil
}

func (gokiDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (gokiDriver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error) {
	var pool vk.DescriptorPool
	if err := checkResult("vkCreateDescriptorPool", vk.CreateDescriptorPool(device, info, nil, &pool)); err != nil {
		return vk.NullDescriptorPool, err
	}
	return pool, nil
}

func (gokiDriver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	vk.DestroyDescriptorPool(device, pool, nil)
}

func (gokiDriver) AllocateDescriptorSets(device vk.Device, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	if err := checkResult("vkAllocateDescriptorSets", vk.AllocateDescriptorSets(device, &info, &sets[0])); err != nil {
		return nil, err
	}
	return sets, nil
}

func (gokiDriver) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
