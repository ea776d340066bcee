package vulkan

import (
	"runtime"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// SelectPhysicalDevice picks the first device that satisfies the requirements.
// There is no scoring: enumeration order decides.
func SelectPhysicalDevice(context *GraphicsContext) error {
	physicalDevices, err := context.driver.EnumeratePhysicalDevices(context.Instance)
	if err != nil {
		return err
	}
	if len(physicalDevices) == 0 {
		return errors.Wrap(core.ErrNoSuitableDevice, "no devices which support Vulkan were found")
	}

	requirements := VulkanPhysicalDeviceRequirements{
		Graphics:             true,
		Present:              true,
		SamplerAnisotropy:    true,
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}

	for _, pd := range physicalDevices {
		properties := context.driver.PhysicalDeviceProperties(pd)
		features := context.driver.PhysicalDeviceFeatures(pd)

		queueInfo, support, ok := PhysicalDeviceMeetsRequirements(context, pd, &properties, &features, &requirements)
		if !ok {
			continue
		}

		name := VulkanGoString(properties.DeviceName[:])
		core.LogInfo("Selected device: '%s'.", name)
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		default:
			core.LogInfo("GPU type is Unknown.")
		}
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version(properties.ApiVersion).Major(),
			vk.Version(properties.ApiVersion).Minor(),
			vk.Version(properties.ApiVersion).Patch(),
		)

		memory := context.driver.PhysicalDeviceMemoryProperties(pd)
		for j := uint32(0); j < memory.MemoryHeapCount; j++ {
			memorySizeGib := float64(memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
			if vk.MemoryHeapFlagBits(memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
				core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
			} else {
				core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
			}
		}

		context.Device.PhysicalDevice = pd
		context.Device.GraphicsQueueIndex = uint32(queueInfo.GraphicsFamilyIndex)
		context.Device.PresentQueueIndex = uint32(queueInfo.PresentFamilyIndex)
		context.Device.SwapchainSupport = support
		// Keep a copy of properties, features and memory info for later use.
		context.Device.Properties = properties
		context.Device.Features = features
		context.Device.Memory = memory

		core.LogInfo("Physical device selected.")
		return nil
	}

	return errors.Wrap(core.ErrNoSuitableDevice, "no physical devices were found which meet the requirements")
}

func PhysicalDeviceMeetsRequirements(
	context *GraphicsContext,
	device vk.PhysicalDevice,
	properties *vk.PhysicalDeviceProperties,
	features *vk.PhysicalDeviceFeatures,
	requirements *VulkanPhysicalDeviceRequirements,
) (VulkanPhysicalDeviceQueueFamilyInfo, VulkanSwapchainSupportInfo, bool) {
	queueInfo := VulkanPhysicalDeviceQueueFamilyInfo{
		GraphicsFamilyIndex: -1,
		PresentFamilyIndex:  -1,
	}
	var support VulkanSwapchainSupportInfo
	name := VulkanGoString(properties.DeviceName[:])

	// Look at each queue family and see what it supports. The first family
	// with graphics wins; a family that presents as well is preferred.
	for i, family := range context.driver.QueueFamilyProperties(device) {
		graphics := vk.QueueFlagBits(family.QueueFlags)&vk.QueueGraphicsBit != 0
		if graphics && queueInfo.GraphicsFamilyIndex < 0 {
			queueInfo.GraphicsFamilyIndex = int32(i)
		}

		supportsPresent, err := context.driver.SurfaceSupport(device, uint32(i), context.Surface)
		if err != nil {
			core.LogWarn("surface support query failed on '%s': %s", name, err)
			return queueInfo, support, false
		}
		if supportsPresent && (queueInfo.PresentFamilyIndex < 0 || (graphics && int32(i) == queueInfo.GraphicsFamilyIndex)) {
			queueInfo.PresentFamilyIndex = int32(i)
		}
	}

	if requirements.Graphics && queueInfo.GraphicsFamilyIndex < 0 {
		core.LogInfo("Device '%s' has no graphics queue, skipping.", name)
		return queueInfo, support, false
	}
	if requirements.Present && queueInfo.PresentFamilyIndex < 0 {
		core.LogInfo("Device '%s' cannot present to the surface, skipping.", name)
		return queueInfo, support, false
	}
	core.LogDebug("Graphics Family Index: %d", queueInfo.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", queueInfo.PresentFamilyIndex)

	// Device extensions.
	if len(requirements.DeviceExtensionNames) > 0 {
		available, err := context.driver.DeviceExtensions(device)
		if err != nil {
			core.LogWarn("extension query failed on '%s': %s", name, err)
			return queueInfo, support, false
		}
		for _, required := range requirements.DeviceExtensionNames {
			found := false
			for _, ext := range available {
				if ext == required {
					found = true
					break
				}
			}
			if !found {
				core.LogInfo("Required extension not found: '%s', skipping device.", required)
				return queueInfo, support, false
			}
		}
	}

	// Sampler anisotropy
	if requirements.SamplerAnisotropy && features.SamplerAnisotropy != vk.True {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return queueInfo, support, false
	}

	// Query swapchain support.
	support, err := DeviceQuerySwapchainSupport(context, device)
	if err != nil || len(support.Formats) < 1 || len(support.PresentModes) < 1 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return queueInfo, support, false
	}

	return queueInfo, support, true
}

func DeviceQuerySwapchainSupport(context *GraphicsContext, physicalDevice vk.PhysicalDevice) (VulkanSwapchainSupportInfo, error) {
	var support VulkanSwapchainSupportInfo
	caps, err := context.driver.SurfaceCapabilities(physicalDevice, context.Surface)
	if err != nil {
		return support, errors.Wrap(err, "failed to get physical device surface capabilities")
	}
	support.Capabilities = caps

	formats, err := context.driver.SurfaceFormats(physicalDevice, context.Surface)
	if err != nil {
		return support, errors.Wrap(err, "failed to get physical device surface formats")
	}
	support.Formats = formats

	modes, err := context.driver.SurfacePresentModes(physicalDevice, context.Surface)
	if err != nil {
		return support, errors.Wrap(err, "failed to get physical device surface present modes")
	}
	support.PresentModes = modes
	return support, nil
}

// DeviceCreate creates the logical device with one queue per distinct family
// and fetches the graphics and present queues.
func DeviceCreate(context *GraphicsContext) error {
	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	indices := []uint32{context.Device.GraphicsQueueIndex}
	if context.Device.PresentQueueIndex != context.Device.GraphicsQueueIndex {
		indices = append(indices, context.Device.PresentQueueIndex)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	// Request device features.
	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if runtime.GOOS == "darwin" {
		available, err := context.driver.DeviceExtensions(context.Device.PhysicalDevice)
		if err != nil {
			return err
		}
		for _, ext := range available {
			if ext == "VK_KHR_portability_subset" {
				core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
				extensionNames = append(extensionNames, ext)
				break
			}
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	device, err := context.driver.CreateDevice(context.Device.PhysicalDevice, &deviceCreateInfo)
	if err != nil {
		return err
	}
	context.Device.LogicalDevice = device
	core.LogInfo("Logical device created.")

	context.Device.GraphicsQueue = context.driver.DeviceQueue(device, context.Device.GraphicsQueueIndex)
	context.Device.PresentQueue = context.driver.DeviceQueue(device, context.Device.PresentQueueIndex)
	core.LogInfo("Queues obtained.")
	return nil
}

func DeviceDestroy(context *GraphicsContext) {
	// Unset queues
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		context.driver.DestroyDevice(context.Device.LogicalDevice)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.SwapchainSupport = VulkanSwapchainSupportInfo{}
}

// DeviceDetectDepthFormat picks the first candidate whose optimal tiling
// supports depth/stencil attachments.
func DeviceDetectDepthFormat(context *GraphicsContext) error {
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range depthFormatCandidates {
		properties := context.driver.FormatProperties(context.Device.PhysicalDevice, candidate)
		if properties.OptimalTilingFeatures&flags == flags {
			context.Device.DepthFormat = candidate
			return nil
		}
	}
	context.Device.DepthFormat = vk.FormatUndefined
	return errors.WithStack(core.ErrNoDepthFormat)
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that has
// every bit of propertyFlags, or -1.
func (c *GraphicsContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	memory := c.Device.Memory
	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		if typeFilter&(1<<i) != 0 && memory.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
