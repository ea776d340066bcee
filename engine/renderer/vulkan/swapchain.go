package vulkan

import (
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	PresentMode vk.PresentMode
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

var preferredSurfaceFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Unorm,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// chooseSurfaceFormat prefers BGRA8 UNORM in the sRGB non-linear color space.
// A single UNDEFINED entry means the surface has no preference.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return preferredSurfaceFormat
	}
	for _, format := range formats {
		if format.Format == preferredSurfaceFormat.Format && format.ColorSpace == preferredSurfaceFormat.ColorSpace {
			return format
		}
	}
	return formats[0]
}

func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, wanted := range []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate} {
		for _, mode := range modes {
			if mode == wanted {
				return mode
			}
		}
	}
	// FIFO is always available.
	return vk.PresentModeFifo
}

func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	return imageCount
}

// chooseExtent uses the surface's current extent unless the surface lets the
// swapchain decide, in which case the drawable size is clamped to the limits.
func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	min := caps.MinImageExtent
	max := caps.MaxImageExtent
	return vk.Extent2D{
		Width:  MathClamp(width, min.Width, max.Width),
		Height: MathClamp(height, min.Height, max.Height),
	}
}

// SwapchainCreate builds a swapchain against the latest surface capabilities
// and fetches its images. Views are created separately.
func SwapchainCreate(context *GraphicsContext, width, height uint32) (*VulkanSwapchain, error) {
	support, err := DeviceQuerySwapchainSupport(context, context.Device.PhysicalDevice)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return nil, errors.New("surface reports no formats or present modes")
	}
	context.Device.SwapchainSupport = support
	caps := support.Capabilities

	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes),
		Extent:      chooseExtent(caps, width, height),
	}
	imageCount := chooseImageCount(caps)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	handle, err := context.driver.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create swapchain")
	}
	swapchain.Handle = handle

	images, err := context.driver.SwapchainImages(context.Device.LogicalDevice, handle)
	if err != nil {
		context.driver.DestroySwapchain(context.Device.LogicalDevice, handle)
		return nil, errors.Wrap(err, "failed to get swapchain images")
	}
	swapchain.Images = images
	swapchain.ImageCount = uint32(len(images))

	core.LogInfo("Swapchain created: %dx%d, %d images.", swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount)
	return swapchain, nil
}

// CreateViews creates one color view per swapchain image.
func (vs *VulkanSwapchain) CreateViews(context *GraphicsContext) error {
	vs.Views = make([]vk.ImageView, 0, vs.ImageCount)
	for _, image := range vs.Images {
		view, err := ImageViewCreate(context, image, vs.ImageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			vs.DestroyViews(context)
			return err
		}
		vs.Views = append(vs.Views, view)
	}
	return nil
}

// DestroyViews destroys the views only; the images belong to the swapchain.
func (vs *VulkanSwapchain) DestroyViews(context *GraphicsContext) {
	for _, view := range vs.Views {
		context.driver.DestroyImageView(context.Device.LogicalDevice, view)
	}
	vs.Views = nil
}

func (vs *VulkanSwapchain) Destroy(context *GraphicsContext) {
	if vs.Handle == vk.NullSwapchain {
		return
	}
	context.driver.DestroySwapchain(context.Device.LogicalDevice, vs.Handle)
	vs.Handle = vk.NullSwapchain
	vs.Images = nil
}
