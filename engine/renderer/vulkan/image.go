package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

const maxSamplerAnisotropy float32 = 16

// VulkanImage is a device-local image with its view and an optional sampler.
// Layout follows the transitions recorded through TransitionLayout.
type VulkanImage struct {
	Handle  vk.Image
	Memory  vk.DeviceMemory
	View    vk.ImageView
	Sampler vk.Sampler
	Format  vk.Format
	Aspect  vk.ImageAspectFlags
	Layout  vk.ImageLayout
	Width   uint32
	Height  uint32
}

type layoutBarrier struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

// transitionBarrier returns the access and stage masks for the supported
// layout edges. Any other pair reports false.
func transitionBarrier(oldLayout, newLayout vk.ImageLayout) (layoutBarrier, bool) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		// Don't care about the old layout, transition to optimal for the copy.
		return layoutBarrier{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, true
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		// Transfer writes must finish before the fragment shader samples.
		return layoutBarrier{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, true
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return layoutBarrier{
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, true
	}
	return layoutBarrier{}, false
}

// ImageCreate creates the image, binds device memory and, when aspect is not
// zero, a view over it.
func ImageCreate(
	context *GraphicsContext,
	width, height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	aspect vk.ImageAspectFlags,
) (*VulkanImage, error) {
	device := context.Device.LogicalDevice
	image := &VulkanImage{
		Format: format,
		Aspect: aspect,
		Layout: vk.ImageLayoutUndefined,
		Width:  width,
		Height: height,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1, // TODO: Support configurable depth.
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	handle, err := context.driver.CreateImage(device, &imageCreateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create image")
	}
	image.Handle = handle

	requirements := context.driver.ImageMemoryRequirements(device, handle)
	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if memoryIndex == -1 {
		image.Destroy(context)
		return nil, errors.Wrap(core.ErrNoSuitableMemoryType, "image memory")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	memory, err := context.driver.AllocateMemory(device, &allocateInfo)
	if err != nil {
		image.Destroy(context)
		return nil, errors.Wrap(err, "failed to allocate image memory")
	}
	image.Memory = memory

	// TODO: configurable memory offset.
	if err := context.driver.BindImageMemory(device, handle, memory); err != nil {
		image.Destroy(context)
		return nil, errors.Wrap(err, "failed to bind image memory")
	}

	if aspect != 0 {
		view, err := ImageViewCreate(context, handle, format, aspect)
		if err != nil {
			image.Destroy(context)
			return nil, err
		}
		image.View = view
	}
	return image, nil
}

func ImageViewCreate(context *GraphicsContext, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d, // TODO: Make configurable.
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			// TODO: Make configurable
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	view, err := context.driver.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo)
	if err != nil {
		return vk.NullImageView, errors.Wrap(err, "failed to create image view")
	}
	return view, nil
}

// Destroy releases sampler, view, memory and image. It is safe to call more
// than once.
func (img *VulkanImage) Destroy(context *GraphicsContext) {
	if img == nil {
		return
	}
	device := context.Device.LogicalDevice
	if img.Sampler != vk.NullSampler {
		context.driver.DestroySampler(device, img.Sampler)
		img.Sampler = vk.NullSampler
	}
	if img.View != vk.NullImageView {
		context.driver.DestroyImageView(device, img.View)
		img.View = vk.NullImageView
	}
	if img.Memory != vk.NullDeviceMemory {
		context.driver.FreeMemory(device, img.Memory)
		img.Memory = vk.NullDeviceMemory
	}
	if img.Handle != vk.NullImage {
		context.driver.DestroyImage(device, img.Handle)
		img.Handle = vk.NullImage
	}
}

// TransitionLayout moves the image into newLayout inside a one-shot command
// buffer. Unsupported edges leave the image untouched and record nothing.
func (img *VulkanImage) TransitionLayout(context *GraphicsContext, newLayout vk.ImageLayout) error {
	masks, ok := transitionBarrier(img.Layout, newLayout)
	if !ok {
		core.LogDebug("ignoring unsupported layout transition %d -> %d", img.Layout, newLayout)
		return nil
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(img.Format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           img.Layout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: masks.srcAccess,
		DstAccessMask: masks.dstAccess,
	}

	err := context.SingleTimeCommands(func(cb vk.CommandBuffer) error {
		context.driver.CmdPipelineBarrier(cb, masks.srcStage, masks.dstStage, barrier)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "layout transition")
	}
	img.Layout = newLayout
	return nil
}

// CopyFromBuffer fills the whole image from buffer. The image must already be
// in TRANSFER_DST_OPTIMAL.
func (img *VulkanImage) CopyFromBuffer(context *GraphicsContext, buffer *VulkanBuffer) error {
	if img.Layout != vk.ImageLayoutTransferDstOptimal {
		return errors.Newf("image must be in transfer destination layout, got %d", img.Layout)
	}
	return context.SingleTimeCommands(func(cb vk.CommandBuffer) error {
		context.driver.CmdCopyBufferToImage(cb, buffer.Handle, img.Handle, img.Width, img.Height)
		return nil
	})
}

// CreateSampler attaches a linear, repeating sampler with anisotropy capped
// by the device limit.
func (img *VulkanImage) CreateSampler(context *GraphicsContext) error {
	anisotropy := maxSamplerAnisotropy
	if limit := context.Device.Properties.Limits.MaxSamplerAnisotropy; limit < anisotropy {
		anisotropy = limit
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           anisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	sampler, err := context.driver.CreateSampler(context.Device.LogicalDevice, &samplerInfo)
	if err != nil {
		return errors.Wrap(err, "failed to create texture sampler")
	}
	img.Sampler = sampler
	return nil
}

// CreateTextureImage uploads tightly packed RGBA8 pixels into a sampled image
// ready for the fragment stage.
func CreateTextureImage(context *GraphicsContext, width, height uint32, pixels []byte) (*VulkanImage, error) {
	if uint64(len(pixels)) != uint64(width)*uint64(height)*4 {
		return nil, errors.Newf("texture %dx%d expects %d bytes, got %d", width, height, width*height*4, len(pixels))
	}

	staging, err := CreateBuffer(context, vk.DeviceSize(len(pixels)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisibleCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "texture staging buffer")
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, pixels); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		width, height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
	)
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error { return image.TransitionLayout(context, vk.ImageLayoutTransferDstOptimal) },
		func() error { return image.CopyFromBuffer(context, staging) },
		func() error { return image.TransitionLayout(context, vk.ImageLayoutShaderReadOnlyOptimal) },
		func() error { return image.CreateSampler(context) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			image.Destroy(context)
			return nil, err
		}
	}
	return image, nil
}
