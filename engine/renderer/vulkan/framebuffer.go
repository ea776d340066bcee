package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func FramebufferCreate(context *GraphicsContext, renderpass *VulkanRenderpass, width, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	// Take a copy of the attachments.
	outFramebuffer := &VulkanFramebuffer{
		Attachments: append([]vk.ImageView(nil), attachments...),
		Renderpass:  renderpass,
	}

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(outFramebuffer.Attachments)),
		PAttachments:    outFramebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	handle, err := context.driver.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create framebuffer")
	}
	outFramebuffer.Handle = handle
	return outFramebuffer, nil
}

func (vfb *VulkanFramebuffer) Destroy(context *GraphicsContext) {
	if vfb.Handle != vk.NullFramebuffer {
		context.driver.DestroyFramebuffer(context.Device.LogicalDevice, vfb.Handle)
		vfb.Handle = vk.NullFramebuffer
	}
	vfb.Attachments = nil
	vfb.Renderpass = nil
}
