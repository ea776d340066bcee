package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanRenderpass struct {
	Handle     vk.RenderPass
	Extent     vk.Extent2D
	ClearColor [4]float32
	Depth      float32
	Stencil    uint32
}

// RenderpassCreate builds the single render pass: one color attachment
// presented at the end and one depth attachment, one subpass.
func RenderpassCreate(context *GraphicsContext, clearColor [4]float32, depth float32, stencil uint32) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		Extent:     context.Swapchain.Extent,
		ClearColor: clearColor,
		Depth:      depth,
		Stencil:    stencil,
	}

	attachmentDescriptions := []vk.AttachmentDescription{
		// Color attachment
		{
			Format:         context.Swapchain.ImageFormat.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,  // Do not expect any particular layout before render pass starts.
			FinalLayout:    vk.ImageLayoutPresentSrc, // Transitioned to after the render pass
		},
		// Depth attachment
		{
			Format:         context.Device.DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorAttachmentReference := []vk.AttachmentReference{
		{
			Attachment: 0, // Attachment description array index
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		},
	}
	depthAttachmentReference := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	// Main subpass
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorAttachmentReference,
		PDepthStencilAttachment: &depthAttachmentReference,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	handle, err := context.driver.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create render pass")
	}
	outRenderpass.Handle = handle
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) Destroy(context *GraphicsContext) {
	if vr != nil && vr.Handle != vk.NullRenderPass {
		context.driver.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle)
		vr.Handle = vk.NullRenderPass
	}
}

func (vr *VulkanRenderpass) Begin(context *GraphicsContext, commandBuffer *VulkanCommandBuffer, framebuffer vk.Framebuffer) {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(vr.ClearColor[:])
	clearValues[1].SetDepthStencil(vr.Depth, vr.Stencil)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vr.Extent,
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}

	context.driver.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderpass) End(context *GraphicsContext, commandBuffer *VulkanCommandBuffer) {
	context.driver.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
