package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func NewVulkanCommandBuffer(context *GraphicsContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	handles, err := context.driver.AllocateCommandBuffers(context.Device.LogicalDevice, pool, 1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate command buffer")
	}
	return &VulkanCommandBuffer{
		Handle: handles[0],
		State:  COMMAND_BUFFER_STATE_READY,
	}, nil
}

func (v *VulkanCommandBuffer) Free(context *GraphicsContext, pool vk.CommandPool) {
	if v.Handle == nil {
		return
	}
	context.driver.FreeCommandBuffers(context.Device.LogicalDevice, pool, []vk.CommandBuffer{v.Handle})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(context *GraphicsContext, isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	var flags vk.CommandBufferUsageFlags
	if isSingleUse {
		flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}
	if err := context.driver.BeginCommandBuffer(v.Handle, flags); err != nil {
		return errors.Wrap(err, "failed to begin command buffer")
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End(context *GraphicsContext) error {
	if err := context.driver.EndCommandBuffer(v.Handle); err != nil {
		return errors.Wrap(err, "failed to end command buffer")
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() {
	v.State = COMMAND_BUFFER_STATE_READY
}

// AllocateAndBeginSingleUse allocates a primary command buffer and begins
// recording it for one-time submission.
func AllocateAndBeginSingleUse(context *GraphicsContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(context, pool)
	if err != nil {
		return nil, err
	}
	if err := cb.Begin(context, true, false, false); err != nil {
		cb.Free(context, pool)
		return nil, err
	}
	return cb, nil
}

// EndSingleUse ends recording, submits to the queue, waits for the queue to
// go idle and frees the command buffer.
func (v *VulkanCommandBuffer) EndSingleUse(context *GraphicsContext, pool vk.CommandPool, queue vk.Queue) error {
	defer v.Free(context, pool)

	if err := v.End(context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}
	if err := context.driver.QueueSubmit(queue, &submitInfo, vk.NullFence); err != nil {
		return errors.Wrap(err, "failed to submit single use command buffer")
	}
	v.UpdateSubmitted()

	// Wait for it to finish
	if err := context.driver.QueueWaitIdle(queue); err != nil {
		return errors.Wrap(err, "queue failed to wait in idle mode")
	}
	return nil
}

// SingleTimeCommands records fn into a one-shot command buffer on the graphics
// queue and blocks until the queue is idle.
func (c *GraphicsContext) SingleTimeCommands(fn func(cb vk.CommandBuffer) error) error {
	cb, err := AllocateAndBeginSingleUse(c, c.CommandPool)
	if err != nil {
		return err
	}
	if err := fn(cb.Handle); err != nil {
		cb.Free(c, c.CommandPool)
		return err
	}
	return cb.EndSingleUse(c, c.CommandPool, c.Device.GraphicsQueue)
}
