package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

// VulkanFence tracks the host-side view of a fence so waits on an already
// signaled fence never reach the driver.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *GraphicsContext, createSignaled bool) (*VulkanFence, error) {
	handle, err := context.driver.CreateFence(context.Device.LogicalDevice, createSignaled)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fence")
	}
	return &VulkanFence{
		Handle: handle,
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}, nil
}

func (vf *VulkanFence) Destroy(context *GraphicsContext) {
	if vf.Handle != vk.NullFence {
		context.driver.DestroyFence(context.Device.LogicalDevice, vf.Handle)
		vf.Handle = vk.NullFence
	}
	vf.IsSignaled = false
}

func (vf *VulkanFence) Wait(context *GraphicsContext, timeoutNs uint64) error {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return nil
	}
	if err := context.driver.WaitForFence(context.Device.LogicalDevice, vf.Handle, timeoutNs); err != nil {
		core.LogError("vk_fence_wait - %s", err)
		return errors.Wrap(err, "in-flight fence wait failure")
	}
	vf.IsSignaled = true
	return nil
}

func (vf *VulkanFence) Reset(context *GraphicsContext) error {
	if !vf.IsSignaled {
		return nil
	}
	if err := context.driver.ResetFence(context.Device.LogicalDevice, vf.Handle); err != nil {
		return errors.Wrap(err, "failed to reset fence")
	}
	vf.IsSignaled = false
	return nil
}
