package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
)

const hostVisibleCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

// VulkanBuffer owns a buffer handle and the memory bound to it.
type VulkanBuffer struct {
	Handle           vk.Buffer
	Memory           vk.DeviceMemory
	Size             vk.DeviceSize
	Usage            vk.BufferUsageFlags
	MemoryProperties vk.MemoryPropertyFlags
}

// CreateBuffer allocates a buffer of size bytes backed by memory with every
// flag in memoryFlags.
func CreateBuffer(context *GraphicsContext, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, errors.New("cannot create a zero sized buffer")
	}
	device := context.Device.LogicalDevice

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	handle, err := context.driver.CreateBuffer(device, &bufferInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create buffer")
	}

	requirements := context.driver.BufferMemoryRequirements(device, handle)
	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if memoryIndex == -1 {
		context.driver.DestroyBuffer(device, handle)
		return nil, errors.Wrapf(core.ErrNoSuitableMemoryType, "buffer usage %#x", uint32(usage))
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	memory, err := context.driver.AllocateMemory(device, &allocateInfo)
	if err != nil {
		context.driver.DestroyBuffer(device, handle)
		return nil, errors.Wrap(err, "failed to allocate buffer memory")
	}
	if err := context.driver.BindBufferMemory(device, handle, memory); err != nil {
		context.driver.FreeMemory(device, memory)
		context.driver.DestroyBuffer(device, handle)
		return nil, errors.Wrap(err, "failed to bind buffer memory")
	}

	return &VulkanBuffer{
		Handle:           handle,
		Memory:           memory,
		Size:             size,
		Usage:            usage,
		MemoryProperties: memoryFlags,
	}, nil
}

// Destroy releases the buffer and its memory. Calling it twice is a no-op.
func (b *VulkanBuffer) Destroy(context *GraphicsContext) {
	if b == nil {
		return
	}
	device := context.Device.LogicalDevice
	if b.Handle != vk.NullBuffer {
		context.driver.DestroyBuffer(device, b.Handle)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		context.driver.FreeMemory(device, b.Memory)
		b.Memory = vk.NullDeviceMemory
	}
	b.Size = 0
}

// LoadData copies data into a host-visible buffer at offset.
func (b *VulkanBuffer) LoadData(context *GraphicsContext, offset vk.DeviceSize, data []byte) error {
	if b.MemoryProperties&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) == 0 {
		return errors.New("buffer memory is not host visible")
	}
	if offset+vk.DeviceSize(len(data)) > b.Size {
		return errors.Newf("write of %d bytes at %d overflows buffer of %d bytes", len(data), offset, b.Size)
	}
	return context.driver.WriteMemory(context.Device.LogicalDevice, b.Memory, offset, data)
}

// CopyBuffer records a full copy of src into dst and waits for it.
func CopyBuffer(context *GraphicsContext, src, dst *VulkanBuffer, size vk.DeviceSize) error {
	return context.SingleTimeCommands(func(cb vk.CommandBuffer) error {
		context.driver.CmdCopyBuffer(cb, src.Handle, dst.Handle, size)
		return nil
	})
}

// UploadViaStaging moves data into a new device-local buffer through a
// host-visible staging buffer. The staging buffer is released once the copy
// has completed, whatever the outcome.
func UploadViaStaging(context *GraphicsContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	if size == 0 {
		return nil, errors.New("nothing to upload")
	}

	staging, err := CreateBuffer(context, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisibleCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}

	dst, err := CreateBuffer(
		context,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "device local buffer")
	}

	if err := CopyBuffer(context, staging, dst, size); err != nil {
		dst.Destroy(context)
		return nil, errors.Wrap(err, "staged copy")
	}
	return dst, nil
}

// ReadbackBuffer copies a device-local buffer into a temporary host-visible
// one and returns its bytes.
func ReadbackBuffer(context *GraphicsContext, src *VulkanBuffer) ([]byte, error) {
	readback, err := CreateBuffer(context, src.Size, vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), hostVisibleCoherent)
	if err != nil {
		return nil, errors.Wrap(err, "readback buffer")
	}
	defer readback.Destroy(context)

	if err := CopyBuffer(context, src, readback, src.Size); err != nil {
		return nil, err
	}
	return context.driver.ReadMemory(context.Device.LogicalDevice, readback.Memory, 0, src.Size)
}
