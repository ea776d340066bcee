package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// fakeDriver simulates a single GPU. Commands recorded into a command buffer
// run when their submission completes, and a submission only completes when
// its fence is waited on or the queue or device idles.
type fakeDriver struct {
	handles []*uint64
	kinds   map[unsafe.Pointer]string
	live    map[string]int

	// Configuration.
	layers         []string
	devices        []*fakePhysicalDevice
	formats        []vk.SurfaceFormat
	presentModes   []vk.PresentMode
	caps           vk.SurfaceCapabilities
	depthFormats   map[vk.Format]bool
	memoryTypeBits uint32
	fail           map[string]error
	acquireErrs    []error
	presentErrs    []error

	// Device state.
	byHandle     map[vk.PhysicalDevice]*fakePhysicalDevice
	queues       map[uint32]vk.Queue
	memory       map[vk.DeviceMemory]*fakeMemory
	buffers      map[vk.Buffer]*fakeBuffer
	images       map[vk.Image]*fakeImage
	fences       map[vk.Fence]bool
	pools        map[vk.DescriptorPool]*fakeDescriptorPool
	commands     map[vk.CommandBuffer][]fakeCommand
	cbBuffers    map[vk.CommandBuffer][]vk.Buffer
	cbDraws      map[vk.CommandBuffer]int
	cbFramebuf   map[vk.CommandBuffer]vk.Framebuffer
	pending      []*fakeSubmission
	swapchain    vk.Swapchain
	swapchainCfg vk.SwapchainCreateInfo
	nextImage    uint32

	// Observations.
	calls          map[string]int
	events         []string
	bufferDestroys map[vk.Buffer]int
	barriers       []vk.ImageMemoryBarrier
	writes         []fakeWrite
	descWrites     []fakeDescriptorWrite
	submits        []vk.CommandBuffer
	presents       []uint32
	maxInFlight    int
	violations     []string
}

type fakePhysicalDevice struct {
	handle       vk.PhysicalDevice
	name         string
	families     []vk.QueueFamilyProperties
	present      map[uint32]bool
	extensions   []string
	anisotropy   bool
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

type fakeMemory struct {
	typeIndex uint32
	data      []byte
}

type fakeBuffer struct {
	size   vk.DeviceSize
	memory vk.DeviceMemory
}

type fakeImage struct {
	width, height uint32
	memory        vk.DeviceMemory
}

type fakeDescriptorPool struct {
	maxSets   uint32
	allocated uint32
}

type fakeCommand func(f *fakeDriver)

type fakeSubmission struct {
	fence    vk.Fence
	cb       vk.CommandBuffer
	commands []fakeCommand
	buffers  []vk.Buffer
}

type fakeWrite struct {
	memory vk.DeviceMemory
	offset vk.DeviceSize
	size   int
}

type fakeDescriptorWrite struct {
	set     vk.DescriptorSet
	binding uint32
	buffer  vk.Buffer
	view    vk.ImageView
	sampler vk.Sampler
}

const (
	fakeDeviceLocalType = 0
	fakeHostVisibleType = 1
)

func newFakeDriver() *fakeDriver {
	f := &fakeDriver{
		kinds:          map[unsafe.Pointer]string{},
		live:           map[string]int{},
		formats:        []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		presentModes:   []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		depthFormats:   map[vk.Format]bool{vk.FormatD32Sfloat: true},
		memoryTypeBits: 0b11,
		fail:           map[string]error{},
		byHandle:       map[vk.PhysicalDevice]*fakePhysicalDevice{},
		queues:         map[uint32]vk.Queue{},
		memory:         map[vk.DeviceMemory]*fakeMemory{},
		buffers:        map[vk.Buffer]*fakeBuffer{},
		images:         map[vk.Image]*fakeImage{},
		fences:         map[vk.Fence]bool{},
		pools:          map[vk.DescriptorPool]*fakeDescriptorPool{},
		commands:       map[vk.CommandBuffer][]fakeCommand{},
		cbBuffers:      map[vk.CommandBuffer][]vk.Buffer{},
		cbDraws:        map[vk.CommandBuffer]int{},
		cbFramebuf:     map[vk.CommandBuffer]vk.Framebuffer{},
		calls:          map[string]int{},
		bufferDestroys: map[vk.Buffer]int{},
	}
	f.caps = vk.SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  3,
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	f.addDevice(f.goodDevice("fake gpu"))
	return f
}

func (f *fakeDriver) goodDevice(name string) *fakePhysicalDevice {
	return &fakePhysicalDevice{
		name: name,
		families: []vk.QueueFamilyProperties{
			{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit), QueueCount: 1},
		},
		present:    map[uint32]bool{0: true},
		extensions: []string{vk.KhrSwapchainExtensionName},
		anisotropy: true,
	}
}

func (f *fakeDriver) addDevice(pd *fakePhysicalDevice) {
	pd.handle = vk.PhysicalDevice(f.newHandle("physical-device"))
	f.live["physical-device"]--
	f.byHandle[pd.handle] = pd
	f.devices = append(f.devices, pd)
}

func (f *fakeDriver) newHandle(kind string) unsafe.Pointer {
	h := new(uint64)
	*h = uint64(len(f.handles) + 1)
	f.handles = append(f.handles, h)
	p := unsafe.Pointer(h)
	f.kinds[p] = kind
	f.live[kind]++
	return p
}

func (f *fakeDriver) release(kind string, p unsafe.Pointer) {
	if p == nil {
		return
	}
	if f.kinds[p] != kind {
		f.violations = append(f.violations, fmt.Sprintf("destroying %s through %s", f.kinds[p], kind))
		return
	}
	delete(f.kinds, p)
	f.live[kind]--
}

func (f *fakeDriver) call(name string) error {
	f.calls[name]++
	if err, ok := f.fail[name]; ok {
		return err
	}
	return nil
}

func (f *fakeDriver) event(name string) {
	f.events = append(f.events, name)
}

// liveObjects returns every object kind that still has instances.
func (f *fakeDriver) liveObjects() map[string]int {
	out := map[string]int{}
	for kind, n := range f.live {
		if n != 0 {
			out[kind] = n
		}
	}
	return out
}

func (f *fakeDriver) pendingFences() int {
	n := 0
	for _, s := range f.pending {
		if s.fence != vk.NullFence {
			n++
		}
	}
	return n
}

// complete retires the first n pending submissions in order.
func (f *fakeDriver) complete(n int) {
	for i := 0; i < n; i++ {
		s := f.pending[0]
		f.pending = f.pending[1:]
		for _, cmd := range s.commands {
			cmd(f)
		}
		if s.fence != vk.NullFence {
			f.fences[s.fence] = true
		}
	}
}

func (f *fakeDriver) isPending(cb vk.CommandBuffer) bool {
	for _, s := range f.pending {
		if s.cb == cb {
			return true
		}
	}
	return false
}

func (f *fakeDriver) bufferInUse(buffer vk.Buffer) bool {
	for _, s := range f.pending {
		for _, b := range s.buffers {
			if b == buffer {
				return true
			}
		}
	}
	return false
}

func (f *fakeDriver) record(cb vk.CommandBuffer, cmd fakeCommand, buffers ...vk.Buffer) {
	f.commands[cb] = append(f.commands[cb], cmd)
	f.cbBuffers[cb] = append(f.cbBuffers[cb], buffers...)
}

func (f *fakeDriver) bufferMemory(b vk.Buffer) *fakeMemory {
	buffer, ok := f.buffers[b]
	if !ok {
		f.violations = append(f.violations, "command uses a destroyed buffer")
		return nil
	}
	return f.memory[buffer.memory]
}

// Instance level.

func (f *fakeDriver) InstanceLayers() ([]string, error) {
	return f.layers, f.call("InstanceLayers")
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	if err := f.call("CreateInstance"); err != nil {
		return nil, err
	}
	return vk.Instance(f.newHandle("instance")), nil
}

func (f *fakeDriver) DestroyInstance(instance vk.Instance) {
	f.release("instance", unsafe.Pointer(instance))
}

func (f *fakeDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error) {
	if err := f.call("CreateDebugCallback"); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return vk.DebugReportCallback(f.newHandle("debug-callback")), nil
}

func (f *fakeDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	f.release("debug-callback", unsafe.Pointer(callback))
}

func (f *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	f.release("surface", unsafe.Pointer(surface))
}

// Physical device queries.

func (f *fakeDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	if err := f.call("EnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	out := make([]vk.PhysicalDevice, len(f.devices))
	for i, pd := range f.devices {
		out[i] = pd.handle
	}
	return out, nil
}

func (f *fakeDriver) PhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	copy(properties.DeviceName[:], f.byHandle[pd].name)
	properties.DeviceType = vk.PhysicalDeviceTypeDiscreteGpu
	properties.ApiVersion = uint32(vk.MakeVersion(1, 3, 0))
	properties.Limits.MaxSamplerAnisotropy = 8
	return properties
}

func (f *fakeDriver) PhysicalDeviceFeatures(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	if f.byHandle[pd].anisotropy {
		features.SamplerAnisotropy = vk.True
	}
	return features
}

func (f *fakeDriver) PhysicalDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var memory vk.PhysicalDeviceMemoryProperties
	memory.MemoryTypeCount = 2
	memory.MemoryTypes[fakeDeviceLocalType] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		HeapIndex:     0,
	}
	memory.MemoryTypes[fakeHostVisibleType] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		HeapIndex:     1,
	}
	memory.MemoryHeapCount = 2
	memory.MemoryHeaps[0] = vk.MemoryHeap{Size: 1 << 30, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)}
	memory.MemoryHeaps[1] = vk.MemoryHeap{Size: 1 << 30}
	return memory
}

func (f *fakeDriver) QueueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return f.byHandle[pd].families
}

func (f *fakeDriver) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	return f.byHandle[pd].present[family], nil
}

func (f *fakeDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	return f.byHandle[pd].extensions, nil
}

func (f *fakeDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	return f.caps, f.call("SurfaceCapabilities")
}

func (f *fakeDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	if formats := f.byHandle[pd].formats; formats != nil {
		return formats, nil
	}
	return f.formats, nil
}

func (f *fakeDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	if modes := f.byHandle[pd].presentModes; modes != nil {
		return modes, nil
	}
	return f.presentModes, nil
}

func (f *fakeDriver) FormatProperties(pd vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var properties vk.FormatProperties
	if f.depthFormats[format] {
		properties.OptimalTilingFeatures = vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	}
	return properties
}

// Logical device.

func (f *fakeDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	if err := f.call("CreateDevice"); err != nil {
		return nil, err
	}
	return vk.Device(f.newHandle("device")), nil
}

func (f *fakeDriver) DestroyDevice(device vk.Device) {
	f.release("device", unsafe.Pointer(device))
}

func (f *fakeDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	if q, ok := f.queues[family]; ok {
		return q
	}
	q := vk.Queue(f.newHandle("queue"))
	f.live["queue"]--
	f.queues[family] = q
	return q
}

func (f *fakeDriver) DeviceWaitIdle(device vk.Device) error {
	f.calls["DeviceWaitIdle"]++
	f.complete(len(f.pending))
	return nil
}

// Swapchain.

func (f *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	if err := f.call("CreateSwapchain"); err != nil {
		return vk.NullSwapchain, err
	}
	f.swapchain = vk.Swapchain(f.newHandle("swapchain"))
	f.swapchainCfg = *info
	f.nextImage = 0
	return f.swapchain, nil
}

func (f *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	f.event("DestroySwapchain")
	f.release("swapchain", unsafe.Pointer(swapchain))
}

func (f *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	images := make([]vk.Image, f.swapchainCfg.MinImageCount)
	for i := range images {
		images[i] = vk.Image(f.newHandle("swapchain-image"))
		f.live["swapchain-image"]--
	}
	return images, nil
}

func (f *fakeDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, error) {
	f.calls["AcquireNextImage"]++
	if len(f.acquireErrs) > 0 {
		err := f.acquireErrs[0]
		f.acquireErrs = f.acquireErrs[1:]
		return 0, err
	}
	index := f.nextImage
	f.nextImage = (f.nextImage + 1) % f.swapchainCfg.MinImageCount
	return index, nil
}

func (f *fakeDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) error {
	f.presents = append(f.presents, info.PImageIndices[0])
	if len(f.presentErrs) > 0 {
		err := f.presentErrs[0]
		f.presentErrs = f.presentErrs[1:]
		return err
	}
	return nil
}

// Images and samplers.

func (f *fakeDriver) CreateImage(device vk.Device, info *vk.ImageCreateInfo) (vk.Image, error) {
	if err := f.call("CreateImage"); err != nil {
		return vk.NullImage, err
	}
	image := vk.Image(f.newHandle("image"))
	f.images[image] = &fakeImage{width: info.Extent.Width, height: info.Extent.Height}
	return image, nil
}

func (f *fakeDriver) DestroyImage(device vk.Device, image vk.Image) {
	f.event("DestroyImage")
	delete(f.images, image)
	f.release("image", unsafe.Pointer(image))
}

func (f *fakeDriver) ImageMemoryRequirements(device vk.Device, image vk.Image) vk.MemoryRequirements {
	img := f.images[image]
	return vk.MemoryRequirements{
		Size:           vk.DeviceSize(img.width * img.height * 4),
		Alignment:      4,
		MemoryTypeBits: f.memoryTypeBits,
	}
}

func (f *fakeDriver) BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error {
	f.images[image].memory = memory
	return nil
}

func (f *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	if err := f.call("CreateImageView"); err != nil {
		return vk.NullImageView, err
	}
	return vk.ImageView(f.newHandle("image-view")), nil
}

func (f *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	f.event("DestroyImageView")
	f.release("image-view", unsafe.Pointer(view))
}

func (f *fakeDriver) CreateSampler(device vk.Device, info *vk.SamplerCreateInfo) (vk.Sampler, error) {
	if err := f.call("CreateSampler"); err != nil {
		return vk.NullSampler, err
	}
	if info.MaxAnisotropy > 8 {
		f.violations = append(f.violations, "sampler anisotropy above device limit")
	}
	return vk.Sampler(f.newHandle("sampler")), nil
}

func (f *fakeDriver) DestroySampler(device vk.Device, sampler vk.Sampler) {
	f.release("sampler", unsafe.Pointer(sampler))
}

// Buffers and memory.

func (f *fakeDriver) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, error) {
	if err := f.call("CreateBuffer"); err != nil {
		return vk.NullBuffer, err
	}
	buffer := vk.Buffer(f.newHandle("buffer"))
	f.buffers[buffer] = &fakeBuffer{size: info.Size}
	return buffer, nil
}

func (f *fakeDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	f.bufferDestroys[buffer]++
	if f.bufferInUse(buffer) {
		f.violations = append(f.violations, "buffer destroyed while a submission still uses it")
	}
	delete(f.buffers, buffer)
	f.release("buffer", unsafe.Pointer(buffer))
}

func (f *fakeDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	return vk.MemoryRequirements{
		Size:           f.buffers[buffer].size,
		Alignment:      4,
		MemoryTypeBits: f.memoryTypeBits,
	}
}

func (f *fakeDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	f.buffers[buffer].memory = memory
	return nil
}

func (f *fakeDriver) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	if err := f.call("AllocateMemory"); err != nil {
		return vk.NullDeviceMemory, err
	}
	memory := vk.DeviceMemory(f.newHandle("memory"))
	f.memory[memory] = &fakeMemory{typeIndex: info.MemoryTypeIndex, data: make([]byte, info.AllocationSize)}
	return memory, nil
}

func (f *fakeDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	delete(f.memory, memory)
	f.release("memory", unsafe.Pointer(memory))
}

func (f *fakeDriver) WriteMemory(device vk.Device, memory vk.DeviceMemory, offset vk.DeviceSize, data []byte) error {
	if err := f.call("WriteMemory"); err != nil {
		return err
	}
	m, ok := f.memory[memory]
	if !ok {
		return errors.New("fake: write to freed memory")
	}
	if m.typeIndex != fakeHostVisibleType {
		return errors.New("fake: memory is not host visible")
	}
	copy(m.data[offset:], data)
	f.writes = append(f.writes, fakeWrite{memory: memory, offset: offset, size: len(data)})
	return nil
}

func (f *fakeDriver) ReadMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) ([]byte, error) {
	m, ok := f.memory[memory]
	if !ok {
		return nil, errors.New("fake: read from freed memory")
	}
	if m.typeIndex != fakeHostVisibleType {
		return nil, errors.New("fake: memory is not host visible")
	}
	return append([]byte(nil), m.data[offset:offset+size]...), nil
}

// Synchronization.

func (f *fakeDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	if err := f.call("CreateSemaphore"); err != nil {
		return vk.NullSemaphore, err
	}
	return vk.Semaphore(f.newHandle("semaphore")), nil
}

func (f *fakeDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	f.release("semaphore", unsafe.Pointer(semaphore))
}

func (f *fakeDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	if err := f.call("CreateFence"); err != nil {
		return vk.NullFence, err
	}
	fence := vk.Fence(f.newHandle("fence"))
	f.fences[fence] = signaled
	return fence, nil
}

func (f *fakeDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	delete(f.fences, fence)
	f.release("fence", unsafe.Pointer(fence))
}

func (f *fakeDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	f.calls["WaitForFence"]++
	if f.fences[fence] {
		return nil
	}
	for i, s := range f.pending {
		if s.fence == fence {
			f.complete(i + 1)
			return nil
		}
	}
	f.violations = append(f.violations, "wait on an unsignaled fence with nothing pending")
	return errors.New("fake: deadlock waiting on fence")
}

func (f *fakeDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	for _, s := range f.pending {
		if s.fence == fence {
			f.violations = append(f.violations, "reset of a fence still in use")
		}
	}
	f.fences[fence] = false
	return nil
}

// Command pools and buffers.

func (f *fakeDriver) CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	if err := f.call("CreateCommandPool"); err != nil {
		return vk.NullCommandPool, err
	}
	return vk.CommandPool(f.newHandle("command-pool")), nil
}

func (f *fakeDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	f.release("command-pool", unsafe.Pointer(pool))
}

func (f *fakeDriver) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	if err := f.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	out := make([]vk.CommandBuffer, count)
	for i := range out {
		out[i] = vk.CommandBuffer(f.newHandle("command-buffer"))
	}
	return out, nil
}

func (f *fakeDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	f.event("FreeCommandBuffers")
	for _, cb := range buffers {
		if f.isPending(cb) {
			f.violations = append(f.violations, "command buffer freed while pending")
		}
		delete(f.commands, cb)
		delete(f.cbBuffers, cb)
		f.release("command-buffer", unsafe.Pointer(cb))
	}
}

func (f *fakeDriver) BeginCommandBuffer(cb vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error {
	if f.isPending(cb) {
		f.violations = append(f.violations, "command buffer re-recorded while pending")
	}
	f.commands[cb] = nil
	f.cbBuffers[cb] = nil
	f.cbDraws[cb] = 0
	return nil
}

func (f *fakeDriver) EndCommandBuffer(cb vk.CommandBuffer) error {
	return nil
}

// Recording.

func (f *fakeDriver) CmdPipelineBarrier(cb vk.CommandBuffer, src, dst vk.PipelineStageFlags, barrier vk.ImageMemoryBarrier) {
	f.barriers = append(f.barriers, barrier)
	f.record(cb, func(*fakeDriver) {})
}

func (f *fakeDriver) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize) {
	f.record(cb, func(f *fakeDriver) {
		from, to := f.bufferMemory(src), f.bufferMemory(dst)
		if from == nil || to == nil {
			return
		}
		copy(to.data[:size], from.data[:size])
	}, src, dst)
}

func (f *fakeDriver) CmdCopyBufferToImage(cb vk.CommandBuffer, src vk.Buffer, dst vk.Image, width, height uint32) {
	f.record(cb, func(f *fakeDriver) {
		from := f.bufferMemory(src)
		img, ok := f.images[dst]
		if from == nil || !ok {
			f.violations = append(f.violations, "copy into a destroyed image")
			return
		}
		copy(f.memory[img.memory].data, from.data)
	}, src)
}

func (f *fakeDriver) CmdBeginRenderPass(cb vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	f.cbFramebuf[cb] = info.Framebuffer
	f.record(cb, func(*fakeDriver) {})
}

func (f *fakeDriver) CmdEndRenderPass(cb vk.CommandBuffer) {
	f.record(cb, func(*fakeDriver) {})
}

func (f *fakeDriver) CmdBindPipeline(cb vk.CommandBuffer, pipeline vk.Pipeline) {
	f.record(cb, func(*fakeDriver) {})
}

func (f *fakeDriver) CmdBindVertexBuffer(cb vk.CommandBuffer, buffer vk.Buffer) {
	f.record(cb, func(*fakeDriver) {}, buffer)
}

func (f *fakeDriver) CmdBindIndexBuffer(cb vk.CommandBuffer, buffer vk.Buffer) {
	f.record(cb, func(*fakeDriver) {}, buffer)
}

func (f *fakeDriver) CmdBindDescriptorSet(cb vk.CommandBuffer, layout vk.PipelineLayout, set vk.DescriptorSet) {
	f.record(cb, func(*fakeDriver) {})
}

func (f *fakeDriver) CmdDrawIndexed(cb vk.CommandBuffer, indexCount uint32) {
	f.cbDraws[cb]++
	f.record(cb, func(*fakeDriver) {})
}

// Queues.

func (f *fakeDriver) QueueSubmit(queue vk.Queue, info *vk.SubmitInfo, fence vk.Fence) error {
	if err := f.call("QueueSubmit"); err != nil {
		return err
	}
	var cb vk.CommandBuffer
	if info.CommandBufferCount > 0 {
		cb = info.PCommandBuffers[0]
	}
	if fence != vk.NullFence {
		if f.fences[fence] {
			f.violations = append(f.violations, "submit with a signaled fence")
		}
		if cb != nil {
			f.submits = append(f.submits, cb)
		}
	}
	f.pending = append(f.pending, &fakeSubmission{
		fence:    fence,
		cb:       cb,
		commands: append([]fakeCommand(nil), f.commands[cb]...),
		buffers:  append([]vk.Buffer(nil), f.cbBuffers[cb]...),
	})
	if n := f.pendingFences(); n > f.maxInFlight {
		f.maxInFlight = n
	}
	return nil
}

func (f *fakeDriver) QueueWaitIdle(queue vk.Queue) error {
	f.calls["QueueWaitIdle"]++
	f.complete(len(f.pending))
	return nil
}

// Pipeline objects.

func (f *fakeDriver) CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	if err := f.call("CreateShaderModule"); err != nil {
		return vk.NullShaderModule, err
	}
	return vk.ShaderModule(f.newHandle("shader-module")), nil
}

func (f *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	f.release("shader-module", unsafe.Pointer(module))
}

func (f *fakeDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	if err := f.call("CreateRenderPass"); err != nil {
		return vk.NullRenderPass, err
	}
	return vk.RenderPass(f.newHandle("render-pass")), nil
}

func (f *fakeDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	f.event("DestroyRenderPass")
	f.release("render-pass", unsafe.Pointer(renderPass))
}

func (f *fakeDriver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	if err := f.call("CreateDescriptorSetLayout"); err != nil {
		return nil, err
	}
	return vk.DescriptorSetLayout(f.newHandle("descriptor-set-layout")), nil
}

func (f *fakeDriver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	f.release("descriptor-set-layout", unsafe.Pointer(layout))
}

func (f *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	if err := f.call("CreatePipelineLayout"); err != nil {
		return vk.NullPipelineLayout, err
	}
	return vk.PipelineLayout(f.newHandle("pipeline-layout")), nil
}

func (f *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	f.release("pipeline-layout", unsafe.Pointer(layout))
}

func (f *fakeDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	if err := f.call("CreateGraphicsPipeline"); err != nil {
		return vk.NullPipeline, err
	}
	return vk.Pipeline(f.newHandle("pipeline")), nil
}

func (f *fakeDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	f.event("DestroyPipeline")
	f.release("pipeline", unsafe.Pointer(pipeline))
}

func (f *fakeDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	if err := f.call("CreateFramebuffer"); err != nil {
		return vk.NullFramebuffer, err
	}
	if len(info.PAttachments) != 2 {
		f.violations = append(f.violations, "framebuffer without color and depth attachments")
	}
	return vk.Framebuffer(f.newHandle("framebuffer")), nil
}

func (f *fakeDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	f.event("DestroyFramebuffer")
	f.release("framebuffer", unsafe.Pointer(framebuffer))
}

// Descriptors.

func (f *fakeDriver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error) {
	if err := f.call("CreateDescriptorPool"); err != nil {
		return nil, err
	}
	pool := vk.DescriptorPool(f.newHandle("descriptor-pool"))
	f.pools[pool] = &fakeDescriptorPool{maxSets: info.MaxSets}
	return pool, nil
}

func (f *fakeDriver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	delete(f.pools, pool)
	f.release("descriptor-pool", unsafe.Pointer(pool))
}

func (f *fakeDriver) AllocateDescriptorSets(device vk.Device, pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	p := f.pools[pool]
	if p.allocated+uint32(len(layouts)) > p.maxSets {
		return nil, checkResult("vkAllocateDescriptorSets", vk.ErrorOutOfPoolMemory)
	}
	p.allocated += uint32(len(layouts))
	sets := make([]vk.DescriptorSet, len(layouts))
	for i := range sets {
		sets[i] = vk.DescriptorSet(f.newHandle("descriptor-set"))
		f.live["descriptor-set"]--
	}
	return sets, nil
}

func (f *fakeDriver) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	for _, w := range writes {
		dw := fakeDescriptorWrite{set: w.DstSet, binding: w.DstBinding}
		if len(w.PBufferInfo) > 0 {
			dw.buffer = w.PBufferInfo[0].Buffer
		}
		if len(w.PImageInfo) > 0 {
			dw.view = w.PImageInfo[0].ImageView
			dw.sampler = w.PImageInfo[0].Sampler
		}
		f.descWrites = append(f.descWrites, dw)
	}
}

// fakeWindow hands out surfaces from the fake driver.
type fakeWindow struct {
	driver        *fakeDriver
	width, height uint32
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	if err := w.driver.call("CreateSurface"); err != nil {
		return vk.NullSurface, err
	}
	return vk.Surface(w.driver.newHandle("surface")), nil
}

func (w *fakeWindow) DrawableSize() (uint32, uint32) {
	return w.width, w.height
}

type fakeCamera struct{}

func (fakeCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
}

func (fakeCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(50), 4.0/3.0, 0.1, 100)
}
