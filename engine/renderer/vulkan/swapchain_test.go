package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := vk.ColorSpaceSrgbNonlinear
	tests := []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.SurfaceFormat
	}{
		{
			name:    "undefined means any",
			formats: []vk.SurfaceFormat{{Format: vk.FormatUndefined, ColorSpace: srgb}},
			want:    vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: srgb},
		},
		{
			name: "preferred present",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: srgb},
				{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: srgb},
			},
			want: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: srgb},
		},
		{
			name: "falls back to first",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: srgb},
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: srgb},
			},
			want: vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: srgb},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseSurfaceFormat(tt.formats); got.Format != tt.want.Format || got.ColorSpace != tt.want.ColorSpace {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name  string
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{"mailbox wins", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"immediate next", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{"fifo otherwise", []vk.PresentMode{vk.PresentModeFifoRelaxed}, vk.PresentModeFifo},
		{"empty", nil, vk.PresentModeFifo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choosePresentMode(tt.modes); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{2, 3, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 8, 2},
	}
	for _, tt := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := chooseImageCount(caps); got != tt.want {
			t.Fatalf("min %d max %d: got %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}

func TestChooseExtent(t *testing.T) {
	limits := vk.SurfaceCapabilities{
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	tests := []struct {
		name          string
		current       vk.Extent2D
		width, height uint32
		want          vk.Extent2D
	}{
		{"surface decides", vk.Extent2D{Width: 800, Height: 600}, 1024, 768, vk.Extent2D{Width: 800, Height: 600}},
		{"window size", vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}, 1024, 768, vk.Extent2D{Width: 1024, Height: 768}},
		{"clamped up", vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}, 10, 20, vk.Extent2D{Width: 100, Height: 100}},
		{"clamped down", vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}, 4000, 3000, vk.Extent2D{Width: 1920, Height: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := limits
			caps.CurrentExtent = tt.current
			if got := chooseExtent(caps, tt.width, tt.height); !sameExtent(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSwapchainUsesDrawableSizeWhenSurfaceDefers(t *testing.T) {
	f := newFakeDriver()
	f.caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	ctx := NewGraphicsContext(f, &fakeWindow{driver: f, width: 1280, height: 720}, ContextConfig{AppName: "test"})
	if err := ctx.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer ctx.Shutdown()

	want := vk.Extent2D{Width: 1280, Height: 720}
	if !sameExtent(ctx.Swapchain.Extent, want) || !sameExtent(f.swapchainCfg.ImageExtent, want) {
		t.Fatalf("extent = %+v, want %+v", ctx.Swapchain.Extent, want)
	}
	if ctx.Swapchain.PresentMode != vk.PresentModeMailbox {
		t.Fatalf("present mode = %v", ctx.Swapchain.PresentMode)
	}
	if f.swapchainCfg.ImageSharingMode != vk.SharingModeExclusive {
		t.Fatalf("single family should use exclusive sharing")
	}
}

func sameExtent(a, b vk.Extent2D) bool {
	return a.Width == b.Width && a.Height == b.Height
}
