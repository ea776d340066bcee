package core

import (
	"github.com/cockroachdb/errors"
)

var (
	// Swapchain no longer matches the surface; rebuild before the next frame.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	// Swapchain still presents but no longer matches the surface exactly.
	ErrSwapchainSuboptimal = errors.New("swapchain suboptimal")

	ErrNoSuitableDevice        = errors.New("no physical device meets the requirements")
	ErrNoSuitableMemoryType    = errors.New("no memory type satisfies the requested properties")
	ErrNoDepthFormat           = errors.New("no supported depth format")
	ErrMissingTexture          = errors.New("missing texture")
	ErrDescriptorPoolExhausted = errors.New("descriptor pool exhausted")
	ErrUnsupportedChannels     = errors.New("unsupported channel count")
)

// IsSwapchainStale reports whether err asks for a swapchain rebuild rather than a crash.
func IsSwapchainStale(err error) bool {
	return errors.Is(err, ErrSwapchainOutOfDate) || errors.Is(err, ErrSwapchainSuboptimal)
}
