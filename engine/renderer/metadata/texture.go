package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
)

/** @brief The texture used by meshes without a diffuse map. */
const DEFAULT_TEXTURE_NAME string = "white.png"

// TextureData is decoded pixel data, row-major, Channels bytes per pixel.
type TextureData struct {
	Name     string
	Width    uint32
	Height   uint32
	Channels uint32
	Pixels   []byte
}

// NormalizeRGBA returns the pixels with four channels. RGB input gets an
// opaque alpha; anything other than 3 or 4 channels is rejected.
func NormalizeRGBA(tex *TextureData) ([]byte, error) {
	pixelCount := int(tex.Width) * int(tex.Height)
	if len(tex.Pixels) != pixelCount*int(tex.Channels) {
		return nil, errors.Newf("texture %q: %d bytes for %dx%dx%d", tex.Name, len(tex.Pixels), tex.Width, tex.Height, tex.Channels)
	}

	switch tex.Channels {
	case 4:
		return tex.Pixels, nil
	case 3:
		out := make([]byte, pixelCount*4)
		for i := 0; i < pixelCount; i++ {
			copy(out[i*4:i*4+3], tex.Pixels[i*3:i*3+3])
			out[i*4+3] = 0xff
		}
		return out, nil
	}
	return nil, errors.Wrapf(core.ErrUnsupportedChannels, "texture %q has %d channels", tex.Name, tex.Channels)
}
