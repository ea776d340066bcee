package vulkan

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// Texture is a sampled image registered under its asset name.
type Texture struct {
	ID    uuid.UUID
	Name  string
	Image *VulkanImage
}

// TextureRegistry resolves texture names to GPU images.
type TextureRegistry struct {
	context  *GraphicsContext
	textures map[string]*Texture
}

func NewTextureRegistry(context *GraphicsContext) *TextureRegistry {
	return &TextureRegistry{
		context:  context,
		textures: make(map[string]*Texture),
	}
}

// Load uploads data and registers it under data.Name, replacing any texture
// previously registered with that name.
func (r *TextureRegistry) Load(data *metadata.TextureData) (*Texture, error) {
	pixels, err := metadata.NormalizeRGBA(data)
	if err != nil {
		return nil, err
	}
	image, err := CreateTextureImage(r.context, data.Width, data.Height, pixels)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %q", data.Name)
	}

	if previous, ok := r.textures[data.Name]; ok {
		previous.Image.Destroy(r.context)
	}
	texture := &Texture{
		ID:    uuid.New(),
		Name:  data.Name,
		Image: image,
	}
	r.textures[data.Name] = texture
	core.LogDebug("Texture '%s' loaded (%dx%d).", data.Name, data.Width, data.Height)
	return texture, nil
}

func (r *TextureRegistry) Get(name string) (*Texture, error) {
	texture, ok := r.textures[name]
	if !ok {
		return nil, errors.Wrapf(core.ErrMissingTexture, "%q", name)
	}
	return texture, nil
}

func (r *TextureRegistry) Names() []string {
	names := make([]string, 0, len(r.textures))
	for name := range r.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *TextureRegistry) Len() int {
	return len(r.textures)
}

func (r *TextureRegistry) DestroyAll() {
	for name, texture := range r.textures {
		texture.Image.Destroy(r.context)
		delete(r.textures, name)
	}
}
