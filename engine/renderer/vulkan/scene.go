package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// LoadScene uploads the scene's textures into textures, builds one renderable
// per mesh and records the command buffers. Textures with an unsupported
// channel count are skipped. On any other failure the renderables built so
// far are released and the command buffers are recorded empty.
func (r *FrameRenderer) LoadScene(scene *metadata.Scene, textures *TextureRegistry) error {
	for _, data := range scene.Textures {
		if _, err := textures.Load(data); err != nil {
			if errors.Is(err, core.ErrUnsupportedChannels) {
				core.LogWarn("Skipping texture: %s", err)
				continue
			}
			return r.abandonScene(err)
		}
	}

	for _, mesh := range scene.Meshes {
		if _, err := r.NewRenderable(mesh, textures); err != nil {
			return r.abandonScene(err)
		}
	}

	if err := r.BuildCommandBuffers(); err != nil {
		return err
	}
	core.LogInfo("Scene uploaded: %d renderables, %d textures.", len(r.renderables), textures.Len())
	return nil
}

// ReloadScene replaces whatever is on the GPU with scene. The descriptor pool
// is recreated for the new mesh count.
func (r *FrameRenderer) ReloadScene(scene *metadata.Scene, textures *TextureRegistry) error {
	if err := r.context.WaitIdle(); err != nil {
		return err
	}
	r.DestroyRenderables()
	textures.DestroyAll()

	if err := r.CreateDescriptorPool(uint32(len(scene.Meshes))); err != nil {
		return err
	}
	return r.LoadScene(scene, textures)
}

func (r *FrameRenderer) abandonScene(cause error) error {
	if err := r.context.WaitIdle(); err != nil {
		return errors.CombineErrors(cause, err)
	}
	r.DestroyRenderables()
	if err := r.recordCommandBuffers(); err != nil {
		return errors.CombineErrors(cause, err)
	}
	return cause
}
