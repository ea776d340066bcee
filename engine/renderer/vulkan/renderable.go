package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// Renderable is uploaded geometry plus one descriptor set per swapchain image.
type Renderable struct {
	ID             uuid.UUID
	Mesh           *metadata.MeshData
	Texture        *Texture
	VertexBuffer   *VulkanBuffer
	IndexBuffer    *VulkanBuffer
	IndexCount     uint32
	DescriptorSets []vk.DescriptorSet
}

// NewRenderable uploads mesh and binds it to its texture. The renderable is
// drawn from the next BuildCommandBuffers on.
func (r *FrameRenderer) NewRenderable(mesh *metadata.MeshData, textures *TextureRegistry) (*Renderable, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.Newf("mesh %q has no geometry", mesh.Name)
	}
	texture, err := textures.Get(mesh.TextureName)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q", mesh.Name)
	}

	context := r.context
	renderable := &Renderable{
		ID:         uuid.New(),
		Mesh:       mesh,
		Texture:    texture,
		IndexCount: uint32(len(mesh.Indices)),
	}

	renderable.VertexBuffer, err = UploadViaStaging(context, mesh.VertexBytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q vertices", mesh.Name)
	}
	renderable.IndexBuffer, err = UploadViaStaging(context, mesh.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		renderable.Destroy(context)
		return nil, errors.Wrapf(err, "mesh %q indices", mesh.Name)
	}

	if err := r.bindRenderable(renderable); err != nil {
		renderable.Destroy(context)
		return nil, errors.Wrapf(err, "mesh %q", mesh.Name)
	}

	r.renderables = append(r.renderables, renderable)
	return renderable, nil
}

// bindRenderable allocates one descriptor set per swapchain image from the
// current pool and points each at that image's uniform and the texture.
func (r *FrameRenderer) bindRenderable(renderable *Renderable) error {
	sets, err := AllocateDescriptorSets(r.context, r.DescriptorPool, r.SetLayout, uint32(len(r.Uniforms)))
	if err != nil {
		return err
	}
	for i, set := range sets {
		WriteDrawableDescriptors(r.context, set, r.Uniforms[i], renderable.Texture.Image)
	}
	renderable.DescriptorSets = sets
	return nil
}

// Destroy releases the geometry buffers. Descriptor sets go back with the pool.
func (rb *Renderable) Destroy(context *GraphicsContext) {
	rb.VertexBuffer.Destroy(context)
	rb.IndexBuffer.Destroy(context)
	rb.DescriptorSets = nil
}
