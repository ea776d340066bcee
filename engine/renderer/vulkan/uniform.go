package vulkan

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// UniformBufferObject matches the vertex shader's transform block.
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

const uniformBufferSize = vk.DeviceSize(3 * 16 * 4)

func (u *UniformBufferObject) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, uniformBufferSize))
	_ = binary.Write(buf, binary.LittleEndian, u)
	return buf.Bytes()
}

func createUniformBuffers(context *GraphicsContext, count uint32) ([]*VulkanBuffer, error) {
	buffers := make([]*VulkanBuffer, 0, count)
	for i := uint32(0); i < count; i++ {
		buffer, err := CreateBuffer(context, uniformBufferSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), hostVisibleCoherent)
		if err != nil {
			for _, b := range buffers {
				b.Destroy(context)
			}
			return nil, errors.Wrap(err, "uniform buffer")
		}
		buffers = append(buffers, buffer)
	}
	return buffers, nil
}

// UpdateUniform writes the camera transform into the uniform buffer that the
// command buffer of imageIndex reads.
func (r *FrameRenderer) UpdateUniform(imageIndex uint32) error {
	if int(imageIndex) >= len(r.Uniforms) {
		return errors.Newf("no uniform buffer for image %d", imageIndex)
	}
	ubo := UniformBufferObject{
		Model: mgl32.Ident4(),
		View:  r.camera.View(),
		Proj:  r.camera.Projection(),
	}
	return r.Uniforms[imageIndex].LoadData(r.context, 0, ubo.Bytes())
}
