package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

const (
	uniformBinding = 0
	samplerBinding = 1
)

// DescriptorSetLayoutCreate builds the per-drawable layout: the transform
// uniform for the vertex stage and the texture sampler for the fragment stage.
func DescriptorSetLayoutCreate(context *GraphicsContext) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         uniformBinding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         samplerBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	layout, err := context.driver.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create descriptor set layout")
	}
	return layout, nil
}

// DescriptorPoolCreate sizes the pool for modelCount drawables, each holding
// one set per swapchain image.
func DescriptorPoolCreate(context *GraphicsContext, modelCount uint32) (vk.DescriptorPool, error) {
	if modelCount == 0 {
		modelCount = 1
	}
	count := modelCount * context.ImageCount()
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: count},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: count},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       count,
	}
	pool, err := context.driver.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create descriptor pool")
	}
	return pool, nil
}

// AllocateDescriptorSets allocates count sets sharing one layout.
func AllocateDescriptorSets(context *GraphicsContext, pool vk.DescriptorPool, layout vk.DescriptorSetLayout, count uint32) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}
	sets, err := context.driver.AllocateDescriptorSets(context.Device.LogicalDevice, pool, layouts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate descriptor sets")
	}
	return sets, nil
}

// WriteDrawableDescriptors points set at the uniform buffer and the texture.
func WriteDrawableDescriptors(context *GraphicsContext, set vk.DescriptorSet, uniform *VulkanBuffer, texture *VulkanImage) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: uniform.Handle,
		Offset: 0,
		Range:  uniform.Size,
	}
	imageInfo := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   texture.View,
		Sampler:     texture.Sampler,
	}
	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uniformBinding,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      samplerBinding,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
		},
	}
	context.driver.UpdateDescriptorSets(context.Device.LogicalDevice, writes)
}
