package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage wraps SPIR-V bytecode in a module for the given stage.
func NewShaderStage(context *GraphicsContext, code []byte, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Newf("invalid SPIR-V size %d", len(code))
	}
	handle, err := context.driver.CreateShaderModule(context.Device.LogicalDevice, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create shader module")
	}
	return &VulkanShaderStage{
		Handle: handle,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: handle,
			PName:  VulkanSafeString("main"),
		},
	}, nil
}

func (s *VulkanShaderStage) Destroy(context *GraphicsContext) {
	if s != nil && s.Handle != vk.NullShaderModule {
		context.driver.DestroyShaderModule(context.Device.LogicalDevice, s.Handle)
		s.Handle = vk.NullShaderModule
	}
}
