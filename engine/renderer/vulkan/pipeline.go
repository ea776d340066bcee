package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
}

type VulkanPipelineConfig struct {
	/** @brief A pointer to the renderpass to associate with the pipeline. */
	Renderpass *VulkanRenderpass
	/** @brief The stride of the vertex data to be used (ex: sizeof(Vertex)) */
	Stride uint32
	/** @brief An array of attributes. */
	Attributes []vk.VertexInputAttributeDescription
	/** @brief An array of descriptor set layouts. */
	DescriptorSetLayouts []vk.DescriptorSetLayout
	/** @brief An array of stages. */
	Stages []vk.PipelineShaderStageCreateInfo
	/** @brief The fixed viewport. */
	Viewport vk.Viewport
	/** @brief The fixed scissor. */
	Scissor vk.Rect2D
	/** @brief The face cull mode. */
	CullMode vk.CullModeFlags
	/** @brief Indicates if this pipeline should use wireframe mode. */
	IsWireframe bool
	DepthTest   bool
	DepthWrite  bool
}

// vertexAttributes describes metadata.Vertex: position, color, texcoord.
func vertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: metadata.VertexPositionOffset},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: metadata.VertexColorOffset},
		{Binding: 0, Location: 2, Format: vk.FormatR32g32Sfloat, Offset: metadata.VertexTexCoordOffset},
	}
}

func NewGraphicsPipeline(context *GraphicsContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	outPipeline := &VulkanPipeline{}
	device := context.Device.LogicalDevice

	// Viewport state
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{config.Viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{config.Scissor},
	}

	// Rasterizer
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                config.CullMode,
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}
	if config.IsWireframe {
		rasterizerCreateInfo.PolygonMode = vk.PolygonModeLine
	}

	// Multisampling.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	// Depth and stencil testing.
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.False,
		DepthWriteEnable:      vk.False,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}
	if config.DepthTest {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthCompareOp = vk.CompareOpLess
	}
	if config.DepthWrite {
		depthStencil.DepthWriteEnable = vk.True
	}

	// Blending stays off; the color is written as is.
	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	// Vertex input
	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0, // Binding index
		Stride:    config.Stride,
		InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
	}

	// Attributes
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	// Pipeline layout
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(config.DescriptorSetLayouts)),
		PSetLayouts:    config.DescriptorSetLayouts,
	}

	layout, err := context.driver.CreatePipelineLayout(device, &pipelineLayoutCreateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pipeline layout")
	}
	outPipeline.PipelineLayout = layout

	// Pipeline create
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		Layout:              outPipeline.PipelineLayout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	handle, err := context.driver.CreateGraphicsPipeline(device, &pipelineCreateInfo)
	if err != nil {
		outPipeline.Destroy(context)
		return nil, errors.Wrap(err, "failed to create graphics pipeline")
	}
	outPipeline.Handle = handle

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func (pipeline *VulkanPipeline) Destroy(context *GraphicsContext) {
	if pipeline == nil {
		return
	}
	// Destroy pipeline
	if pipeline.Handle != vk.NullPipeline {
		context.driver.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle)
		pipeline.Handle = vk.NullPipeline
	}
	// Destroy layout
	if pipeline.PipelineLayout != vk.NullPipelineLayout {
		context.driver.DestroyPipelineLayout(context.Device.LogicalDevice, pipeline.PipelineLayout)
		pipeline.PipelineLayout = vk.NullPipelineLayout
	}
}

func (pipeline *VulkanPipeline) Bind(context *GraphicsContext, commandBuffer *VulkanCommandBuffer) {
	context.driver.CmdBindPipeline(commandBuffer.Handle, pipeline.Handle)
}
