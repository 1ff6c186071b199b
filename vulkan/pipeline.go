package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

func (d *Device) createPipelineLayout(layouts []core.BindGroupLayout) (vk.PipelineLayout, error) {
	setLayouts := make([]vk.DescriptorSetLayout, 0, len(layouts))
	for _, layout := range layouts {
		bgl, ok := layout.(*BindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("bind group layout from another backend: %w", core.ErrInvalidDescriptor)
		}
		setLayouts = append(setLayouts, bgl.layout)
	}

	plci := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(d.device, &plci, nil, &pipelineLayout)); err != nil {
		return nil, errors.New("vk.CreatePipelineLayout(): " + err.Error())
	}
	return pipelineLayout, nil
}

// defaultVertexLayout is the single-buffer layout assumed when a
// pipeline descriptor carries none: one position-only float32x3
// attribute at location 0.
func defaultVertexLayout() core.VertexBufferLayout {
	return core.VertexBufferLayout{
		ArrayStride: 3 * 4,
		Attributes: []core.VertexAttribute{{
			Format:         core.VertexFormatFloat32x3,
			Offset:         0,
			ShaderLocation: 0,
		}},
	}
}

func vertexInputState(layouts []core.VertexBufferLayout) vk.PipelineVertexInputStateCreateInfo {
	if len(layouts) == 0 {
		layouts = []core.VertexBufferLayout{defaultVertexLayout()}
	}

	var (
		bindings   []vk.VertexInputBindingDescription
		attributes []vk.VertexInputAttributeDescription
	)
	for slot, layout := range layouts {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   uint32(slot),
			Stride:    layout.ArrayStride,
			InputRate: vk.VertexInputRateVertex,
		})
		for _, attr := range layout.Attributes {
			attributes = append(attributes, vk.VertexInputAttributeDescription{
				Binding:  uint32(slot),
				Location: attr.ShaderLocation,
				Format:   toVkVertexFormat(attr.Format),
				Offset:   attr.Offset,
			})
		}
	}
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
}

// CreateRenderPipeline builds a graphics pipeline against the render
// pass shape the descriptor's formats and load/store policy define.
func (d *Device) CreateRenderPipeline(desc *core.RenderPipelineDescriptor) (core.RenderPipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	vertexModule, ok := desc.VertexShader.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("pipeline %q: vertex shader from another backend: %w", desc.Label, core.ErrInvalidDescriptor)
	}

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vertexModule.module,
		PName:  safeString("main"),
	}}
	if desc.FragmentShader != nil {
		fragmentModule, ok := desc.FragmentShader.(*ShaderModule)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: fragment shader from another backend: %w", desc.Label, core.ErrInvalidDescriptor)
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragmentModule.module,
			PName:  safeString("main"),
		})
	}

	key := pipelinePassKey(desc)
	colors := make([]colorAttachmentKey, len(desc.ColorFormats))
	for i, format := range desc.ColorFormats {
		colors[i] = colorAttachmentKey{format: format, loadOp: desc.ColorLoadOp, storeOp: desc.ColorStoreOp}
	}
	renderPass, err := d.renderPassFor(colors, desc.DepthStencilFormat)
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := d.createPipelineLayout(desc.Layouts)
	if err != nil {
		return nil, err
	}

	vertexInput := vertexInputState(desc.VertexLayouts)

	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, len(desc.ColorFormats))
	for i := range blendAttachments {
		blendAttachments[i] = vk.PipelineColorBlendAttachmentState{
			ColorWriteMask: 0xF,
			BlendEnable:    vk.False,
		}
		if desc.BlendEnabled {
			blendAttachments[i].BlendEnable = vk.True
			blendAttachments[i].SrcColorBlendFactor = vk.BlendFactorSrcAlpha
			blendAttachments[i].DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
			blendAttachments[i].ColorBlendOp = vk.BlendOpAdd
			blendAttachments[i].SrcAlphaBlendFactor = vk.BlendFactorOne
			blendAttachments[i].DstAlphaBlendFactor = vk.BlendFactorZero
			blendAttachments[i].AlphaBlendOp = vk.BlendOpAdd
		}
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:             vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:        uint32(len(stages)),
		PStages:           stages,
		PVertexInputState: &vertexInput,
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: toVkTopology(desc.Topology),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    toVkCullMode(desc.CullMode),
			FrontFace:   toVkFrontFace(desc.FrontFace),
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: uint32(len(blendAttachments)),
			PAttachments:    blendAttachments,
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     pipelineLayout,
		RenderPass: renderPass,
	}}

	if desc.DepthStencilFormat != core.TextureFormatUndefined {
		gpci[0].PDepthStencilState = &vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vk.True,
			DepthWriteEnable:      vk.True,
			DepthCompareOp:        vk.CompareOpLess,
			DepthBoundsTestEnable: vk.False,
			Back: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
			StencilTestEnable: vk.False,
			Front: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
		}
	}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(d.device, d.pipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		vk.DestroyPipelineLayout(d.device, pipelineLayout, nil)
		return nil, fmt.Errorf("vk.CreateGraphicsPipelines(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	p := &RenderPipeline{
		label:    desc.Label,
		device:   d,
		pipeline: pipelines[0],
		layout:   pipelineLayout,
		passKey:  key,
	}
	d.track(p)
	return p, nil
}

// RenderPipeline wraps one graphics pipeline and its layout, and
// remembers the render pass shape it was built against.
type RenderPipeline struct {
	label    string
	device   *Device
	pipeline vk.Pipeline
	layout   vk.PipelineLayout
	passKey  renderPassKey

	destroyed bool
}

// Destroy implements interface
func (p *RenderPipeline) Destroy() {
	if p.destroyed || p.device == nil {
		return
	}
	p.destroyed = true
	vk.DestroyPipeline(p.device.device, p.pipeline, nil)
	vk.DestroyPipelineLayout(p.device.device, p.layout, nil)
}

// CreateComputePipeline builds a compute pipeline.
func (d *Device) CreateComputePipeline(desc *core.ComputePipelineDescriptor) (core.ComputePipeline, error) {
	module, ok := desc.Shader.(*ShaderModule)
	if !ok || module == nil {
		return nil, fmt.Errorf("compute pipeline %q: missing shader: %w", desc.Label, core.ErrInvalidDescriptor)
	}

	pipelineLayout, err := d.createPipelineLayout(desc.Layouts)
	if err != nil {
		return nil, err
	}

	cpci := []vk.ComputePipelineCreateInfo{{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: module.module,
			PName:  safeString("main"),
		},
		Layout: pipelineLayout,
	}}

	pipelines := make([]vk.Pipeline, len(cpci))
	if err := vk.Error(vk.CreateComputePipelines(d.device, d.pipelineCache, uint32(len(cpci)), cpci, nil, pipelines)); err != nil {
		vk.DestroyPipelineLayout(d.device, pipelineLayout, nil)
		return nil, fmt.Errorf("vk.CreateComputePipelines(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	p := &ComputePipeline{
		label:    desc.Label,
		device:   d,
		pipeline: pipelines[0],
		layout:   pipelineLayout,
	}
	d.track(p)
	return p, nil
}

// ComputePipeline wraps one compute pipeline and its layout.
type ComputePipeline struct {
	label    string
	device   *Device
	pipeline vk.Pipeline
	layout   vk.PipelineLayout

	destroyed bool
}

// Destroy implements interface
func (p *ComputePipeline) Destroy() {
	if p.destroyed || p.device == nil {
		return
	}
	p.destroyed = true
	vk.DestroyPipeline(p.device.device, p.pipeline, nil)
	vk.DestroyPipelineLayout(p.device.device, p.layout, nil)
}
