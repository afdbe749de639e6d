// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// PipelineBundle is the graphics pipeline together with the objects
// it was built from. The shader modules live as long as the pipeline.
type PipelineBundle struct {
	Layout        Handle
	Pipeline      Handle
	ShaderModules []Handle

	// Viewport and Scissor cover the whole swapchain extent,
	// callers set them at record time
	Viewport Viewport
	Scissor  Rect2D
}

const shaderEntryPoint = "main"

// ReferenceViewport covers extent with the full depth range
func ReferenceViewport(extent Extent2D) (Viewport, Rect2D) {
	viewport := Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := Rect2D{
		Extent: extent,
	}
	return viewport, scissor
}

// GraphicsPipelineDescFor describes a pipeline with no vertex input that
// draws triangle lists with source-over alpha blending into the first
// subpass of renderPass
func GraphicsPipelineDescFor(vertex, fragment, layout, renderPass Handle, extent Extent2D) GraphicsPipelineDesc {
	viewport, scissor := ReferenceViewport(extent)
	return GraphicsPipelineDesc{
		Stages: []ShaderStage{
			{Stage: ShaderStageVertex, Module: vertex, Entry: shaderEntryPoint},
			{Stage: ShaderStageFragment, Module: fragment, Entry: shaderEntryPoint},
		},
		Topology:         PrimitiveTopologyTriangleList,
		PrimitiveRestart: false,
		Viewport:         viewport,
		Scissor:          scissor,
		DynamicStates:    []DynamicState{DynamicStateViewport, DynamicStateScissor},
		PolygonMode:      PolygonModeFill,
		CullMode:         CullModeBack,
		FrontFace:        FrontFaceClockwise,
		LineWidth:        1,
		Samples:          1,
		Blend: ColorBlendAttachment{
			Enable:         true,
			SrcColorFactor: BlendFactorSrcAlpha,
			DstColorFactor: BlendFactorOneMinusSrcAlpha,
			ColorOp:        BlendOpAdd,
			SrcAlphaFactor: BlendFactorOne,
			DstAlphaFactor: BlendFactorZero,
			AlphaOp:        BlendOpAdd,
			WriteMask:      ColorComponentAll,
		},
		LogicOpEnable:  false,
		LogicOp:        LogicOpCopy,
		BlendConstants: mgl32.Vec4{0, 0, 0, 0},
		Layout:         layout,
		RenderPass:     renderPass,
		Subpass:        0,
	}
}

func (b *Backend) loadShader(files FileProvider, name string) ([]uint32, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, b.fail(StagePipeline, ErrShaderLoad, fmt.Errorf("%s: %w", name, err))
	}
	code, err := CodeWords(data)
	if err != nil {
		return nil, b.fail(StagePipeline, ErrShaderModuleCreation, fmt.Errorf("%s: %w", name, err))
	}
	return code, nil
}

func (b *Backend) createShaderModule(kind ShaderType, name string, code []uint32) (Handle, error) {
	device := b.device.Device
	module, err := b.driver.CreateShaderModule(device, code)
	if err != nil {
		return nil, b.fail(StagePipeline, ErrShaderModuleCreation, fmt.Errorf("%s: %w", name, err))
	}
	b.releases.push(kind.String()+"_module", ReleaseFunc(func() {
		b.driver.DestroyShaderModule(device, module)
	}))
	return module, nil
}

// CreatePipeline loads both shader stages from files and builds the
// pipeline layout and graphics pipeline on top of the render pass
func (b *Backend) CreatePipeline(files FileProvider) error {
	b.expect(StateRenderPassReady, "CreatePipeline")
	log := b.log.WithField("stage", StagePipeline)
	device := b.device.Device
	cfg := b.cfg.Renderer

	/* Shaders */
	vertexCode, err := b.loadShader(files, cfg.VertexShader)
	if err != nil {
		return err
	}
	fragmentCode, err := b.loadShader(files, cfg.FragmentShader)
	if err != nil {
		return err
	}
	vertex, err := b.createShaderModule(VertexShaderType, cfg.VertexShader, vertexCode)
	if err != nil {
		return err
	}
	fragment, err := b.createShaderModule(FragmentShaderType, cfg.FragmentShader, fragmentCode)
	if err != nil {
		return err
	}

	/* Pipeline Layout */
	layout, err := b.driver.CreatePipelineLayout(device, PipelineLayoutDesc{})
	if err != nil {
		return b.fail(StagePipeline, ErrPipelineLayoutCreation, err)
	}
	b.releases.push("pipeline_layout", ReleaseFunc(func() {
		b.driver.DestroyPipelineLayout(device, layout)
	}))

	/* Pipeline */
	desc := GraphicsPipelineDescFor(vertex, fragment, layout, b.renderPass, b.swapchain.Extent)
	pipeline, err := b.driver.CreateGraphicsPipeline(device, desc)
	if err != nil {
		return b.fail(StagePipeline, ErrPipelineCreation, err)
	}
	b.releases.push("pipeline", ReleaseFunc(func() {
		b.driver.DestroyPipeline(device, pipeline)
		b.pipeline = nil
	}))

	b.pipeline = &PipelineBundle{
		Layout:        layout,
		Pipeline:      pipeline,
		ShaderModules: []Handle{vertex, fragment},
		Viewport:      desc.Viewport,
		Scissor:       desc.Scissor,
	}
	log.Info("graphics pipeline created")

	b.state = StatePipelineReady
	return nil
}
