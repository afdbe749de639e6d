// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"errors"

	"github.com/devblok/potentia/core"
	vk "github.com/vulkan-go/vulkan"
)

// CreateSwapchain implements interface
func (Driver) CreateSwapchain(device core.Handle, desc core.SwapchainDesc) (core.Handle, error) {
	sci := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               desc.Surface.(vk.Surface),
		MinImageCount:         desc.MinImageCount,
		ImageFormat:           vk.Format(desc.Format.Format),
		ImageColorSpace:       vk.ColorSpace(desc.Format.ColorSpace),
		ImageExtent:           extentTo(desc.Extent),
		ImageArrayLayers:      desc.ArrayLayers,
		ImageUsage:            vk.ImageUsageFlags(desc.Usage),
		ImageSharingMode:      vk.SharingMode(desc.SharingMode),
		QueueFamilyIndexCount: uint32(len(desc.QueueFamilies)),
		PQueueFamilyIndices:   desc.QueueFamilies,
		PreTransform:          vk.SurfaceTransformFlagBits(desc.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaFlagBits(desc.CompositeAlpha),
		PresentMode:           vk.PresentMode(desc.PresentMode),
		Clipped:               bool32(desc.Clipped),
		OldSwapchain:          vk.NullSwapchain,
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device.(vk.Device), &sci, nil, &swapchain)); err != nil {
		return nil, errors.New("vk.CreateSwapchain(): " + err.Error())
	}
	return swapchain, nil
}

// SwapchainImages implements interface
func (Driver) SwapchainImages(device, swapchain core.Handle) ([]core.Handle, error) {
	dev, sc := device.(vk.Device), swapchain.(vk.Swapchain)
	var imageCount uint32
	if err := vk.Error(vk.GetSwapchainImages(dev, sc, &imageCount, nil)); err != nil {
		return nil, errors.New("vk.GetSwapchainImages(): " + err.Error())
	}
	swapchainImages := make([]vk.Image, imageCount)
	if err := vk.Error(vk.GetSwapchainImages(dev, sc, &imageCount, swapchainImages)); err != nil {
		return nil, errors.New("vk.GetSwapchainImages(): " + err.Error())
	}
	images := make([]core.Handle, imageCount)
	for i := range images {
		images[i] = swapchainImages[i]
	}
	return images, nil
}

// DestroySwapchain implements interface
func (Driver) DestroySwapchain(device, swapchain core.Handle) {
	vk.DestroySwapchain(device.(vk.Device), swapchain.(vk.Swapchain), nil)
}

// CreateImageView implements interface
func (Driver) CreateImageView(device core.Handle, desc core.ImageViewDesc) (core.Handle, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    desc.Image.(vk.Image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(desc.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(desc.Aspect),
			LevelCount: desc.MipLevels,
			LayerCount: desc.ArrayLayers,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(device.(vk.Device), &ivci, nil, &view)); err != nil {
		return nil, errors.New("vk.CreateImageView(): " + err.Error())
	}
	return view, nil
}

// DestroyImageView implements interface
func (Driver) DestroyImageView(device, view core.Handle) {
	vk.DestroyImageView(device.(vk.Device), view.(vk.ImageView), nil)
}

// CreateRenderPass implements interface
func (Driver) CreateRenderPass(device core.Handle, desc core.RenderPassDesc) (core.Handle, error) {
	attachments := make([]vk.AttachmentDescription, len(desc.Attachments))
	for i, a := range desc.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}

	subpasses := make([]vk.SubpassDescription, len(desc.Subpasses))
	for i, s := range desc.Subpasses {
		refs := make([]vk.AttachmentReference, len(s.ColorAttachments))
		for j, ref := range s.ColorAttachments {
			refs[j] = vk.AttachmentReference{
				Attachment: ref.Attachment,
				Layout:     vk.ImageLayout(ref.Layout),
			}
		}
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(refs)),
			PColorAttachments:    refs,
		}
	}

	dependencies := make([]vk.SubpassDependency, len(desc.Dependencies))
	for i, d := range desc.Dependencies {
		dependencies[i] = vk.SubpassDependency{
			SrcSubpass:    d.SrcSubpass,
			DstSubpass:    d.DstSubpass,
			SrcStageMask:  vk.PipelineStageFlags(d.SrcStageMask),
			DstStageMask:  vk.PipelineStageFlags(d.DstStageMask),
			SrcAccessMask: vk.AccessFlags(d.SrcAccessMask),
			DstAccessMask: vk.AccessFlags(d.DstAccessMask),
		}
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device.(vk.Device), &rpci, nil, &renderPass)); err != nil {
		return nil, errors.New("vk.CreateRenderPass(): " + err.Error())
	}
	return renderPass, nil
}

// DestroyRenderPass implements interface
func (Driver) DestroyRenderPass(device, renderPass core.Handle) {
	vk.DestroyRenderPass(device.(vk.Device), renderPass.(vk.RenderPass), nil)
}

// CreateFramebuffer implements interface
func (Driver) CreateFramebuffer(device core.Handle, desc core.FramebufferDesc) (core.Handle, error) {
	views := make([]vk.ImageView, len(desc.Attachments))
	for i, a := range desc.Attachments {
		views[i] = a.(vk.ImageView)
	}
	fbci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      desc.RenderPass.(vk.RenderPass),
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           desc.Extent.Width,
		Height:          desc.Extent.Height,
		Layers:          desc.Layers,
	}

	var framebuffer vk.Framebuffer
	if err := vk.Error(vk.CreateFramebuffer(device.(vk.Device), &fbci, nil, &framebuffer)); err != nil {
		return nil, errors.New("vk.CreateFramebuffer(): " + err.Error())
	}
	return framebuffer, nil
}

// DestroyFramebuffer implements interface
func (Driver) DestroyFramebuffer(device, framebuffer core.Handle) {
	vk.DestroyFramebuffer(device.(vk.Device), framebuffer.(vk.Framebuffer), nil)
}

// CreateShaderModule implements interface
func (Driver) CreateShaderModule(device core.Handle, code []uint32) (core.Handle, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device.(vk.Device), &smci, nil, &module)); err != nil {
		return nil, errors.New("vk.CreateShaderModule(): " + err.Error())
	}
	return module, nil
}

// DestroyShaderModule implements interface
func (Driver) DestroyShaderModule(device, module core.Handle) {
	vk.DestroyShaderModule(device.(vk.Device), module.(vk.ShaderModule), nil)
}

// CreatePipelineLayout implements interface
func (Driver) CreatePipelineLayout(device core.Handle, desc core.PipelineLayoutDesc) (core.Handle, error) {
	plci := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         desc.SetLayoutCount,
		PushConstantRangeCount: desc.PushConstantRangeCount,
	}

	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(device.(vk.Device), &plci, nil, &layout)); err != nil {
		return nil, errors.New("vk.CreatePipelineLayout(): " + err.Error())
	}
	return layout, nil
}

// DestroyPipelineLayout implements interface
func (Driver) DestroyPipelineLayout(device, layout core.Handle) {
	vk.DestroyPipelineLayout(device.(vk.Device), layout.(vk.PipelineLayout), nil)
}

// CreateGraphicsPipeline implements interface
func (Driver) CreateGraphicsPipeline(device core.Handle, desc core.GraphicsPipelineDesc) (core.Handle, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(desc.Stages))
	for i, s := range desc.Stages {
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFlagBits(s.Stage),
			Module: s.Module.(vk.ShaderModule),
			PName:  safeString(s.Entry),
		}
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(desc.Topology),
		PrimitiveRestartEnable: bool32(desc.PrimitiveRestart),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			X:        desc.Viewport.X,
			Y:        desc.Viewport.Y,
			Width:    desc.Viewport.Width,
			Height:   desc.Viewport.Height,
			MinDepth: desc.Viewport.MinDepth,
			MaxDepth: desc.Viewport.MaxDepth,
		}},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{{
			Offset: vk.Offset2D{X: desc.Scissor.X, Y: desc.Scissor.Y},
			Extent: extentTo(desc.Scissor.Extent),
		}},
	}

	dynamicStates := make([]vk.DynamicState, len(desc.DynamicStates))
	for i, s := range desc.DynamicStates {
		dynamicStates[i] = vk.DynamicState(s)
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	rasterizationState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonMode(desc.PolygonMode),
		CullMode:                vk.CullModeFlags(desc.CullMode),
		FrontFace:               vk.FrontFace(desc.FrontFace),
		DepthBiasEnable:         vk.False,
		LineWidth:               desc.LineWidth,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCountFlagBits(desc.Samples),
		SampleShadingEnable:  vk.False,
	}

	blend := desc.Blend
	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   bool32(desc.LogicOpEnable),
		LogicOp:         vk.LogicOp(desc.LogicOp),
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			BlendEnable:         bool32(blend.Enable),
			SrcColorBlendFactor: vk.BlendFactor(blend.SrcColorFactor),
			DstColorBlendFactor: vk.BlendFactor(blend.DstColorFactor),
			ColorBlendOp:        vk.BlendOp(blend.ColorOp),
			SrcAlphaBlendFactor: vk.BlendFactor(blend.SrcAlphaFactor),
			DstAlphaBlendFactor: vk.BlendFactor(blend.DstAlphaFactor),
			AlphaBlendOp:        vk.BlendOp(blend.AlphaOp),
			ColorWriteMask:      vk.ColorComponentFlags(blend.WriteMask),
		}},
		BlendConstants: [4]float32(desc.BlendConstants),
	}

	pipelineCreateInfos := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizationState,
		PMultisampleState:   &multisampleState,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		Layout:              desc.Layout.(vk.PipelineLayout),
		RenderPass:          desc.RenderPass.(vk.RenderPass),
		Subpass:             desc.Subpass,
	}}

	pipelines := make([]vk.Pipeline, 1)
	if err := vk.Error(vk.CreateGraphicsPipelines(device.(vk.Device), nil,
		uint32(len(pipelineCreateInfos)), pipelineCreateInfos, nil, pipelines)); err != nil {
		return nil, errors.New("vk.CreateGraphicsPipelines(): " + err.Error())
	}
	return pipelines[0], nil
}

// DestroyPipeline implements interface
func (Driver) DestroyPipeline(device, pipeline core.Handle) {
	vk.DestroyPipeline(device.(vk.Device), pipeline.(vk.Pipeline), nil)
}
