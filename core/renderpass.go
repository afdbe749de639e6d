// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "fmt"

// RenderPassDescFor describes a single subpass drawing into one color
// attachment that ends up ready for presentation. The external
// dependency keeps the first color write from racing the acquire.
func RenderPassDescFor(format Format) RenderPassDesc {
	return RenderPassDesc{
		Attachments: []AttachmentDesc{{
			Format:         format,
			Samples:        1,
			LoadOp:         LoadOpClear,
			StoreOp:        StoreOpStore,
			StencilLoadOp:  LoadOpDontCare,
			StencilStoreOp: StoreOpDontCare,
			InitialLayout:  LayoutUndefined,
			FinalLayout:    LayoutPresentSrc,
		}},
		Subpasses: []SubpassDesc{{
			ColorAttachments: []AttachmentRef{{
				Attachment: 0,
				Layout:     LayoutColorAttachmentOptimal,
			}},
		}},
		Dependencies: []SubpassDependency{{
			SrcSubpass:    SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  PipelineStageColorAttachmentOutput,
			DstStageMask:  PipelineStageColorAttachmentOutput,
			SrcAccessMask: 0,
			DstAccessMask: AccessColorAttachmentWrite,
		}},
	}
}

// CreateRenderPass creates the render pass and a framebuffer for every image view
func (b *Backend) CreateRenderPass() error {
	b.expect(StateSwapchainReady, "CreateRenderPass")
	log := b.log.WithField("stage", StageRenderPass)
	device := b.device.Device

	renderPass, err := b.driver.CreateRenderPass(device, RenderPassDescFor(b.swapchain.Format.Format))
	if err != nil {
		return b.fail(StageRenderPass, ErrRenderPassCreation, err)
	}
	b.renderPass = renderPass
	b.releases.push("render_pass", ReleaseFunc(func() {
		b.driver.DestroyRenderPass(device, renderPass)
		b.renderPass = nil
	}))

	/* Framebuffers */
	b.framebuffers = make([]Handle, 0, len(b.imageViews))
	for i, view := range b.imageViews {
		framebuffer, err := b.driver.CreateFramebuffer(device, FramebufferDesc{
			RenderPass:  renderPass,
			Attachments: []Handle{view},
			Extent:      b.swapchain.Extent,
			Layers:      1,
		})
		if err != nil {
			return b.fail(StageRenderPass, ErrFramebufferCreation, fmt.Errorf("view %d: %w", i, err))
		}
		b.framebuffers = append(b.framebuffers, framebuffer)
		b.releases.push("framebuffer", ReleaseFunc(func() {
			b.driver.DestroyFramebuffer(device, framebuffer)
			b.framebuffers = b.framebuffers[:len(b.framebuffers)-1]
		}))
	}
	log.WithField("framebuffers", len(b.framebuffers)).Info("render pass created")

	b.state = StateRenderPassReady
	return nil
}
