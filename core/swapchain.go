// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Swapchain is the created swapchain with the parameters it was made with
type Swapchain struct {
	Handle      Handle
	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent2D
	Images      []Handle
}

// ChooseSurfaceFormat returns preferred when formats contains it exactly,
// otherwise the first offered format.
func ChooseSurfaceFormat(formats []SurfaceFormat, preferred SurfaceFormat) (SurfaceFormat, error) {
	if len(formats) == 0 {
		return SurfaceFormat{}, errors.New("surface offers no formats")
	}
	for _, f := range formats {
		if f == preferred {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode prefers mailbox and falls back to fifo,
// which every implementation supports
func ChoosePresentMode(modes []PresentMode) PresentMode {
	for _, mode := range modes {
		if mode == PresentModeMailbox {
			return mode
		}
	}
	return PresentModeFifo
}

// ChooseExtent uses the surface's current extent unless the surface
// leaves the choice to the application, in which case the framebuffer
// size is clamped into the allowed range.
func ChooseExtent(caps SurfaceCapabilities, width, height uint32) Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ImageCount asks for one image over the minimum, within the maximum if there is one
func ImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// SwapchainDescFor fills in a swapchain description for a surface
// presented from the given queue families
func SwapchainDescFor(surface Handle, support SwapchainSupport, indices QueueFamilyIndices,
	format SurfaceFormat, mode PresentMode, extent Extent2D) SwapchainDesc {
	desc := SwapchainDesc{
		Surface:        surface,
		MinImageCount:  ImageCount(support.Capabilities),
		Format:         format,
		Extent:         extent,
		ArrayLayers:    1,
		Usage:          ImageUsageColorAttachment,
		SharingMode:    SharingExclusive,
		PreTransform:   support.Capabilities.CurrentTransform,
		CompositeAlpha: CompositeAlphaOpaque,
		PresentMode:    mode,
		Clipped:        true,
	}
	if indices.Graphics.Index != indices.Present.Index {
		desc.SharingMode = SharingConcurrent
		desc.QueueFamilies = []uint32{indices.Graphics.Index, indices.Present.Index}
	}
	return desc
}

// CreateSwapchain creates the swapchain and one color view per image
func (b *Backend) CreateSwapchain() error {
	b.expect(StateLogicalDeviceReady, "CreateSwapchain")
	log := b.log.WithField("stage", StageSwapchain)
	candidate := b.physicalDevice
	device := b.device.Device

	// Capabilities may have changed since selection, the window could have been resized.
	support, err := QuerySwapchainSupport(b.driver, candidate.Device, b.surface)
	if err != nil {
		return b.fail(StageSwapchain, ErrSwapchainCreation, err)
	}
	format, err := ChooseSurfaceFormat(support.Formats, b.cfg.Renderer.PreferredFormat)
	if err != nil {
		return b.fail(StageSwapchain, ErrSwapchainCreation, err)
	}
	mode := ChoosePresentMode(support.PresentModes)
	width, height := b.window.FramebufferSize()
	extent := ChooseExtent(support.Capabilities, width, height)

	/* Swapchain */
	desc := SwapchainDescFor(b.surface, support, candidate.Indices, format, mode, extent)
	swapchain, err := b.driver.CreateSwapchain(device, desc)
	if err != nil {
		return b.fail(StageSwapchain, ErrSwapchainCreation, err)
	}
	b.releases.push("swapchain", ReleaseFunc(func() {
		b.driver.DestroySwapchain(device, swapchain)
		b.swapchain = nil
	}))

	images, err := b.driver.SwapchainImages(device, swapchain)
	if err != nil {
		return b.fail(StageSwapchain, ErrSwapchainCreation, err)
	}
	b.swapchain = &Swapchain{
		Handle:      swapchain,
		Format:      format,
		PresentMode: mode,
		Extent:      extent,
		Images:      images,
	}

	/* Image views */
	b.imageViews = make([]Handle, 0, len(images))
	for i, image := range images {
		view, err := b.driver.CreateImageView(device, ImageViewDesc{
			Image:       image,
			Format:      format.Format,
			Aspect:      ImageAspectColor,
			MipLevels:   1,
			ArrayLayers: 1,
		})
		if err != nil {
			return b.fail(StageSwapchain, ErrImageViewCreation, fmt.Errorf("image %d: %w", i, err))
		}
		b.imageViews = append(b.imageViews, view)
		b.releases.push("image_view", ReleaseFunc(func() {
			b.driver.DestroyImageView(device, view)
			b.imageViews = b.imageViews[:len(b.imageViews)-1]
		}))
	}

	log.WithFields(logrus.Fields{
		"format":  format.Format,
		"present": mode,
		"width":   extent.Width,
		"height":  extent.Height,
		"images":  len(images),
	}).Info("swapchain created")

	b.state = StateSwapchainReady
	return nil
}
