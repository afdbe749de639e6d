// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides an SDL window that can present Vulkan output.
package window

import (
	"errors"
	"unsafe"

	"github.com/devblok/potentia/core"
	"github.com/veandco/go-sdl2/sdl"
	vk "github.com/vulkan-go/vulkan"
)

// Init starts the SDL video and event subsystems and loads the Vulkan
// loader. Everything SDL has to run on the main OS thread.
func Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return err
	}
	return nil
}

// Quit unloads the Vulkan loader and shuts SDL down
func Quit() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

// ProcAddr returns the loader's vkGetInstanceProcAddr as loaded by SDL
func ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// New creates a centered Vulkan capable window
func New(title string, width, height int) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, err
	}
	return &Window{window: w}, nil
}

// Window is a core.Window backed by SDL
type Window struct {
	window *sdl.Window
}

var _ core.Window = (*Window)(nil)

// RequiredInstanceExtensions implements interface
func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// FramebufferSize implements interface
func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.window.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

// CreateSurface implements interface
func (w *Window) CreateSurface(instance core.Handle) (core.Handle, error) {
	vkInstance, ok := instance.(vk.Instance)
	if !ok {
		return nil, errors.New("window: instance is not a vk.Instance")
	}
	surface, err := w.window.VulkanCreateSurface(vkInstance)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}

// Destroy destroys the window. Surfaces made for it must be gone by then.
func (w *Window) Destroy() error {
	return w.window.Destroy()
}

// PollQuit drains pending events and reports whether the user asked to quit
func PollQuit() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				return true
			}
		case *sdl.QuitEvent:
			return true
		}
	}
	return false
}
