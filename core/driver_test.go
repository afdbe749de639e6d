// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"fmt"
	"math"
	"os"

	"github.com/devblok/potentia/core"
)

// handle is what the fake driver hands out for every object it creates
type handle struct {
	Kind string
	ID   int
}

// fakeDevice is a physical device as the fake driver reports it
type fakeDevice struct {
	name       string
	families   []core.QueueFamily
	present    []bool
	extensions []string
	caps       core.SurfaceCapabilities
	formats    []core.SurfaceFormat
	modes      []core.PresentMode
}

func goodDevice(name string) *fakeDevice {
	return &fakeDevice{
		name:       name,
		families:   []core.QueueFamily{{Flags: core.QueueGraphicsBit | core.QueueComputeBit, Count: 16}},
		present:    []bool{true},
		extensions: []string{"VK_KHR_maintenance1", core.SwapchainExtension},
		caps: core.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  core.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent: core.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: core.Extent2D{Width: 4096, Height: 4096},
		},
		formats: []core.SurfaceFormat{
			{Format: core.FormatB8G8R8A8Unorm, ColorSpace: core.ColorSpaceSrgbNonlinear},
			{Format: core.FormatR8G8B8A8Srgb, ColorSpace: core.ColorSpaceSrgbNonlinear},
		},
		modes: []core.PresentMode{core.PresentModeFifo, core.PresentModeMailbox},
	}
}

// fakeDriver records every object it creates and destroys. failAt
// makes the n-th call (counting from 1) of an operation fail.
type fakeDriver struct {
	layers  []string
	devices []*fakeDevice
	failAt  map[string]int

	calls     map[string]int
	next      int
	live      map[handle]bool
	created   []handle
	destroyed []handle
	problems  []string

	instanceDesc  core.InstanceDesc
	messengerDesc core.MessengerDesc
	deviceDesc    core.DeviceDesc
	swapchainDesc core.SwapchainDesc
	renderPass    core.RenderPassDesc
	pipeline      core.GraphicsPipelineDesc
	modules       [][]uint32
	supportCalls  int
	waitIdle      int

	// extraImages is how many images the swapchain hands out beyond
	// the requested minimum
	extraImages int
}

func newFakeDriver(devices ...*fakeDevice) *fakeDriver {
	if len(devices) == 0 {
		devices = []*fakeDevice{goodDevice("fake gpu")}
	}
	return &fakeDriver{
		layers:  []string{"VK_LAYER_LUNARG_api_dump", core.KhronosValidationLayer},
		devices: devices,
		failAt:  map[string]int{},
		calls:   map[string]int{},
		live:    map[handle]bool{},
	}
}

func (d *fakeDriver) fails(op string) error {
	d.calls[op]++
	if n, ok := d.failAt[op]; ok && n == d.calls[op] {
		return fmt.Errorf("%s %d exploded", op, n)
	}
	return nil
}

func (d *fakeDriver) create(kind string) (core.Handle, error) {
	if err := d.fails(kind); err != nil {
		return nil, err
	}
	d.next++
	h := handle{Kind: kind, ID: d.next}
	d.live[h] = true
	d.created = append(d.created, h)
	return h, nil
}

func (d *fakeDriver) destroy(kind string, object core.Handle) {
	h, ok := object.(handle)
	if !ok || h.Kind != kind {
		d.problems = append(d.problems, fmt.Sprintf("destroy %s got %v", kind, object))
		return
	}
	if !d.live[h] {
		d.problems = append(d.problems, fmt.Sprintf("%s %d destroyed twice", kind, h.ID))
		return
	}
	delete(d.live, h)
	d.destroyed = append(d.destroyed, h)
}

// check verifies an object is a live handle of kind
func (d *fakeDriver) check(kind string, object core.Handle) {
	if h, ok := object.(handle); !ok || h.Kind != kind || !d.live[h] {
		d.problems = append(d.problems, fmt.Sprintf("used %v as a live %s", object, kind))
	}
}

func (d *fakeDriver) destroyedKinds() []string {
	kinds := make([]string, len(d.destroyed))
	for i, h := range d.destroyed {
		kinds[i] = h.Kind
	}
	return kinds
}

func (d *fakeDriver) createdKinds() []string {
	kinds := make([]string, len(d.created))
	for i, h := range d.created {
		kinds[i] = h.Kind
	}
	return kinds
}

func (d *fakeDriver) InstanceLayers() ([]string, error) {
	if err := d.fails("InstanceLayers"); err != nil {
		return nil, err
	}
	return d.layers, nil
}

func (d *fakeDriver) DebugExtensions() []string {
	return []string{"VK_EXT_debug_report"}
}

func (d *fakeDriver) CreateInstance(desc core.InstanceDesc) (core.Handle, error) {
	d.instanceDesc = desc
	return d.create("instance")
}

func (d *fakeDriver) DestroyInstance(instance core.Handle) {
	d.destroy("instance", instance)
}

func (d *fakeDriver) CreateDebugMessenger(instance core.Handle, desc core.MessengerDesc) (core.Handle, error) {
	d.check("instance", instance)
	d.messengerDesc = desc
	return d.create("debug_messenger")
}

func (d *fakeDriver) DestroyDebugMessenger(instance, messenger core.Handle) {
	d.check("instance", instance)
	d.destroy("debug_messenger", messenger)
}

func (d *fakeDriver) DestroySurface(instance, surface core.Handle) {
	d.check("instance", instance)
	for h := range d.live {
		if h.Kind == "swapchain" {
			d.problems = append(d.problems, fmt.Sprintf("surface destroyed under swapchain %d", h.ID))
		}
	}
	d.destroy("surface", surface)
}

func (d *fakeDriver) PhysicalDevices(instance core.Handle) ([]core.Handle, error) {
	d.check("instance", instance)
	if err := d.fails("PhysicalDevices"); err != nil {
		return nil, err
	}
	devices := make([]core.Handle, len(d.devices))
	for i, device := range d.devices {
		devices[i] = device
	}
	return devices, nil
}

func (d *fakeDriver) PhysicalDeviceInfo(device core.Handle) core.PhysicalDeviceInfo {
	return core.PhysicalDeviceInfo{
		Name:       device.(*fakeDevice).name,
		Type:       core.DeviceTypeDiscreteGPU,
		Extensions: device.(*fakeDevice).extensions,
	}
}

func (d *fakeDriver) QueueFamilies(device core.Handle) []core.QueueFamily {
	return device.(*fakeDevice).families
}

func (d *fakeDriver) SurfaceSupport(device core.Handle, family uint32, surface core.Handle) (bool, error) {
	d.check("surface", surface)
	d.supportCalls++
	if err := d.fails("SurfaceSupport"); err != nil {
		return false, err
	}
	return device.(*fakeDevice).present[family], nil
}

func (d *fakeDriver) DeviceExtensions(device core.Handle) ([]string, error) {
	return device.(*fakeDevice).extensions, nil
}

func (d *fakeDriver) SurfaceCapabilities(device, surface core.Handle) (core.SurfaceCapabilities, error) {
	return device.(*fakeDevice).caps, nil
}

func (d *fakeDriver) SurfaceFormats(device, surface core.Handle) ([]core.SurfaceFormat, error) {
	return device.(*fakeDevice).formats, nil
}

func (d *fakeDriver) PresentModes(device, surface core.Handle) ([]core.PresentMode, error) {
	return device.(*fakeDevice).modes, nil
}

func (d *fakeDriver) CreateDevice(physicalDevice core.Handle, desc core.DeviceDesc) (core.Handle, error) {
	d.deviceDesc = desc
	return d.create("device")
}

func (d *fakeDriver) DeviceQueue(device core.Handle, family uint32) core.Handle {
	d.check("device", device)
	return handle{Kind: "queue", ID: int(family)}
}

func (d *fakeDriver) DeviceWaitIdle(device core.Handle) error {
	d.check("device", device)
	d.waitIdle++
	return d.fails("DeviceWaitIdle")
}

func (d *fakeDriver) DestroyDevice(device core.Handle) {
	d.destroy("device", device)
}

func (d *fakeDriver) CreateSwapchain(device core.Handle, desc core.SwapchainDesc) (core.Handle, error) {
	d.check("device", device)
	d.check("surface", desc.Surface)
	d.swapchainDesc = desc
	return d.create("swapchain")
}

// SwapchainImages hands out the requested minimum plus extraImages
func (d *fakeDriver) SwapchainImages(device, swapchain core.Handle) ([]core.Handle, error) {
	d.check("swapchain", swapchain)
	if err := d.fails("SwapchainImages"); err != nil {
		return nil, err
	}
	images := make([]core.Handle, int(d.swapchainDesc.MinImageCount)+d.extraImages)
	for i := range images {
		images[i] = handle{Kind: "image", ID: i}
	}
	return images, nil
}

func (d *fakeDriver) DestroySwapchain(device, swapchain core.Handle) {
	d.check("device", device)
	d.destroy("swapchain", swapchain)
}

func (d *fakeDriver) CreateImageView(device core.Handle, desc core.ImageViewDesc) (core.Handle, error) {
	d.check("device", device)
	return d.create("image_view")
}

func (d *fakeDriver) DestroyImageView(device, view core.Handle) {
	d.check("device", device)
	d.destroy("image_view", view)
}

func (d *fakeDriver) CreateRenderPass(device core.Handle, desc core.RenderPassDesc) (core.Handle, error) {
	d.check("device", device)
	d.renderPass = desc
	return d.create("render_pass")
}

func (d *fakeDriver) DestroyRenderPass(device, renderPass core.Handle) {
	d.check("device", device)
	d.destroy("render_pass", renderPass)
}

func (d *fakeDriver) CreateFramebuffer(device core.Handle, desc core.FramebufferDesc) (core.Handle, error) {
	d.check("render_pass", desc.RenderPass)
	for _, view := range desc.Attachments {
		d.check("image_view", view)
	}
	return d.create("framebuffer")
}

func (d *fakeDriver) DestroyFramebuffer(device, framebuffer core.Handle) {
	d.check("device", device)
	d.destroy("framebuffer", framebuffer)
}

func (d *fakeDriver) CreateShaderModule(device core.Handle, code []uint32) (core.Handle, error) {
	d.check("device", device)
	d.modules = append(d.modules, code)
	return d.create("shader_module")
}

func (d *fakeDriver) DestroyShaderModule(device, module core.Handle) {
	d.check("device", device)
	d.destroy("shader_module", module)
}

func (d *fakeDriver) CreatePipelineLayout(device core.Handle, desc core.PipelineLayoutDesc) (core.Handle, error) {
	d.check("device", device)
	return d.create("pipeline_layout")
}

func (d *fakeDriver) DestroyPipelineLayout(device, layout core.Handle) {
	d.check("device", device)
	d.destroy("pipeline_layout", layout)
}

func (d *fakeDriver) CreateGraphicsPipeline(device core.Handle, desc core.GraphicsPipelineDesc) (core.Handle, error) {
	d.check("pipeline_layout", desc.Layout)
	d.check("render_pass", desc.RenderPass)
	for _, stage := range desc.Stages {
		d.check("shader_module", stage.Module)
	}
	d.pipeline = desc
	return d.create("pipeline")
}

func (d *fakeDriver) DestroyPipeline(device, pipeline core.Handle) {
	d.check("device", device)
	d.destroy("pipeline", pipeline)
}

// fakeWindow creates its surfaces through the fake driver
type fakeWindow struct {
	driver        *fakeDriver
	extensions    []string
	width, height uint32
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

func (w *fakeWindow) CreateSurface(instance core.Handle) (core.Handle, error) {
	w.driver.check("instance", instance)
	return w.driver.create("surface")
}

// files serves shaders from memory
type files map[string][]byte

func (f files) ReadFile(name string) ([]byte, error) {
	data, ok := f[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	return data, nil
}

func shaderFiles() files {
	header := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	return files{
		"shaders/vert.spv": header,
		"shaders/frag.spv": append(append([]byte{}, header...), 0xff, 0, 0, 0),
	}
}

// recordingSink keeps every diagnostic it is given
type recordingSink struct {
	messages []core.DiagnosticMessage
}

func (s *recordingSink) Emit(severity core.MessageSeverity, text string) {
	s.messages = append(s.messages, core.DiagnosticMessage{Severity: severity, Text: text})
}
