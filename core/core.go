// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core brings a Vulkan rendering backend up in dependency order
// and tears it down in exactly the reverse order. It talks to the graphics
// API through the Driver interface, so the whole chain can run against
// any implementation of it (core/vulkan is the real one).
package core

// Handle is an opaque object owned by a Driver. Only the Driver that
// produced a Handle knows how to interpret it.
type Handle interface{}

// Driver describes the subset of the graphics API the backend needs.
// Every Create call has a matching Destroy call; the backend guarantees
// Destroy is called once for each successful Create, children first.
type Driver interface {
	// InstanceLayers returns the names of all instance layers
	// the loader can enable
	InstanceLayers() ([]string, error)

	// DebugExtensions returns the instance extensions needed for
	// CreateDebugMessenger to work
	DebugExtensions() []string

	CreateInstance(desc InstanceDesc) (Handle, error)
	DestroyInstance(instance Handle)

	// CreateDebugMessenger registers a callback for validation messages.
	// The callback's return value tells the layer whether to abort the call.
	CreateDebugMessenger(instance Handle, desc MessengerDesc) (Handle, error)
	DestroyDebugMessenger(instance, messenger Handle)

	// DestroySurface releases a surface made by a Window for this instance
	DestroySurface(instance, surface Handle)

	// PhysicalDevices enumerates devices in the order the loader reports them
	PhysicalDevices(instance Handle) ([]Handle, error)

	// PhysicalDeviceInfo returns descriptive properties of the device
	PhysicalDeviceInfo(device Handle) PhysicalDeviceInfo

	QueueFamilies(device Handle) []QueueFamily
	SurfaceSupport(device Handle, family uint32, surface Handle) (bool, error)
	DeviceExtensions(device Handle) ([]string, error)
	SurfaceCapabilities(device, surface Handle) (SurfaceCapabilities, error)
	SurfaceFormats(device, surface Handle) ([]SurfaceFormat, error)
	PresentModes(device, surface Handle) ([]PresentMode, error)

	CreateDevice(physicalDevice Handle, desc DeviceDesc) (Handle, error)
	DeviceQueue(device Handle, family uint32) Handle
	DeviceWaitIdle(device Handle) error
	DestroyDevice(device Handle)

	CreateSwapchain(device Handle, desc SwapchainDesc) (Handle, error)
	// SwapchainImages returns the images the implementation actually
	// created, which may be more than requested
	SwapchainImages(device, swapchain Handle) ([]Handle, error)
	DestroySwapchain(device, swapchain Handle)

	CreateImageView(device Handle, desc ImageViewDesc) (Handle, error)
	DestroyImageView(device, view Handle)

	CreateRenderPass(device Handle, desc RenderPassDesc) (Handle, error)
	DestroyRenderPass(device, renderPass Handle)

	CreateFramebuffer(device Handle, desc FramebufferDesc) (Handle, error)
	DestroyFramebuffer(device, framebuffer Handle)

	CreateShaderModule(device Handle, code []uint32) (Handle, error)
	DestroyShaderModule(device, module Handle)

	CreatePipelineLayout(device Handle, desc PipelineLayoutDesc) (Handle, error)
	DestroyPipelineLayout(device, layout Handle)

	CreateGraphicsPipeline(device Handle, desc GraphicsPipelineDesc) (Handle, error)
	DestroyPipeline(device, pipeline Handle)
}

// Window provides the presentation target. The backend never owns the
// window itself, only the surface it creates for it.
type Window interface {
	// RequiredInstanceExtensions returns the instance extensions
	// the window system needs to present
	RequiredInstanceExtensions() []string

	// FramebufferSize returns the drawable size in pixels
	FramebufferSize() (width, height uint32)

	// CreateSurface creates a presentation surface for the instance
	CreateSurface(instance Handle) (Handle, error)
}

// FileProvider reads whole files by name, shaders included.
type FileProvider interface {
	ReadFile(name string) ([]byte, error)
}

// DiagnosticSink receives validation messages emitted by the driver.
type DiagnosticSink interface {
	Emit(severity MessageSeverity, text string)
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (s ShaderType) String() string {
	switch s {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}
