// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// Names the backend asks for by default
const (
	KhronosValidationLayer = "VK_LAYER_KHRONOS_validation"
	SwapchainExtension     = "VK_KHR_swapchain"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration
}

// InstanceConfiguration is used to configure the instance
type InstanceConfiguration struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32

	// DebugMode enables validation layers and the debug messenger
	DebugMode bool
	Layers    []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	DeviceExtensions []string

	// PreferredFormat is picked when the surface offers it,
	// otherwise the first offered format is used
	PreferredFormat SurfaceFormat

	VertexShader   string
	FragmentShader string
}

// DefaultConfiguration returns the configuration the engine ships with
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
		Instance: InstanceConfiguration{
			ApplicationName:    "game A",
			ApplicationVersion: MakeVersion(0, 0, 1),
			EngineName:         "Potentia Engine",
			EngineVersion:      MakeVersion(0, 0, 1),
			APIVersion:         MakeVersion(1, 0, 0),
			DebugMode:          true,
			Layers:             []string{KhronosValidationLayer},
		},
		Renderer: RendererConfiguration{
			DeviceExtensions: []string{SwapchainExtension},
			PreferredFormat: SurfaceFormat{
				Format:     FormatR8G8B8A8Srgb,
				ColorSpace: ColorSpaceSrgbNonlinear,
			},
			VertexShader:   "shaders/vert.spv",
			FragmentShader: "shaders/frag.spv",
		},
	}
}
