// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/potentia/core"
)

func newBackend(d *fakeDriver, cfg core.Configuration) (*core.Backend, *logtest.Hook) {
	window := &fakeWindow{
		driver:     d,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xlib_surface"},
		width:      1000,
		height:     800,
	}
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return core.NewBackend(d, window, cfg, log), hook
}

func reversed(handles []handle) []handle {
	if len(handles) == 0 {
		return nil
	}
	out := make([]handle, len(handles))
	for i, h := range handles {
		out[len(handles)-1-i] = h
	}
	return out
}

// teardownOrder is reverse creation order, except that the surface is
// released ahead of the device once both exist
func teardownOrder(created []handle) []handle {
	out := reversed(created)
	device, surface := -1, -1
	for i, h := range out {
		switch h.Kind {
		case "device":
			device = i
		case "surface":
			surface = i
		}
	}
	if device < 0 || surface < device {
		return out
	}
	moved := out[surface]
	copy(out[device+1:surface+1], out[device:surface])
	out[device] = moved
	return out
}

func TestBringUpAndDestroy(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b, _ := newBackend(d, core.DefaultConfiguration())

	c.Assert(b.State(), qt.Equals, core.StateUninitialized)
	c.Assert(b.BringUp(shaderFiles()), qt.IsNil)
	c.Assert(b.State(), qt.Equals, core.StatePipelineReady)
	c.Assert(d.problems, qt.HasLen, 0)

	swapchain := b.Swapchain()
	c.Assert(swapchain.Format.Format, qt.Equals, core.FormatR8G8B8A8Srgb)
	c.Assert(swapchain.PresentMode, qt.Equals, core.PresentModeMailbox)
	c.Assert(swapchain.Extent, qt.Equals, core.Extent2D{Width: 1000, Height: 800})
	c.Assert(swapchain.Images, qt.HasLen, 3)
	c.Assert(b.ImageViews(), qt.HasLen, 3)
	c.Assert(b.Framebuffers(), qt.HasLen, 3)
	c.Assert(b.Pipeline().ShaderModules, qt.HasLen, 2)
	c.Assert(b.Pipeline().Viewport.Width, qt.Equals, float32(1000))
	c.Assert(d.modules[0], qt.DeepEquals, []uint32{0x07230203, 0x00010000})

	b.Destroy()
	c.Assert(b.State(), qt.Equals, core.StateDestroyed)
	c.Assert(d.waitIdle, qt.Equals, 1)
	c.Assert(d.problems, qt.HasLen, 0)
	c.Assert(d.live, qt.HasLen, 0)
	c.Assert(d.destroyedKinds(), qt.DeepEquals, []string{
		"pipeline",
		"pipeline_layout",
		"shader_module",
		"shader_module",
		"framebuffer",
		"framebuffer",
		"framebuffer",
		"render_pass",
		"image_view",
		"image_view",
		"image_view",
		"swapchain",
		"surface",
		"device",
		"debug_messenger",
		"instance",
	})
	c.Assert(d.destroyed, qt.DeepEquals, teardownOrder(d.created))

	c.Assert(b.Instance(), qt.IsNil)
	c.Assert(b.Surface(), qt.IsNil)
	c.Assert(b.PhysicalDevice(), qt.IsNil)
	c.Assert(b.Device(), qt.IsNil)
	c.Assert(b.Swapchain(), qt.IsNil)
	c.Assert(b.ImageViews(), qt.HasLen, 0)
	c.Assert(b.RenderPass(), qt.IsNil)
	c.Assert(b.Framebuffers(), qt.HasLen, 0)
	c.Assert(b.Pipeline(), qt.IsNil)

	c.Run("destroy again", func(c *qt.C) {
		b.Destroy()
		c.Assert(d.destroyed, qt.HasLen, 16)
		c.Assert(d.waitIdle, qt.Equals, 1)
		c.Assert(d.problems, qt.HasLen, 0)
	})
}

func TestBringUpFailureUnwinds(t *testing.T) {
	badBytecode := shaderFiles()
	badBytecode["shaders/vert.spv"] = []byte{1, 2, 3, 4, 5}
	missingFragment := shaderFiles()
	delete(missingFragment, "shaders/frag.spv")

	tests := []struct {
		name   string
		failAt map[string]int
		files  files
		stage  core.Stage
		kind   error
	}{{
		name:   "layer enumeration",
		failAt: map[string]int{"InstanceLayers": 1},
		stage:  core.StageInstance,
		kind:   core.ErrInstanceCreation,
	}, {
		name:   "instance",
		failAt: map[string]int{"instance": 1},
		stage:  core.StageInstance,
		kind:   core.ErrInstanceCreation,
	}, {
		name:   "debug messenger",
		failAt: map[string]int{"debug_messenger": 1},
		stage:  core.StageInstance,
		kind:   core.ErrDebugMessengerCreation,
	}, {
		name:   "surface",
		failAt: map[string]int{"surface": 1},
		stage:  core.StageSurface,
		kind:   core.ErrSurfaceCreation,
	}, {
		name:   "device enumeration",
		failAt: map[string]int{"PhysicalDevices": 1},
		stage:  core.StageDeviceSelect,
		kind:   core.ErrNoPhysicalDevice,
	}, {
		name:   "surface support query",
		failAt: map[string]int{"SurfaceSupport": 1},
		stage:  core.StageDeviceSelect,
		kind:   core.ErrNoSuitableDevice,
	}, {
		name:   "logical device",
		failAt: map[string]int{"device": 1},
		stage:  core.StageLogicalDevice,
		kind:   core.ErrDeviceCreation,
	}, {
		name:   "swapchain",
		failAt: map[string]int{"swapchain": 1},
		stage:  core.StageSwapchain,
		kind:   core.ErrSwapchainCreation,
	}, {
		name:   "swapchain images",
		failAt: map[string]int{"SwapchainImages": 1},
		stage:  core.StageSwapchain,
		kind:   core.ErrSwapchainCreation,
	}, {
		name:   "second image view",
		failAt: map[string]int{"image_view": 2},
		stage:  core.StageSwapchain,
		kind:   core.ErrImageViewCreation,
	}, {
		name:   "render pass",
		failAt: map[string]int{"render_pass": 1},
		stage:  core.StageRenderPass,
		kind:   core.ErrRenderPassCreation,
	}, {
		name:   "last framebuffer",
		failAt: map[string]int{"framebuffer": 3},
		stage:  core.StageRenderPass,
		kind:   core.ErrFramebufferCreation,
	}, {
		name:  "missing shader",
		files: missingFragment,
		stage: core.StagePipeline,
		kind:  core.ErrShaderLoad,
	}, {
		name:  "bad bytecode",
		files: badBytecode,
		stage: core.StagePipeline,
		kind:  core.ErrShaderModuleCreation,
	}, {
		name:   "fragment module",
		failAt: map[string]int{"shader_module": 2},
		stage:  core.StagePipeline,
		kind:   core.ErrShaderModuleCreation,
	}, {
		name:   "pipeline layout",
		failAt: map[string]int{"pipeline_layout": 1},
		stage:  core.StagePipeline,
		kind:   core.ErrPipelineLayoutCreation,
	}, {
		name:   "pipeline",
		failAt: map[string]int{"pipeline": 1},
		stage:  core.StagePipeline,
		kind:   core.ErrPipelineCreation,
	}}

	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			d := newFakeDriver()
			d.failAt = test.failAt
			if test.files == nil {
				test.files = shaderFiles()
			}
			b, hook := newBackend(d, core.DefaultConfiguration())

			err := b.BringUp(test.files)
			c.Assert(errors.Is(err, test.kind), qt.IsTrue, qt.Commentf("got %v", err))

			var initErr *core.InitError
			c.Assert(errors.As(err, &initErr), qt.IsTrue)
			c.Assert(initErr.Stage, qt.Equals, test.stage)

			c.Assert(b.State(), qt.Equals, core.StateDestroyed)
			c.Assert(d.problems, qt.HasLen, 0)
			c.Assert(d.live, qt.HasLen, 0)
			c.Assert(d.destroyed, qt.DeepEquals, teardownOrder(d.created))
			c.Assert(b.Instance(), qt.IsNil)
			c.Assert(b.Device(), qt.IsNil)

			var logged bool
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.ErrorLevel && entry.Data["stage"] == test.stage {
					logged = true
				}
			}
			c.Assert(logged, qt.IsTrue)

			destroyed := len(d.destroyed)
			b.Destroy()
			c.Assert(d.destroyed, qt.HasLen, destroyed)
		})
	}
}

func TestSurfaceReleasedBeforeDevice(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.failAt = map[string]int{"render_pass": 1}
	b, _ := newBackend(d, core.DefaultConfiguration())

	err := b.BringUp(shaderFiles())
	c.Assert(errors.Is(err, core.ErrRenderPassCreation), qt.IsTrue)
	c.Assert(d.problems, qt.HasLen, 0)
	c.Assert(d.destroyedKinds(), qt.DeepEquals, []string{
		"image_view",
		"image_view",
		"image_view",
		"swapchain",
		"surface",
		"device",
		"debug_messenger",
		"instance",
	})
}

func TestMissingShaderKeepsCause(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b, _ := newBackend(d, core.DefaultConfiguration())

	err := b.BringUp(files{})
	c.Assert(errors.Is(err, core.ErrShaderLoad), qt.IsTrue)
	c.Assert(errors.Is(err, os.ErrNotExist), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `core: pipeline: shader load failed: shaders/vert.spv: .*`)
}

func TestValidationLayerUnavailable(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.layers = []string{"VK_LAYER_LUNARG_api_dump"}
	b, _ := newBackend(d, core.DefaultConfiguration())

	err := b.CreateInstance()
	c.Assert(errors.Is(err, core.ErrValidationLayerUnavailable), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `.*"VK_LAYER_KHRONOS_validation".*`)
	c.Assert(d.created, qt.HasLen, 0)
	c.Assert(b.State(), qt.Equals, core.StateDestroyed)
}

func TestDebugModeOff(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.layers = nil
	cfg := core.DefaultConfiguration()
	cfg.Instance.DebugMode = false
	b, _ := newBackend(d, cfg)

	c.Assert(b.BringUp(shaderFiles()), qt.IsNil)
	c.Assert(d.calls["InstanceLayers"], qt.Equals, 0)
	c.Assert(d.instanceDesc.Layers, qt.HasLen, 0)
	c.Assert(d.instanceDesc.Extensions, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xlib_surface"})
	c.Assert(d.deviceDesc.Layers, qt.HasLen, 0)
	c.Assert(d.createdKinds()[:3], qt.DeepEquals, []string{"instance", "surface", "device"})

	b.Destroy()
	c.Assert(d.live, qt.HasLen, 0)
}

func TestDebugModeInstance(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b, _ := newBackend(d, core.DefaultConfiguration())

	c.Assert(b.CreateInstance(), qt.IsNil)
	c.Assert(b.State(), qt.Equals, core.StateInstanceReady)
	c.Assert(d.instanceDesc.ApplicationName, qt.Equals, "game A")
	c.Assert(d.instanceDesc.Layers, qt.DeepEquals, []string{core.KhronosValidationLayer})
	c.Assert(d.instanceDesc.Extensions, qt.DeepEquals, []string{
		"VK_KHR_surface", "VK_KHR_xlib_surface", "VK_EXT_debug_report",
	})
	c.Assert(d.messengerDesc.Severities, qt.Equals,
		core.SeverityVerbose|core.SeverityWarning|core.SeverityError)
	c.Assert(d.messengerDesc.Types, qt.Equals,
		core.MessageGeneral|core.MessageValidation|core.MessagePerformance)
	b.Destroy()
	c.Assert(d.destroyedKinds(), qt.DeepEquals, []string{"debug_messenger", "instance"})
}

func TestInstanceExtensions(t *testing.T) {
	c := qt.New(t)
	window := []string{"VK_KHR_surface", "VK_EXT_debug_report"}
	debug := []string{"VK_EXT_debug_report"}

	c.Assert(core.InstanceExtensions(window, debug, true), qt.DeepEquals, window)
	c.Assert(core.InstanceExtensions([]string{"VK_KHR_surface"}, debug, true), qt.DeepEquals, window)
	c.Assert(core.InstanceExtensions([]string{"VK_KHR_surface"}, debug, false), qt.DeepEquals, []string{"VK_KHR_surface"})
}

func TestDiagnosticCallback(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b, _ := newBackend(d, core.DefaultConfiguration())
	sink := &recordingSink{}
	b.SetDiagnosticSink(sink)
	c.Assert(b.CreateInstance(), qt.IsNil)

	abort := d.messengerDesc.Callback(core.DiagnosticMessage{
		Severity: core.SeverityWarning,
		Type:     core.MessageValidation,
		Text:     "[Validation] vkCreateSwapchainKHR: bad extent",
	})
	c.Assert(abort, qt.IsFalse)
	c.Assert(sink.messages, qt.DeepEquals, []core.DiagnosticMessage{{
		Severity: core.SeverityWarning,
		Text:     "[Validation] vkCreateSwapchainKHR: bad extent",
	}})
}

func TestStateOrder(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b, _ := newBackend(d, core.DefaultConfiguration())

	c.Assert(func() { b.SelectDevice() }, qt.PanicMatches,
		"core: SelectDevice called in state Uninitialized, needs SurfaceReady")
	c.Assert(b.CreateInstance(), qt.IsNil)
	c.Assert(func() { b.CreateInstance() }, qt.PanicMatches,
		"core: CreateInstance called in state InstanceReady, needs Uninitialized")

	b.Destroy()
	c.Assert(func() { b.CreatePipeline(shaderFiles()) }, qt.PanicMatches,
		"core: CreatePipeline called in state Destroyed, needs RenderPassReady")
	c.Assert(d.live, qt.HasLen, 0)
}

func TestSurfaceNeedsWindow(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	b := core.NewBackend(d, nil, core.DefaultConfiguration(), nil)
	c.Assert(b.CreateInstance(), qt.IsNil)
	c.Assert(d.instanceDesc.Extensions, qt.DeepEquals, []string{"VK_EXT_debug_report"})
	c.Assert(func() { b.CreateSurface() }, qt.PanicMatches, "core: CreateSurface needs a window")
	b.Destroy()
}

func TestDestroyWhenDeviceWontIdle(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.failAt["DeviceWaitIdle"] = 1
	b, hook := newBackend(d, core.DefaultConfiguration())
	c.Assert(b.BringUp(shaderFiles()), qt.IsNil)

	b.Destroy()
	c.Assert(d.live, qt.HasLen, 0)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	c.Assert(warned, qt.IsTrue)
}

func TestPhysicalDevicesInfo(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver(goodDevice("first"), goodDevice("second"))
	b := core.NewBackend(d, nil, core.DefaultConfiguration(), nil)
	c.Assert(b.CreateInstance(), qt.IsNil)
	defer b.Destroy()

	infos, err := b.PhysicalDevicesInfo()
	c.Assert(err, qt.IsNil)
	c.Assert(infos, qt.HasLen, 2)
	c.Assert(infos[0].Name, qt.Equals, "first")
	c.Assert(infos[1].Name, qt.Equals, "second")
}

func TestInitError(t *testing.T) {
	c := qt.New(t)
	cause := errors.New("out of host memory")
	err := &core.InitError{Stage: core.StageSwapchain, Kind: core.ErrSwapchainCreation, Err: cause}
	c.Assert(err.Error(), qt.Equals, "core: swapchain: swapchain creation failed: out of host memory")
	c.Assert(errors.Is(err, cause), qt.IsTrue)
	c.Assert(errors.Is(err, core.ErrSwapchainCreation), qt.IsTrue)
	c.Assert(errors.Is(err, core.ErrDeviceCreation), qt.IsFalse)

	bare := &core.InitError{Stage: core.StageDeviceSelect, Kind: core.ErrNoPhysicalDevice}
	c.Assert(bare.Error(), qt.Equals, "core: device selection: no physical device")
}

func TestLogSink(t *testing.T) {
	c := qt.New(t)
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	sink := core.LogSink{Log: log}

	sink.Emit(core.SeverityError, "error")
	sink.Emit(core.SeverityWarning, "warning")
	sink.Emit(core.SeverityInfo, "info")
	sink.Emit(core.SeverityVerbose, "verbose")

	var levels []logrus.Level
	for _, entry := range hook.AllEntries() {
		levels = append(levels, entry.Level)
	}
	c.Assert(levels, qt.DeepEquals, []logrus.Level{
		logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel,
	})
	c.Assert(hook.LastEntry().Data["severity"], qt.Equals, "verbose")
}
