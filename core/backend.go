// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// State is the bring-up progress of a Backend
type State int

// Backend states, in the only order they can be reached.
// Destroyed is reachable from every state.
const (
	StateUninitialized State = iota
	StateInstanceReady
	StateSurfaceReady
	StateDeviceSelected
	StateLogicalDeviceReady
	StateSwapchainReady
	StateRenderPassReady
	StatePipelineReady
	StateDestroyed
)

var stateNames = [...]string{
	"Uninitialized",
	"InstanceReady",
	"SurfaceReady",
	"DeviceSelected",
	"LogicalDeviceReady",
	"SwapchainReady",
	"RenderPassReady",
	"PipelineReady",
	"Destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// NewBackend creates a backend that is not yet brought up.
// window may be nil when only the instance is needed, e.g. to list devices.
func NewBackend(driver Driver, window Window, cfg Configuration, log logrus.FieldLogger) *Backend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{
		driver: driver,
		window: window,
		cfg:    cfg,
		log:    log,
		sink:   LogSink{Log: log.WithField("source", "validation")},
	}
}

// Backend owns every object of the rendering backend. Steps have to
// be called in order, each one moving to the next State. A failing
// step releases everything created so far and leaves the Backend
// Destroyed. A Backend is not safe for concurrent use.
type Backend struct {
	driver Driver
	window Window
	cfg    Configuration
	log    logrus.FieldLogger
	sink   DiagnosticSink

	state    State
	releases releaseStack

	instance       Handle
	messenger      Handle
	surface        Handle
	physicalDevice *PhysicalDeviceCandidate
	device         *LogicalDevice
	swapchain      *Swapchain
	imageViews     []Handle
	renderPass     Handle
	framebuffers   []Handle
	pipeline       *PipelineBundle
}

// SetDiagnosticSink replaces the sink validation messages go to.
// It only has effect before CreateInstance.
func (b *Backend) SetDiagnosticSink(sink DiagnosticSink) {
	b.sink = sink
}

func (b *Backend) expect(state State, op string) {
	if b.state != state {
		panic(fmt.Sprintf("core: %s called in state %s, needs %s", op, b.state, state))
	}
}

// fail unwinds everything and wraps the failure of stage
func (b *Backend) fail(stage Stage, kind, err error) error {
	b.log.WithField("stage", stage).WithError(err).Error(kind.Error())
	b.releases.unwind(b.log)
	b.physicalDevice = nil
	b.state = StateDestroyed
	return &InitError{Stage: stage, Kind: kind, Err: err}
}

// CreateSurface asks the window for a presentation surface
func (b *Backend) CreateSurface() error {
	b.expect(StateInstanceReady, "CreateSurface")
	if b.window == nil {
		panic("core: CreateSurface needs a window")
	}
	instance := b.instance
	surface, err := b.window.CreateSurface(instance)
	if err != nil {
		return b.fail(StageSurface, ErrSurfaceCreation, err)
	}
	b.surface = surface
	b.releases.push("surface", ReleaseFunc(func() {
		b.driver.DestroySurface(instance, surface)
		b.surface = nil
	}))
	b.log.WithField("stage", StageSurface).Info("surface created")

	b.state = StateSurfaceReady
	return nil
}

// BringUp runs every step in order, stopping at the first failure
func (b *Backend) BringUp(files FileProvider) error {
	steps := []func() error{
		b.CreateInstance,
		b.CreateSurface,
		b.SelectDevice,
		b.CreateLogicalDevice,
		b.CreateSwapchain,
		b.CreateRenderPass,
		func() error { return b.CreatePipeline(files) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases everything, newest first, after the
// device has gone idle. It can be called in any state, any number of times.
func (b *Backend) Destroy() {
	if b.state == StateDestroyed {
		return
	}
	if b.device != nil {
		if err := b.driver.DeviceWaitIdle(b.device.Device); err != nil {
			b.log.WithError(err).Warn("device did not go idle before teardown")
		}
	}
	// TODO: RecreateSwapchain for out-of-date surfaces, unwinding only
	// down to the swapchain and rebuilding from there.
	b.releases.unwind(b.log)
	b.physicalDevice = nil
	b.state = StateDestroyed
	b.log.Info("backend destroyed")
}

// PhysicalDevicesInfo describes every device the instance can see
func (b *Backend) PhysicalDevicesInfo() ([]PhysicalDeviceInfo, error) {
	if b.instance == nil {
		panic("core: PhysicalDevicesInfo needs an instance")
	}
	devices, err := b.driver.PhysicalDevices(b.instance)
	if err != nil {
		return nil, err
	}
	infos := make([]PhysicalDeviceInfo, len(devices))
	for i, device := range devices {
		infos[i] = b.driver.PhysicalDeviceInfo(device)
	}
	return infos, nil
}

// State returns the current state
func (b *Backend) State() State { return b.state }

// Instance returns the instance, nil before CreateInstance or after Destroy
func (b *Backend) Instance() Handle { return b.instance }

// Surface returns the presentation surface
func (b *Backend) Surface() Handle { return b.surface }

// PhysicalDevice returns the selected device
func (b *Backend) PhysicalDevice() *PhysicalDeviceCandidate { return b.physicalDevice }

// Device returns the logical device and its queues
func (b *Backend) Device() *LogicalDevice { return b.device }

// Swapchain returns the swapchain
func (b *Backend) Swapchain() *Swapchain { return b.swapchain }

// ImageViews returns one view per swapchain image, in image order
func (b *Backend) ImageViews() []Handle { return b.imageViews }

// RenderPass returns the render pass
func (b *Backend) RenderPass() Handle { return b.renderPass }

// Framebuffers returns one framebuffer per image view
func (b *Backend) Framebuffers() []Handle { return b.framebuffers }

// Pipeline returns the graphics pipeline bundle
func (b *Backend) Pipeline() *PipelineBundle { return b.pipeline }
