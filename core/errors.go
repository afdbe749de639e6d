// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "errors"

// Kinds of bring-up failures, match them with errors.Is
var (
	ErrValidationLayerUnavailable = errors.New("validation layer unavailable")
	ErrInstanceCreation           = errors.New("instance creation failed")
	ErrDebugMessengerCreation     = errors.New("debug messenger creation failed")
	ErrSurfaceCreation            = errors.New("surface creation failed")
	ErrNoPhysicalDevice           = errors.New("no physical device")
	ErrNoSuitableDevice           = errors.New("no suitable physical device")
	ErrDeviceCreation             = errors.New("logical device creation failed")
	ErrSwapchainCreation          = errors.New("swapchain creation failed")
	ErrImageViewCreation          = errors.New("image view creation failed")
	ErrRenderPassCreation         = errors.New("render pass creation failed")
	ErrFramebufferCreation        = errors.New("framebuffer creation failed")
	ErrShaderLoad                 = errors.New("shader load failed")
	ErrShaderModuleCreation       = errors.New("shader module creation failed")
	ErrPipelineLayoutCreation     = errors.New("pipeline layout creation failed")
	ErrPipelineCreation           = errors.New("pipeline creation failed")
)

// Stage names a bring-up step
type Stage string

// Bring-up steps, in order
const (
	StageInstance      Stage = "instance"
	StageSurface       Stage = "surface"
	StageDeviceSelect  Stage = "device selection"
	StageLogicalDevice Stage = "logical device"
	StageSwapchain     Stage = "swapchain"
	StageRenderPass    Stage = "render pass"
	StagePipeline      Stage = "pipeline"
)

// InitError is returned by every failing bring-up step. By the time
// it is returned everything created so far has been released.
type InitError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *InitError) Error() string {
	msg := "core: " + string(e.Stage) + ": " + e.Kind.Error()
	if e.Err != nil && e.Err != e.Kind {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *InitError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
