// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Messenger filter used whenever debug mode is on
const (
	messengerSeverities = SeverityVerbose | SeverityWarning | SeverityError
	messengerTypes      = MessageGeneral | MessageValidation | MessagePerformance
)

// InstanceExtensions returns the extensions the instance is created with:
// the window's requirements followed by the debug extensions in debug mode.
func InstanceExtensions(window, debug []string, debugMode bool) []string {
	if !debugMode {
		return union(window, nil)
	}
	return union(window, debug)
}

// CreateInstance creates the API instance and, in debug mode,
// a debug messenger forwarding validation output to the diagnostic sink.
func (b *Backend) CreateInstance() error {
	b.expect(StateUninitialized, "CreateInstance")
	cfg := b.cfg.Instance
	log := b.log.WithField("stage", StageInstance)

	var layers []string
	if cfg.DebugMode {
		available, err := b.driver.InstanceLayers()
		if err != nil {
			return b.fail(StageInstance, ErrInstanceCreation, err)
		}
		if absent := missing(cfg.Layers, available); len(absent) > 0 {
			return b.fail(StageInstance, ErrValidationLayerUnavailable,
				fmt.Errorf("requested %s, not offered by the loader", quoted(absent)))
		}
		layers = cfg.Layers
	}

	var windowExtensions []string
	if b.window != nil {
		windowExtensions = b.window.RequiredInstanceExtensions()
	}

	/* Create instance */
	desc := InstanceDesc{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		EngineName:         cfg.EngineName,
		EngineVersion:      cfg.EngineVersion,
		APIVersion:         cfg.APIVersion,
		Layers:             layers,
		Extensions:         InstanceExtensions(windowExtensions, b.driver.DebugExtensions(), cfg.DebugMode),
	}
	instance, err := b.driver.CreateInstance(desc)
	if err != nil {
		return b.fail(StageInstance, ErrInstanceCreation, err)
	}
	b.instance = instance
	b.releases.push("instance", ReleaseFunc(func() {
		b.driver.DestroyInstance(instance)
		b.instance = nil
	}))
	log.WithFields(logrus.Fields{
		"layers":     desc.Layers,
		"extensions": desc.Extensions,
	}).Info("instance created")

	/* Debug messenger */
	if cfg.DebugMode {
		messenger, err := b.driver.CreateDebugMessenger(instance, MessengerDesc{
			Severities: messengerSeverities,
			Types:      messengerTypes,
			Callback:   b.diagnostic,
		})
		if err != nil {
			return b.fail(StageInstance, ErrDebugMessengerCreation, err)
		}
		b.messenger = messenger
		b.releases.push("debug_messenger", ReleaseFunc(func() {
			b.driver.DestroyDebugMessenger(instance, messenger)
			b.messenger = nil
		}))
		log.Debug("debug messenger attached")
	}

	b.state = StateInstanceReady
	return nil
}

// diagnostic forwards a validation message and never asks for the call to be aborted
func (b *Backend) diagnostic(msg DiagnosticMessage) bool {
	b.sink.Emit(msg.Severity, msg.Text)
	return false
}
