// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// OptionalIndex is a queue family index that may not have been found
type OptionalIndex struct {
	Index uint32
	Valid bool
}

// QueueFamilyIndices are the families chosen for each queue role
type QueueFamilyIndices struct {
	Graphics OptionalIndex
	Present  OptionalIndex
}

// Complete reports whether both roles have a family
func (q QueueFamilyIndices) Complete() bool {
	return q.Graphics.Valid && q.Present.Valid
}

// UniqueFamilies returns the distinct resolved families in ascending order
func UniqueFamilies(q QueueFamilyIndices) []uint32 {
	var families []uint32
	if q.Graphics.Valid {
		families = append(families, q.Graphics.Index)
	}
	if q.Present.Valid && (!q.Graphics.Valid || q.Present.Index != q.Graphics.Index) {
		families = append(families, q.Present.Index)
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// SwapchainSupport is what a surface offers on a particular device
type SwapchainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

// PhysicalDeviceCandidate is everything learned about a device
// while deciding whether to use it
type PhysicalDeviceCandidate struct {
	Device     Handle
	Info       PhysicalDeviceInfo
	Indices    QueueFamilyIndices
	Support    SwapchainSupport
	Extensions []string
}

// LogicalDevice is the created device with its queues. When graphics
// and present share a family both queues are the same handle.
type LogicalDevice struct {
	Device        Handle
	GraphicsQueue Handle
	PresentQueue  Handle
	Families      []uint32
}

// FindQueueFamilies walks the queue families of device in order. For
// each role the first family that qualifies is kept, later ones never
// replace it.
func FindQueueFamilies(driver Driver, device, surface Handle) (QueueFamilyIndices, error) {
	var indices QueueFamilyIndices
	for i, family := range driver.QueueFamilies(device) {
		index := uint32(i)
		if !indices.Graphics.Valid && family.Flags&QueueGraphicsBit != 0 {
			indices.Graphics = OptionalIndex{Index: index, Valid: true}
		}
		if !indices.Present.Valid {
			supported, err := driver.SurfaceSupport(device, index, surface)
			if err != nil {
				return indices, err
			}
			if supported {
				indices.Present = OptionalIndex{Index: index, Valid: true}
			}
		}
		if indices.Complete() {
			break
		}
	}
	return indices, nil
}

// QuerySwapchainSupport reads capabilities, formats and present modes of surface on device
func QuerySwapchainSupport(driver Driver, device, surface Handle) (SwapchainSupport, error) {
	var (
		support SwapchainSupport
		err     error
	)
	if support.Capabilities, err = driver.SurfaceCapabilities(device, surface); err != nil {
		return support, err
	}
	if support.Formats, err = driver.SurfaceFormats(device, surface); err != nil {
		return support, err
	}
	if support.PresentModes, err = driver.PresentModes(device, surface); err != nil {
		return support, err
	}
	return support, nil
}

// DeviceIsSuitable checks if the candidate can run the backend.
// If not suitable string contains the reason.
func DeviceIsSuitable(c PhysicalDeviceCandidate, requiredExtensions []string) (bool, string) {
	if !c.Indices.Graphics.Valid {
		return false, "no graphics queue family"
	}
	if !c.Indices.Present.Valid {
		return false, "no queue family can present to the surface"
	}
	if absent := missing(requiredExtensions, c.Extensions); len(absent) > 0 {
		return false, "missing extensions " + quoted(absent)
	}
	if len(c.Support.Formats) == 0 {
		return false, "surface offers no formats"
	}
	if len(c.Support.PresentModes) == 0 {
		return false, "surface offers no present modes"
	}
	return true, ""
}

func inspectDevice(driver Driver, device, surface Handle) (PhysicalDeviceCandidate, error) {
	c := PhysicalDeviceCandidate{
		Device: device,
		Info:   driver.PhysicalDeviceInfo(device),
	}
	var err error
	if c.Indices, err = FindQueueFamilies(driver, device, surface); err != nil {
		return c, fmt.Errorf("queue families: %w", err)
	}
	if c.Extensions, err = driver.DeviceExtensions(device); err != nil {
		return c, fmt.Errorf("device extensions: %w", err)
	}
	if c.Support, err = QuerySwapchainSupport(driver, device, surface); err != nil {
		return c, fmt.Errorf("swapchain support: %w", err)
	}
	return c, nil
}

// SelectDevice picks the first device, in enumeration order, that
// satisfies every requirement. Nothing is created here.
func (b *Backend) SelectDevice() error {
	b.expect(StateSurfaceReady, "SelectDevice")
	log := b.log.WithField("stage", StageDeviceSelect)

	devices, err := b.driver.PhysicalDevices(b.instance)
	if err != nil {
		return b.fail(StageDeviceSelect, ErrNoPhysicalDevice, err)
	}
	if len(devices) == 0 {
		return b.fail(StageDeviceSelect, ErrNoPhysicalDevice, nil)
	}

	for _, device := range devices {
		candidate, err := inspectDevice(b.driver, device, b.surface)
		entry := log.WithField("device", candidate.Info.Name)
		if err != nil {
			entry.WithError(err).Warn("skipping device")
			continue
		}
		if ok, reason := DeviceIsSuitable(candidate, b.cfg.Renderer.DeviceExtensions); !ok {
			entry.WithField("reason", reason).Debug("device not suitable")
			continue
		}
		entry.WithFields(logrus.Fields{
			"type":     candidate.Info.Type,
			"graphics": candidate.Indices.Graphics.Index,
			"present":  candidate.Indices.Present.Index,
		}).Info("device selected")
		b.physicalDevice = &candidate
		b.state = StateDeviceSelected
		return nil
	}
	return b.fail(StageDeviceSelect, ErrNoSuitableDevice,
		fmt.Errorf("none of %d devices qualify", len(devices)))
}

// CreateLogicalDevice creates the device with one queue per distinct
// family and resolves the graphics and present queues.
func (b *Backend) CreateLogicalDevice() error {
	b.expect(StateDeviceSelected, "CreateLogicalDevice")
	log := b.log.WithField("stage", StageLogicalDevice)
	candidate := b.physicalDevice

	families := UniqueFamilies(candidate.Indices)
	desc := DeviceDesc{
		Extensions: b.cfg.Renderer.DeviceExtensions,
	}
	for _, family := range families {
		desc.Queues = append(desc.Queues, QueueRequest{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}
	if b.cfg.Instance.DebugMode {
		desc.Layers = b.cfg.Instance.Layers
	}

	device, err := b.driver.CreateDevice(candidate.Device, desc)
	if err != nil {
		return b.fail(StageLogicalDevice, ErrDeviceCreation, err)
	}
	b.releases.push("device", ReleaseFunc(func() {
		b.driver.DestroyDevice(device)
		b.device = nil
	}))
	// the surface goes before the device on the way down
	b.releases.raise("surface")

	queues := make(map[uint32]Handle, len(families))
	for _, family := range families {
		queues[family] = b.driver.DeviceQueue(device, family)
	}
	b.device = &LogicalDevice{
		Device:        device,
		GraphicsQueue: queues[candidate.Indices.Graphics.Index],
		PresentQueue:  queues[candidate.Indices.Present.Index],
		Families:      families,
	}
	log.WithField("families", families).Info("logical device created")

	b.state = StateLogicalDeviceReady
	return nil
}
