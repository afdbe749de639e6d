// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vulkan implements core.Driver on top of the Vulkan API.
package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/devblok/potentia/core"
	vk "github.com/vulkan-go/vulkan"
)

// DebugReportExtension is the instance extension debug messengers are built on
const DebugReportExtension = "VK_EXT_debug_report"

// New loads the Vulkan entry points. procAddr is the loader's
// vkGetInstanceProcAddr, as handed out by the window system;
// when nil the system loader is used.
func New(procAddr unsafe.Pointer) (*Driver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.New("vk.SetDefaultGetInstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}
	return &Driver{}, nil
}

// Driver is a core.Driver backed by Vulkan. Handles it returns
// hold the native vk types.
type Driver struct{}

var _ core.Driver = (*Driver)(nil)

// InstanceLayers implements interface
func (Driver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	names := make([]string, 0, count)
	for _, layer := range layers[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// DebugExtensions implements interface
func (Driver) DebugExtensions() []string {
	return []string{DebugReportExtension}
}

// CreateInstance implements interface
func (Driver) CreateInstance(desc core.InstanceDesc) (core.Handle, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(desc.ApplicationName),
		ApplicationVersion: desc.ApplicationVersion,
		PEngineName:        safeString(desc.EngineName),
		EngineVersion:      desc.EngineVersion,
		ApiVersion:         desc.APIVersion,
	}
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(desc.Extensions)),
		PpEnabledExtensionNames: safeStrings(desc.Extensions),
		EnabledLayerCount:       uint32(len(desc.Layers)),
		PpEnabledLayerNames:     safeStrings(desc.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(instance)
	return instance, nil
}

// DestroyInstance implements interface
func (Driver) DestroyInstance(instance core.Handle) {
	vk.DestroyInstance(instance.(vk.Instance), nil)
}

// CreateDebugMessenger implements interface
func (Driver) CreateDebugMessenger(instance core.Handle, desc core.MessengerDesc) (core.Handle, error) {
	callback := desc.Callback
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: ReportFlags(desc.Severities, desc.Types),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
			object uint64, location uint, messageCode int32, layerPrefix string,
			message string, userData unsafe.Pointer) vk.Bool32 {
			return bool32(callback(core.DiagnosticMessage{
				Severity: SeverityOf(flags),
				Type:     TypeOf(flags),
				Text:     fmt.Sprintf("[%s] %s", layerPrefix, message),
			}))
		},
	}

	var messenger vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(instance.(vk.Instance), &createInfo, nil, &messenger)); err != nil {
		return nil, errors.New("vk.CreateDebugReportCallback(): " + err.Error())
	}
	return messenger, nil
}

// DestroyDebugMessenger implements interface
func (Driver) DestroyDebugMessenger(instance, messenger core.Handle) {
	vk.DestroyDebugReportCallback(instance.(vk.Instance), messenger.(vk.DebugReportCallback), nil)
}

// DestroySurface implements interface
func (Driver) DestroySurface(instance, surface core.Handle) {
	vk.DestroySurface(instance.(vk.Instance), surface.(vk.Surface), nil)
}

// PhysicalDevices implements interface
func (Driver) PhysicalDevices(instance core.Handle) ([]core.Handle, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance.(vk.Instance), &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance.(vk.Instance), &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	handles := make([]core.Handle, deviceCount)
	for i := range handles {
		handles[i] = availableDevices[i]
	}
	return handles, nil
}

// PhysicalDeviceInfo implements interface
func (d Driver) PhysicalDeviceInfo(device core.Handle) core.PhysicalDeviceInfo {
	var info core.PhysicalDeviceInfo
	pd := device.(vk.PhysicalDevice)

	// Get extension info
	if extensions, err := d.DeviceExtensions(device); err != nil {
		info.Invalid = true
	} else {
		info.Extensions = extensions
	}

	// Get layers info
	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(pd, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(pd, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	// Get memory info
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory += uint64(memoryProperties.MemoryHeaps[iMem].Size)
	}

	// Get general device info
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	info.ID = int(properties.DeviceID)
	info.VendorID = int(properties.VendorID)
	info.Name = vk.ToString(properties.DeviceName[:])
	info.DriverVersion = int(properties.DriverVersion)
	info.APIVersion = core.VersionString(properties.ApiVersion)
	info.Type = core.DeviceType(properties.DeviceType)
	return info
}

// QueueFamilies implements interface
func (Driver) QueueFamilies(device core.Handle) []core.QueueFamily {
	pd := device.(vk.PhysicalDevice)
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, queueFamilies)

	families := make([]core.QueueFamily, queueFamilyCount)
	for i := range families {
		queueFamilies[i].Deref()
		families[i] = core.QueueFamily{
			Flags: core.QueueFlags(queueFamilies[i].QueueFlags),
			Count: queueFamilies[i].QueueCount,
		}
	}
	return families
}

// SurfaceSupport implements interface
func (Driver) SurfaceSupport(device core.Handle, family uint32, surface core.Handle) (bool, error) {
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(device.(vk.PhysicalDevice), family, surface.(vk.Surface), &supported)); err != nil {
		return false, errors.New("vk.GetPhysicalDeviceSurfaceSupport(): " + err.Error())
	}
	return supported.B(), nil
}

// DeviceExtensions implements interface
func (Driver) DeviceExtensions(device core.Handle) ([]string, error) {
	pd := device.(vk.PhysicalDevice)
	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &numDeviceExtensions, nil)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &numDeviceExtensions, deviceExt)); err != nil {
		return nil, errors.New("vk.EnumerateDeviceExtensionProperties(): " + err.Error())
	}
	names := make([]string, 0, numDeviceExtensions)
	for _, ext := range deviceExt[:numDeviceExtensions] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// SurfaceCapabilities implements interface
func (Driver) SurfaceCapabilities(device, surface core.Handle) (core.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(device.(vk.PhysicalDevice), surface.(vk.Surface), &caps)); err != nil {
		return core.SurfaceCapabilities{}, errors.New("vk.GetPhysicalDeviceSurfaceCapabilities(): " + err.Error())
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return core.SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    extentFrom(caps.CurrentExtent),
		MinImageExtent:   extentFrom(caps.MinImageExtent),
		MaxImageExtent:   extentFrom(caps.MaxImageExtent),
		CurrentTransform: uint32(caps.CurrentTransform),
	}, nil
}

// SurfaceFormats implements interface
func (Driver) SurfaceFormats(device, surface core.Handle) ([]core.SurfaceFormat, error) {
	pd, s := device.(vk.PhysicalDevice), surface.(vk.Surface)
	var surfaceFormatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &surfaceFormatCount, nil)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	surfaceFormats := make([]vk.SurfaceFormat, surfaceFormatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &surfaceFormatCount, surfaceFormats)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	formats := make([]core.SurfaceFormat, surfaceFormatCount)
	for i := range formats {
		surfaceFormats[i].Deref()
		formats[i] = core.SurfaceFormat{
			Format:     core.Format(surfaceFormats[i].Format),
			ColorSpace: core.ColorSpace(surfaceFormats[i].ColorSpace),
		}
	}
	return formats, nil
}

// PresentModes implements interface
func (Driver) PresentModes(device, surface core.Handle) ([]core.PresentMode, error) {
	pd, s := device.(vk.PhysicalDevice), surface.(vk.Surface)
	var presentModeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &presentModeCount, nil)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
	}
	presentModes := make([]vk.PresentMode, presentModeCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &presentModeCount, presentModes)); err != nil {
		return nil, errors.New("vk.GetPhysicalDeviceSurfacePresentModes(): " + err.Error())
	}
	modes := make([]core.PresentMode, presentModeCount)
	for i := range modes {
		modes[i] = core.PresentMode(presentModes[i])
	}
	return modes, nil
}

// CreateDevice implements interface
func (Driver) CreateDevice(physicalDevice core.Handle, desc core.DeviceDesc) (core.Handle, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(desc.Queues))
	for i, queue := range desc.Queues {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: queue.Family,
			QueueCount:       uint32(len(queue.Priorities)),
			PQueuePriorities: queue.Priorities,
		}
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(desc.Extensions)),
		PpEnabledExtensionNames: safeStrings(desc.Extensions),
		EnabledLayerCount:       uint32(len(desc.Layers)),
		PpEnabledLayerNames:     safeStrings(desc.Layers),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var vkDevice vk.Device
	if err := vk.Error(vk.CreateDevice(physicalDevice.(vk.PhysicalDevice), &dci, nil, &vkDevice)); err != nil {
		return nil, errors.New("vk.CreateDevice(): " + err.Error())
	}
	return vkDevice, nil
}

// DeviceQueue implements interface
func (Driver) DeviceQueue(device core.Handle, family uint32) core.Handle {
	var deviceQueue vk.Queue
	vk.GetDeviceQueue(device.(vk.Device), family, 0, &deviceQueue)
	return deviceQueue
}

// DeviceWaitIdle implements interface
func (Driver) DeviceWaitIdle(device core.Handle) error {
	if err := vk.Error(vk.DeviceWaitIdle(device.(vk.Device))); err != nil {
		return errors.New("vk.DeviceWaitIdle(): " + err.Error())
	}
	return nil
}

// DestroyDevice implements interface
func (Driver) DestroyDevice(device core.Handle) {
	vk.DestroyDevice(device.(vk.Device), nil)
}

func extentFrom(e vk.Extent2D) core.Extent2D {
	return core.Extent2D{Width: e.Width, Height: e.Height}
}

func extentTo(e core.Extent2D) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}
