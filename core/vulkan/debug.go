// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/potentia/core"
	vk "github.com/vulkan-go/vulkan"
)

// ReportFlags translates a messenger filter into debug report flags.
// Debug report has no notion of message types apart from performance
// warnings, so general and validation messages follow the severities.
func ReportFlags(severities core.MessageSeverity, types core.MessageType) vk.DebugReportFlags {
	var flags vk.DebugReportFlagBits
	if severities&core.SeverityVerbose != 0 {
		flags |= vk.DebugReportDebugBit
	}
	if severities&core.SeverityInfo != 0 {
		flags |= vk.DebugReportInformationBit
	}
	if severities&core.SeverityWarning != 0 {
		flags |= vk.DebugReportWarningBit
		if types&core.MessagePerformance != 0 {
			flags |= vk.DebugReportPerformanceWarningBit
		}
	}
	if severities&core.SeverityError != 0 {
		flags |= vk.DebugReportErrorBit
	}
	return vk.DebugReportFlags(flags)
}

// SeverityOf returns the most severe level present in flags
func SeverityOf(flags vk.DebugReportFlags) core.MessageSeverity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return core.SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return core.SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return core.SeverityInfo
	default:
		return core.SeverityVerbose
	}
}

// TypeOf classifies a debug report message
func TypeOf(flags vk.DebugReportFlags) core.MessageType {
	if flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0 {
		return core.MessagePerformance
	}
	return core.MessageValidation
}
