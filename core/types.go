// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Enumerations below carry the numeric values Vulkan uses,
// drivers convert them with a plain cast.

// Format is an image format
type Format uint32

// Formats the backend knows by name
const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatR8G8B8A8Srgb  Format = 43
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

// ColorSpace is the presentation color space of a surface format
type ColorSpace uint32

// ColorSpaceSrgbNonlinear is the only color space every surface supports
const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat is a format and color space pair a surface can present
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode is a swapchain presentation mode
type PresentMode uint32

// Presentation modes
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (p PresentMode) String() string {
	switch p {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo_relaxed"
	default:
		return fmt.Sprintf("present_mode(%d)", uint32(p))
	}
}

// QueueFlags describe the capabilities of a queue family
type QueueFlags uint32

// Queue capability bits
const (
	QueueGraphicsBit QueueFlags = 0x1
	QueueComputeBit  QueueFlags = 0x2
	QueueTransferBit QueueFlags = 0x4
)

// QueueFamily is one entry of a device's queue family list,
// its index is its position in that list
type QueueFamily struct {
	Flags QueueFlags
	Count uint32
}

// Extent2D is a size in pixels
type Extent2D struct {
	Width  uint32
	Height uint32
}

// SurfaceCapabilities are the limits a surface places on a swapchain
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32 // 0 means unbounded
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform uint32
}

// DeviceType is the kind of physical device
type DeviceType uint32

// Physical device kinds
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (d DeviceType) String() string {
	switch d {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// MarshalText lets device info print its type by name
func (d DeviceType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	APIVersion    string
	Name          string
	Type          DeviceType
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint64
}

// MessageSeverity is the severity of a validation message
type MessageSeverity uint32

// Message severities, as bits so they can be combined into a filter
const (
	SeverityVerbose MessageSeverity = 0x1
	SeverityInfo    MessageSeverity = 0x10
	SeverityWarning MessageSeverity = 0x100
	SeverityError   MessageSeverity = 0x1000
)

func (s MessageSeverity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%#x)", uint32(s))
	}
}

// MessageType categorizes validation messages
type MessageType uint32

// Message categories
const (
	MessageGeneral     MessageType = 0x1
	MessageValidation  MessageType = 0x2
	MessagePerformance MessageType = 0x4
)

// DiagnosticMessage is a single message delivered to a debug messenger
type DiagnosticMessage struct {
	Severity MessageSeverity
	Type     MessageType
	Text     string
}

// InstanceDesc describes the instance to create
type InstanceDesc struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
	Layers             []string
	Extensions         []string
}

// MessengerDesc describes a debug messenger. Callback returns
// whether the call that triggered the message should be aborted.
type MessengerDesc struct {
	Severities MessageSeverity
	Types      MessageType
	Callback   func(DiagnosticMessage) bool
}

// QueueRequest asks for queues from one family
type QueueRequest struct {
	Family     uint32
	Priorities []float32
}

// DeviceDesc describes the logical device to create
type DeviceDesc struct {
	Queues     []QueueRequest
	Extensions []string
	Layers     []string
}

// SharingMode controls cross-family access to images
type SharingMode uint32

// Sharing modes
const (
	SharingExclusive  SharingMode = 0
	SharingConcurrent SharingMode = 1
)

// ImageUsage flags
type ImageUsage uint32

// ImageUsageColorAttachment marks images rendered to as color attachments
const ImageUsageColorAttachment ImageUsage = 0x10

// CompositeAlpha is the alpha compositing mode of a swapchain
type CompositeAlpha uint32

// CompositeAlphaOpaque ignores alpha when compositing
const CompositeAlphaOpaque CompositeAlpha = 0x1

// SwapchainDesc describes the swapchain to create
type SwapchainDesc struct {
	Surface        Handle
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent2D
	ArrayLayers    uint32
	Usage          ImageUsage
	SharingMode    SharingMode
	QueueFamilies  []uint32
	PreTransform   uint32
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
}

// ImageAspect selects the aspects of an image a view covers
type ImageAspect uint32

// ImageAspectColor is the color aspect
const ImageAspectColor ImageAspect = 0x1

// ImageViewDesc describes a 2D view over a single image.
// Component mapping is always identity.
type ImageViewDesc struct {
	Image       Handle
	Format      Format
	Aspect      ImageAspect
	MipLevels   uint32
	ArrayLayers uint32
}

// AttachmentLoadOp is what happens to an attachment at the start of a pass
type AttachmentLoadOp uint32

// Load operations
const (
	LoadOpLoad     AttachmentLoadOp = 0
	LoadOpClear    AttachmentLoadOp = 1
	LoadOpDontCare AttachmentLoadOp = 2
)

// AttachmentStoreOp is what happens to an attachment at the end of a pass
type AttachmentStoreOp uint32

// Store operations
const (
	StoreOpStore    AttachmentStoreOp = 0
	StoreOpDontCare AttachmentStoreOp = 1
)

// ImageLayout is the memory layout of an image
type ImageLayout uint32

// Layouts used by the render pass
const (
	LayoutUndefined              ImageLayout = 0
	LayoutColorAttachmentOptimal ImageLayout = 2
	LayoutPresentSrc             ImageLayout = 1000001002
)

// AttachmentDesc describes one render pass attachment
type AttachmentDesc struct {
	Format         Format
	Samples        uint32
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

// AttachmentRef references an attachment from a subpass
type AttachmentRef struct {
	Attachment uint32
	Layout     ImageLayout
}

// SubpassDesc describes a graphics subpass
type SubpassDesc struct {
	ColorAttachments []AttachmentRef
}

// SubpassExternal refers to work outside the render pass
const SubpassExternal = ^uint32(0)

// PipelineStage flags
type PipelineStage uint32

// PipelineStageColorAttachmentOutput is where color attachments are written
const PipelineStageColorAttachmentOutput PipelineStage = 0x400

// Access flags
type Access uint32

// AccessColorAttachmentWrite is write access to a color attachment
const AccessColorAttachmentWrite Access = 0x100

// SubpassDependency orders work between subpasses
type SubpassDependency struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  PipelineStage
	DstStageMask  PipelineStage
	SrcAccessMask Access
	DstAccessMask Access
}

// RenderPassDesc describes a render pass
type RenderPassDesc struct {
	Attachments  []AttachmentDesc
	Subpasses    []SubpassDesc
	Dependencies []SubpassDependency
}

// FramebufferDesc binds image views to a render pass
type FramebufferDesc struct {
	RenderPass  Handle
	Attachments []Handle
	Extent      Extent2D
	Layers      uint32
}

// PipelineLayoutDesc describes the resource interface of a pipeline.
// The backend never binds descriptor sets or push constants, so both counts stay zero.
type PipelineLayoutDesc struct {
	SetLayoutCount         uint32
	PushConstantRangeCount uint32
}

// ShaderStageKind is the stage a shader module runs in
type ShaderStageKind uint32

// Shader stages
const (
	ShaderStageVertex   ShaderStageKind = 0x1
	ShaderStageFragment ShaderStageKind = 0x10
)

// ShaderStage binds a module to a stage
type ShaderStage struct {
	Stage  ShaderStageKind
	Module Handle
	Entry  string
}

// PrimitiveTopology is how vertices are assembled
type PrimitiveTopology uint32

// PrimitiveTopologyTriangleList assembles independent triangles
const PrimitiveTopologyTriangleList PrimitiveTopology = 3

// DynamicState is pipeline state set at record time
type DynamicState uint32

// Dynamic states
const (
	DynamicStateViewport DynamicState = 0
	DynamicStateScissor  DynamicState = 1
)

// PolygonMode is the rasterization fill mode
type PolygonMode uint32

// PolygonModeFill fills polygons
const PolygonModeFill PolygonMode = 0

// CullMode selects faces to discard
type CullMode uint32

// CullModeBack discards back faces
const CullModeBack CullMode = 0x2

// FrontFace is the winding that counts as front facing
type FrontFace uint32

// FrontFaceClockwise treats clockwise triangles as front facing
const FrontFaceClockwise FrontFace = 1

// BlendFactor is a blend equation factor
type BlendFactor uint32

// Blend factors
const (
	BlendFactorZero             BlendFactor = 0
	BlendFactorOne              BlendFactor = 1
	BlendFactorSrcAlpha         BlendFactor = 6
	BlendFactorOneMinusSrcAlpha BlendFactor = 7
)

// BlendOp is a blend equation operator
type BlendOp uint32

// BlendOpAdd adds source and destination terms
const BlendOpAdd BlendOp = 0

// ColorComponent selects written color channels
type ColorComponent uint32

// ColorComponentAll writes R, G, B and A
const ColorComponentAll ColorComponent = 0xF

// LogicOp is a framebuffer logic operation
type LogicOp uint32

// LogicOpCopy copies the source
const LogicOpCopy LogicOp = 3

// ColorBlendAttachment is the blend state of one color attachment
type ColorBlendAttachment struct {
	Enable         bool
	SrcColorFactor BlendFactor
	DstColorFactor BlendFactor
	ColorOp        BlendOp
	SrcAlphaFactor BlendFactor
	DstAlphaFactor BlendFactor
	AlphaOp        BlendOp
	WriteMask      ColorComponent
}

// Viewport is a viewport transform
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect2D is a rectangle in pixels
type Rect2D struct {
	X, Y   int32
	Extent Extent2D
}

// GraphicsPipelineDesc is the complete state of a graphics pipeline
type GraphicsPipelineDesc struct {
	Stages []ShaderStage

	Topology         PrimitiveTopology
	PrimitiveRestart bool

	// Viewport and Scissor are only references, both are dynamic
	Viewport      Viewport
	Scissor       Rect2D
	DynamicStates []DynamicState

	PolygonMode PolygonMode
	CullMode    CullMode
	FrontFace   FrontFace
	LineWidth   float32

	Samples uint32

	Blend          ColorBlendAttachment
	LogicOpEnable  bool
	LogicOp        LogicOp
	BlendConstants mgl32.Vec4

	Layout     Handle
	RenderPass Handle
	Subpass    uint32
}
