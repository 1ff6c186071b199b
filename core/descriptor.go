package core

import "fmt"

// TextureFormat identifies a texel format.
type TextureFormat int

// Supported texel formats.
const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatBGRA8Unorm
	TextureFormatRGBA16Float
	TextureFormatDepth24PlusStencil8
)

// String returns the canonical lowercase format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatDepth24PlusStencil8:
		return "depth24plus-stencil8"
	default:
		return "undefined"
	}
}

// HasDepth reports whether the format carries a depth aspect.
func (f TextureFormat) HasDepth() bool {
	return f == TextureFormatDepth24PlusStencil8
}

// LoadOp selects what happens to an attachment at render pass begin.
type LoadOp int

// Load operations.
const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

// String returns the canonical load op name.
func (op LoadOp) String() string {
	if op == LoadOpLoad {
		return "load"
	}
	return "clear"
}

// StoreOp selects what happens to an attachment at render pass end.
type StoreOp int

// Store operations.
const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// String returns the canonical store op name.
func (op StoreOp) String() string {
	if op == StoreOpDiscard {
		return "discard"
	}
	return "store"
}

// BufferUsage is a set of buffer usage flags.
type BufferUsage uint32

// Buffer usage flags, combinable with |.
const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

// TextureUsage is a set of texture usage flags.
type TextureUsage uint32

// Texture usage flags, combinable with |.
const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// ShaderStage is a set of pipeline stage flags for binding visibility.
type ShaderStage uint32

// Shader stage flags, combinable with |.
const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
	ShaderStageCompute
)

// TextureDimension selects the image dimensionality.
type TextureDimension int

// Texture dimensions.
const (
	TextureDimension2D TextureDimension = iota
	TextureDimension1D
	TextureDimension3D
)

// PrimitiveTopology selects how vertices assemble into primitives.
type PrimitiveTopology int

// Primitive topologies.
const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// CullMode selects which faces are discarded.
type CullMode int

// Cull modes.
const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects the winding order of front faces.
type FrontFace int

// Front face windings.
const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// IndexFormat selects the index buffer element width.
type IndexFormat int

// Index formats.
const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// FilterMode selects sampler filtering.
type FilterMode int

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// AddressMode selects sampler coordinate wrapping.
type AddressMode int

// Address modes.
const (
	AddressModeRepeat AddressMode = iota
	AddressModeMirrorRepeat
	AddressModeClampToEdge
)

// BindingType identifies the resource kind a binding expects.
type BindingType int

// Binding types.
const (
	BindingUniformBuffer BindingType = iota
	BindingStorageBuffer
	BindingSampler
	BindingSampledTexture
	BindingCombinedImageSampler
)

// VertexFormat identifies a vertex attribute format.
type VertexFormat int

// Vertex attribute formats.
const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
)

// Size returns the byte size of one attribute of the format.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat32, VertexFormatUint32:
		return 4
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// Extent3D is a texture size in texels.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// Color is a clear color in RGBA order.
type Color struct {
	R, G, B, A float32
}

// BufferDescriptor configures CreateBuffer. MappedAtCreation keeps the
// backing memory mapped for the buffer's whole lifetime instead of
// mapping around each access.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	MappedAtCreation bool
}

// Validate reports descriptor errors before any native call is made.
func (d *BufferDescriptor) Validate() error {
	if d.Size == 0 {
		return fmt.Errorf("buffer %q: zero size: %w", d.Label, ErrInvalidDescriptor)
	}
	if d.Usage == 0 {
		return fmt.Errorf("buffer %q: empty usage: %w", d.Label, ErrInvalidDescriptor)
	}
	return nil
}

// TextureDescriptor configures CreateTexture.
type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     TextureDimension
	Format        TextureFormat
	Usage         TextureUsage
}

// Validate reports descriptor errors before any native call is made.
func (d *TextureDescriptor) Validate() error {
	if d.Size.Width == 0 || d.Size.Height == 0 {
		return fmt.Errorf("texture %q: zero extent: %w", d.Label, ErrInvalidDescriptor)
	}
	if d.Format == TextureFormatUndefined {
		return fmt.Errorf("texture %q: %w", d.Label, ErrUnsupportedFormat)
	}
	if d.Usage == 0 {
		return fmt.Errorf("texture %q: empty usage: %w", d.Label, ErrInvalidDescriptor)
	}
	return nil
}

// TextureViewDescriptor configures Texture.CreateView. Zero counts mean
// the remaining range; an undefined format inherits the texture's.
type TextureViewDescriptor struct {
	Label           string
	Format          TextureFormat
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// SamplerDescriptor configures CreateSampler.
type SamplerDescriptor struct {
	Label        string
	MagFilter    FilterMode
	MinFilter    FilterMode
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
}

// ShaderModuleDescriptor configures CreateShaderModule. When Code is
// empty the device resolves Label through its ShaderSource.
type ShaderModuleDescriptor struct {
	Label string
	Code  []byte
}

// BindGroupLayoutEntry describes one binding slot in a layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

// BindGroupLayoutDescriptor configures CreateBindGroupLayout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds one resource. Exactly the fields the layout
// entry's type calls for must be set.
type BindGroupEntry struct {
	Binding uint32

	Buffer Buffer
	Offset uint64
	Size   uint64

	TextureView TextureView
	Sampler     Sampler
}

// BindGroupDescriptor configures CreateBindGroup.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexAttribute is one attribute inside a vertex buffer layout.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint32
	ShaderLocation uint32
}

// VertexBufferLayout describes one vertex buffer slot.
type VertexBufferLayout struct {
	ArrayStride uint32
	Attributes  []VertexAttribute
}

// RenderPipelineDescriptor configures CreateRenderPipeline. ColorFormats
// together with the load/store policy and DepthStencilFormat define the
// render-pass shape the pipeline is compatible with.
type RenderPipelineDescriptor struct {
	Label string

	VertexShader   ShaderModule
	FragmentShader ShaderModule

	VertexLayouts []VertexBufferLayout
	Layouts       []BindGroupLayout

	ColorFormats       []TextureFormat
	ColorLoadOp        LoadOp
	ColorStoreOp       StoreOp
	DepthStencilFormat TextureFormat

	Topology     PrimitiveTopology
	CullMode     CullMode
	FrontFace    FrontFace
	BlendEnabled bool
}

// Validate reports descriptor errors before any native call is made.
func (d *RenderPipelineDescriptor) Validate() error {
	if d.VertexShader == nil {
		return fmt.Errorf("pipeline %q: missing vertex shader: %w", d.Label, ErrInvalidDescriptor)
	}
	if len(d.ColorFormats) == 0 {
		return fmt.Errorf("pipeline %q: no color formats: %w", d.Label, ErrInvalidDescriptor)
	}
	for _, f := range d.ColorFormats {
		if f == TextureFormatUndefined || f.HasDepth() {
			return fmt.Errorf("pipeline %q: color format %s: %w", d.Label, f, ErrUnsupportedFormat)
		}
	}
	return nil
}

// ComputePipelineDescriptor configures CreateComputePipeline.
type ComputePipelineDescriptor struct {
	Label   string
	Shader  ShaderModule
	Layouts []BindGroupLayout
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

// DepthStencilAttachment is the optional depth target of a render pass.
type DepthStencilAttachment struct {
	View         TextureView
	DepthLoadOp  LoadOp
	DepthStoreOp StoreOp
	ClearDepth   float32
	ClearStencil uint32
}

// RenderPassDescriptor configures CommandEncoder.BeginRenderPass.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
}

// Validate reports descriptor errors before any native call is made.
func (d *RenderPassDescriptor) Validate() error {
	if len(d.ColorAttachments) == 0 {
		return fmt.Errorf("render pass %q: no color attachments: %w", d.Label, ErrInvalidDescriptor)
	}
	for i, att := range d.ColorAttachments {
		if att.View == nil {
			return fmt.Errorf("render pass %q: color attachment %d has no view: %w", d.Label, i, ErrInvalidDescriptor)
		}
	}
	if d.DepthStencilAttachment != nil && d.DepthStencilAttachment.View == nil {
		return fmt.Errorf("render pass %q: depth attachment has no view: %w", d.Label, ErrInvalidDescriptor)
	}
	return nil
}

// PresentMode selects swapchain pacing. Only "fifo" is guaranteed;
// anything else falls back to fifo semantics.
type PresentMode string

// Present modes.
const (
	PresentModeFifo    PresentMode = "fifo"
	PresentModeMailbox PresentMode = "mailbox"
)

// SurfaceConfiguration configures Surface.Configure.
type SurfaceConfiguration struct {
	Format      TextureFormat
	Usage       TextureUsage
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}
