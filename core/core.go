package core

// ShaderSource resolves a shader label to its compiled SPIR-V blob.
// Implementations must be safe for concurrent use.
type ShaderSource interface {
	// Load returns the compiled blob for label, or an error wrapping
	// ErrShaderResourceNotFound when no such label exists
	Load(label string) ([]byte, error)
}

// Device owns a logical GPU and acts as the factory for every resource.
// All Create methods may be called from any goroutine.
type Device interface {
	// CreateBuffer allocates a buffer and binds host-visible memory to it
	CreateBuffer(*BufferDescriptor) (Buffer, error)

	// CreateTexture allocates an image, binds device memory and creates
	// nothing else; layout transitions happen inside render passes
	CreateTexture(*TextureDescriptor) (Texture, error)

	// CreateSampler creates an immutable sampler
	CreateSampler(*SamplerDescriptor) (Sampler, error)

	// CreateShaderModule builds a shader module from the descriptor's code,
	// or resolves the label through the configured ShaderSource when the
	// code is empty
	CreateShaderModule(*ShaderModuleDescriptor) (ShaderModule, error)

	// CreateBindGroupLayout describes a set of resource bindings
	CreateBindGroupLayout(*BindGroupLayoutDescriptor) (BindGroupLayout, error)

	// CreateBindGroup allocates a descriptor set from the device pool and
	// writes one descriptor per entry
	CreateBindGroup(*BindGroupDescriptor) (BindGroup, error)

	// CreateRenderPipeline builds a complete graphics pipeline; the result
	// remembers the render-pass shape it was built against
	CreateRenderPipeline(*RenderPipelineDescriptor) (RenderPipeline, error)

	// CreateComputePipeline builds a compute pipeline
	CreateComputePipeline(*ComputePipelineDescriptor) (ComputePipeline, error)

	// CreateCommandEncoder allocates a command buffer and begins recording
	CreateCommandEncoder() (CommandEncoder, error)

	// Queue returns the device's single submission queue
	Queue() Queue

	// Destroy tears down every tracked resource and the device itself.
	// Safe to call more than once
	Destroy()
}

// Buffer is a linear allocation of GPU memory with host access.
type Buffer interface {
	// Size returns the byte size requested at creation
	Size() uint64

	// Usage returns the usage set requested at creation
	Usage() BufferUsage

	// Write copies data into the buffer at offset
	Write(offset uint64, data []byte) error

	// WriteFloat32 copies data into the buffer at a byte offset
	WriteFloat32(offset uint64, data []float32) error

	// Read copies size bytes out of the buffer starting at offset
	Read(offset, size uint64) ([]byte, error)

	// ReadFloat32 reads count float32 values starting at a byte offset
	ReadFloat32(offset uint64, count int) ([]float32, error)

	// Destroy releases the buffer and its memory. Safe to call twice
	Destroy()
}

// Texture is an image allocation. Swapchain textures are borrowed: their
// Destroy releases only the wrapper, never the underlying image.
type Texture interface {
	// Extent returns the texture dimensions
	Extent() Extent3D

	// Format returns the texel format
	Format() TextureFormat

	// CreateView creates a view over the texture; a nil descriptor means
	// the full default view
	CreateView(*TextureViewDescriptor) (TextureView, error)

	// Destroy releases the texture. Safe to call twice
	Destroy()
}

// TextureView selects a format and subresource range of a texture.
type TextureView interface {
	// Format returns the view format
	Format() TextureFormat

	// Destroy releases the view. Safe to call twice
	Destroy()
}

// Sampler configures texture filtering and addressing.
type Sampler interface {
	Destroy()
}

// ShaderModule wraps a compiled shader blob.
type ShaderModule interface {
	// Label returns the label the module was created under
	Label() string

	Destroy()
}

// BindGroupLayout describes the shape of a bind group.
type BindGroupLayout interface {
	Destroy()
}

// BindGroup is an allocated, written descriptor set.
type BindGroup interface {
	Destroy()
}

// RenderPipeline is a complete graphics pipeline. It is only bindable
// inside render passes whose attachment shape matches the one it was
// created against.
type RenderPipeline interface {
	Destroy()
}

// ComputePipeline is a complete compute pipeline.
type ComputePipeline interface {
	Destroy()
}

// CommandEncoder records GPU work. It begins recording at creation and
// moves to finished after Finish; every method on a finished encoder
// fails with ErrEncoderFinished.
type CommandEncoder interface {
	// BeginRenderPass starts a render pass over the descriptor's
	// attachments. Only one pass may be open at a time
	BeginRenderPass(*RenderPassDescriptor) (RenderPassEncoder, error)

	// BeginComputePass starts a compute pass
	BeginComputePass() (ComputePassEncoder, error)

	// Finish ends recording and returns the submittable command buffer.
	// The encoder is unusable afterwards
	Finish(label string) (CommandBuffer, error)
}

// RenderPassEncoder records draw commands inside one render pass. Every
// method after End fails with ErrRenderPassEnded.
type RenderPassEncoder interface {
	// SetPipeline binds a render pipeline; it must have been created
	// against the same attachment shape as this pass
	SetPipeline(RenderPipeline) error

	// SetVertexBuffer binds a vertex buffer to a slot
	SetVertexBuffer(slot uint32, buffer Buffer, offset uint64) error

	// SetIndexBuffer binds the index buffer
	SetIndexBuffer(buffer Buffer, format IndexFormat, offset uint64) error

	// SetBindGroup binds a bind group at a set index; requires a pipeline
	SetBindGroup(index uint32, group BindGroup) error

	// Draw records a non-indexed draw; requires a pipeline
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error

	// DrawIndexed records an indexed draw; requires a pipeline
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error

	// End closes the pass and releases its transient state
	End() error
}

// ComputePassEncoder records dispatches inside one compute pass.
type ComputePassEncoder interface {
	SetPipeline(ComputePipeline) error
	SetBindGroup(index uint32, group BindGroup) error
	Dispatch(x, y, z uint32) error
	End() error
}

// CommandBuffer is finished, submittable GPU work. Submission consumes it.
type CommandBuffer interface {
	// Label returns the label given to Finish
	Label() string
}

// Queue submits command buffers. Submission is synchronous: Submit
// returns only after the GPU has completed the batch.
type Queue interface {
	Submit(buffers ...CommandBuffer) error
}

// SurfaceFrame is one acquired swapchain image, valid until the Present
// that consumes it. Texture and View are borrowed.
type SurfaceFrame struct {
	Texture Texture
	View    TextureView

	// Index is the swapchain image index, passed back at present
	Index uint32

	// Suboptimal reports that the chain still works but no longer matches
	// the surface exactly
	Suboptimal bool
}

// Surface is a presentable window surface and its swapchain.
type Surface interface {
	// Configure (re)creates the swapchain for the given device and
	// configuration. Calling it again reconfigures in place. A zero
	// extent falls back to the platform's current framebuffer size
	Configure(device Device, config *SurfaceConfiguration) error

	// AcquireFrame obtains the next swapchain image, recreating a stale
	// chain transparently
	AcquireFrame() (*SurfaceFrame, error)

	// Present queues the frame for presentation. It needs an acquired,
	// not yet presented frame. A stale or suboptimal chain is recreated
	// in place and the call still succeeds
	Present(frame *SurfaceFrame) error

	// Resize recreates the swapchain at the new dimensions
	Resize(width, height uint32) error

	// Destroy releases the swapchain and surface. Safe to call twice
	Destroy()
}
