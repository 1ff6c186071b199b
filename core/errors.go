package core

import "errors"

// Errors surfaced by every backend. Backends wrap these with call-site
// detail, callers classify with errors.Is.
var (
	// ErrResourceCreation signals that the backend failed to allocate or
	// construct a native resource (buffer, image, pipeline, ...).
	ErrResourceCreation = errors.New("gpu: resource creation failed")

	// ErrShaderResourceNotFound signals that no compiled shader blob could
	// be resolved for a shader module's label. This is a configuration
	// error, not a backend error.
	ErrShaderResourceNotFound = errors.New("gpu: compiled shader resource not found")

	// ErrDescriptorPoolExhausted signals that the device's descriptor pool
	// has no free sets left. No automatic growth or retry is performed.
	ErrDescriptorPoolExhausted = errors.New("gpu: descriptor pool exhausted")

	// ErrBindingMismatch signals that a bind group entry's resource type
	// does not match the layout entry at the same binding index.
	ErrBindingMismatch = errors.New("gpu: bind group entry does not match layout")

	// ErrEncoderFinished signals an encode call on a command encoder after
	// Finish was called.
	ErrEncoderFinished = errors.New("gpu: command encoder already finished")

	// ErrRenderPassEnded signals an encode call on a render pass encoder
	// after End was called.
	ErrRenderPassEnded = errors.New("gpu: render pass already ended")

	// ErrIncompatibleRenderPass signals a pipeline bind whose render pass
	// key differs from the active render pass.
	ErrIncompatibleRenderPass = errors.New("gpu: pipeline incompatible with active render pass")

	// ErrNoPipelineBound signals a draw or bind group call before any
	// pipeline was set on the encoder.
	ErrNoPipelineBound = errors.New("gpu: no pipeline bound")

	// ErrSubmissionFailed signals a fence creation, queue submission or
	// fence wait failure. The submitted command buffers are still released.
	ErrSubmissionFailed = errors.New("gpu: queue submission failed")

	// ErrFrameAcquisitionFailed signals an unrecoverable swapchain image
	// acquisition failure.
	ErrFrameAcquisitionFailed = errors.New("gpu: frame acquisition failed")

	// ErrPresentFailed signals a presentation failure other than the
	// stale/suboptimal conditions that are recovered in place.
	ErrPresentFailed = errors.New("gpu: present failed")

	// ErrSurfaceUnconfigured signals a frame operation on a surface that
	// was never configured.
	ErrSurfaceUnconfigured = errors.New("gpu: surface not configured")

	// ErrUnsupportedFormat signals a texture format outside the supported
	// set.
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")

	// ErrInvalidDescriptor signals a malformed descriptor, detected before
	// any native call.
	ErrInvalidDescriptor = errors.New("gpu: invalid descriptor")
)
