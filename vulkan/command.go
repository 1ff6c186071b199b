package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// CreateCommandEncoder allocates one command buffer and begins
// one-time-submit recording on it immediately.
func (d *Device) CreateCommandEncoder() (core.CommandEncoder, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        d.commandPool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(d.device, &cbai, commandBuffers)); err != nil {
		return nil, fmt.Errorf("vk.AllocateCommandBuffers(): %s: %w", err.Error(), core.ErrResourceCreation)
	}
	commandBuffer := commandBuffers[0]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
		vk.FreeCommandBuffers(d.device, d.commandPool, 1, []vk.CommandBuffer{commandBuffer})
		return nil, fmt.Errorf("vk.BeginCommandBuffer(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &CommandEncoder{
		device: d,
		buffer: commandBuffer,
	}, nil
}

// CommandEncoder records GPU work into one command buffer. It starts
// recording at creation and is spent after Finish.
type CommandEncoder struct {
	device *Device
	buffer vk.CommandBuffer

	activePass *RenderPassEncoder
	finished   bool
}

// BeginRenderPass implements interface
func (e *CommandEncoder) BeginRenderPass(desc *core.RenderPassDescriptor) (core.RenderPassEncoder, error) {
	if e.finished {
		return nil, core.ErrEncoderFinished
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if e.activePass != nil && !e.activePass.ended {
		return nil, fmt.Errorf("render pass %q: another pass is still open: %w", desc.Label, core.ErrInvalidDescriptor)
	}

	key := passDescriptorKey(desc)
	colors := make([]colorAttachmentKey, len(desc.ColorAttachments))
	attachmentViews := make([]vk.ImageView, 0, len(desc.ColorAttachments)+1)
	for i, att := range desc.ColorAttachments {
		view, ok := att.View.(*TextureView)
		if !ok {
			return nil, fmt.Errorf("render pass %q: color attachment %d from another backend: %w", desc.Label, i, core.ErrInvalidDescriptor)
		}
		colors[i] = colorAttachmentKey{format: view.format, loadOp: att.LoadOp, storeOp: att.StoreOp}
		attachmentViews = append(attachmentViews, view.view)
	}
	depthFormat := core.TextureFormatUndefined
	if desc.DepthStencilAttachment != nil {
		view, ok := desc.DepthStencilAttachment.View.(*TextureView)
		if !ok {
			return nil, fmt.Errorf("render pass %q: depth attachment from another backend: %w", desc.Label, core.ErrInvalidDescriptor)
		}
		depthFormat = view.format
		attachmentViews = append(attachmentViews, view.view)
	}

	renderPass, err := e.device.renderPassFor(colors, depthFormat)
	if err != nil {
		return nil, err
	}

	// The pass renders at the extent of its first color attachment.
	target := desc.ColorAttachments[0].View.(*TextureView)
	width, height := target.extent.Width, target.extent.Height

	fci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(attachmentViews)),
		PAttachments:    attachmentViews,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if err := vk.Error(vk.CreateFramebuffer(e.device.device, &fci, nil, &framebuffer)); err != nil {
		return nil, fmt.Errorf("vk.CreateFramebuffer(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	clearValues := make([]vk.ClearValue, 0, len(desc.ColorAttachments)+1)
	for _, att := range desc.ColorAttachments {
		var cv vk.ClearValue
		cv.SetColor([]float32{att.ClearValue.R, att.ClearValue.G, att.ClearValue.B, att.ClearValue.A})
		clearValues = append(clearValues, cv)
	}
	if desc.DepthStencilAttachment != nil {
		var cv vk.ClearValue
		clearDepth := desc.DepthStencilAttachment.ClearDepth
		if clearDepth == 0 {
			clearDepth = 1
		}
		cv.SetDepthStencil(clearDepth, desc.DepthStencilAttachment.ClearStencil)
		clearValues = append(clearValues, cv)
	}

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: width, Height: height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(e.buffer, &rpbi, vk.SubpassContentsInline)

	vk.CmdSetViewport(e.buffer, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(e.buffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}})

	pass := &RenderPassEncoder{
		encoder:     e,
		buffer:      e.buffer,
		framebuffer: framebuffer,
		passKey:     key,
	}
	e.activePass = pass
	return pass, nil
}

// BeginComputePass implements interface
func (e *CommandEncoder) BeginComputePass() (core.ComputePassEncoder, error) {
	if e.finished {
		return nil, core.ErrEncoderFinished
	}
	return &ComputePassEncoder{
		encoder: e,
		buffer:  e.buffer,
	}, nil
}

// Finish implements interface
func (e *CommandEncoder) Finish(label string) (core.CommandBuffer, error) {
	if e.finished {
		return nil, core.ErrEncoderFinished
	}
	if e.activePass != nil && !e.activePass.ended {
		return nil, fmt.Errorf("command buffer %q: render pass still open: %w", label, core.ErrRenderPassEnded)
	}
	e.finished = true

	if err := vk.Error(vk.EndCommandBuffer(e.buffer)); err != nil {
		vk.FreeCommandBuffers(e.device.device, e.device.commandPool, 1, []vk.CommandBuffer{e.buffer})
		return nil, fmt.Errorf("vk.EndCommandBuffer(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &CommandBuffer{
		label:  label,
		device: e.device,
		buffer: e.buffer,
	}, nil
}

// RenderPassEncoder records draw commands into its parent encoder's
// command buffer until End is called.
type RenderPassEncoder struct {
	encoder     *CommandEncoder
	buffer      vk.CommandBuffer
	framebuffer vk.Framebuffer
	passKey     renderPassKey

	pipeline *RenderPipeline
	ended    bool
}

// SetPipeline implements interface
func (r *RenderPassEncoder) SetPipeline(pipeline core.RenderPipeline) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	p, ok := pipeline.(*RenderPipeline)
	if !ok || p == nil {
		return fmt.Errorf("pipeline from another backend: %w", core.ErrInvalidDescriptor)
	}
	if p.passKey != r.passKey {
		return fmt.Errorf("pipeline %q built for %q, pass is %q: %w", p.label, p.passKey, r.passKey, core.ErrIncompatibleRenderPass)
	}
	vk.CmdBindPipeline(r.buffer, vk.PipelineBindPointGraphics, p.pipeline)
	r.pipeline = p
	return nil
}

// SetVertexBuffer implements interface
func (r *RenderPassEncoder) SetVertexBuffer(slot uint32, buffer core.Buffer, offset uint64) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	b, ok := buffer.(*Buffer)
	if !ok || b == nil {
		return fmt.Errorf("buffer from another backend: %w", core.ErrInvalidDescriptor)
	}
	vk.CmdBindVertexBuffers(r.buffer, slot, 1, []vk.Buffer{b.buffer}, []vk.DeviceSize{vk.DeviceSize(offset)})
	return nil
}

// SetIndexBuffer implements interface
func (r *RenderPassEncoder) SetIndexBuffer(buffer core.Buffer, format core.IndexFormat, offset uint64) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	b, ok := buffer.(*Buffer)
	if !ok || b == nil {
		return fmt.Errorf("buffer from another backend: %w", core.ErrInvalidDescriptor)
	}
	vk.CmdBindIndexBuffer(r.buffer, b.buffer, vk.DeviceSize(offset), toVkIndexType(format))
	return nil
}

// SetBindGroup implements interface
func (r *RenderPassEncoder) SetBindGroup(index uint32, group core.BindGroup) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	if r.pipeline == nil {
		return core.ErrNoPipelineBound
	}
	g, ok := group.(*BindGroup)
	if !ok || g == nil {
		return fmt.Errorf("bind group from another backend: %w", core.ErrInvalidDescriptor)
	}
	vk.CmdBindDescriptorSets(r.buffer, vk.PipelineBindPointGraphics, r.pipeline.layout, index, 1, []vk.DescriptorSet{g.set}, 0, nil)
	return nil
}

// Draw implements interface
func (r *RenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	if r.pipeline == nil {
		return core.ErrNoPipelineBound
	}
	vk.CmdDraw(r.buffer, vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// DrawIndexed implements interface
func (r *RenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	if r.pipeline == nil {
		return core.ErrNoPipelineBound
	}
	vk.CmdDrawIndexed(r.buffer, indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

// End implements interface
func (r *RenderPassEncoder) End() error {
	if r.ended {
		return core.ErrRenderPassEnded
	}
	r.ended = true
	vk.CmdEndRenderPass(r.buffer)
	if r.encoder != nil {
		vk.DestroyFramebuffer(r.encoder.device.device, r.framebuffer, nil)
	}
	return nil
}

// ComputePassEncoder records dispatches into its parent encoder's
// command buffer until End is called.
type ComputePassEncoder struct {
	encoder *CommandEncoder
	buffer  vk.CommandBuffer

	pipeline *ComputePipeline
	ended    bool
}

// SetPipeline implements interface
func (c *ComputePassEncoder) SetPipeline(pipeline core.ComputePipeline) error {
	if c.ended {
		return core.ErrRenderPassEnded
	}
	p, ok := pipeline.(*ComputePipeline)
	if !ok || p == nil {
		return fmt.Errorf("pipeline from another backend: %w", core.ErrInvalidDescriptor)
	}
	vk.CmdBindPipeline(c.buffer, vk.PipelineBindPointCompute, p.pipeline)
	c.pipeline = p
	return nil
}

// SetBindGroup implements interface
func (c *ComputePassEncoder) SetBindGroup(index uint32, group core.BindGroup) error {
	if c.ended {
		return core.ErrRenderPassEnded
	}
	if c.pipeline == nil {
		return core.ErrNoPipelineBound
	}
	g, ok := group.(*BindGroup)
	if !ok || g == nil {
		return fmt.Errorf("bind group from another backend: %w", core.ErrInvalidDescriptor)
	}
	vk.CmdBindDescriptorSets(c.buffer, vk.PipelineBindPointCompute, c.pipeline.layout, index, 1, []vk.DescriptorSet{g.set}, 0, nil)
	return nil
}

// Dispatch implements interface
func (c *ComputePassEncoder) Dispatch(x, y, z uint32) error {
	if c.ended {
		return core.ErrRenderPassEnded
	}
	if c.pipeline == nil {
		return core.ErrNoPipelineBound
	}
	vk.CmdDispatch(c.buffer, x, y, z)
	return nil
}

// End implements interface
func (c *ComputePassEncoder) End() error {
	if c.ended {
		return core.ErrRenderPassEnded
	}
	c.ended = true
	return nil
}

// CommandBuffer is one finished, submittable command buffer. The queue
// frees it back to the pool after the submission completes.
type CommandBuffer struct {
	label  string
	device *Device
	buffer vk.CommandBuffer
}

// Label implements interface
func (c *CommandBuffer) Label() string {
	return c.label
}
