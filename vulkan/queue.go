package vulkan

import (
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// Queue is the device's single submission queue. Submit blocks until
// the GPU has completed the batch.
type Queue struct {
	device *Device
	queue  vk.Queue
}

func (q *Queue) freeBuffers(buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(q.device.device, q.device.commandPool, uint32(len(buffers)), buffers)
}

// Submit implements interface
func (q *Queue) Submit(buffers ...core.CommandBuffer) error {
	if len(buffers) == 0 {
		return nil
	}

	commandBuffers := make([]vk.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		cb, ok := buffer.(*CommandBuffer)
		if !ok || cb == nil {
			return fmt.Errorf("command buffer from another backend: %w", core.ErrInvalidDescriptor)
		}
		commandBuffers = append(commandBuffers, cb.buffer)
	}

	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(q.device.device, &fci, nil, &fence)); err != nil {
		q.freeBuffers(commandBuffers)
		return fmt.Errorf("vk.CreateFence(): %s: %w", err.Error(), core.ErrSubmissionFailed)
	}

	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(commandBuffers)),
		PCommandBuffers:    commandBuffers,
	}

	if err := vk.Error(vk.QueueSubmit(q.queue, 1, []vk.SubmitInfo{si}, fence)); err != nil {
		vk.DestroyFence(q.device.device, fence, nil)
		q.freeBuffers(commandBuffers)
		return fmt.Errorf("vk.QueueSubmit(): %s: %w", err.Error(), core.ErrSubmissionFailed)
	}

	waitErr := vk.Error(vk.WaitForFences(q.device.device, 1, []vk.Fence{fence}, vk.True, math.MaxUint64))

	vk.DestroyFence(q.device.device, fence, nil)
	q.freeBuffers(commandBuffers)

	if waitErr != nil {
		return fmt.Errorf("vk.WaitForFences(): %s: %w", waitErr.Error(), core.ErrSubmissionFailed)
	}
	return nil
}
