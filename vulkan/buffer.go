package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// CreateBuffer allocates a buffer with host-visible memory bound to it.
func (d *Device) CreateBuffer(desc *core.BufferDescriptor) (core.Buffer, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	bci := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(desc.Size),
		Usage:       toVkBufferUsage(desc.Usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	if err := vk.Error(vk.CreateBuffer(d.device, &bci, nil, &buffer)); err != nil {
		return nil, fmt.Errorf("vk.CreateBuffer(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &memoryRequirements)
	memoryRequirements.Deref()

	mem, err := d.allocator.Malloc(memoryRequirements, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, fmt.Errorf("buffer %q: %s: %w", desc.Label, err.Error(), core.ErrResourceCreation)
	}

	if err := vk.Error(vk.BindBufferMemory(d.device, buffer, mem.memory, 0)); err != nil {
		mem.Release()
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, fmt.Errorf("vk.BindBufferMemory(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	if desc.MappedAtCreation {
		if _, err := mem.Map(); err != nil {
			mem.Release()
			vk.DestroyBuffer(d.device, buffer, nil)
			return nil, fmt.Errorf("buffer %q: %s: %w", desc.Label, err.Error(), core.ErrResourceCreation)
		}
	}

	return &Buffer{
		label:      desc.Label,
		device:     d,
		buffer:     buffer,
		mem:        mem,
		size:       desc.Size,
		usage:      desc.Usage,
		persistent: desc.MappedAtCreation,
	}, nil
}

// Buffer wraps one native buffer and its backing memory. A persistent
// buffer stays mapped until Destroy, everything else maps around each
// access.
type Buffer struct {
	label      string
	device     *Device
	buffer     vk.Buffer
	mem        memory
	size       uint64
	usage      core.BufferUsage
	persistent bool

	destroyed bool
}

// Size implements interface
func (b *Buffer) Size() uint64 {
	return b.size
}

// Usage implements interface
func (b *Buffer) Usage() core.BufferUsage {
	return b.usage
}

func (b *Buffer) checkRange(offset, length uint64) error {
	// Split comparison, offset+length may wrap
	if offset > b.size || length > b.size-offset {
		return fmt.Errorf("buffer %q: range %d+%d exceeds size %d: %w", b.label, offset, length, b.size, core.ErrInvalidDescriptor)
	}
	return nil
}

// Write implements interface
func (b *Buffer) Write(offset uint64, data []byte) error {
	if err := b.checkRange(offset, uint64(len(data))); err != nil {
		return err
	}

	mapped, err := b.mem.Map()
	if err != nil {
		return err
	}
	if !b.persistent {
		defer b.mem.Unmap()
	}

	dst := *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped) + uintptr(offset),
		Len:  len(data),
		Cap:  len(data),
	}))
	copy(dst, data)
	return nil
}

// WriteFloat32 implements interface
func (b *Buffer) WriteFloat32(offset uint64, data []float32) error {
	if err := b.checkRange(offset, uint64(len(data)*4)); err != nil {
		return err
	}

	mapped, err := b.mem.Map()
	if err != nil {
		return err
	}
	if !b.persistent {
		defer b.mem.Unmap()
	}

	dst := *(*[]float32)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped) + uintptr(offset),
		Len:  len(data),
		Cap:  len(data),
	}))
	copy(dst, data)
	return nil
}

// Read implements interface
func (b *Buffer) Read(offset, size uint64) ([]byte, error) {
	if err := b.checkRange(offset, size); err != nil {
		return nil, err
	}

	mapped, err := b.mem.Map()
	if err != nil {
		return nil, err
	}
	if !b.persistent {
		defer b.mem.Unmap()
	}

	src := *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped) + uintptr(offset),
		Len:  int(size),
		Cap:  int(size),
	}))
	out := make([]byte, size)
	copy(out, src)
	return out, nil
}

// ReadFloat32 implements interface
func (b *Buffer) ReadFloat32(offset uint64, count int) ([]float32, error) {
	if err := b.checkRange(offset, uint64(count*4)); err != nil {
		return nil, err
	}

	mapped, err := b.mem.Map()
	if err != nil {
		return nil, err
	}
	if !b.persistent {
		defer b.mem.Unmap()
	}

	src := *(*[]float32)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(mapped) + uintptr(offset),
		Len:  count,
		Cap:  count,
	}))
	out := make([]float32, count)
	copy(out, src)
	return out, nil
}

// Destroy implements interface
func (b *Buffer) Destroy() {
	if b.destroyed || b.device == nil {
		return
	}
	b.destroyed = true
	vk.DestroyBuffer(b.device.device, b.buffer, nil)
	b.mem.Release()
}
