package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// memory defines a usable memory region.
type memory struct {
	mapped      bool
	ptr         unsafe.Pointer
	len, offset uint
	device      vk.Device
	memory      vk.DeviceMemory
}

// Map maps the entire available memory region and
// returns a pointer to the mapped area. An already
// mapped region returns the existing pointer.
func (m *memory) Map() (unsafe.Pointer, error) {
	if m.mapped {
		return m.ptr, nil
	}
	var memMapped unsafe.Pointer
	if err := vk.Error(vk.MapMemory(m.device, m.memory, vk.DeviceSize(m.offset), vk.DeviceSize(m.len), 0, &memMapped)); err != nil {
		return nil, fmt.Errorf("vk.MapMemory(): %s", err.Error())
	}
	m.mapped = true
	m.ptr = memMapped
	return memMapped, nil
}

// Unmap removes the memory mapping if it was mapped.
func (m *memory) Unmap() {
	if m.mapped {
		vk.UnmapMemory(m.device, m.memory)
		m.mapped = false
		m.ptr = nil
	}
}

// Release frees memory after unmapping it if previously mapped.
func (m *memory) Release() {
	m.Unmap()
	vk.FreeMemory(m.device, m.memory, nil)
}

// newMemoryAllocator creates a new memory allocator. Allocates for the logical
// device, reads memory properties of the physical device to influence allocation.
func newMemoryAllocator(device vk.Device, phyDevice vk.PhysicalDevice) *memoryAllocator {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(phyDevice, &memProperties)
	memProperties.Deref()

	return &memoryAllocator{
		device:        device,
		memProperties: memProperties,
	}
}

// memoryAllocator is responsible for returning usable
// memory for any resources that may need it.
type memoryAllocator struct {
	device        vk.Device
	memProperties vk.PhysicalDeviceMemoryProperties
}

// Malloc returns a usable memory chunk ready for use.
func (ma *memoryAllocator) Malloc(req vk.MemoryRequirements, prop vk.MemoryPropertyFlagBits) (memory, error) {
	memTypeIdx, err := ma.findMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(prop))
	if err != nil {
		return memory{}, err
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memTypeIdx,
	}

	var mem vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(ma.device, &mai, nil, &mem)); err != nil {
		return memory{}, fmt.Errorf("vk.AllocateMemory(): %s", err.Error())
	}

	return memory{
		offset: 0,
		len:    uint(req.Size),
		device: ma.device,
		memory: mem,
	}, nil
}

func (ma *memoryAllocator) findMemoryType(filter uint32, prop vk.MemoryPropertyFlags) (uint32, error) {
	for idx := uint32(0); idx < ma.memProperties.MemoryTypeCount; idx++ {
		ma.memProperties.MemoryTypes[idx].Deref()
		if filter&(1<<idx) != 0 && (ma.memProperties.MemoryTypes[idx].PropertyFlags&prop) == prop {
			return idx, nil
		}
	}
	return 0, errors.New("suitable memory type not found")
}
