package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// CreateBindGroupLayout creates a descriptor set layout from the entries.
func (d *Device) CreateBindGroupLayout(desc *core.BindGroupLayoutDescriptor) (core.BindGroupLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(desc.Entries))
	for i, entry := range desc.Entries {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         entry.Binding,
			DescriptorType:  toVkDescriptorType(entry.Type),
			DescriptorCount: 1,
			StageFlags:      toVkShaderStages(entry.Visibility),
		}
	}

	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vk.Error(vk.CreateDescriptorSetLayout(d.device, &dslci, nil, &layout)); err != nil {
		return nil, fmt.Errorf("vk.CreateDescriptorSetLayout(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	bgl := &BindGroupLayout{
		label:   desc.Label,
		device:  d,
		layout:  layout,
		entries: append([]core.BindGroupLayoutEntry(nil), desc.Entries...),
	}
	d.track(bgl)
	return bgl, nil
}

// BindGroupLayout wraps one descriptor set layout together with the
// entry list it was created from, kept for bind group validation.
type BindGroupLayout struct {
	label   string
	device  *Device
	layout  vk.DescriptorSetLayout
	entries []core.BindGroupLayoutEntry

	destroyed bool
}

func (l *BindGroupLayout) entryAt(binding uint32) (core.BindGroupLayoutEntry, bool) {
	for _, entry := range l.entries {
		if entry.Binding == binding {
			return entry, true
		}
	}
	return core.BindGroupLayoutEntry{}, false
}

// Destroy implements interface
func (l *BindGroupLayout) Destroy() {
	if l.destroyed || l.device == nil {
		return
	}
	l.destroyed = true
	vk.DestroyDescriptorSetLayout(l.device.device, l.layout, nil)
}

func validateBindGroupEntry(layout core.BindGroupLayoutEntry, entry core.BindGroupEntry) error {
	switch layout.Type {
	case core.BindingUniformBuffer, core.BindingStorageBuffer:
		if entry.Buffer == nil {
			return fmt.Errorf("binding %d: layout expects a buffer: %w", entry.Binding, core.ErrBindingMismatch)
		}
	case core.BindingSampler:
		if entry.Sampler == nil {
			return fmt.Errorf("binding %d: layout expects a sampler: %w", entry.Binding, core.ErrBindingMismatch)
		}
	case core.BindingSampledTexture:
		if entry.TextureView == nil {
			return fmt.Errorf("binding %d: layout expects a texture view: %w", entry.Binding, core.ErrBindingMismatch)
		}
	case core.BindingCombinedImageSampler:
		if entry.TextureView == nil || entry.Sampler == nil {
			return fmt.Errorf("binding %d: layout expects a texture view and a sampler: %w", entry.Binding, core.ErrBindingMismatch)
		}
	}
	return nil
}

// CreateBindGroup allocates a descriptor set from the device pool and
// writes one descriptor per entry.
func (d *Device) CreateBindGroup(desc *core.BindGroupDescriptor) (core.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok || layout == nil {
		return nil, fmt.Errorf("bind group %q: missing layout: %w", desc.Label, core.ErrInvalidDescriptor)
	}

	for _, entry := range desc.Entries {
		layoutEntry, found := layout.entryAt(entry.Binding)
		if !found {
			return nil, fmt.Errorf("bind group %q: binding %d not in layout: %w", desc.Label, entry.Binding, core.ErrBindingMismatch)
		}
		if err := validateBindGroupEntry(layoutEntry, entry); err != nil {
			return nil, fmt.Errorf("bind group %q: %w", desc.Label, err)
		}
	}

	dsai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.layout},
	}

	var set vk.DescriptorSet
	result := vk.AllocateDescriptorSets(d.device, &dsai, &set)
	switch result {
	case vk.Success:
	case vk.ErrorOutOfPoolMemory, vk.ErrorFragmentedPool:
		return nil, fmt.Errorf("bind group %q: %w", desc.Label, core.ErrDescriptorPoolExhausted)
	default:
		return nil, fmt.Errorf("vk.AllocateDescriptorSets(): %s: %w", vk.Error(result).Error(), core.ErrResourceCreation)
	}

	writes := make([]vk.WriteDescriptorSet, 0, len(desc.Entries))
	for _, entry := range desc.Entries {
		layoutEntry, _ := layout.entryAt(entry.Binding)

		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      entry.Binding,
			DstArrayElement: 0,
			DescriptorType:  toVkDescriptorType(layoutEntry.Type),
			DescriptorCount: 1,
		}

		switch layoutEntry.Type {
		case core.BindingUniformBuffer, core.BindingStorageBuffer:
			buffer := entry.Buffer.(*Buffer)
			size := entry.Size
			if size == 0 {
				size = buffer.size - entry.Offset
			}
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buffer.buffer,
				Offset: vk.DeviceSize(entry.Offset),
				Range:  vk.DeviceSize(size),
			}}
		case core.BindingSampler:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler: entry.Sampler.(*Sampler).sampler,
			}}
		case core.BindingSampledTexture:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				ImageView:   entry.TextureView.(*TextureView).view,
			}}
		case core.BindingCombinedImageSampler:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				ImageView:   entry.TextureView.(*TextureView).view,
				Sampler:     entry.Sampler.(*Sampler).sampler,
			}}
		}
		writes = append(writes, write)
	}
	vk.UpdateDescriptorSets(d.device, uint32(len(writes)), writes, 0, nil)

	bg := &BindGroup{
		label:  desc.Label,
		device: d,
		set:    set,
	}
	d.track(bg)
	return bg, nil
}

// BindGroup wraps one allocated, written descriptor set.
type BindGroup struct {
	label  string
	device *Device
	set    vk.DescriptorSet

	destroyed bool
}

// Destroy implements interface
func (g *BindGroup) Destroy() {
	if g.destroyed || g.device == nil {
		return
	}
	g.destroyed = true
	vk.FreeDescriptorSets(g.device.device, g.device.descriptorPool, 1, &g.set)
}
