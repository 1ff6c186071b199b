package vulkan

import (
	"errors"
	"testing"

	"github.com/koru3d/gpu/core"
)

func TestLayoutEntryLookup(t *testing.T) {
	layout := &BindGroupLayout{entries: []core.BindGroupLayoutEntry{
		{Binding: 0, Type: core.BindingUniformBuffer},
		{Binding: 2, Type: core.BindingCombinedImageSampler},
	}}

	if entry, ok := layout.entryAt(2); !ok || entry.Type != core.BindingCombinedImageSampler {
		t.Error("binding 2 lookup failed")
	}
	if _, ok := layout.entryAt(1); ok {
		t.Error("binding 1 must not resolve")
	}
}

func TestValidateBindGroupEntry(t *testing.T) {
	cases := []struct {
		name   string
		layout core.BindGroupLayoutEntry
		entry  core.BindGroupEntry
		ok     bool
	}{
		{
			name:   "uniform buffer present",
			layout: core.BindGroupLayoutEntry{Type: core.BindingUniformBuffer},
			entry:  core.BindGroupEntry{Buffer: &Buffer{}},
			ok:     true,
		},
		{
			name:   "uniform buffer missing",
			layout: core.BindGroupLayoutEntry{Type: core.BindingUniformBuffer},
			entry:  core.BindGroupEntry{Sampler: &Sampler{}},
		},
		{
			name:   "storage buffer missing",
			layout: core.BindGroupLayoutEntry{Type: core.BindingStorageBuffer},
			entry:  core.BindGroupEntry{},
		},
		{
			name:   "sampler missing",
			layout: core.BindGroupLayoutEntry{Type: core.BindingSampler},
			entry:  core.BindGroupEntry{Buffer: &Buffer{}},
		},
		{
			name:   "sampled texture present",
			layout: core.BindGroupLayoutEntry{Type: core.BindingSampledTexture},
			entry:  core.BindGroupEntry{TextureView: &TextureView{}},
			ok:     true,
		},
		{
			name:   "combined needs both",
			layout: core.BindGroupLayoutEntry{Type: core.BindingCombinedImageSampler},
			entry:  core.BindGroupEntry{TextureView: &TextureView{}},
		},
		{
			name:   "combined complete",
			layout: core.BindGroupLayoutEntry{Type: core.BindingCombinedImageSampler},
			entry:  core.BindGroupEntry{TextureView: &TextureView{}, Sampler: &Sampler{}},
			ok:     true,
		},
	}

	for _, tc := range cases {
		err := validateBindGroupEntry(tc.layout, tc.entry)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, core.ErrBindingMismatch) {
			t.Errorf("%s: expected ErrBindingMismatch, got %v", tc.name, err)
		}
	}
}
