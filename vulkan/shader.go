package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// CreateShaderModule builds a shader module from inline code, or
// resolves the label through the device's shader source.
func (d *Device) CreateShaderModule(desc *core.ShaderModuleDescriptor) (core.ShaderModule, error) {
	code := desc.Code
	if len(code) == 0 {
		if d.shaderSource == nil {
			return nil, fmt.Errorf("shader %q: no shader source configured: %w", desc.Label, core.ErrShaderResourceNotFound)
		}
		loaded, err := d.shaderSource.Load(desc.Label)
		if err != nil {
			return nil, fmt.Errorf("shader %q: %w", desc.Label, err)
		}
		code = loaded
	}

	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("shader %q: code length %d is not a multiple of 4: %w", desc.Label, len(code), core.ErrInvalidDescriptor)
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(d.device, &smci, nil, &module)); err != nil {
		return nil, fmt.Errorf("vk.CreateShaderModule(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &ShaderModule{
		label:  desc.Label,
		device: d,
		module: module,
	}, nil
}

// ShaderModule wraps one native shader module.
type ShaderModule struct {
	label  string
	device *Device
	module vk.ShaderModule

	destroyed bool
}

// Label implements interface
func (s *ShaderModule) Label() string {
	return s.label
}

// Destroy implements interface
func (s *ShaderModule) Destroy() {
	if s.destroyed || s.device == nil {
		return
	}
	s.destroyed = true
	vk.DestroyShaderModule(s.device.device, s.module, nil)
}
