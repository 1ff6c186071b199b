package vulkan

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

func TestVertexInputDefaultsToSingleBuffer(t *testing.T) {
	state := vertexInputState(nil)

	if state.VertexBindingDescriptionCount != 1 {
		t.Fatalf("expected one binding, got %d", state.VertexBindingDescriptionCount)
	}
	binding := state.PVertexBindingDescriptions[0]
	if binding.Binding != 0 || binding.Stride != 12 {
		t.Errorf("expected binding 0 with stride 12, got binding %d stride %d", binding.Binding, binding.Stride)
	}

	if state.VertexAttributeDescriptionCount != 1 {
		t.Fatalf("expected one attribute, got %d", state.VertexAttributeDescriptionCount)
	}
	attr := state.PVertexAttributeDescriptions[0]
	if attr.Location != 0 || attr.Offset != 0 || attr.Format != vk.FormatR32g32b32Sfloat {
		t.Error("default attribute must be float32x3 at location 0, offset 0")
	}
}

func TestVertexInputFromLayouts(t *testing.T) {
	state := vertexInputState([]core.VertexBufferLayout{
		{
			ArrayStride: 28,
			Attributes: []core.VertexAttribute{
				{Format: core.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: core.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
			},
		},
		{
			ArrayStride: 16,
			Attributes: []core.VertexAttribute{
				{Format: core.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
			},
		},
	})

	if state.VertexBindingDescriptionCount != 2 {
		t.Fatalf("expected two bindings, got %d", state.VertexBindingDescriptionCount)
	}
	if state.PVertexBindingDescriptions[1].Binding != 1 {
		t.Error("second layout must land in slot 1")
	}

	if state.VertexAttributeDescriptionCount != 3 {
		t.Fatalf("expected three attributes, got %d", state.VertexAttributeDescriptionCount)
	}
	last := state.PVertexAttributeDescriptions[2]
	if last.Binding != 1 || last.Location != 2 {
		t.Error("third attribute must reference slot 1 at location 2")
	}
	if state.PVertexAttributeDescriptions[1].Format != vk.FormatR32g32b32a32Sfloat {
		t.Error("float32x4 attribute mapped to the wrong native format")
	}
}
