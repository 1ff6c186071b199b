package core_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/koru3d/gpu/core"
)

func TestBufferDescriptorValidate(t *testing.T) {
	c := qt.New(t)

	desc := core.BufferDescriptor{Label: "empty"}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.BufferDescriptor{Label: "no usage", Size: 64}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.BufferDescriptor{Label: "ok", Size: 64, Usage: core.BufferUsageVertex}
	c.Assert(desc.Validate(), qt.IsNil)
}

func TestTextureDescriptorValidate(t *testing.T) {
	c := qt.New(t)

	desc := core.TextureDescriptor{Label: "no extent", Format: core.TextureFormatRGBA8Unorm, Usage: core.TextureUsageCopyDst}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.TextureDescriptor{
		Label: "no format",
		Size:  core.Extent3D{Width: 16, Height: 16},
		Usage: core.TextureUsageCopyDst,
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrUnsupportedFormat), qt.Equals, true)

	desc = core.TextureDescriptor{
		Label:  "no usage",
		Size:   core.Extent3D{Width: 16, Height: 16},
		Format: core.TextureFormatRGBA8Unorm,
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.TextureDescriptor{
		Label:  "ok",
		Size:   core.Extent3D{Width: 16, Height: 16},
		Format: core.TextureFormatRGBA8Unorm,
		Usage:  core.TextureUsageRenderAttachment,
	}
	c.Assert(desc.Validate(), qt.IsNil)
}

type stubShaderModule struct{}

func (stubShaderModule) Label() string { return "stub" }
func (stubShaderModule) Destroy()      {}

func TestRenderPipelineDescriptorValidate(t *testing.T) {
	c := qt.New(t)

	desc := core.RenderPipelineDescriptor{Label: "no shader"}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.RenderPipelineDescriptor{
		Label:        "no colors",
		VertexShader: stubShaderModule{},
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.RenderPipelineDescriptor{
		Label:        "depth as color",
		VertexShader: stubShaderModule{},
		ColorFormats: []core.TextureFormat{core.TextureFormatDepth24PlusStencil8},
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrUnsupportedFormat), qt.Equals, true)

	desc = core.RenderPipelineDescriptor{
		Label:        "ok",
		VertexShader: stubShaderModule{},
		ColorFormats: []core.TextureFormat{core.TextureFormatBGRA8Unorm},
	}
	c.Assert(desc.Validate(), qt.IsNil)
}

func TestRenderPassDescriptorValidate(t *testing.T) {
	c := qt.New(t)

	desc := core.RenderPassDescriptor{Label: "no attachments"}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.RenderPassDescriptor{
		Label:            "nil view",
		ColorAttachments: []core.ColorAttachment{{}},
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.RenderPassDescriptor{
		Label:                  "nil depth view",
		ColorAttachments:       []core.ColorAttachment{{View: stubTextureView{}}},
		DepthStencilAttachment: &core.DepthStencilAttachment{},
	}
	c.Assert(errors.Is(desc.Validate(), core.ErrInvalidDescriptor), qt.Equals, true)

	desc = core.RenderPassDescriptor{
		Label:            "ok",
		ColorAttachments: []core.ColorAttachment{{View: stubTextureView{}}},
	}
	c.Assert(desc.Validate(), qt.IsNil)
}

type stubTextureView struct{}

func (stubTextureView) Format() core.TextureFormat { return core.TextureFormatBGRA8Unorm }
func (stubTextureView) Destroy()                   {}

func TestTextureFormatString(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.TextureFormatRGBA8Unorm.String(), qt.Equals, "rgba8unorm")
	c.Assert(core.TextureFormatBGRA8Unorm.String(), qt.Equals, "bgra8unorm")
	c.Assert(core.TextureFormatRGBA16Float.String(), qt.Equals, "rgba16float")
	c.Assert(core.TextureFormatDepth24PlusStencil8.String(), qt.Equals, "depth24plus-stencil8")
	c.Assert(core.TextureFormatUndefined.String(), qt.Equals, "undefined")
}

func TestTextureFormatHasDepth(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.TextureFormatDepth24PlusStencil8.HasDepth(), qt.Equals, true)
	c.Assert(core.TextureFormatRGBA8Unorm.HasDepth(), qt.Equals, false)
	c.Assert(core.TextureFormatUndefined.HasDepth(), qt.Equals, false)
}

func TestVertexFormatSize(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.VertexFormatFloat32.Size(), qt.Equals, uint32(4))
	c.Assert(core.VertexFormatFloat32x2.Size(), qt.Equals, uint32(8))
	c.Assert(core.VertexFormatFloat32x3.Size(), qt.Equals, uint32(12))
	c.Assert(core.VertexFormatFloat32x4.Size(), qt.Equals, uint32(16))
	c.Assert(core.VertexFormatUint32.Size(), qt.Equals, uint32(4))
}
