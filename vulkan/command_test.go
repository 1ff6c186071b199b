package vulkan

import (
	"errors"
	"testing"

	"github.com/koru3d/gpu/core"
)

func TestFinishedEncoderRejectsEverything(t *testing.T) {
	e := &CommandEncoder{finished: true}

	if _, err := e.BeginRenderPass(&core.RenderPassDescriptor{}); !errors.Is(err, core.ErrEncoderFinished) {
		t.Errorf("BeginRenderPass: expected ErrEncoderFinished, got %v", err)
	}
	if _, err := e.BeginComputePass(); !errors.Is(err, core.ErrEncoderFinished) {
		t.Errorf("BeginComputePass: expected ErrEncoderFinished, got %v", err)
	}
	if _, err := e.Finish("twice"); !errors.Is(err, core.ErrEncoderFinished) {
		t.Errorf("Finish: expected ErrEncoderFinished, got %v", err)
	}
}

func TestBeginRenderPassValidatesDescriptor(t *testing.T) {
	e := &CommandEncoder{}

	if _, err := e.BeginRenderPass(&core.RenderPassDescriptor{Label: "empty"}); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestBeginRenderPassRejectsOpenPass(t *testing.T) {
	e := &CommandEncoder{activePass: &RenderPassEncoder{}}

	desc := &core.RenderPassDescriptor{
		Label:            "second",
		ColorAttachments: []core.ColorAttachment{{View: &TextureView{format: core.TextureFormatBGRA8Unorm}}},
	}
	if _, err := e.BeginRenderPass(desc); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestFinishRejectsOpenPass(t *testing.T) {
	e := &CommandEncoder{activePass: &RenderPassEncoder{}}

	if _, err := e.Finish("open"); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("expected ErrRenderPassEnded, got %v", err)
	}
	if e.finished {
		t.Error("a rejected Finish must not spend the encoder")
	}
}

func TestEndedRenderPassRejectsEverything(t *testing.T) {
	r := &RenderPassEncoder{ended: true}

	if err := r.SetPipeline(&RenderPipeline{}); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("SetPipeline: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.SetVertexBuffer(0, &Buffer{}, 0); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("SetVertexBuffer: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.SetIndexBuffer(&Buffer{}, core.IndexFormatUint16, 0); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("SetIndexBuffer: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.SetBindGroup(0, &BindGroup{}); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("SetBindGroup: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.Draw(3, 1, 0, 0); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("Draw: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.DrawIndexed(3, 1, 0, 0, 0); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("DrawIndexed: expected ErrRenderPassEnded, got %v", err)
	}
	if err := r.End(); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("End: expected ErrRenderPassEnded, got %v", err)
	}
}

func TestDrawWithoutPipeline(t *testing.T) {
	r := &RenderPassEncoder{}

	if err := r.Draw(3, 1, 0, 0); !errors.Is(err, core.ErrNoPipelineBound) {
		t.Errorf("Draw: expected ErrNoPipelineBound, got %v", err)
	}
	if err := r.DrawIndexed(3, 1, 0, 0, 0); !errors.Is(err, core.ErrNoPipelineBound) {
		t.Errorf("DrawIndexed: expected ErrNoPipelineBound, got %v", err)
	}
	if err := r.SetBindGroup(0, &BindGroup{}); !errors.Is(err, core.ErrNoPipelineBound) {
		t.Errorf("SetBindGroup: expected ErrNoPipelineBound, got %v", err)
	}
}

func TestSetPipelineChecksPassCompatibility(t *testing.T) {
	r := &RenderPassEncoder{passKey: "c:bgra8unorm/clear/store;"}
	p := &RenderPipeline{label: "offscreen", passKey: "c:rgba8unorm/clear/store;"}

	if err := r.SetPipeline(p); !errors.Is(err, core.ErrIncompatibleRenderPass) {
		t.Errorf("expected ErrIncompatibleRenderPass, got %v", err)
	}
	if r.pipeline != nil {
		t.Error("a rejected pipeline must not be kept")
	}
}

type foreignRenderPipeline struct{}

func (foreignRenderPipeline) Destroy() {}

func TestSetPipelineRejectsForeignBackend(t *testing.T) {
	r := &RenderPassEncoder{}

	if err := r.SetPipeline(foreignRenderPipeline{}); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestComputePassStates(t *testing.T) {
	c := &ComputePassEncoder{}

	if err := c.Dispatch(1, 1, 1); !errors.Is(err, core.ErrNoPipelineBound) {
		t.Errorf("Dispatch: expected ErrNoPipelineBound, got %v", err)
	}
	if err := c.SetBindGroup(0, &BindGroup{}); !errors.Is(err, core.ErrNoPipelineBound) {
		t.Errorf("SetBindGroup: expected ErrNoPipelineBound, got %v", err)
	}

	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("second End: expected ErrRenderPassEnded, got %v", err)
	}
	if err := c.Dispatch(1, 1, 1); !errors.Is(err, core.ErrRenderPassEnded) {
		t.Errorf("Dispatch after End: expected ErrRenderPassEnded, got %v", err)
	}
}

func TestCommandBufferLabel(t *testing.T) {
	cb := &CommandBuffer{label: "frame 1"}
	if cb.Label() != "frame 1" {
		t.Error("label does not match up")
	}
}
