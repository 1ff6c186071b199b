package vulkan

import (
	"errors"
	"math"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

func TestUnconfiguredSurface(t *testing.T) {
	s := &Surface{}

	if _, err := s.AcquireFrame(); !errors.Is(err, core.ErrSurfaceUnconfigured) {
		t.Errorf("AcquireFrame: expected ErrSurfaceUnconfigured, got %v", err)
	}
	if err := s.Present(&core.SurfaceFrame{}); !errors.Is(err, core.ErrSurfaceUnconfigured) {
		t.Errorf("Present: expected ErrSurfaceUnconfigured, got %v", err)
	}
	if err := s.Resize(800, 600); !errors.Is(err, core.ErrSurfaceUnconfigured) {
		t.Errorf("Resize: expected ErrSurfaceUnconfigured, got %v", err)
	}
}

func TestEffectiveExtent(t *testing.T) {
	unfixed := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}

	// A fixed platform extent wins, even over a zero request
	w, h, err := effectiveExtent(core.SurfaceConfiguration{}, vk.Extent2D{Width: 1024, Height: 768})
	if err != nil {
		t.Fatal(err)
	}
	if w != 1024 || h != 768 {
		t.Errorf("expected 1024x768, got %dx%d", w, h)
	}

	// The platform leaves the choice to the chain
	w, h, err = effectiveExtent(core.SurfaceConfiguration{Width: 800, Height: 600}, unfixed)
	if err != nil {
		t.Fatal(err)
	}
	if w != 800 || h != 600 {
		t.Errorf("expected 800x600, got %dx%d", w, h)
	}

	// Neither side supplies a usable extent
	if _, _, err := effectiveExtent(core.SurfaceConfiguration{Height: 600}, unfixed); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestPresentRequiresAcquiredFrame(t *testing.T) {
	// A second Present consumes the same flag AcquireFrame sets, so
	// double present and present-without-acquire fail the same way
	s := &Surface{configured: true}

	if err := s.Present(&core.SurfaceFrame{}); !errors.Is(err, core.ErrPresentFailed) {
		t.Errorf("expected ErrPresentFailed, got %v", err)
	}
}

func TestRecreationInvalidatesAcquiredFrame(t *testing.T) {
	s := &Surface{configured: true, frameAcquired: true}

	s.destroyImageViews()
	if s.frameAcquired {
		t.Error("frame must not survive its chain")
	}
}

func TestSurfaceDestroyIdempotent(t *testing.T) {
	s := &Surface{}
	s.Destroy()
	s.Destroy()
}

func TestWrapperDestroyIdempotent(t *testing.T) {
	wrappers := []interface{ Destroy() }{
		&Buffer{},
		&Texture{},
		&TextureView{},
		&Sampler{},
		&ShaderModule{},
		&BindGroupLayout{},
		&BindGroup{},
		&RenderPipeline{},
		&ComputePipeline{},
	}
	for _, w := range wrappers {
		w.Destroy()
		w.Destroy()
	}
}

func TestBorrowedTextureKeepsNativeHandle(t *testing.T) {
	// Swapchain wrappers carry a device but no ownership, Destroy must
	// never reach the native image
	borrowed := &Texture{device: &Device{}, owned: false}
	borrowed.Destroy()
	borrowed.Destroy()
	if !borrowed.destroyed {
		t.Error("wrapper itself must still be marked destroyed")
	}
}

func TestBufferRangeChecks(t *testing.T) {
	b := &Buffer{label: "small", size: 8}

	if err := b.checkRange(0, 8); err != nil {
		t.Errorf("full range must pass, got %v", err)
	}
	if err := b.checkRange(4, 8); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("expected ErrInvalidDescriptor, got %v", err)
	}
	// offset+length wraps around uint64, the check must not
	if err := b.checkRange(math.MaxUint64-7, 16); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("wrapping range: expected ErrInvalidDescriptor, got %v", err)
	}
	if err := b.Write(math.MaxUint64-7, make([]byte, 16)); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("wrapping Write: expected ErrInvalidDescriptor, got %v", err)
	}
	if err := b.Write(8, []byte{1}); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("Write: expected ErrInvalidDescriptor, got %v", err)
	}
	if _, err := b.Read(0, 9); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("Read: expected ErrInvalidDescriptor, got %v", err)
	}
	if err := b.WriteFloat32(0, make([]float32, 3)); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("WriteFloat32: expected ErrInvalidDescriptor, got %v", err)
	}
	if _, err := b.ReadFloat32(0, 3); !errors.Is(err, core.ErrInvalidDescriptor) {
		t.Errorf("ReadFloat32: expected ErrInvalidDescriptor, got %v", err)
	}
}
