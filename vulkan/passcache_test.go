package vulkan

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

func TestRenderPassKeyEquality(t *testing.T) {
	colors := []colorAttachmentKey{{
		format:  core.TextureFormatBGRA8Unorm,
		loadOp:  core.LoadOpClear,
		storeOp: core.StoreOpStore,
	}}

	a := makeRenderPassKey(colors, core.TextureFormatUndefined)
	b := makeRenderPassKey(colors, core.TextureFormatUndefined)
	if a != b {
		t.Error("identical shapes produced different keys")
	}

	withDepth := makeRenderPassKey(colors, core.TextureFormatDepth24PlusStencil8)
	if a == withDepth {
		t.Error("depth attachment did not change the key")
	}

	otherLoad := makeRenderPassKey([]colorAttachmentKey{{
		format:  core.TextureFormatBGRA8Unorm,
		loadOp:  core.LoadOpLoad,
		storeOp: core.StoreOpStore,
	}}, core.TextureFormatUndefined)
	if a == otherLoad {
		t.Error("load op did not change the key")
	}

	otherFormat := makeRenderPassKey([]colorAttachmentKey{{
		format:  core.TextureFormatRGBA8Unorm,
		loadOp:  core.LoadOpClear,
		storeOp: core.StoreOpStore,
	}}, core.TextureFormatUndefined)
	if a == otherFormat {
		t.Error("format did not change the key")
	}
}

func TestPipelineAndPassKeysAgree(t *testing.T) {
	pipelineKey := pipelinePassKey(&core.RenderPipelineDescriptor{
		ColorFormats: []core.TextureFormat{core.TextureFormatBGRA8Unorm},
		ColorLoadOp:  core.LoadOpClear,
		ColorStoreOp: core.StoreOpStore,
	})

	passKey := passDescriptorKey(&core.RenderPassDescriptor{
		ColorAttachments: []core.ColorAttachment{{
			View:    &TextureView{format: core.TextureFormatBGRA8Unorm},
			LoadOp:  core.LoadOpClear,
			StoreOp: core.StoreOpStore,
		}},
	})

	if pipelineKey != passKey {
		t.Errorf("pipeline key %q does not match pass key %q", pipelineKey, passKey)
	}
}

func TestObtainPassCachesByKey(t *testing.T) {
	d := &Device{passes: make(map[renderPassKey]vk.RenderPass)}

	var builds int
	build := func() (vk.RenderPass, error) {
		builds++
		return nil, nil
	}

	if _, err := d.obtainPass("a", build); err != nil {
		t.Fatal(err)
	}
	if _, err := d.obtainPass("a", build); err != nil {
		t.Fatal(err)
	}
	if builds != 1 {
		t.Errorf("expected one build for a repeated key, got %d", builds)
	}

	if _, err := d.obtainPass("b", build); err != nil {
		t.Fatal(err)
	}
	if builds != 2 {
		t.Errorf("expected a second build for a new key, got %d", builds)
	}
}

func TestObtainPassAfterDestruction(t *testing.T) {
	d := &Device{}

	if _, err := d.obtainPass("a", func() (vk.RenderPass, error) {
		t.Error("build must not run on a destroyed device")
		return nil, nil
	}); err == nil {
		t.Error("expected an error from a destroyed device")
	}
}
