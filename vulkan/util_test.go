package vulkan

import (
	"encoding/binary"
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

func TestSliceUint32(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:], 0x07230203)
	binary.LittleEndian.PutUint32(data[4:], 0x00010000)
	binary.LittleEndian.PutUint32(data[8:], 0xdeadbeef)
	binary.LittleEndian.PutUint32(data[12:], 0x00000001)

	words := SliceUint32(data)
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
	if words[0] != 0x07230203 || words[2] != 0xdeadbeef {
		t.Error("words do not match up")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	formats := []core.TextureFormat{
		core.TextureFormatRGBA8Unorm,
		core.TextureFormatBGRA8Unorm,
		core.TextureFormatRGBA16Float,
		core.TextureFormatDepth24PlusStencil8,
	}

	for _, format := range formats {
		native, err := toVkFormat(format)
		if err != nil {
			t.Errorf("%s: %v", format, err)
			continue
		}
		if back := fromVkFormat(native); back != format {
			t.Errorf("%s came back as %s", format, back)
		}
	}

	if _, err := toVkFormat(core.TextureFormatUndefined); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImageAspect(t *testing.T) {
	if imageAspect(core.TextureFormatBGRA8Unorm) != vk.ImageAspectFlags(vk.ImageAspectColorBit) {
		t.Error("color format did not map to the color aspect")
	}
	want := vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	if imageAspect(core.TextureFormatDepth24PlusStencil8) != want {
		t.Error("depth format did not map to the depth and stencil aspects")
	}
}

func TestBufferUsageFlags(t *testing.T) {
	flags := toVkBufferUsage(core.BufferUsageVertex | core.BufferUsageCopyDst)
	if flags&vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit) == 0 {
		t.Error("vertex bit missing")
	}
	if flags&vk.BufferUsageFlags(vk.BufferUsageTransferDstBit) == 0 {
		t.Error("transfer dst bit missing")
	}
	if flags&vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit) != 0 {
		t.Error("index bit set without being requested")
	}

	flags = toVkBufferUsage(core.BufferUsageIndirect)
	if flags != vk.BufferUsageFlags(vk.BufferUsageIndirectBufferBit) {
		t.Error("indirect bit missing")
	}
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}

func BenchmarkSliceUint32Medium(b *testing.B) {
	data := make([]byte, 1000)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		SliceUint32(data)
	}
}
