// Package vulkan implements the core API over the explicit native
// graphics interface. Every core object maps to one native handle
// wrapper; handles borrowed from the swapchain are never destroyed
// by their wrappers.
package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// SliceUint32 reslices bytes into a uint32, that is used
// to submit shader code for module creation
func SliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}

func toVkFormat(f core.TextureFormat) (vk.Format, error) {
	switch f {
	case core.TextureFormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm, nil
	case core.TextureFormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm, nil
	case core.TextureFormatRGBA16Float:
		return vk.FormatR16g16b16a16Sfloat, nil
	case core.TextureFormatDepth24PlusStencil8:
		return vk.FormatD24UnormS8Uint, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("format %s: %w", f, core.ErrUnsupportedFormat)
	}
}

func fromVkFormat(f vk.Format) core.TextureFormat {
	switch f {
	case vk.FormatR8g8b8a8Unorm:
		return core.TextureFormatRGBA8Unorm
	case vk.FormatB8g8r8a8Unorm:
		return core.TextureFormatBGRA8Unorm
	case vk.FormatR16g16b16a16Sfloat:
		return core.TextureFormatRGBA16Float
	case vk.FormatD24UnormS8Uint:
		return core.TextureFormatDepth24PlusStencil8
	default:
		return core.TextureFormatUndefined
	}
}

func toVkBufferUsage(usage core.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if usage&core.BufferUsageCopySrc != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if usage&core.BufferUsageCopyDst != 0 {
		flags |= vk.BufferUsageTransferDstBit
	}
	if usage&core.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if usage&core.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if usage&core.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if usage&core.BufferUsageStorage != 0 {
		flags |= vk.BufferUsageStorageBufferBit
	}
	if usage&core.BufferUsageIndirect != 0 {
		flags |= vk.BufferUsageIndirectBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

func toVkImageUsage(usage core.TextureUsage) vk.ImageUsageFlags {
	var flags vk.ImageUsageFlagBits
	if usage&core.TextureUsageCopySrc != 0 {
		flags |= vk.ImageUsageTransferSrcBit
	}
	if usage&core.TextureUsageCopyDst != 0 {
		flags |= vk.ImageUsageTransferDstBit
	}
	if usage&core.TextureUsageTextureBinding != 0 {
		flags |= vk.ImageUsageSampledBit
	}
	if usage&core.TextureUsageStorageBinding != 0 {
		flags |= vk.ImageUsageStorageBit
	}
	if usage&core.TextureUsageRenderAttachment != 0 {
		flags |= vk.ImageUsageColorAttachmentBit
	}
	return vk.ImageUsageFlags(flags)
}

func toVkShaderStages(stages core.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if stages&core.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageVertexBit
	}
	if stages&core.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFragmentBit
	}
	if stages&core.ShaderStageCompute != 0 {
		flags |= vk.ShaderStageComputeBit
	}
	return vk.ShaderStageFlags(flags)
}

func toVkDescriptorType(t core.BindingType) vk.DescriptorType {
	switch t {
	case core.BindingStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	case core.BindingSampler:
		return vk.DescriptorTypeSampler
	case core.BindingSampledTexture:
		return vk.DescriptorTypeSampledImage
	case core.BindingCombinedImageSampler:
		return vk.DescriptorTypeCombinedImageSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

func toVkLoadOp(op core.LoadOp) vk.AttachmentLoadOp {
	if op == core.LoadOpLoad {
		return vk.AttachmentLoadOpLoad
	}
	return vk.AttachmentLoadOpClear
}

func toVkStoreOp(op core.StoreOp) vk.AttachmentStoreOp {
	if op == core.StoreOpDiscard {
		return vk.AttachmentStoreOpDontCare
	}
	return vk.AttachmentStoreOpStore
}

func toVkTopology(t core.PrimitiveTopology) vk.PrimitiveTopology {
	switch t {
	case core.TopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case core.TopologyLineList:
		return vk.PrimitiveTopologyLineList
	case core.TopologyPointList:
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func toVkCullMode(m core.CullMode) vk.CullModeFlags {
	switch m {
	case core.CullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case core.CullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	default:
		return vk.CullModeFlags(vk.CullModeNone)
	}
}

func toVkFrontFace(f core.FrontFace) vk.FrontFace {
	if f == core.FrontFaceCW {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func toVkIndexType(f core.IndexFormat) vk.IndexType {
	if f == core.IndexFormatUint32 {
		return vk.IndexTypeUint32
	}
	return vk.IndexTypeUint16
}

func toVkFilter(f core.FilterMode) vk.Filter {
	if f == core.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func toVkAddressMode(m core.AddressMode) vk.SamplerAddressMode {
	switch m {
	case core.AddressModeMirrorRepeat:
		return vk.SamplerAddressModeMirroredRepeat
	case core.AddressModeClampToEdge:
		return vk.SamplerAddressModeClampToEdge
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func toVkVertexFormat(f core.VertexFormat) vk.Format {
	switch f {
	case core.VertexFormatFloat32:
		return vk.FormatR32Sfloat
	case core.VertexFormatFloat32x2:
		return vk.FormatR32g32Sfloat
	case core.VertexFormatFloat32x4:
		return vk.FormatR32g32b32a32Sfloat
	case core.VertexFormatUint32:
		return vk.FormatR32Uint
	default:
		return vk.FormatR32g32b32Sfloat
	}
}

func imageAspect(f core.TextureFormat) vk.ImageAspectFlags {
	if f.HasDepth() {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}
