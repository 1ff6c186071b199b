package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// CreateTexture allocates an image and binds device-local memory to it.
func (d *Device) CreateTexture(desc *core.TextureDescriptor) (core.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	format, err := toVkFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	mipLevels := desc.MipLevelCount
	if mipLevels == 0 {
		mipLevels = 1
	}
	if desc.SampleCount > 1 {
		return nil, fmt.Errorf("texture %q: multisampling not supported: %w", desc.Label, core.ErrInvalidDescriptor)
	}
	depth := desc.Size.Depth
	if depth == 0 {
		depth = 1
	}

	imageType := vk.ImageType2d
	switch desc.Dimension {
	case core.TextureDimension1D:
		imageType = vk.ImageType1d
	case core.TextureDimension3D:
		imageType = vk.ImageType3d
	}

	usage := toVkImageUsage(desc.Usage)
	if desc.Format.HasDepth() && desc.Usage&core.TextureUsageRenderAttachment != 0 {
		usage = (usage &^ vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)) |
			vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	}

	ici := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: imageType,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  desc.Size.Width,
			Height: desc.Size.Height,
			Depth:  depth,
		},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if err := vk.Error(vk.CreateImage(d.device, &ici, nil, &image)); err != nil {
		return nil, fmt.Errorf("vk.CreateImage(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, image, &memoryRequirements)
	memoryRequirements.Deref()

	mem, err := d.allocator.Malloc(memoryRequirements, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(d.device, image, nil)
		return nil, fmt.Errorf("texture %q: %s: %w", desc.Label, err.Error(), core.ErrResourceCreation)
	}

	if err := vk.Error(vk.BindImageMemory(d.device, image, mem.memory, 0)); err != nil {
		mem.Release()
		vk.DestroyImage(d.device, image, nil)
		return nil, fmt.Errorf("vk.BindImageMemory(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &Texture{
		label:  desc.Label,
		device: d,
		image:  image,
		mem:    mem,
		extent: core.Extent3D{Width: desc.Size.Width, Height: desc.Size.Height, Depth: depth},
		format: desc.Format,
		owned:  true,
	}, nil
}

// Texture wraps one native image. Swapchain images are wrapped with
// owned unset, their Destroy never touches the native handle.
type Texture struct {
	label  string
	device *Device
	image  vk.Image
	mem    memory
	extent core.Extent3D
	format core.TextureFormat
	owned  bool

	destroyed bool
}

// Extent implements interface
func (t *Texture) Extent() core.Extent3D {
	return t.extent
}

// Format implements interface
func (t *Texture) Format() core.TextureFormat {
	return t.format
}

// CreateView implements interface
func (t *Texture) CreateView(desc *core.TextureViewDescriptor) (core.TextureView, error) {
	if desc == nil {
		desc = &core.TextureViewDescriptor{}
	}

	format := desc.Format
	if format == core.TextureFormatUndefined {
		format = t.format
	}
	vkFormat, err := toVkFormat(format)
	if err != nil {
		return nil, err
	}

	levelCount := desc.MipLevelCount
	if levelCount == 0 {
		levelCount = 1
	}
	layerCount := desc.ArrayLayerCount
	if layerCount == 0 {
		layerCount = 1
	}

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    t.image,
		ViewType: vk.ImageViewType2d,
		Format:   vkFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     imageAspect(format),
			BaseMipLevel:   desc.BaseMipLevel,
			LevelCount:     levelCount,
			BaseArrayLayer: desc.BaseArrayLayer,
			LayerCount:     layerCount,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(t.device.device, &ivci, nil, &view)); err != nil {
		return nil, fmt.Errorf("vk.CreateImageView(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &TextureView{
		label:   desc.Label,
		device:  t.device,
		view:    view,
		format:  format,
		extent:  t.extent,
		texture: t,
	}, nil
}

// Destroy implements interface
func (t *Texture) Destroy() {
	if t.destroyed || t.device == nil {
		return
	}
	t.destroyed = true
	if !t.owned {
		return
	}
	vk.DestroyImage(t.device.device, t.image, nil)
	t.mem.Release()
}

// TextureView wraps one native image view.
type TextureView struct {
	label   string
	device  *Device
	view    vk.ImageView
	format  core.TextureFormat
	extent  core.Extent3D
	texture *Texture

	destroyed bool
}

// Format implements interface
func (v *TextureView) Format() core.TextureFormat {
	return v.format
}

// Destroy implements interface
func (v *TextureView) Destroy() {
	if v.destroyed || v.device == nil {
		return
	}
	v.destroyed = true
	vk.DestroyImageView(v.device.device, v.view, nil)
}

// CreateSampler creates an immutable sampler.
func (d *Device) CreateSampler(desc *core.SamplerDescriptor) (core.Sampler, error) {
	sci := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               toVkFilter(desc.MagFilter),
		MinFilter:               toVkFilter(desc.MinFilter),
		AddressModeU:            toVkAddressMode(desc.AddressModeU),
		AddressModeV:            toVkAddressMode(desc.AddressModeV),
		AddressModeW:            toVkAddressMode(desc.AddressModeW),
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorFloatOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if err := vk.Error(vk.CreateSampler(d.device, &sci, nil, &sampler)); err != nil {
		return nil, fmt.Errorf("vk.CreateSampler(): %s: %w", err.Error(), core.ErrResourceCreation)
	}

	return &Sampler{
		label:   desc.Label,
		device:  d,
		sampler: sampler,
	}, nil
}

// Sampler wraps one native sampler.
type Sampler struct {
	label   string
	device  *Device
	sampler vk.Sampler

	destroyed bool
}

// Destroy implements interface
func (s *Sampler) Destroy() {
	if s.destroyed || s.device == nil {
		return
	}
	s.destroyed = true
	vk.DestroySampler(s.device.device, s.sampler, nil)
}
