package vulkan

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// NewSurface wraps a native surface handle created by the windowing
// layer. The surface is unusable until Configure is called.
func NewSurface(instance *Instance, handle unsafe.Pointer) *Surface {
	return &Surface{
		instance: instance,
		surface:  vk.SurfaceFromPointer(uintptr(handle)),
	}
}

// Surface owns a swapchain over an externally created native surface.
// A stale or suboptimal chain is recreated in place; acquired textures
// and views are borrowed and never outlive the chain that made them.
type Surface struct {
	instance *Instance
	surface  vk.Surface

	device *Device
	config core.SurfaceConfiguration

	swapchain    vk.Swapchain
	images       []vk.Image
	textures     []*Texture
	views        []*TextureView
	format       vk.Format
	colorSpace   vk.ColorSpace
	width        uint32
	height       uint32
	acquireFence vk.Fence

	frameAcquired bool

	configured bool
	destroyed  bool
}

func (s *Surface) pickSurfaceFormat(want core.TextureFormat) error {
	var surfaceFormatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(s.device.physicalDevice, s.surface, &surfaceFormatCount, nil)); err != nil {
		return errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}
	surfaceFormats := make([]vk.SurfaceFormat, surfaceFormatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(s.device.physicalDevice, s.surface, &surfaceFormatCount, surfaceFormats)); err != nil {
		return errors.New("vk.GetPhysicalDeviceSurfaceFormats(): " + err.Error())
	}

	wantFormat, err := toVkFormat(want)
	if err != nil {
		return err
	}

	for i := range surfaceFormats {
		surfaceFormats[i].Deref()
		if surfaceFormats[i].Format == wantFormat {
			s.format = surfaceFormats[i].Format
			s.colorSpace = surfaceFormats[i].ColorSpace
			return nil
		}
	}

	// The platform does not offer the requested format, adopt its first
	s.format = surfaceFormats[0].Format
	s.colorSpace = surfaceFormats[0].ColorSpace
	s.config.Format = fromVkFormat(s.format)
	return nil
}

// Configure implements interface
func (s *Surface) Configure(device core.Device, config *core.SurfaceConfiguration) error {
	dev, ok := device.(*Device)
	if !ok || dev == nil {
		return fmt.Errorf("device from another backend: %w", core.ErrInvalidDescriptor)
	}
	s.device = dev
	s.config = *config

	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(dev.physicalDevice, dev.queueFamily, s.surface, &supported)); err != nil {
		return errors.New("vk.GetPhysicalDeviceSurfaceSupport(): " + err.Error())
	}
	if !supported.B() {
		return fmt.Errorf("queue family %d cannot present to this surface: %w", dev.queueFamily, core.ErrSurfaceUnconfigured)
	}

	if err := s.pickSurfaceFormat(config.Format); err != nil {
		return err
	}

	if s.acquireFence == nil {
		fci := vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
		}
		var fence vk.Fence
		if err := vk.Error(vk.CreateFence(dev.device, &fci, nil, &fence)); err != nil {
			return errors.New("vk.CreateFence(): " + err.Error())
		}
		s.acquireFence = fence
	}

	if err := s.createSwapchain(s.swapchain); err != nil {
		return err
	}

	s.configured = true
	return nil
}

// effectiveExtent resolves the swapchain extent. A fixed platform
// extent wins, otherwise the configured one is used; a zero-extent
// configuration falls back to the current framebuffer size.
func effectiveExtent(config core.SurfaceConfiguration, current vk.Extent2D) (uint32, uint32, error) {
	width, height := config.Width, config.Height
	if current.Width != math.MaxUint32 {
		width = current.Width
		height = current.Height
	}
	if width == 0 || height == 0 {
		return 0, 0, fmt.Errorf("surface has no usable extent: %w", core.ErrInvalidDescriptor)
	}
	return width, height, nil
}

func (s *Surface) createSwapchain(oldSwapchain vk.Swapchain) error {
	var surfaceCapabilities vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(s.device.physicalDevice, s.surface, &surfaceCapabilities)); err != nil {
		return errors.New("vk.GetPhysicalDeviceSurfaceCapabilities(): " + err.Error())
	}
	surfaceCapabilities.Deref()
	surfaceCapabilities.CurrentExtent.Deref()

	width, height, err := effectiveExtent(s.config, surfaceCapabilities.CurrentExtent)
	if err != nil {
		return err
	}

	depth := s.device.configuration.SwapchainDepth
	if depth == 0 {
		depth = 2
	}
	if depth < surfaceCapabilities.MinImageCount {
		depth = surfaceCapabilities.MinImageCount
	}
	if surfaceCapabilities.MaxImageCount != 0 && depth > surfaceCapabilities.MaxImageCount {
		depth = surfaceCapabilities.MaxImageCount
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	compositeAlphaFlags := []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	}
	for i := 0; i < len(compositeAlphaFlags); i++ {
		alphaFlags := vk.CompositeAlphaFlags(compositeAlphaFlags[i])
		if surfaceCapabilities.SupportedCompositeAlpha&alphaFlags != 0 {
			compositeAlpha = compositeAlphaFlags[i]
			break
		}
	}

	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	if s.config.Usage != 0 {
		usage |= toVkImageUsage(s.config.Usage)
	}

	// Every requested mode maps to fifo, the one mode the platform
	// must support
	scci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         s.surface,
		MinImageCount:   depth,
		ImageFormat:     s.format,
		ImageColorSpace: s.colorSpace,
		ImageExtent: vk.Extent2D{
			Width:  width,
			Height: height,
		},
		ImageUsage:       usage,
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		OldSwapchain:     oldSwapchain,
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(s.device.device, &scci, nil, &swapchain)); err != nil {
		return errors.New("vk.CreateSwapchain(): " + err.Error())
	}

	if oldSwapchain != nil {
		vk.DeviceWaitIdle(s.device.device)
		s.destroyImageViews()
		vk.DestroySwapchain(s.device.device, oldSwapchain, nil)
	}
	s.swapchain = swapchain
	s.width = width
	s.height = height

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(s.device.device, s.swapchain, &numImages, nil)); err != nil {
		return errors.New("vk.GetSwapchainImages(num): " + err.Error())
	}
	s.images = make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(s.device.device, s.swapchain, &numImages, s.images)); err != nil {
		return errors.New("vk.GetSwapchainImages(images): " + err.Error())
	}

	return s.createImageViews()
}

func (s *Surface) createImageViews() error {
	format := fromVkFormat(s.format)
	for _, image := range s.images {
		texture := &Texture{
			device: s.device,
			image:  image,
			extent: core.Extent3D{Width: s.width, Height: s.height, Depth: 1},
			format: format,
			owned:  false,
		}

		view, err := texture.CreateView(nil)
		if err != nil {
			return err
		}

		s.textures = append(s.textures, texture)
		s.views = append(s.views, view.(*TextureView))
	}
	return nil
}

func (s *Surface) destroyImageViews() {
	for _, view := range s.views {
		view.Destroy()
	}
	s.views = nil
	for _, texture := range s.textures {
		texture.Destroy()
	}
	s.textures = nil
	s.images = nil
	// Any acquired frame died with its chain
	s.frameAcquired = false
}

// recreate rebuilds the swapchain in place, handing the old chain to
// the driver for resource reuse.
func (s *Surface) recreate(reason string) error {
	s.device.logger.WithField("reason", reason).Info("recreating swapchain")
	return s.createSwapchain(s.swapchain)
}

// AcquireFrame implements interface
func (s *Surface) AcquireFrame() (*core.SurfaceFrame, error) {
	if !s.configured {
		return nil, core.ErrSurfaceUnconfigured
	}

	var (
		imageIndex uint32
		suboptimal bool
	)
	for attempt := 0; ; attempt++ {
		if err := vk.Error(vk.ResetFences(s.device.device, 1, []vk.Fence{s.acquireFence})); err != nil {
			return nil, fmt.Errorf("vk.ResetFences(): %s: %w", err.Error(), core.ErrFrameAcquisitionFailed)
		}

		result := vk.AcquireNextImage(s.device.device, s.swapchain, math.MaxUint64, vk.NullSemaphore, s.acquireFence, &imageIndex)
		switch result {
		case vk.Success:
		case vk.Suboptimal:
			suboptimal = true
		case vk.ErrorOutOfDate:
			if attempt > 0 {
				return nil, fmt.Errorf("swapchain out of date after recreation: %w", core.ErrFrameAcquisitionFailed)
			}
			if err := s.recreate("acquire returned out-of-date"); err != nil {
				return nil, fmt.Errorf("%s: %w", err.Error(), core.ErrFrameAcquisitionFailed)
			}
			continue
		default:
			return nil, fmt.Errorf("vk.AcquireNextImage(): %s: %w", vk.Error(result).Error(), core.ErrFrameAcquisitionFailed)
		}

		if err := vk.Error(vk.WaitForFences(s.device.device, 1, []vk.Fence{s.acquireFence}, vk.True, math.MaxUint64)); err != nil {
			return nil, fmt.Errorf("vk.WaitForFences(): %s: %w", err.Error(), core.ErrFrameAcquisitionFailed)
		}
		break
	}

	s.frameAcquired = true
	return &core.SurfaceFrame{
		Texture:    s.textures[imageIndex],
		View:       s.views[imageIndex],
		Index:      imageIndex,
		Suboptimal: suboptimal,
	}, nil
}

// Present implements interface
func (s *Surface) Present(frame *core.SurfaceFrame) error {
	if !s.configured {
		return core.ErrSurfaceUnconfigured
	}
	if frame == nil {
		return fmt.Errorf("nil frame: %w", core.ErrInvalidDescriptor)
	}
	if !s.frameAcquired {
		return fmt.Errorf("no acquired frame to present: %w", core.ErrPresentFailed)
	}
	// The frame is handed to the driver exactly once, a second Present
	// has to go through AcquireFrame again
	s.frameAcquired = false

	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{s.swapchain},
		PImageIndices:  []uint32{frame.Index},
	}

	result := vk.QueuePresent(s.device.queue.queue, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		// The frame was handed to the driver either way, recover the
		// chain for the next one and report success
		if err := s.recreate("present returned stale chain"); err != nil {
			return fmt.Errorf("%s: %w", err.Error(), core.ErrPresentFailed)
		}
		return nil
	default:
		return fmt.Errorf("vk.QueuePresent(): %s: %w", vk.Error(result).Error(), core.ErrPresentFailed)
	}
}

// Resize implements interface
func (s *Surface) Resize(width, height uint32) error {
	if !s.configured {
		return core.ErrSurfaceUnconfigured
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("resize to zero extent: %w", core.ErrInvalidDescriptor)
	}
	s.config.Width = width
	s.config.Height = height
	return s.recreate("resize")
}

// Destroy implements interface
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.device != nil && s.device.device != nil {
		vk.DeviceWaitIdle(s.device.device)
		s.destroyImageViews()
		if s.acquireFence != nil {
			vk.DestroyFence(s.device.device, s.acquireFence, nil)
		}
		if s.swapchain != nil {
			vk.DestroySwapchain(s.device.device, s.swapchain, nil)
		}
	}
	if s.instance != nil && s.surface != nil {
		vk.DestroySurface(s.instance.instance, s.surface, nil)
	}
}
