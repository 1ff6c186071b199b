package vulkan

import (
	"errors"
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// renderPassKey is the structural identity of a render pass: ordered
// color (format, loadOp, storeOp) triples plus the optional depth
// format. Pipelines and passes built from equal keys share the
// identical native render pass handle.
type renderPassKey string

type colorAttachmentKey struct {
	format  core.TextureFormat
	loadOp  core.LoadOp
	storeOp core.StoreOp
}

func makeRenderPassKey(colors []colorAttachmentKey, depth core.TextureFormat) renderPassKey {
	var sb strings.Builder
	for _, c := range colors {
		fmt.Fprintf(&sb, "c:%s/%s/%s;", c.format, c.loadOp, c.storeOp)
	}
	if depth != core.TextureFormatUndefined {
		fmt.Fprintf(&sb, "d:%s", depth)
	}
	return renderPassKey(sb.String())
}

func pipelinePassKey(desc *core.RenderPipelineDescriptor) renderPassKey {
	colors := make([]colorAttachmentKey, len(desc.ColorFormats))
	for i, format := range desc.ColorFormats {
		colors[i] = colorAttachmentKey{
			format:  format,
			loadOp:  desc.ColorLoadOp,
			storeOp: desc.ColorStoreOp,
		}
	}
	return makeRenderPassKey(colors, desc.DepthStencilFormat)
}

func passDescriptorKey(desc *core.RenderPassDescriptor) renderPassKey {
	colors := make([]colorAttachmentKey, len(desc.ColorAttachments))
	for i, att := range desc.ColorAttachments {
		colors[i] = colorAttachmentKey{
			format:  att.View.Format(),
			loadOp:  att.LoadOp,
			storeOp: att.StoreOp,
		}
	}
	depth := core.TextureFormatUndefined
	if desc.DepthStencilAttachment != nil {
		depth = desc.DepthStencilAttachment.View.Format()
	}
	return makeRenderPassKey(colors, depth)
}

// obtainPass returns the cached render pass for key, invoking build at
// most once per distinct key over the device's lifetime.
func (d *Device) obtainPass(key renderPassKey, build func() (vk.RenderPass, error)) (vk.RenderPass, error) {
	d.passMutex.Lock()
	defer d.passMutex.Unlock()

	if d.passes == nil {
		return nil, errors.New("render pass cache used after device destruction")
	}
	if pass, ok := d.passes[key]; ok {
		return pass, nil
	}
	pass, err := build()
	if err != nil {
		return nil, err
	}
	d.passes[key] = pass
	return pass, nil
}

func (d *Device) renderPassFor(colors []colorAttachmentKey, depth core.TextureFormat) (vk.RenderPass, error) {
	key := makeRenderPassKey(colors, depth)
	return d.obtainPass(key, func() (vk.RenderPass, error) {
		return createRenderPass(d.device, colors, depth)
	})
}

func createRenderPass(device vk.Device, colors []colorAttachmentKey, depth core.TextureFormat) (vk.RenderPass, error) {
	var (
		attachments  []vk.AttachmentDescription
		colorRefs    []vk.AttachmentReference
		depthRefPtr  *vk.AttachmentReference
		attachmentID uint32
	)

	for _, c := range colors {
		format, err := toVkFormat(c.format)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         toVkLoadOp(c.loadOp),
			StoreOp:        toVkStoreOp(c.storeOp),
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
		colorRefs = append(colorRefs, vk.AttachmentReference{
			Attachment: attachmentID,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
		attachmentID++
	}

	if depth != core.TextureFormatUndefined {
		format, err := toVkFormat(depth)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		depthRefPtr = &vk.AttachmentReference{
			Attachment: attachmentID,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(colorRefs)),
		PColorAttachments:       colorRefs,
		PDepthStencilAttachment: depthRefPtr,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device, &rpci, nil, &renderPass)); err != nil {
		return nil, fmt.Errorf("vk.CreateRenderPass(): %s: %w", err.Error(), core.ErrResourceCreation)
	}
	return renderPass, nil
}
