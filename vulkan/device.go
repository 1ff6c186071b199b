package vulkan

import (
	"sync"

	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
)

// Device owns the logical device and acts as the resource factory.
// Bind groups, bind group layouts and pipelines are tracked so that
// Destroy can reclaim them in dependency order.
type Device struct {
	configuration core.DeviceConfiguration
	logger        logrus.FieldLogger

	instance       *Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queueFamily    uint32
	queue          *Queue

	commandPool    vk.CommandPool
	descriptorPool vk.DescriptorPool
	pipelineCache  vk.PipelineCache
	allocator      *memoryAllocator

	shaderSource core.ShaderSource

	passMutex sync.Mutex
	passes    map[renderPassKey]vk.RenderPass

	trackMutex       sync.Mutex
	bindGroups       []*BindGroup
	bindGroupLayouts []*BindGroupLayout
	renderPipelines  []*RenderPipeline
	computePipelines []*ComputePipeline

	destroyed bool
}

// Queue returns the device's single submission queue.
func (d *Device) Queue() core.Queue {
	return d.queue
}

// SetShaderSource installs the resolver used by CreateShaderModule for
// descriptors without inline code.
func (d *Device) SetShaderSource(source core.ShaderSource) {
	d.shaderSource = source
}

// Handle returns the inner handle of the underlying API
func (d *Device) Handle() vk.Device {
	return d.device
}

func (d *Device) track(resource interface{}) {
	d.trackMutex.Lock()
	defer d.trackMutex.Unlock()
	switch r := resource.(type) {
	case *BindGroup:
		d.bindGroups = append(d.bindGroups, r)
	case *BindGroupLayout:
		d.bindGroupLayouts = append(d.bindGroupLayouts, r)
	case *RenderPipeline:
		d.renderPipelines = append(d.renderPipelines, r)
	case *ComputePipeline:
		d.computePipelines = append(d.computePipelines, r)
	}
}

// Destroy tears down tracked resources in dependency order, then the
// pools and the device itself. Safe to call more than once.
func (d *Device) Destroy() {
	if d.destroyed || d.device == nil {
		return
	}
	d.destroyed = true

	vk.DeviceWaitIdle(d.device)

	d.trackMutex.Lock()
	for _, bg := range d.bindGroups {
		bg.Destroy()
	}
	d.bindGroups = nil
	for _, layout := range d.bindGroupLayouts {
		layout.Destroy()
	}
	d.bindGroupLayouts = nil
	for _, pipeline := range d.renderPipelines {
		pipeline.Destroy()
	}
	d.renderPipelines = nil
	for _, pipeline := range d.computePipelines {
		pipeline.Destroy()
	}
	d.computePipelines = nil
	d.trackMutex.Unlock()

	d.passMutex.Lock()
	for _, pass := range d.passes {
		vk.DestroyRenderPass(d.device, pass, nil)
	}
	d.passes = nil
	d.passMutex.Unlock()

	vk.DestroyDescriptorPool(d.device, d.descriptorPool, nil)
	vk.DestroyPipelineCache(d.device, d.pipelineCache, nil)
	vk.DestroyCommandPool(d.device, d.commandPool, nil)
	vk.DestroyDevice(d.device, nil)
}
