package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/koru3d/gpu/core"
	"github.com/koru3d/gpu/shaderpack"
)

// defaultApplicationInfo describes the application to the driver
var defaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   safeString("gpu"),
	PEngineName:        safeString("gpu"),
}

// NewInstance creates an API instance. procAddr is the loader's
// GetInstanceProcAddr when the windowing layer provides one, nil to use
// the default loader.
func NewInstance(cfg core.InstanceConfiguration, procAddr unsafe.Pointer) (*Instance, error) {
	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, "VK_LAYER_LUNARG_standard_validation")
		cfg.Extensions = append(cfg.Extensions, "VK_EXT_debug_report")
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.New("vk.InstanceProcAddr(): " + err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.New("vk.Init(): " + err.Error())
	}

	appInfo := defaultApplicationInfo
	if cfg.AppName != "" {
		info := *defaultApplicationInfo
		info.PApplicationName = safeString(cfg.AppName)
		appInfo = &info
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.New("vk.CreateInstance(): " + err.Error())
	}
	vk.InitInstance(instance)

	physicalDevices, err := enumerateDevices(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	ins := &Instance{
		configuration: cfg,
		instance:      instance,
	}
	for _, pd := range physicalDevices {
		ins.adapters = append(ins.adapters, &Adapter{
			physicalDevice: pd,
			instance:       ins,
		})
	}
	return ins, nil
}

// Instance wraps the native API instance and its enumerated adapters.
type Instance struct {
	configuration core.InstanceConfiguration

	instance  vk.Instance
	adapters  []*Adapter
	destroyed bool
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("physical device enumeration failed: %s", err)
	}
	return availableDevices, nil
}

// Adapters returns the enumerated physical devices.
func (ins *Instance) Adapters() []*Adapter {
	return ins.adapters
}

// Handle returns the inner handle of the underlying API
func (ins *Instance) Handle() vk.Instance {
	return ins.instance
}

// Destroy destroys internal members. Safe to call more than once.
func (ins *Instance) Destroy() {
	if ins.destroyed || ins.instance == nil {
		return
	}
	ins.destroyed = true
	ins.adapters = nil
	vk.DestroyInstance(ins.instance, nil)
}

// AdapterInfo describes one physical device.
type AdapterInfo struct {
	ID            int
	VendorID      int
	Name          string
	DriverVersion int
	Memory        uint
	Extensions    []string
	Layers        []string
	Invalid       bool
}

// Adapter is one enumerated physical device.
type Adapter struct {
	physicalDevice vk.PhysicalDevice
	instance       *Instance
}

// Info collects extension, layer, memory and identity info about the
// physical device.
func (a *Adapter) Info() AdapterInfo {
	var info AdapterInfo

	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(a.physicalDevice, "", &numDeviceExtensions, nil)); err != nil {
		info.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(a.physicalDevice, "", &numDeviceExtensions, deviceExt)); err != nil {
		info.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(a.physicalDevice, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(a.physicalDevice, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(a.physicalDevice, &memoryProperties)
	memoryProperties.Deref()
	for iMem := (uint32)(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory = info.Memory + uint(memoryProperties.MemoryHeaps[iMem].Size)
	}

	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(a.physicalDevice, &physicalDeviceProperties)
	physicalDeviceProperties.Deref()
	info.ID = (int)(physicalDeviceProperties.DeviceID)
	info.VendorID = (int)(physicalDeviceProperties.VendorID)
	info.Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
	info.DriverVersion = (int)(physicalDeviceProperties.DriverVersion)

	return info
}

func (a *Adapter) graphicsQueueFamily() (uint32, error) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(a.physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(a.physicalDevice, &queueFamilyCount, queueFamilies)

	if queueFamilyCount == 0 {
		return 0, errors.New("vk.GetPhysicalDeviceQueueFamilyProperties(): no queue families on GPU")
	}

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return i, nil
		}
	}
	return 0, errors.New("could not find a queue family with graphics support")
}

// DefaultDescriptorPoolCapacity is used when DeviceConfiguration leaves
// the pool capacity unset.
const DefaultDescriptorPoolCapacity = 256

// RequestDevice creates the logical device, its queue, command pool and
// descriptor pool. When cfg.ShaderPackPath is set the shader pack is
// opened and installed as the device's shader source.
func (a *Adapter) RequestDevice(cfg core.DeviceConfiguration) (*Device, error) {
	queueFamily, err := a.graphicsQueueFamily()
	if err != nil {
		return nil, err
	}

	requiredExtensions := append([]string{vk.KhrSwapchainExtensionName}, cfg.Extensions...)

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1, 0},
	}}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredExtensions),
	}

	var vkDevice vk.Device
	if err := vk.Error(vk.CreateDevice(a.physicalDevice, &dci, nil, &vkDevice)); err != nil {
		return nil, errors.New("vk.CreateDevice(): " + err.Error())
	}

	var deviceQueue vk.Queue
	vk.GetDeviceQueue(vkDevice, queueFamily, 0, &deviceQueue)

	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var commandPool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(vkDevice, &cpci, nil, &commandPool)); err != nil {
		vk.DestroyDevice(vkDevice, nil)
		return nil, errors.New("vk.CreateCommandPool(): " + err.Error())
	}

	capacity := cfg.DescriptorPoolCapacity
	if capacity == 0 {
		capacity = DefaultDescriptorPoolCapacity
	}

	descriptorPool, err := prepareDescriptorPool(vkDevice, capacity)
	if err != nil {
		vk.DestroyCommandPool(vkDevice, commandPool, nil)
		vk.DestroyDevice(vkDevice, nil)
		return nil, err
	}

	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	var pipelineCache vk.PipelineCache
	if err := vk.Error(vk.CreatePipelineCache(vkDevice, &pcci, nil, &pipelineCache)); err != nil {
		vk.DestroyDescriptorPool(vkDevice, descriptorPool, nil)
		vk.DestroyCommandPool(vkDevice, commandPool, nil)
		vk.DestroyDevice(vkDevice, nil)
		return nil, errors.New("vk.CreatePipelineCache(): " + err.Error())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	dev := &Device{
		configuration:  cfg,
		logger:         logger,
		instance:       a.instance,
		physicalDevice: a.physicalDevice,
		device:         vkDevice,
		queueFamily:    queueFamily,
		commandPool:    commandPool,
		descriptorPool: descriptorPool,
		pipelineCache:  pipelineCache,
		allocator:      newMemoryAllocator(vkDevice, a.physicalDevice),
		passes:         make(map[renderPassKey]vk.RenderPass),
	}
	dev.queue = &Queue{device: dev, queue: deviceQueue}

	if cfg.ShaderPackPath != "" {
		pack, err := shaderpack.Open(cfg.ShaderPackPath)
		if err != nil {
			dev.Destroy()
			return nil, fmt.Errorf("shader pack %q: %s", cfg.ShaderPackPath, err.Error())
		}
		dev.shaderSource = pack
	}

	return dev, nil
}

func prepareDescriptorPool(device vk.Device, capacity uint32) (vk.DescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: capacity,
		},
		{
			Type:            vk.DescriptorTypeStorageBuffer,
			DescriptorCount: capacity,
		},
		{
			Type:            vk.DescriptorTypeSampler,
			DescriptorCount: capacity,
		},
		{
			Type:            vk.DescriptorTypeSampledImage,
			DescriptorCount: capacity,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: capacity,
		}}
	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       capacity,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var descriptorPool vk.DescriptorPool
	if err := vk.Error(vk.CreateDescriptorPool(device, &dpci, nil, &descriptorPool)); err != nil {
		return nil, errors.New("vk.CreateDescriptorPool(): " + err.Error())
	}
	return descriptorPool, nil
}
