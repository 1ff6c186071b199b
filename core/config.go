package core

import (
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"
)

// Configuration defines a global configuration setting
type Configuration struct {
	Instance InstanceConfiguration
	Device   DeviceConfiguration
	Time     TimeConfiguration
}

// InstanceConfiguration is used to create the API instance
type InstanceConfiguration struct {
	AppName   string
	DebugMode bool

	// Extensions and Layers are requested on top of what DebugMode adds
	Extensions []string
	Layers     []string
}

// DeviceConfiguration is used when requesting a logical device
type DeviceConfiguration struct {
	// DescriptorPoolCapacity caps the number of bind groups the device
	// can allocate. Zero picks the default
	DescriptorPoolCapacity uint32

	// SwapchainDepth is the preferred swapchain image count. Zero picks
	// the default
	SwapchainDepth uint32

	// ShaderPackPath locates the compiled shader archive used to resolve
	// shader modules created without inline code
	ShaderPackPath string

	// Extensions requested on top of the swapchain extension
	Extensions []string

	// Logger receives transient-recovery events; nil uses the standard
	// logrus logger
	Logger logrus.FieldLogger
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int
}

// Environment variable names read by ConfigurationFromEnv.
const (
	EnvDebug          = "GPU_DEBUG"
	EnvSwapchainDepth = "GPU_SWAPCHAIN_DEPTH"
	EnvShaderPack     = "GPU_SHADER_PACK"
)

// ConfigurationFromEnv builds a Configuration from the environment,
// falling back to defaults for anything unset or unparsable.
func ConfigurationFromEnv() Configuration {
	cfg := Configuration{
		Instance: InstanceConfiguration{
			AppName: "gpu",
		},
		Device: DeviceConfiguration{
			ShaderPackPath: envy.Get(EnvShaderPack, ""),
		},
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
	}

	if debug, err := strconv.ParseBool(envy.Get(EnvDebug, "false")); err == nil {
		cfg.Instance.DebugMode = debug
	}
	if depth, err := strconv.ParseUint(envy.Get(EnvSwapchainDepth, "0"), 10, 32); err == nil {
		cfg.Device.SwapchainDepth = uint32(depth)
	}

	return cfg
}
