package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/koru3d/gpu/core"
)

func TestConfigurationFromEnvDefaults(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		cfg := core.ConfigurationFromEnv()

		c.Assert(cfg.Instance.AppName, qt.Equals, "gpu")
		c.Assert(cfg.Instance.DebugMode, qt.Equals, false)
		c.Assert(cfg.Device.SwapchainDepth, qt.Equals, uint32(0))
		c.Assert(cfg.Device.ShaderPackPath, qt.Equals, "")
		c.Assert(cfg.Time.FramesPerSecond, qt.Equals, 60)
		c.Assert(cfg.Time.EventPollDelay, qt.Equals, 10)
	})
}

func TestConfigurationFromEnv(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set(core.EnvDebug, "true")
		envy.Set(core.EnvSwapchainDepth, "3")
		envy.Set(core.EnvShaderPack, "/tmp/shaders.gsp")

		cfg := core.ConfigurationFromEnv()

		c.Assert(cfg.Instance.DebugMode, qt.Equals, true)
		c.Assert(cfg.Device.SwapchainDepth, qt.Equals, uint32(3))
		c.Assert(cfg.Device.ShaderPackPath, qt.Equals, "/tmp/shaders.gsp")
	})
}

func TestConfigurationFromEnvBadValues(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set(core.EnvDebug, "not-a-bool")
		envy.Set(core.EnvSwapchainDepth, "-1")

		cfg := core.ConfigurationFromEnv()

		c.Assert(cfg.Instance.DebugMode, qt.Equals, false)
		c.Assert(cfg.Device.SwapchainDepth, qt.Equals, uint32(0))
	})
}
