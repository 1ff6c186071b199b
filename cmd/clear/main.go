package main

import (
	"errors"
	"runtime"

	"github.com/gobuffalo/packr"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/koru3d/gpu/core"
	"github.com/koru3d/gpu/model"
	"github.com/koru3d/gpu/vulkan"
)

func init() {
	runtime.LockOSThread()
}

const (
	windowWidth  = 800
	windowHeight = 600
)

// builtinShaders carries the compiled demo shaders into the binary.
var builtinShaders = packr.NewBox("./assets")

type boxShaderSource struct {
	box packr.Box
}

func (s *boxShaderSource) Load(label string) ([]byte, error) {
	name := label + ".spv"
	if !s.box.Has(name) {
		return nil, core.ErrShaderResourceNotFound
	}
	return s.box.MustBytes(name)
}

func newWindow() *sdl.Window {
	window, err := sdl.CreateWindow("gpu clear",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		windowWidth,
		windowHeight,
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		panic(err)
	}
	return window
}

func buildPipeline(device core.Device, format core.TextureFormat) (core.RenderPipeline, error) {
	vert, err := device.CreateShaderModule(&core.ShaderModuleDescriptor{Label: "clear.vert"})
	if err != nil {
		return nil, err
	}
	frag, err := device.CreateShaderModule(&core.ShaderModuleDescriptor{Label: "clear.frag"})
	if err != nil {
		return nil, err
	}

	return device.CreateRenderPipeline(&core.RenderPipelineDescriptor{
		Label:          "clear",
		VertexShader:   vert,
		FragmentShader: frag,
		VertexLayouts:  []core.VertexBufferLayout{model.PositionLayout()},
		ColorFormats:   []core.TextureFormat{format},
		ColorLoadOp:    core.LoadOpClear,
		ColorStoreOp:   core.StoreOpStore,
		Topology:       core.TopologyTriangleList,
		CullMode:       core.CullModeBack,
		FrontFace:      core.FrontFaceCCW,
	})
}

func drawFrame(device core.Device, surface core.Surface, pipeline core.RenderPipeline, vertices core.Buffer, vertexCount uint32) error {
	frame, err := surface.AcquireFrame()
	if err != nil {
		return err
	}

	encoder, err := device.CreateCommandEncoder()
	if err != nil {
		return err
	}

	pass, err := encoder.BeginRenderPass(&core.RenderPassDescriptor{
		Label: "frame",
		ColorAttachments: []core.ColorAttachment{{
			View:       frame.View,
			LoadOp:     core.LoadOpClear,
			StoreOp:    core.StoreOpStore,
			ClearValue: core.Color{R: 0.005, G: 0.005, B: 0.005, A: 1},
		}},
	})
	if err != nil {
		return err
	}

	if pipeline != nil {
		if err := pass.SetPipeline(pipeline); err != nil {
			return err
		}
		if err := pass.SetVertexBuffer(0, vertices, 0); err != nil {
			return err
		}
		if err := pass.Draw(vertexCount, 1, 0, 0); err != nil {
			return err
		}
	}
	if err := pass.End(); err != nil {
		return err
	}

	buffer, err := encoder.Finish("frame")
	if err != nil {
		return err
	}
	if err := device.Queue().Submit(buffer); err != nil {
		return err
	}

	return surface.Present(frame)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	cfg := core.ConfigurationFromEnv()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		panic(err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		panic(err)
	}
	defer sdl.VulkanUnloadLibrary()

	window := newWindow()
	defer window.Destroy()

	cfg.Instance.Extensions = append(cfg.Instance.Extensions, window.VulkanGetInstanceExtensions()...)
	instance, err := vulkan.NewInstance(cfg.Instance, sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		panic(err)
	}
	defer instance.Destroy()

	if len(instance.Adapters()) == 0 {
		panic(errors.New("no adapters found"))
	}
	adapter := instance.Adapters()[0]
	log.WithField("adapter", adapter.Info().Name).Info("using adapter")

	device, err := adapter.RequestDevice(cfg.Device)
	if err != nil {
		panic(err)
	}
	defer device.Destroy()

	if cfg.Device.ShaderPackPath == "" {
		device.SetShaderSource(&boxShaderSource{box: builtinShaders})
	}

	surfaceHandle, err := window.VulkanCreateSurface(instance.Handle())
	if err != nil {
		panic(err)
	}
	surface := vulkan.NewSurface(instance, surfaceHandle)
	defer surface.Destroy()

	if err := surface.Configure(device, &core.SurfaceConfiguration{
		Format:      core.TextureFormatBGRA8Unorm,
		Usage:       core.TextureUsageRenderAttachment,
		Width:       windowWidth,
		Height:      windowHeight,
		PresentMode: core.PresentModeFifo,
	}); err != nil {
		panic(err)
	}

	boxData := model.BoxVertices()
	vertexCount := uint32(len(boxData) / 3)
	vertices, err := device.CreateBuffer(&core.BufferDescriptor{
		Label: "box vertices",
		Size:  uint64(len(boxData) * 4),
		Usage: core.BufferUsageVertex | core.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer vertices.Destroy()
	if err := vertices.WriteFloat32(0, boxData); err != nil {
		panic(err)
	}

	pipeline, err := buildPipeline(device, core.TextureFormatBGRA8Unorm)
	if err != nil {
		log.WithError(err).Warn("pipeline unavailable, clearing only")
		pipeline = nil
	}

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	exitC := make(chan struct{}, 2)

EventLoop:
	for {
		select {
		case <-exitC:
			log.Info("event loop exited")
			break EventLoop
		case <-timeService.FpsTicker().C:
			if err := drawFrame(device, surface, pipeline, vertices, vertexCount); err != nil {
				log.WithError(err).Error("frame failed")
			}
		case <-timeService.EventTicker().C:
			var event sdl.Event
			for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						exitC <- struct{}{}
						continue EventLoop
					}
				case *sdl.WindowEvent:
					if et.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
						if err := surface.Resize(uint32(et.Data1), uint32(et.Data2)); err != nil {
							log.WithError(err).Error("resize failed")
						}
					}
				case *sdl.QuitEvent:
					exitC <- struct{}{}
					continue EventLoop
				}
			}
		}
	}
}
