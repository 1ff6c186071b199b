package main

import (
	"encoding/json"
	"fmt"

	"github.com/koru3d/gpu/core"
	"github.com/koru3d/gpu/vulkan"
)

func main() {
	cfg := core.ConfigurationFromEnv()

	instance, err := vulkan.NewInstance(cfg.Instance, nil)
	if err != nil {
		panic(err)
	}

	infos := []vulkan.AdapterInfo{}
	for _, adapter := range instance.Adapters() {
		infos = append(infos, adapter.Info())
	}

	if bytes, err := json.Marshal(infos); err == nil {
		fmt.Printf("%s", bytes)
	} else {
		panic(err)
	}

	instance.Destroy()
}
