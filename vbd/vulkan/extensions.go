package vulkan

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_bind_memory2"
	khr_bind_memory2_shim "github.com/vkngwrapper/extensions/v2/khr_bind_memory2/shim"
)

// ExtensionData holds the optional device capabilities the backend can take advantage of
type ExtensionData struct {
	// BindMemory2 binds many buffers or images with a single call. It is nil when neither core 1.1 nor
	// khr_bind_memory2 is active, and objects are bound one at a time.
	BindMemory2 khr_bind_memory2_shim.Shim
}

func NewExtensionData(device core1_0.Device) *ExtensionData {
	data := &ExtensionData{}

	device11 := core1_1.PromoteDevice(device)
	if device11 != nil {
		// Core 1.1 includes khr_bind_memory2
		data.BindMemory2 = device11
	}

	if data.BindMemory2 == nil && device.IsDeviceExtensionActive(khr_bind_memory2.ExtensionName) {
		extension := khr_bind_memory2.CreateExtensionFromDevice(device)
		data.BindMemory2 = khr_bind_memory2_shim.NewShim(device, extension)
	}

	return data
}
