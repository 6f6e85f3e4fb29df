package vbd

import "github.com/vkngwrapper/core/v2/core1_0"

type AllocateDeviceMemoryCallback func(
	kind MemoryKind,
	memoryType int,
	memory core1_0.DeviceMemory,
	size int,
	userData interface{},
)

type FreeDeviceMemoryCallback func(
	kind MemoryKind,
	memoryType int,
	memory core1_0.DeviceMemory,
	size int,
	userData interface{},
)

// MemoryCallbackOptions is reported to whenever device memory is allocated or freed on behalf of an
// Allocator, including the transient memory behind staging buffers
type MemoryCallbackOptions struct {
	Allocate AllocateDeviceMemoryCallback
	Free     FreeDeviceMemoryCallback
	UserData interface{}
}

type memoryCallbacks struct {
	Callbacks *MemoryCallbackOptions
}

func (c *memoryCallbacks) Allocate(
	kind MemoryKind,
	memoryType int,
	memory core1_0.DeviceMemory,
	size int,
) {
	if c != nil && c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(kind, memoryType, memory, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Free(
	kind MemoryKind,
	memoryType int,
	memory core1_0.DeviceMemory,
	size int,
) {
	if c != nil && c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(kind, memoryType, memory, size, c.Callbacks.UserData)
	}
}
