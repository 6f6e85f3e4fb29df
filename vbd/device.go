package vbd

//go:generate mockgen -source ./device.go -destination ./mocks/device.go -package mock_vbd

import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// BufferBinding places a buffer at an offset within device memory
type BufferBinding struct {
	Buffer core1_0.Buffer
	Memory core1_0.DeviceMemory
	Offset int
}

// ImageBinding places an image at an offset within device memory
type ImageBinding struct {
	Image  core1_0.Image
	Memory core1_0.DeviceMemory
	Offset int
}

// Device is the set of device operations the allocator, repository and staging path require. The
// vbd/vulkan package implements it on top of a core1_0.Device.
type Device interface {
	CreateBuffer(createInfo core1_0.BufferCreateInfo) (core1_0.Buffer, common.VkResult, error)
	CreateImage(createInfo core1_0.ImageCreateInfo) (core1_0.Image, common.VkResult, error)
	BufferMemoryRequirements(buffer core1_0.Buffer) core1_0.MemoryRequirements
	ImageMemoryRequirements(image core1_0.Image) core1_0.MemoryRequirements

	AllocateMemory(allocateInfo core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error)
	// BindBufferMemory binds every provided buffer. Implementations may bind them with a single call.
	BindBufferMemory(bindings []BufferBinding) (common.VkResult, error)
	// BindImageMemory binds every provided image. Implementations may bind them with a single call.
	BindImageMemory(bindings []ImageBinding) (common.VkResult, error)
	MapMemory(memory core1_0.DeviceMemory, offset, size int) (unsafe.Pointer, common.VkResult, error)
	UnmapMemory(memory core1_0.DeviceMemory)
	FlushMappedMemoryRanges(ranges []core1_0.MappedMemoryRange) (common.VkResult, error)

	DestroyBuffer(buffer core1_0.Buffer)
	DestroyImage(image core1_0.Image)
	FreeMemory(memory core1_0.DeviceMemory)
}

// MemoryProperties exposes the memory types of a physical device
type MemoryProperties interface {
	MemoryTypeCount() int
	MemoryType(index int) core1_0.MemoryType
	// NonCoherentAtomSize is the granularity flushes of non-coherent memory must be aligned to
	NonCoherentAtomSize() int
}

// ImageCopy describes a tightly-packed copy of a whole 2D image out of a buffer
type ImageCopy struct {
	BufferOffset int
	Size         int
	Width        int
	Height       int
}

// CommandRecorder records transfer commands into a command buffer
type CommandRecorder interface {
	CmdCopyBuffer(src core1_0.Buffer, dst core1_0.Buffer, regions []core1_0.BufferCopy) error
	// CmdCopyBufferToImage copies into dst, leaving it ready to be sampled from shaders
	CmdCopyBufferToImage(src core1_0.Buffer, dst core1_0.Image, region ImageCopy) error
}

// Transferer submits transfer work to a queue. SubmitTransfer must not return until the recorded
// commands have finished executing on the device.
type Transferer interface {
	SubmitTransfer(record func(recorder CommandRecorder) error) error
}

// FindMemoryType returns the subset of candidates that are permitted by typeBits and whose property
// flags include every flag in requiredFlags. Candidate order is preserved.
func FindMemoryType(properties MemoryProperties, typeBits uint32, requiredFlags core1_0.MemoryPropertyFlags, candidates []int) []int {
	var found []int
	for _, memTypeIndex := range candidates {
		if memTypeIndex < 0 || memTypeIndex >= properties.MemoryTypeCount() {
			continue
		}

		if typeBits&(1<<memTypeIndex) == 0 {
			// This memory type is banned by the bitmask
			continue
		}

		flags := properties.MemoryType(memTypeIndex).PropertyFlags
		if flags&requiredFlags != requiredFlags {
			// This memory type is missing required flags
			continue
		}

		found = append(found, memTypeIndex)
	}

	return found
}
