package vbd

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// UploadStagingResource is a transient host-visible, host-coherent buffer the same size as a
// repository's memory. Data destined for device-local or cached memory is written into it and then
// copied on the device.
type UploadStagingResource struct {
	logger    *slog.Logger
	device    Device
	callbacks *memoryCallbacks

	size            int
	buffer          core1_0.Buffer
	memory          core1_0.DeviceMemory
	memoryTypeIndex int
	allocationSize  int
	mapped          unsafe.Pointer
}

func newUploadStagingResource(logger *slog.Logger, device Device, properties MemoryProperties, callbacks *memoryCallbacks, size int) (*UploadStagingResource, error) {
	logger.Debug("UploadStagingResource::New", slog.Int("Size", size))

	resource := &UploadStagingResource{
		logger:    logger,
		device:    device,
		callbacks: callbacks,
		size:      size,
	}

	err := resource.create(properties)
	if err != nil {
		resource.Cleanup()
		return nil, err
	}

	return resource, nil
}

func (r *UploadStagingResource) create(properties MemoryProperties) error {
	buffer, _, err := r.device.CreateBuffer(core1_0.BufferCreateInfo{
		Size:        r.size,
		Usage:       core1_0.BufferUsageTransferSrc,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: staging buffer of %d bytes", ErrBufferCreation, r.size), ErrBufferCreation)
	}
	r.buffer = buffer

	requirements := r.device.BufferMemoryRequirements(buffer)
	selector := NewMemorySelector(properties, MemoryKindStaging.PropertyFlags())
	err = selector.Try(requirements.MemoryTypeBits, 0)
	if err != nil {
		return errors.Wrap(err, "staging buffer")
	}

	r.memoryTypeIndex, err = selector.OptimalMemory()
	if err != nil {
		return errors.Wrap(err, "staging buffer")
	}

	r.allocationSize = requirements.Size
	if r.allocationSize < r.size {
		r.allocationSize = r.size
	}

	memory, _, err := r.device.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  r.allocationSize,
		MemoryTypeIndex: r.memoryTypeIndex,
	})
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "%s: staging memory of %d bytes from memory type %d", ErrAllocateMemory, r.allocationSize, r.memoryTypeIndex),
			ErrAllocateMemory,
		)
	}
	r.memory = memory
	r.callbacks.Allocate(MemoryKindStaging, r.memoryTypeIndex, memory, r.allocationSize)

	_, err = r.device.BindBufferMemory([]BufferBinding{{Buffer: buffer, Memory: memory, Offset: 0}})
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: staging buffer", ErrBindMemory), ErrBindMemory)
	}

	r.mapped, err = mapWholeMemory(r.device, memory, r.allocationSize)
	return err
}

// Buffer is the transfer source buffer
func (r *UploadStagingResource) Buffer() core1_0.Buffer { return r.buffer }

// Cleanup unmaps and releases the staging buffer and its memory. It is safe to call more than once.
func (r *UploadStagingResource) Cleanup() {
	if r.mapped != nil {
		r.device.UnmapMemory(r.memory)
		r.mapped = nil
	}

	if r.buffer != nil {
		r.device.DestroyBuffer(r.buffer)
		r.buffer = nil
	}

	if r.memory != nil {
		r.callbacks.Free(MemoryKindStaging, r.memoryTypeIndex, r.memory, r.allocationSize)
		r.device.FreeMemory(r.memory)
		r.memory = nil
	}
}
