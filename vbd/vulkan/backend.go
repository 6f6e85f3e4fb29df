// Package vulkan adapts a vkngwrapper device, physical device and queue to the interfaces used by vbd
package vulkan

import (
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/gensokyo/memutils"
	"github.com/vkngwrapper/gensokyo/vbd"
	"golang.org/x/exp/slog"
)

const defaultFenceTimeout = 10 * time.Second

// BackendOptions configures a Backend
type BackendOptions struct {
	// AllocationCallbacks are passed to every object creation and destruction call
	AllocationCallbacks *driver.AllocationCallbacks
	// QueueFamilyIndex is the family of the queue transfers are submitted to
	QueueFamilyIndex int
	// FenceTimeout bounds the wait for a submitted transfer. It defaults to 10 seconds.
	FenceTimeout time.Duration
}

// Backend implements vbd.Device, vbd.MemoryProperties and vbd.Transferer for a single logical device.
// Close must be called before the device is destroyed.
type Backend struct {
	logger              *slog.Logger
	device              core1_0.Device
	queue               core1_0.Queue
	allocationCallbacks *driver.AllocationCallbacks
	queueFamilyIndex    int
	fenceTimeout        time.Duration
	extensionData       *ExtensionData

	deviceProperties *core1_0.PhysicalDeviceProperties
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties

	commandPool core1_0.CommandPool
}

var _ vbd.Device = &Backend{}
var _ vbd.MemoryProperties = &Backend{}
var _ vbd.Transferer = &Backend{}

// NewBackend reads the memory layout of physicalDevice and prepares to create objects on device.
// queue may be nil when no staged memory kinds will be used.
func NewBackend(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, queue core1_0.Queue, options BackendOptions) (*Backend, error) {
	if logger == nil {
		return nil, errors.New("attempted to create a vulkan backend without a logger")
	}
	if physicalDevice == nil || device == nil {
		return nil, errors.New("attempted to create a vulkan backend without a device")
	}

	deviceProperties, err := physicalDevice.Properties()
	if err != nil {
		return nil, errors.Wrap(err, "reading physical device properties")
	}
	if deviceProperties.Limits == nil {
		return nil, errors.New("physical device reported no limits")
	}
	err = memutils.CheckPow2(deviceProperties.Limits.NonCoherentAtomSize, "device nonCoherentAtomSize")
	if err != nil {
		return nil, err
	}

	fenceTimeout := options.FenceTimeout
	if fenceTimeout <= 0 {
		fenceTimeout = defaultFenceTimeout
	}

	backend := &Backend{
		logger:              logger,
		device:              device,
		queue:               queue,
		allocationCallbacks: options.AllocationCallbacks,
		queueFamilyIndex:    options.QueueFamilyIndex,
		fenceTimeout:        fenceTimeout,
		extensionData:       NewExtensionData(device),
		deviceProperties:    deviceProperties,
		memoryProperties:    physicalDevice.MemoryProperties(),
	}

	logger.Debug("Backend::New",
		slog.Int("MemoryTypeCount", backend.MemoryTypeCount()),
		slog.Int("NonCoherentAtomSize", backend.NonCoherentAtomSize()),
		slog.Bool("BindMemory2", backend.extensionData.BindMemory2 != nil),
	)

	return backend, nil
}

func (b *Backend) MemoryTypeCount() int {
	return len(b.memoryProperties.MemoryTypes)
}

func (b *Backend) MemoryType(index int) core1_0.MemoryType {
	return b.memoryProperties.MemoryTypes[index]
}

func (b *Backend) NonCoherentAtomSize() int {
	return b.deviceProperties.Limits.NonCoherentAtomSize
}

func (b *Backend) CreateBuffer(createInfo core1_0.BufferCreateInfo) (core1_0.Buffer, common.VkResult, error) {
	return b.device.CreateBuffer(b.allocationCallbacks, createInfo)
}

func (b *Backend) CreateImage(createInfo core1_0.ImageCreateInfo) (core1_0.Image, common.VkResult, error) {
	return b.device.CreateImage(b.allocationCallbacks, createInfo)
}

func (b *Backend) BufferMemoryRequirements(buffer core1_0.Buffer) core1_0.MemoryRequirements {
	return *buffer.MemoryRequirements()
}

func (b *Backend) ImageMemoryRequirements(image core1_0.Image) core1_0.MemoryRequirements {
	return *image.MemoryRequirements()
}

func (b *Backend) AllocateMemory(allocateInfo core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
	return b.device.AllocateMemory(b.allocationCallbacks, allocateInfo)
}

func (b *Backend) BindBufferMemory(bindings []vbd.BufferBinding) (common.VkResult, error) {
	if len(bindings) > 1 && b.extensionData.BindMemory2 != nil {
		infos := make([]core1_1.BindBufferMemoryInfo, 0, len(bindings))
		for _, binding := range bindings {
			infos = append(infos, core1_1.BindBufferMemoryInfo{
				Buffer:       binding.Buffer,
				Memory:       binding.Memory,
				MemoryOffset: binding.Offset,
			})
		}

		return b.extensionData.BindMemory2.BindBufferMemory2(infos)
	}

	for index, binding := range bindings {
		res, err := binding.Buffer.BindBufferMemory(binding.Memory, binding.Offset)
		if err != nil {
			return res, errors.Wrapf(err, "binding buffer %d of %d", index, len(bindings))
		}
	}

	return core1_0.VKSuccess, nil
}

func (b *Backend) BindImageMemory(bindings []vbd.ImageBinding) (common.VkResult, error) {
	if len(bindings) > 1 && b.extensionData.BindMemory2 != nil {
		infos := make([]core1_1.BindImageMemoryInfo, 0, len(bindings))
		for _, binding := range bindings {
			infos = append(infos, core1_1.BindImageMemoryInfo{
				Image:        binding.Image,
				Memory:       binding.Memory,
				MemoryOffset: uint64(binding.Offset),
			})
		}

		return b.extensionData.BindMemory2.BindImageMemory2(infos)
	}

	for index, binding := range bindings {
		res, err := binding.Image.BindImageMemory(binding.Memory, binding.Offset)
		if err != nil {
			return res, errors.Wrapf(err, "binding image %d of %d", index, len(bindings))
		}
	}

	return core1_0.VKSuccess, nil
}

func (b *Backend) MapMemory(memory core1_0.DeviceMemory, offset, size int) (unsafe.Pointer, common.VkResult, error) {
	return memory.Map(offset, size, 0)
}

func (b *Backend) UnmapMemory(memory core1_0.DeviceMemory) {
	memory.Unmap()
}

func (b *Backend) FlushMappedMemoryRanges(ranges []core1_0.MappedMemoryRange) (common.VkResult, error) {
	if len(ranges) == 0 {
		return core1_0.VKSuccess, nil
	}

	return b.device.FlushMappedMemoryRanges(ranges)
}

func (b *Backend) DestroyBuffer(buffer core1_0.Buffer) {
	buffer.Destroy(b.allocationCallbacks)
}

func (b *Backend) DestroyImage(image core1_0.Image) {
	image.Destroy(b.allocationCallbacks)
}

func (b *Backend) FreeMemory(memory core1_0.DeviceMemory) {
	memory.Free(b.allocationCallbacks)
}

// Close destroys the command pool used for transfers. Any repository still holding objects from this
// backend must be cleaned up first.
func (b *Backend) Close() error {
	if b.commandPool != nil {
		b.commandPool.Destroy(b.allocationCallbacks)
		b.commandPool = nil
	}

	return nil
}
