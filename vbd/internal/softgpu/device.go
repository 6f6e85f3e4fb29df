// Package softgpu is a device that keeps all memory in host byte slices. It implements the device,
// memory property and transfer interfaces of vbd so data paths can be verified without a GPU.
package softgpu

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd"
)

const (
	defaultBufferAlignment = 16
	defaultImageAlignment  = 256
	defaultTexelSize       = 4
)

// Options describes the simulated physical device
type Options struct {
	MemoryTypes         []core1_0.MemoryType
	NonCoherentAtomSize int

	// BufferAlignment and ImageAlignment are reported in memory requirements. They default to 16 and 256.
	BufferAlignment int
	ImageAlignment  int
	// TexelSize is the number of bytes per texel of every image. It defaults to 4.
	TexelSize int

	// BufferTypeBits and ImageTypeBits restrict the memory types resources may be bound to. Zero
	// allows every memory type.
	BufferTypeBits uint32
	ImageTypeBits  uint32
}

// Operation names a device entry point that can be made to fail with InjectFailure
type Operation int

const (
	OpCreateBuffer Operation = iota
	OpCreateImage
	OpAllocateMemory
	OpBindMemory
	OpMapMemory
	OpFlush
	OpSubmit
)

type injectedFailure struct {
	remaining int
	result    common.VkResult
}

// Buffer is a buffer created by a software device
type Buffer struct {
	core1_0.Buffer
	id     int
	size   int
	usage  core1_0.BufferUsageFlags
	memory *Memory
	offset int
}

func (b *Buffer) ID() int                        { return b.id }
func (b *Buffer) Usage() core1_0.BufferUsageFlags { return b.usage }

// Image is an image created by a software device
type Image struct {
	core1_0.Image
	id     int
	width  int
	height int
	size   int
	usage  core1_0.ImageUsageFlags
	format core1_0.Format
	memory *Memory
	offset int
}

func (i *Image) ID() int                       { return i.id }
func (i *Image) Usage() core1_0.ImageUsageFlags { return i.usage }

// Memory is device memory allocated by a software device
type Memory struct {
	core1_0.DeviceMemory
	id        int
	typeIndex int
	data      []byte
	mapped    bool
}

func (m *Memory) ID() int        { return m.id }
func (m *Memory) TypeIndex() int { return m.typeIndex }
func (m *Memory) IsMapped() bool { return m.mapped }

// Device is a software implementation of vbd.Device, vbd.MemoryProperties and vbd.Transferer
type Device struct {
	options Options
	nextID  int

	buffers  map[*Buffer]struct{}
	images   map[*Image]struct{}
	memories map[*Memory]struct{}

	failures   map[Operation]*injectedFailure
	flushes    [][]core1_0.MappedMemoryRange
	submits    int
	violations []error
}

var _ vbd.Device = &Device{}
var _ vbd.MemoryProperties = &Device{}
var _ vbd.Transferer = &Device{}

// New creates a software device with the provided memory types and limits
func New(options Options) *Device {
	if options.BufferAlignment == 0 {
		options.BufferAlignment = defaultBufferAlignment
	}
	if options.ImageAlignment == 0 {
		options.ImageAlignment = defaultImageAlignment
	}
	if options.TexelSize == 0 {
		options.TexelSize = defaultTexelSize
	}
	if options.NonCoherentAtomSize == 0 {
		options.NonCoherentAtomSize = 1
	}
	allTypes := uint32(1)<<len(options.MemoryTypes) - 1
	if options.BufferTypeBits == 0 {
		options.BufferTypeBits = allTypes
	}
	if options.ImageTypeBits == 0 {
		options.ImageTypeBits = allTypes
	}

	return &Device{
		options:  options,
		buffers:  make(map[*Buffer]struct{}),
		images:   make(map[*Image]struct{}),
		memories: make(map[*Memory]struct{}),
		failures: make(map[Operation]*injectedFailure),
	}
}

// InjectFailure makes the call to op that follows the next `after` successful calls fail with result
func (d *Device) InjectFailure(op Operation, after int, result common.VkResult) {
	d.failures[op] = &injectedFailure{remaining: after, result: result}
}

func (d *Device) checkFailure(op Operation) (common.VkResult, error) {
	failure, ok := d.failures[op]
	if !ok {
		return core1_0.VKSuccess, nil
	}

	if failure.remaining > 0 {
		failure.remaining--
		return core1_0.VKSuccess, nil
	}

	delete(d.failures, op)
	return failure.result, failure.result.ToError()
}

func (d *Device) violation(err error) {
	d.violations = append(d.violations, err)
}

func (d *Device) id() int {
	d.nextID++
	return d.nextID
}

func (d *Device) MemoryTypeCount() int { return len(d.options.MemoryTypes) }
func (d *Device) MemoryType(index int) core1_0.MemoryType {
	return d.options.MemoryTypes[index]
}
func (d *Device) NonCoherentAtomSize() int { return d.options.NonCoherentAtomSize }

func (d *Device) CreateBuffer(createInfo core1_0.BufferCreateInfo) (core1_0.Buffer, common.VkResult, error) {
	res, err := d.checkFailure(OpCreateBuffer)
	if err != nil {
		return nil, res, err
	}
	if createInfo.Size <= 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("buffer size must be positive, was %d", createInfo.Size)
	}

	buffer := &Buffer{id: d.id(), size: createInfo.Size, usage: createInfo.Usage}
	d.buffers[buffer] = struct{}{}
	return buffer, core1_0.VKSuccess, nil
}

func (d *Device) CreateImage(createInfo core1_0.ImageCreateInfo) (core1_0.Image, common.VkResult, error) {
	res, err := d.checkFailure(OpCreateImage)
	if err != nil {
		return nil, res, err
	}
	if createInfo.Extent.Width <= 0 || createInfo.Extent.Height <= 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("image extent %dx%d is invalid", createInfo.Extent.Width, createInfo.Extent.Height)
	}

	image := &Image{
		id:     d.id(),
		width:  createInfo.Extent.Width,
		height: createInfo.Extent.Height,
		size:   createInfo.Extent.Width * createInfo.Extent.Height * d.options.TexelSize,
		usage:  createInfo.Usage,
		format: createInfo.Format,
	}
	d.images[image] = struct{}{}
	return image, core1_0.VKSuccess, nil
}

func (d *Device) BufferMemoryRequirements(buffer core1_0.Buffer) core1_0.MemoryRequirements {
	softBuffer := buffer.(*Buffer)
	return core1_0.MemoryRequirements{
		Size:           softBuffer.size,
		Alignment:      d.options.BufferAlignment,
		MemoryTypeBits: d.options.BufferTypeBits,
	}
}

func (d *Device) ImageMemoryRequirements(image core1_0.Image) core1_0.MemoryRequirements {
	softImage := image.(*Image)
	return core1_0.MemoryRequirements{
		Size:           softImage.size,
		Alignment:      d.options.ImageAlignment,
		MemoryTypeBits: d.options.ImageTypeBits,
	}
}

func (d *Device) AllocateMemory(allocateInfo core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
	res, err := d.checkFailure(OpAllocateMemory)
	if err != nil {
		return nil, res, err
	}
	if allocateInfo.MemoryTypeIndex < 0 || allocateInfo.MemoryTypeIndex >= len(d.options.MemoryTypes) {
		return nil, core1_0.VKErrorUnknown, errors.Newf("memory type %d does not exist", allocateInfo.MemoryTypeIndex)
	}
	if allocateInfo.AllocationSize <= 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("allocation size must be positive, was %d", allocateInfo.AllocationSize)
	}

	memory := &Memory{
		id:        d.id(),
		typeIndex: allocateInfo.MemoryTypeIndex,
		data:      make([]byte, allocateInfo.AllocationSize),
	}
	d.memories[memory] = struct{}{}
	return memory, core1_0.VKSuccess, nil
}

func (d *Device) checkBinding(memory core1_0.DeviceMemory, offset, size, alignment int, typeBits uint32) (*Memory, error) {
	softMemory, ok := memory.(*Memory)
	if !ok {
		return nil, errors.New("memory was not allocated by this device")
	}
	if _, live := d.memories[softMemory]; !live {
		return nil, errors.Newf("memory %d has been freed", softMemory.id)
	}
	if offset%alignment != 0 {
		return nil, errors.Newf("offset %d is not aligned to %d", offset, alignment)
	}
	if offset < 0 || offset+size > len(softMemory.data) {
		return nil, errors.Newf("range %d-%d exceeds %d bytes of memory", offset, offset+size, len(softMemory.data))
	}
	if typeBits&(1<<softMemory.typeIndex) == 0 {
		return nil, errors.Newf("memory type %d is not allowed by type bits %#x", softMemory.typeIndex, typeBits)
	}

	return softMemory, nil
}

func (d *Device) BindBufferMemory(bindings []vbd.BufferBinding) (common.VkResult, error) {
	res, err := d.checkFailure(OpBindMemory)
	if err != nil {
		return res, err
	}

	for _, binding := range bindings {
		buffer := binding.Buffer.(*Buffer)
		if buffer.memory != nil {
			return core1_0.VKErrorUnknown, errors.Newf("buffer %d is already bound", buffer.id)
		}

		memory, err := d.checkBinding(binding.Memory, binding.Offset, buffer.size, d.options.BufferAlignment, d.options.BufferTypeBits)
		if err != nil {
			return core1_0.VKErrorUnknown, errors.Wrapf(err, "binding buffer %d", buffer.id)
		}

		buffer.memory = memory
		buffer.offset = binding.Offset
	}

	return core1_0.VKSuccess, nil
}

func (d *Device) BindImageMemory(bindings []vbd.ImageBinding) (common.VkResult, error) {
	res, err := d.checkFailure(OpBindMemory)
	if err != nil {
		return res, err
	}

	for _, binding := range bindings {
		image := binding.Image.(*Image)
		if image.memory != nil {
			return core1_0.VKErrorUnknown, errors.Newf("image %d is already bound", image.id)
		}

		memory, err := d.checkBinding(binding.Memory, binding.Offset, image.size, d.options.ImageAlignment, d.options.ImageTypeBits)
		if err != nil {
			return core1_0.VKErrorUnknown, errors.Wrapf(err, "binding image %d", image.id)
		}

		image.memory = memory
		image.offset = binding.Offset
	}

	return core1_0.VKSuccess, nil
}

func (d *Device) MapMemory(memory core1_0.DeviceMemory, offset, size int) (unsafe.Pointer, common.VkResult, error) {
	res, err := d.checkFailure(OpMapMemory)
	if err != nil {
		return nil, res, err
	}

	softMemory := memory.(*Memory)
	flags := d.options.MemoryTypes[softMemory.typeIndex].PropertyFlags
	if flags&core1_0.MemoryPropertyHostVisible == 0 {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("memory type %d is not host visible", softMemory.typeIndex)
	}
	if softMemory.mapped {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("memory %d is already mapped", softMemory.id)
	}
	if offset < 0 || offset+size > len(softMemory.data) {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("range %d-%d exceeds %d bytes of memory", offset, offset+size, len(softMemory.data))
	}

	softMemory.mapped = true
	return unsafe.Pointer(&softMemory.data[offset]), core1_0.VKSuccess, nil
}

func (d *Device) UnmapMemory(memory core1_0.DeviceMemory) {
	softMemory := memory.(*Memory)
	if !softMemory.mapped {
		d.violation(errors.Newf("memory %d was unmapped while not mapped", softMemory.id))
	}
	softMemory.mapped = false
}

func (d *Device) FlushMappedMemoryRanges(ranges []core1_0.MappedMemoryRange) (common.VkResult, error) {
	res, err := d.checkFailure(OpFlush)
	if err != nil {
		return res, err
	}

	atomSize := d.options.NonCoherentAtomSize
	for _, memoryRange := range ranges {
		softMemory := memoryRange.Memory.(*Memory)
		if !softMemory.mapped {
			return core1_0.VKErrorUnknown, errors.Newf("flushing memory %d while it is not mapped", softMemory.id)
		}
		end := memoryRange.Offset + memoryRange.Size
		if memoryRange.Offset%atomSize != 0 || (end%atomSize != 0 && end != len(softMemory.data)) {
			return core1_0.VKErrorUnknown, errors.Newf("range %d-%d is not aligned to the atom size %d", memoryRange.Offset, end, atomSize)
		}
		if end > len(softMemory.data) {
			return core1_0.VKErrorUnknown, errors.Newf("range %d-%d exceeds %d bytes of memory", memoryRange.Offset, end, len(softMemory.data))
		}
	}

	d.flushes = append(d.flushes, ranges)
	return core1_0.VKSuccess, nil
}

func (d *Device) DestroyBuffer(buffer core1_0.Buffer) {
	softBuffer := buffer.(*Buffer)
	if _, live := d.buffers[softBuffer]; !live {
		d.violation(errors.Newf("buffer %d destroyed twice", softBuffer.id))
		return
	}
	delete(d.buffers, softBuffer)
}

func (d *Device) DestroyImage(image core1_0.Image) {
	softImage := image.(*Image)
	if _, live := d.images[softImage]; !live {
		d.violation(errors.Newf("image %d destroyed twice", softImage.id))
		return
	}
	delete(d.images, softImage)
}

func (d *Device) FreeMemory(memory core1_0.DeviceMemory) {
	softMemory := memory.(*Memory)
	if _, live := d.memories[softMemory]; !live {
		d.violation(errors.Newf("memory %d freed twice", softMemory.id))
		return
	}
	if softMemory.mapped {
		d.violation(errors.Newf("memory %d freed while mapped", softMemory.id))
	}
	delete(d.memories, softMemory)
}

// LiveBuffers is the number of buffers that have not been destroyed
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LiveImages is the number of images that have not been destroyed
func (d *Device) LiveImages() int { return len(d.images) }

// LiveAllocations is the number of memory allocations that have not been freed
func (d *Device) LiveAllocations() int { return len(d.memories) }

// Flushes returns every set of ranges passed to FlushMappedMemoryRanges
func (d *Device) Flushes() [][]core1_0.MappedMemoryRange { return d.flushes }

// Submits is the number of transfers that were submitted
func (d *Device) Submits() int { return d.submits }

// Violations returns every misuse of the device that did not cause a call to fail, such as
// destroying an object twice
func (d *Device) Violations() []error { return d.violations }

// ReadBuffer returns a copy of the bytes backing buffer
func (d *Device) ReadBuffer(buffer core1_0.Buffer) ([]byte, error) {
	softBuffer := buffer.(*Buffer)
	if softBuffer.memory == nil {
		return nil, errors.Newf("buffer %d is not bound", softBuffer.id)
	}

	data := make([]byte, softBuffer.size)
	copy(data, softBuffer.memory.data[softBuffer.offset:softBuffer.offset+softBuffer.size])
	return data, nil
}

// ReadImage returns a copy of the bytes backing image
func (d *Device) ReadImage(image core1_0.Image) ([]byte, error) {
	softImage := image.(*Image)
	if softImage.memory == nil {
		return nil, errors.Newf("image %d is not bound", softImage.id)
	}

	data := make([]byte, softImage.size)
	copy(data, softImage.memory.data[softImage.offset:softImage.offset+softImage.size])
	return data, nil
}
