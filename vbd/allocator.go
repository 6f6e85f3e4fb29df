package vbd

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/memutils"
	"golang.org/x/exp/slog"
)

// BlockIndex identifies a block registered with an Allocator. It is only meaningful to the
// Distributor produced by that same Allocator.
type BlockIndex struct {
	arena    uuid.UUID
	position int
}

// Position is the registration order of the block within its allocator
func (i BlockIndex) Position() int { return i.position }

// Allocator gathers block infos and creates every resource they describe inside a single device
// memory allocation of one MemoryKind. An Allocator allocates exactly once.
type Allocator struct {
	logger     *slog.Logger
	arena      uuid.UUID
	device     Device
	properties MemoryProperties
	transfer   Transferer
	kind       MemoryKind
	selector   *MemorySelector

	createFlags        CreateFlags
	sharingMode        core1_0.SharingMode
	queueFamilyIndices []int
	callbacks          *memoryCallbacks

	spaces    []int
	infos     []BlockInfo
	allocated bool
}

// Kind is the memory kind every block of this allocator is placed in
func (a *Allocator) Kind() MemoryKind { return a.kind }

// BlockCount is the number of blocks registered so far
func (a *Allocator) BlockCount() int { return len(a.infos) }

// AddAllocate registers a block to be created by Allocate. Blocks are laid out in memory in the
// order they are registered.
func (a *Allocator) AddAllocate(info BlockInfo) (BlockIndex, error) {
	if a.allocated {
		return BlockIndex{}, errors.WithStack(ErrAlreadyAllocated)
	}

	err := info.validate(a.kind)
	if err != nil {
		return BlockIndex{}, err
	}

	index := BlockIndex{arena: a.arena, position: len(a.infos)}
	a.spaces = append(a.spaces, info.Size())
	a.infos = append(a.infos, info)

	a.logger.Debug("Allocator::AddAllocate",
		slog.Int("Position", index.position),
		slog.String("BlockKind", info.Kind().String()),
		slog.Int("Size", info.Size()),
	)

	return index, nil
}

// Allocate creates a buffer or image for every registered block, selects a memory type that can hold
// all of them, allocates a single region of device memory and binds every object into it. Host-visible
// memory kinds are also mapped. If anything fails, every object created so far is destroyed and the
// memory is freed before the error is returned.
func (a *Allocator) Allocate() (*Distributor, error) {
	a.logger.Debug("Allocator::Allocate", slog.Int("BlockCount", len(a.infos)))

	if a.allocated {
		return nil, errors.WithStack(ErrAlreadyAllocated)
	}
	if len(a.infos) == 0 {
		return nil, errors.WithStack(ErrNoBlocks)
	}

	a.selector.Reset()
	alloc := &pendingAllocation{
		objects: make([]resourceObject, 0, len(a.infos)),
	}

	err := a.allocateObjects(alloc)
	if err != nil {
		a.logger.Debug("    Allocator::Allocate FAILED", slog.Any("error", err))
		alloc.release(a.device, a.kind, a.callbacks)
		return nil, err
	}

	a.allocated = true
	a.logger.Debug("    Allocator::Allocate SUCCESS",
		slog.Int("MemoryTypeIndex", alloc.memoryTypeIndex),
		slog.Int("Size", alloc.size),
	)

	return &Distributor{
		logger:          a.logger,
		arena:           a.arena,
		device:          a.device,
		properties:      a.properties,
		transfer:        a.transfer,
		kind:            a.kind,
		createFlags:     a.createFlags,
		callbacks:       a.callbacks,
		memory:          alloc.memory,
		memoryTypeIndex: alloc.memoryTypeIndex,
		memorySize:      alloc.size,
		mapped:          alloc.mapped,
		objects:         alloc.objects,
	}, nil
}

type pendingAllocation struct {
	objects         []resourceObject
	memory          core1_0.DeviceMemory
	memoryTypeIndex int
	size            int
	mapped          unsafe.Pointer
}

func (p *pendingAllocation) release(device Device, kind MemoryKind, callbacks *memoryCallbacks) {
	for i := range p.objects {
		p.objects[i].destroy(device)
	}
	p.objects = nil

	if p.mapped != nil {
		device.UnmapMemory(p.memory)
		p.mapped = nil
	}

	if p.memory != nil {
		callbacks.Free(kind, p.memoryTypeIndex, p.memory, p.size)
		device.FreeMemory(p.memory)
		p.memory = nil
	}
}

func (a *Allocator) allocateObjects(alloc *pendingAllocation) error {
	for position, info := range a.infos {
		object, err := a.createObject(position, info)
		if err != nil {
			return err
		}
		alloc.objects = append(alloc.objects, object)

		err = a.selector.Try(object.requirements.MemoryTypeBits, info.RequiredFlags())
		if err != nil {
			return errors.Wrapf(err, "block %d (%s)", position, info.Kind())
		}
	}

	var err error
	alloc.size, err = layoutObjects(alloc.objects)
	if err != nil {
		return err
	}

	for position, space := range a.spaces {
		if space > alloc.objects[position].padded {
			return errors.Wrapf(ErrInvalidBlockSize, "block %d (%s) needs %d bytes but the driver reserves %d",
				position, a.infos[position].Kind(), space, alloc.objects[position].padded)
		}
	}

	alloc.memoryTypeIndex, err = a.selector.OptimalMemory()
	if err != nil {
		return err
	}

	memory, _, err := a.device.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  alloc.size,
		MemoryTypeIndex: alloc.memoryTypeIndex,
	})
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "%s: %d bytes from memory type %d", ErrAllocateMemory, alloc.size, alloc.memoryTypeIndex),
			ErrAllocateMemory,
		)
	}
	alloc.memory = memory
	a.callbacks.Allocate(a.kind, alloc.memoryTypeIndex, memory, alloc.size)

	err = bindObjects(a.device, memory, alloc.objects)
	if err != nil {
		return err
	}

	if a.kind.IsHostVisible() && a.createFlags&CreateDeferredMapping == 0 {
		alloc.mapped, err = mapWholeMemory(a.device, memory, alloc.size)
		if err != nil {
			return err
		}
	}

	if a.createFlags&CreateValidateLayout != 0 || memutils.DebugEnabled {
		err = validateLayout(alloc.objects, alloc.size)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *Allocator) createObject(position int, info BlockInfo) (resourceObject, error) {
	object := resourceObject{info: info}

	if info.Kind().IsImage() {
		image, _, err := a.device.CreateImage(info.imageCreateInfo(a.kind, a.sharingMode, a.queueFamilyIndices))
		if err != nil {
			return object, errors.Mark(
				errors.Wrapf(err, "%s: block %d (%s)", ErrImageCreation, position, info.Kind()),
				ErrImageCreation,
			)
		}

		object.image = image
		object.requirements = a.device.ImageMemoryRequirements(image)
		return object, nil
	}

	buffer, _, err := a.device.CreateBuffer(info.bufferCreateInfo(a.kind, a.sharingMode, a.queueFamilyIndices))
	if err != nil {
		return object, errors.Mark(
			errors.Wrapf(err, "%s: block %d (%s)", ErrBufferCreation, position, info.Kind()),
			ErrBufferCreation,
		)
	}

	object.buffer = buffer
	object.requirements = a.device.BufferMemoryRequirements(buffer)
	return object, nil
}

// layoutObjects places every object in registration order. Each object occupies
// memutils.BindToAlignment(size, alignment) bytes and starts at the running total, raised to its
// alignment when the total is not already aligned. The total allocation size is returned.
func layoutObjects(objects []resourceObject) (int, error) {
	running := 0
	for i := range objects {
		requirements := objects[i].requirements
		err := memutils.CheckAlignment(requirements.Alignment, "MemoryRequirements.Alignment")
		if err != nil {
			return 0, errors.Wrapf(err, "block %d", i)
		}

		objects[i].padded = memutils.BindToAlignment(requirements.Size, requirements.Alignment)
		objects[i].offset = memutils.AlignUpAny(running, requirements.Alignment)
		running = objects[i].offset + objects[i].padded
	}

	return running, nil
}

func bindObjects(device Device, memory core1_0.DeviceMemory, objects []resourceObject) error {
	var buffers []BufferBinding
	var images []ImageBinding

	for _, object := range objects {
		if object.image != nil {
			images = append(images, ImageBinding{Image: object.image, Memory: memory, Offset: object.offset})
		} else {
			buffers = append(buffers, BufferBinding{Buffer: object.buffer, Memory: memory, Offset: object.offset})
		}
	}

	if len(buffers) > 0 {
		_, err := device.BindBufferMemory(buffers)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s: %d buffers", ErrBindMemory, len(buffers)), ErrBindMemory)
		}
	}

	if len(images) > 0 {
		_, err := device.BindImageMemory(images)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s: %d images", ErrBindMemory, len(images)), ErrBindMemory)
		}
	}

	return nil
}

func mapWholeMemory(device Device, memory core1_0.DeviceMemory, size int) (unsafe.Pointer, error) {
	ptr, _, err := device.MapMemory(memory, 0, size)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: %d bytes", ErrMapMemory, size), ErrMapMemory)
	}
	if ptr == nil {
		return nil, errors.Wrapf(ErrMapMemory, "device returned a nil pointer for %d bytes", size)
	}

	return ptr, nil
}
