package vbd

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/memutils"
	"golang.org/x/exp/slog"
)

// Distributor hands out typed blocks for the BlockIndex values returned by Allocator.AddAllocate.
// Once every block has been acquired, IntoRepository transfers ownership of the memory and
// objects to a Repository.
type Distributor struct {
	logger      *slog.Logger
	arena       uuid.UUID
	device      Device
	properties  MemoryProperties
	transfer    Transferer
	kind        MemoryKind
	createFlags CreateFlags
	callbacks   *memoryCallbacks

	memory          core1_0.DeviceMemory
	memoryTypeIndex int
	memorySize      int
	mapped          unsafe.Pointer
	objects         []resourceObject

	consumed bool
}

func (d *Distributor) acquire(index BlockIndex, kind BlockKind) (*resourceObject, error) {
	if d.consumed {
		return nil, errors.WithStack(ErrDistributorConsumed)
	}
	if index.arena != d.arena {
		return nil, errors.Wrapf(ErrForeignBlockIndex, "index %d from arena %s", index.position, index.arena)
	}
	if index.position < 0 || index.position >= len(d.objects) {
		return nil, errors.Wrapf(ErrBlockIndexRange, "index %d of %d blocks", index.position, len(d.objects))
	}

	object := &d.objects[index.position]
	if object.info.Kind() != kind {
		return nil, errors.Wrapf(ErrBlockKindMismatch, "index %d is a %s block, not %s", index.position, object.info.Kind(), kind)
	}

	return object, nil
}

// AcquireVertex returns the vertex block registered at index
func (d *Distributor) AcquireVertex(index BlockIndex) (*VertexBlock, error) {
	object, err := d.acquire(index, BlockKindVertex)
	if err != nil {
		return nil, err
	}

	return &VertexBlock{
		blockData: newBlockData(d.arena, index.position, object),
		buffer:    object.buffer,
		stride:    object.info.stride,
		count:     object.info.count,
	}, nil
}

// AcquireIndex returns the index block registered at index
func (d *Distributor) AcquireIndex(index BlockIndex) (*IndexBlock, error) {
	object, err := d.acquire(index, BlockKindIndex)
	if err != nil {
		return nil, err
	}

	return &IndexBlock{
		blockData: newBlockData(d.arena, index.position, object),
		buffer:    object.buffer,
		indexType: object.info.indexType,
		count:     object.info.count,
	}, nil
}

// AcquireUniform returns the uniform block registered at index
func (d *Distributor) AcquireUniform(index BlockIndex) (*UniformBlock, error) {
	object, err := d.acquire(index, BlockKindUniform)
	if err != nil {
		return nil, err
	}

	return &UniformBlock{
		blockData: newBlockData(d.arena, index.position, object),
		buffer:    object.buffer,
	}, nil
}

// AcquireImageSrc returns the image block registered at index
func (d *Distributor) AcquireImageSrc(index BlockIndex) (*ImageSrcBlock, error) {
	object, err := d.acquire(index, BlockKindImageSrc)
	if err != nil {
		return nil, err
	}

	return &ImageSrcBlock{
		blockData: newBlockData(d.arena, index.position, object),
		image:     object.image,
		format:    object.info.format,
		width:     object.info.width,
		height:    object.info.height,
	}, nil
}

// IntoRepository transfers ownership of the device memory and every object to a new Repository. The
// distributor cannot be used afterward.
func (d *Distributor) IntoRepository() (*Repository, error) {
	if d.consumed {
		return nil, errors.WithStack(ErrDistributorConsumed)
	}
	d.consumed = true

	repository := &Repository{
		logger:          d.logger,
		arena:           d.arena,
		device:          d.device,
		properties:      d.properties,
		transfer:        d.transfer,
		kind:            d.kind,
		createFlags:     d.createFlags,
		callbacks:       d.callbacks,
		memory:          d.memory,
		memoryTypeIndex: d.memoryTypeIndex,
		memorySize:      d.memorySize,
		mapped:          d.mapped,
		objects:         d.objects,
	}

	d.memory = nil
	d.mapped = nil
	d.objects = nil

	memutils.DebugValidate(repository)

	d.logger.Debug("Distributor::IntoRepository", slog.Int("ObjectCount", len(repository.objects)))
	return repository, nil
}
