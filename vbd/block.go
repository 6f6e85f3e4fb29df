package vbd

import (
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Block is a resource handed out by a Distributor. Blocks are plain handles: they are destroyed by
// the Repository that owns them and never by the caller.
type Block interface {
	Kind() BlockKind
	// Size is the number of bytes of data the block holds. Uploads may not write past it.
	Size() int
	// Capacity is the number of bytes the block occupies in device memory
	Capacity() int
	// Offset is the position of the block within its repository's device memory
	Offset() int
	// RepositoryIndex is the registration order of the block within its repository
	RepositoryIndex() int

	arenaID() uuid.UUID
}

type resourceObject struct {
	info         BlockInfo
	buffer       core1_0.Buffer
	image        core1_0.Image
	requirements core1_0.MemoryRequirements
	offset       int
	padded       int
}

func (o *resourceObject) destroy(device Device) {
	if o.buffer != nil {
		device.DestroyBuffer(o.buffer)
		o.buffer = nil
	}
	if o.image != nil {
		device.DestroyImage(o.image)
		o.image = nil
	}
}

type blockData struct {
	kind     BlockKind
	arena    uuid.UUID
	index    int
	size     int
	capacity int
	offset   int
}

func newBlockData(arena uuid.UUID, index int, object *resourceObject) blockData {
	return blockData{
		kind:     object.info.Kind(),
		arena:    arena,
		index:    index,
		size:     object.info.Size(),
		capacity: object.padded,
		offset:   object.offset,
	}
}

func (b *blockData) Kind() BlockKind      { return b.kind }
func (b *blockData) Size() int            { return b.size }
func (b *blockData) Capacity() int        { return b.capacity }
func (b *blockData) Offset() int          { return b.offset }
func (b *blockData) RepositoryIndex() int { return b.index }
func (b *blockData) arenaID() uuid.UUID   { return b.arena }

// VertexBlock is a vertex buffer
type VertexBlock struct {
	blockData
	buffer core1_0.Buffer
	stride int
	count  int
}

func (b *VertexBlock) Buffer() core1_0.Buffer { return b.buffer }
func (b *VertexBlock) Stride() int            { return b.stride }
func (b *VertexBlock) VertexCount() int       { return b.count }

// IndexBlock is an index buffer
type IndexBlock struct {
	blockData
	buffer    core1_0.Buffer
	indexType IndexType
	count     int
}

func (b *IndexBlock) Buffer() core1_0.Buffer { return b.buffer }
func (b *IndexBlock) IndexType() IndexType   { return b.indexType }
func (b *IndexBlock) IndexCount() int        { return b.count }

// UniformBlock is a uniform buffer
type UniformBlock struct {
	blockData
	buffer core1_0.Buffer
}

func (b *UniformBlock) Buffer() core1_0.Buffer { return b.buffer }

// ImageSrcBlock is a 2D image that is sampled from shaders
type ImageSrcBlock struct {
	blockData
	image  core1_0.Image
	format core1_0.Format
	width  int
	height int
}

func (b *ImageSrcBlock) Image() core1_0.Image    { return b.image }
func (b *ImageSrcBlock) Format() core1_0.Format  { return b.format }
func (b *ImageSrcBlock) Extent() core1_0.Extent2D {
	return core1_0.Extent2D{Width: b.width, Height: b.height}
}
