package vbd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// IndexType is the width of the elements held by an index block
type IndexType byte

const (
	IndexTypeUint16 IndexType = iota + 1
	IndexTypeUint32
)

var indexTypeMapping = map[IndexType]string{
	IndexTypeUint16: "IndexTypeUint16",
	IndexTypeUint32: "IndexTypeUint32",
}

func (t IndexType) String() string {
	str, ok := indexTypeMapping[t]
	if !ok {
		return fmt.Sprintf("IndexType(%d)", byte(t))
	}
	return str
}

// Size is the number of bytes occupied by a single index
func (t IndexType) Size() int {
	switch t {
	case IndexTypeUint16:
		return 2
	case IndexTypeUint32:
		return 4
	}

	return 0
}

// BlockInfo describes a single resource to be allocated by an Allocator. Build one with
// VertexBlockInfo, IndexBlockInfo, UniformBlockInfo or ImageSrcBlockInfo.
type BlockInfo struct {
	kind          BlockKind
	requiredFlags core1_0.MemoryPropertyFlags

	// Buffer blocks
	stride    int
	count     int
	indexType IndexType

	// Image blocks
	width         int
	height        int
	format        core1_0.Format
	bytesPerPixel int
}

// VertexBlockInfo describes a vertex buffer holding count vertices of stride bytes each
func VertexBlockInfo(stride, count int) BlockInfo {
	return BlockInfo{kind: BlockKindVertex, stride: stride, count: count}
}

// IndexBlockInfo describes an index buffer holding count indices
func IndexBlockInfo(indexType IndexType, count int) BlockInfo {
	return BlockInfo{kind: BlockKindIndex, indexType: indexType, stride: indexType.Size(), count: count}
}

// UniformBlockInfo describes a uniform buffer of size bytes
func UniformBlockInfo(size int) BlockInfo {
	return BlockInfo{kind: BlockKindUniform, stride: size, count: 1}
}

// ImageSrcBlockInfo describes a single-mip 2D image sampled from shaders, populated from
// tightly-packed pixel data of bytesPerPixel bytes per texel
func ImageSrcBlockInfo(width, height int, format core1_0.Format, bytesPerPixel int) BlockInfo {
	return BlockInfo{
		kind:          BlockKindImageSrc,
		width:         width,
		height:        height,
		format:        format,
		bytesPerPixel: bytesPerPixel,
	}
}

// WithRequiredFlags returns a copy of this info that additionally requires the provided memory
// property flags from whichever memory type is selected
func (i BlockInfo) WithRequiredFlags(flags core1_0.MemoryPropertyFlags) BlockInfo {
	i.requiredFlags |= flags
	return i
}

func (i BlockInfo) Kind() BlockKind                            { return i.kind }
func (i BlockInfo) RequiredFlags() core1_0.MemoryPropertyFlags { return i.requiredFlags }

// Size is the number of bytes of data the block holds
func (i BlockInfo) Size() int {
	if i.kind.IsImage() {
		return i.width * i.height * i.bytesPerPixel
	}

	return i.stride * i.count
}

// BufferUsage is the usage the block's buffer is created with, before the memory kind adds its own
// transfer usage. Image blocks return 0.
func (i BlockInfo) BufferUsage() core1_0.BufferUsageFlags {
	switch i.kind {
	case BlockKindVertex:
		return core1_0.BufferUsageVertexBuffer
	case BlockKindIndex:
		return core1_0.BufferUsageIndexBuffer
	case BlockKindUniform:
		return core1_0.BufferUsageUniformBuffer
	}

	return 0
}

// ImageUsage is the usage the block's image is created with, before the memory kind adds its own
// transfer usage. Buffer blocks return 0.
func (i BlockInfo) ImageUsage() core1_0.ImageUsageFlags {
	if i.kind.IsImage() {
		return core1_0.ImageUsageSampled
	}

	return 0
}

func (i BlockInfo) validate(memoryKind MemoryKind) error {
	if !memoryKind.AllowsBlock(i.kind) {
		return errors.Wrapf(ErrUnsupportedBlock, "%s block in %s memory", i.kind, memoryKind)
	}

	if i.kind == BlockKindIndex && i.indexType.Size() == 0 {
		return errors.Wrapf(ErrInvalidBlockSize, "unknown index type %s", i.indexType)
	}

	if i.kind.IsImage() && (i.width <= 0 || i.height <= 0 || i.bytesPerPixel <= 0) {
		return errors.Wrapf(ErrInvalidBlockSize, "image extent %dx%d with %d bytes per pixel", i.width, i.height, i.bytesPerPixel)
	}

	if i.Size() <= 0 {
		return errors.Wrapf(ErrInvalidBlockSize, "%s block of %d bytes", i.kind, i.Size())
	}

	return nil
}

func (i BlockInfo) bufferCreateInfo(memoryKind MemoryKind, sharingMode core1_0.SharingMode, queueFamilies []int) core1_0.BufferCreateInfo {
	return core1_0.BufferCreateInfo{
		Size:               i.Size(),
		Usage:              i.BufferUsage() | memoryKind.extraBufferUsage(),
		SharingMode:        sharingMode,
		QueueFamilyIndices: queueFamilies,
	}
}

func (i BlockInfo) imageCreateInfo(memoryKind MemoryKind, sharingMode core1_0.SharingMode, queueFamilies []int) core1_0.ImageCreateInfo {
	var queueFamilyIndices []uint32
	for _, family := range queueFamilies {
		queueFamilyIndices = append(queueFamilyIndices, uint32(family))
	}

	return core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    i.format,
		Extent: core1_0.Extent3D{
			Width:  i.width,
			Height: i.height,
			Depth:  1,
		},
		MipLevels:          1,
		ArrayLayers:        1,
		Samples:            core1_0.Samples1,
		Tiling:             core1_0.ImageTilingOptimal,
		Usage:              i.ImageUsage() | memoryKind.extraImageUsage(),
		SharingMode:        sharingMode,
		QueueFamilyIndices: queueFamilyIndices,
		InitialLayout:      core1_0.ImageLayoutUndefined,
	}
}
