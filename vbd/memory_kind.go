package vbd

import (
	"fmt"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// MemoryKind selects the class of device memory an Allocator draws from and the path data takes
// to reach it
type MemoryKind int32

const (
	// MemoryKindHost is HostVisible memory that is persistently mapped. Writes go directly through the
	// mapped pointer and are flushed at the end of a session when the chosen memory type is not HostCoherent.
	MemoryKindHost MemoryKind = iota
	// MemoryKindCached is HostCached memory. It is written once through a staging buffer.
	MemoryKindCached
	// MemoryKindDevice is DeviceLocal memory. It is written once through a staging buffer.
	MemoryKindDevice
	// MemoryKindStaging is HostVisible, HostCoherent memory used as a transfer source
	MemoryKindStaging
)

var memoryKindMapping = map[MemoryKind]string{
	MemoryKindHost:    "MemoryKindHost",
	MemoryKindCached:  "MemoryKindCached",
	MemoryKindDevice:  "MemoryKindDevice",
	MemoryKindStaging: "MemoryKindStaging",
}

func (k MemoryKind) String() string {
	str, ok := memoryKindMapping[k]
	if !ok {
		return fmt.Sprintf("MemoryKind(%d)", int32(k))
	}
	return str
}

// PropertyFlags are the memory property flags every memory type chosen for this kind must carry
func (k MemoryKind) PropertyFlags() core1_0.MemoryPropertyFlags {
	switch k {
	case MemoryKindHost:
		return core1_0.MemoryPropertyHostVisible
	case MemoryKindCached:
		return core1_0.MemoryPropertyHostCached
	case MemoryKindDevice:
		return core1_0.MemoryPropertyDeviceLocal
	case MemoryKindStaging:
		return core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	}

	return 0
}

// IsHostVisible reports whether memory of this kind is mapped and written directly from the host
func (k MemoryKind) IsHostVisible() bool {
	return k == MemoryKindHost || k == MemoryKindStaging
}

// RequiresStaging reports whether uploads to this kind go through a staging buffer
func (k MemoryKind) RequiresStaging() bool {
	return k == MemoryKindCached || k == MemoryKindDevice
}

// IsUpdatable reports whether memory of this kind may be rewritten after its first upload
func (k MemoryKind) IsUpdatable() bool {
	return k.IsHostVisible()
}

// AllowsBlock reports whether blocks of the provided kind may be allocated from this memory kind
func (k MemoryKind) AllowsBlock(kind BlockKind) bool {
	switch kind {
	case BlockKindVertex, BlockKindIndex, BlockKindUniform:
		return k.isValid()
	case BlockKindImageSrc:
		return k.RequiresStaging()
	}

	return false
}

func (k MemoryKind) isValid() bool {
	_, ok := memoryKindMapping[k]
	return ok
}

func (k MemoryKind) extraBufferUsage() core1_0.BufferUsageFlags {
	switch k {
	case MemoryKindCached, MemoryKindDevice:
		return core1_0.BufferUsageTransferDst
	case MemoryKindStaging:
		return core1_0.BufferUsageTransferSrc
	}

	return 0
}

func (k MemoryKind) extraImageUsage() core1_0.ImageUsageFlags {
	if k.RequiresStaging() {
		return core1_0.ImageUsageTransferDst
	}

	return 0
}

// BlockKind identifies which kind of resource a block holds
type BlockKind byte

const (
	BlockKindVertex BlockKind = iota + 1
	BlockKindIndex
	BlockKindUniform
	BlockKindImageSrc
)

var blockKindMapping = map[BlockKind]string{
	BlockKindVertex:   "Vertex",
	BlockKindIndex:    "Index",
	BlockKindUniform:  "Uniform",
	BlockKindImageSrc: "ImageSrc",
}

func (k BlockKind) String() string {
	str, ok := blockKindMapping[k]
	if !ok {
		return fmt.Sprintf("BlockKind(%d)", byte(k))
	}
	return str
}

// IsImage reports whether blocks of this kind are backed by an image rather than a buffer
func (k BlockKind) IsImage() bool {
	return k == BlockKindImageSrc
}
