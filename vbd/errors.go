package vbd

import "github.com/pkg/errors"

// Resource creation errors
var (
	// ErrBufferCreation is returned when the device fails to create a buffer for a block
	ErrBufferCreation error = errors.New("buffer creation failed")
	// ErrImageCreation is returned when the device fails to create an image for a block
	ErrImageCreation error = errors.New("image creation failed")
)

// Memory errors
var (
	// ErrNoSuitableMemory is returned when no memory type satisfies every block registered with an allocator
	ErrNoSuitableMemory error = errors.New("no suitable memory type")
	// ErrAllocateMemory is returned when the device fails to allocate device memory
	ErrAllocateMemory error = errors.New("device memory allocation failed")
	// ErrBindMemory is returned when a buffer or image could not be bound to device memory
	ErrBindMemory error = errors.New("binding device memory failed")
	// ErrMapMemory is returned when host-visible device memory could not be mapped
	ErrMapMemory error = errors.New("mapping device memory failed")
	// ErrMemoryNotYetAllocated is returned when data is uploaded to a repository with no live memory
	ErrMemoryNotYetAllocated error = errors.New("memory has not been allocated")
	// ErrMemoryUnableToUpdate is returned when an update session is requested for memory that may only be
	// written once through a staging transfer
	ErrMemoryUnableToUpdate error = errors.New("memory kind does not support updates")
	// ErrBufferOverrun is returned when an upload would write past the end of a block
	ErrBufferOverrun error = errors.New("write exceeds block size")
)

// Logic errors
var (
	ErrAlreadyAllocated    error = errors.New("allocator has already allocated")
	ErrNoBlocks            error = errors.New("no blocks were registered")
	ErrUnsupportedBlock    error = errors.New("block kind is not supported by memory kind")
	ErrInvalidBlockSize    error = errors.New("invalid block size")
	ErrForeignBlockIndex   error = errors.New("block index belongs to a different allocator")
	ErrBlockIndexRange     error = errors.New("block index out of range")
	ErrBlockKindMismatch   error = errors.New("block index was registered as a different kind")
	ErrDistributorConsumed error = errors.New("distributor has already been converted into a repository")
	ErrForeignBlock        error = errors.New("block belongs to a different repository")
	ErrSessionInProgress   error = errors.New("an upload session is already open")
	ErrSessionFinished     error = errors.New("upload session has already finished")
)

// Transfer errors
var (
	// ErrTransferSubmit is returned when the staged copy could not be recorded, submitted, or waited upon
	ErrTransferSubmit error = errors.New("staged transfer failed")
)
