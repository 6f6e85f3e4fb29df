package vbd

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// CreateFlags alter the behavior of an Allocator and the Repository it eventually produces
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateDeferredMapping prevents host-visible memory from being persistently mapped at allocation
	// time. Memory is instead mapped when an upload or update session opens and unmapped when it finishes.
	CreateDeferredMapping CreateFlags = 1 << iota
	// CreateValidateLayout runs Repository.Validate after allocation and fails the allocation when the
	// computed layout is inconsistent, even when the debug_mem_utils build tag is not set
	CreateValidateLayout
)

func init() {
	CreateDeferredMapping.Register("CreateDeferredMapping")
	CreateValidateLayout.Register("CreateValidateLayout")
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate
	Flags CreateFlags

	// SharingMode is used for every buffer and image the allocator creates. The zero value is
	// core1_0.SharingModeExclusive.
	SharingMode core1_0.SharingMode
	// QueueFamilyIndices lists the queue families that share resources when SharingMode is
	// core1_0.SharingModeConcurrent
	QueueFamilyIndices []int

	// MemoryCallbackOptions is an optional set of callbacks that will be executed when device memory
	// is allocated or freed on behalf of this allocator
	MemoryCallbackOptions *MemoryCallbackOptions

	// Selector may be provided to reuse a MemorySelector between allocators of the same memory kind.
	// It is reset before every allocation.
	Selector *MemorySelector
}

// New creates a new Allocator
//
// device - The Device that resources and memory will be created with
//
// properties - The memory types of the physical device that owns device
//
// transfer - Submits staged copies. It may be nil for host-visible memory kinds.
//
// kind - The kind of memory every block of this allocator will live in
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, device Device, properties MemoryProperties, transfer Transferer, kind MemoryKind, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("vbd.New: logger may not be nil")
	}
	if device == nil || properties == nil {
		return nil, errors.New("vbd.New: device and properties are both required")
	}
	if !kind.isValid() {
		return nil, errors.Newf("vbd.New: unknown memory kind %s", kind)
	}
	if kind.RequiresStaging() && transfer == nil {
		return nil, errors.Newf("vbd.New: memory kind %s requires a Transferer for staged uploads", kind)
	}

	selector := options.Selector
	if selector == nil {
		selector = NewMemorySelector(properties, kind.PropertyFlags())
	} else if selector.baseFlags != kind.PropertyFlags() {
		return nil, errors.Newf("vbd.New: selector base flags %s do not match memory kind %s", selector.baseFlags, kind)
	}

	allocator := &Allocator{
		logger:     logger.With(slog.String("MemoryKind", kind.String())),
		arena:      uuid.New(),
		device:     device,
		properties: properties,
		transfer:   transfer,
		kind:       kind,
		selector:   selector,

		createFlags:        options.Flags,
		sharingMode:        options.SharingMode,
		queueFamilyIndices: options.QueueFamilyIndices,
		callbacks: &memoryCallbacks{
			Callbacks: options.MemoryCallbackOptions,
		},
	}

	allocator.logger.Debug("Allocator::New", slog.String("Arena", allocator.arena.String()), slog.String("Flags", options.Flags.String()))

	return allocator, nil
}
