package vbd

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/memutils"
	"golang.org/x/exp/slog"
)

// Repository owns a single device memory allocation and every buffer and image bound into it. Data
// reaches the blocks through upload and update sessions. Cleanup or Close must be called before the
// Device is destroyed.
type Repository struct {
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

	session *UploadSession
}

func (r *Repository) Kind() MemoryKind { return r.kind }

// MemoryTypeIndex is the memory type the repository's memory was allocated from
func (r *Repository) MemoryTypeIndex() int { return r.memoryTypeIndex }

// Size is the size in bytes of the repository's device memory, or 0 after Cleanup
func (r *Repository) Size() int { return r.memorySize }

// MappedData is the host pointer to the start of the repository's memory. It is nil for memory kinds
// that are not host visible and while host-visible memory created with CreateDeferredMapping has no
// open session.
func (r *Repository) MappedData() unsafe.Pointer { return r.mapped }

// ObjectCount is the number of buffers and images still owned by the repository
func (r *Repository) ObjectCount() int { return len(r.objects) }

func (r *Repository) isCoherent() bool {
	flags := r.properties.MemoryType(r.memoryTypeIndex).PropertyFlags
	return flags&core1_0.MemoryPropertyHostCoherent != 0
}

// DataUploader opens a session that writes the initial contents of the repository's blocks
func (r *Repository) DataUploader() (*UploadSession, error) {
	return r.openSession(false)
}

// DataUpdater opens a session that rewrites the contents of the repository's blocks. Only
// host-visible memory kinds may be updated.
func (r *Repository) DataUpdater() (*UploadSession, error) {
	if !r.kind.IsUpdatable() {
		return nil, errors.Wrapf(ErrMemoryUnableToUpdate, "memory kind %s", r.kind)
	}

	return r.openSession(true)
}

func (r *Repository) openSession(update bool) (*UploadSession, error) {
	if r.memory == nil {
		return nil, errors.WithStack(ErrMemoryNotYetAllocated)
	}
	if r.session != nil {
		return nil, errors.WithStack(ErrSessionInProgress)
	}

	session := newUploadSession(r, update)
	err := session.prepareDataTransfer()
	if err != nil {
		return nil, err
	}

	r.session = session
	return session, nil
}

// Cleanup destroys every buffer and image in registration order, then unmaps and frees the
// repository's device memory. It is safe to call more than once.
func (r *Repository) Cleanup() {
	if r.memory == nil && len(r.objects) == 0 {
		return
	}

	r.logger.Debug("Repository::Cleanup", slog.Int("ObjectCount", len(r.objects)))

	if r.session != nil {
		r.session.abandon()
		r.session = nil
	}

	alloc := pendingAllocation{
		objects:         r.objects,
		memory:          r.memory,
		memoryTypeIndex: r.memoryTypeIndex,
		size:            r.memorySize,
		mapped:          r.mapped,
	}
	alloc.release(r.device, r.kind, r.callbacks)

	r.objects = nil
	r.memory = nil
	r.mapped = nil
	r.memorySize = 0
}

// Close calls Cleanup. It allows a repository to be released with defer.
func (r *Repository) Close() error {
	r.Cleanup()
	return nil
}

// Statistics summarizes the repository's objects and memory
func (r *Repository) Statistics() memutils.Statistics {
	var stats memutils.Statistics
	if r.memory == nil {
		return stats
	}

	stats.AddAllocation(r.memorySize)
	covered := 0
	for _, object := range r.objects {
		span := object.padded
		if object.offset > covered {
			span += object.offset - covered
		}
		covered = object.offset + object.padded
		stats.AddObject(object.info.Size(), span)
	}
	stats.PaddingBytes += r.memorySize - covered

	return stats
}

// BuildStatsString writes a JSON description of the repository's memory and every block within it
func (r *Repository) BuildStatsString(writer *jwriter.Writer) {
	stats := r.Statistics()

	obj := writer.Object()
	obj.Name("MemoryKind").String(r.kind.String())
	obj.Name("MemoryTypeIndex").Int(r.memoryTypeIndex)
	obj.Name("Size").Int(r.memorySize)
	obj.Name("Mapped").Bool(r.mapped != nil)

	totalObj := obj.Name("Total").Object()
	totalObj.Name("ObjectCount").Int(stats.ObjectCount)
	totalObj.Name("ObjectBytes").Int(stats.ObjectBytes)
	totalObj.Name("PaddingBytes").Int(stats.PaddingBytes)
	totalObj.End()

	arrayState := obj.Name("Blocks").Array()
	for index, object := range r.objects {
		blockObj := arrayState.Object()
		blockObj.Name("Index").Int(index)
		blockObj.Name("Kind").String(object.info.Kind().String())
		blockObj.Name("Offset").Int(object.offset)
		blockObj.Name("Size").Int(object.info.Size())
		blockObj.Name("Capacity").Int(object.padded)
		blockObj.Name("Alignment").Int(object.requirements.Alignment)
		blockObj.End()
	}
	arrayState.End()

	obj.End()
}

// Validate checks that every object lies at an aligned offset inside the repository's memory and that
// no two objects overlap
func (r *Repository) Validate() error {
	if r.memory == nil {
		if len(r.objects) > 0 {
			return errors.Newf("repository holds %d objects without memory", len(r.objects))
		}
		return nil
	}

	return validateLayout(r.objects, r.memorySize)
}

func validateLayout(objects []resourceObject, memorySize int) error {
	end := 0
	for index, object := range objects {
		if object.offset < end {
			return errors.Newf("block %d at offset %d overlaps the previous block ending at %d", index, object.offset, end)
		}
		if object.requirements.Alignment > 0 && object.offset%object.requirements.Alignment != 0 {
			return errors.Newf("block %d at offset %d is not aligned to %d", index, object.offset, object.requirements.Alignment)
		}
		if object.padded < object.requirements.Size || object.padded < object.info.Size() {
			return errors.Newf("block %d occupies %d bytes but requires %d", index, object.padded, object.requirements.Size)
		}

		end = object.offset + object.padded
		if end > memorySize {
			return errors.Newf("block %d ends at %d, past the end of %d bytes of memory", index, end, memorySize)
		}
	}

	return nil
}
