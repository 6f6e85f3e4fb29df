package vbd

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type transferState byte

const (
	transferUnprepared transferState = iota
	transferPrepared
	transferWritten
	transferFinished
)

var transferStateMapping = map[transferState]string{
	transferUnprepared: "Unprepared",
	transferPrepared:   "Prepared",
	transferWritten:    "Written",
	transferFinished:   "Finished",
}

func (s transferState) String() string {
	return transferStateMapping[s]
}

// writtenRange is a span of bytes written to a block, relative to the start of the block
type writtenRange struct {
	start int
	end   int
}

// UploadSession writes data into the blocks of a single Repository. Host-visible memory is written
// directly through its mapped pointer. Device-local and cached memory are written into a staging
// buffer that is copied on the device when the session finishes. Finish must be called exactly once.
type UploadSession struct {
	repository *Repository
	logger     *slog.Logger
	update     bool
	state      transferState

	base        unsafe.Pointer
	ownsMapping bool
	staging     *UploadStagingResource

	written *swiss.Map[int, []writtenRange]
}

func newUploadSession(repository *Repository, update bool) *UploadSession {
	return &UploadSession{
		repository: repository,
		logger:     repository.logger,
		update:     update,
		state:      transferUnprepared,
		written:    swiss.NewMap[int, []writtenRange](uint32(len(repository.objects))),
	}
}

// IsUpdate reports whether this session was opened with Repository.DataUpdater
func (s *UploadSession) IsUpdate() bool { return s.update }

func (s *UploadSession) prepareDataTransfer() error {
	r := s.repository
	s.logger.Debug("UploadSession::Prepare", slog.Bool("Update", s.update))

	switch r.kind {
	case MemoryKindHost, MemoryKindStaging:
		if r.mapped == nil {
			ptr, err := mapWholeMemory(r.device, r.memory, r.memorySize)
			if err != nil {
				return err
			}
			r.mapped = ptr
			s.ownsMapping = true
		}
		s.base = r.mapped
	case MemoryKindCached, MemoryKindDevice:
		staging, err := newUploadStagingResource(s.logger, r.device, r.properties, r.callbacks, r.memorySize)
		if err != nil {
			return err
		}
		s.staging = staging
		s.base = staging.mapped
	default:
		return errors.Newf("unknown memory kind %s", r.kind)
	}

	s.state = transferPrepared
	return nil
}

func (s *UploadSession) mapMemoryPtr(offset int) unsafe.Pointer {
	return unsafe.Add(s.base, offset)
}

// Upload writes data to the start of block
func (s *UploadSession) Upload(block Block, data []byte) error {
	return s.UploadAt(block, 0, data)
}

// UploadAt writes data into block, starting offset bytes past the start of the block
func (s *UploadSession) UploadAt(block Block, offset int, data []byte) error {
	if s.state == transferFinished {
		return errors.WithStack(ErrSessionFinished)
	}
	if block == nil {
		return errors.Wrap(ErrForeignBlock, "nil block")
	}

	r := s.repository
	index := block.RepositoryIndex()
	if block.arenaID() != r.arena || index < 0 || index >= len(r.objects) {
		return errors.Wrapf(ErrForeignBlock, "%s block %d", block.Kind(), index)
	}

	limit := block.Size()
	if capacity := block.Capacity(); capacity < limit {
		limit = capacity
	}
	if offset < 0 || offset > limit || len(data) > limit-offset {
		return errors.Wrapf(ErrBufferOverrun, "writing %d bytes at offset %d of a %d byte %s block",
			len(data), offset, limit, block.Kind())
	}

	if len(data) == 0 {
		return nil
	}

	target := unsafe.Slice((*byte)(s.mapMemoryPtr(block.Offset()+offset)), len(data))
	copy(target, data)

	ranges, _ := s.written.Get(index)
	s.written.Put(index, append(ranges, writtenRange{start: offset, end: offset + len(data)}))
	s.state = transferWritten

	return nil
}

// UploadSlice writes the contents of data to the start of block
func UploadSlice[T any](session *UploadSession, block Block, data []T) error {
	return UploadSliceAt(session, block, 0, data)
}

// UploadSliceAt writes the contents of data into block, starting offset bytes past the start of
// the block
func UploadSliceAt[T any](session *UploadSession, block Block, offset int, data []T) error {
	if len(data) == 0 {
		return session.UploadAt(block, offset, nil)
	}

	var zero T
	size := int(unsafe.Sizeof(zero)) * len(data)
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), size)
	return session.UploadAt(block, offset, bytes)
}

// Finish makes every write of the session visible to the device. Non-coherent host memory is
// flushed. Staged writes are copied on the device and the call blocks until the copy completes.
func (s *UploadSession) Finish() error {
	if s.state == transferFinished {
		return errors.WithStack(ErrSessionFinished)
	}

	s.logger.Debug("UploadSession::Finish", slog.String("State", s.state.String()), slog.Int("WrittenBlocks", s.written.Count()))

	err := s.terminateTransfer()
	s.state = transferFinished
	s.base = nil
	s.repository.session = nil

	if err != nil {
		s.logger.Debug("    UploadSession::Finish FAILED", slog.Any("error", err))
	}
	return err
}

func (s *UploadSession) terminateTransfer() error {
	r := s.repository

	switch r.kind {
	case MemoryKindHost, MemoryKindStaging:
		err := s.flushWrittenRanges()
		if s.ownsMapping {
			r.device.UnmapMemory(r.memory)
			r.mapped = nil
			s.ownsMapping = false
		}
		return err
	case MemoryKindCached, MemoryKindDevice:
		err := s.submitStagedCopies()
		s.staging.Cleanup()
		s.staging = nil
		return err
	}

	return errors.Newf("unknown memory kind %s", r.kind)
}

// abandon releases the session's resources without making its writes visible
func (s *UploadSession) abandon() {
	if s.staging != nil {
		s.staging.Cleanup()
		s.staging = nil
	}
	s.state = transferFinished
	s.base = nil
}

func (s *UploadSession) writtenIndices() []int {
	indices := make([]int, 0, s.written.Count())
	s.written.Iter(func(index int, _ []writtenRange) bool {
		indices = append(indices, index)
		return false
	})
	slices.Sort(indices)
	return indices
}

// mergeRanges sorts ranges and combines any that overlap or touch
func mergeRanges(ranges []writtenRange) []writtenRange {
	if len(ranges) < 2 {
		return ranges
	}

	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(left, right writtenRange) bool {
		return left.start < right.start
	})

	merged := sorted[:1]
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if current.start <= last.end {
			if current.end > last.end {
				last.end = current.end
			}
			continue
		}
		merged = append(merged, current)
	}

	return merged
}

func (s *UploadSession) flushWrittenRanges() error {
	r := s.repository
	if s.written.Count() == 0 || r.isCoherent() {
		return nil
	}

	atomSize := r.properties.NonCoherentAtomSize()
	if atomSize < 1 {
		atomSize = 1
	}
	memutils.DebugCheckPow2(atomSize, "NonCoherentAtomSize")

	var memoryRanges []writtenRange
	for _, index := range s.writtenIndices() {
		object := &r.objects[index]
		ranges, _ := s.written.Get(index)
		for _, written := range ranges {
			start := memutils.AlignDown(object.offset+written.start, uint(atomSize))
			end := memutils.AlignUp(object.offset+written.end, uint(atomSize))
			if end > r.memorySize {
				end = r.memorySize
			}
			memoryRanges = append(memoryRanges, writtenRange{start: start, end: end})
		}
	}

	memoryRanges = mergeRanges(memoryRanges)
	flushRanges := make([]core1_0.MappedMemoryRange, 0, len(memoryRanges))
	for _, memoryRange := range memoryRanges {
		flushRanges = append(flushRanges, core1_0.MappedMemoryRange{
			Memory: r.memory,
			Offset: memoryRange.start,
			Size:   memoryRange.end - memoryRange.start,
		})
	}

	_, err := r.device.FlushMappedMemoryRanges(flushRanges)
	if err != nil {
		return errors.Wrapf(err, "flushing %d ranges of non-coherent memory", len(flushRanges))
	}

	return nil
}

func (s *UploadSession) submitStagedCopies() error {
	r := s.repository
	indices := s.writtenIndices()
	if len(indices) == 0 {
		return nil
	}

	err := r.transfer.SubmitTransfer(func(recorder CommandRecorder) error {
		for _, index := range indices {
			object := &r.objects[index]

			if object.image != nil {
				err := recorder.CmdCopyBufferToImage(s.staging.buffer, object.image, ImageCopy{
					BufferOffset: object.offset,
					Size:         object.info.Size(),
					Width:        object.info.width,
					Height:       object.info.height,
				})
				if err != nil {
					return errors.Wrapf(err, "recording copy to image block %d", index)
				}
				continue
			}

			ranges, _ := s.written.Get(index)
			ranges = mergeRanges(ranges)
			regions := make([]core1_0.BufferCopy, 0, len(ranges))
			for _, written := range ranges {
				regions = append(regions, core1_0.BufferCopy{
					SrcOffset: object.offset + written.start,
					DstOffset: written.start,
					Size:      written.end - written.start,
				})
			}

			err := recorder.CmdCopyBuffer(s.staging.buffer, object.buffer, regions)
			if err != nil {
				return errors.Wrapf(err, "recording copy to %s block %d", object.info.Kind(), index)
			}
		}

		return nil
	})
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: %d blocks", ErrTransferSubmit, len(indices)), ErrTransferSubmit)
	}

	return nil
}
