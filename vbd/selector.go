package vbd

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// MemorySelector narrows the set of memory types that can hold a group of resources so that a single
// allocation can back all of them. A selector can be Reset and reused across allocators.
type MemorySelector struct {
	properties MemoryProperties
	baseFlags  core1_0.MemoryPropertyFlags
	candidates []int
}

// NewMemorySelector creates a selector whose candidates are all memory types of the device. Every
// memory type eventually chosen will carry baseFlags.
func NewMemorySelector(properties MemoryProperties, baseFlags core1_0.MemoryPropertyFlags) *MemorySelector {
	selector := &MemorySelector{
		properties: properties,
		baseFlags:  baseFlags,
	}
	selector.Reset()

	return selector
}

// Reset restores the candidate set to every memory type of the device
func (s *MemorySelector) Reset() {
	count := s.properties.MemoryTypeCount()
	s.candidates = s.candidates[:0]
	for memTypeIndex := 0; memTypeIndex < count; memTypeIndex++ {
		s.candidates = append(s.candidates, memTypeIndex)
	}
}

// Try narrows the candidate set to memory types allowed by typeBits that carry the base flags
// and extraFlags. When no candidate remains, ErrNoSuitableMemory is returned and the candidate set
// is left as it was.
func (s *MemorySelector) Try(typeBits uint32, extraFlags core1_0.MemoryPropertyFlags) error {
	narrowed := FindMemoryType(s.properties, typeBits, s.baseFlags|extraFlags, s.candidates)
	if len(narrowed) == 0 {
		return errors.Wrapf(ErrNoSuitableMemory, "no candidate among %v matches type bits %#x with flags %s",
			s.candidates, typeBits, s.baseFlags|extraFlags)
	}

	s.candidates = narrowed
	return nil
}

// OptimalMemory returns the first remaining candidate, in device declaration order, that carries
// the base flags
func (s *MemorySelector) OptimalMemory() (int, error) {
	found := FindMemoryType(s.properties, ^uint32(0), s.baseFlags, s.candidates)
	if len(found) == 0 {
		return -1, errors.Wrapf(ErrNoSuitableMemory, "no memory type carries flags %s", s.baseFlags)
	}

	return found[0], nil
}

// Candidates returns a copy of the current candidate set
func (s *MemorySelector) Candidates() []int {
	candidates := make([]int, len(s.candidates))
	copy(candidates, s.candidates)
	return candidates
}
