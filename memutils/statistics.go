package memutils

// Statistics summarizes the layout of a single batched device memory allocation
type Statistics struct {
	// ObjectCount is the number of buffers and images bound into the allocation
	ObjectCount int
	// ObjectBytes is the number of bytes requested by callers for those objects
	ObjectBytes int
	// AllocationCount is the number of device memory allocations backing the objects
	AllocationCount int
	// AllocationBytes is the size of those device memory allocations
	AllocationBytes int
	// PaddingBytes is the number of bytes in the allocations not covered by any object's
	// requested size
	PaddingBytes int
}

func (s *Statistics) Clear() {
	s.ObjectCount = 0
	s.ObjectBytes = 0
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.PaddingBytes = 0
}

// AddObject records a single object of the provided requested size that occupies span bytes
// in the allocation
func (s *Statistics) AddObject(size, span int) {
	s.ObjectCount++
	s.ObjectBytes += size
	s.PaddingBytes += span - size
}

// AddAllocation records a device memory allocation of the provided size
func (s *Statistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ObjectCount += other.ObjectCount
	s.ObjectBytes += other.ObjectBytes
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
	s.PaddingBytes += other.PaddingBytes
}
