// Package vbd batches the buffers and images a renderer needs into a single device memory allocation
// and moves data into them.
//
// Resources are described with BlockInfo values and registered with an Allocator of one MemoryKind.
// Allocator.Allocate creates every buffer and image, selects a memory type that suits all of them,
// allocates one region of device memory and binds each object at an aligned offset. The resulting
// Distributor turns the BlockIndex values returned during registration into typed blocks, and is then
// converted into a Repository, which owns the memory and objects from then on.
//
// Data is written through an UploadSession opened from the Repository. Host-visible memory is written
// through a persistent mapping and flushed when the memory type is not coherent. Device-local and
// cached memory are written into a transient staging buffer that is copied on the device when the
// session finishes.
//
//	allocator, err := vbd.New(logger, device, properties, transfer, vbd.MemoryKindDevice, vbd.CreateOptions{})
//	vertexIndex, err := allocator.AddAllocate(vbd.VertexBlockInfo(32, len(vertices)))
//	distributor, err := allocator.Allocate()
//	vertexBlock, err := distributor.AcquireVertex(vertexIndex)
//	repository, err := distributor.IntoRepository()
//	defer repository.Close()
//
//	session, err := repository.DataUploader()
//	err = vbd.UploadSlice(session, vertexBlock, vertices)
//	err = session.Finish()
package vbd
