package vbd_test

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd"
	"github.com/vkngwrapper/gensokyo/vbd/internal/softgpu"
	mock_vbd "github.com/vkngwrapper/gensokyo/vbd/mocks"
	"go.uber.org/mock/gomock"
)

func TestAllocateOffsetsAndCleanupOrder(t *testing.T) {
	ctrl := gomock.NewController(t)

	device := mock_vbd.NewMockDevice(ctrl)
	properties := mockMemoryProperties(ctrl, discreteMemoryTypes(), 1)

	allocator, err := vbd.New(testLogger(), device, properties, nil, vbd.MemoryKindHost, vbd.CreateOptions{})
	require.NoError(t, err)

	sizes := []int{10, 200, 100}
	buffers := make([]core1_0.Buffer, len(sizes))
	indices := make([]vbd.BlockIndex, len(sizes))
	for i, size := range sizes {
		buffers[i] = &fakeBuffer{id: i}
		indices[i], err = allocator.AddAllocate(vbd.UniformBlockInfo(size))
		require.NoError(t, err)
		require.Equal(t, i, indices[i].Position())

		device.EXPECT().CreateBuffer(core1_0.BufferCreateInfo{
			Size:        size,
			Usage:       core1_0.BufferUsageUniformBuffer,
			SharingMode: core1_0.SharingModeExclusive,
		}).Return(buffers[i], core1_0.VKSuccess, nil)
		device.EXPECT().BufferMemoryRequirements(buffers[i]).Return(core1_0.MemoryRequirements{
			Size:           size,
			Alignment:      64,
			MemoryTypeBits: 0xffffffff,
		})
	}

	memory := &fakeMemory{id: 1}
	data := make([]byte, 448)
	device.EXPECT().AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  448,
		MemoryTypeIndex: 1,
	}).Return(memory, core1_0.VKSuccess, nil)
	device.EXPECT().BindBufferMemory([]vbd.BufferBinding{
		{Buffer: buffers[0], Memory: memory, Offset: 0},
		{Buffer: buffers[1], Memory: memory, Offset: 64},
		{Buffer: buffers[2], Memory: memory, Offset: 320},
	}).Return(core1_0.VKSuccess, nil)
	device.EXPECT().MapMemory(memory, 0, 448).Return(unsafe.Pointer(&data[0]), core1_0.VKSuccess, nil)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)

	expectedOffsets := []int{0, 64, 320}
	expectedCapacities := []int{64, 256, 128}
	for i, index := range indices {
		block, err := distributor.AcquireUniform(index)
		require.NoError(t, err)
		require.Equal(t, buffers[i], block.Buffer())
		require.Equal(t, expectedOffsets[i], block.Offset())
		require.Equal(t, expectedCapacities[i], block.Capacity())
		require.Equal(t, sizes[i], block.Size())
		require.Equal(t, i, block.RepositoryIndex())
		require.Equal(t, vbd.BlockKindUniform, block.Kind())
	}

	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	require.Equal(t, 3, repository.ObjectCount())
	require.Equal(t, 448, repository.Size())
	require.Equal(t, 1, repository.MemoryTypeIndex())
	require.NoError(t, repository.Validate())

	gomock.InOrder(
		device.EXPECT().DestroyBuffer(buffers[0]),
		device.EXPECT().DestroyBuffer(buffers[1]),
		device.EXPECT().DestroyBuffer(buffers[2]),
		device.EXPECT().UnmapMemory(memory),
		device.EXPECT().FreeMemory(memory),
	)

	repository.Cleanup()
	require.Equal(t, 0, repository.ObjectCount())

	// The second cleanup makes no device calls
	repository.Cleanup()
	require.NoError(t, repository.Close())
	require.Equal(t, 0, repository.ObjectCount())
}

func TestAllocatePaddingQuirk(t *testing.T) {
	device := softgpu.New(softgpu.Options{
		MemoryTypes:     discreteMemoryTypes(),
		BufferAlignment: 256,
	})

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{})
	require.NoError(t, err)

	first, err := allocator.AddAllocate(vbd.UniformBlockInfo(256))
	require.NoError(t, err)
	second, err := allocator.AddAllocate(vbd.VertexBlockInfo(12, 3))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)

	uniform, err := distributor.AcquireUniform(first)
	require.NoError(t, err)
	require.Equal(t, 0, uniform.Offset())
	require.Equal(t, 512, uniform.Capacity())

	vertex, err := distributor.AcquireVertex(second)
	require.NoError(t, err)
	require.Equal(t, 512, vertex.Offset())
	require.Equal(t, 256, vertex.Capacity())
	require.Equal(t, 36, vertex.Size())
	require.Equal(t, 12, vertex.Stride())
	require.Equal(t, 3, vertex.VertexCount())

	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	defer repository.Close()

	require.Equal(t, 768, repository.Size())
}

func TestAllocateMixedAlignmentsRaiseOffsets(t *testing.T) {
	device := softgpu.New(softgpu.Options{
		MemoryTypes:     discreteMemoryTypes(),
		BufferAlignment: 16,
		ImageAlignment:  256,
	})

	allocator, err := vbd.New(testLogger(), device, device, device, vbd.MemoryKindDevice, vbd.CreateOptions{})
	require.NoError(t, err)

	vertexIndex, err := allocator.AddAllocate(vbd.VertexBlockInfo(8, 3))
	require.NoError(t, err)
	imageIndex, err := allocator.AddAllocate(vbd.ImageSrcBlockInfo(4, 4, core1_0.FormatR8G8B8A8UnsignedNormalized, 4))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)

	vertex, err := distributor.AcquireVertex(vertexIndex)
	require.NoError(t, err)
	require.Equal(t, 0, vertex.Offset())
	require.Equal(t, 32, vertex.Capacity())

	image, err := distributor.AcquireImageSrc(imageIndex)
	require.NoError(t, err)
	require.Equal(t, 256, image.Offset())
	require.Equal(t, 256, image.Capacity())
	require.Equal(t, core1_0.Extent2D{Width: 4, Height: 4}, image.Extent())
	require.Equal(t, core1_0.FormatR8G8B8A8UnsignedNormalized, image.Format())

	softImage := image.Image().(*softgpu.Image)
	require.Equal(t, core1_0.ImageUsageSampled|core1_0.ImageUsageTransferDst, softImage.Usage())

	softBuffer := vertex.Buffer().(*softgpu.Buffer)
	require.Equal(t, core1_0.BufferUsageVertexBuffer|core1_0.BufferUsageTransferDst, softBuffer.Usage())

	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	require.NoError(t, repository.Validate())
	require.Equal(t, 0, repository.MemoryTypeIndex())

	repository.Cleanup()
	require.Equal(t, 0, device.LiveBuffers())
	require.Equal(t, 0, device.LiveImages())
	require.Equal(t, 0, device.LiveAllocations())
	require.Empty(t, device.Violations())
}

var allocateFailureTestCases = map[string]struct {
	Kind          vbd.MemoryKind
	Operation     softgpu.Operation
	After         int
	BufferBits    uint32
	ExpectedError error
}{
	"CreateBuffer": {
		Kind:          vbd.MemoryKindHost,
		Operation:     softgpu.OpCreateBuffer,
		After:         1,
		ExpectedError: vbd.ErrBufferCreation,
	},
	"CreateImage": {
		Kind:          vbd.MemoryKindDevice,
		Operation:     softgpu.OpCreateImage,
		ExpectedError: vbd.ErrImageCreation,
	},
	"AllocateMemory": {
		Kind:          vbd.MemoryKindDevice,
		Operation:     softgpu.OpAllocateMemory,
		ExpectedError: vbd.ErrAllocateMemory,
	},
	"BindMemory": {
		Kind:          vbd.MemoryKindCached,
		Operation:     softgpu.OpBindMemory,
		ExpectedError: vbd.ErrBindMemory,
	},
	"MapMemory": {
		Kind:          vbd.MemoryKindStaging,
		Operation:     softgpu.OpMapMemory,
		ExpectedError: vbd.ErrMapMemory,
	},
	"NoSuitableMemory": {
		Kind:          vbd.MemoryKindHost,
		Operation:     -1,
		BufferBits:    0b001,
		ExpectedError: vbd.ErrNoSuitableMemory,
	},
}

func TestAllocateFailureReleasesEverything(t *testing.T) {
	for testName, testCase := range allocateFailureTestCases {
		t.Run(testName, func(t *testing.T) {
			device := softgpu.New(softgpu.Options{
				MemoryTypes:    discreteMemoryTypes(),
				BufferTypeBits: testCase.BufferBits,
			})
			if testCase.Operation >= 0 {
				device.InjectFailure(testCase.Operation, testCase.After, core1_0.VKErrorOutOfDeviceMemory)
			}

			allocator, err := vbd.New(testLogger(), device, device, device, testCase.Kind, vbd.CreateOptions{})
			require.NoError(t, err)

			_, err = allocator.AddAllocate(vbd.VertexBlockInfo(16, 4))
			require.NoError(t, err)
			_, err = allocator.AddAllocate(vbd.IndexBlockInfo(vbd.IndexTypeUint16, 6))
			require.NoError(t, err)
			if testCase.Kind.RequiresStaging() {
				_, err = allocator.AddAllocate(vbd.ImageSrcBlockInfo(2, 2, core1_0.FormatR8G8B8A8UnsignedNormalized, 4))
				require.NoError(t, err)
			}

			distributor, err := allocator.Allocate()
			require.Nil(t, distributor)
			require.Error(t, err)
			require.True(t, errors.Is(err, testCase.ExpectedError), "unexpected error: %+v", err)

			require.Equal(t, 0, device.LiveBuffers())
			require.Equal(t, 0, device.LiveImages())
			require.Equal(t, 0, device.LiveAllocations())
			require.Empty(t, device.Violations())
		})
	}
}

func TestAllocateRejectsBlockLargerThanReservation(t *testing.T) {
	// Images report one byte per texel, so an 8 byte-per-pixel block needs more than the driver reserves
	device := softgpu.New(softgpu.Options{
		MemoryTypes:         discreteMemoryTypes(),
		NonCoherentAtomSize: 64,
		TexelSize:           1,
	})

	allocator, err := vbd.New(testLogger(), device, device, device, vbd.MemoryKindDevice, vbd.CreateOptions{})
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(16))
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.ImageSrcBlockInfo(16, 16, core1_0.FormatR8G8B8A8UnsignedNormalized, 8))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.Nil(t, distributor)
	require.True(t, errors.Is(err, vbd.ErrInvalidBlockSize), "unexpected error: %+v", err)
	require.ErrorContains(t, err, "block 1 (ImageSrc) needs 2048 bytes but the driver reserves 512")

	require.Equal(t, 0, device.LiveBuffers())
	require.Equal(t, 0, device.LiveImages())
	require.Equal(t, 0, device.LiveAllocations())
	require.Empty(t, device.Violations())
}

func TestAllocateVulkanErrorIsPreserved(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())
	device.InjectFailure(softgpu.OpAllocateMemory, 0, core1_0.VKErrorOutOfDeviceMemory)

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{})
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(64))
	require.NoError(t, err)

	_, err = allocator.Allocate()
	require.True(t, errors.Is(err, vbd.ErrAllocateMemory))
	require.True(t, errors.Is(err, core1_0.VKErrorOutOfDeviceMemory.ToError()))
}

func TestAllocateTwice(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{})
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(64))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)

	_, err = allocator.Allocate()
	require.True(t, errors.Is(err, vbd.ErrAlreadyAllocated))

	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(64))
	require.True(t, errors.Is(err, vbd.ErrAlreadyAllocated))

	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	repository.Cleanup()
	require.Equal(t, 0, device.LiveAllocations())
}

func TestAllocateNoBlocks(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{})
	require.NoError(t, err)

	_, err = allocator.Allocate()
	require.True(t, errors.Is(err, vbd.ErrNoBlocks))
	require.Equal(t, 0, device.LiveAllocations())
}

var addAllocateErrorTestCases = map[string]struct {
	Kind          vbd.MemoryKind
	Info          vbd.BlockInfo
	ExpectedError error
}{
	"ImageInHostMemory": {
		Kind:          vbd.MemoryKindHost,
		Info:          vbd.ImageSrcBlockInfo(4, 4, core1_0.FormatR8G8B8A8UnsignedNormalized, 4),
		ExpectedError: vbd.ErrUnsupportedBlock,
	},
	"ImageInStagingMemory": {
		Kind:          vbd.MemoryKindStaging,
		Info:          vbd.ImageSrcBlockInfo(4, 4, core1_0.FormatR8G8B8A8UnsignedNormalized, 4),
		ExpectedError: vbd.ErrUnsupportedBlock,
	},
	"EmptyVertexBlock": {
		Kind:          vbd.MemoryKindHost,
		Info:          vbd.VertexBlockInfo(12, 0),
		ExpectedError: vbd.ErrInvalidBlockSize,
	},
	"NegativeUniformBlock": {
		Kind:          vbd.MemoryKindDevice,
		Info:          vbd.UniformBlockInfo(-4),
		ExpectedError: vbd.ErrInvalidBlockSize,
	},
	"UnknownIndexType": {
		Kind:          vbd.MemoryKindDevice,
		Info:          vbd.IndexBlockInfo(vbd.IndexType(9), 3),
		ExpectedError: vbd.ErrInvalidBlockSize,
	},
	"EmptyImage": {
		Kind:          vbd.MemoryKindDevice,
		Info:          vbd.ImageSrcBlockInfo(0, 4, core1_0.FormatR8G8B8A8UnsignedNormalized, 4),
		ExpectedError: vbd.ErrInvalidBlockSize,
	},
}

func TestAddAllocateValidation(t *testing.T) {
	for testName, testCase := range addAllocateErrorTestCases {
		t.Run(testName, func(t *testing.T) {
			device := newSoftDevice(discreteMemoryTypes())

			allocator, err := vbd.New(testLogger(), device, device, device, testCase.Kind, vbd.CreateOptions{})
			require.NoError(t, err)

			_, err = allocator.AddAllocate(testCase.Info)
			require.True(t, errors.Is(err, testCase.ExpectedError), "unexpected error: %+v", err)
			require.Equal(t, 0, allocator.BlockCount())
		})
	}
}

func TestNewRequiresTransfererForStagedKinds(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())

	_, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindDevice, vbd.CreateOptions{})
	require.Error(t, err)

	_, err = vbd.New(testLogger(), device, device, nil, vbd.MemoryKindCached, vbd.CreateOptions{})
	require.Error(t, err)

	_, err = vbd.New(testLogger(), device, device, nil, vbd.MemoryKind(12), vbd.CreateOptions{})
	require.Error(t, err)

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindStaging, vbd.CreateOptions{})
	require.NoError(t, err)
	require.Equal(t, vbd.MemoryKindStaging, allocator.Kind())
}

func TestSharedSelectorIsReset(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())
	selector := vbd.NewMemorySelector(device, vbd.MemoryKindHost.PropertyFlags())
	require.NoError(t, selector.Try(0b100, 0))

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{
		Selector: selector,
	})
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(32))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)
	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	defer repository.Close()

	// The earlier narrowing to type 2 was discarded
	require.Equal(t, 1, repository.MemoryTypeIndex())

	_, err = vbd.New(testLogger(), device, device, device, vbd.MemoryKindDevice, vbd.CreateOptions{
		Selector: selector,
	})
	require.Error(t, err)
}

func TestRequiredFlagsNarrowMemoryType(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())

	allocator, err := vbd.New(testLogger(), device, device, nil, vbd.MemoryKindHost, vbd.CreateOptions{
		Flags: vbd.CreateValidateLayout,
	})
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.VertexBlockInfo(16, 16))
	require.NoError(t, err)
	_, err = allocator.AddAllocate(vbd.UniformBlockInfo(64).WithRequiredFlags(hostCached))
	require.NoError(t, err)

	distributor, err := allocator.Allocate()
	require.NoError(t, err)
	repository, err := distributor.IntoRepository()
	require.NoError(t, err)
	defer repository.Close()

	require.Equal(t, 2, repository.MemoryTypeIndex())
}

func TestMemoryCallbacks(t *testing.T) {
	device := newSoftDevice(discreteMemoryTypes())

	type event struct {
		Allocate bool
		Kind     vbd.MemoryKind
		Type     int
	}
	var events []event

	allocator, err := vbd.New(testLogger(), device, device, device, vbd.MemoryKindDevice, vbd.CreateOptions{
		MemoryCallbackOptions: &vbd.MemoryCallbackOptions{
			Allocate: func(kind vbd.MemoryKind, memoryType int, memory core1_0.DeviceMemory, size int, userData interface{}) {
				require.Equal(t, "userdata", userData)
				events = append(events, event{Allocate: true, Kind: kind, Type: memoryType})
			},
			Free: func(kind vbd.MemoryKind, memoryType int, memory core1_0.DeviceMemory, size int, userData interface{}) {
				events = append(events, event{Allocate: false, Kind: kind, Type: memoryType})
			},
			UserData: "userdata",
		},
	})
	require.NoError(t, err)

	index, err := allocator.AddAllocate(vbd.IndexBlockInfo(vbd.IndexTypeUint32, 3))
	require.NoError(t, err)
	distributor, err := allocator.Allocate()
	require.NoError(t, err)
	block, err := distributor.AcquireIndex(index)
	require.NoError(t, err)
	require.Equal(t, vbd.IndexTypeUint32, block.IndexType())
	require.Equal(t, 3, block.IndexCount())
	require.Equal(t, 12, block.Size())

	repository, err := distributor.IntoRepository()
	require.NoError(t, err)

	session, err := repository.DataUploader()
	require.NoError(t, err)
	require.NoError(t, vbd.UploadSlice(session, block, []uint32{0, 1, 2}))
	require.NoError(t, session.Finish())

	repository.Cleanup()

	require.Equal(t, []event{
		{Allocate: true, Kind: vbd.MemoryKindDevice, Type: 0},
		{Allocate: true, Kind: vbd.MemoryKindStaging, Type: 1},
		{Allocate: false, Kind: vbd.MemoryKindStaging, Type: 1},
		{Allocate: false, Kind: vbd.MemoryKindDevice, Type: 0},
	}, events)
}
