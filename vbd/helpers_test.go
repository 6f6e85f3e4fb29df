package vbd_test

import (
	"io"

	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd/internal/softgpu"
	mock_vbd "github.com/vkngwrapper/gensokyo/vbd/mocks"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

const (
	hostVisible  = core1_0.MemoryPropertyHostVisible
	hostCoherent = core1_0.MemoryPropertyHostCoherent
	hostCached   = core1_0.MemoryPropertyHostCached
	deviceLocal  = core1_0.MemoryPropertyDeviceLocal
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

// discreteMemoryTypes resembles a discrete GPU: device-local VRAM, then coherent and cached system memory
func discreteMemoryTypes() []core1_0.MemoryType {
	return []core1_0.MemoryType{
		{PropertyFlags: deviceLocal, HeapIndex: 0},
		{PropertyFlags: hostVisible | hostCoherent, HeapIndex: 1},
		{PropertyFlags: hostVisible | hostCoherent | hostCached, HeapIndex: 1},
	}
}

// nonCoherentMemoryTypes has a single host-visible memory type, which is not coherent
func nonCoherentMemoryTypes() []core1_0.MemoryType {
	return []core1_0.MemoryType{
		{PropertyFlags: deviceLocal, HeapIndex: 0},
		{PropertyFlags: hostVisible | hostCached, HeapIndex: 1},
		{PropertyFlags: hostVisible | hostCoherent, HeapIndex: 1},
	}
}

func newSoftDevice(types []core1_0.MemoryType) *softgpu.Device {
	return softgpu.New(softgpu.Options{
		MemoryTypes:         types,
		NonCoherentAtomSize: 64,
	})
}

func mockMemoryProperties(ctrl *gomock.Controller, types []core1_0.MemoryType, atomSize int) *mock_vbd.MockMemoryProperties {
	properties := mock_vbd.NewMockMemoryProperties(ctrl)
	properties.EXPECT().MemoryTypeCount().Return(len(types)).AnyTimes()
	properties.EXPECT().MemoryType(gomock.Any()).DoAndReturn(func(index int) core1_0.MemoryType {
		return types[index]
	}).AnyTimes()
	properties.EXPECT().NonCoherentAtomSize().Return(atomSize).AnyTimes()
	return properties
}

type fakeBuffer struct {
	core1_0.Buffer
	id int
}

type fakeImage struct {
	core1_0.Image
	id int
}

type fakeMemory struct {
	core1_0.DeviceMemory
	id int
}
