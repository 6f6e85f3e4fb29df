package vbd_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/gensokyo/vbd"
	"go.uber.org/mock/gomock"
)

var findMemoryTypeTestCases = map[string]struct {
	TypeBits   uint32
	Flags      core1_0.MemoryPropertyFlags
	Candidates []int
	Expected   []int
}{
	"AllTypesNoFlags": {
		TypeBits:   0xffffffff,
		Candidates: []int{0, 1, 2},
		Expected:   []int{0, 1, 2},
	},
	"TypeBitsExcludeFirst": {
		TypeBits:   0b110,
		Candidates: []int{0, 1, 2},
		Expected:   []int{1, 2},
	},
	"FlagsMustBeSuperset": {
		TypeBits:   0xffffffff,
		Flags:      hostVisible | hostCached,
		Candidates: []int{0, 1, 2},
		Expected:   []int{2},
	},
	"CandidatesRestrictResult": {
		TypeBits:   0xffffffff,
		Flags:      hostVisible,
		Candidates: []int{2},
		Expected:   []int{2},
	},
	"OutOfRangeCandidatesIgnored": {
		TypeBits:   0xffffffff,
		Candidates: []int{-1, 1, 7},
		Expected:   []int{1},
	},
	"NoMatch": {
		TypeBits:   0b001,
		Flags:      hostVisible,
		Candidates: []int{0, 1, 2},
		Expected:   nil,
	},
}

func TestFindMemoryType(t *testing.T) {
	for testName, testCase := range findMemoryTypeTestCases {
		t.Run(testName, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			properties := mockMemoryProperties(ctrl, discreteMemoryTypes(), 1)

			found := vbd.FindMemoryType(properties, testCase.TypeBits, testCase.Flags, testCase.Candidates)
			require.Equal(t, testCase.Expected, found)
		})
	}
}

func TestSelectorNarrowsToCommonType(t *testing.T) {
	ctrl := gomock.NewController(t)
	properties := mockMemoryProperties(ctrl, []core1_0.MemoryType{
		{PropertyFlags: deviceLocal},
		{PropertyFlags: hostVisible},
		{PropertyFlags: hostVisible | hostCoherent},
	}, 1)

	selector := vbd.NewMemorySelector(properties, 0)
	require.Equal(t, []int{0, 1, 2}, selector.Candidates())

	require.NoError(t, selector.Try(0xffffffff, hostVisible))
	require.Equal(t, []int{1, 2}, selector.Candidates())

	require.NoError(t, selector.Try(0xffffffff, hostVisible|hostCoherent))
	require.Equal(t, []int{2}, selector.Candidates())

	index, err := selector.OptimalMemory()
	require.NoError(t, err)
	require.Equal(t, 2, index)
}

func TestSelectorFailsOnSecondTry(t *testing.T) {
	ctrl := gomock.NewController(t)
	properties := mockMemoryProperties(ctrl, []core1_0.MemoryType{
		{PropertyFlags: deviceLocal},
		{PropertyFlags: hostVisible},
		{PropertyFlags: hostCoherent | deviceLocal},
	}, 1)

	selector := vbd.NewMemorySelector(properties, 0)
	require.NoError(t, selector.Try(0xffffffff, hostVisible))

	err := selector.Try(0xffffffff, hostVisible|hostCoherent)
	require.Error(t, err)
	require.True(t, errors.Is(err, vbd.ErrNoSuitableMemory))

	// A failed try leaves the previous candidates in place
	require.Equal(t, []int{1}, selector.Candidates())
}

func TestSelectorBaseFlagsAndTypeBits(t *testing.T) {
	ctrl := gomock.NewController(t)
	properties := mockMemoryProperties(ctrl, discreteMemoryTypes(), 1)

	selector := vbd.NewMemorySelector(properties, hostVisible)

	// Type 1 is banned by the first resource, leaving the cached type
	require.NoError(t, selector.Try(0b101, 0))
	require.Equal(t, []int{2}, selector.Candidates())

	index, err := selector.OptimalMemory()
	require.NoError(t, err)
	require.Equal(t, 2, index)

	err = selector.Try(0b010, 0)
	require.True(t, errors.Is(err, vbd.ErrNoSuitableMemory))
}

func TestSelectorReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	properties := mockMemoryProperties(ctrl, discreteMemoryTypes(), 1)

	selector := vbd.NewMemorySelector(properties, hostVisible)
	require.NoError(t, selector.Try(0b100, 0))
	require.Equal(t, []int{2}, selector.Candidates())

	selector.Reset()
	require.Equal(t, []int{0, 1, 2}, selector.Candidates())

	// Without any tries, the first type carrying the base flags is optimal
	index, err := selector.OptimalMemory()
	require.NoError(t, err)
	require.Equal(t, 1, index)
}

func TestSelectorNoTypeWithBaseFlags(t *testing.T) {
	ctrl := gomock.NewController(t)
	properties := mockMemoryProperties(ctrl, []core1_0.MemoryType{
		{PropertyFlags: deviceLocal},
	}, 1)

	selector := vbd.NewMemorySelector(properties, hostVisible)
	_, err := selector.OptimalMemory()
	require.True(t, errors.Is(err, vbd.ErrNoSuitableMemory))
}
