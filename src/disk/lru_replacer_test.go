package disk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pagedb/src/common"
)

func TestLRUReplacer_Unpin(t *testing.T) {
	replacer := NewLRUReplacer()

	for i := 0; i < 10; i++ {
		replacer.Unpin(common.FrameId(i))
		require.Equal(t, common.FrameId(i), replacer.dataList.Front().Value.(common.FrameId))
		require.Contains(t, replacer.index, common.FrameId(i))
	}
	require.Equal(t, 10, replacer.Size())
}

func TestLRUReplacer_UnpinDuplicate(t *testing.T) {
	replacer := NewLRUReplacer()
	replacer.Unpin(1)
	replacer.Unpin(2)
	replacer.Unpin(3)

	// A repeated unpin must neither duplicate the frame nor move it.
	replacer.Unpin(1)
	require.Equal(t, 3, replacer.Size())

	for _, expected := range []common.FrameId{1, 2, 3} {
		frameId, ok := replacer.Victim()
		require.True(t, ok)
		require.Equal(t, expected, frameId)
	}
}

func TestLRUReplacer_Pin(t *testing.T) {
	replacer := NewLRUReplacer()
	for i := 0; i < 10; i++ {
		replacer.Unpin(common.FrameId(i))
	}

	replacer.Pin(5)
	require.NotContains(t, replacer.index, common.FrameId(5))
	elem4 := replacer.index[4]
	elem6 := replacer.index[6]
	require.Equal(t, elem6.Next(), elem4)

	// Pinning a frame that is not a candidate is a no-op.
	replacer.Pin(5)
	require.Equal(t, 9, replacer.Size())
}

func TestLRUReplacer_Victim(t *testing.T) {
	replacer := NewLRUReplacer()
	for i := 0; i < 10; i++ {
		replacer.Unpin(common.FrameId(i))
	}
	for i := 0; i < 10; i++ {
		frameId, ok := replacer.Victim()
		require.True(t, ok)
		require.Equal(t, common.FrameId(i), frameId)
	}
	_, ok := replacer.Victim()
	require.False(t, ok)
}

func TestLRUReplacer_PinThenUnpinMovesToFront(t *testing.T) {
	replacer := NewLRUReplacer()
	replacer.Unpin(1)
	replacer.Unpin(2)
	replacer.Unpin(3)

	replacer.Pin(1)
	replacer.Unpin(1)

	for _, expected := range []common.FrameId{2, 3, 1} {
		frameId, ok := replacer.Victim()
		require.True(t, ok)
		require.Equal(t, expected, frameId)
	}
}

func TestLRUReplacer_Hybrid(t *testing.T) {
	replacer := NewLRUReplacer()
	for i := 0; i < 10; i++ {
		replacer.Unpin(common.FrameId(i))
	}
	replacer.Pin(0)
	replacer.Pin(3)
	replacer.Pin(5)

	for _, expected := range []common.FrameId{1, 2, 4} {
		frameId, ok := replacer.Victim()
		require.True(t, ok)
		require.Equal(t, expected, frameId)
	}

	replacer.Unpin(5)
	frameId, ok := replacer.Victim()
	require.True(t, ok)
	require.Equal(t, common.FrameId(6), frameId)
}
