package disk

import (
	"testing"

	"github.com/ncw/directio"
	"github.com/stretchr/testify/require"

	"pagedb/src/common"
)

func TestHeaderPageInfo_Init(t *testing.T) {
	data := directio.AlignedBlock(PageSize)
	hdr := createHeaderPageInfo(data)
	hdr.init()

	require.Equal(t, common.PageId(1), hdr.nextPageId)
	require.Equal(t, int32(0), hdr.numFreePages)
	require.False(t, hdr.hasFreePage())
}

func TestHeaderPageInfo_PushPop(t *testing.T) {
	data := directio.AlignedBlock(PageSize)
	hdr := createHeaderPageInfo(data)
	hdr.init()

	for i := 1; i <= 5; i++ {
		hdr.pushFreePage(common.PageId(i))
		require.Equal(t, int32(i), hdr.numFreePages)
		require.Equal(t, common.PageId(i), hdr.get(int32(i-1)))
	}

	// Pops come from the head of the list.
	for i := 1; i <= 5; i++ {
		require.True(t, hdr.hasFreePage())
		require.Equal(t, common.PageId(i), hdr.popFreePage())
	}
	require.False(t, hdr.hasFreePage())
}

func TestHeaderPageInfo_RoundTrip(t *testing.T) {
	data := directio.AlignedBlock(PageSize)
	hdr := createHeaderPageInfo(data)
	hdr.init()
	hdr.nextPageId = 42
	hdr.pushFreePage(7)

	// The header is a view over the buffer: a second view sees the same state.
	other := createHeaderPageInfo(data)
	require.Equal(t, common.PageId(42), other.nextPageId)
	require.Equal(t, int32(1), other.numFreePages)
	require.Equal(t, common.PageId(7), other.get(0))
}
