package disk

import (
	"math/rand"
	"os"
	"testing"

	"github.com/ncw/directio"
	"github.com/stretchr/testify/require"

	"pagedb/src/common"
)

var testFileName = "tmp-file"

func TestNewDiskManager(t *testing.T) {
	defer os.Remove(testFileName)
	dm := NewDiskManager(testFileName)
	defer dm.Close()

	require.Equal(t, testFileName, dm.fileName)
	require.Equal(t, int32(0), dm.header.numFreePages)
	require.Equal(t, common.PageId(1), dm.header.nextPageId)

	// Check whether the header page is written.
	fi, _ := os.Open(testFileName)
	defer fi.Close()
	headerPageData := directio.AlignedBlock(PageSize)
	n, err := fi.Read(headerPageData)
	require.Nil(t, err)
	require.Equal(t, PageSize, n)
	writtenHeader := createHeaderPageInfo(headerPageData)
	require.Equal(t, int32(0), writtenHeader.numFreePages)
	require.Equal(t, common.PageId(1), writtenHeader.nextPageId)
}

func TestDiskManager_ReadWrite(t *testing.T) {
	defer os.Remove(testFileName)
	dm := NewDiskManager(testFileName)

	allData := make([][]byte, 0)
	for i := 0; i < 10; i++ {
		pageId, err := dm.AllocatePage()
		require.Nil(t, err)
		data := directio.AlignedBlock(PageSize)
		rand.Read(data)
		allData = append(allData, data)
		require.Nil(t, dm.WritePage(pageId, data))

		secondData := directio.AlignedBlock(PageSize)
		require.Nil(t, dm.ReadPage(pageId, secondData))
		require.Equal(t, data, secondData)
	}
	dm.Close()

	newDm := NewDiskManager(testFileName)
	defer newDm.Close()
	for i := 0; i < 10; i++ {
		data := directio.AlignedBlock(PageSize)
		require.Nil(t, newDm.ReadPage(common.PageId(i+1), data))
		require.Equal(t, allData[i], data)
	}
}

func TestDiskManager_ReadErrors(t *testing.T) {
	defer os.Remove(testFileName)
	dm := NewDiskManager(testFileName)
	defer dm.Close()

	data := directio.AlignedBlock(PageSize)
	require.NotNil(t, dm.ReadPage(common.PageId(-1), data))
	// Page 1 has not been allocated yet.
	require.NotNil(t, dm.ReadPage(common.PageId(1), data))
	require.NotNil(t, dm.ReadPage(common.PageId(0), data[:16]))
}

func TestDiskManager_AllocateAndDeallocate(t *testing.T) {
	defer os.Remove(testFileName)
	dm := NewDiskManager(testFileName)
	defer dm.Close()

	// Allocate pages in sequence.
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.Nil(t, err)
		require.Equal(t, common.PageId(i), pageId)
		require.Equal(t, common.PageId(i+1), dm.header.nextPageId)
		require.Equal(t, int32(0), dm.header.numFreePages)
	}

	// Deallocate pages in sequence.
	for i := 1; i <= 5; i++ {
		require.Nil(t, dm.DeallocatePage(common.PageId(i)))
		require.Equal(t, common.PageId(6), dm.header.nextPageId)
		require.Equal(t, int32(i), dm.header.numFreePages)
		require.Equal(t, common.PageId(i), dm.header.get(int32(i-1)))
	}

	// Freed identifiers are reused before the file grows.
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.Nil(t, err)
		require.Equal(t, common.PageId(i), pageId)
	}
	pageId, err := dm.AllocatePage()
	require.Nil(t, err)
	require.Equal(t, common.PageId(6), pageId)
}

func TestDiskManager_FreeListPersists(t *testing.T) {
	defer os.Remove(testFileName)
	dm := NewDiskManager(testFileName)
	for i := 0; i < 3; i++ {
		_, err := dm.AllocatePage()
		require.Nil(t, err)
	}
	require.Nil(t, dm.DeallocatePage(common.PageId(2)))
	dm.Close()

	newDm := NewDiskManager(testFileName)
	defer newDm.Close()
	pageId, err := newDm.AllocatePage()
	require.Nil(t, err)
	require.Equal(t, common.PageId(2), pageId)
}
