package table

import (
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pagedb/src/common"
	"pagedb/src/disk"
)

var heapTestFile = "tmp-heap-file"

func newTestHeap(t *testing.T, poolSize int) *TableHeap {
	t.Helper()
	dm := disk.NewDiskManager(heapTestFile)
	t.Cleanup(func() {
		dm.Close()
		os.Remove(heapTestFile)
	})
	bpm := disk.NewBufferPoolManager(poolSize, dm, disk.NewLRUReplacer())
	return NewTableHeap(bpm, true)
}

func TestNewTableHeap(t *testing.T) {
	th := newTestHeap(t, 8)

	headerPage := th.getHeaderPage(false)
	header := createHeapFileHeader(headerPage.Data())
	require.Equal(t, int32(0), header.numPages)
	th.releaseHeaderPage(headerPage, false)
}

func checkHeapContents(t *testing.T, th *TableHeap, allData map[common.RID][]byte) {
	t.Helper()
	headerPage := th.getHeaderPage(false)
	header := createHeapFileHeader(headerPage.Data())
	pageInfoList := append([]pageInfo(nil), header.getPageInfoList()...)
	th.releaseHeaderPage(headerPage, false)

	// The directory's free-space accounting matches the pages.
	for _, info := range pageInfoList {
		page, err := th.bufferPoolManager.FetchPage(info.pageId)
		require.Nil(t, err)
		tablePage := createTablePage(page.Data())
		require.Equal(t, info.leftSpace, tablePage.getFreeSpaceForInsert())
		th.bufferPoolManager.UnpinPage(info.pageId, false)
	}

	for rid, expected := range allData {
		data, found := th.Get(rid)
		require.True(t, found)
		require.Equal(t, expected, data)
	}
}

func TestTableHeap_InsertAndGet(t *testing.T) {
	th := newTestHeap(t, 8)

	allData := make(map[common.RID][]byte)
	for i := 0; i < 200; i++ {
		record := make([]byte, rand.Intn(512)+1)
		rand.Read(record)
		rid := th.Insert(record)
		allData[rid] = record
	}
	checkHeapContents(t, th, allData)
}

func TestTableHeap_InsertAndDelete(t *testing.T) {
	th := newTestHeap(t, 8)

	allData := make(map[common.RID][]byte)
	allRIDs := make([]common.RID, 0)
	for i := 0; i < 500; i++ {
		if rand.Float64() <= 0.7 || len(allRIDs) == 0 {
			record := make([]byte, rand.Intn(512)+1)
			rand.Read(record)
			rid := th.Insert(record)
			allData[rid] = record
			allRIDs = append(allRIDs, rid)
		} else {
			victim := rand.Intn(len(allRIDs))
			rid := allRIDs[victim]
			require.True(t, th.Delete(rid))
			delete(allData, rid)
			allRIDs = append(allRIDs[:victim], allRIDs[victim+1:]...)

			_, found := th.Get(rid)
			require.False(t, found)
		}
	}
	checkHeapContents(t, th, allData)
}

func TestTableHeap_DeleteUnknown(t *testing.T) {
	th := newTestHeap(t, 8)

	require.False(t, th.Delete(common.RID{PageId: 99, SlotNum: 0}))
	_, found := th.Get(common.RID{PageId: 99, SlotNum: 0})
	require.False(t, found)
}

func TestTableHeap_ConcurrentInsert(t *testing.T) {
	th := newTestHeap(t, 16)

	const workers = 4
	const perWorker = 50

	var mu sync.Mutex
	allData := make(map[common.RID][]byte)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < perWorker; i++ {
				record := make([]byte, rng.Intn(256)+1)
				rng.Read(record)
				rid := th.Insert(record)
				mu.Lock()
				allData[rid] = record
				mu.Unlock()
			}
		}(int64(w))
	}
	wg.Wait()

	require.Equal(t, workers*perWorker, len(allData))
	checkHeapContents(t, th, allData)
}
