package table

import (
	log "github.com/sirupsen/logrus"

	"pagedb/src/common"
	"pagedb/src/disk"
)

const (
	// The heap's directory page is always the first page allocated after the
	// disk manager's own header, so its identifier is fixed.
	heapFileHeaderPageId = common.PageId(1)
)

// TableHeap stores variable-length records across slotted pages and resolves
// the RIDs that index leaves point at.
type TableHeap struct {
	bufferPoolManager *disk.BufferPoolManager
}

func NewTableHeap(bufferPoolManager *disk.BufferPoolManager, isNew bool) *TableHeap {
	th := &TableHeap{
		bufferPoolManager: bufferPoolManager,
	}
	if isNew {
		page, err := bufferPoolManager.NewPage()
		if err != nil {
			log.WithError(err).Fatalf("Cannot create table heap header page.")
		}
		if page.PageId() != heapFileHeaderPageId {
			log.Fatalf("Unexpected: header page id is not %d.", heapFileHeaderPageId)
		}
		header := createHeapFileHeader(page.Data())
		header.init()
		th.bufferPoolManager.UnpinPage(page.PageId(), true)
	}
	return th
}

func (th *TableHeap) getHeaderPage(exclusive bool) *disk.Page {
	page, err := th.bufferPoolManager.FetchPage(heapFileHeaderPageId)
	if err != nil {
		log.WithError(err).Fatalf("Cannot fetch heap header page.")
	}
	if exclusive {
		page.Lock()
	} else {
		page.RLock()
	}
	return page
}

func (th *TableHeap) releaseHeaderPage(page *disk.Page, exclusive bool) {
	if exclusive {
		page.Unlock()
	} else {
		page.RUnlock()
	}
	th.bufferPoolManager.UnpinPage(heapFileHeaderPageId, exclusive)
}

// Insert places record on the first known page with room, or extends the
// heap with a fresh page. The directory is re-checked on contention, so the
// loop retries until a placement sticks.
func (th *TableHeap) Insert(record []byte) common.RID {
	tryOnce := func() (common.RID, bool) {
		headerPage := th.getHeaderPage(false)
		header := createHeapFileHeader(headerPage.Data())

		for _, info := range header.getPageInfoList() {
			if int(info.leftSpace) >= len(record) {
				th.releaseHeaderPage(headerPage, false)
				rid, ok := th.insertIntoPage(record, info.pageId)
				if !ok {
					log.Warnf("Insert a record of length %d into page %d failed.", len(record), info.pageId)
				}
				return rid, ok
			}
		}
		th.releaseHeaderPage(headerPage, false)

		// No page has room; extend the heap.
		newPage, err := th.bufferPoolManager.NewPage()
		if err != nil {
			log.WithError(err).Fatalf("Cannot allocate new page.")
		}
		newPage.Lock()

		newTablePage := createTablePage(newPage.Data())
		newTablePage.init(newPage.PageId(), int32(len(newPage.Data())))
		rid, _ := newTablePage.Insert(record) // a fresh page always has room

		headerPage = th.getHeaderPage(true)
		header = createHeapFileHeader(headerPage.Data())
		header.pushPageInfo(pageInfo{
			pageId:    newPage.PageId(),
			leftSpace: newTablePage.getFreeSpaceForInsert(),
		})
		th.releaseHeaderPage(headerPage, true)

		newPage.Unlock()
		th.bufferPoolManager.UnpinPage(newPage.PageId(), true)
		return rid, true
	}
	for {
		if rid, ok := tryOnce(); ok {
			return rid
		}
	}
}

func (th *TableHeap) insertIntoPage(record []byte, pageId common.PageId) (common.RID, bool) {
	page, err := th.bufferPoolManager.FetchPage(pageId)
	if err != nil {
		log.WithError(err).Fatalf("Cannot fetch page %d.", pageId)
	}
	page.Lock()
	tablePage := createTablePage(page.Data())
	rid, ok := tablePage.Insert(record)
	if !ok {
		page.Unlock()
		th.bufferPoolManager.UnpinPage(pageId, false)
		return common.RID{}, false
	}

	headerPage := th.getHeaderPage(true)
	header := createHeapFileHeader(headerPage.Data())
	header.setPageInfo(pageId, pageInfo{
		pageId:    pageId,
		leftSpace: tablePage.getFreeSpaceForInsert(),
	})
	th.releaseHeaderPage(headerPage, true)

	page.Unlock()
	th.bufferPoolManager.UnpinPage(pageId, true)
	return rid, true
}

func (th *TableHeap) Delete(rid common.RID) bool {
	headerPage := th.getHeaderPage(false)
	header := createHeapFileHeader(headerPage.Data())
	_, ok := header.getPageInfo(rid.PageId)
	th.releaseHeaderPage(headerPage, false)
	if !ok {
		return false
	}

	page, err := th.bufferPoolManager.FetchPage(rid.PageId)
	if err != nil {
		log.WithError(err).Fatalf("Unexpected page not found.")
	}
	page.Lock()

	tablePage := createTablePage(page.Data())
	deleted := tablePage.Delete(rid)
	freeSpace := tablePage.getFreeSpaceForInsert()
	if !deleted {
		page.Unlock()
		th.bufferPoolManager.UnpinPage(rid.PageId, false)
		return false
	}

	headerPage = th.getHeaderPage(true)
	header = createHeapFileHeader(headerPage.Data())
	header.setPageInfo(rid.PageId, pageInfo{
		pageId:    rid.PageId,
		leftSpace: freeSpace,
	})
	th.releaseHeaderPage(headerPage, true)

	page.Unlock()
	th.bufferPoolManager.UnpinPage(rid.PageId, true)
	return true
}

func (th *TableHeap) Get(rid common.RID) ([]byte, bool) {
	headerPage := th.getHeaderPage(false)
	header := createHeapFileHeader(headerPage.Data())
	_, ok := header.getPageInfo(rid.PageId)
	th.releaseHeaderPage(headerPage, false)
	if !ok {
		return nil, false
	}

	page, err := th.bufferPoolManager.FetchPage(rid.PageId)
	if err != nil {
		log.WithError(err).Fatalf("Unexpected page not found.")
	}
	page.RLock()
	tablePage := createTablePage(page.Data())
	data, found := tablePage.Get(rid)
	page.RUnlock()
	th.bufferPoolManager.UnpinPage(rid.PageId, false)
	return data, found
}
