package disk

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"pagedb/src/common"
)

// BufferPoolManager owns a fixed array of frames and decides which pages are
// resident. Frames come from the free list first, then from the replacer.
// The pool mutex serializes the page table, free list and frame metadata;
// each frame's own latch guards its buffer after the pool mutex is released.
type BufferPoolManager struct {
	size        int
	pages       []Page
	replacer    Replacer
	freeList    list.List
	pageTable   map[common.PageId]common.FrameId
	diskManager *DiskManager
	mu          sync.Mutex
}

func NewBufferPoolManager(size int, diskManager *DiskManager, replacer Replacer) *BufferPoolManager {
	bpm := &BufferPoolManager{
		size:        size,
		pages:       make([]Page, size),
		replacer:    replacer,
		pageTable:   make(map[common.PageId]common.FrameId),
		diskManager: diskManager,
	}
	for i := 0; i < size; i++ {
		bpm.pages[i] = Page{
			data:     directio.AlignedBlock(PageSize),
			pageId:   common.InvalidPageId,
			pinCount: 0,
			isDirty:  false,
		}
		bpm.freeList.PushBack(common.FrameId(i))
	}
	return bpm
}

// FetchPage pins the frame holding pageId, reading it from disk if it is not
// resident. Returns ErrPoolFull when every frame is pinned.
func (bpm *BufferPoolManager) FetchPage(pageId common.PageId) (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if frameId, ok := bpm.pageTable[pageId]; ok {
		bpm.replacer.Pin(frameId)
		page := &bpm.pages[frameId]
		page.pinCount += 1
		poolHits.Inc()
		return page, nil
	}
	poolMisses.Inc()

	frameId, found := bpm.findAvailableFrame()
	if !found {
		log.Warnf("Buffer pool is full.")
		return nil, ErrPoolFull
	}
	page := &bpm.pages[frameId]
	oldPageId := page.pageId
	if page.isDirty {
		if err := bpm.diskManager.WritePage(oldPageId, page.data); err != nil {
			log.WithError(err).Errorf("Cannot write page %d back.", oldPageId)
			bpm.replacer.Unpin(frameId)
			return nil, err
		}
		page.isDirty = false
		poolFlushes.Inc()
	}
	if err := bpm.diskManager.ReadPage(pageId, page.data); err != nil {
		log.WithError(err).Warnf("Cannot read page %d from disk.", pageId)
		// The buffer is no longer a faithful copy of any page; retire the
		// frame to the free list.
		delete(bpm.pageTable, oldPageId)
		page.pageId = common.InvalidPageId
		bpm.freeList.PushBack(frameId)
		return nil, err
	}

	delete(bpm.pageTable, oldPageId)
	bpm.pageTable[pageId] = frameId
	page.pageId = pageId
	page.pinCount = 1
	return page, nil
}

// NewPage allocates a fresh page on the block device and pins a zeroed frame
// for it. The new identifier is readable from the returned page.
func (bpm *BufferPoolManager) NewPage() (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, found := bpm.findAvailableFrame()
	if !found {
		log.Warnf("Buffer pool is full.")
		return nil, ErrPoolFull
	}
	page := &bpm.pages[frameId]
	oldPageId := page.pageId
	if page.isDirty {
		if err := bpm.diskManager.WritePage(oldPageId, page.data); err != nil {
			log.WithError(err).Errorf("Cannot write page %d back.", oldPageId)
			bpm.replacer.Unpin(frameId)
			return nil, err
		}
		page.isDirty = false
		poolFlushes.Inc()
	}
	newPageId, err := bpm.diskManager.AllocatePage()
	if err != nil {
		log.WithError(err).Errorf("Allocate page failed.")
		if oldPageId == common.InvalidPageId {
			bpm.freeList.PushBack(frameId)
		} else {
			bpm.replacer.Unpin(frameId)
		}
		return nil, err
	}
	delete(bpm.pageTable, oldPageId)
	bpm.pageTable[newPageId] = frameId
	page.resetMemory()
	page.pageId = newPageId
	page.pinCount = 1
	return page, nil
}

// UnpinPage drops one pin, recording the caller's dirty hint. The frame
// becomes an eviction candidate when its last pin is dropped. Returns false
// when the pin count was already zero; unpinning a non-resident page is a
// harmless no-op.
func (bpm *BufferPoolManager) UnpinPage(pageId common.PageId, isDirty bool) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Trying to unpin page %d, but the page is not in the buffer.", pageId)
		return true
	}
	page := &bpm.pages[frameId]
	if page.pinCount == 0 {
		log.Warnf("Trying to unpin page %d, but page's pin count is zero.", pageId)
		return false
	}
	page.isDirty = page.isDirty || isDirty
	page.pinCount--
	if page.pinCount == 0 {
		bpm.replacer.Unpin(frameId)
	}
	return true
}

// FlushPage writes the resident buffer back to the block device. Returns
// false when the page is not resident or the write fails.
func (bpm *BufferPoolManager) FlushPage(pageId common.PageId) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Page %d is not in buffer. Cannot flush page.", pageId)
		return false
	}
	return bpm.flushFrame(&bpm.pages[frameId])
}

// FlushAllPages writes every resident page back to the block device.
func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	for _, frameId := range bpm.pageTable {
		page := &bpm.pages[frameId]
		if !bpm.flushFrame(page) {
			return fmt.Errorf("Cannot flush page %d.", page.pageId)
		}
	}
	return nil
}

func (bpm *BufferPoolManager) flushFrame(page *Page) bool {
	if err := bpm.diskManager.WritePage(page.pageId, page.data); err != nil {
		log.WithError(err).Errorf("Cannot flush page %d.", page.pageId)
		return false
	}
	page.isDirty = false
	poolFlushes.Inc()
	return true
}

// DeletePage deallocates pageId on the block device and recycles its frame.
// Returns ErrPagePinned while the page is still in use; deleting a
// non-resident page only deallocates the identifier.
func (bpm *BufferPoolManager) DeletePage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		return bpm.diskManager.DeallocatePage(pageId)
	}
	page := &bpm.pages[frameId]
	if page.pinCount > 0 {
		return fmt.Errorf("cannot delete page %d: %w", pageId, ErrPagePinned)
	}
	if err := bpm.diskManager.DeallocatePage(pageId); err != nil {
		return err
	}
	page.pageId = common.InvalidPageId
	page.isDirty = false
	page.pinCount = 0
	page.resetMemory()
	delete(bpm.pageTable, pageId)
	bpm.replacer.Pin(frameId)
	bpm.freeList.PushBack(frameId)
	return nil
}

// findAvailableFrame prefers the free list so cold frames stay cold; only
// when it is empty does the replacer give up a victim.
func (bpm *BufferPoolManager) findAvailableFrame() (common.FrameId, bool) {
	if bpm.freeList.Len() > 0 {
		elem := bpm.freeList.Front()
		frameId := elem.Value.(common.FrameId)
		bpm.freeList.Remove(elem)
		return frameId, true
	}
	frameId, found := bpm.replacer.Victim()
	if found {
		poolEvictions.Inc()
	}
	return frameId, found
}
