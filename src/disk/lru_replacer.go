package disk

import (
	"container/list"
	"sync"

	"pagedb/src/common"
)

// LRUReplacer keeps unpinned frames in least-recently-unpinned order. The
// back of the list is the victim end; Unpin pushes to the front.
type LRUReplacer struct {
	dataList list.List
	index    map[common.FrameId]*list.Element
	mu       sync.Mutex
}

func NewLRUReplacer() *LRUReplacer {
	return &LRUReplacer{
		index: make(map[common.FrameId]*list.Element),
	}
}

func (lru *LRUReplacer) Victim() (common.FrameId, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if len(lru.index) == 0 {
		return 0, false
	}
	elem := lru.dataList.Back()
	frameId := elem.Value.(common.FrameId)
	lru.dataList.Remove(elem)
	delete(lru.index, frameId)
	return frameId, true
}

func (lru *LRUReplacer) Pin(frameId common.FrameId) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.index[frameId]; ok {
		lru.dataList.Remove(elem)
		delete(lru.index, frameId)
	}
}

func (lru *LRUReplacer) Unpin(frameId common.FrameId) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	// Repeated unpins must not duplicate the frame or move its position.
	if _, ok := lru.index[frameId]; ok {
		return
	}
	lru.dataList.PushFront(frameId)
	lru.index[frameId] = lru.dataList.Front()
}

func (lru *LRUReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return len(lru.index)
}
