package disk

import (
	"sync"

	"pagedb/src/common"
)

// Page is one frame of the buffer pool: a page-sized buffer plus the
// bookkeeping the pool needs to decide residency and eviction. The embedded
// RWMutex latches the buffer; the pool latch must never be acquired while a
// frame latch is held.
type Page struct {
	data     []byte
	pageId   common.PageId
	pinCount int
	isDirty  bool
	sync.RWMutex
}

func (p *Page) Data() []byte { return p.data }

func (p *Page) PageId() common.PageId { return p.pageId }

func (p *Page) PinCount() int { return p.pinCount }

func (p *Page) IsDirty() bool { return p.isDirty }

func (p *Page) resetMemory() {
	for i := range p.data {
		p.data[i] = 0
	}
}
