package disk

import (
	"math"
	"unsafe"

	"pagedb/src/common"
)

// headerPageInfo is the layout of page 0 of the database file: the next
// identifier to hand out plus a list of deallocated identifiers available for
// reuse. It is interpreted in place over the header page buffer.
//
// todo: use a bitmask instead of a list of page ids
type headerPageInfo struct {
	nextPageId   common.PageId
	numFreePages int32

	// Start of the free page id list.
	ptr struct{}
}

func createHeaderPageInfo(data []byte) *headerPageInfo {
	return (*headerPageInfo)(unsafe.Pointer(&data[0]))
}

func (hdr *headerPageInfo) init() {
	hdr.nextPageId = 1
	hdr.numFreePages = 0
}

func (hdr *headerPageInfo) getFreeList() []common.PageId {
	return (*(*[math.MaxInt32]common.PageId)(unsafe.Pointer(&hdr.ptr)))[:int(hdr.numFreePages)]
}

func (hdr *headerPageInfo) get(i int32) common.PageId {
	return hdr.getFreeList()[i]
}

func (hdr *headerPageInfo) hasFreePage() bool {
	return hdr.numFreePages > 0
}

func (hdr *headerPageInfo) popFreePage() common.PageId {
	freeList := hdr.getFreeList()
	ret := freeList[0]
	for i := int32(1); i < hdr.numFreePages; i++ {
		freeList[i-1] = freeList[i]
	}
	hdr.numFreePages -= 1
	return ret
}

func (hdr *headerPageInfo) pushFreePage(pageId common.PageId) {
	hdr.numFreePages += 1
	hdr.getFreeList()[hdr.numFreePages-1] = pageId
}
