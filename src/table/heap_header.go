package table

import (
	"math"
	"unsafe"

	"pagedb/src/common"
)

type pageInfo struct {
	pageId    common.PageId
	leftSpace int32
}

// heapFileHeader is the directory page of a table heap: one entry per data
// page with its remaining free space.
type heapFileHeader struct {
	numPages int32

	// Start of the pageInfo list.
	ptr struct{}
}

func createHeapFileHeader(data []byte) *heapFileHeader {
	return (*heapFileHeader)(unsafe.Pointer(&data[0]))
}

func (hdr *heapFileHeader) init() {
	hdr.numPages = 0
}

func (hdr *heapFileHeader) getPageInfoList() []pageInfo {
	return (*(*[math.MaxInt32]pageInfo)(unsafe.Pointer(&hdr.ptr)))[:int(hdr.numPages)]
}

func (hdr *heapFileHeader) getPageInfo(pageId common.PageId) (pageInfo, bool) {
	for _, info := range hdr.getPageInfoList() {
		if info.pageId == pageId {
			return info, true
		}
	}
	return pageInfo{}, false
}

func (hdr *heapFileHeader) setPageInfo(pageId common.PageId, info pageInfo) bool {
	pageInfoList := hdr.getPageInfoList()
	for i := range pageInfoList {
		if pageInfoList[i].pageId == pageId {
			pageInfoList[i] = info
			return true
		}
	}
	return false
}

func (hdr *heapFileHeader) pushPageInfo(info pageInfo) {
	hdr.numPages += 1
	pageInfoList := hdr.getPageInfoList()
	pageInfoList[int(hdr.numPages)-1] = info
}

func (hdr *heapFileHeader) removePageInfo(pageId common.PageId) bool {
	pageInfoList := hdr.getPageInfoList()
	idx := -1
	for i := range pageInfoList {
		if pageInfoList[i].pageId == pageId {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	copy(pageInfoList[idx:], pageInfoList[idx+1:])
	hdr.numPages -= 1
	return true
}
