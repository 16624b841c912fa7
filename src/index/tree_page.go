package index

import (
	"unsafe"

	"pagedb/src/common"
)

type pageKind int32

const (
	invalidPageKind pageKind = iota
	internalPageKind
	leafPageKind
)

// TreePage is the header prefix shared by internal and leaf pages. It is
// interpreted in place over the first bytes of a frame's buffer; the body
// that follows depends on the kind discriminator.
type TreePage struct {
	kind         pageKind
	lsn          common.LSN
	size         int32
	maxSize      int32
	parentPageId common.PageId
	pageId       common.PageId
}

// TreePageFrom reinterprets a frame buffer as a tree page header. Callers
// inspect the kind and then cast to the concrete page type.
func TreePageFrom(data []byte) *TreePage {
	return (*TreePage)(unsafe.Pointer(&data[0]))
}

func (tp *TreePage) IsLeafPage() bool { return tp.kind == leafPageKind }

func (tp *TreePage) IsInternalPage() bool { return tp.kind == internalPageKind }

// IsRootPage reports whether this page has no parent.
func (tp *TreePage) IsRootPage() bool { return tp.parentPageId == common.InvalidPageId }

func (tp *TreePage) PageId() common.PageId { return tp.pageId }

func (tp *TreePage) ParentPageId() common.PageId { return tp.parentPageId }

func (tp *TreePage) SetParentPageId(pageId common.PageId) { tp.parentPageId = pageId }

func (tp *TreePage) Size() int { return int(tp.size) }

func (tp *TreePage) SetSize(size int) { tp.size = int32(size) }

func (tp *TreePage) IncreaseSize(delta int) { tp.size += int32(delta) }

func (tp *TreePage) MaxSize() int { return int(tp.maxSize) }

// MinSize is the merge threshold: a non-root page below it must borrow from
// or merge with a sibling.
func (tp *TreePage) MinSize() int { return (int(tp.maxSize) + 1) / 2 }

func (tp *TreePage) LSN() common.LSN { return tp.lsn }

func (tp *TreePage) SetLSN(lsn common.LSN) { tp.lsn = lsn }

// CanInsert reports whether one more entry fits, counting the transient
// overflow slot that exists only between an insert and the split it forces.
func (tp *TreePage) CanInsert() bool { return tp.size <= tp.maxSize }

// CanInsertWithoutSplit reports whether n more entries fit within max size.
func (tp *TreePage) CanInsertWithoutSplit(n int) bool {
	return int(tp.size)+n <= int(tp.maxSize)
}

// NeedToSplit reports whether the page has overflowed and must be split.
func (tp *TreePage) NeedToSplit() bool { return tp.size > tp.maxSize }

func (tp *TreePage) IsEmpty() bool { return tp.size == 0 }

// IsUnderflow reports whether a non-root page has fallen below the merge
// threshold.
func (tp *TreePage) IsUnderflow() bool { return int(tp.size) < tp.MinSize() }

func (tp *TreePage) init(kind pageKind, pageId, parentId common.PageId, maxSize int) {
	tp.kind = kind
	tp.lsn = common.InvalidLSN
	tp.size = 0
	tp.maxSize = int32(maxSize)
	tp.parentPageId = parentId
	tp.pageId = pageId
}
