package index

import (
	"fmt"
	"unsafe"

	log "github.com/sirupsen/logrus"

	"pagedb/src/common"
	"pagedb/src/disk"
)

// InternalEntry is one (separator key, child) slot of an internal page. The
// entry at index 0 carries the leftmost child; its key is a dummy and is
// never consulted during lookup.
type InternalEntry[K Key] struct {
	Key   K
	Child common.PageId
}

// InternalPage is the page-local view of a B+ tree internal node: the shared
// header followed by a fixed-stride array of InternalEntry. All mutations
// assume the caller holds the frame's write latch.
type InternalPage[K Key] struct {
	TreePage

	// Start of the entry array.
	ptr struct{}
}

// InternalPageFrom reinterprets a frame buffer as an internal page.
func InternalPageFrom[K Key](data []byte) *InternalPage[K] {
	return (*InternalPage[K])(unsafe.Pointer(&data[0]))
}

// InternalPageCapacity is the largest max size an internal page of this key
// width can be initialized with, leaving one slot for transient overflow.
func InternalPageCapacity[K Key]() int {
	headerSize := int(unsafe.Sizeof(InternalPage[K]{}))
	stride := int(unsafe.Sizeof(InternalEntry[K]{}))
	return (disk.PageSize-headerSize)/stride - 1
}

// Init stamps the header of a freshly allocated internal page.
func (p *InternalPage[K]) Init(pageId, parentId common.PageId, maxSize int) {
	p.TreePage.init(internalPageKind, pageId, parentId, maxSize)
}

func (p *InternalPage[K]) entries() []InternalEntry[K] {
	return unsafe.Slice((*InternalEntry[K])(unsafe.Pointer(&p.ptr)), int(p.maxSize)+1)
}

func (p *InternalPage[K]) KeyAt(index int) K {
	return p.entries()[index].Key
}

func (p *InternalPage[K]) SetKeyAt(index int, key K) {
	p.entries()[index].Key = key
}

func (p *InternalPage[K]) ValueAt(index int) common.PageId {
	return p.entries()[index].Child
}

// ValueIndex returns the index whose child equals value, or -1.
func (p *InternalPage[K]) ValueIndex(value common.PageId) int {
	entries := p.entries()
	for i := 0; i < p.Size(); i++ {
		if entries[i].Child == value {
			return i
		}
	}
	return -1
}

// Lookup returns the child whose subtree may contain key: the child left of
// the first separator greater than key. Separators live at indices [1, size).
func (p *InternalPage[K]) Lookup(key K, cmp Comparator[K]) common.PageId {
	entries := p.entries()
	lo, hi := 1, p.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(entries[mid].Key, key) > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return entries[lo-1].Child
}

// PopulateNewRoot seeds a new root after the old root split: the old root
// becomes the leftmost child and newKey separates it from newChild.
func (p *InternalPage[K]) PopulateNewRoot(oldChild common.PageId, newKey K, newChild common.PageId) {
	entries := p.entries()
	entries[0].Child = oldChild
	entries[1].Key = newKey
	entries[1].Child = newChild
	p.SetSize(2)
}

// InsertNodeAfter places (newKey, newChild) immediately after the entry whose
// child equals oldChild and returns the new size.
func (p *InternalPage[K]) InsertNodeAfter(oldChild common.PageId, newKey K, newChild common.PageId) int {
	if !p.CanInsert() {
		panic(fmt.Sprintf("internal page %d has no room for insert", p.pageId))
	}
	index := p.ValueIndex(oldChild)
	if index == -1 {
		panic(fmt.Sprintf("internal page %d has no child %d", p.pageId, oldChild))
	}
	entries := p.entries()
	size := p.Size()
	for i := size; i > index+1; i-- {
		entries[i] = entries[i-1]
	}
	entries[index+1].Key = newKey
	entries[index+1].Child = newChild
	p.IncreaseSize(1)
	return size + 1
}

// Remove closes the gap at index.
func (p *InternalPage[K]) Remove(index int) {
	size := p.Size()
	if index < 0 || index >= size {
		panic(fmt.Sprintf("remove index %d out of range on internal page %d", index, p.pageId))
	}
	entries := p.entries()
	copy(entries[index:size-1], entries[index+1:size])
	p.IncreaseSize(-1)
}

// RemoveAndReturnOnlyChild empties a root that has shrunk to a single child
// and returns that child, the tree's new root.
func (p *InternalPage[K]) RemoveAndReturnOnlyChild() common.PageId {
	if p.Size() != 1 {
		panic(fmt.Sprintf("internal page %d has %d children, expected exactly one", p.pageId, p.Size()))
	}
	child := p.entries()[0].Child
	p.SetSize(0)
	return child
}

// MoveHalfTo moves the upper half of an overflowed page into an empty
// recipient, adopting every moved child.
func (p *InternalPage[K]) MoveHalfTo(recipient *InternalPage[K], bpm *disk.BufferPoolManager) {
	if !p.NeedToSplit() {
		panic(fmt.Sprintf("internal page %d is not overflowed", p.pageId))
	}
	if !recipient.IsEmpty() {
		panic(fmt.Sprintf("split recipient %d is not empty", recipient.pageId))
	}
	size := p.Size()
	half := size / 2
	recipient.CopyNFrom(p.entries()[half:size], bpm)
	p.SetSize(half)
}

// CopyNFrom appends items, adopting each moved child: the child is fetched,
// its parent pointer is rewritten to this page, and it is unpinned dirty.
func (p *InternalPage[K]) CopyNFrom(items []InternalEntry[K], bpm *disk.BufferPoolManager) {
	if !p.CanInsertWithoutSplit(len(items)) {
		panic(fmt.Sprintf("internal page %d cannot absorb %d entries", p.pageId, len(items)))
	}
	entries := p.entries()
	base := p.Size()
	for i, item := range items {
		entries[base+i] = item
		updateParent(bpm, item.Child, p.pageId)
	}
	p.IncreaseSize(len(items))
}

// MoveAllTo merges this page into its left sibling. middleKey is the
// separator lifted from the parent; it replaces the dummy key so the
// recipient stays strictly ordered across the seam.
func (p *InternalPage[K]) MoveAllTo(recipient *InternalPage[K], middleKey K, bpm *disk.BufferPoolManager) {
	size := p.Size()
	entries := p.entries()
	entries[0].Key = middleKey
	recipient.CopyNFrom(entries[:size], bpm)
	p.SetSize(0)
}

// MoveFirstToEndOf shifts this page's first entry onto the tail of its left
// sibling, stamping it with the separator lifted from the parent. After the
// call the donor's dummy slot (KeyAt(0)) holds the key the caller must
// install in the parent as the new separator.
func (p *InternalPage[K]) MoveFirstToEndOf(recipient *InternalPage[K], middleKey K, bpm *disk.BufferPoolManager) {
	if p.IsEmpty() {
		panic(fmt.Sprintf("internal page %d is empty", p.pageId))
	}
	entries := p.entries()
	size := p.Size()
	item := entries[0]
	item.Key = middleKey
	copy(entries[0:size-1], entries[1:size])
	p.IncreaseSize(-1)
	recipient.CopyLastFrom(item, bpm)
}

// CopyLastFrom appends one adopted entry.
func (p *InternalPage[K]) CopyLastFrom(item InternalEntry[K], bpm *disk.BufferPoolManager) {
	if !p.CanInsertWithoutSplit(1) {
		panic(fmt.Sprintf("internal page %d is full", p.pageId))
	}
	p.entries()[p.Size()] = item
	updateParent(bpm, item.Child, p.pageId)
	p.IncreaseSize(1)
}

// MoveLastToFrontOf shifts this page's last entry to the head of its right
// sibling. The recipient's old leftmost child slides to index 1 and takes
// middleKey, the separator lifted from the parent, keeping the dummy-key
// invariant intact. The moved entry's key becomes the caller's new parent
// separator.
func (p *InternalPage[K]) MoveLastToFrontOf(recipient *InternalPage[K], middleKey K, bpm *disk.BufferPoolManager) {
	if p.IsEmpty() {
		panic(fmt.Sprintf("internal page %d is empty", p.pageId))
	}
	item := p.entries()[p.Size()-1]
	p.IncreaseSize(-1)
	recipient.CopyFirstFrom(item, bpm)
	recipient.SetKeyAt(1, middleKey)
}

// CopyFirstFrom prepends one adopted entry, shifting the existing entries
// (dummy slot included) right by one.
func (p *InternalPage[K]) CopyFirstFrom(item InternalEntry[K], bpm *disk.BufferPoolManager) {
	if !p.CanInsertWithoutSplit(1) {
		panic(fmt.Sprintf("internal page %d is full", p.pageId))
	}
	entries := p.entries()
	size := p.Size()
	for i := size; i >= 1; i-- {
		entries[i] = entries[i-1]
	}
	entries[0] = item
	updateParent(bpm, item.Child, p.pageId)
	p.IncreaseSize(1)
}

// updateParent re-parents a child that migrated between internal pages.
// Identifiers, not references, are stored on-page, so adoption goes through
// the buffer pool: fetch, rewrite the header, unpin dirty.
func updateParent(bpm *disk.BufferPoolManager, childPageId, parentPageId common.PageId) {
	page, err := bpm.FetchPage(childPageId)
	if err != nil {
		log.WithError(err).Fatalf("Cannot fetch child page %d to update its parent.", childPageId)
	}
	TreePageFrom(page.Data()).SetParentPageId(parentPageId)
	bpm.UnpinPage(childPageId, true)
}
