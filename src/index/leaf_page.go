package index

import (
	"fmt"
	"unsafe"

	"pagedb/src/common"
	"pagedb/src/disk"
)

// LeafEntry is one (key, record id) slot of a leaf page.
type LeafEntry[K Key] struct {
	Key   K
	Value common.RID
}

// LeafPage is the page-local view of a B+ tree leaf: the shared header, the
// right-sibling pointer, and a sorted fixed-stride array of LeafEntry. All
// mutations assume the caller holds the frame's write latch; sibling chain
// updates assume any sibling touched is latched by the caller too.
type LeafPage[K Key] struct {
	TreePage
	nextPageId common.PageId

	// Start of the entry array.
	ptr struct{}
}

// LeafPageFrom reinterprets a frame buffer as a leaf page.
func LeafPageFrom[K Key](data []byte) *LeafPage[K] {
	return (*LeafPage[K])(unsafe.Pointer(&data[0]))
}

// LeafPageCapacity is the largest max size a leaf page of this key width can
// be initialized with, leaving one slot for transient overflow.
func LeafPageCapacity[K Key]() int {
	headerSize := int(unsafe.Sizeof(LeafPage[K]{}))
	stride := int(unsafe.Sizeof(LeafEntry[K]{}))
	return (disk.PageSize-headerSize)/stride - 1
}

// Init stamps the header of a freshly allocated leaf page.
func (p *LeafPage[K]) Init(pageId, parentId common.PageId, maxSize int) {
	p.TreePage.init(leafPageKind, pageId, parentId, maxSize)
	p.nextPageId = common.InvalidPageId
}

func (p *LeafPage[K]) entries() []LeafEntry[K] {
	return unsafe.Slice((*LeafEntry[K])(unsafe.Pointer(&p.ptr)), int(p.maxSize)+1)
}

func (p *LeafPage[K]) NextPageId() common.PageId { return p.nextPageId }

func (p *LeafPage[K]) SetNextPageId(pageId common.PageId) { p.nextPageId = pageId }

func (p *LeafPage[K]) KeyAt(index int) K {
	return p.entries()[index].Key
}

func (p *LeafPage[K]) GetItem(index int) LeafEntry[K] {
	return p.entries()[index]
}

// KeyIndex returns the smallest index whose key is >= key, or the size when
// every key is smaller.
func (p *LeafPage[K]) KeyIndex(key K, cmp Comparator[K]) int {
	entries := p.entries()
	lo, hi := 0, p.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(entries[mid].Key, key) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Lookup returns the record id stored under key, if present.
func (p *LeafPage[K]) Lookup(key K, cmp Comparator[K]) (common.RID, bool) {
	entries := p.entries()
	index := p.KeyIndex(key, cmp)
	if index >= p.Size() || cmp(entries[index].Key, key) != 0 {
		return common.RID{}, false
	}
	return entries[index].Value, true
}

// Insert places (key, value) at its sorted position and returns the new
// size. Equal keys are accepted; their relative order is unspecified, so a
// uniqueness policy belongs to the tree layer.
func (p *LeafPage[K]) Insert(key K, value common.RID, cmp Comparator[K]) int {
	if !p.CanInsert() {
		panic(fmt.Sprintf("leaf page %d has no room for insert", p.pageId))
	}
	entries := p.entries()
	size := p.Size()
	index := p.KeyIndex(key, cmp)
	for i := size; i > index; i-- {
		entries[i] = entries[i-1]
	}
	entries[index].Key = key
	entries[index].Value = value
	p.IncreaseSize(1)
	return size + 1
}

// RemoveAndDeleteRecord deletes key's entry if present and returns the
// resulting size. Absent keys are a no-op.
func (p *LeafPage[K]) RemoveAndDeleteRecord(key K, cmp Comparator[K]) int {
	entries := p.entries()
	size := p.Size()
	index := p.KeyIndex(key, cmp)
	if index >= size || cmp(entries[index].Key, key) != 0 {
		return size
	}
	copy(entries[index:size-1], entries[index+1:size])
	p.IncreaseSize(-1)
	return size - 1
}

// MoveHalfTo moves the upper half of an overflowed leaf into an empty
// recipient and splices the recipient into the sibling chain directly after
// this leaf.
func (p *LeafPage[K]) MoveHalfTo(recipient *LeafPage[K]) {
	if !p.NeedToSplit() {
		panic(fmt.Sprintf("leaf page %d is not overflowed", p.pageId))
	}
	if !recipient.IsEmpty() {
		panic(fmt.Sprintf("split recipient %d is not empty", recipient.pageId))
	}
	size := p.Size()
	half := size / 2
	recipient.CopyNFrom(p.entries()[half:size])
	p.SetSize(half)
	recipient.SetNextPageId(p.nextPageId)
	p.SetNextPageId(recipient.pageId)
}

// CopyNFrom appends items in order.
func (p *LeafPage[K]) CopyNFrom(items []LeafEntry[K]) {
	if !p.CanInsertWithoutSplit(len(items)) {
		panic(fmt.Sprintf("leaf page %d cannot absorb %d entries", p.pageId, len(items)))
	}
	entries := p.entries()
	base := p.Size()
	for i, item := range items {
		entries[base+i] = item
	}
	p.IncreaseSize(len(items))
}

// MoveAllTo merges this leaf into its left sibling and bypasses it in the
// sibling chain.
func (p *LeafPage[K]) MoveAllTo(recipient *LeafPage[K]) {
	recipient.CopyNFrom(p.entries()[:p.Size()])
	p.SetSize(0)
	recipient.SetNextPageId(p.nextPageId)
}

// MoveFirstToEndOf shifts this leaf's smallest entry onto the tail of its
// left sibling. The caller promotes the donor's new first key into the
// parent separator.
func (p *LeafPage[K]) MoveFirstToEndOf(recipient *LeafPage[K]) {
	if p.IsEmpty() {
		panic(fmt.Sprintf("leaf page %d is empty", p.pageId))
	}
	entries := p.entries()
	size := p.Size()
	item := entries[0]
	copy(entries[0:size-1], entries[1:size])
	p.IncreaseSize(-1)
	recipient.CopyLastFrom(item)
}

// CopyLastFrom appends one entry.
func (p *LeafPage[K]) CopyLastFrom(item LeafEntry[K]) {
	if !p.CanInsertWithoutSplit(1) {
		panic(fmt.Sprintf("leaf page %d is full", p.pageId))
	}
	p.entries()[p.Size()] = item
	p.IncreaseSize(1)
}

// MoveLastToFrontOf shifts this leaf's largest entry to the head of its
// right sibling. The moved key becomes the caller's new parent separator.
func (p *LeafPage[K]) MoveLastToFrontOf(recipient *LeafPage[K]) {
	if p.IsEmpty() {
		panic(fmt.Sprintf("leaf page %d is empty", p.pageId))
	}
	item := p.entries()[p.Size()-1]
	p.IncreaseSize(-1)
	recipient.CopyFirstFrom(item)
}

// CopyFirstFrom prepends one entry, shifting the rest right by one.
func (p *LeafPage[K]) CopyFirstFrom(item LeafEntry[K]) {
	if !p.CanInsertWithoutSplit(1) {
		panic(fmt.Sprintf("leaf page %d is full", p.pageId))
	}
	entries := p.entries()
	size := p.Size()
	for i := size; i >= 1; i-- {
		entries[i] = entries[i-1]
	}
	entries[0] = item
	p.IncreaseSize(1)
}
