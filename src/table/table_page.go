package table

import (
	"math"
	"unsafe"

	"pagedb/src/common"
)

// TablePage is a slotted record page: a slot directory grows down from the
// header while record bytes grow up from the end of the page. A slot whose
// record has zero length marks a deleted record; its slot number may be
// reused by a later insert.
type TablePage struct {
	pageId     common.PageId
	pageSize   int32
	numRecords int32

	// Start of the slot directory.
	ptr struct{}
}

type recordSlot struct {
	offset int32
}

const recordSlotSize = int32(unsafe.Sizeof(recordSlot{}))

func createTablePage(data []byte) *TablePage {
	return (*TablePage)(unsafe.Pointer(&data[0]))
}

func (tp *TablePage) init(pageId common.PageId, pageSize int32) {
	tp.pageId = pageId
	tp.pageSize = pageSize
	tp.numRecords = 0
}

func (tp *TablePage) getSlots() []recordSlot {
	return (*(*[math.MaxInt32]recordSlot)(unsafe.Pointer(&tp.ptr)))[:int(tp.numRecords)]
}

func (tp *TablePage) getRawData() []byte {
	return (*[math.MaxInt32]byte)(unsafe.Pointer(tp))[:int(tp.pageSize)]
}

func (tp *TablePage) getRecordOffset(i int) int32 {
	return tp.getSlots()[i].offset
}

// getRecordSize derives a record's length from the offset of its left
// neighbor in the slot directory; record i-1's bytes sit directly above
// record i's.
func (tp *TablePage) getRecordSize(i int) int32 {
	endOffset := tp.pageSize
	if i > 0 {
		endOffset = tp.getRecordOffset(i - 1)
	}
	return endOffset - tp.getRecordOffset(i)
}

func (tp *TablePage) getRecordStartOffset() int32 {
	if tp.numRecords == 0 {
		return tp.pageSize
	}
	return tp.getRecordOffset(int(tp.numRecords) - 1)
}

func (tp *TablePage) getFreeSpace() int32 {
	fixedHeaderSize := int32(unsafe.Offsetof(tp.ptr))
	directorySize := recordSlotSize * tp.numRecords
	return tp.getRecordStartOffset() - (fixedHeaderSize + directorySize)
}

func (tp *TablePage) getFreeSpaceForInsert() int32 {
	return tp.getFreeSpace() - recordSlotSize
}

// getInsertIndex returns the first slot whose record was deleted, or the
// slot count if every slot is live.
func (tp *TablePage) getInsertIndex() int {
	prevRecordOffset := tp.pageSize
	for i := 0; i < int(tp.numRecords); i++ {
		offset := tp.getRecordOffset(i)
		if offset == prevRecordOffset {
			return i
		}
		prevRecordOffset = offset
	}
	return int(tp.numRecords)
}

// moveBackRecords shifts the records at index > startIndex by size bytes to
// open (or close, for negative size) a gap. Returns the start offset of the
// gap.
func (tp *TablePage) moveBackRecords(startIndex int, size int) int {
	if startIndex == int(tp.numRecords) {
		return int(tp.getRecordStartOffset()) - size
	}
	copyStartOffset := int(tp.getRecordStartOffset())
	copyEndOffset := int(tp.getRecordOffset(startIndex))
	if copyStartOffset != copyEndOffset {
		buf := tp.getRawData()
		copy(buf[copyStartOffset-size:copyEndOffset-size], buf[copyStartOffset:copyEndOffset])
	}

	slots := tp.getSlots()
	for i := startIndex + 1; i < int(tp.numRecords); i++ {
		slots[i].offset -= int32(size)
	}
	return copyEndOffset - size
}

func (tp *TablePage) Insert(record []byte) (common.RID, bool) {
	if tp.getFreeSpace() < recordSlotSize+int32(len(record)) {
		return common.RID{}, false
	}
	recordLen := len(record)

	// Reuse a deleted slot when one exists.
	index := tp.getInsertIndex()

	newRecordStartOffset := tp.moveBackRecords(index, recordLen)

	buf := tp.getRawData()
	copy(buf[newRecordStartOffset:newRecordStartOffset+recordLen], record)

	if index == int(tp.numRecords) {
		tp.numRecords += 1
	}
	tp.getSlots()[index] = recordSlot{offset: int32(newRecordStartOffset)}
	return common.RID{
		PageId:  tp.pageId,
		SlotNum: int32(index),
	}, true
}

func (tp *TablePage) Delete(rid common.RID) bool {
	slotNum := int(rid.SlotNum)
	if slotNum >= int(tp.numRecords) {
		return false
	}
	size := tp.getRecordSize(slotNum)
	if size == 0 { // previously deleted
		return false
	}
	tp.moveBackRecords(slotNum, -int(size))

	// The emptied slot keeps the offset of its left neighbor, which is what
	// marks it deleted.
	tp.getSlots()[slotNum].offset += size
	return true
}

func (tp *TablePage) getRecord(i int) []byte {
	offset := tp.getRecordOffset(i)
	endOffset := tp.pageSize
	if i > 0 {
		endOffset = tp.getRecordOffset(i - 1)
	}
	return tp.getRawData()[offset:endOffset]
}

func (tp *TablePage) Get(rid common.RID) ([]byte, bool) {
	slotNum := int(rid.SlotNum)
	if slotNum >= int(tp.numRecords) {
		return nil, false
	}
	data := tp.getRecord(slotNum)
	if len(data) == 0 {
		return nil, false
	}
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, true
}
