package common

import "fmt"

// RID addresses a record: the page it lives on plus its slot within that
// page. SlotNum is fixed-width because RIDs are stored on index pages.
type RID struct {
	PageId  PageId
	SlotNum int32
}

func (rid *RID) String() string {
	return fmt.Sprintf("[Page id %d, slot num %d]", rid.PageId, rid.SlotNum)
}
