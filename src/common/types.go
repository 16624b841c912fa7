package common

// PageId names a page on the block device. Identifiers are assigned by the
// disk manager and stay unique for the lifetime of the database file.
type PageId int64

// FrameId names a slot in the buffer pool's frame array.
type FrameId int

// LSN is the log sequence number stamped into page headers. Opaque at this
// layer; the log manager owns its meaning.
type LSN int32

const (
	InvalidPageId = PageId(-1)
	InvalidLSN    = LSN(-1)
)
