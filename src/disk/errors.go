package disk

import "errors"

var (
	// ErrPoolFull is returned by FetchPage and NewPage when every frame is
	// pinned and no victim can be found. Callers retry or escalate.
	ErrPoolFull = errors.New("buffer pool is full")

	// ErrPagePinned is returned by DeletePage when the page still has pins.
	ErrPagePinned = errors.New("page is still pinned")
)
