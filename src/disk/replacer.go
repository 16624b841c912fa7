package disk

import "pagedb/src/common"

// Replacer tracks the frames that are eviction candidates and picks victims.
type Replacer interface {
	// Victim removes and returns the next frame to evict. Reports false when
	// there are no candidates.
	Victim() (common.FrameId, bool)
	// Pin removes a frame from the candidate set. No-op if absent.
	Pin(common.FrameId)
	// Unpin adds a frame to the candidate set. No-op if already present.
	Unpin(common.FrameId)
	Size() int
}
