package disk

import (
	"fmt"
	"os"
	"sync"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"pagedb/src/common"
)

// PageSize is the unit of disk I/O and of caching. It equals the directio
// block size so page buffers can be handed to O_DIRECT reads and writes.
const PageSize = 4096

// DiskManager is the block device: it reads and writes fixed-size pages by
// identifier and allocates/deallocates identifiers. Page 0 of the backing
// file is the allocation header; user pages start at 1.
type DiskManager struct {
	fileName      string
	header        *headerPageInfo
	headerRawData []byte

	fi *os.File
	mu sync.Mutex
}

func NewDiskManager(fileName string) *DiskManager {
	fi, err := directio.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_SYNC, 0644)
	if err != nil {
		log.WithError(err).Fatalf("Cannot open file.")
	}
	dm := &DiskManager{
		fileName: fileName,
		fi:       fi,
	}
	size, err := dm.getFileSize()
	if err != nil {
		log.WithError(err).Fatalf("Cannot get file size.")
	}
	dm.headerRawData = directio.AlignedBlock(PageSize)
	dm.header = createHeaderPageInfo(dm.headerRawData)
	if size == 0 { // New file
		dm.header.init()
		if err := dm.writeHeaderPage(); err != nil {
			log.WithError(err).Fatalf("Write header page failed.")
		}
	} else {
		if err := dm.readPageData(common.PageId(0), dm.headerRawData); err != nil {
			log.WithError(err).Fatalf("Read header page failed.")
		}
	}
	return dm
}

func (dm *DiskManager) Close() error {
	return dm.fi.Close()
}

// AllocatePage reserves a fresh page identifier. Deallocated identifiers are
// reused before the file is extended.
func (dm *DiskManager) AllocatePage() (common.PageId, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	var pageId common.PageId
	if dm.header.hasFreePage() {
		pageId = dm.header.popFreePage()
	} else {
		pageId = dm.header.nextPageId
		zeroes := directio.AlignedBlock(PageSize)
		if err := dm.writePageData(pageId, zeroes); err != nil {
			return common.InvalidPageId, err
		}
		dm.header.nextPageId++
	}
	if err := dm.writeHeaderPage(); err != nil {
		return common.InvalidPageId, err
	}
	return pageId, nil
}

// DeallocatePage releases an identifier for reuse. The page's bytes stay on
// disk until the identifier is allocated again.
func (dm *DiskManager) DeallocatePage(pageId common.PageId) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.header.pushFreePage(pageId)
	return dm.writeHeaderPage()
}

// ReadPage fills data with the page's current on-disk bytes. data must be a
// full page.
func (dm *DiskManager) ReadPage(pageId common.PageId, data []byte) error {
	return dm.readPageData(pageId, data)
}

// WritePage persists data as the page's bytes.
func (dm *DiskManager) WritePage(pageId common.PageId, data []byte) error {
	return dm.writePageData(pageId, data)
}

func (dm *DiskManager) getFileSize() (int64, error) {
	stat, err := dm.fi.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (dm *DiskManager) readPageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("Page id is negative.")
	}
	if len(data) != PageSize {
		return fmt.Errorf("Buffer is not exactly one page.")
	}
	offset := int64(pageId) * PageSize
	size, err := dm.getFileSize()
	if err != nil {
		return err
	}
	if offset >= size {
		return fmt.Errorf("Read past end of file.")
	}
	if n, err := dm.fi.ReadAt(data, offset); err != nil {
		return err
	} else if n < PageSize {
		return fmt.Errorf("Read less than a page.")
	}
	return nil
}

func (dm *DiskManager) writePageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("Page id is negative.")
	}
	offset := int64(pageId) * PageSize
	if _, err := dm.fi.WriteAt(data, offset); err != nil {
		return err
	}
	return nil
}

func (dm *DiskManager) writeHeaderPage() error {
	return dm.writePageData(common.PageId(0), dm.headerRawData)
}
