// pkg/chunk/page.go

package chunk

import (
	"runtime"
	"sync/atomic"
)

// Page is a refcounted byte region. A mapped page owns an OS mapping which
// is unmapped when the last reference is released; Data is the requested
// window inside that mapping.
type Page struct {
	refs    int32
	mapping []byte
	Data    []byte
}

func newMappedPage(mapping, data []byte) *Page {
	page := &Page{refs: 1, mapping: mapping, Data: data}
	runtime.SetFinalizer(page, func(p *Page) {
		refCnt := atomic.LoadInt32(&p.refs)
		if refCnt != 0 {
			logger.Errorf("refcount of page %p is not zero: %d", p, refCnt)
			if refCnt > 0 {
				p.unmap()
			}
		}
	})
	return page
}

// Acquire increase the refcount
func (p *Page) Acquire() {
	atomic.AddInt32(&p.refs, 1)
}

// Release decreases the refcount
func (p *Page) Release() {
	if atomic.AddInt32(&p.refs, -1) == 0 {
		p.unmap()
		p.Data = nil
	}
}

// Released reports whether the last reference is gone.
func (p *Page) Released() bool {
	return atomic.LoadInt32(&p.refs) <= 0
}

func (p *Page) unmap() {
	if p.mapping == nil {
		return
	}
	if err := munmap(p.mapping); err != nil {
		logger.Warnf("unmap %d bytes: %s", len(p.mapping), err)
	}
	p.mapping = nil
}
