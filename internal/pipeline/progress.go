package pipeline

import "sync/atomic"

// Progress is a stage's monotonic position counter. It exposes the
// Count() int64 method gitlab.com/tozd/go/x's Ticker requires of its
// counter argument, the same interface peer-db's own local counter types
// (cmd/prepare/embed.go's counter, cmd/wikipedia/prepare.go's x.Counter)
// satisfy to report progress through that package.
type Progress struct {
	position int64
}

func (p *Progress) Count() int64 {
	return atomic.LoadInt64(&p.position)
}

func (p *Progress) Add(n int64) {
	atomic.AddInt64(&p.position, n)
}

// IDCounter is the shared document_id generator: atomically incremented,
// so it guarantees uniqueness but not contiguity across retries, per
// spec.md §5.
type IDCounter struct {
	value int64
}

func (c *IDCounter) Next() int64 {
	return atomic.AddInt64(&c.value, 1)
}
