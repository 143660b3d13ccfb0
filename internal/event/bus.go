package event

import (
	"slices"
	"sort"
)

// DefaultPriority is the bucket used when On is called without a priority.
const DefaultPriority = 1

// Handler receives the positional arguments passed to Trigger.
type Handler func(args ...any)

// Token identifies a single registration returned by On.
type Token uint64

type listener struct {
	token Token
	fn    Handler
}

type bucket struct {
	priority  int
	listeners []listener
}

// Bus is a named publish/subscribe dispatcher. Listeners are grouped into
// priority buckets that fire in ascending order; within a bucket they fire in
// registration order. A Bus is not safe for concurrent use: it belongs to the
// goroutine that drives the frame loop.
type Bus struct {
	events map[string][]*bucket
	next   Token
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{events: make(map[string][]*bucket)}
}

// On registers fn for name. The optional priority selects the bucket and
// defaults to DefaultPriority. Registering the same function twice yields two
// independent registrations.
func (b *Bus) On(name string, fn Handler, priority ...int) Token {
	if fn == nil {
		return 0
	}
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	b.next++
	tok := b.next

	buckets := b.events[name]
	idx := sort.Search(len(buckets), func(i int) bool { return buckets[i].priority >= p })
	if idx < len(buckets) && buckets[idx].priority == p {
		buckets[idx].listeners = append(buckets[idx].listeners, listener{token: tok, fn: fn})
		return tok
	}
	nb := &bucket{priority: p, listeners: []listener{{token: tok, fn: fn}}}
	b.events[name] = slices.Insert(buckets, idx, nb)
	return tok
}

// Off removes every listener registered for name.
func (b *Bus) Off(name string) {
	delete(b.events, name)
}

// Remove drops the single registration identified by tok, scanning across
// buckets. It reports whether a registration was found.
func (b *Bus) Remove(name string, tok Token) bool {
	buckets := b.events[name]
	for i, bk := range buckets {
		for j, l := range bk.listeners {
			if l.token != tok {
				continue
			}
			bk.listeners = slices.Delete(bk.listeners, j, j+1)
			if len(bk.listeners) == 0 {
				b.dropBucket(name, i)
			}
			return true
		}
	}
	return false
}

func (b *Bus) dropBucket(name string, i int) {
	buckets := slices.Delete(b.events[name], i, i+1)
	if len(buckets) == 0 {
		delete(b.events, name)
		return
	}
	b.events[name] = buckets
}

// Trigger synchronously invokes every listener registered for name. The
// listener set is captured before the first call, so listeners added or
// removed while dispatching only take effect on the next Trigger.
func (b *Bus) Trigger(name string, args ...any) {
	buckets := b.events[name]
	if len(buckets) == 0 {
		return
	}
	n := 0
	for _, bk := range buckets {
		n += len(bk.listeners)
	}
	snapshot := make([]Handler, 0, n)
	for _, bk := range buckets {
		for _, l := range bk.listeners {
			snapshot = append(snapshot, l.fn)
		}
	}
	for _, fn := range snapshot {
		fn(args...)
	}
}

// Count returns the number of registrations for name.
func (b *Bus) Count(name string) int {
	n := 0
	for _, bk := range b.events[name] {
		n += len(bk.listeners)
	}
	return n
}
