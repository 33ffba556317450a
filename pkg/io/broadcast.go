package io

import (
	"errors"
	"sync/atomic"
	"time"
)

const (
	maskReading                = 1 << 63
	defaultBroadcasterRingSize = 32
	// Cameras in this package run at up to 30 fps.
	defaultBroadcasterRingPollDuration = 33 * time.Millisecond
)

var errEmptySource = errors.New("broadcaster: source can't be nil")

type slot[T any] struct {
	data  T
	count uint32
	err   error
}

// ring keeps the last values read from the source. Its state packs a
// reading flag (1 bit), 31 reserved bits and the next count (32 bits); it
// stays the first field so 64-bit atomics are aligned on 32-bit platforms.
type ring[T any] struct {
	state        atomic.Uint64
	slots        []atomic.Pointer[slot[T]]
	pollDuration time.Duration
}

func newRing[T any](size uint, pollDuration time.Duration) *ring[T] {
	return &ring[T]{slots: make([]atomic.Pointer[slot[T]], size), pollDuration: pollDuration}
}

func (r *ring[T]) index(count uint32) int {
	return int(count) % len(r.slots)
}

// acquire elects the caller as the one reader pulling count from the
// source. Everyone else waits for it in get. It returns nil if another
// reader already won.
func (r *ring[T]) acquire(count uint32) func(*slot[T]) {
	state := uint64(count)
	if !r.state.CompareAndSwap(state, state|maskReading) {
		return nil
	}
	return func(s *slot[T]) {
		r.slots[r.index(count)].Store(s)
		r.state.Store(uint64(count + 1))
	}
}

// get returns the value for count, or the oldest newer one if count has
// already been overwritten.
func (r *ring[T]) get(count uint32) *slot[T] {
	for {
		reading := uint64(count) | maskReading
		for r.state.Load() == reading {
			time.Sleep(r.pollDuration)
		}

		if s := r.slots[r.index(count)].Load(); s != nil && s.count == count {
			return s
		}
		count++
	}
}

func (r *ring[T]) lastCount() uint32 {
	return uint32(r.state.Load()) - 1
}

// sourceBox gives every source an identity, so a read that fails because its
// source was swapped out can be told apart from a real failure.
type sourceBox[T any] struct {
	r Reader[T]
}

// Broadcaster is a pull-based broadcaster. Readers can come and go at any
// time and never need to close or notify the broadcaster. The source is
// only read as fast as the fastest reader asks for data.
type Broadcaster[T any] struct {
	source atomic.Pointer[sourceBox[T]]
	buffer *ring[T]
}

// BroadcasterConfig is a config to control broadcaster behaviour
type BroadcasterConfig struct {
	// BufferSize is the number of values kept for late readers. The default
	// value is 32.
	BufferSize uint
	// PollDuration is how long waiting readers sleep between checks for new
	// data. The default value is 33 ms.
	PollDuration time.Duration
}

// NewBroadcaster creates a new broadcaster. Source is expected to drop frames
// when any of the readers is slower than the source.
func NewBroadcaster[T any](source Reader[T], config *BroadcasterConfig) *Broadcaster[T] {
	pollDuration := defaultBroadcasterRingPollDuration
	var bufferSize uint = defaultBroadcasterRingSize
	if config != nil {
		if config.PollDuration != 0 {
			pollDuration = config.PollDuration
		}
		if config.BufferSize != 0 {
			bufferSize = config.BufferSize
		}
	}

	b := &Broadcaster[T]{buffer: newRing[T](bufferSize, pollDuration)}
	b.source.Store(&sourceBox[T]{r: source})
	return b
}

// NewReader creates a new reader. Each reader will retrieve the same data from the source.
// copyFn is used to copy the data from the source to individual readers. Broadcaster uses a small ring
// buffer, this means that slow readers might miss some data if they're really late and the data is no longer
// in the ring buffer.
func (b *Broadcaster[T]) NewReader(copyFn func(T) T) Reader[T] {
	currentCount := b.buffer.lastCount()

	return ReaderFunc[T](func() (data T, release func(), err error) {
		currentCount++
		if push := b.buffer.acquire(currentCount); push != nil {
			data, err = b.readSource()
			push(&slot[T]{data: data, err: err, count: currentCount})
		} else {
			s := b.buffer.get(currentCount)
			data, err, currentCount = s.data, s.err, s.count
		}

		if err == nil && copyFn != nil {
			data = copyFn(data)
		}
		return data, func() {}, err
	})
}

// readSource reads from the current source. An error coming from a source
// that has been replaced during the read is dropped and the read is retried
// on the new source, so a swap never surfaces as end of stream.
func (b *Broadcaster[T]) readSource() (T, error) {
	for {
		box := b.source.Load()
		data, _, err := box.r.Read()
		if err != nil && b.source.Load() != box {
			continue
		}
		return data, err
	}
}

// ReplaceSource replaces the underlying source. This operation is thread safe.
func (b *Broadcaster[T]) ReplaceSource(source Reader[T]) error {
	if source == nil {
		return errEmptySource
	}

	b.source.Store(&sourceBox[T]{r: source})
	return nil
}

// Source retrieves the underlying source. This operation is thread safe.
func (b *Broadcaster[T]) Source() Reader[T] {
	return b.source.Load().r
}
