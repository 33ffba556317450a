package io

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

func counterSource(start int, interval time.Duration) (Reader[int], func()) {
	ticker := time.NewTicker(interval)
	closed := make(chan struct{})
	var once sync.Once
	n := start
	r := ReaderFunc[int](func() (int, func(), error) {
		select {
		case <-closed:
			return 0, func() {}, io.EOF
		case <-ticker.C:
		}
		v := n
		n++
		return v, func() {}, nil
	})
	return r, func() {
		once.Do(func() {
			ticker.Stop()
			close(closed)
		})
	}
}

func TestBroadcastFanOut(t *testing.T) {
	src, stop := counterSource(0, 5*time.Millisecond)
	defer stop()

	broadcaster := NewBroadcaster(src, &BroadcasterConfig{PollDuration: time.Millisecond})

	const readers = 4
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			r := broadcaster.NewReader(nil)
			last := -1
			for j := 0; j < 20; j++ {
				data, _, err := r.Read()
				if err != nil {
					t.Error(err)
					return
				}
				v := data
				if v <= last {
					t.Errorf("expected increasing frames, got %d after %d", v, last)
				}
				last = v
			}
		}()
	}
	wg.Wait()
}

func TestBroadcastReplaceSourceDuringRead(t *testing.T) {
	// The first source blocks until it is closed, then reports EOF.
	blocked := make(chan struct{})
	release := make(chan struct{})
	first := ReaderFunc[int](func() (int, func(), error) {
		close(blocked)
		<-release
		return 0, func() {}, io.EOF
	})

	broadcaster := NewBroadcaster[int](first, &BroadcasterConfig{PollDuration: time.Millisecond})
	r := broadcaster.NewReader(nil)

	second, stop := counterSource(100, time.Millisecond)
	defer stop()

	go func() {
		<-blocked
		if err := broadcaster.ReplaceSource(second); err != nil {
			t.Error(err)
		}
		close(release)
	}()

	data, _, err := r.Read()
	if err != nil {
		t.Fatalf("expected the read to continue on the new source, got %v", err)
	}
	if data != 100 {
		t.Errorf("expected first frame of new source, got %v", data)
	}
}

func TestBroadcastSourceError(t *testing.T) {
	errBroken := errors.New("broken")
	src := ReaderFunc[string](func() (string, func(), error) {
		return "", func() {}, errBroken
	})

	broadcaster := NewBroadcaster[string](src, nil)
	r := broadcaster.NewReader(func(src string) string {
		t.Error("copyFn must not be called for failed reads")
		return src
	})

	if _, _, err := r.Read(); err != errBroken {
		t.Errorf("expected %v, got %v", errBroken, err)
	}

	if err := broadcaster.ReplaceSource(nil); err != errEmptySource {
		t.Errorf("expected %v, got %v", errEmptySource, err)
	}
}
