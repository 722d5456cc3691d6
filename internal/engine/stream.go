package engine

import "sync"

// PushStream is a producer-side Stream implementation. The producing goroutine
// calls Push for each fragment and exactly one of Close or Fail at the end;
// consumers drain Fragments until it is closed. Interrupt only signals the
// producer via Interrupted; it never closes the channel itself, so fragment
// ordering and the single-close invariant stay with the producer.
type PushStream struct {
	ch          chan Fragment
	interrupted chan struct{}
	intOnce     sync.Once
	endOnce     sync.Once
}

// NewPushStream returns a PushStream with the given channel buffer.
func NewPushStream(buf int) *PushStream {
	if buf < 0 {
		buf = 0
	}
	return &PushStream{
		ch:          make(chan Fragment, buf),
		interrupted: make(chan struct{}),
	}
}

// Fragments implements Stream.
func (s *PushStream) Fragments() <-chan Fragment { return s.ch }

// Interrupt implements Stream. Safe to call concurrently and repeatedly.
func (s *PushStream) Interrupt() {
	s.intOnce.Do(func() { close(s.interrupted) })
}

// Interrupted is closed once Interrupt has been requested.
func (s *PushStream) Interrupted() <-chan struct{} { return s.interrupted }

// Push delivers one text fragment. It returns false without blocking once the
// stream has been interrupted, so cooperative producers can stop early.
func (s *PushStream) Push(text string) bool {
	select {
	case <-s.interrupted:
		return false
	case s.ch <- Fragment{Text: text}:
		return true
	}
}

// Close terminates the stream normally. Idempotent with Fail.
func (s *PushStream) Close() {
	s.endOnce.Do(func() { close(s.ch) })
}

// Fail terminates the stream with err as the terminal fragment. The error is
// dropped when the stream was already interrupted and the consumer is gone.
// Idempotent with Close.
func (s *PushStream) Fail(err error) {
	s.endOnce.Do(func() {
		select {
		case s.ch <- Fragment{Err: err}:
		case <-s.interrupted:
		}
		close(s.ch)
	})
}
