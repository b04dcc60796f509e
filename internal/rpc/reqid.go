package rpc

import "sync/atomic"

// reqIDSource hands out strictly increasing request identifiers used to
// correlate a subscribe/add_order/cancel_order call with its eventual
// response envelope.
type reqIDSource struct {
	next uint64
}

// Next returns the next request ID, starting at 1 so a zero value can
// still mean "uncorrelated" on the wire.
func (s *reqIDSource) Next() uint64 {
	return atomic.AddUint64(&s.next, 1)
}
