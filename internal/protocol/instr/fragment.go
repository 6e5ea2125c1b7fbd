package instr

import (
	"github.com/skipfire/tether/internal/protocol/instr/header"
)

// Reassembler buffers partial multi-fragment messages for one channel code.
//
// One instance exists per channel code, created lazily by the connection
// and keyed by the code's absolute value. Regular fragments (non-negative
// channel code on the wire) and out-of-band stream fragments (negative
// code) accumulate in separate buffers; the sign of the code on each
// incoming fragment selects the buffer.
//
// Fragments arrive in order. The final fragment (fragment index equal to
// fragmentCount-1) completes the message: the accumulated buffer moves to
// the completed queue and the accumulator resets.
type Reassembler struct {
	regular []byte
	stream  []byte
	queue   [][]byte
}

// NewReassembler creates an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Add appends one fragment's payload. When the fragment completes its
// message, the reassembled payload is queued for Get.
func (r *Reassembler) Add(h *header.MessageHeader, payload []byte) {
	buf := &r.regular
	if h.ChannelCode < 0 {
		buf = &r.stream
	}

	*buf = append(*buf, payload...)

	if h.IsLastFragment() {
		r.queue = append(r.queue, *buf)
		*buf = nil
	}
}

// Get pops the oldest completed message, or returns false if no full
// message is buffered yet. Callers poll until one is available.
func (r *Reassembler) Get() ([]byte, bool) {
	if len(r.queue) == 0 {
		return nil, false
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, true
}

// Pending reports whether a partial message is currently accumulating.
func (r *Reassembler) Pending() bool {
	return len(r.regular) > 0 || len(r.stream) > 0
}
