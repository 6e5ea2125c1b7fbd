package instr

import (
	"bytes"
	"testing"

	"github.com/skipfire/tether/internal/protocol/instr/header"
)

func fragmentHeader(channel int32, id, count uint16) *header.MessageHeader {
	return &header.MessageHeader{
		FragmentID:    id,
		FragmentCount: count,
		ChannelCode:   channel,
	}
}

func TestReassemblerSingleFragment(t *testing.T) {
	r := NewReassembler()

	if _, ok := r.Get(); ok {
		t.Fatal("Get() returned a message from an empty reassembler")
	}

	r.Add(fragmentHeader(3, 0, 1), []byte("hello"))

	msg, ok := r.Get()
	if !ok {
		t.Fatal("Get() returned nothing after a complete fragment")
	}
	if !bytes.Equal(msg, []byte("hello")) {
		t.Errorf("Get() = %q, want %q", msg, "hello")
	}
}

func TestReassemblerMultiFragmentOrder(t *testing.T) {
	r := NewReassembler()

	r.Add(fragmentHeader(3, 0, 3), []byte("aa"))
	if _, ok := r.Get(); ok {
		t.Fatal("Get() yielded a message before the final fragment")
	}

	r.Add(fragmentHeader(3, 1, 3), []byte("bb"))
	if _, ok := r.Get(); ok {
		t.Fatal("Get() yielded a message before the final fragment")
	}

	r.Add(fragmentHeader(3, 2, 3), []byte("cc"))

	msg, ok := r.Get()
	if !ok {
		t.Fatal("Get() returned nothing after the final fragment")
	}
	if !bytes.Equal(msg, []byte("aabbcc")) {
		t.Errorf("Get() = %q, want concatenation in order", msg)
	}

	if _, ok := r.Get(); ok {
		t.Error("Get() yielded a second message after the queue drained")
	}
}

func TestReassemblerStreamChannelSeparateBuffer(t *testing.T) {
	r := NewReassembler()

	// Interleave a regular message with an out-of-band stream message on
	// the same channel code; the sign selects the accumulator.
	r.Add(fragmentHeader(5, 0, 2), []byte("reg-"))
	r.Add(fragmentHeader(-5, 0, 2), []byte("oob-"))
	r.Add(fragmentHeader(-5, 1, 2), []byte("data"))

	msg, ok := r.Get()
	if !ok {
		t.Fatal("stream message not completed")
	}
	if !bytes.Equal(msg, []byte("oob-data")) {
		t.Errorf("stream message = %q, want %q", msg, "oob-data")
	}

	r.Add(fragmentHeader(5, 1, 2), []byte("ular"))
	msg, ok = r.Get()
	if !ok {
		t.Fatal("regular message not completed")
	}
	if !bytes.Equal(msg, []byte("reg-ular")) {
		t.Errorf("regular message = %q, want %q", msg, "reg-ular")
	}
}

func TestReassemblerQueueFIFO(t *testing.T) {
	r := NewReassembler()

	r.Add(fragmentHeader(1, 0, 1), []byte("first"))
	r.Add(fragmentHeader(1, 0, 1), []byte("second"))

	msg, _ := r.Get()
	if !bytes.Equal(msg, []byte("first")) {
		t.Errorf("first Get() = %q, want oldest message", msg)
	}
	msg, _ = r.Get()
	if !bytes.Equal(msg, []byte("second")) {
		t.Errorf("second Get() = %q, want next message", msg)
	}
}
