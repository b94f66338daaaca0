// Package channel implements the cross-context transport used by device
// models: a capacity-bounded ring of slots with two cursors and a counting
// wait primitive, in a fixed-item variant (Consumer, Producer) and a
// variable-length framing variant (PacketConsumer, PacketProducer).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// # Concurrency contract
//
// A channel has exactly one producer context and one consumer context.
// read_pos is written only by the consumer and write_pos only by the
// producer; no lock is taken on the data path. Calling Publish/Produce
// from two goroutines at once, or Acquire/GetBuffer from two goroutines at
// once, is undefined behaviour and is not detected.
//
// Only the consumer ever suspends. Publish and Produce never block and
// never retry: when there is no room the newest item is dropped, the call
// returns false and Dropping reports true until the next accepted call.
//
// One slot is always kept free so that read_pos == write_pos means empty
// and (write_pos+1) mod size == read_pos means full. A channel of size
// slots therefore holds at most size-1 items.
//
// Every Acquire must be followed by exactly one Release, and every
// GetBuffer by exactly one FreeBuffer, once the caller is done with the
// returned pointer or slice. The data stays in place until then; it is
// never copied on the read side.
package channel
