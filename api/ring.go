// Package api
// Author: momentics@gmail.com
//
// Single-producer/single-consumer channel contracts for cross-context transport.

package api

import "context"

// ItemConsumer is the blocking read side of a fixed-item channel.
type ItemConsumer[T any] interface {
	// Acquire waits for the next item and returns a pointer into storage.
	Acquire() (*T, error)
	// AcquireContext is Acquire with cancellation.
	AcquireContext(ctx context.Context) (*T, error)
	// Release frees the slot returned by the last Acquire.
	Release()
}

// ItemProducer is the non-blocking write side of a fixed-item channel.
type ItemProducer[T any] interface {
	// Publish copies item into the channel, returns false if dropped.
	Publish(item T) bool
	// Dropping reports whether the last Publish was rejected.
	Dropping() bool
}

// FrameConsumer is the blocking read side of a packet channel.
type FrameConsumer interface {
	// GetBuffer returns a zero-copy view of the next frame payload.
	GetBuffer() ([]byte, error)
	GetBufferContext(ctx context.Context) ([]byte, error)
	// FreeBuffer releases the frame returned by the last GetBuffer.
	FreeBuffer()
}

// FrameProducer is the non-blocking write side of a packet channel.
type FrameProducer interface {
	Produce(buf []byte) bool
	Dropping() bool
}
