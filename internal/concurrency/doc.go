// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wait primitives and the consumer-side event loop used by channels.
// Semaphore is portable and in-process; EventSemaphore is an eventfd that a
// peer process can share (Linux only). EventLoop drains one consumer and
// fans items out to handlers, optionally pinned to a CPU.
package concurrency
