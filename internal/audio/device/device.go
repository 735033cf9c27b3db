// Package device confines a hardware audio stream to a single dedicated OS
// thread. The underlying stream objects must never be handed to the
// scheduler, so the owning goroutine opens the stream, parks on a
// termination signal and tears the stream down itself; everything else talks
// to it through channels.
package device

import (
	"runtime"
	"sync"
)

// StartFunc opens and starts a hardware stream on the owning thread. The
// returned stop function tears the stream down and runs on that same thread.
type StartFunc func() (stop func(), err error)

// Owner is the handle to a running stream thread.
type Owner struct {
	kill chan struct{}
	done chan struct{}
	once sync.Once
}

// Run spawns the owning thread, invokes start on it and blocks until the
// stream reports started or failed. On failure the thread has already exited
// when Run returns.
func Run(start StartFunc) (*Owner, error) {
	o := &Owner{
		kill: make(chan struct{}),
		done: make(chan struct{}),
	}
	ready := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(o.done)

		stop, err := start()
		ready <- err
		if err != nil {
			return
		}
		<-o.kill
		stop()
	}()

	if err := <-ready; err != nil {
		<-o.done
		return nil, err
	}
	return o, nil
}

// Close signals the owning thread to stop the stream and waits until it has
// exited. Release is deterministic: when Close returns, the stream is gone.
// Safe to call more than once.
func (o *Owner) Close() {
	o.once.Do(func() {
		close(o.kill)
	})
	<-o.done
}

// Done is closed once the owning thread has exited.
func (o *Owner) Done() <-chan struct{} {
	return o.done
}
