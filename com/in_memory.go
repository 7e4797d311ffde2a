package com

import (
	"io"
	"sync"
	"time"
)

const inMemoryPollInterval = 10 * time.Millisecond

// InMemory is a device for tests. Everything written to it is recorded. The data to be read is either
// prepared explicitly or produced by a responder that answers every write, like a modem would.
type InMemory struct {
	lock           sync.Mutex
	readBuffer     []byte
	writeBuffer    []byte
	writeSignal    chan bool
	closed         chan struct{}
	closeOnce      sync.Once
	closeWhenEmpty bool
	responder      func(written []byte) []byte
}

func NewInMemory() *InMemory {
	return &InMemory{
		writeSignal: make(chan bool),
		closed:      make(chan struct{}),
	}
}

// SetResponder installs a function that produces the data to be read in response to each write.
func (rw *InMemory) SetResponder(responder func(written []byte) []byte) {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	rw.responder = responder
}

func (rw *InMemory) Close() error {
	rw.closeOnce.Do(func() {
		close(rw.closed)
	})
	return nil
}

func (rw *InMemory) WaitUntilClosed() {
	<-rw.closed
}

func (rw *InMemory) Read(p []byte) (int, error) {
	for {
		select {
		case <-rw.closed:
			return 0, io.EOF
		default:
		}

		rw.lock.Lock()
		if len(rw.readBuffer) > 0 {
			n := copy(p, rw.readBuffer)
			rw.readBuffer = rw.readBuffer[n:]
			if rw.closeWhenEmpty && len(rw.readBuffer) == 0 {
				rw.Close()
			}
			rw.lock.Unlock()
			return n, nil
		}
		rw.lock.Unlock()

		select {
		case <-rw.closed:
			return 0, io.EOF
		case <-time.After(inMemoryPollInterval):
		}
	}
}

func (rw *InMemory) PrepareRead(p []byte) {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	rw.readBuffer = append(rw.readBuffer, p...)
}

func (rw *InMemory) ClearRead() {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	rw.readBuffer = nil
	if rw.closeWhenEmpty {
		rw.Close()
	}
}

func (rw *InMemory) IsReadEmpty() bool {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	return len(rw.readBuffer) == 0
}

// CloseWhenEmpty lets the device signal EOF as soon as all prepared data was read.
func (rw *InMemory) CloseWhenEmpty(value bool) {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	rw.closeWhenEmpty = value
}

func (rw *InMemory) Write(p []byte) (int, error) {
	rw.lock.Lock()
	rw.writeBuffer = append(rw.writeBuffer, p...)
	if rw.responder != nil {
		rw.readBuffer = append(rw.readBuffer, rw.responder(p)...)
	}
	rw.lock.Unlock()

	select {
	case rw.writeSignal <- true:
	default:
	}
	return len(p), nil
}

func (rw *InMemory) Written() []byte {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	return append([]byte(nil), rw.writeBuffer...)
}

func (rw *InMemory) ClearWrite() {
	rw.lock.Lock()
	defer rw.lock.Unlock()
	rw.writeBuffer = nil
}

func (rw *InMemory) WaitUntilWritten() {
	<-rw.writeSignal
}
