package api

import (
	"sync"
	"time"
)

// Fault replaces the normal response of a route.
type Fault struct {
	// Status and Message produce {"error": Message} with that status.
	Status  int
	Message string
	// Body, when set, is written verbatim instead of the error envelope.
	Body string
	// Drop closes the connection without writing a response.
	Drop bool
	// Delay stalls the handler before it responds (or until the client gives up).
	Delay time.Duration
	// Times limits how many requests the fault affects; 0 means until cleared.
	Times int
}

// Gate holds one response of a route until released. The handler computes
// its response when the request arrives and only delivers it on Release.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *Gate {
	return &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
}

// Arrived is closed once the held request reached the server and its
// response has been computed.
func (g *Gate) Arrived() <-chan struct{} {
	return g.arrived
}

// Release lets the held response through. It is safe to call more than once.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
