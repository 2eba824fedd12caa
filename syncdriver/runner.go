/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package syncdriver is the Sync Driver collaborator of spec §4.6
// (component C6): the same Connect/Write/ReadHead/ReadBody/Done state
// machine as the cooperative driver, but run to completion on a goroutine
// of its own rather than round-robined by a scheduler - the Go-idiomatic
// reading of "one OS thread per request", since a goroutine blocked on
// Run's retry sleep never ties up a scheduler's round-robin slot. Instead
// of yielding back to a caller on every Pending step, it sleeps Tick and
// retries in place; correctness guarantees (observer ordering, terminal-
// state bookkeeping) are identical because both run the same
// driver.Driver.Step() state machine underneath.
package syncdriver

import (
	"time"

	"github.com/nabbar/netreq/driver"
	"github.com/nabbar/netreq/log"
	"github.com/nabbar/netreq/request"
	"github.com/nabbar/netreq/socket"
)

// Handle lets a caller wait for a Go-launched request to finish.
type Handle struct {
	done chan struct{}
}

// Wait blocks until the request reaches a terminal driver.Done.
func (h *Handle) Wait() {
	<-h.done
}

// Run drives req to completion in the calling goroutine, sleeping cfg.Tick
// between steps instead of yielding to a scheduler (spec §4.6). It returns
// once the driver reports Done - whatever req's terminal status ended up
// being (Done, Error, Canceled, or the destroy-and-requeue Paused case).
func Run(req *request.Request, sck *socket.Socket, cfg Config, logger log.Logger) {
	d := driver.New(req, sck, cfg.FrameMax, logger)

	for {
		if d.Step() == driver.Done {
			return
		}
		time.Sleep(cfg.Tick)
	}
}

// Go launches Run on a new goroutine and returns a Handle to wait on it -
// the detached-from-the-scheduler execution spec §4.6 describes.
func Go(req *request.Request, sck *socket.Socket, cfg Config, logger log.Logger) *Handle {
	h := &Handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		Run(req, sck, cfg, logger)
	}()

	return h
}
