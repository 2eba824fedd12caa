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

package request

import (
	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/socket"
)

// DriverAPI is the narrow, handler-only surface of spec §4.2: reachable
// only through Request.AsDriver, never through the public Request type
// itself, so a submitter holding a *Request cannot forge state
// transitions or response bytes — only the driver that owns the request
// can.
type DriverAPI interface {
	// AddResponseData appends to the in-memory response or writes to the
	// output file, incrementing bytes_read and firing bytes-read
	// observers once per call (spec §4.2).
	AddResponseData(p []byte) error

	// SetStatus performs transition-specific bookkeeping (close file on
	// terminal/pause, delete partial file on Error/Canceled, rename temp
	// -> final on Done), fires on_status_changed, then the
	// event-specific observers (spec §4.2).
	SetStatus(s Status) error

	// SetError stores code and, unless code is the read_until
	// end-of-stream signal, calls SetStatus(Error) (spec §4.2, §7).
	SetError(code liberr.CodeError) error

	// InitResponse creates the response accumulator, in memory or backed
	// by the request's output file, and must be called once before the
	// first AddResponseData.
	InitResponse() error

	// MarkSubmitted freezes configuration (spec §4.2: "calling after
	// submission is undefined and implementers should reject it"). Called
	// by the scheduler when it dequeues a request into a driver task.
	MarkSubmitted()
}

type driverAPI struct {
	r *Request
}

// AsDriver returns the handler-only API for r. Only the driver/scheduler
// packages are expected to call this.
func (r *Request) AsDriver() DriverAPI {
	return &driverAPI{r: r}
}

func (d *driverAPI) MarkSubmitted() {
	d.r.markSubmitted()
}

func (d *driverAPI) InitResponse() error {
	r := d.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response != nil {
		return nil
	}

	if r.outputMode == OutputFile {
		resp, err := newFileResponse(r.outputPath)
		if err != nil {
			return err
		}
		r.response = resp
	} else {
		r.response = newMemoryResponse()
	}

	return nil
}

func (d *driverAPI) AddResponseData(p []byte) error {
	r := d.r
	r.mu.Lock()
	if r.response == nil {
		r.mu.Unlock()
		if err := d.InitResponse(); err != nil {
			return err
		}
		r.mu.Lock()
	}

	if err := r.response.append(p); err != nil {
		r.mu.Unlock()
		return err
	}

	r.bytesRead.Store(r.bytesRead.Load() + uint64(len(p)))
	r.mu.Unlock()

	r.onBytesRead.fire(r.event())
	return nil
}

func (d *driverAPI) SetStatus(s Status) error {
	r := d.r

	r.mu.Lock()
	prev := r.status.Load()
	if prev.IsTerminal() {
		// spec §3 invariant 4: at most one terminal value per lifetime.
		r.mu.Unlock()
		return nil
	}

	r.status.Store(s)

	// spec §3 invariant 5: file handle closed on every path leaving
	// Writing/Reading.
	var fileErr error
	if r.response != nil && (s == Done || s == Error || s == Canceled || s == Paused) {
		fileErr = r.response.finish(s == Done)

		if s == Paused {
			// destroy-and-requeue (spec §4.5): resubmitting this Request
			// builds a brand-new driver that calls InitResponse again: drop
			// the now-closed accumulator so that call builds a fresh one
			// instead of reusing one whose file handle is gone.
			r.response = nil
		}
	}
	r.mu.Unlock()

	r.onStatusChanged.fire(r.event())

	switch s {
	case Paused:
		r.onPaused.fire(r.event())
	case Resumed:
		r.onResumed.fire(r.event())
	case Canceled:
		r.onCanceled.fire(r.event())
	case Done:
		r.onFinished.fire(r.event())
	case Error:
		r.onFailed.fire(r.event())
	}

	return fileErr
}

func (d *driverAPI) SetError(code liberr.CodeError) error {
	r := d.r

	if code == socket.ErrorReadDone {
		// transient end-of-stream signal, not a failure (spec §4.2).
		return nil
	}

	r.errCode.Store(code)
	return d.SetStatus(Error)
}
