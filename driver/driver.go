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

// Package driver is the Per-Request Driver collaborator of spec §4.4
// (component C4): a coroutine-style state machine that owns one Request
// and one Socket and advances Connect -> Write -> ReadHead -> ReadBody ->
// Done, yielding to its caller (the cooperative scheduler, or the sync
// driver's own goroutine) at every suspension point.
package driver

import (
	"net"
	"time"

	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/log"
	"github.com/nabbar/netreq/request"
	"github.com/nabbar/netreq/socket"
)

// StepResult is the driver task contract of spec §9 Design Notes:
// "a driver task exposes one method step() -> {Pending, Done}".
type StepResult uint8

const (
	Pending StepResult = iota
	Done
)

// Per-step frame bounds (spec §4.4): cooperative mode bounds each socket
// call tighter so the scheduler round-robins fairly; sync mode (one OS
// thread per request) can afford larger reads/writes.
const (
	FrameMaxCooperative = 255
	FrameMaxSync        = 65535
)

type phase uint8

const (
	phaseConnect phase = iota
	phaseWrite
	phaseReadHead
	phaseReadBody
	phaseTerminal
)

func (p phase) String() string {
	switch p {
	case phaseConnect:
		return "connect"
	case phaseWrite:
		return "write"
	case phaseReadHead:
		return "read_head"
	case phaseReadBody:
		return "read_body"
	case phaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Driver advances one Request across its lifecycle (spec §4.4).
type Driver struct {
	req *request.Request
	api request.DriverAPI
	sck *socket.Socket
	log log.Logger

	frameMax int

	ph         phase
	phaseStart time.Time
	started    bool
	connecting bool

	writeOff int

	headAcc []byte

	bodyMode     request.BodyMode
	bodyLen      uint64
	chunkStage   uint8 // 0=size line, 1=chunk data, 2=trailing crlf
	chunkRemain  uint64
	chunkSizeBuf []byte
	chunkTrailer []byte
	tcpAcc       []byte
}

// New builds a Driver over req and sck. frameMax should be
// FrameMaxCooperative for the scheduler's round-robin loop, or
// FrameMaxSync for the one-thread-per-request sync driver.
func New(req *request.Request, sck *socket.Socket, frameMax int, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}

	return &Driver{
		req:      req,
		api:      req.AsDriver(),
		sck:      sck,
		log:      logger,
		frameMax: frameMax,
		ph:       phaseConnect,
	}
}

// Step performs one bounded unit of work: at most one nonblocking socket
// call plus its bookkeeping (spec §9 Design Notes). It re-checks the
// paused and canceled flags at every call, which is the only place those
// flags are observed (spec §5 suspension points).
func (d *Driver) Step() StepResult {
	if d.req.IsCanceled() {
		return d.doCancel()
	}

	if d.req.IsPaused() {
		// destroy-and-requeue (spec §9 open question #2): the driver
		// returns Done without reaching a terminal Request status, and
		// this task is discarded by the scheduler; Continue() +
		// resubmission is required to resume.
		_ = d.api.SetStatus(request.Paused)
		return Done
	}

	if !d.started {
		if res, ok := d.checkSupported(); !ok {
			return res
		}
		d.started = true
		d.phaseStart = time.Now()
	}

	switch d.ph {
	case phaseConnect:
		return d.stepConnect()
	case phaseWrite:
		return d.stepWrite()
	case phaseReadHead:
		return d.stepReadHead()
	case phaseReadBody:
		return d.stepReadBody()
	default:
		return Done
	}
}

func (d *Driver) checkSupported() (StepResult, bool) {
	switch d.req.Kind() {
	case request.TcpRaw, request.HttpGet, request.HttpPost, request.HttpPut:
		return Pending, true
	default:
		// spec §4.4: "If a request is neither recognizable as TCP-raw nor
		// HTTP, the driver sets error REQUEST_NOT_SUPPORTED and status
		// Error without touching the socket."
		_ = d.api.SetError(request.ErrorRequestNotSupported)
		return Done, false
	}
}

func (d *Driver) enterPhase(p phase) {
	d.ph = p
	d.phaseStart = time.Now()
	d.log.Entry(log.DebugLevel, "driver phase transition").
		FieldAdd("request", d.req.UUID()).
		FieldAdd("phase", p).
		Log()
}

func (d *Driver) elapsed() time.Duration {
	return time.Since(d.phaseStart)
}

func (d *Driver) timedOut() bool {
	return d.elapsed() >= d.req.Timeout()
}

func (d *Driver) doCancel() StepResult {
	d.sck.Close()
	_ = d.api.SetStatus(request.Canceled)
	d.log.Entry(log.InfoLevel, "request canceled").
		FieldAdd("request", d.req.UUID()).
		FieldAdd("phase", d.ph).
		Log()
	return Done
}

func (d *Driver) fail(code liberr.CodeError) StepResult {
	d.sck.Close()
	_ = d.api.SetError(code)
	d.log.Entry(log.ErrorLevel, "request failed").
		FieldAdd("request", d.req.UUID()).
		FieldAdd("phase", d.ph).
		FieldAdd("code", code).
		Log()
	return Done
}

// --- Connect ---

func (d *Driver) stepConnect() StepResult {
	if !d.connecting {
		_ = d.api.SetStatus(request.Processed)
		t := d.req.Target()
		if t == nil {
			return d.fail(driverErrorNoTarget())
		}

		ip, ok := t.PreferredIP()
		if !ok {
			return d.fail(driverErrorNoTarget())
		}

		if err := d.sck.SetHost(net.ParseIP(ip.AsString), t.Host); err != nil {
			return d.fail(err.GetCode())
		}
		d.sck.SetPort(t.PortLocal)
		d.sck.SetNonblocking(true)
		d.connecting = true
	}

	err := d.sck.Connect(d.req.IsSSL())
	if err == nil {
		d.enterPhase(phaseWrite)
		_ = d.api.SetStatus(request.Writing)
		return Pending
	}

	code := err.GetCode()
	if socket.IsTransient(code) {
		if d.timedOut() {
			return d.fail(request.ErrorConnectTimedOut)
		}
		d.sck.ResetError()
		return Pending
	}

	return d.fail(code)
}

// --- Write ---

func (d *Driver) stepWrite() StepResult {
	buf := d.req.Compose()

	if d.writeOff >= len(buf) {
		if d.req.Kind().IsHTTP() {
			d.enterPhase(phaseReadHead)
		} else {
			d.enterPhase(phaseReadBody)
		}
		_ = d.api.SetStatus(request.Reading)
		return Pending
	}

	remaining := len(buf) - d.writeOff
	n := remaining
	if n > d.frameMax {
		n = d.frameMax
	}

	written, err := d.sck.Write(buf[d.writeOff:d.writeOff+n], 0)
	if err != nil {
		code := err.GetCode()
		if socket.IsTransient(code) {
			if d.timedOut() {
				return d.fail(request.ErrorWriteTimedOut)
			}
			return Pending
		}
		return d.fail(code)
	}

	if written > 0 {
		d.writeOff += written
	}

	return Pending
}

// --- ReadHead (HTTP only) ---

func (d *Driver) stepReadHead() StepResult {
	acc, err := d.sck.ReadUntil(d.headAcc, []byte("\r\n\r\n"))
	d.headAcc = acc

	if err != nil && err.GetCode() == socket.ErrorReadDone {
		status, headers, perr := request.ParseHeadBlock(d.headAcc)
		if perr != nil {
			return d.fail(perr.GetCode())
		}

		if err := d.api.InitResponse(); err != nil {
			return d.fail(request.ErrorBadResponseFormat)
		}
		d.req.Response().HTTPStatus = status
		d.req.Response().Headers = headers

		mode, length, ferr := request.DetermineBodyFraming(status, headers)
		if ferr != nil {
			return d.fail(ferr.GetCode())
		}

		d.bodyMode = mode
		d.bodyLen = length
		d.enterPhase(phaseReadBody)
		return Pending
	}

	if err != nil {
		code := err.GetCode()
		if socket.IsTransient(code) {
			if d.timedOut() {
				return d.fail(request.ErrorReadTimedOut)
			}
			return Pending
		}
		return d.fail(code)
	}

	return Pending
}

// --- ReadBody ---

func (d *Driver) stepReadBody() StepResult {
	switch {
	case d.req.Kind().IsHTTP() && d.bodyMode == request.NoBody:
		// spec §9 open question #4: non-2xx (or otherwise bodyless)
		// responses end directly at Done, no body read.
		return d.finishDone()
	case d.req.Kind().IsHTTP() && d.bodyMode == request.BodyContentLength:
		return d.stepReadContentLength()
	case d.req.Kind().IsHTTP() && d.bodyMode == request.BodyChunked:
		return d.stepReadChunked()
	default:
		return d.stepReadTCPRaw()
	}
}

func (d *Driver) stepReadContentLength() StepResult {
	if d.req.BytesRead() >= d.bodyLen {
		return d.finishDone()
	}

	n := d.frameMax
	if remaining := d.bodyLen - d.req.BytesRead(); uint64(n) > remaining {
		n = int(remaining)
	}

	return d.readChunkInto(n, func() StepResult {
		if d.req.BytesRead() >= d.bodyLen {
			return d.finishDone()
		}
		return Pending
	})
}

func (d *Driver) stepReadChunked() StepResult {
	switch d.chunkStage {
	case 0:
		acc, err := d.sck.ReadUntil(d.chunkSizeBuf, []byte("\r\n"))
		d.chunkSizeBuf = acc

		if err != nil && err.GetCode() == socket.ErrorReadDone {
			line := string(acc[:len(acc)-2])
			size, perr := request.ParseChunkSize(line)
			if perr != nil {
				return d.fail(perr.GetCode())
			}

			d.chunkSizeBuf = nil
			if size == 0 {
				return d.finishDone()
			}

			d.chunkRemain = size
			d.chunkStage = 1
			return Pending
		}

		if err != nil {
			code := err.GetCode()
			if socket.IsTransient(code) {
				if d.timedOut() {
					return d.fail(request.ErrorReadTimedOut)
				}
				return Pending
			}
			return d.fail(code)
		}

		return Pending

	case 1:
		n := d.frameMax
		if uint64(n) > d.chunkRemain {
			n = int(d.chunkRemain)
		}

		before := d.req.BytesRead()
		return d.readChunkInto(n, func() StepResult {
			d.chunkRemain -= d.req.BytesRead() - before
			if d.chunkRemain == 0 {
				d.chunkStage = 2
			}
			return Pending
		})

	default: // stage 2: consume the trailing CRLF after chunk data
		acc, err := d.sck.ReadUntil(d.chunkTrailer, []byte("\r\n"))
		d.chunkTrailer = acc

		if err != nil && err.GetCode() == socket.ErrorReadDone {
			d.chunkTrailer = nil
			d.chunkStage = 0
			return Pending
		}

		if err != nil {
			code := err.GetCode()
			if socket.IsTransient(code) {
				if d.timedOut() {
					return d.fail(request.ErrorReadTimedOut)
				}
				return Pending
			}
			return d.fail(code)
		}

		return Pending
	}
}

func (d *Driver) stepReadTCPRaw() StepResult {
	if d.req.BytesToRead() > 0 {
		if d.req.BytesRead() >= d.req.BytesToRead() {
			return d.finishDone()
		}

		n := d.frameMax
		if remaining := d.req.BytesToRead() - d.req.BytesRead(); uint64(n) > remaining {
			n = int(remaining)
		}

		return d.readChunkInto(n, func() StepResult {
			if d.req.BytesRead() >= d.req.BytesToRead() {
				return d.finishDone()
			}
			return Pending
		})
	}

	// unknown length: read until the configured delimiter (spec §4.4
	// "ReadBody (tcp, unknown)"). The accumulator persists across steps so
	// a transient try-again never drops bytes already read off the wire.
	acc, err := d.sck.ReadUntil(d.tcpAcc, d.req.Delimiter())
	d.tcpAcc = acc

	if err != nil && err.GetCode() == socket.ErrorReadDone {
		if werr := d.api.AddResponseData(acc); werr != nil {
			return d.fail(request.ErrorBadResponseFormat)
		}
		return d.finishDone()
	}

	if err != nil {
		code := err.GetCode()
		if socket.IsTransient(code) {
			if d.timedOut() {
				return d.fail(request.ErrorReadTimedOut)
			}
			return Pending
		}
		return d.fail(code)
	}

	return Pending
}

// readChunkInto reads up to n bytes, appends whatever was read to the
// response, and calls onProgress once data was durably recorded (spec §5:
// "Bytes-read observers fire after the bytes are durably recorded"). The
// phase clock is never touched here: per spec §5 it starts on phase entry
// and is NOT reset by partial progress.
func (d *Driver) readChunkInto(n int, onProgress func() StepResult) StepResult {
	b, err := d.sck.Read(n)
	if len(b) > 0 {
		if werr := d.api.AddResponseData(b); werr != nil {
			return d.fail(request.ErrorBadResponseFormat)
		}
		d.log.Entry(log.TraceLevel, "bytes read").
			FieldAdd("request", d.req.UUID()).
			FieldAdd("n", len(b)).
			Log()
	}

	if err != nil {
		code := err.GetCode()
		if socket.IsTransient(code) {
			if d.timedOut() {
				return d.fail(request.ErrorReadTimedOut)
			}
			return Pending
		}
		return d.fail(code)
	}

	return onProgress()
}

func (d *Driver) finishDone() StepResult {
	d.sck.Close()
	_ = d.api.SetStatus(request.Done)
	d.log.Entry(log.InfoLevel, "request done").
		FieldAdd("request", d.req.UUID()).
		FieldAdd("bytes_read", d.req.BytesRead()).
		Log()
	return Done
}

func driverErrorNoTarget() liberr.CodeError {
	return ErrorNoTarget
}
