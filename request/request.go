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

// Package request is the Request Entity and HTTP Framing collaborator of
// spec §4.2/§4.3 (components C2/C3): identity, configuration, observable
// state, observer lists, response accumulator, and HTTP request/response
// framing. It carries no socket or scheduling concerns of its own — those
// belong to socket, driver, and scheduler.
package request

import (
	"sync"
	"time"

	"github.com/google/uuid"

	libatm "github.com/nabbar/netreq/atomic"
	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/resolve"
)

// DefaultTimeout is the default per-phase socket operation timeout (spec
// §3: "default 5 s").
const DefaultTimeout = 5 * time.Second

// Request is the central entity of spec §3: a single concrete type
// carrying configuration plus state, replacing the source's deep
// inheritance hierarchy (spec §9 Design Notes).
type Request struct {
	mu sync.Mutex

	id string

	target *resolve.Target
	kind   Kind

	priority Priority
	tls      bool

	body        []byte
	headers     *Headers
	contentType string
	params      []Pair

	outputMode OutputMode
	outputPath string

	bytesToRead uint64
	delimiter   []byte

	timeout time.Duration

	submitted bool
	composed  []byte

	status    libatm.Value[Status]
	paused    libatm.Value[bool]
	canceled  libatm.Value[bool]
	bytesRead libatm.Value[uint64]
	errCode   libatm.Value[liberr.CodeError]
	response  *Response

	onBytesRead     observerList
	onStatusChanged observerList
	onPaused        observerList
	onResumed       observerList
	onCanceled      observerList
	onFinished      observerList
	onFailed        observerList
}

// New constructs a Request targeting t, of the given Kind, with a stable
// UUID generated at construction (spec §3 invariant 1).
func New(t *resolve.Target, kind Kind) *Request {
	r := &Request{
		id:       uuid.NewString(),
		target:   t,
		kind:     kind,
		priority: Normal,
		headers:  NewHeaders(),
		timeout:  DefaultTimeout,
	}

	r.status = libatm.NewValueDefault[Status](Waiting, Waiting)
	r.paused = libatm.NewValue[bool]()
	r.canceled = libatm.NewValue[bool]()
	r.bytesRead = libatm.NewValue[uint64]()
	r.errCode = libatm.NewValue[liberr.CodeError]()

	if t != nil {
		r.tls = t.IsSSL()
	}

	return r
}

// --- configuration setters; spec §4.2: "All must be called before
// submission; calling after submission is undefined and implementers
// should reject it." ---

func (r *Request) checkNotSubmitted() liberr.Error {
	if r.submitted {
		return ErrorAlreadySubmitted.Errorf()
	}
	return nil
}

// SetPriority sets the scheduling priority.
func (r *Request) SetPriority(p Priority) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.priority = p
	return nil
}

// SetBytesToRead sets the expected response body length for non-HTTP
// (TcpRaw) requests; 0 means unknown (spec §3).
func (r *Request) SetBytesToRead(n uint64) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.bytesToRead = n
	return nil
}

// SetTLS overrides whether the connection uses TLS.
func (r *Request) SetTLS(b bool) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.tls = b
	return nil
}

// SetDelimiter sets the read_until terminator for TcpRaw requests of
// unknown length.
func (r *Request) SetDelimiter(d []byte) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.delimiter = d
	return nil
}

// SetOutputFile directs the response to accumulate into path instead of
// memory (spec §3).
func (r *Request) SetOutputFile(path string) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	if path == "" {
		return ErrorFilePathEmpty.Errorf()
	}
	r.outputMode = OutputFile
	r.outputPath = path
	return nil
}

// SetBody sets the raw request payload (for TcpRaw requests, or a
// pre-built HTTP body).
func (r *Request) SetBody(b []byte) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.body = b
	return nil
}

// SetHeader adds a request header. It is sent after the framer's own
// Host line; a Host or Content-Length header added here is sent in
// addition to the framer's, not in place of it.
func (r *Request) SetHeader(name, value string) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.headers.Add(name, value)
	return nil
}

// SetContentType sets the Content-Type header; when it is
// application/x-www-form-urlencoded and SetFormParams was used to build
// the body, parameter values are percent-encoded (spec §4.3, S6).
func (r *Request) SetContentType(ct string) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.contentType = ct
	return nil
}

// SetTimeout overrides the per-phase socket operation timeout.
func (r *Request) SetTimeout(d time.Duration) liberr.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNotSubmitted(); err != nil {
		return err
	}
	r.timeout = d
	return nil
}

// markSubmitted freezes configuration; called by the scheduler when it
// dequeues the request into a driver task.
func (r *Request) markSubmitted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = true
}

// --- user-driven lifecycle (spec §4.2) ---

// Pause requests a pause, observed by the driver at its next yield point
// (spec §5, §9 open question #2: destroy-and-requeue).
func (r *Request) Pause() {
	r.paused.Store(true)
}

// Continue clears the paused flag so a resubmission can resume the
// request (spec §9 open question #2).
func (r *Request) Continue() {
	r.paused.Store(false)
}

// Cancel requests cancellation, observed by the driver at its next yield
// point (spec §5: "eventually-consistent, bounded by one iteration").
func (r *Request) Cancel() {
	r.canceled.Store(true)
}

// --- accessors (spec §4.2) ---

func (r *Request) UUID() string             { return r.id }
func (r *Request) Target() *resolve.Target  { return r.target }
func (r *Request) Kind() Kind               { return r.kind }
func (r *Request) Priority() Priority       { return r.priority }
func (r *Request) IsSSL() bool              { return r.tls }
func (r *Request) BytesToRead() uint64      { return r.bytesToRead }
func (r *Request) Delimiter() []byte        { return r.delimiter }
func (r *Request) RequestData() []byte      { return r.body }
func (r *Request) Timeout() time.Duration   { return r.timeout }
func (r *Request) Status() Status           { return r.status.Load() }
func (r *Request) IsPaused() bool           { return r.paused.Load() }
func (r *Request) IsCanceled() bool         { return r.canceled.Load() }
func (r *Request) BytesRead() uint64        { return r.bytesRead.Load() }
func (r *Request) Error() liberr.CodeError  { return r.errCode.Load() }
func (r *Request) Response() *Response      { return r.response }
func (r *Request) Headers() *Headers        { return r.headers }
func (r *Request) ContentType() string      { return r.contentType }
func (r *Request) OutputMode() OutputMode   { return r.outputMode }
func (r *Request) OutputPath() string       { return r.outputPath }

// --- observer registration (spec §3: "all append-only, fired in
// registration order"; §4.2: "MUST NOT fire during registration") ---

func (r *Request) OnBytesRead(fn Handler) *Handle     { return r.onBytesRead.subscribe(fn) }
func (r *Request) OnStatusChanged(fn Handler) *Handle { return r.onStatusChanged.subscribe(fn) }
func (r *Request) OnPaused(fn Handler) *Handle        { return r.onPaused.subscribe(fn) }
func (r *Request) OnResumed(fn Handler) *Handle       { return r.onResumed.subscribe(fn) }
func (r *Request) OnCanceled(fn Handler) *Handle      { return r.onCanceled.subscribe(fn) }
func (r *Request) OnFinished(fn Handler) *Handle      { return r.onFinished.subscribe(fn) }
func (r *Request) OnFailed(fn Handler) *Handle        { return r.onFailed.subscribe(fn) }

func (r *Request) event() *Event {
	return &Event{
		UUID:      r.id,
		Status:    r.status.Load(),
		BytesRead: r.bytesRead.Load(),
		Error:     r.errCode.Load(),
		Response:  r.response,
	}
}
