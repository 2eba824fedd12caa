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

// Status is the Request lifecycle enumeration of spec §3. Paused and
// Resumed are pseudo-states: the driver's real substate (Writing/Reading)
// is preserved underneath (spec §9 open question #1: this package adopts
// the Writing/Reading naming, not PendingDownload/Downloading).
type Status uint8

const (
	Waiting Status = iota
	Processed
	Writing
	Reading
	Paused
	Resumed
	Done
	Canceled
	Error
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Processed:
		return "processed"
	case Writing:
		return "writing"
	case Reading:
		return "reading"
	case Paused:
		return "paused"
	case Resumed:
		return "resumed"
	case Done:
		return "done"
	case Canceled:
		return "canceled"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is one of the at-most-once-per-request
// terminal states (spec §3 invariant 4).
func (s Status) IsTerminal() bool {
	return s == Done || s == Canceled || s == Error
}

// Priority orders pending requests in the scheduler's queue (spec §3,
// §4.5): Low < Normal < High < OutOfQueue, ties broken by submission
// order.
type Priority uint8

const (
	Low Priority = iota
	Normal
	High
	OutOfQueue
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case OutOfQueue:
		return "out-of-queue"
	default:
		return "unknown"
	}
}

// Kind replaces the source's deep inheritance hierarchy (spec §9:
// NetworkRequestBase -> HttpRequest -> Get/Post/Put) with a flat
// discriminator driving the framer.
type Kind uint8

const (
	TcpRaw Kind = iota
	HttpGet
	HttpPost
	HttpPut
)

func (k Kind) String() string {
	switch k {
	case TcpRaw:
		return "tcp-raw"
	case HttpGet:
		return "http-get"
	case HttpPost:
		return "http-post"
	case HttpPut:
		return "http-put"
	default:
		return "unknown"
	}
}

// IsHTTP reports whether the Kind is framed over HTTP/1.1.
func (k Kind) IsHTTP() bool {
	return k != TcpRaw
}

// Method returns the HTTP verb for an HTTP Kind; empty for TcpRaw.
func (k Kind) Method() string {
	switch k {
	case HttpGet:
		return "GET"
	case HttpPost:
		return "POST"
	case HttpPut:
		return "PUT"
	default:
		return ""
	}
}
