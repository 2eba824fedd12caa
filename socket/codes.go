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

package socket

import (
	"fmt"

	liberr "github.com/nabbar/netreq/errors"
)

// Socket error taxonomy (spec §4.1, §7). Transient codes are retried by
// the driver; READ_DONE is an end-of-stream signal, not a failure;
// everything else is terminal.
const (
	ErrorWrongIPFormat liberr.CodeError = iota + liberr.MinSocket
	ErrorNotInitialised
	ErrorNotConnected

	// Transient connect codes.
	ErrorConnectTryAgain
	ErrorConnectInProgress
	ErrorConnectAlreadyInProcess

	// Terminal connect codes.
	ErrorConnectAddressInUse
	ErrorConnectRefused
	ErrorConnectTimedOut
	ErrorConnectNetworkUnreachable
	ErrorConnectProtocolNotSupported
	ErrorConnectFailed
	ErrorTLSHandshakeFailed

	// Write codes.
	ErrorWriteTryAgain
	ErrorWriteTooBig
	ErrorWriteBrokenPipe
	ErrorWriteNoSpace
	ErrorWriteFailed

	// Read codes.
	ErrorReadTryAgain
	ErrorReadDone
	ErrorReadTimedOut
	ErrorReadFailed
)

// IsTransient reports whether code should be retried by the driver after
// yielding, rather than surfaced as a terminal failure (spec §4.1).
func IsTransient(code liberr.CodeError) bool {
	switch code {
	case ErrorConnectTryAgain, ErrorConnectInProgress, ErrorConnectAlreadyInProcess,
		ErrorWriteTryAgain, ErrorReadTryAgain:
		return true
	default:
		return false
	}
}

// IsEndOfStream reports whether code is the read_until delimiter-reached
// signal (spec §4.1): not a failure, but also not "more to do".
func IsEndOfStream(code liberr.CodeError) bool {
	return code == ErrorReadDone
}

func init() {
	if liberr.ExistInMapMessage(ErrorWrongIPFormat) {
		panic(fmt.Errorf("error code collision with package socket"))
	}
	liberr.RegisterIdFctMessage(ErrorWrongIPFormat, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorWrongIPFormat:
		return "invalid ipv4 address format"
	case ErrorNotInitialised:
		return "socket not initialised"
	case ErrorNotConnected:
		return "socket not connected"
	case ErrorConnectTryAgain:
		return "connect: resource temporarily unavailable, try again"
	case ErrorConnectInProgress:
		return "connect: operation in progress"
	case ErrorConnectAlreadyInProcess:
		return "connect: operation already in progress"
	case ErrorConnectAddressInUse:
		return "connect: address already in use"
	case ErrorConnectRefused:
		return "connect: connection refused"
	case ErrorConnectTimedOut:
		return "connect: timed out"
	case ErrorConnectNetworkUnreachable:
		return "connect: network unreachable"
	case ErrorConnectProtocolNotSupported:
		return "connect: protocol not supported"
	case ErrorConnectFailed:
		return "connect: failed"
	case ErrorTLSHandshakeFailed:
		return "connect: tls handshake failed"
	case ErrorWriteTryAgain:
		return "write: resource temporarily unavailable, try again"
	case ErrorWriteTooBig:
		return "write: message too big"
	case ErrorWriteBrokenPipe:
		return "write: broken pipe"
	case ErrorWriteNoSpace:
		return "write: no space left"
	case ErrorWriteFailed:
		return "write: failed"
	case ErrorReadTryAgain:
		return "read: resource temporarily unavailable, try again"
	case ErrorReadDone:
		return "read: delimiter reached"
	case ErrorReadTimedOut:
		return "read: timed out"
	case ErrorReadFailed:
		return "read: failed"
	}

	return liberr.NullMessage
}
