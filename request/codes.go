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
	"fmt"

	liberr "github.com/nabbar/netreq/errors"
)

// Request errors (spec §7): offline, invalid URL, host not found, file
// path empty, destination dir missing, request not supported, request
// already submitted.
const (
	ErrorOffline liberr.CodeError = iota + liberr.MinRequest
	ErrorInvalidURL
	ErrorHostNotFound
	ErrorFilePathEmpty
	ErrorDestinationDirMissing
	ErrorRequestNotSupported
	ErrorAlreadySubmitted
)

// HTTP response framing errors (spec §4.3, §7).
const (
	ErrorBadResponseFormat liberr.CodeError = iota + liberr.MinHTTP
	ErrorResponseSizeUnknown
	ErrorConnectTimedOut
	ErrorWriteTimedOut
	ErrorReadTimedOut
)

func init() {
	if liberr.ExistInMapMessage(ErrorOffline) {
		panic(fmt.Errorf("error code collision with package request"))
	}
	liberr.RegisterIdFctMessage(ErrorOffline, getMessage)

	if liberr.ExistInMapMessage(ErrorBadResponseFormat) {
		panic(fmt.Errorf("error code collision with package request (http)"))
	}
	liberr.RegisterIdFctMessage(ErrorBadResponseFormat, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorOffline:
		return "request target is offline"
	case ErrorInvalidURL:
		return "invalid request url"
	case ErrorHostNotFound:
		return "request host not found"
	case ErrorFilePathEmpty:
		return "output file path is empty"
	case ErrorDestinationDirMissing:
		return "output file destination directory is missing"
	case ErrorRequestNotSupported:
		return "request kind is neither tcp-raw nor http"
	case ErrorAlreadySubmitted:
		return "request configuration changed after submission"
	case ErrorBadResponseFormat:
		return "http response does not start with HTTP/1.1"
	case ErrorResponseSizeUnknown:
		return "http response has neither content-length nor chunked transfer-encoding"
	case ErrorConnectTimedOut:
		return "connect phase timed out"
	case ErrorWriteTimedOut:
		return "write phase timed out"
	case ErrorReadTimedOut:
		return "read phase timed out"
	}

	return liberr.NullMessage
}
