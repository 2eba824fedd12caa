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

package resolve

import (
	"fmt"

	liberr "github.com/nabbar/netreq/errors"
)

// URL errors (spec §7): invalid format, unsupported scheme, invalid port.
const (
	ErrorInvalidFormat liberr.CodeError = iota + liberr.MinURL
	ErrorUnsupportedScheme
	ErrorInvalidPort
)

// DNS errors (spec §7), own range so a DNS failure is distinguishable from
// a malformed URL without inspecting the message string.
const (
	ErrorHostNotFound liberr.CodeError = iota + liberr.MinDNS
	ErrorNoData
	ErrorNoRecovery
	ErrorTryAgain
	ErrorIPConversion
)

func init() {
	if liberr.ExistInMapMessage(ErrorInvalidFormat) {
		panic(fmt.Errorf("error code collision with package resolve (url)"))
	}
	liberr.RegisterIdFctMessage(ErrorInvalidFormat, getMessage)

	if liberr.ExistInMapMessage(ErrorHostNotFound) {
		panic(fmt.Errorf("error code collision with package resolve (dns)"))
	}
	liberr.RegisterIdFctMessage(ErrorHostNotFound, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorInvalidFormat:
		return "invalid url format"
	case ErrorUnsupportedScheme:
		return "unsupported url scheme, expected http or https"
	case ErrorInvalidPort:
		return "invalid url port for the given scheme"
	case ErrorHostNotFound:
		return "host not found"
	case ErrorNoData:
		return "no address returned by resolver"
	case ErrorNoRecovery:
		return "non recoverable resolver failure"
	case ErrorTryAgain:
		return "temporary resolver failure, try again"
	case ErrorIPConversion:
		return "ip address conversion failed"
	}

	return liberr.NullMessage
}
