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

// Package socket is the nonblocking BSD-socket collaborator described in
// spec §4.1: a minimal, cooperative-friendly TCP(+TLS) client exposing
// discrete connect/write/read/read_until steps that each return either
// progress or a typed transient/terminal error, never blocking the
// calling goroutine on I/O readiness.
//
// The connect handshake is driven directly over golang.org/x/sys/unix so
// the in-progress/try-again polling spec §4.1 requires is explicit and
// inspectable (SO_ERROR via getsockopt); once connected, the raw
// descriptor is handed to the standard library's net.Conn (and, for TLS,
// crypto/tls) for the read/write/close path, which is the idiomatic way
// this corpus (nabbar-golib/httpcli) lets crypto/tls own the record
// layer instead of reimplementing it.
package socket

import (
	"crypto/tls"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netreq/errors"
)

type state uint8

const (
	stateInit state = iota
	stateConnecting
	stateConnected
	stateClosed
)

// Socket is a nonblocking IPv4 TCP stream socket with optional TLS,
// matching the operation set of spec §4.1.
type Socket struct {
	mu sync.Mutex

	fd          int
	host        string
	ip          [4]byte
	port        uint16
	nonblocking bool

	st   state
	conn net.Conn
	last liberr.CodeError
}

// New returns an unconnected Socket.
func New() *Socket {
	return &Socket{fd: -1, st: stateInit}
}

// SetHost records the resolved IPv4 address to dial and the hostname used
// for TLS SNI (spec §4.1).
func (s *Socket) SetHost(ip net.IP, hostname string) liberr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v4 := ip.To4()
	if v4 == nil {
		return ErrorWrongIPFormat.Errorf()
	}

	copy(s.ip[:], v4)
	s.host = hostname
	return nil
}

// SetPort sets the destination port (host byte order; spec §4.1 takes a
// network-order u16 in the source shape, but Go integers carry no
// endianness of their own — see resolve.Target's PortLocal/PortNetwork
// note).
func (s *Socket) SetPort(port uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
}

// SetNonblocking toggles whether the underlying descriptor is put into
// O_NONBLOCK before connecting.
func (s *Socket) SetNonblocking(b bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonblocking = b
}

// Connected reports whether the TCP (and, if requested, TLS) handshake has
// completed.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == stateConnected
}

// Error returns the last recorded error code, or UnknownError if none.
func (s *Socket) Error() liberr.CodeError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ResetError clears the last recorded error code.
func (s *Socket) ResetError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = liberr.UnknownError
}

// Connect advances the nonblocking connect state machine by one step. It
// must be called repeatedly by the driver until it returns either a nil
// error (connected) or a terminal error; a transient error means "call
// again after yielding".
func (s *Socket) Connect(useTLS bool) liberr.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.st {
	case stateInit:
		return s.dial()
	case stateConnecting:
		return s.pollConnect(useTLS)
	case stateConnected:
		return nil
	default:
		return ErrorNotInitialised.Errorf()
	}
}

func (s *Socket) dial() liberr.Error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return s.fail(ErrorConnectFailed, err)
	}
	s.fd = fd

	if s.nonblocking {
		if err = unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fd)
			return s.fail(ErrorConnectFailed, err)
		}
	}

	sa := &unix.SockaddrInet4{Port: int(s.port), Addr: s.ip}
	err = unix.Connect(fd, sa)
	if err == nil {
		return s.finishConnect(false)
	}

	switch err {
	case unix.EINPROGRESS:
		s.st = stateConnecting
		s.last = ErrorConnectInProgress
		return ErrorConnectInProgress.Errorf()
	case unix.EALREADY:
		s.st = stateConnecting
		s.last = ErrorConnectAlreadyInProcess
		return ErrorConnectAlreadyInProcess.Errorf()
	case unix.EAGAIN:
		s.last = ErrorConnectTryAgain
		return ErrorConnectTryAgain.Errorf()
	case unix.EADDRINUSE:
		return s.fail(ErrorConnectAddressInUse, err)
	case unix.ECONNREFUSED:
		return s.fail(ErrorConnectRefused, err)
	case unix.ENETUNREACH:
		return s.fail(ErrorConnectNetworkUnreachable, err)
	case unix.EPROTONOSUPPORT:
		return s.fail(ErrorConnectProtocolNotSupported, err)
	default:
		return s.fail(ErrorConnectFailed, err)
	}
}

func (s *Socket) pollConnect(useTLS bool) liberr.Error {
	soErr, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return s.fail(ErrorConnectFailed, err)
	}

	switch soErr {
	case 0:
		return s.finishConnect(useTLS)
	case int(unix.EINPROGRESS), int(unix.EALREADY):
		s.last = ErrorConnectInProgress
		return ErrorConnectInProgress.Errorf()
	case int(unix.ECONNREFUSED):
		return s.fail(ErrorConnectRefused, unix.ECONNREFUSED)
	case int(unix.ENETUNREACH):
		return s.fail(ErrorConnectNetworkUnreachable, unix.ENETUNREACH)
	default:
		return s.fail(ErrorConnectFailed, unix.Errno(soErr))
	}
}

// finishConnect hands the connected raw descriptor to the standard
// library's net.Conn (duplicating it, so our fd bookkeeping and net's stay
// independent), then performs the TLS handshake inline if requested,
// matching spec §4.1's "performs the TLS handshake inline with the TCP
// connect".
func (s *Socket) finishConnect(useTLS bool) liberr.Error {
	f := os.NewFile(uintptr(s.fd), "netreq-socket")
	c, err := net.FileConn(f)
	_ = f.Close()
	if err != nil {
		return s.fail(ErrorConnectFailed, err)
	}

	if useTLS {
		tc := tls.Client(c, &tls.Config{ServerName: s.host})
		if err = tc.Handshake(); err != nil {
			_ = tc.Close()
			s.st = stateClosed
			s.last = ErrorTLSHandshakeFailed
			return ErrorTLSHandshakeFailed.Error(err)
		}
		s.conn = tc
	} else {
		s.conn = c
	}

	s.st = stateConnected
	s.last = liberr.UnknownError
	return nil
}

func (s *Socket) fail(code liberr.CodeError, err error) liberr.Error {
	s.st = stateClosed
	s.last = code
	if s.fd >= 0 {
		_ = unix.Close(s.fd)
		s.fd = -1
	}
	return code.Error(err)
}

// Write writes up to len(buf) bytes at buf[offset:] and returns the
// number of bytes actually written. A short write is not an error; a
// would-block condition is reported as WRITE_TRY_AGAIN.
func (s *Socket) Write(buf []byte, offset int) (int, liberr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != stateConnected {
		return 0, ErrorNotConnected.Errorf()
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writePollInterval))
	n, err := s.conn.Write(buf[offset:])
	if err == nil {
		return n, nil
	}

	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return n, ErrorWriteTryAgain.Errorf()
	}

	switch {
	case isBrokenPipe(err):
		return n, s.fail(ErrorWriteBrokenPipe, err)
	case isNoSpace(err):
		return n, s.fail(ErrorWriteNoSpace, err)
	default:
		return n, s.fail(ErrorWriteFailed, err)
	}
}

// Read reads up to length bytes. A would-block condition is reported as
// READ_TRY_AGAIN with whatever partial bytes (zero) were available.
func (s *Socket) Read(length int) ([]byte, liberr.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != stateConnected {
		return nil, ErrorNotConnected.Errorf()
	}

	buf := make([]byte, length)
	_ = s.conn.SetReadDeadline(time.Now().Add(readPollInterval))
	n, err := s.conn.Read(buf)
	if err == nil {
		return buf[:n], nil
	}

	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return buf[:n], ErrorReadTryAgain.Errorf()
	}

	return buf[:n], s.fail(ErrorReadFailed, err)
}

// ReadUntil accumulates bytes until delimiter appears as a suffix of the
// running buffer, returning the accumulated bytes and ErrorReadDone once
// found (spec §4.1). A would-block condition returns the partial buffer
// with ErrorReadTryAgain so the driver can call again after yielding.
func (s *Socket) ReadUntil(acc []byte, delimiter []byte) ([]byte, liberr.Error) {
	const chunk = 64

	for {
		b, err := s.Read(chunk)
		acc = append(acc, b...)

		if hasSuffix(acc, delimiter) {
			return acc, ErrorReadDone.Errorf()
		}

		if err != nil {
			return acc, err
		}

		if len(b) == 0 {
			return acc, ErrorReadTryAgain.Errorf()
		}
	}
}

// Close releases the underlying connection.
func (s *Socket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	if s.fd >= 0 {
		_ = unix.Close(s.fd)
		s.fd = -1
	}
	s.st = stateClosed
}

const (
	writePollInterval = 50 * time.Millisecond
	readPollInterval  = 50 * time.Millisecond
)

func hasSuffix(buf, delim []byte) bool {
	if len(delim) == 0 || len(buf) < len(delim) {
		return false
	}
	for i := 0; i < len(delim); i++ {
		if buf[len(buf)-len(delim)+i] != delim[i] {
			return false
		}
	}
	return true
}
