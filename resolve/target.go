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

// Package resolve is the URL-parsing and DNS-resolution collaborator
// described in spec §6: it is deliberately outside the core request
// lifecycle machine, and exposes only a parsed Target plus a resolver.
package resolve

import (
	"context"
	"encoding/binary"
	"net"
	"net/url"
	"strconv"
	"strings"

	liberr "github.com/nabbar/netreq/errors"
)

// IP is one resolved IPv4 address, carried both as its dotted form and as
// a big-endian (network byte order) integer, matching the host_ips shape
// spec §6 requires of the URL collaborator.
type IP struct {
	AsString string
	AsInt    uint32
}

func ipToTarget(ip net.IP) (IP, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return IP{}, false
	}

	return IP{
		AsString: v4.String(),
		AsInt:    binary.BigEndian.Uint32(v4),
	}, true
}

// Target is the parsed form of a request's URL: scheme, host, the
// resolved IPv4 address set (first used, rest retained for future
// retries per spec §6), port in both host and network byte order, and the
// remaining URL components.
type Target struct {
	Scheme       string
	Host         string
	HostIPs      []IP
	PortLocal    uint16
	PortNetwork  uint16
	Path         string
	Query        string
	Fragment     string
	UserName     string
	UserPassword string
}

// IsValid reports whether the Target is usable by an HTTP request: scheme
// must be http or https, and the port must be the scheme's default (80 or
// 443) or explicitly set to a non-zero value. A 443 port without an
// explicit https scheme still implies TLS (spec §6).
func (t *Target) IsValid() bool {
	if t == nil || t.Host == "" {
		return false
	}

	switch strings.ToLower(t.Scheme) {
	case "http", "https":
	default:
		return false
	}

	return t.PortLocal != 0
}

// IsSSL reports whether the target requires a TLS connection: either an
// explicit https scheme, or port 443 (spec §6: "443 implying is_ssl=true").
func (t *Target) IsSSL() bool {
	return strings.EqualFold(t.Scheme, "https") || t.PortLocal == 443
}

// PreferredIP returns the first resolved address, the one the driver's
// Connect phase dials.
func (t *Target) PreferredIP() (IP, bool) {
	if len(t.HostIPs) == 0 {
		return IP{}, false
	}
	return t.HostIPs[0], true
}

// ComposeURL reassembles the Target into a textual URL, optionally
// substituting the first resolved IP address for the hostname.
func (t *Target) ComposeURL(preferIP bool) string {
	host := t.Host
	if preferIP {
		if ip, ok := t.PreferredIP(); ok {
			host = ip.AsString
		}
	}

	var b strings.Builder
	b.WriteString(t.Scheme)
	b.WriteString("://")

	if t.UserName != "" {
		b.WriteString(t.UserName)
		if t.UserPassword != "" {
			b.WriteByte(':')
			b.WriteString(t.UserPassword)
		}
		b.WriteByte('@')
	}

	b.WriteString(host)

	if !t.isDefaultPort() {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(t.PortLocal)))
	}

	if t.Path != "" {
		if !strings.HasPrefix(t.Path, "/") {
			b.WriteByte('/')
		}
		b.WriteString(t.Path)
	} else {
		b.WriteByte('/')
	}

	if t.Query != "" {
		b.WriteByte('?')
		b.WriteString(t.Query)
	}

	if t.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(t.Fragment)
	}

	return b.String()
}

func (t *Target) isDefaultPort() bool {
	switch strings.ToLower(t.Scheme) {
	case "http":
		return t.PortLocal == 80
	case "https":
		return t.PortLocal == 443
	default:
		return false
	}
}

// Resolver parses a raw URL string and resolves its host to one or more
// IPv4 addresses, producing a Target ready for a request.
type Resolver struct {
	res *net.Resolver
}

// NewResolver builds a Resolver over the given net.Resolver. A nil
// resolver falls back to net.DefaultResolver.
func NewResolver(r *net.Resolver) *Resolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Resolver{res: r}
}

// Parse parses raw into a Target and resolves its host, returning a
// CodeError-tagged error from the resolve package's registered range on
// any failure (spec §6, §7).
func (r *Resolver) Parse(ctx context.Context, raw string) (*Target, liberr.Error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrorInvalidFormat.Error(err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, ErrorUnsupportedScheme.Errorf()
	}

	host := u.Hostname()
	if host == "" {
		return nil, ErrorInvalidFormat.Errorf()
	}

	port, e := r.resolvePort(u)
	if e != nil {
		return nil, e
	}

	t := &Target{
		Scheme: strings.ToLower(u.Scheme),
		Host:   host,
		// PortLocal/PortNetwork carry the same numeric value: Go's uint16
		// has no endianness of its own, network order only matters once
		// the socket layer serializes it (spec §3's "numeric and
		// network-byte-order" port pair).
		PortLocal:   port,
		PortNetwork: port,
		Path:        u.Path,
		Query:       u.RawQuery,
		Fragment:    u.Fragment,
	}

	if u.User != nil {
		t.UserName = u.User.Username()
		t.UserPassword, _ = u.User.Password()
	}

	ips, e := r.lookup(ctx, host)
	if e != nil {
		return nil, e
	}
	t.HostIPs = ips

	return t, nil
}

func (r *Resolver) resolvePort(u *url.URL) (uint16, liberr.Error) {
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return 0, ErrorInvalidPort.Error(err)
		}
		return uint16(n), nil
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		return 443, nil
	default:
		return 80, nil
	}
}

func (r *Resolver) lookup(ctx context.Context, host string) ([]IP, liberr.Error) {
	if addr := net.ParseIP(host); addr != nil {
		ip, ok := ipToTarget(addr)
		if !ok {
			return nil, ErrorIPConversion.Errorf()
		}
		return []IP{ip}, nil
	}

	addrs, err := r.res.LookupIPAddr(ctx, host)
	if err != nil {
		if dnsErr, ok := err.(*net.DNSError); ok {
			switch {
			case dnsErr.IsNotFound:
				return nil, ErrorHostNotFound.Error(err)
			case dnsErr.IsTemporary:
				return nil, ErrorTryAgain.Error(err)
			default:
				return nil, ErrorNoRecovery.Error(err)
			}
		}
		return nil, ErrorNoRecovery.Error(err)
	}

	res := make([]IP, 0, len(addrs))
	for _, a := range addrs {
		if ip, ok := ipToTarget(a.IP); ok {
			res = append(res, ip)
		}
	}

	if len(res) == 0 {
		return nil, ErrorNoData.Errorf()
	}

	return res, nil
}
