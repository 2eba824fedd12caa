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

package resolve_test

import (
	"context"

	"github.com/nabbar/netreq/resolve"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var r *resolve.Resolver

	BeforeEach(func() {
		r = resolve.NewResolver(nil)
	})

	Context("parsing a literal-IP URL", func() {
		It("resolves without a DNS round-trip", func() {
			t, err := r.Parse(context.Background(), "http://127.0.0.1:8080/a?x=1#f")
			Expect(err).To(BeNil())
			Expect(t.Scheme).To(Equal("http"))
			Expect(t.Host).To(Equal("127.0.0.1"))
			Expect(t.PortLocal).To(Equal(uint16(8080)))
			Expect(t.Path).To(Equal("/a"))
			Expect(t.Query).To(Equal("x=1"))
			Expect(t.Fragment).To(Equal("f"))
			Expect(t.HostIPs).To(HaveLen(1))
			Expect(t.HostIPs[0].AsString).To(Equal("127.0.0.1"))
			Expect(t.IsValid()).To(BeTrue())
			Expect(t.IsSSL()).To(BeFalse())
		})

		It("defaults http to port 80 and https to port 443 with TLS implied", func() {
			t, err := r.Parse(context.Background(), "https://127.0.0.1/a")
			Expect(err).To(BeNil())
			Expect(t.PortLocal).To(Equal(uint16(443)))
			Expect(t.IsSSL()).To(BeTrue())
		})
	})

	Context("rejecting an unsupported scheme", func() {
		It("errors with ErrorUnsupportedScheme", func() {
			_, err := r.Parse(context.Background(), "ftp://127.0.0.1/a")
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(resolve.ErrorUnsupportedScheme)).To(BeTrue())
		})
	})

	Context("rejecting a malformed URL", func() {
		It("errors with ErrorInvalidFormat", func() {
			_, err := r.Parse(context.Background(), "http://%zz")
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(resolve.ErrorInvalidFormat)).To(BeTrue())
		})
	})

	Context("ComposeURL", func() {
		It("omits the default port and prefers host over IP unless asked", func() {
			t, err := r.Parse(context.Background(), "http://127.0.0.1:80/a")
			Expect(err).To(BeNil())
			Expect(t.ComposeURL(false)).To(Equal("http://127.0.0.1/a"))
		})
	})
})
