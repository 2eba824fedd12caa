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

package scheduler

import (
	"time"

	"github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/netreq/errors"
	"github.com/nabbar/netreq/driver"
)

// DefaultActiveRequestsLimit is the concurrency cap N of spec §4.5.
const DefaultActiveRequestsLimit = 5

// DefaultTickInterval is the idle sleep of spec §4.5 ("~500 ms"); it is an
// upper bound on how long the run loop sleeps when there is nothing to do,
// not a floor — Pause/Resume/Stop/AddRequest wake it early.
const DefaultTickInterval = 500 * time.Millisecond

var validate = validator.New()

// Config configures a Scheduler. Validated with go-playground/validator,
// the same library nabbar-golib's own option structs use.
type Config struct {
	// ActiveRequestsLimit is the concurrency cap N (spec §4.5,
	// "set_active_requests_limit").
	ActiveRequestsLimit int `validate:"gte=1"`

	// TickInterval bounds the idle sleep of the run loop.
	TickInterval time.Duration `validate:"gte=0"`

	// FrameMax bounds each driver's per-call socket read/write size; use
	// driver.FrameMaxCooperative for this scheduler's round-robin loop.
	FrameMax int `validate:"gte=1"`
}

// DefaultConfig returns a Config with spec §4.5's documented defaults.
func DefaultConfig() Config {
	return Config{
		ActiveRequestsLimit: DefaultActiveRequestsLimit,
		TickInterval:        DefaultTickInterval,
		FrameMax:            driver.FrameMaxCooperative,
	}
}

// Validate reports whether c is usable, wrapping the first validation
// failure in an ErrorInvalidConfig.
func (c Config) Validate() liberr.Error {
	if err := validate.Struct(c); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	return nil
}
