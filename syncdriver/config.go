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

package syncdriver

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nabbar/netreq/driver"
	liberr "github.com/nabbar/netreq/errors"
)

// DefaultTick is spec §4.6's SYNC_TICK: the retry sleep between transient
// errors, in place of the cooperative scheduler's round-robin yield.
const DefaultTick = 250 * time.Millisecond

var validate = validator.New()

// Config configures a Runner. Validated with go-playground/validator, the
// same library scheduler.Config uses.
type Config struct {
	// Tick is the sleep between retries of a transient (try-again) step.
	Tick time.Duration `validate:"gte=1"`

	// FrameMax bounds each per-call socket read/write size; defaults to
	// driver.FrameMaxSync, since a dedicated goroutine has no fairness
	// budget to protect the way the cooperative scheduler does.
	FrameMax int `validate:"gte=1"`
}

// DefaultConfig returns a Config with spec §4.6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Tick:     DefaultTick,
		FrameMax: driver.FrameMaxSync,
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
