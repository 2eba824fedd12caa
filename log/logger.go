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

package log

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the engine-wide leveled sink. The zero value is not usable;
// construct with New.
type Logger interface {
	// Entry starts a new chained log event at the given level.
	Entry(lvl Level, msg string) *Entry
	// SetLevel changes the minimum level that reaches the backend.
	SetLevel(lvl Level)
	// SetOutput redirects the backend writer (defaults to os.Stderr).
	SetOutput(w io.Writer)
}

type logger struct {
	mu  sync.Mutex
	bck *logrus.Logger
}

// New builds a Logger backed by a dedicated logrus.Logger instance, writing
// to os.Stderr at InfoLevel with the text formatter, until overridden.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(InfoLevel.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logger{bck: l}
}

func (o *logger) Entry(lvl Level, msg string) *Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return newEntry(o.bck, lvl, msg)
}

func (o *logger) SetLevel(lvl Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bck.SetLevel(lvl.Logrus())
}

func (o *logger) SetOutput(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bck.SetOutput(w)
}

var (
	defMu  sync.Mutex
	defLog Logger
)

// Default returns a process-wide default Logger, built lazily.
func Default() Logger {
	defMu.Lock()
	defer defMu.Unlock()
	if defLog == nil {
		defLog = New()
	}
	return defLog
}

// SetDefault overrides the process-wide default Logger.
func SetDefault(l Logger) {
	defMu.Lock()
	defer defMu.Unlock()
	defLog = l
}
