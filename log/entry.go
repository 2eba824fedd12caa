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
	"github.com/sirupsen/logrus"
)

// Fields is a custom key/value bag merged into the logrus entry on Log().
type Fields map[string]interface{}

func (f Fields) Add(key string, val interface{}) Fields {
	n := make(Fields, len(f)+1)
	for k, v := range f {
		n[k] = v
	}
	n[key] = val
	return n
}

// Entry is a single log event builder, chained fluently and terminated by Log().
type Entry struct {
	log *logrus.Logger
	lvl Level
	msg string
	err []error
	fld Fields
}

func newEntry(l *logrus.Logger, lvl Level, msg string) *Entry {
	return &Entry{log: l, lvl: lvl, msg: msg, fld: make(Fields)}
}

// FieldAdd appends one key/value pair to the entry and returns it for chaining.
func (e *Entry) FieldAdd(key string, val interface{}) *Entry {
	e.fld = e.fld.Add(key, val)
	return e
}

// ErrorAdd appends one or more errors to the entry. Nil errors are skipped
// when cleanNil is true.
func (e *Entry) ErrorAdd(cleanNil bool, err ...error) *Entry {
	for _, er := range err {
		if cleanNil && er == nil {
			continue
		}
		e.err = append(e.err, er)
	}
	return e
}

// Log emits the entry through the logrus backend. No-op on NilLevel.
func (e *Entry) Log() {
	if e.lvl == NilLevel || e.log == nil {
		return
	}

	fields := make(logrus.Fields, len(e.fld)+1)
	for k, v := range e.fld {
		fields[k] = v
	}

	if len(e.err) > 0 {
		msgs := make([]string, 0, len(e.err))
		for _, er := range e.err {
			if er != nil {
				msgs = append(msgs, er.Error())
			}
		}
		if len(msgs) > 0 {
			fields["error"] = msgs
		}
	}

	e.log.WithFields(fields).Log(e.lvl.Logrus(), e.msg)
}
