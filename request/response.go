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
	"os"
	"path/filepath"
)

// OutputMode selects where response bytes accumulate (spec §3).
type OutputMode uint8

const (
	// OutputMemory accumulates bytes in an in-memory buffer.
	OutputMemory OutputMode = iota
	// OutputFile streams bytes to a file, via a ".part" suffix while
	// writing (spec §3 invariant 6, §6 "Persisted state").
	OutputFile
)

// Response is the append-accumulator bound to one Request by UUID (spec
// §3). It either owns an in-memory byte buffer or nothing, when streaming
// to a file.
type Response struct {
	mode OutputMode

	mem []byte

	finalPath string
	partPath  string
	fh        *os.File

	HTTPStatus int
	Headers    *Headers
}

func newMemoryResponse() *Response {
	return &Response{mode: OutputMemory}
}

// newFileResponse opens "<path>.part" for writing, uniquifying path first
// if it already exists (spec §6: "the path is uniquified by appending
// (1), (2), ... before the extension").
func newFileResponse(path string) (*Response, error) {
	final := uniquifyPath(path)
	part := final + ".part"

	fh, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	return &Response{
		mode:      OutputFile,
		finalPath: final,
		partPath:  part,
		fh:        fh,
	}, nil
}

func uniquifyPath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s(%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// append writes p to the in-memory buffer or the part file.
func (r *Response) append(p []byte) error {
	switch r.mode {
	case OutputFile:
		_, err := r.fh.Write(p)
		return err
	default:
		r.mem = append(r.mem, p...)
		return nil
	}
}

// Bytes returns the accumulated in-memory bytes; nil for file-mode
// responses.
func (r *Response) Bytes() []byte {
	return r.mem
}

// Path returns the final (non-".part") output path for file-mode
// responses, empty for memory-mode.
func (r *Response) Path() string {
	return r.finalPath
}

// finish closes the file handle (if any) and, per spec §3 invariant 6,
// renames the part file to its final path on success or removes it on
// failure.
func (r *Response) finish(success bool) error {
	if r.mode != OutputFile || r.fh == nil {
		return nil
	}

	if err := r.fh.Close(); err != nil {
		return err
	}
	r.fh = nil

	if success {
		return os.Rename(r.partPath, r.finalPath)
	}
	return os.Remove(r.partPath)
}
