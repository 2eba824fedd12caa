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

import "github.com/nabbar/netreq/request"

// pendingQueue is the priority queue of spec §4.5: ordered by Priority
// (Low < Normal < High < OutOfQueue), ties broken by submission order. One
// FIFO slice per priority keeps both rules trivial: pop always drains the
// highest non-empty priority, and within a priority, append-at-back /
// pop-from-front preserves arrival order.
type pendingQueue struct {
	lanes [4][]*request.Request
}

func laneIndex(p request.Priority) int {
	switch p {
	case request.OutOfQueue:
		return 3
	case request.High:
		return 2
	case request.Normal:
		return 1
	default:
		return 0
	}
}

func (q *pendingQueue) push(r *request.Request) {
	i := laneIndex(r.Priority())
	q.lanes[i] = append(q.lanes[i], r)
}

// pop removes and returns the oldest request in the highest-priority
// non-empty lane.
func (q *pendingQueue) pop() (*request.Request, bool) {
	for i := len(q.lanes) - 1; i >= 0; i-- {
		if len(q.lanes[i]) > 0 {
			r := q.lanes[i][0]
			q.lanes[i] = q.lanes[i][1:]
			return r, true
		}
	}
	return nil, false
}

func (q *pendingQueue) empty() bool {
	for _, lane := range q.lanes {
		if len(lane) > 0 {
			return false
		}
	}
	return true
}

func (q *pendingQueue) len() int {
	n := 0
	for _, lane := range q.lanes {
		n += len(lane)
	}
	return n
}
