package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery pairs a query a TUI may emit at startup with the reply a
// real terminal would give.
type terminalQuery struct {
	ask   []byte
	reply []byte
}

var terminalQueries = []terminalQuery{
	{ask: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	{ask: []byte("\x1b[c"), reply: []byte("\x1b[?62;22c")},
	{ask: []byte("\x1b]10;?\x07"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{ask: []byte("\x1b]10;?\x1b\\"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{ask: []byte("\x1b]11;?\x07"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{ask: []byte("\x1b]11;?\x1b\\"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// maxPending bounds the bytes kept to catch queries split across reads.
const maxPending = 256

type terminalResponder struct {
	w       io.Writer
	pending []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, pending: make([]byte, 0, maxPending)}
}

// Process answers every complete query found in chunk.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerNext() {
	}
	if len(tr.pending) > maxPending {
		tr.pending = append(tr.pending[:0], tr.pending[len(tr.pending)-maxPending/4:]...)
	}
}

// answerNext replies to the earliest pending query and drops everything up to
// it. It reports false once no query remains.
func (tr *terminalResponder) answerNext() bool {
	first, at := -1, -1
	for i, q := range terminalQueries {
		idx := bytes.Index(tr.pending, q.ask)
		if idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	q := terminalQueries[first]
	tr.pending = tr.pending[at+len(q.ask):]
	_, _ = tr.w.Write(q.reply)
	return true
}
