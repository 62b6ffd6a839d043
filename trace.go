/*------------------------------------------------------------------------------
* trace.go : leveled debug trace
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* notes   : level 1 messages are errors and always go to stderr as well.
*           a nil tracer is silent.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Tracer struct {
	mu    sync.Mutex
	w     io.Writer
	file  *os.File
	level int
	tick  time.Time
	errw  io.Writer
}

func NewTracer(level int) *Tracer {
	return &Tracer{level: level, tick: time.Now(), errw: os.Stderr}
}

/* open trace output ("" or "stderr": standard error, else a path template) */
func (t *Tracer) Open(file string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick = time.Now()
	if file == "" || file == "stderr" {
		t.w = os.Stderr
		return nil
	}
	path := RepPath(file, TimeGet())
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open trace file %s: %w", path, err)
	}
	t.file, t.w = fp, fp
	return nil
}

/* trace to an arbitrary writer */
func (t *Tracer) SetOutput(w io.Writer) {
	t.mu.Lock()
	t.w = w
	t.mu.Unlock()
}

func (t *Tracer) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		t.file.Close()
	}
	t.file, t.w = nil, nil
}

func (t *Tracer) SetLevel(level int) {
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}

func (t *Tracer) Trace(level int, format string, v ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if level <= 1 && t.errw != nil && t.w != t.errw {
		fmt.Fprintf(t.errw, format, v...)
	}
	if t.w == nil || level > t.level {
		return
	}
	fmt.Fprintf(t.w, "%d ", level)
	fmt.Fprintf(t.w, format, v...)
}

/* trace with elapsed time since open */
func (t *Tracer) Tracet(level int, format string, v ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil || level > t.level {
		return
	}
	fmt.Fprintf(t.w, "%d %9.3f: ", level, time.Since(t.tick).Seconds())
	fmt.Fprintf(t.w, format, v...)
}
