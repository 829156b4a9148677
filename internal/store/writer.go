package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LogWriter serializes all mutations of one append-only log file
// through a single goroutine that owns the file handle. Concurrent
// producers send records instead of taking a lock; every append is
// flushed and fsynced before the producer is acknowledged, so a record
// is durable before the next writer proceeds.
type LogWriter struct {
	path string
	ops  chan logOp
	done chan struct{}
}

type logOp struct {
	line    []byte                  // append: one encoded record
	rewrite func([]string) []string // rewrite: transform raw surviving lines
	err     chan error
}

// NewLogWriter starts the writer goroutine for path. The file and its
// directory are created on first append.
func NewLogWriter(path string) *LogWriter {
	w := &LogWriter{
		path: path,
		ops:  make(chan logOp),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Append marshals v as one JSON line and blocks until it is durably
// written.
func (w *LogWriter) Append(v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	op := logOp{line: line, err: make(chan error, 1)}
	w.ops <- op
	return <-op.err
}

// Rewrite replaces the whole file with the lines fn keeps. Used for
// selective deletes; runs on the writer goroutine so it can never race
// an append.
func (w *LogWriter) Rewrite(fn func(lines []string) []string) error {
	op := logOp{rewrite: fn, err: make(chan error, 1)}
	w.ops <- op
	return <-op.err
}

// Close stops the writer goroutine. Pending operations complete first.
func (w *LogWriter) Close() {
	close(w.ops)
	<-w.done
}

func (w *LogWriter) run() {
	defer close(w.done)

	var f *os.File
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	for op := range w.ops {
		if op.line != nil {
			op.err <- w.appendLine(&f, op.line)
			continue
		}
		// Rewrite invalidates the open handle.
		if f != nil {
			_ = f.Close()
			f = nil
		}
		op.err <- w.rewriteFile(op.rewrite)
	}
}

func (w *LogWriter) appendLine(f **os.File, line []byte) error {
	if *f == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		opened, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		*f = opened
	}

	if _, err := (*f).Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := (*f).Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	return nil
}

func (w *LogWriter) rewriteFile(fn func([]string) []string) error {
	var lines []string
	if data, err := os.ReadFile(w.path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}

	kept := fn(lines)

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	tmp := w.path + ".tmp"
	var b strings.Builder
	for _, line := range kept {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write rewritten log: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("replace log: %w", err)
	}
	return nil
}

// readLines loads every non-empty line of a log file. A missing file
// is an empty log, not an error.
func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines = append(lines, scanner.Text())
		}
	}
	return lines
}
