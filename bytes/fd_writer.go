// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bytes

import (
	"io"
	"os"
	"syscall"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/support/logging"
)

// FDWriter is a minimal file-descriptor sink built on BufferedWriterBase:
// writes retry on syscall.EINTR, and a from-machine Flush calls File.Sync.
//
// Like BytesWriter, this exists chiefly to give the Writer contract a real
// sink to exercise; it intentionally does not grow into a full sink layer.
type FDWriter struct {
	BufferedWriterBase

	file *os.File
	log  logging.L
}

var _ Writer = (*FDWriter)(nil)

// FDWriterOptions configures an FDWriter.
type FDWriterOptions struct {
	// BufferSize overrides DefaultBufferSize when > 0.
	BufferSize int
	// Log receives diagnostics about retried writes and sync failures.
	// Defaults to logging.Nop.
	Log logging.L
}

// NewFDWriter wraps file, taking ownership: Close will close file too.
func NewFDWriter(file *os.File, opts FDWriterOptions) *FDWriter {
	w := &FDWriter{file: file, log: logging.Must(opts.Log)}
	w.initBuffered(w, w, opts.BufferSize, true)
	if info, err := file.Stat(); err == nil {
		w.SetWindow(w.rawBuf, base.Position(info.Size()))
	}
	return w
}

func (w *FDWriter) writeChunk(p []byte) (int, error) {
	for {
		n, err := w.file.Write(p)
		if err == nil || n > 0 {
			return n, err
		}
		if pe, ok := err.(*os.PathError); ok && pe.Err == syscall.EINTR {
			w.log.Debugf("retrying write to %s after EINTR", w.file.Name())
			continue
		}
		return n, err
	}
}

func (w *FDWriter) closeSink() error { return w.file.Close() }

// flushImpl overrides BufferedWriterBase's to additionally fsync on a
// from-machine flush. A Sync failure is logged and reported by returning
// false; it latches no status.
func (w *FDWriter) flushImpl(scope FlushScope) bool {
	if !w.BufferedWriterBase.flushImpl(scope) {
		return false
	}
	if scope != FromMachine {
		return true
	}
	if err := w.file.Sync(); err != nil {
		w.log.Warnf("fsync %s: %v", w.file.Name(), err)
		// A transient flush failure does not latch: the bytes were already
		// delivered to the OS by the write(2) calls above.
		return false
	}
	return true
}

func (w *FDWriter) capabilities() Capabilities {
	return Capabilities{RandomAccess: true, Size: true, Truncate: true}
}

func (w *FDWriter) seekSlow(newPos base.Position) bool {
	if !w.BufferedWriterBase.flushToSink() {
		return false
	}
	if _, err := w.file.Seek(int64(newPos), io.SeekStart); err != nil {
		return w.Fail(base.FromError(err).Annotatef("seeking %s", w.file.Name()))
	}
	w.SetWindow(w.rawBuf, newPos)
	return true
}

func (w *FDWriter) sizeImpl() (base.Position, bool) {
	if !w.BufferedWriterBase.flushToSink() {
		return 0, false
	}
	info, err := w.file.Stat()
	if err != nil {
		w.Fail(base.FromError(err).Annotatef("stat %s", w.file.Name()))
		return 0, false
	}
	return base.Position(info.Size()), true
}

func (w *FDWriter) truncateImpl(newSize base.Position) bool {
	if !w.BufferedWriterBase.flushToSink() {
		return false
	}
	if err := w.file.Truncate(int64(newSize)); err != nil {
		return w.Fail(base.FromError(err).Annotatef("truncating %s", w.file.Name()))
	}
	return true
}
