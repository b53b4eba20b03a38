package ioriegeli

import (
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rgli/riegeli/rerror"
)

const defaultReadChunk = 64 << 10

var _ Reader = (*FileReader)(nil)

// FileReader reads from an *os.File, maintaining a small read-ahead
// buffer so Pull can satisfy a min larger than one underlying Read.
type FileReader struct {
	f   *os.File
	pos int64
	buf []byte
	ok  bool
	err error
}

// OpenFileReader opens path for reading and hints the kernel that access
// will be sequential, the way a record stream is normally consumed.
func OpenFileReader(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rerror.IO(err)
	}
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	return &FileReader{f: f, ok: true}, nil
}

func (r *FileReader) Ok() bool     { return r.ok }
func (r *FileReader) Err() error   { return r.err }
func (r *FileReader) Pos() int64   { return r.pos }
func (r *FileReader) Window() []byte { return r.buf }

func (r *FileReader) Size() (int64, bool) {
	info, err := r.f.Stat()
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

func (r *FileReader) Pull(min, hint int) bool {
	if !r.ok {
		return false
	}
	if min < 1 {
		min = 1
	}
	for len(r.buf) < min {
		size := hint
		if size < min {
			size = min
		}
		if size < defaultReadChunk {
			size = defaultReadChunk
		}
		chunk := make([]byte, size)
		n, err := r.f.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				r.ok = false
				r.err = rerror.IO(err)
			}
			break
		}
		if n == 0 {
			break
		}
	}
	return len(r.buf) >= min
}

func (r *FileReader) Consume(n int) {
	r.pos += int64(n)
	r.buf = r.buf[n:]
}

func (r *FileReader) Read(dst []byte) int {
	n := 0
	for n < len(dst) {
		if len(r.Window()) == 0 && !r.Pull(1, len(dst)-n) {
			break
		}
		copied := copy(dst[n:], r.Window())
		r.Consume(copied)
		n += copied
	}
	return n
}

func (r *FileReader) Skip(n int64) bool {
	for n > 0 {
		if len(r.Window()) == 0 && !r.Pull(1, int(n)) {
			return false
		}
		take := int64(len(r.Window()))
		if take > n {
			take = n
		}
		r.Consume(int(take))
		n -= take
	}
	return true
}

func (r *FileReader) Copy(n int64, w Writer) int64 {
	var copied int64
	for copied < n {
		remaining := n - copied
		if len(r.Window()) == 0 && !r.Pull(1, int(remaining)) {
			break
		}
		window := r.Window()
		if int64(len(window)) > remaining {
			window = window[:remaining]
		}
		wn, _ := w.Write(window)
		r.Consume(wn)
		copied += int64(wn)
		if wn < len(window) {
			break
		}
	}
	return copied
}

func (r *FileReader) Seek(pos int64) bool {
	if pos < 0 {
		return false
	}
	if _, err := r.f.Seek(pos, io.SeekStart); err != nil {
		r.ok = false
		r.err = rerror.IO(err)
		return false
	}
	r.pos = pos
	r.buf = nil
	return true
}

// Close releases the underlying file.
func (r *FileReader) Close() error {
	return r.f.Close()
}

var _ Writer = (*FileWriter)(nil)

// FileWriter writes to an *os.File, buffering committed-but-unflushed
// bytes so Push can hand out a window larger than one underlying Write
// and Flush can batch them into a single write(2).
type FileWriter struct {
	f    *os.File
	pos  int64
	buf  []byte
	used int
	ok   bool
	err  error
}

// CreateFileWriter creates (truncating if present) path for writing.
func CreateFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, rerror.IO(err)
	}
	return &FileWriter{f: f, ok: true}, nil
}

func (w *FileWriter) Ok() bool   { return w.ok }
func (w *FileWriter) Err() error { return w.err }
func (w *FileWriter) Pos() int64 { return w.pos + int64(w.used) }

func (w *FileWriter) Window() []byte { return w.buf[w.used:] }
func (w *FileWriter) Advance(n int)  { w.used += n }

func (w *FileWriter) Push(min, hint int) bool {
	if !w.ok {
		return false
	}
	if !w.flushBuffered() {
		return false
	}
	if min < 1 {
		min = 1
	}
	size := hint
	if size < min {
		size = min
	}
	w.buf = make([]byte, size)
	w.used = 0
	return true
}

func (w *FileWriter) flushBuffered() bool {
	if w.used == 0 {
		w.buf = nil
		return true
	}
	n, err := w.f.Write(w.buf[:w.used])
	w.pos += int64(n)
	w.buf = nil
	w.used = 0
	if err != nil {
		w.ok = false
		w.err = rerror.IO(err)
		return false
	}
	return true
}

func (w *FileWriter) Write(p []byte) (int, error) {
	if !w.ok {
		return 0, w.err
	}
	remaining := p
	for len(remaining) > 0 {
		if len(w.Window()) == 0 && !w.Push(1, len(remaining)) {
			return len(p) - len(remaining), w.err
		}
		n := copy(w.Window(), remaining)
		w.Advance(n)
		remaining = remaining[n:]
	}
	return len(p), nil
}

func (w *FileWriter) Flush() bool {
	if !w.ok {
		return false
	}
	return w.flushBuffered()
}

// Close flushes any buffered bytes and closes the underlying file.
func (w *FileWriter) Close() error {
	w.flushBuffered()
	return w.f.Close()
}
