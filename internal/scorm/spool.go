package scorm

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// spool is a write buffer that keeps small outputs in memory and spills to a
// temporary file once the threshold is crossed, bounding memory use for
// packages with large media. It is not safe for concurrent use; a build owns
// its spool for the lifetime of one call.
type spool struct {
	threshold int64
	size      int64
	buf       bytes.Buffer
	file      *os.File
}

func newSpool(threshold int64) *spool {
	return &spool{threshold: threshold}
}

func (s *spool) Write(p []byte) (int, error) {
	if s.file == nil && s.size+int64(len(p)) > s.threshold {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}
	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.buf.Write(p)
	}
	s.size += int64(n)
	return n, err
}

// spill moves the in-memory contents into a fresh temp file and switches all
// subsequent writes to it.
func (s *spool) spill() error {
	f, err := os.CreateTemp("", "scorm-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create spill file: %w", err)
	}
	if _, err := f.Write(s.buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to spill archive buffer: %w", err)
	}
	s.buf.Reset()
	s.file = f
	return nil
}

// Size returns the number of bytes written so far.
func (s *spool) Size() int64 {
	return s.size
}

// Reader rewinds the spool and returns a ReadCloser over its contents.
// Closing it removes the spill file when one exists. The spool must not be
// written to after Reader is called.
func (s *spool) Reader() (io.ReadCloser, error) {
	if s.file == nil {
		return io.NopCloser(bytes.NewReader(s.buf.Bytes())), nil
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &spillReader{file: s.file}, nil
}

// Cleanup releases the spill file without reading. Safe to call when the
// build fails before a Reader is handed out.
func (s *spool) Cleanup() {
	if s.file != nil {
		name := s.file.Name()
		s.file.Close()
		os.Remove(name)
		s.file = nil
	}
	s.buf.Reset()
}

type spillReader struct {
	file *os.File
}

func (r *spillReader) Read(p []byte) (int, error) {
	return r.file.Read(p)
}

func (r *spillReader) Close() error {
	name := r.file.Name()
	err := r.file.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
