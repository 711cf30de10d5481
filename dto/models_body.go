package dto

import (
	"bytes"
	"fmt"
	"io"
)

// Body supplies a request payload. Length returns the byte count when it is
// known up front, or -1 for an open-ended stream; the transport switches to
// chunked transfer encoding for unknown lengths.
type Body interface {
	io.Reader
	Length() int64
}

// ResettableBody is a Body that can be rewound to its original position so
// the transport may resend it after a server error. Bodies without this
// capability fail the call once any bytes have gone out on the wire.
type ResettableBody interface {
	Body
	Reset() error
}

type bytesBody struct {
	buf []byte
	r   *bytes.Reader
}

func (b *bytesBody) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *bytesBody) Length() int64              { return int64(len(b.buf)) }
func (b *bytesBody) Reset() error {
	_, err := b.r.Seek(0, io.SeekStart)
	return err
}

// BytesBody wraps a byte slice as a resettable, known-length body.
func BytesBody(buf []byte) ResettableBody {
	return &bytesBody{buf: buf, r: bytes.NewReader(buf)}
}

type readerBody struct {
	r      io.Reader
	length int64
}

func (b *readerBody) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *readerBody) Length() int64              { return b.length }

// ReaderBody wraps a plain reader. Pass length -1 when unknown. The result
// cannot be rewound; use SeekerBody when the source supports seeking.
func ReaderBody(r io.Reader, length int64) Body {
	return &readerBody{r: r, length: length}
}

type seekerBody struct {
	rs     io.ReadSeeker
	length int64
	origin int64
}

func (b *seekerBody) Read(p []byte) (int, error) { return b.rs.Read(p) }
func (b *seekerBody) Length() int64              { return b.length }
func (b *seekerBody) Reset() error {
	if _, err := b.rs.Seek(b.origin, io.SeekStart); err != nil {
		return fmt.Errorf("seek to origin %d: %w", b.origin, err)
	}
	return nil
}

// SeekerBody wraps a seekable reader, capturing its current offset as the
// rewind origin. Pass length -1 when unknown.
func SeekerBody(rs io.ReadSeeker, length int64) (ResettableBody, error) {
	origin, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("record body origin: %w", err)
	}
	return &seekerBody{rs: rs, length: length, origin: origin}, nil
}
