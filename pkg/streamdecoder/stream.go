package streamdecoder

import (
	"io"
)

// defaultReadSize is the size of the read buffer used to pull fragments.
const defaultReadSize = 16 * 1024

// Chunk is one decoded audio buffer together with the timestamps known at
// the time it was produced.
type Chunk struct {
	Data       []byte
	Timestamps *Timestamps
}

// Stream pulls fragments from an io.Reader through a Decoder.
//
// Every complete buffer is handed out before the next fragment is read.
// Once the reader is exhausted the remaining buffers are drained and a final
// forced flush returns whatever is left. Abandoning a Stream requires no
// cleanup beyond closing the reader.
type Stream struct {
	r       io.Reader
	d       *Decoder
	buf     []byte
	eof     bool
	err     error
	bytesIn int64
}

// NewStream creates a Stream reading from r.
func NewStream(r io.Reader, d *Decoder) *Stream {
	return &Stream{
		r:   r,
		d:   d,
		buf: make([]byte, defaultReadSize),
	}
}

// Next returns the next audio buffer. It returns io.EOF after the final
// buffer, or the reader's error if reading fails.
func (s *Stream) Next() (Chunk, error) {
	for {
		if s.err != nil {
			return Chunk{}, s.err
		}
		if data := s.d.FlushBuffer(false); data != nil {
			return s.chunk(data), nil
		}
		if s.eof {
			if data := s.d.FlushBuffer(true); data != nil {
				return s.chunk(data), nil
			}
			s.err = io.EOF
			continue
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.bytesIn += int64(n)
			s.d.DecodeChunk(s.buf[:n])
		}
		switch {
		case err == io.EOF:
			s.eof = true
		case err != nil:
			s.err = err
		}
	}
}

func (s *Stream) chunk(data []byte) Chunk {
	return Chunk{Data: data, Timestamps: s.d.Timestamps()}
}

// Decoder returns the decoder driven by the stream.
func (s *Stream) Decoder() *Decoder { return s.d }

// BytesRead returns the number of bytes read from the underlying reader.
func (s *Stream) BytesRead() int64 { return s.bytesIn }
