// Package streamdecoder re-segments a chunked WAV byte stream into
// fixed-size audio buffers.
//
// Fragments arrive from the network with arbitrary boundaries. The decoder
// captures the fixed WAV header, optionally extracts the word and phoneme
// timings that the synthesis server embeds as cue/LIST sub-chunks right after
// the header, and hands out audio in buffers of a caller-chosen size.
//
// A Decoder belongs to exactly one stream and is not safe for concurrent use.
package streamdecoder

import (
	"errors"
	"fmt"

	"github.com/resemble-ai/resemble-go/internal/audio"
)

const (
	// DefaultBufferSize is the buffer size used by NewDefault.
	DefaultBufferSize = 4 * 1024

	// WavHeaderLen is the length of the RIFF header plus the fmt chunk as
	// written by the synthesis server. The timestamp sub-chunks, or the data
	// chunk, start at this offset.
	WavHeaderLen = 36
)

// ErrInvalidConfiguration is returned for a buffer size that is smaller
// than 2 or odd.
var ErrInvalidConfiguration = errors.New("invalid decoder configuration")

// Decoder is the incremental stream decoder.
type Decoder struct {
	bufferSize        int
	ignoreWavHeader   bool
	processTimestamps bool

	pending *audio.SpanQueue
	header  []byte

	// scan retains the stream verbatim until the timestamp sub-chunks are
	// resolved; scanNeed is the length below which a rescan cannot succeed.
	scan       []byte
	scanNeed   int
	scanDone   bool
	timestamps *Timestamps
}

// New creates a decoder. bufferSize must be even and at least 2.
func New(bufferSize int, ignoreWavHeader, processTimestamps bool) (*Decoder, error) {
	if err := validateBufferSize(bufferSize); err != nil {
		return nil, err
	}
	return &Decoder{
		bufferSize:        bufferSize,
		ignoreWavHeader:   ignoreWavHeader,
		processTimestamps: processTimestamps,
		pending:           audio.NewSpanQueue(),
	}, nil
}

// NewDefault creates a decoder that strips the header and ignores timestamps.
func NewDefault() *Decoder {
	d, _ := New(DefaultBufferSize, true, false)
	return d
}

func validateBufferSize(size int) error {
	if size < 2 {
		return fmt.Errorf("%w: buffer size cannot be less than 2, got %d", ErrInvalidConfiguration, size)
	}
	if size%2 != 0 {
		return fmt.Errorf("%w: buffer size must be evenly divisible by 2, got %d", ErrInvalidConfiguration, size)
	}
	return nil
}

// SetBufferSize changes the size of buffers returned by later flushes.
func (d *Decoder) SetBufferSize(size int) error {
	if err := validateBufferSize(size); err != nil {
		return err
	}
	d.bufferSize = size
	return nil
}

// BufferSize returns the current target buffer size.
func (d *Decoder) BufferSize() int { return d.bufferSize }

// SetIgnoreWavHeader changes the header policy. While the header is still
// being captured the change also applies to the header bytes seen so far;
// once it is complete the change only affects how the header would be
// treated after a Reset.
func (d *Decoder) SetIgnoreWavHeader(ignore bool) {
	if ignore == d.ignoreWavHeader {
		return
	}
	d.ignoreWavHeader = ignore

	// Without timestamp scanning, a partial header goes straight to pending
	// and nothing else has been queued yet.
	if len(d.header) == 0 || len(d.header) >= WavHeaderLen || d.processTimestamps {
		return
	}
	if ignore {
		d.pending.Clear()
	} else {
		d.pending.Write(d.header)
	}
}

// DecodeChunk consumes the next network fragment. The fragment is copied;
// the caller may reuse it once DecodeChunk returns.
func (d *Decoder) DecodeChunk(fragment []byte) {
	if len(fragment) == 0 {
		return
	}

	headerPart := 0
	if len(d.header) < WavHeaderLen {
		headerPart = min(WavHeaderLen-len(d.header), len(fragment))
		d.header = append(d.header, fragment[:headerPart]...)
	}

	if !d.processTimestamps || d.scanDone {
		if d.ignoreWavHeader {
			d.pending.Write(fragment[headerPart:])
		} else {
			d.pending.Write(fragment)
		}
		return
	}

	// Nothing after the header may be released as audio until the
	// timestamp sub-chunks have been located.
	d.scan = append(d.scan, fragment...)
	if headerPart > 0 && len(d.header) == WavHeaderLen && !d.ignoreWavHeader {
		d.pending.Write(d.header)
	}
	if len(d.scan) < d.scanNeed {
		return
	}

	res := ParseTimestamps(d.scan)
	switch res.State {
	case ScanIncomplete:
		d.scanNeed = res.Need
	case ScanComplete:
		d.timestamps = res.Timestamps
		d.resolveScan(res.End)
	case ScanAbsent:
		d.resolveScan(WavHeaderLen)
	}
}

// resolveScan releases everything after end as audio and stops scanning.
func (d *Decoder) resolveScan(end int) {
	if end < len(d.scan) {
		d.pending.Push(d.scan[end:])
	}
	d.scan = nil
	d.scanNeed = 0
	d.scanDone = true
}

// FlushBuffer returns the next audio buffer of exactly BufferSize bytes, or
// nil if not enough data has accumulated. With force set it returns all
// remaining bytes instead, or nil if there are none.
func (d *Decoder) FlushBuffer(force bool) []byte {
	available := d.pending.Available()
	if force && available > 0 {
		return d.pending.Next(available)
	}
	if available >= d.bufferSize {
		return d.pending.Next(d.bufferSize)
	}
	return nil
}

// Buffered returns the number of audio bytes waiting to be flushed.
func (d *Decoder) Buffered() int {
	return d.pending.Available()
}

// Reset returns the decoder to its freshly constructed state, keeping the
// buffer size and header/timestamp policies.
func (d *Decoder) Reset() {
	d.pending.Clear()
	d.header = nil
	d.scan = nil
	d.scanNeed = 0
	d.scanDone = false
	d.timestamps = nil
}

// Header returns the captured WAV header, or nil until all WavHeaderLen
// bytes have been seen.
func (d *Decoder) Header() []byte {
	if len(d.header) < WavHeaderLen {
		return nil
	}
	return d.header
}

// Format parses the captured header. ok is false until the header is
// complete or when it is not a RIFF/WAVE header.
func (d *Decoder) Format() (format WavFormat, ok bool) {
	header := d.Header()
	if header == nil {
		return WavFormat{}, false
	}
	format, err := ParseHeader(header)
	return format, err == nil
}

// Timestamps returns the parsed timings once the timestamp sub-chunks have
// been fully received. It returns nil when timestamps were not requested,
// are still pending, or the stream carries none. The returned value must not
// be modified.
func (d *Decoder) Timestamps() *Timestamps {
	if !d.processTimestamps || !d.scanDone {
		return nil
	}
	return d.timestamps
}

// TimestampsResolved reports whether the decoder has finished looking for
// timestamp sub-chunks, whether or not any were found.
func (d *Decoder) TimestampsResolved() bool {
	return d.processTimestamps && d.scanDone
}
