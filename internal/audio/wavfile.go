package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV audio format codes
const (
	FormatPCM   = 1
	FormatMulaw = 7
)

// WavWriter encodes streamed audio bytes into a WAV file.
// μ-law input is expanded to 16-bit PCM on the way out.
type WavWriter struct {
	enc        *wav.Encoder
	format     int
	bitDepth   int
	channels   int
	sampleRate int
	pending    []byte // trailing bytes of an incomplete sample
	written    int64
}

// NewWavWriter creates a writer for audio in the given source format
func NewWavWriter(w io.WriteSeeker, sampleRate, bitDepth, channels, audioFormat int) (*WavWriter, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid wav format: %d Hz, %d channels", sampleRate, channels)
	}

	outDepth := bitDepth
	switch audioFormat {
	case FormatPCM:
		switch bitDepth {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("unsupported PCM bit depth %d", bitDepth)
		}
	case FormatMulaw:
		outDepth = 16
	default:
		return nil, fmt.Errorf("unsupported wav audio format %d", audioFormat)
	}

	return &WavWriter{
		enc:        wav.NewEncoder(w, sampleRate, outDepth, channels, FormatPCM),
		format:     audioFormat,
		bitDepth:   outDepth,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// Write encodes p. Bytes that do not form a whole sample are held until the next call.
func (w *WavWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var data []byte
	switch w.format {
	case FormatMulaw:
		pcm, err := ConvertPCMUToPCM(p)
		if err != nil {
			return 0, err
		}
		data = pcm
	default:
		data = append(w.pending, p...)
		width := w.bitDepth / 8
		aligned := len(data) - len(data)%width
		w.pending = append([]byte(nil), data[aligned:]...)
		data = data[:aligned]
	}

	if len(data) == 0 {
		return len(p), nil
	}

	samples, err := DecodeSamples(data, w.bitDepth)
	if err != nil {
		return 0, err
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.channels, SampleRate: w.sampleRate},
		Data:           samples,
		SourceBitDepth: w.bitDepth,
	}
	if err := w.enc.Write(buf); err != nil {
		return 0, fmt.Errorf("write wav: %w", err)
	}
	w.written += int64(len(p))
	return len(p), nil
}

// BytesWritten returns the number of source bytes accepted so far
func (w *WavWriter) BytesWritten() int64 {
	return w.written
}

// Close finalises the WAV header. Trailing bytes of an incomplete sample are dropped.
func (w *WavWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
