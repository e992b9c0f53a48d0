package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/resemble-ai/resemble-go/internal/audio"
	"github.com/resemble-ai/resemble-go/pkg/streamdecoder"
)

// wavSink re-encodes streamed audio into a WAV file whose header carries the
// real data length. A leading "data" chunk header, which follows the fixed
// header in the stream, is dropped before the first sample.
type wavSink struct {
	writer  *audio.WavWriter
	prefix  []byte
	started bool
}

func newWavSink(w io.WriteSeeker, format streamdecoder.WavFormat) (*wavSink, error) {
	writer, err := audio.NewWavWriter(w, format.SampleRate, format.BitsPerSample, format.Channels, format.AudioFormat)
	if err != nil {
		return nil, err
	}
	return &wavSink{writer: writer}, nil
}

func (s *wavSink) Write(p []byte) (int, error) {
	n := len(p)
	if !s.started {
		s.prefix = append(s.prefix, p...)
		if len(s.prefix) < 8 && bytes.HasPrefix([]byte("data"), s.prefix[:min(len(s.prefix), 4)]) {
			return n, nil
		}
		s.started = true
		p = s.prefix
		s.prefix = nil
		if len(p) >= 8 && string(p[:4]) == "data" {
			p = p[8:]
		}
	}
	if _, err := s.writer.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}

// Close flushes a pending prefix shorter than a chunk header as audio and
// finalises the file header.
func (s *wavSink) Close() error {
	if !s.started && len(s.prefix) > 0 {
		if _, err := s.writer.Write(s.prefix); err != nil {
			return err
		}
	}
	return s.writer.Close()
}

// writeTimestamps stores ts as JSON when path ends in .json and as YAML
// otherwise.
func writeTimestamps(path string, ts *streamdecoder.Timestamps) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(ts, "", "  ")
	default:
		data, err = yaml.Marshal(ts)
	}
	if err != nil {
		return fmt.Errorf("failed to encode timestamps: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write timestamps: %w", err)
	}
	return nil
}
