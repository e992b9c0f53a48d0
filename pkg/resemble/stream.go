package resemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/resemble-ai/resemble-go/internal/observability"
	"github.com/resemble-ai/resemble-go/pkg/streamdecoder"
)

// StreamInput is the body of a streaming synthesis request.
type StreamInput struct {
	Data        string `json:"data"`
	ProjectUUID string `json:"project_uuid"`
	VoiceUUID   string `json:"voice_uuid"`
	SampleRate  int    `json:"sample_rate,omitempty"` // 8000, 16000, 22050, 32000 or 44100
	Precision   string `json:"precision,omitempty"`   // MULAW, PCM_16 or PCM_32
}

// StreamConfig controls how the stream is decoded. The zero value yields
// 4096-byte buffers, keeps the WAV header and skips timestamps.
type StreamConfig struct {
	BufferSize      int  // even and at least 2; 0 selects streamdecoder.DefaultBufferSize
	IgnoreWavHeader bool // drop the 36-byte WAV header from the audio
	Timestamps      bool // request and extract word and phoneme timings
}

type streamRequest struct {
	StreamInput
	WavEncodedTimestamps bool `json:"wav_encoded_timestamps"`
}

// StreamChunk is one audio buffer. Timestamps is nil until the timings have
// been received and stays set afterwards.
type StreamChunk struct {
	Data       []byte
	Timestamps *streamdecoder.Timestamps
}

// Stream starts streaming synthesis. Audio arrives in buffers of exactly
// cfg.BufferSize bytes, except for the last one. The caller must Close the
// returned stream.
func (s *ClipsService) Stream(ctx context.Context, in StreamInput, cfg StreamConfig) (*AudioStream, error) {
	bufferSize := cfg.BufferSize
	if bufferSize == 0 {
		bufferSize = streamdecoder.DefaultBufferSize
	}
	decoder, err := streamdecoder.New(bufferSize, cfg.IgnoreWavHeader, cfg.Timestamps)
	if err != nil {
		return nil, err
	}
	decoder.Reset()

	cl, err := jsonCall(http.MethodPost, synthesisServer, "stream", streamRequest{
		StreamInput:          in,
		WavEncodedTimestamps: cfg.Timestamps,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.send(ctx, cl)
	if err != nil {
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	streamID := resp.Request.Header.Get("X-Request-ID")
	logger := observability.WithCorrelationID(s.client.logger, streamID)
	metrics := observability.NewStreamMetrics(streamID)
	metrics.RecordStreamStart()

	logger.Info().
		Str("voice_uuid", in.VoiceUUID).
		Int("buffer_size", bufferSize).
		Bool("timestamps", cfg.Timestamps).
		Msg("Stream started")

	return &AudioStream{
		body:    resp.Body,
		stream:  streamdecoder.NewStream(resp.Body, decoder),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// AudioStream yields decoded audio from a streaming synthesis response.
// It is not safe for concurrent use.
type AudioStream struct {
	body     io.ReadCloser
	stream   *streamdecoder.Stream
	metrics  *observability.StreamMetrics
	logger   zerolog.Logger
	lastRead int64
	done     bool
	closed   bool
}

// Next returns the next audio buffer. It returns io.EOF once the stream is
// exhausted.
func (a *AudioStream) Next() (StreamChunk, error) {
	if a.closed {
		return StreamChunk{}, io.ErrClosedPipe
	}

	chunk, err := a.stream.Next()

	read := a.stream.BytesRead()
	a.metrics.RecordBytesIn(read - a.lastRead)
	a.lastRead = read

	switch {
	case err == io.EOF:
		a.finish()
		return StreamChunk{}, io.EOF
	case err != nil:
		a.metrics.RecordError("read")
		a.logger.Error().Err(err).Int64("bytes_read", read).Msg("Stream read failed")
		return StreamChunk{}, fmt.Errorf("failed to read stream: %w", err)
	}

	a.metrics.RecordBuffer(len(chunk.Data))
	if chunk.Timestamps != nil {
		a.metrics.RecordTimestamps()
	}
	return StreamChunk{Data: chunk.Data, Timestamps: chunk.Timestamps}, nil
}

// WriteTo writes all remaining audio to w.
func (a *AudioStream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		chunk, err := a.Next()
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		n, err := w.Write(chunk.Data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
}

// Timestamps returns the timings once they have been received.
func (a *AudioStream) Timestamps() *streamdecoder.Timestamps {
	return a.stream.Decoder().Timestamps()
}

// Format returns the audio format from the WAV header once it has been
// received.
func (a *AudioStream) Format() (streamdecoder.WavFormat, bool) {
	return a.stream.Decoder().Format()
}

// Close releases the response body. It is safe to call more than once.
func (a *AudioStream) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.metrics.RecordStreamEnd()
	return a.body.Close()
}

func (a *AudioStream) finish() {
	if a.done {
		return
	}
	a.done = true

	summary := a.metrics.Summary()
	a.metrics.RecordStreamEnd()
	a.logger.Info().
		Int64("bytes_in", summary.BytesIn).
		Int64("bytes_out", summary.BytesOut).
		Int64("buffers", summary.Buffers).
		Bool("timestamps", summary.Timestamps).
		Dur("duration", summary.Duration).
		Msg("Stream completed")
}
