// Command resemble-stream synthesizes text through the Resemble streaming
// endpoint and writes the audio to a WAV file, optionally together with the
// word and phoneme timings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/resemble-ai/resemble-go/internal/config"
	"github.com/resemble-ai/resemble-go/internal/observability"
	"github.com/resemble-ai/resemble-go/pkg/resemble"
)

const (
	serviceName = "resemble-stream"
	version     = "0.1.0"
)

type options struct {
	project        string
	voice          string
	text           string
	out            string
	timestampsPath string
	raw            bool
	bufferSize     int
	sampleRate     int
	precision      string
	timestamps     bool
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error().Err(err).Msg("Synthesis failed")
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	var opts options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.StringVar(&opts.project, "project", "", "project UUID")
	fs.StringVar(&opts.voice, "voice", "", "voice UUID (required)")
	fs.StringVar(&opts.text, "text", "", "text or SSML to synthesize; - reads stdin (required)")
	fs.StringVar(&opts.out, "out", config.GetEnv("RESEMBLE_STREAM_OUT", "out.wav"), "output file; - writes raw audio to stdout")
	fs.StringVar(&opts.timestampsPath, "timestamps-out", "", "write timings to this .yaml or .json file")
	fs.BoolVar(&opts.raw, "raw", false, "write the stream bytes as received instead of re-encoding")
	fs.IntVar(&opts.bufferSize, "buffer", cfg.StreamBufferSize, "audio buffer size in bytes")
	fs.IntVar(&opts.sampleRate, "sample-rate", cfg.StreamSampleRate, "output sample rate")
	fs.StringVar(&opts.precision, "precision", cfg.StreamPrecision, "PCM_16, PCM_24, PCM_32 or MULAW")
	fs.BoolVar(&opts.timestamps, "timestamps", cfg.StreamTimestamps, "request word and phoneme timings")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.voice == "" || opts.text == "" {
		return options{}, errors.New("-voice and -text are required")
	}
	if opts.timestampsPath != "" {
		opts.timestamps = true
	}
	if opts.out == "-" {
		opts.raw = true
	}
	opts.precision = strings.ToUpper(opts.precision)

	// Re-validate with the flag overrides applied
	merged := *cfg
	merged.StreamBufferSize = opts.bufferSize
	merged.StreamSampleRate = opts.sampleRate
	merged.StreamPrecision = opts.precision
	if err := merged.Validate(); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, logger zerolog.Logger) error {
	text := opts.text
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}
		text = string(data)
	}

	client, err := resemble.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsEnabled && cfg.MetricsAddr != "" {
		server := startMetricsServer(cfg.MetricsAddr, client, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Metrics server forced to shutdown")
			}
		}()
	}

	logger.Info().
		Str("voice_uuid", opts.voice).
		Str("project_uuid", opts.project).
		Int("sample_rate", opts.sampleRate).
		Str("precision", opts.precision).
		Int("buffer_size", opts.bufferSize).
		Bool("timestamps", opts.timestamps).
		Msg("Starting synthesis")

	stream, err := client.Clips.Stream(ctx, resemble.StreamInput{
		Data:        text,
		ProjectUUID: opts.project,
		VoiceUUID:   opts.voice,
		SampleRate:  opts.sampleRate,
		Precision:   opts.precision,
	}, resemble.StreamConfig{
		BufferSize:      opts.bufferSize,
		IgnoreWavHeader: !opts.raw || cfg.StreamIgnoreWavHeader,
		Timestamps:      opts.timestamps,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	start := time.Now()
	written, err := writeAudio(stream, opts)
	if err != nil {
		return err
	}

	if opts.timestampsPath != "" {
		ts := stream.Timestamps()
		if ts == nil {
			logger.Warn().Msg("Stream carried no timestamps")
		} else if err := writeTimestamps(opts.timestampsPath, ts); err != nil {
			return err
		}
	}

	event := logger.Info().
		Str("out", opts.out).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start))
	if format, ok := stream.Format(); ok {
		event = event.
			Int("sample_rate", format.SampleRate).
			Int("bits_per_sample", format.BitsPerSample).
			Int("channels", format.Channels)
	}
	event.Msg("Synthesis complete")
	return nil
}

// writeAudio copies the stream to opts.out and returns the number of audio
// bytes received.
func writeAudio(stream *resemble.AudioStream, opts options) (int64, error) {
	if opts.out == "-" {
		return stream.WriteTo(os.Stdout)
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return 0, fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if opts.raw {
		return stream.WriteTo(f)
	}

	var (
		sink    *wavSink
		written int64
	)
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, err
		}
		if sink == nil {
			format, ok := stream.Format()
			if !ok {
				return written, errors.New("stream did not start with a WAV header")
			}
			if sink, err = newWavSink(f, format); err != nil {
				return written, err
			}
		}
		if _, err := sink.Write(chunk.Data); err != nil {
			return written, fmt.Errorf("failed to write audio: %w", err)
		}
		written += int64(len(chunk.Data))
	}

	if sink == nil {
		return 0, errors.New("stream carried no audio")
	}
	if err := sink.Close(); err != nil {
		return written, err
	}
	return written, f.Close()
}

func startMetricsServer(addr string, client *resemble.Client, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler(serviceName, version))
	mux.HandleFunc("/ready", observability.ReadinessHandler(serviceName, version, map[string]observability.HealthCheckFunc{
		"resemble": client.Healthy,
	}))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("Metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return server
}
