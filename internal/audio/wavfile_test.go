package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func decodeWavFile(t *testing.T, path string) (*wav.Decoder, []int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open wav: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("Expected a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode wav: %v", err)
	}
	return dec, buf.Data
}

func TestWavWriter_PCM16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w, err := NewWavWriter(f, 8000, 16, 1, FormatPCM)
	if err != nil {
		t.Fatalf("NewWavWriter failed: %v", err)
	}

	samples := []int16{0, 100, -100, 32767, -32768}
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	// Split mid-sample to exercise the pending bytes path
	if _, err := w.Write(pcm[:3]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write(pcm[3:]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if w.BytesWritten() != int64(len(pcm)) {
		t.Errorf("Expected %d bytes written, got %d", len(pcm), w.BytesWritten())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	f.Close()

	dec, data := decodeWavFile(t, path)
	if dec.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", dec.SampleRate)
	}
	if dec.BitDepth != 16 {
		t.Errorf("Expected bit depth 16, got %d", dec.BitDepth)
	}
	if len(data) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(data))
	}
	for i, s := range samples {
		if data[i] != int(s) {
			t.Errorf("Sample %d: expected %d, got %d", i, s, data[i])
		}
	}
}

func TestWavWriter_Mulaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mulaw.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w, err := NewWavWriter(f, 8000, 8, 1, FormatMulaw)
	if err != nil {
		t.Fatalf("NewWavWriter failed: %v", err)
	}
	if _, err := w.Write([]byte{0xFF, 0x00, 0x80}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	f.Close()

	dec, data := decodeWavFile(t, path)
	if dec.BitDepth != 16 {
		t.Errorf("Expected μ-law to be expanded to 16-bit, got %d", dec.BitDepth)
	}
	expected := []int{0, -32124, 32124}
	if len(data) != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), len(data))
	}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, expected[i], data[i])
		}
	}
}

func TestNewWavWriter_Unsupported(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if _, err := NewWavWriter(f, 8000, 16, 1, 3); err == nil {
		t.Error("Expected error for IEEE float format")
	}
	if _, err := NewWavWriter(f, 8000, 8, 1, FormatPCM); err == nil {
		t.Error("Expected error for 8-bit PCM")
	}
	if _, err := NewWavWriter(f, 0, 16, 1, FormatPCM); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}
