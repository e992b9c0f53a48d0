package streamdecoder

import (
	"encoding/binary"
	"fmt"
)

// WavFormat is the format description carried by the fixed WAV header.
type WavFormat struct {
	AudioFormat   int // 1 = PCM, 7 = μ-law
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
}

// ParseHeader reads the RIFF/WAVE tags and the fmt chunk from the first
// WavHeaderLen bytes of a stream. Chunk sizes are not validated.
func ParseHeader(header []byte) (WavFormat, error) {
	if len(header) < WavHeaderLen {
		return WavFormat{}, fmt.Errorf("wav header too short: %d bytes", len(header))
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return WavFormat{}, fmt.Errorf("not a RIFF/WAVE stream")
	}
	if string(header[12:16]) != "fmt " {
		return WavFormat{}, fmt.Errorf("missing fmt chunk")
	}

	return WavFormat{
		AudioFormat:   int(binary.LittleEndian.Uint16(header[20:22])),
		Channels:      int(binary.LittleEndian.Uint16(header[channelsOffset : channelsOffset+2])),
		SampleRate:    int(le32(header, sampleRateOffset)),
		ByteRate:      int(le32(header, 28)),
		BlockAlign:    int(binary.LittleEndian.Uint16(header[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(header[34:36])),
	}, nil
}
