package audio

import (
	"encoding/binary"
	"fmt"
)

// ConvertPCMUToPCM converts G.711 PCMU (μ-law) to linear PCM
// Output: 16-bit signed integers, little-endian
func ConvertPCMUToPCM(pcmuData []byte) ([]byte, error) {
	if len(pcmuData) == 0 {
		return nil, fmt.Errorf("empty PCMU data")
	}

	pcmData := make([]byte, len(pcmuData)*2) // 16-bit output

	for i, mulawByte := range pcmuData {
		sample := mulawToLinear(mulawByte)
		pcmData[i*2] = byte(sample)
		pcmData[i*2+1] = byte(sample >> 8)
	}

	return pcmData, nil
}

// mulawToLinear converts an 8-bit μ-law sample to 16-bit linear PCM
// (ITU-T G.711, 0x84 bias)
func mulawToLinear(mulawByte byte) int16 {
	const bias = 0x84

	// μ-law uses inverted representation
	mulawByte = ^mulawByte

	sign := mulawByte & 0x80
	segment := int32((mulawByte >> 4) & 0x07)
	mantissa := int32(mulawByte & 0x0F)

	magnitude := ((mantissa << 3) + bias) << segment
	magnitude -= bias

	if sign != 0 {
		return int16(-magnitude)
	}
	return int16(magnitude)
}

// DecodeSamples converts little-endian signed PCM bytes into integer samples.
// The length of data must be a multiple of the sample width.
func DecodeSamples(data []byte, bitDepth int) ([]int, error) {
	width := bitDepth / 8
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported PCM bit depth %d", bitDepth)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("PCM data length %d is not a multiple of %d", len(data), width)
	}

	samples := make([]int, len(data)/width)
	for i := range samples {
		b := data[i*width:]
		switch bitDepth {
		case 16:
			samples[i] = int(int16(binary.LittleEndian.Uint16(b)))
		case 24:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			samples[i] = int(v)
		case 32:
			samples[i] = int(int32(binary.LittleEndian.Uint32(b)))
		}
	}
	return samples, nil
}
