package streamdecoder

import (
	"encoding/binary"
)

type ltxtEntry struct {
	cueID   uint32
	frame   uint32
	samples uint32
	kind    string
	text    string
}

func putU16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

func putU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// testHeader builds the 36-byte RIFF header + fmt chunk for 16-bit PCM.
func testHeader(sampleRate uint32, channels uint16) []byte {
	h := []byte("RIFF")
	h = putU32(h, 0xFFFFFFFF)
	h = append(h, "WAVE"...)
	h = append(h, "fmt "...)
	h = putU32(h, 16)
	h = putU16(h, 1)
	h = putU16(h, channels)
	h = putU32(h, sampleRate)
	h = putU32(h, sampleRate*uint32(channels)*2)
	h = putU16(h, channels*2)
	h = putU16(h, 16)
	return h
}

// testTimestampChunks builds a cue chunk followed by a LIST/adtl chunk with
// one ltxt record per entry. Each entry gets its own cue point.
func testTimestampChunks(entries []ltxtEntry) []byte {
	cue := []byte("cue ")
	cue = putU32(cue, uint32(4+cueRecordLen*len(entries)))
	cue = putU32(cue, uint32(len(entries)))
	for _, e := range entries {
		cue = putU32(cue, e.cueID)
		cue = putU32(cue, 0)
		cue = append(cue, "data"...)
		cue = putU32(cue, 0)
		cue = putU32(cue, 0)
		cue = putU32(cue, e.frame)
	}

	var records []byte
	for _, e := range entries {
		text := append([]byte(e.text), 0)
		records = append(records, "ltxt"...)
		records = putU32(records, uint32(ltxtFixedSize+len(text)))
		records = putU32(records, e.cueID)
		records = putU32(records, e.samples)
		records = append(records, e.kind...)
		records = append(records, 0, 0, 0, 0, 0, 0, 0, 0) // country, language, dialect, code page
		records = append(records, text...)
		if len(text)%2 != 0 {
			records = append(records, 0)
		}
	}

	list := []byte("LIST")
	list = putU32(list, uint32(4+len(records)))
	list = append(list, "adtl"...)
	list = append(list, records...)

	return append(cue, list...)
}

func testAudio(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// split cuts data into fragments of the given size (the last may be shorter).
func split(data []byte, size int) [][]byte {
	var out [][]byte
	for len(data) > size {
		out = append(out, data[:size])
		data = data[size:]
	}
	if len(data) > 0 {
		out = append(out, data)
	}
	return out
}

// drain runs the decode/flush protocol over fragments and returns every
// buffer handed out, including the final forced flush.
func drain(d *Decoder, fragments [][]byte) [][]byte {
	var out [][]byte
	for _, f := range fragments {
		d.DecodeChunk(f)
		if buf := d.FlushBuffer(false); buf != nil {
			out = append(out, buf)
		}
	}
	for buf := d.FlushBuffer(false); buf != nil; buf = d.FlushBuffer(false) {
		out = append(out, buf)
	}
	if buf := d.FlushBuffer(true); buf != nil {
		out = append(out, buf)
	}
	return out
}
