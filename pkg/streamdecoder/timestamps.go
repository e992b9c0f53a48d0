package streamdecoder

import (
	"encoding/binary"
	"strings"
)

// Byte layout of the timestamp sub-chunks that follow the WAV header.
const (
	chunkHeaderLen = 8  // 4-byte tag + 4-byte size
	cueRecordLen   = 24 // id, position, fcc chunk, chunk start, block start, sample offset
	cueFrameOffset = 20 // sample offset within a cue record
	listHeaderLen  = 12 // "LIST", size, "adtl"
	ltxtHeaderLen  = 28 // "ltxt", size, cue id, sample length, purpose, country, language, dialect, code page
	ltxtFixedSize  = 20 // bytes counted by the ltxt size field before the text

	sampleRateOffset = 24
	channelsOffset   = 22
)

// Timestamps holds word-level (grapheme) and phoneme-level timings, in
// seconds, extracted from the cue/LIST sub-chunks of a stream. Times are
// [start, end] pairs aligned with the matching chars entries.
type Timestamps struct {
	GraphChars []string     `json:"graph_chars" yaml:"graph_chars"`
	GraphTimes [][2]float64 `json:"graph_times" yaml:"graph_times"`
	PhonChars  []string     `json:"phon_chars" yaml:"phon_chars"`
	PhonTimes  [][2]float64 `json:"phon_times" yaml:"phon_times"`
}

func newTimestamps() *Timestamps {
	return &Timestamps{
		GraphChars: []string{},
		GraphTimes: [][2]float64{},
		PhonChars:  []string{},
		PhonTimes:  [][2]float64{},
	}
}

func (t *Timestamps) add(kind, text string, frame, samples uint32, sampleRate float64) {
	var span [2]float64
	if sampleRate > 0 {
		span[0] = float64(frame) / sampleRate
		span[1] = float64(uint64(frame)+uint64(samples)) / sampleRate
	}

	switch kind {
	case "grph":
		t.GraphChars = append(t.GraphChars, text)
		t.GraphTimes = append(t.GraphTimes, span)
	case "phon":
		t.PhonChars = append(t.PhonChars, text)
		t.PhonTimes = append(t.PhonTimes, span)
	}
}

// ScanState reports the outcome of a timestamp scan.
type ScanState int

const (
	// ScanIncomplete means more bytes are needed before the sub-chunk can be parsed.
	ScanIncomplete ScanState = iota
	// ScanAbsent means the stream carries no cue chunk after the header.
	ScanAbsent
	// ScanComplete means the timestamps were parsed.
	ScanComplete
)

func (s ScanState) String() string {
	switch s {
	case ScanIncomplete:
		return "incomplete"
	case ScanAbsent:
		return "absent"
	case ScanComplete:
		return "complete"
	}
	return "unknown"
}

// ScanResult is returned by ParseTimestamps.
type ScanResult struct {
	State ScanState

	// Timestamps is set when State is ScanComplete.
	Timestamps *Timestamps

	// End is the offset just past the timestamp sub-chunks (ScanComplete).
	End int

	// Need is the minimum buffer length worth retrying with (ScanIncomplete).
	Need int
}

func incomplete(need int) ScanResult {
	return ScanResult{State: ScanIncomplete, Need: need}
}

// ParseTimestamps locates the cue and LIST/ltxt sub-chunks that sit directly
// after the WAV header in buf and converts them into timings. buf must start
// at the first byte of the stream.
func ParseTimestamps(buf []byte) ScanResult {
	if len(buf) < WavHeaderLen+4 {
		return incomplete(WavHeaderLen + 4)
	}
	if string(buf[WavHeaderLen:WavHeaderLen+4]) != "cue " {
		return ScanResult{State: ScanAbsent}
	}

	off := WavHeaderLen + chunkHeaderLen
	if len(buf) < off+4 {
		return incomplete(off + 4)
	}
	cueEnd := WavHeaderLen + chunkHeaderLen + int(le32(buf, WavHeaderLen+4))
	if cueEnd > len(buf) {
		return incomplete(cueEnd)
	}

	// The declared count is not trusted; the chunk size bounds the records.
	numCues := le32(buf, off)
	off += 4
	hint := max(0, (cueEnd-off)/cueRecordLen)
	if int64(numCues) < int64(hint) {
		hint = int(numCues)
	}
	frames := make(map[uint32]uint32, hint)
	for i := uint32(0); i < numCues && off+cueRecordLen <= cueEnd; i++ {
		frames[le32(buf, off)] = le32(buf, off+cueFrameOffset)
		off += cueRecordLen
	}

	ts := newTimestamps()
	off = cueEnd
	if len(buf) < off+listHeaderLen {
		return incomplete(off + listHeaderLen)
	}
	if string(buf[off:off+4]) != "LIST" {
		return ScanResult{State: ScanComplete, Timestamps: ts, End: cueEnd}
	}
	listEnd := off + chunkHeaderLen + int(le32(buf, off+4))
	if listEnd > len(buf) {
		return incomplete(listEnd)
	}

	sampleRate := float64(le32(buf, sampleRateOffset))
	off += listHeaderLen
	for off+chunkHeaderLen <= listEnd {
		tag := string(buf[off : off+4])
		size := int(le32(buf, off+4))
		next := off + chunkHeaderLen + size + size%2
		if next > listEnd {
			break
		}

		if tag == "ltxt" && size >= ltxtFixedSize {
			cueID := le32(buf, off+8)
			samples := le32(buf, off+12)
			kind := strings.TrimSpace(string(buf[off+16 : off+20]))

			text := ""
			if textLen := size - ltxtFixedSize; textLen > 0 {
				start := off + ltxtHeaderLen
				text = string(buf[start : start+textLen-1]) // drop the NUL terminator
			}
			ts.add(kind, text, frames[cueID], samples, sampleRate)
		}
		off = next
	}

	return ScanResult{State: ScanComplete, Timestamps: ts, End: listEnd}
}

func le32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+4])
}
