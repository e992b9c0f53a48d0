package audio

// SpanQueue is a FIFO of byte spans for audio data.
// Reads consume bytes across span boundaries without re-concatenating the
// whole queue. It is not safe for concurrent use.
type SpanQueue struct {
	spans [][]byte
	head  int // read offset into spans[0]
	size  int
}

// NewSpanQueue creates an empty span queue
func NewSpanQueue() *SpanQueue {
	return &SpanQueue{}
}

// Write appends a copy of data to the queue
// Returns the number of bytes written (always len(data))
func (q *SpanQueue) Write(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	span := make([]byte, len(data))
	copy(span, data)
	q.Push(span)
	return len(span)
}

// Push appends span without copying it. The queue takes ownership of span;
// the caller must not modify it afterwards.
func (q *SpanQueue) Push(span []byte) {
	if len(span) == 0 {
		return
	}
	q.spans = append(q.spans, span)
	q.size += len(span)
}

// Read reads data from the front of the queue
// Returns the number of bytes read
func (q *SpanQueue) Read(data []byte) int {
	read := 0
	for read < len(data) && len(q.spans) > 0 {
		n := copy(data[read:], q.spans[0][q.head:])
		read += n
		q.head += n
		if q.head == len(q.spans[0]) {
			q.spans[0] = nil
			q.spans = q.spans[1:]
			q.head = 0
		}
	}
	q.size -= read
	return read
}

// Next removes and returns the first n bytes of the queue, or everything if
// fewer than n bytes are queued. Returns nil when the queue is empty.
func (q *SpanQueue) Next(n int) []byte {
	if n > q.size {
		n = q.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	q.Read(out)
	return out
}

// Available returns the number of bytes available to read
func (q *SpanQueue) Available() int {
	return q.size
}

// Spans returns the number of spans currently queued
func (q *SpanQueue) Spans() int {
	return len(q.spans)
}

// Clear discards all queued data
func (q *SpanQueue) Clear() {
	q.spans = nil
	q.head = 0
	q.size = 0
}

// IsEmpty returns true if the queue holds no data
func (q *SpanQueue) IsEmpty() bool {
	return q.size == 0
}
