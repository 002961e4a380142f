// Package sse parses Server-Sent-Events streams incrementally. The AI
// gateway replies with newline-delimited "data: <json>" frames terminated by
// a literal "data: [DONE]"; network reads can split a frame at any byte, so
// the parser carries partial lines across feeds instead of discarding them.
// It is deliberately independent of any rendering or HTTP concern so it can
// be driven with arbitrary chunkings in tests.
package sse

import (
	"bytes"
	"encoding/json"
	"strings"
)

const doneSentinel = "[DONE]"

// Frame is a single complete data frame extracted from the stream.
type Frame struct {
	Data string
}

// Parser accumulates raw bytes and yields complete frames. A trailing line
// without a newline stays buffered until more bytes arrive; it is never
// emitted early and never emitted twice.
type Parser struct {
	buf  bytes.Buffer
	done bool
}

// NewParser returns a parser ready to consume a stream.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends chunk to the internal buffer and returns every frame that is
// now complete. Frames after the [DONE] sentinel are ignored.
func (p *Parser) Feed(chunk []byte) []Frame {
	if p.done {
		return nil
	}
	p.buf.Write(chunk)

	var frames []Frame
	for {
		raw := p.buf.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			break
		}

		line := string(raw[:idx])
		p.buf.Next(idx + 1)

		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, "data:") {
			// Comments, event names, and blank separators are not payload.
			continue
		}

		data := strings.TrimPrefix(line, "data:")
		data = strings.TrimPrefix(data, " ")
		if data == doneSentinel {
			p.done = true
			break
		}
		frames = append(frames, Frame{Data: data})
	}

	return frames
}

// Done reports whether the [DONE] sentinel has been seen.
func (p *Parser) Done() bool {
	return p.done
}

// Pending returns the number of buffered bytes awaiting a newline.
func (p *Parser) Pending() int {
	return p.buf.Len()
}

// Chunk is the OpenAI chat-completion-chunk shape the gateway streams.
type Chunk struct {
	ID      string `json:"id"`
	Model   string `json:"model,omitempty"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// DecodeChunk parses a frame payload as a completion chunk.
func DecodeChunk(f Frame) (Chunk, error) {
	var c Chunk
	err := json.Unmarshal([]byte(f.Data), &c)
	return c, err
}

// Delta returns the content fragment carried by the chunk, if any.
func (c Chunk) Delta() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
