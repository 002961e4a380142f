package sse

import (
	"fmt"
	"strings"
	"testing"
)

func frame(content string) string {
	return fmt.Sprintf("data: {\"id\":\"c1\",\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func collectDeltas(t *testing.T, p *Parser, chunks [][]byte) string {
	t.Helper()
	var sb strings.Builder
	for _, chunk := range chunks {
		for _, f := range p.Feed(chunk) {
			c, err := DecodeChunk(f)
			if err != nil {
				t.Fatalf("decode %q: %v", f.Data, err)
			}
			sb.WriteString(c.Delta())
		}
	}
	return sb.String()
}

// splitAt cuts the stream into pieces of the given size.
func splitAt(stream string, size int) [][]byte {
	var chunks [][]byte
	for len(stream) > 0 {
		n := size
		if n > len(stream) {
			n = len(stream)
		}
		chunks = append(chunks, []byte(stream[:n]))
		stream = stream[n:]
	}
	return chunks
}

func TestParser_ConvergesUnderAnyChunking(t *testing.T) {
	stream := frame("Patient ") + frame("has ") + frame("elevated ") + frame("troponin.") + "data: [DONE]\n\n"
	want := "Patient has elevated troponin."

	// Every chunk size from one byte up to the whole stream must yield the
	// same concatenation, including splits mid-JSON-object.
	for size := 1; size <= len(stream); size++ {
		p := NewParser()
		got := collectDeltas(t, p, splitAt(stream, size))
		if got != want {
			t.Fatalf("chunk size %d: got %q, want %q", size, got, want)
		}
		if !p.Done() {
			t.Fatalf("chunk size %d: parser did not see [DONE]", size)
		}
	}
}

func TestParser_PartialLineHeldAcrossFeeds(t *testing.T) {
	p := NewParser()

	full := frame("hello")
	if frames := p.Feed([]byte(full[:10])); len(frames) != 0 {
		t.Fatalf("expected no frames from partial line, got %d", len(frames))
	}
	if p.Pending() == 0 {
		t.Fatal("expected partial line to stay buffered")
	}

	frames := p.Feed([]byte(full[10:]))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame after completion, got %d", len(frames))
	}
	c, err := DecodeChunk(frames[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Delta() != "hello" {
		t.Errorf("expected hello, got %q", c.Delta())
	}
}

func TestParser_NoFramesAfterDone(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("data: [DONE]\n\n"))
	if !p.Done() {
		t.Fatal("expected done")
	}
	if frames := p.Feed([]byte(frame("late"))); len(frames) != 0 {
		t.Errorf("expected no frames after [DONE], got %d", len(frames))
	}
}

func TestParser_IgnoresNonDataLines(t *testing.T) {
	p := NewParser()
	stream := ": keep-alive\n\nevent: ping\n" + frame("ok")
	frames := p.Feed([]byte(stream))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Data == "" {
		t.Error("expected payload data")
	}
}

func TestParser_CRLFLines(t *testing.T) {
	p := NewParser()
	frames := p.Feed([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\r\n\r\n"))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	c, err := DecodeChunk(frames[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Delta() != "x" {
		t.Errorf("expected x, got %q", c.Delta())
	}
}

func TestDecodeChunk_Malformed(t *testing.T) {
	if _, err := DecodeChunk(Frame{Data: "{not json"}); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestChunk_DeltaEmptyChoices(t *testing.T) {
	var c Chunk
	if c.Delta() != "" {
		t.Error("expected empty delta for chunk without choices")
	}
}

func FuzzParser_Feed(f *testing.F) {
	f.Add([]byte(frame("seed")))
	f.Add([]byte("data: [DONE]\n"))
	f.Add([]byte("data: {\"choices\":"))
	f.Fuzz(func(t *testing.T, data []byte) {
		p := NewParser()
		// Must never panic, regardless of input or split point.
		for i := 0; i < len(data); i += 7 {
			end := i + 7
			if end > len(data) {
				end = len(data)
			}
			p.Feed(data[i:end])
		}
	})
}
