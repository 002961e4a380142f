package assist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func deltaFrame(content string) string {
	return fmt.Sprintf(`data: {"id":"chatcmpl-1","choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

func staticStream(frames ...string) StreamFunc {
	body := strings.Join(frames, "") + "data: [DONE]\n\n"
	return func(ctx context.Context, messages []ChatMessage, patient *PatientContext) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
}

func TestSendAccumulatesDeltasIntoOneMessage(t *testing.T) {
	conv := NewConversation(staticStream(
		deltaFrame("Her lactate "),
		deltaFrame("is trending "),
		deltaFrame("down."),
	), nil)

	if !conv.Send(context.Background(), "How is she doing overnight?") {
		t.Fatal("Send returned false for a valid message")
	}

	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "How is she doing overnight?" {
		t.Fatalf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != "alis" {
		t.Fatalf("expected alis reply, got role %q", msgs[1].Role)
	}
	if msgs[1].Content != "Her lactate is trending down." {
		t.Fatalf("expected full accumulated content, got %q", msgs[1].Content)
	}
	if conv.Streaming() {
		t.Fatal("streaming flag still set after turn finished")
	}
}

func TestSendRejectsBlankContent(t *testing.T) {
	conv := NewConversation(staticStream(deltaFrame("hi")), nil)
	if conv.Send(context.Background(), "   \n\t") {
		t.Fatal("Send accepted blank content")
	}
	if len(conv.Messages()) != 0 {
		t.Fatalf("blank send left %d messages in the transcript", len(conv.Messages()))
	}
}

func TestSendIsNoOpWhileTurnInFlight(t *testing.T) {
	pr, pw := io.Pipe()
	conv := NewConversation(func(ctx context.Context, messages []ChatMessage, patient *PatientContext) (io.ReadCloser, error) {
		return pr, nil
	}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conv.Send(context.Background(), "first question")
	}()

	deadline := time.After(2 * time.Second)
	for !conv.Streaming() {
		select {
		case <-deadline:
			t.Fatal("turn never started streaming")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if conv.Send(context.Background(), "second question") {
		t.Fatal("second Send started while a turn was in flight")
	}

	io.WriteString(pw, deltaFrame("answer")+"data: [DONE]\n\n")
	pw.Close()
	<-done

	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages (one user, one alis), got %d", len(msgs))
	}
	if msgs[0].Content != "first question" {
		t.Fatalf("transcript picked up the rejected send: %+v", msgs[0])
	}
}

func TestSendSurfacesStreamFailureAsNotice(t *testing.T) {
	conv := NewConversation(func(ctx context.Context, messages []ChatMessage, patient *PatientContext) (io.ReadCloser, error) {
		return nil, errors.New("gateway unreachable")
	}, nil)

	if !conv.Send(context.Background(), "hello?") {
		t.Fatal("Send returned false; the user message should still be recorded")
	}
	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user message plus notice, got %d messages", len(msgs))
	}
	if msgs[1].Role != "alis" || msgs[1].Content != errorNotice {
		t.Fatalf("expected error notice, got %+v", msgs[1])
	}
	if conv.Streaming() {
		t.Fatal("streaming flag leaked after a failed turn")
	}

	// The conversation recovers: the next send runs normally.
	conv.stream = staticStream(deltaFrame("back online"))
	if !conv.Send(context.Background(), "are you there?") {
		t.Fatal("Send refused after a failed turn")
	}
	msgs = conv.Messages()
	if got := msgs[len(msgs)-1].Content; got != "back online" {
		t.Fatalf("expected recovered reply, got %q", got)
	}
}

func TestSendPartialFramesAcrossReads(t *testing.T) {
	// Split a frame mid-line to exercise buffering between reads.
	full := deltaFrame("split across reads") + "data: [DONE]\n\n"
	conv := NewConversation(func(ctx context.Context, messages []ChatMessage, patient *PatientContext) (io.ReadCloser, error) {
		return io.NopCloser(iotest(full)), nil
	}, nil)

	conv.Send(context.Background(), "go")
	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[1].Content != "split across reads" {
		t.Fatalf("partial frames were not reassembled: %+v", msgs)
	}
}

// iotest returns a reader that yields one byte per Read call.
func iotest(s string) io.Reader {
	return &oneByteReader{data: []byte(s)}
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
