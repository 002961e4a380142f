package assist

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virtualis/alis/internal/platform/sse"
)

// errorNotice is shown in the transcript when a stream fails mid-turn.
const errorNotice = "ALIS lost the connection while answering. Please try again."

// StreamFunc opens an assistant stream for the given transcript and returns
// the raw SSE body.
type StreamFunc func(ctx context.Context, messages []ChatMessage, patient *PatientContext) (io.ReadCloser, error)

// Conversation accumulates an assistant chat transcript and drives one
// streamed turn at a time. At most one turn is in flight; Send while a turn
// is streaming is a no-op.
type Conversation struct {
	mu        sync.Mutex
	messages  []ChatMessage
	streaming bool

	stream  StreamFunc
	patient *PatientContext

	now   func() time.Time
	newID func() string
}

func NewConversation(stream StreamFunc, patient *PatientContext) *Conversation {
	return &Conversation{
		stream:  stream,
		patient: patient,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Messages returns a snapshot of the transcript.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Streaming reports whether a turn is currently in flight.
func (c *Conversation) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// Send appends the user's message and streams the assistant reply to
// completion. It returns false without side effects when the content is
// blank or another turn is already streaming.
func (c *Conversation) Send(ctx context.Context, content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}

	c.mu.Lock()
	if c.streaming {
		c.mu.Unlock()
		return false
	}
	c.streaming = true
	c.messages = append(c.messages, ChatMessage{
		ID:        c.newID(),
		Role:      "user",
		Content:   content,
		Timestamp: c.now(),
	})
	transcript := make([]ChatMessage, len(c.messages))
	copy(transcript, c.messages)
	c.mu.Unlock()

	// The streaming flag clears no matter how the turn ends.
	defer func() {
		c.mu.Lock()
		c.streaming = false
		c.mu.Unlock()
	}()

	body, err := c.stream(ctx, transcript, c.patient)
	if err != nil {
		c.appendNotice()
		return true
	}
	defer body.Close()

	c.consume(ctx, body)
	return true
}

// consume reads SSE frames off the body and folds deltas into a single
// assistant message. The message content is always the full accumulated
// text, so a re-render mid-stream shows a coherent prefix.
func (c *Conversation) consume(ctx context.Context, body io.Reader) {
	parser := sse.NewParser()
	var (
		buf       strings.Builder
		assistant string // id of the message being streamed, "" until the first delta
	)
	chunk := make([]byte, 4096)

	for {
		if ctx.Err() != nil {
			c.appendNotice()
			return
		}
		n, readErr := body.Read(chunk)
		if n > 0 {
			for _, frame := range parser.Feed(chunk[:n]) {
				decoded, err := sse.DecodeChunk(frame)
				if err != nil {
					continue
				}
				delta := decoded.Delta()
				if delta == "" {
					continue
				}
				buf.WriteString(delta)
				if assistant == "" {
					assistant = c.newID()
					c.appendAssistant(assistant, buf.String())
				} else {
					c.replaceContent(assistant, buf.String())
				}
			}
		}
		if parser.Done() {
			return
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			c.appendNotice()
			return
		}
	}
}

func (c *Conversation) appendAssistant(id, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, ChatMessage{
		ID:        id,
		Role:      "alis",
		Content:   content,
		Timestamp: c.now(),
	})
}

func (c *Conversation) replaceContent(id, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			return
		}
	}
}

func (c *Conversation) appendNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, ChatMessage{
		ID:        c.newID(),
		Role:      "alis",
		Content:   errorNotice,
		Timestamp: c.now(),
	})
}
