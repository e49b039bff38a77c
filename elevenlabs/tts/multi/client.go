// Package multi speaks agent replies through the ElevenLabs multi-context
// text-to-speech websocket.
package multi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	KindAudio   = "audio"
	KindFinal   = "final"
	KindUnknown = "unknown"
)

// IncomingMessage is one parsed server frame.
type IncomingMessage struct {
	Kind      string          `json:"kind"`
	ContextID string          `json:"context_id,omitempty"`
	AudioB64  string          `json:"audio_base_64,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Client owns one websocket. Events is closed by the reader when the
// connection ends, so ranging over it terminates after Close.
type Client struct {
	conn   *websocket.Conn
	events chan IncomingMessage
	errs   chan error
	sendCh chan any
	done   chan struct{}
	once   sync.Once
}

func Dial(ctx context.Context, cfg ConnectConfig, headers http.Header) (*Client, error) {
	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("tts: missing voice id")
	}
	if headers == nil {
		headers = http.Header{}
	}
	if cfg.APIKey != "" {
		headers.Set("xi-api-key", cfg.APIKey)
	}
	u, err := BuildURL(cfg)
	if err != nil {
		return nil, err
	}

	d := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := d.DialContext(ctx, u, headers)
	if err != nil {
		return nil, fmt.Errorf("tts: dial: %w", err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan IncomingMessage, 64),
		errs:   make(chan error, 4),
		sendCh: make(chan any, 16),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	go c.readLoop()
	return c, nil
}

func (c *Client) Events() <-chan IncomingMessage { return c.events }
func (c *Client) Errors() <-chan error           { return c.errs }

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"), time.Now().Add(250*time.Millisecond))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.sendCh:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.emitErr(err)
				return
			}
		}
	}
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.emitErr(err)
			}
			return
		}
		msg, err := parseMessage(b)
		if err != nil {
			c.emitErr(err)
			continue
		}
		select {
		case c.events <- msg:
		case <-c.done:
			return
		}
	}
}

// parseMessage accepts both camelCase and snake_case context ids.
func parseMessage(b []byte) (IncomingMessage, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return IncomingMessage{}, fmt.Errorf("tts: invalid json: %w", err)
	}
	msg := IncomingMessage{Kind: KindUnknown, Raw: json.RawMessage(b)}
	if v, ok := raw["contextId"].(string); ok {
		msg.ContextID = v
	} else if v, ok := raw["context_id"].(string); ok {
		msg.ContextID = v
	}
	if aud, ok := raw["audio"].(string); ok && aud != "" {
		msg.Kind = KindAudio
		msg.AudioB64 = aud
	} else if final, ok := raw["isFinal"].(bool); ok && final {
		msg.Kind = KindFinal
	}
	return msg, nil
}

func (c *Client) emitErr(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

type initializeContext struct {
	Text      string `json:"text"`
	ContextID string `json:"context_id,omitempty"`
}

type sendText struct {
	Text      string `json:"text"`
	ContextID string `json:"context_id,omitempty"`
	Flush     bool   `json:"flush,omitempty"`
}

type closeContext struct {
	ContextID    string `json:"context_id"`
	CloseContext bool   `json:"close_context"`
}

type closeSocket struct {
	CloseSocket bool `json:"close_socket"`
}

func (c *Client) InitializeContext(ctx context.Context, contextID string) error {
	return c.send(ctx, initializeContext{Text: " ", ContextID: contextID})
}

func (c *Client) SendText(ctx context.Context, contextID, text string, flush bool) error {
	return c.send(ctx, sendText{Text: strings.ReplaceAll(text, "\r\n", "\n"), ContextID: contextID, Flush: flush})
}

func (c *Client) CloseContext(ctx context.Context, contextID string) error {
	return c.send(ctx, closeContext{ContextID: contextID, CloseContext: true})
}

func (c *Client) CloseSocket(ctx context.Context) error {
	return c.send(ctx, closeSocket{CloseSocket: true})
}

func (c *Client) send(ctx context.Context, v any) error {
	select {
	case <-c.done:
		return fmt.Errorf("tts: client closed")
	case <-ctx.Done():
		return ctx.Err()
	case c.sendCh <- v:
		return nil
	}
}
