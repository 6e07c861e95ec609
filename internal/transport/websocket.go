package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-client/internal/chat"
	"chat-client/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// frame is the named-event envelope exchanged with the server.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Socket is the gorilla/websocket implementation of chat.Transport. Inbound
// frames are dispatched to registered handlers from the read pump; outbound
// frames go through a buffered send channel drained by the write pump.
type Socket struct {
	url   string
	token string

	mu   sync.Mutex
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	hmu      sync.RWMutex
	handlers map[string][]func(json.RawMessage)
}

func NewSocket(socketURL, token string) *Socket {
	return &Socket{
		url:      socketURL,
		token:    token,
		handlers: make(map[string][]func(json.RawMessage)),
	}
}

func (s *Socket) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	dialURL := s.url
	if s.token != "" {
		dialURL = fmt.Sprintf("%s?token=%s", s.url, url.QueryEscape(s.token))
	}

	conn, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.url, err)
	}

	s.conn = conn
	s.send = make(chan []byte, 256)
	s.done = make(chan struct{})

	go s.readPump(conn, s.done)
	go s.writePump(conn, s.send, s.done)

	s.dispatch(chat.EventConnect, nil)
	return nil
}

func (s *Socket) Disconnect() error {
	s.mu.Lock()
	conn := s.conn
	done := s.done
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	close(done)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := conn.Close()

	s.dispatch(chat.EventDisconnect, nil)
	return err
}

func (s *Socket) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Socket) Emit(event string, payload interface{}) error {
	s.mu.Lock()
	send := s.send
	connected := s.conn != nil
	s.mu.Unlock()

	if !connected {
		return fmt.Errorf("socket not connected")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s frame: %w", event, err)
	}

	select {
	case send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full for event %s", event)
	}
}

func (s *Socket) On(event string, handler func(data json.RawMessage)) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

func (s *Socket) readPump(conn *websocket.Conn, done chan struct{}) {
	defer s.teardown(conn)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// Closed locally; Disconnect already notified.
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logger.Error("WebSocket read error: %v", err)
					s.dispatch(chat.EventError, []byte(fmt.Sprintf("%q", err.Error())))
				}
			}
			return
		}

		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			logger.Error("Malformed frame from server: %v", err)
			continue
		}
		s.dispatch(f.Event, f.Data)
	}
}

func (s *Socket) writePump(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown runs when the read pump exits. If the connection dropped remotely
// it clears the state and notifies; a local Disconnect already did both.
func (s *Socket) teardown(conn *websocket.Conn) {
	s.mu.Lock()
	dropped := s.conn == conn
	if dropped {
		s.conn = nil
		close(s.done)
	}
	s.mu.Unlock()

	conn.Close()
	if dropped {
		s.dispatch(chat.EventDisconnect, nil)
	}
}

func (s *Socket) dispatch(event string, data json.RawMessage) {
	s.hmu.RLock()
	handlers := make([]func(json.RawMessage), len(s.handlers[event]))
	copy(handlers, s.handlers[event])
	s.hmu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
}
