package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arblab/polykalshi/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second
)

// BookHandler receives the ask ladder of one outcome token whenever its book
// snapshot arrives on the feed.
type BookHandler func(assetID string, asks []domain.PriceLevel)

// WSFeed streams order book updates for a set of outcome tokens from the CLOB
// market-data WebSocket. Watch mode uses it to trigger rescans when tracked
// books move instead of polling on a timer.
type WSFeed struct {
	wsURL  string
	assets []string
	logger *slog.Logger

	mu     sync.RWMutex
	conn   *websocket.Conn
	closed bool

	handlerMu sync.RWMutex
	handlers  []BookHandler

	done chan struct{}
}

// NewWSFeed creates a feed for the given asset IDs.
//
// wsURL is the CLOB WebSocket endpoint, e.g.
// "wss://ws-subscriptions-clob.polymarket.com/ws/market".
func NewWSFeed(wsURL string, assetIDs []string, logger *slog.Logger) *WSFeed {
	return &WSFeed{
		wsURL:  wsURL,
		assets: assetIDs,
		logger: logger.With(slog.String("component", "polymarket_feed")),
		done:   make(chan struct{}),
	}
}

// OnBook registers a handler called for every book snapshot received.
func (w *WSFeed) OnBook(handler BookHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Connect establishes the WebSocket connection and subscribes to the feed's
// asset IDs. The read and ping loops run until Close.
func (w *WSFeed) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("polymarket/ws: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("polymarket/ws: connect: %w", err)
	}
	w.conn = conn

	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if err := w.sendCommand(WSCommand{Type: "subscribe", Assets: w.assets}); err != nil {
		conn.Close()
		w.conn = nil
		return fmt.Errorf("polymarket/ws: subscribe: %w", err)
	}

	go w.readLoop()
	go w.pingLoop()
	return nil
}

// Close shuts down the connection and stops the loops.
func (w *WSFeed) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	if w.conn != nil {
		_ = w.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return w.conn.Close()
	}
	return nil
}

// sendCommand sends a JSON command to the WebSocket. Caller must hold w.mu.
func (w *WSFeed) sendCommand(cmd WSCommand) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads frames and dispatches book snapshots until the feed closes.
// On disconnect it reconnects with exponential backoff.
func (w *WSFeed) readLoop() {
	for {
		select {
		case <-w.done:
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
				return
			default:
			}
			w.logger.Warn("feed disconnected, reconnecting", slog.String("error", err.Error()))
			w.reconnect()
			return
		}

		w.handleMessage(message)
	}
}

// pingLoop keeps the connection alive.
func (w *WSFeed) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.RLock()
			conn := w.conn
			w.mu.RUnlock()
			if conn == nil {
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage parses a frame and dispatches book snapshots. Unparseable or
// non-book frames are dropped silently.
func (w *WSFeed) handleMessage(raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if msg.EventType != "book" || msg.AssetID == "" {
		return
	}

	asks := AskLadder(&APIBook{Asks: msg.Asks})

	w.handlerMu.RLock()
	handlers := w.handlers
	w.handlerMu.RUnlock()
	for _, h := range handlers {
		h(msg.AssetID, asks)
	}
}

// reconnect re-establishes the connection with exponential backoff. It blocks
// until successful or the feed is closed.
func (w *WSFeed) reconnect() {
	delay := reconnectDelay
	for {
		select {
		case <-w.done:
			return
		default:
		}

		time.Sleep(delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := w.Connect(ctx)
		cancel()
		if err == nil {
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
