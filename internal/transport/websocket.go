// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	applog "tuner/internal/log"

	"github.com/gorilla/websocket"
)

const (
	broadcastQueue = 256
	writeTimeout   = time.Second
)

// WebSocketTransport broadcasts snapshots and events as JSON to every
// client connected to /ws. Messages are dropped when the queue is full.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex
	broadcast chan Message
	done      chan struct{}
	closeOnce sync.Once
	server    *http.Server
	listener  net.Listener
}

// NewWebSocketTransport returns a transport for addr and starts its
// broadcast loop. Call Start to begin listening, or mount Handler on an
// existing server.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local dashboards
			},
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan Message, broadcastQueue),
		done:      make(chan struct{}),
	}
	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving /ws.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// Start listens on the configured address. Bind errors are returned;
// later server errors are logged.
func (wst *WebSocketTransport) Start() error {
	ln, err := net.Listen("tcp", wst.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", wst.addr, err)
	}
	wst.listener = ln
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		applog.Infof("WebSocket: serving on ws://%s/ws", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocket: server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or the configured one before Start.
func (wst *WebSocketTransport) Addr() string {
	if wst.listener != nil {
		return wst.listener.Addr().String()
	}
	return wst.addr
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocket: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = struct{}{}
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocket: client %s connected, total: %d", conn.RemoteAddr(), n)

	// Clients never send; the read only detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	n := len(wst.clients)
	wst.clientsMu.Unlock()

	if ok {
		conn.Close()
		applog.Infof("WebSocket: client %s disconnected, total: %d", conn.RemoteAddr(), n)
	}
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case msg := <-wst.broadcast:
			wst.clientsMu.Lock()
			var failed []*websocket.Conn
			for client := range wst.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteJSON(msg); err != nil {
					applog.Debugf("WebSocket: error sending to %s: %v", client.RemoteAddr(), err)
					failed = append(failed, client)
				}
			}
			wst.clientsMu.Unlock()
			for _, c := range failed {
				wst.drop(c)
			}
		}
	}
}

// Send queues a snapshot or event for broadcast.
func (wst *WebSocketTransport) Send(data any) error {
	msg, ok := NewMessage(data)
	if !ok {
		return fmt.Errorf("websocket: unsupported message type %T", data)
	}
	select {
	case <-wst.done:
		return errors.New("websocket: transport closed")
	default:
	}
	select {
	case wst.broadcast <- msg:
	default:
		// Slow clients lose updates rather than stall the producer.
	}
	return nil
}

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Debugf("WebSocket: closing")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		clear(wst.clients)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
