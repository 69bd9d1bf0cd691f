package delivery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

const (
	requestReadFile = "read-file"
	requestAsk      = "ask"
	requestSolve    = "solve"
)

const fileUnavailable = "File not available"

// ClientMessage is a request sent by the overlay UI over the socket.
type ClientMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Path     string `json:"path,omitempty"`
	Question string `json:"question,omitempty"`
	// Data is a base64 image for solve requests; Path is used when empty.
	Data string `json:"data,omitempty"`
}

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// ImageSubmitter runs the capture pipeline for an image the UI handed over.
// Both methods publish exactly one terminal event for id.
type ImageSubmitter interface {
	SubmitDrop(ctx context.Context, id string, data []byte) string
	SubmitPath(ctx context.Context, id, path string) string
}

type userMessager interface {
	UserMessage() string
}

// Handler serves the overlay event stream on GET /ws.
type Handler struct {
	hub      *Hub
	files    FileReader
	images   ImageSubmitter
	asker    Asker
	timeout  time.Duration
	upgrader websocket.Upgrader
	logger   *slog.Logger

	wg sync.WaitGroup
}

func NewHandler(hub *Hub, files FileReader, images ImageSubmitter, asker Asker, allowedOrigin string, timeout time.Duration, logger *slog.Logger) *Handler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Handler{
		hub:     hub,
		files:   files,
		images:  images,
		asker:   asker,
		timeout: timeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		logger: logger.With("handler", "ws"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

func (h *Handler) Serve(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return nil
	}

	events, unsubscribe := h.hub.Subscribe()
	conn := &wsConn{
		ws:     ws,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
		logger: h.logger,
	}

	h.logger.Info("overlay connected", "remote", c.RealIP())

	go conn.forward(events)
	go conn.writePump()
	conn.readPump(func(msg ClientMessage) { h.dispatch(conn, msg) })

	unsubscribe()
	h.logger.Info("overlay disconnected", "remote", c.RealIP())
	return nil
}

// Wait blocks until in-flight ask and solve requests have finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) dispatch(conn *wsConn, msg ClientMessage) {
	switch msg.Type {
	case requestReadFile:
		conn.reply(h.readFile(msg))
	case requestAsk:
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.ask(msg)
		}()
	case requestSolve:
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.solve(msg)
		}()
	default:
		h.logger.Warn("unknown client request", "type", msg.Type)
	}
}

func (h *Handler) readFile(msg ClientMessage) Event {
	ev := Event{Type: EventFileContent, RequestID: msg.ID, Path: msg.Path}

	data, err := h.files.ReadFile(msg.Path)
	if err != nil {
		h.logger.Warn("read-file rejected", "path", msg.Path, "error", err)
		ev.Error = fileUnavailable
		return stamp(ev)
	}

	ev.Data = base64.StdEncoding.EncodeToString(data)
	return stamp(ev)
}

func (h *Handler) ask(msg ClientMessage) {
	tracker := NewTracker(h.hub, KindAnswer, msg.ID, h.logger)
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	defer tracker.Close(ctx)

	answer, err := h.asker.Ask(ctx, msg.Question)
	if err != nil {
		message := answerAbandoned
		var um userMessager
		if errors.As(err, &um) {
			message = um.UserMessage()
		}
		h.logger.Error("ask failed", "request_id", tracker.ID(), "error", err)
		tracker.Fail(ctx, message)
		return
	}
	tracker.Resolve(ctx, answer)
}

// solve hands a dropped image to the capture pipeline. A body that is not
// valid base64 goes through as empty so the pipeline still reports an error.
func (h *Handler) solve(msg ClientMessage) {
	if msg.Data == "" && msg.Path != "" {
		h.images.SubmitPath(context.Background(), msg.ID, msg.Path)
		return
	}

	data, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		h.logger.Warn("solve request carried invalid image data", "request_id", msg.ID, "error", err)
		data = nil
	}
	h.images.SubmitDrop(context.Background(), msg.ID, data)
}

type wsConn struct {
	ws     *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// reply queues ev for the write pump. Lifecycle events wait for room until
// the connection closes; anything else is dropped when the queue is full.
func (c *wsConn) reply(ev Event) {
	if ev.Type.lifecycle() {
		select {
		case c.send <- ev:
		case <-c.done:
		}
		return
	}

	select {
	case c.send <- ev:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, dropping reply", "type", ev.Type)
	}
}

func (c *wsConn) forward(events <-chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				c.close()
				return
			}
			c.reply(ev)
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) readPump(handle func(ClientMessage)) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("failed to unmarshal client message", "error", err)
			continue
		}
		handle(msg)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
