package derivws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultPingInterval = 30 * time.Second
	defaultDialTimeout  = 10 * time.Second
	writeWait           = 5 * time.Second
	maxMessageSize      = 1 << 20
)

var ErrAlreadyConnected = errors.New("socket already open")

// Client is one persistent connection to the trading API. It never
// reconnects on its own.
type Client struct {
	url          string
	dialer       *websocket.Dialer
	pingInterval time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	current *connection
	done    chan struct{}

	writeMu sync.Mutex
}

type connection struct {
	ws       *websocket.Conn
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	closing  atomic.Bool
}

func (c *connection) stopPing() {
	c.stopOnce.Do(func() { close(c.stop) })
}

type Option func(*Client)

func WithPingInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pingInterval = interval
		}
	}
}

func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.dialer.HandshakeTimeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

var _ ports.Transport = (*Client)(nil)

func NewClient(endpoint, appID string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("parse endpoint: unsupported scheme %q", u.Scheme)
	}

	query := u.Query()
	if appID != "" {
		query.Set("app_id", appID)
	}
	u.RawQuery = query.Encode()

	closed := make(chan struct{})
	close(closed)

	client := &Client{
		url:          u.String(),
		dialer:       &websocket.Dialer{HandshakeTimeout: defaultDialTimeout, Proxy: websocket.DefaultDialer.Proxy},
		pingInterval: DefaultPingInterval,
		logger:       zap.NewNop(),
		done:         closed,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *Client) URL() string {
	return c.url
}

// Connect dials the API and starts the read and keep-alive loops. Every
// decoded frame goes to handler.HandleEvent; HandleDisconnect is called once
// when the connection ends.
func (c *Client) Connect(ctx context.Context, handler ports.EventHandler) error {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	ws, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial trading api: %w", err)
	}
	ws.SetReadLimit(maxMessageSize)

	conn := &connection{
		ws:   ws,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		_ = ws.Close()
		return ErrAlreadyConnected
	}
	c.current = conn
	c.done = conn.done
	c.mu.Unlock()

	c.logger.Debug("socket open", zap.String("url", c.url))

	go c.pingLoop(conn)
	go c.readLoop(conn, handler)

	return nil
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current != nil
}

// Done is closed once the current connection has ended and its disconnect
// has been delivered.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.done
}

// Send writes req only while the socket is open. Every attempt is logged with
// credentials masked.
func (c *Client) Send(req domain.Request) error {
	payload, err := Encode(req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.current
	c.mu.Unlock()

	if conn == nil {
		c.logAttempt(req, false)
		return domain.ErrNotConnected
	}

	c.logAttempt(req, true)

	if err := c.write(conn, payload); err != nil {
		return fmt.Errorf("write %s: %w", req.Op, err)
	}

	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.current
	c.current = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	conn.closing.Store(true)
	conn.stopPing()

	_ = conn.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)

	closeErr := conn.ws.Close()

	select {
	case <-conn.done:
	case <-time.After(writeWait):
	}

	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return fmt.Errorf("close socket: %w", closeErr)
	}

	return nil
}

func (c *Client) write(conn *connection, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) readLoop(conn *connection, handler ports.EventHandler) {
	var readErr error

	defer func() {
		c.mu.Lock()
		if c.current == conn {
			c.current = nil
		}
		c.mu.Unlock()

		conn.stopPing()
		_ = conn.ws.Close()

		if conn.closing.Load() {
			readErr = nil
		} else {
			c.logger.Warn("socket closed", zap.Error(readErr))
		}
		if handler != nil {
			handler.HandleDisconnect(readErr)
		}
		close(conn.done)
	}()

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			readErr = err
			return
		}

		ev, err := Decode(data)
		if err != nil {
			c.logger.Warn("drop undecodable frame", zap.Error(err))
			continue
		}

		c.logger.Debug("receive",
			zap.String("msg_type", string(ev.MsgType)),
			zap.String("tag", string(ev.Tag)),
			zap.String("flow_id", ev.FlowID),
		)

		if handler != nil {
			handler.HandleEvent(ev)
		}
	}
}

func (c *Client) pingLoop(conn *connection) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.stop:
			return
		case <-ticker.C:
			if err := c.Send(domain.Request{Op: domain.OpPing}); err != nil {
				c.logger.Debug("keep-alive ping failed", zap.Error(err))
			}
		}
	}
}

func (c *Client) logAttempt(req domain.Request, open bool) {
	safe := redact(req)
	payload, err := Encode(safe)
	if err != nil {
		return
	}

	if !open {
		c.logger.Warn("send skipped: socket not open", zap.String("op", string(req.Op)), zap.ByteString("payload", payload))
		return
	}

	c.logger.Debug("send", zap.String("op", string(req.Op)), zap.ByteString("payload", payload))
}
