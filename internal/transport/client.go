package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrClosed is returned by Send after the connection has been closed.
var ErrClosed = errors.New("transport closed")

const (
	defaultPongWait = 60 * time.Second
	closeGrace      = time.Second
)

// Handler consumes decoded server traffic. *game.Router satisfies it.
type Handler interface {
	Dispatch(ev protocol.Event)
	PlayersListed(infos []protocol.PlayerInfo)
}

// Options tunes a connection. Zero values pick defaults.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// PongWait is how long the read side waits for any traffic before giving
	// up; pings go out at 9/10 of it. Negative disables keepalive.
	PongWait time.Duration
}

// Client is a line-protocol connection to the game server. Each websocket
// text message carries one or more newline-separated lines.
type Client struct {
	conn   *websocket.Conn
	opts   Options
	logger *zap.Logger

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Dial connects to url.
func Dial(ctx context.Context, url string, opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PongWait == 0 {
		opts.PongWait = defaultPongWait
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: opts.DialTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	logger.Info("connected to game server", zap.String("url", url))
	return &Client{conn: conn, opts: opts, logger: logger}, nil
}

func (c *Client) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

// Send writes one command. It is safe for concurrent use.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isClosed() {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(c.writeDeadline(ctx)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(cmd.Encode())); err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		return fmt.Errorf("write %s: %w", cmd.Name, err)
	}
	c.logger.Debug("sent command", zap.String("command", cmd.Name), zap.Strings("args", cmd.Args))
	return nil
}

func (c *Client) writeDeadline(ctx context.Context) time.Time {
	var deadline time.Time
	if c.opts.WriteTimeout > 0 {
		deadline = time.Now().Add(c.opts.WriteTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline
}

// Run reads from the connection until ctx is cancelled or the server goes
// away, feeding every line to h in arrival order. Run is the only reader and
// must be called at most once.
func (c *Client) Run(ctx context.Context, h Handler) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()

	if c.opts.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		})
		go c.keepalive(done)
	}

	var roster []protocol.PlayerInfo
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("server closed connection")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if c.opts.PongWait > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		}

		for _, line := range strings.Split(string(msg), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			roster = c.handleLine(line, roster, h)
		}
	}
}

// handleLine routes one line and returns the roster being accumulated.
func (c *Client) handleLine(line string, roster []protocol.PlayerInfo, h Handler) []protocol.PlayerInfo {
	switch {
	case protocol.IsPlayerListEnd(line):
		h.PlayersListed(roster)
		return nil
	case protocol.IsPlayerListLine(line):
		info, err := protocol.DecodePlayerInfo(line)
		if err != nil {
			c.logger.Warn("skipping roster line", zap.String("line", line), zap.Error(err))
			return roster
		}
		return append(roster, info)
	}

	ev, err := protocol.DecodeEvent(line)
	if err != nil {
		c.logger.Warn("skipping undecodable line", zap.String("line", line), zap.Error(err))
		return roster
	}
	h.Dispatch(ev)
	return roster
}

func (c *Client) keepalive(done <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(closeGrace)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

// Close sends a close frame and releases the connection. Further calls are no-ops.
func (c *Client) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return nil
	}
	c.closed = true
	c.closeMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	return c.conn.Close()
}
