package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ChangeChannel is the NOTIFY channel fed by the documents trigger.
const ChangeChannel = "document_changes"

// Change identifies a record touched by a write.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// listenConn is the part of a dedicated connection the listener needs.
type listenConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

type poolConn struct{ c *pgxpool.Conn }

func (p poolConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.c.Exec(ctx, sql, args...)
}

func (p poolConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return p.c.Conn().WaitForNotification(ctx)
}

func (p poolConn) Release() { p.c.Release() }

// Listener relays document change notifications to a callback.
type Listener struct {
	connect    func(ctx context.Context) (listenConn, error)
	log        *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener builds a listener that holds one pool connection while running.
func NewListener(pool *pgxpool.Pool, log *zap.Logger) *Listener {
	return newListener(func(ctx context.Context) (listenConn, error) {
		c, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return poolConn{c: c}, nil
	}, log)
}

func newListener(connect func(ctx context.Context) (listenConn, error), log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{connect: connect, log: log, minBackoff: 200 * time.Millisecond, maxBackoff: 10 * time.Second}
}

// Run listens until ctx is done, reconnecting with exponential backoff after failures.
func (l *Listener) Run(ctx context.Context, fn func(Change)) error {
	backoff := l.minBackoff
	for {
		err := l.listen(ctx, fn, func() { backoff = l.minBackoff })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("change listener interrupted", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *Listener) listen(ctx context.Context, fn func(Change), connected func()) error {
	conn, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	connected()
	l.log.Info("listening for document changes", zap.String("channel", ChangeChannel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n == nil {
			return errors.New("nil notification")
		}
		var ch Change
		if err := json.Unmarshal([]byte(n.Payload), &ch); err != nil {
			l.log.Warn("bad change payload", zap.String("payload", n.Payload), zap.Error(err))
			continue
		}
		fn(ch)
	}
}
