package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
	"github.com/sirupsen/logrus"
)

// SessionHandler runs one client session on an established connection.
type SessionHandler interface {
	AcceptConnection(context.Context, io.ReadWriter)
}

type TelnetListener struct {
	addr    string
	handler SessionHandler
	logger  logrus.FieldLogger
}

func NewTelnetListener(host string, port uint16, h SessionHandler, logger logrus.FieldLogger) *TelnetListener {
	return &TelnetListener{
		addr:    net.JoinHostPort(host, strconv.Itoa(int(port))),
		handler: h,
		logger:  logger,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.Background())

	handler := &telnetHandler{
		handler:     l.handler,
		logger:      l.logger,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(l.addr, handler)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	l.logger.WithField("addr", l.addr).Info("listening for telnet")

	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use", l.addr)
		}
		return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	handler     SessionHandler
	logger      logrus.FieldLogger
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		if err := conn.Close(); err != nil {
			h.logger.WithError(err).Error("closing telnet connection")
		}
	}()

	h.handler.AcceptConnection(h.connCtx, newCRLFReadWriter(conn))
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
