package listener

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

type SshListener struct {
	addr    string
	handler SessionHandler
	hostKey ssh.Signer
	logger  logrus.FieldLogger

	ready chan net.Addr
}

func NewSshListener(host string, port uint16, h SessionHandler, hostKey ssh.Signer, logger logrus.FieldLogger) *SshListener {
	return &SshListener{
		addr:    net.JoinHostPort(host, strconv.Itoa(int(port))),
		handler: h,
		hostKey: hostKey,
		logger:  logger,
		ready:   make(chan net.Addr, 1),
	}
}

// Ready yields the bound address once the listener accepts connections.
func (l *SshListener) Ready() <-chan net.Addr {
	return l.ready
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	l.logger.WithField("addr", listener.Addr().String()).Info("listening for ssh")
	l.ready <- listener.Addr()

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			l.logger.WithError(err).Error("accepting ssh connection")
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	logger := l.logger.WithField("remote", conn.RemoteAddr().String())

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		logger.WithError(err).Error("ssh handshake")
		return
	}
	defer sshConn.Close()

	logger.Info("ssh connection established")

	go func() {
		<-ctx.Done()
		_ = sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			logger.WithError(err).Error("accepting ssh channel")
			continue
		}

		// clients only forward input after the shell request is answered
		shellReady := make(chan struct{})
		var once sync.Once
		go func(in <-chan *ssh.Request) {
			for req := range in {
				switch req.Type {
				case "shell":
					_ = req.Reply(true, nil)
					once.Do(func() { close(shellReady) })
				default:
					// no pty, so the client keeps local echo and line buffering
					_ = req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-shellReady:
		case <-ctx.Done():
			_ = ch.Close()
			continue
		}

		l.handler.AcceptConnection(ctx, newCRLFReadWriter(ch))
		_ = ch.Close()
	}
}
