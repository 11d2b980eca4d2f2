package listener

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/ssh"

	"github.com/pixil98/niboshi/internal/viewer"
)

func TestSshListener_Session(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	controls := &fakeControls{}
	console := newTestConsole(controls)
	console.Render(viewer.Snapshot{Counter: 1})

	logger, _ := logtest.NewNullLogger()
	l := NewSshListener("127.0.0.1", 0, console, signer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Start(ctx) }()
	defer func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("listener stopped with error: %v", err)
		}
	}()

	var addr string
	select {
	case a := <-l.Ready():
		addr = a.String()
	case err := <-errc:
		t.Fatalf("listener failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener not ready")
	}

	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "viewer",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	defer sess.Close()

	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout: %v", err)
	}
	if err := sess.Shell(); err != nil {
		t.Fatalf("starting shell: %v", err)
	}

	out := &syncBuffer{}
	go out.drain(stdout)

	waitUntil(t, func() bool { return strings.Contains(out.String(), "Clicks: 1\r\n") })

	if _, err := io.WriteString(stdin, "+\r\nq\r\n"); err != nil {
		t.Fatalf("writing: %v", err)
	}
	waitUntil(t, func() bool { return strings.Contains(out.String(), "bye\r\n") })

	testutil.AssertEqual(t, "clicks", controls.clicks.Load(), int32(1))
}
