package sshclient

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "testuser"
	testPassword = "testpass"
)

// execScript is the scripted outcome for one command known to the test server.
// A blocking script never delivers an exit status and holds the channel open
// until the client tears it down.
type execScript struct {
	stdout string
	stderr string
	exit   int
	block  bool
}

// testServer is a minimal in-process SSH server with password auth, scripted
// exec handling and a real SFTP subsystem (serving the local filesystem, so
// tests use paths under t.TempDir() as "remote" paths). It counts open
// channels so tests can assert the per-operation channel discipline.
type testServer struct {
	t        *testing.T
	listener net.Listener
	config   *ssh.ServerConfig

	mu       sync.Mutex
	commands map[string]execScript

	openChannels atomic.Int32
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if conn.User() == testUser && string(password) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("access denied for %s", conn.User())
		},
	}
	config.AddHostKey(signer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{
		t:        t,
		listener: listener,
		config:   config,
		commands: make(map[string]execScript),
	}
	go s.acceptLoop()
	t.Cleanup(func() { _ = listener.Close() })
	return s
}

func (s *testServer) script(command string, res execScript) {
	s.mu.Lock()
	s.commands[command] = res
	s.mu.Unlock()
}

func (s *testServer) lookup(command string) execScript {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.commands[command]; ok {
		return res
	}
	return execScript{stderr: "sh: command not found: " + command + "\n", exit: 127}
}

func (s *testServer) channelCount() int32 {
	return s.openChannels.Load()
}

func (s *testServer) addr() (host string, port int) {
	tcpAddr := s.listener.Addr().(*net.TCPAddr)
	return tcpAddr.IP.String(), tcpAddr.Port
}

func (s *testServer) clientConfig() Config {
	host, port := s.addr()
	return Config{
		Host:     host,
		Port:     port,
		User:     testUser,
		Password: testPassword,
	}
}

func (s *testServer) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *testServer) handleConn(conn net.Conn) {
	serverConn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer serverConn.Close()
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		s.openChannels.Add(1)
		go s.handleSession(channel, requests)
	}
}

func (s *testServer) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer func() {
		_ = channel.Close()
		s.openChannels.Add(-1)
	}()

	for req := range requests {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)

			res := s.lookup(payload.Command)
			_, _ = io.WriteString(channel, res.stdout)
			_, _ = io.WriteString(channel.Stderr(), res.stderr)
			if res.block {
				// Hold the channel open until the client closes it.
				for range requests {
				}
				return
			}
			_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{uint32(res.exit)}))
			return

		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)

			server, err := sftp.NewServer(channel)
			if err != nil {
				return
			}
			_ = server.Serve()
			_ = server.Close()
			return

		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

// unusedPort returns the address of a closed listener, guaranteeing a
// connection-refused dial target.
func unusedPort(t *testing.T) (string, int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpAddr := listener.Addr().(*net.TCPAddr)
	require.NoError(t, listener.Close())
	return tcpAddr.IP.String(), tcpAddr.Port
}
