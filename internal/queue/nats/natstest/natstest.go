// Package natstest runs an in-process JetStream server for tests.
package natstest

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// Server is an embedded JetStream server bound to 127.0.0.1
type Server struct {
	server *server.Server
}

// Start runs a JetStream-enabled server on a free port, storing data in a
// temp dir. It is shut down when the test finishes.
func Start(t testing.TB) *Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		t.Fatalf("failed to create NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server failed to start within timeout")
	}

	s := &Server{server: ns}
	t.Cleanup(s.Close)
	return s
}

// URL returns the client URL of the running server
func (s *Server) URL() string {
	return s.server.ClientURL()
}

// Close shuts the server down and waits for it to stop
func (s *Server) Close() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
