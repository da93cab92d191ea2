package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Handler is the pet side of the control socket. Calls arrive on connection
// goroutines; implementations must hand them over to their own loop.
type Handler interface {
	Status() StatusData
	SetKeepAnim(on bool) error
	SetTransparent(on bool) error
	ChangeStage(stage string) error
	Reload() error
	Quit() error
}

// Server serves one pet's control socket.
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	startTime  time.Time

	listener     net.Listener
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server for socketPath. A stale socket file at that
// path is removed.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	os.Remove(socketPath)
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener
	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection reads one newline-terminated request and answers it.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
	}

	out, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	if _, err := conn.Write(append(out, '\n')); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandStatus:
		status := s.handler.Status()
		status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		return okResponse(status)
	case CommandKeepAnim:
		return s.handleToggle(req.Payload, s.handler.SetKeepAnim)
	case CommandTransparent:
		return s.handleToggle(req.Payload, s.handler.SetTransparent)
	case CommandStage:
		var p StagePayload
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &p); err != nil {
				return NewErrorResponse(fmt.Sprintf("Invalid stage payload: %v", err))
			}
		}
		return resultResponse(s.handler.ChangeStage(p.Stage))
	case CommandReload:
		return resultResponse(s.handler.Reload())
	case CommandQuit:
		return resultResponse(s.handler.Quit())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleToggle(payload json.RawMessage, apply func(bool) error) *Response {
	var p TogglePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid toggle payload: %v", err))
	}
	return resultResponse(apply(p.Enabled))
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func resultResponse(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(nil)
}

// Stop closes the listener, waits for the accept loop and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
