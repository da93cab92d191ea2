// Package mcp exposes running pets as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskpet/internal/ipc"
	"github.com/1broseidon/deskpet/internal/peers"
)

const (
	ServerName    = "deskpet"
	ServerVersion = "0.1.0"
)

// PetLister lists the registered pets. *peers.Registry implements it.
type PetLister interface {
	List() ([]peers.Entry, error)
}

// PetClient is the control-socket client of one pet. *ipc.Client implements it.
type PetClient interface {
	Status() (*ipc.StatusData, error)
	SetKeepAnim(on bool) error
	SetTransparent(on bool) error
	ChangeStage(stage string) error
	Reload() error
	Quit() error
}

// Server is the MCP server for pet control.
type Server struct {
	mcpServer *mcpsdk.Server
	pets      PetLister
	dial      func(ordinal int) PetClient
	logger    *slog.Logger
}

// NewServer creates a server that finds pets through the registry and talks
// to them over their control sockets.
func NewServer(pets PetLister, logger *slog.Logger) *Server {
	return newServer(pets, func(ordinal int) PetClient { return ipc.NewClient(ordinal) }, logger)
}

func newServer(pets PetLister, dial func(int) PetClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pets:   pets,
		dial:   dial,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_pets",
		Description: "List the desktop pets registered in this session with their ordinals. Pets that do not answer on their control socket are reported as unreachable.",
	}, s.handleListPets)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pet_status",
		Description: "Get position, velocity, current animation and stage of one pet.",
	}, s.handlePetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pet_command",
		Description: "Control one pet: keep_anim pins the current animation, transparent makes it click-through, stage switches its stage (empty cycles), reload re-reads its configuration and quit closes it.",
	}, s.handlePetCommand)
}
