package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListPets(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPetsInput) (*mcpsdk.CallToolResult, ListPetsOutput, error) {
	entries, err := s.pets.List()
	if err != nil {
		return nil, ListPetsOutput{}, fmt.Errorf("failed to read peer registry: %w", err)
	}

	out := ListPetsOutput{Pets: make([]PetInfo, 0, len(entries))}
	for _, e := range entries {
		info := PetInfo{
			Ordinal:  e.Ordinal,
			PID:      e.PID,
			WindowID: uint32(e.WindowID),
			JoinedAt: e.JoinedAt.Format(time.RFC3339),
		}
		if st, err := s.dial(e.Ordinal).Status(); err == nil {
			info.Reachable = true
			info.Animation = st.Animation
		} else {
			s.logger.Debug("pet not reachable", "ordinal", e.Ordinal, "error", err)
		}
		out.Pets = append(out.Pets, info)
	}
	return nil, out, nil
}

func (s *Server) handlePetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args PetStatusInput) (*mcpsdk.CallToolResult, PetStatusOutput, error) {
	if args.Pet < 0 {
		return nil, PetStatusOutput{}, fmt.Errorf("pet ordinal must be >= 0, got %d", args.Pet)
	}
	st, err := s.dial(args.Pet).Status()
	if err != nil {
		return nil, PetStatusOutput{}, err
	}
	return nil, PetStatusOutput{
		Ordinal:     st.Ordinal,
		X:           st.X,
		Y:           st.Y,
		Width:       st.Width,
		Height:      st.Height,
		VelocityX:   st.VelocityX,
		VelocityY:   st.VelocityY,
		Animation:   st.Animation,
		Stage:       st.Stage,
		Stages:      st.Stages,
		KeepAnim:    st.KeepAnim,
		Transparent: st.Transparent,
		Dragging:    st.Dragging,
		Dropping:    st.Dropping,
		Grounded:    st.Grounded,
	}, nil
}

func (s *Server) handlePetCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args PetCommandInput) (*mcpsdk.CallToolResult, PetCommandOutput, error) {
	if args.Pet < 0 {
		return nil, PetCommandOutput{}, fmt.Errorf("pet ordinal must be >= 0, got %d", args.Pet)
	}
	command := strings.ToLower(strings.TrimSpace(args.Command))
	enabled := args.Enabled == nil || *args.Enabled
	client := s.dial(args.Pet)

	var err error
	switch command {
	case "keep_anim":
		err = client.SetKeepAnim(enabled)
	case "transparent":
		err = client.SetTransparent(enabled)
	case "stage":
		err = client.ChangeStage(args.Stage)
	case "reload":
		err = client.Reload()
	case "quit":
		err = client.Quit()
	default:
		return nil, PetCommandOutput{}, fmt.Errorf("unknown command %q (want keep_anim, transparent, stage, reload or quit)", args.Command)
	}
	if err != nil {
		return nil, PetCommandOutput{Pet: args.Pet, Command: command}, err
	}

	s.logger.Info("pet command sent", "pet", args.Pet, "command", command)
	return nil, PetCommandOutput{Pet: args.Pet, Command: command, OK: true}, nil
}
