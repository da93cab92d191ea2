package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/deskpet/internal/ipc"
	"github.com/1broseidon/deskpet/internal/peers"
)

type staticPets []peers.Entry

func (s staticPets) List() ([]peers.Entry, error) { return s, nil }

type fakeClient struct {
	status *ipc.StatusData
	err    error
	calls  []string
}

func (f *fakeClient) Status() (*ipc.StatusData, error) { return f.status, f.err }

func (f *fakeClient) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeClient) SetKeepAnim(on bool) error {
	if on {
		return f.record("keep:on")
	}
	return f.record("keep:off")
}

func (f *fakeClient) SetTransparent(on bool) error {
	if on {
		return f.record("transparent:on")
	}
	return f.record("transparent:off")
}

func (f *fakeClient) ChangeStage(stage string) error { return f.record("stage:" + stage) }
func (f *fakeClient) Reload() error { return f.record("reload") }
func (f *fakeClient) Quit() error { return f.record("quit") }

func newTestServer(pets PetLister, clients map[int]*fakeClient) *Server {
	return newServer(pets, func(ordinal int) PetClient {
		if c, ok := clients[ordinal]; ok {
			return c
		}
		return &fakeClient{err: errors.New("failed to connect to pet")}
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListPetsMarksUnreachable(t *testing.T) {
	joined := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pets := staticPets{
		{WindowID: 11, Ordinal: 0, PID: 100, JoinedAt: joined},
		{WindowID: 12, Ordinal: 1, PID: 101, JoinedAt: joined},
	}
	s := newTestServer(pets, map[int]*fakeClient{
		0: {status: &ipc.StatusData{Animation: "Relax"}},
	})

	_, out, err := s.handleListPets(context.Background(), nil, ListPetsInput{})
	if err != nil {
		t.Fatalf("handleListPets() error: %v", err)
	}
	if len(out.Pets) != 2 {
		t.Fatalf("got %d pets, want 2", len(out.Pets))
	}
	if !out.Pets[0].Reachable || out.Pets[0].Animation != "Relax" {
		t.Errorf("pet 0 = %+v, want reachable and playing Relax", out.Pets[0])
	}
	if out.Pets[1].Reachable {
		t.Errorf("pet 1 should be unreachable")
	}
	if out.Pets[0].JoinedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("JoinedAt = %q", out.Pets[0].JoinedAt)
	}
}

func TestPetStatus(t *testing.T) {
	s := newTestServer(nil, map[int]*fakeClient{
		2: {status: &ipc.StatusData{Ordinal: 2, X: 10, Y: 880, Stage: "Default", Grounded: true}},
	})

	_, out, err := s.handlePetStatus(context.Background(), nil, PetStatusInput{Pet: 2})
	if err != nil {
		t.Fatalf("handlePetStatus() error: %v", err)
	}
	if out.Ordinal != 2 || out.Y != 880 || !out.Grounded || out.Stage != "Default" {
		t.Errorf("status = %+v", out)
	}

	if _, _, err := s.handlePetStatus(context.Background(), nil, PetStatusInput{Pet: -1}); err == nil {
		t.Error("negative ordinal should be rejected")
	}
	if _, _, err := s.handlePetStatus(context.Background(), nil, PetStatusInput{Pet: 5}); err == nil {
		t.Error("unreachable pet should return an error")
	}
}

func TestPetCommand(t *testing.T) {
	off := false
	tests := []struct {
		name string
		in   PetCommandInput
		want string
	}{
		{"keep defaults to on", PetCommandInput{Command: "keep_anim"}, "keep:on"},
		{"keep off", PetCommandInput{Command: "keep_anim", Enabled: &off}, "keep:off"},
		{"transparent", PetCommandInput{Command: "Transparent"}, "transparent:on"},
		{"next stage", PetCommandInput{Command: "stage"}, "stage:"},
		{"named stage", PetCommandInput{Command: "stage", Stage: "Battle"}, "stage:Battle"},
		{"reload", PetCommandInput{Command: "reload"}, "reload"},
		{"quit", PetCommandInput{Command: " quit "}, "quit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{}
			s := newTestServer(nil, map[int]*fakeClient{0: c})
			_, out, err := s.handlePetCommand(context.Background(), nil, tt.in)
			if err != nil {
				t.Fatalf("handlePetCommand() error: %v", err)
			}
			if !out.OK {
				t.Errorf("OK = false")
			}
			if len(c.calls) != 1 || c.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", c.calls, tt.want)
			}
		})
	}
}

func TestPetCommandErrors(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(nil, map[int]*fakeClient{0: c})
	if _, _, err := s.handlePetCommand(context.Background(), nil, PetCommandInput{Command: "dance"}); err == nil {
		t.Error("unknown command should fail")
	}
	if len(c.calls) != 0 {
		t.Errorf("unknown command reached the pet: %v", c.calls)
	}

	c.err = errors.New("pet error: character has a single stage")
	_, out, err := s.handlePetCommand(context.Background(), nil, PetCommandInput{Command: "stage"})
	if err == nil || out.OK {
		t.Errorf("pet errors should be returned, got out=%+v err=%v", out, err)
	}
}
