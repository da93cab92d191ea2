package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskpet/internal/runtimepath"
)

// Client talks to one pet's control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the pet with the given ordinal.
func NewClient(ordinal int) *Client {
	socketPath, err := runtimepath.SocketPath(ordinal)
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientForPath(socketPath)
}

// NewClientForPath creates a client for an explicit socket path.
func NewClientForPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pet: %w (is it running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("pet error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	_, err := c.sendRequest(req)
	return err
}

// Status retrieves the pet's state.
func (c *Client) Status() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandStatus})
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// SetKeepAnim pins or releases the current animation.
func (c *Client) SetKeepAnim(on bool) error {
	return c.send(CommandKeepAnim, TogglePayload{Enabled: on})
}

// SetTransparent makes the pet click-through and translucent.
func (c *Client) SetTransparent(on bool) error {
	return c.send(CommandTransparent, TogglePayload{Enabled: on})
}

// ChangeStage switches to stage, or to the next stage when empty.
func (c *Client) ChangeStage(stage string) error {
	return c.send(CommandStage, StagePayload{Stage: stage})
}

// Reload asks the pet to re-read its configuration.
func (c *Client) Reload() error {
	return c.send(CommandReload, nil)
}

// Quit asks the pet to exit.
func (c *Client) Quit() error {
	return c.send(CommandQuit, nil)
}

// Ping checks if the pet is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
