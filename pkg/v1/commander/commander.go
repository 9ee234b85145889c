// Package commander sends commands to restock monitor.
package commander

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockery --name Sender --filename sender.go

// CheckCommand requests monitoring cycle of provided brands, or of all brands when empty.
type CheckCommand struct {
	Brands []string `json:"brands"`
}

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// CheckCommander sends check commands.
type CheckCommander struct {
	sender Sender
}

// NewCheckCommander returns new CheckCommander using provided sender for sending messages.
func NewCheckCommander(sender Sender) CheckCommander {
	return CheckCommander{
		sender: sender,
	}
}

// SendCheckCommand sends check command with provided brands.
func (c CheckCommander) SendCheckCommand(ctx context.Context, brands ...string) error {
	cmd := CheckCommand{
		Brands: brands,
	}
	if cmd.Brands == nil {
		cmd.Brands = []string{}
	}

	cmdMsg, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("can't marshal check command: %w", err)
	}

	return c.sender.Send(ctx, cmdMsg)
}
