package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// DefaultCommand is the local speech command used when none is configured.
const DefaultCommand = "say"

// CommandSpeaker speaks by running a local command with the text as its final
// argument. A missing binary is treated as speech being unavailable.
type CommandSpeaker struct {
	command string
	args    []string
	logger  *slog.Logger
}

// NewCommandSpeaker creates a CommandSpeaker. argv[0] is the program, the
// remaining elements are passed before the text. An empty argv runs "say".
func NewCommandSpeaker(argv []string, logger *slog.Logger) *CommandSpeaker {
	if len(argv) == 0 {
		argv = []string{DefaultCommand}
	}
	return &CommandSpeaker{
		command: argv[0],
		args:    append([]string(nil), argv[1:]...),
		logger:  logger,
	}
}

// Speak runs the command and waits for it to exit.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			s.logger.Debug("speech command not available", "command", s.command)
			return nil
		}
		return fmt.Errorf("running %s: %w", s.command, err)
	}

	return nil
}
