package game

import (
	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/models"
)

// Status is a session's lifecycle position. The store column holds its
// string form.
type Status string

const (
	StatusWaiting Status = models.StatusWaiting
	StatusTasting Status = models.StatusTasting
	StatusPaused  Status = models.StatusPaused
	StatusEnded   Status = models.StatusEnded
)

// Command is a host action that may move a session between statuses.
type Command string

const (
	CommandStartRound Command = "start_round"
	CommandPause      Command = "pause"
	CommandResume     Command = "resume"
	CommandEndGame    Command = "end_game"
)

// transitions maps each status to the commands it accepts and where they
// lead. Ended appears in no row: it is terminal.
var transitions = map[Status]map[Command]Status{
	StatusWaiting: {
		CommandStartRound: StatusTasting,
		CommandEndGame:    StatusEnded,
	},
	StatusTasting: {
		CommandStartRound: StatusTasting, // next round, same status
		CommandPause:      StatusPaused,
		CommandEndGame:    StatusEnded,
	},
	StatusPaused: {
		CommandStartRound: StatusTasting,
		CommandResume:     StatusTasting,
		CommandEndGame:    StatusEnded,
	},
}

// ParseStatus normalizes a stored status string. The legacy in_progress
// spelling reads as tasting; writers never produce it.
func ParseStatus(raw string) Status {
	switch raw {
	case models.StatusInProgress:
		return StatusTasting
	case models.StatusWaiting, models.StatusTasting, models.StatusPaused, models.StatusEnded:
		return Status(raw)
	default:
		return StatusWaiting
	}
}

// CanTransition reports whether cmd is accepted in the given status.
func CanTransition(from Status, cmd Command) bool {
	row, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = row[cmd]
	return ok
}

// NextOnCommand resolves the status a command leads to. Commands issued
// against an ended session always fail: ended is a one-way door.
func NextOnCommand(from Status, cmd Command) (Status, error) {
	if from == StatusEnded {
		return from, errors.New(errors.ErrSessionEnded)
	}
	row, ok := transitions[from]
	if !ok {
		return from, errors.Newf(errors.ErrInvalidTransition, "unknown status %q", from)
	}
	to, ok := row[cmd]
	if !ok {
		return from, errors.Newf(errors.ErrInvalidTransition, "%s not allowed while %s", cmd, from)
	}
	return to, nil
}

// AcceptsGuesses reports whether guess submissions are open in this status.
func (s Status) AcceptsGuesses() bool {
	return s == StatusTasting
}

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusEnded
}
