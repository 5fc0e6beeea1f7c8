package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehtaankatu/tasting/internal/errors"
)

func TestNextOnCommand(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		cmd     Command
		want    Status
		wantErr errors.ErrorCode
	}{
		{name: "waiting start", from: StatusWaiting, cmd: CommandStartRound, want: StatusTasting},
		{name: "waiting end", from: StatusWaiting, cmd: CommandEndGame, want: StatusEnded},
		{name: "waiting pause rejected", from: StatusWaiting, cmd: CommandPause, wantErr: errors.ErrInvalidTransition},
		{name: "tasting next round", from: StatusTasting, cmd: CommandStartRound, want: StatusTasting},
		{name: "tasting pause", from: StatusTasting, cmd: CommandPause, want: StatusPaused},
		{name: "tasting end", from: StatusTasting, cmd: CommandEndGame, want: StatusEnded},
		{name: "paused resume", from: StatusPaused, cmd: CommandResume, want: StatusTasting},
		{name: "paused start", from: StatusPaused, cmd: CommandStartRound, want: StatusTasting},
		{name: "paused end", from: StatusPaused, cmd: CommandEndGame, want: StatusEnded},
		{name: "paused pause rejected", from: StatusPaused, cmd: CommandPause, wantErr: errors.ErrInvalidTransition},
		{name: "ended is terminal", from: StatusEnded, cmd: CommandStartRound, wantErr: errors.ErrSessionEnded},
		{name: "ended rejects end", from: StatusEnded, cmd: CommandEndGame, wantErr: errors.ErrSessionEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOnCommand(tt.from, tt.cmd)
			if tt.wantErr != 0 {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusTasting, ParseStatus("in_progress"))
	assert.Equal(t, StatusTasting, ParseStatus("tasting"))
	assert.Equal(t, StatusPaused, ParseStatus("paused"))
	assert.Equal(t, StatusEnded, ParseStatus("ended"))
	assert.Equal(t, StatusWaiting, ParseStatus(""))
	assert.Equal(t, StatusWaiting, ParseStatus("garbage"))
}

func TestAcceptsGuesses(t *testing.T) {
	assert.True(t, StatusTasting.AcceptsGuesses())
	assert.False(t, StatusWaiting.AcceptsGuesses())
	assert.False(t, StatusPaused.AcceptsGuesses())
	assert.False(t, StatusEnded.AcceptsGuesses())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusWaiting, CommandStartRound))
	assert.False(t, CanTransition(StatusEnded, CommandStartRound))
	assert.False(t, CanTransition(StatusWaiting, CommandResume))
}
