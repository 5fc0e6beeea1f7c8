// Package sync folds the realtime change feed into a client-local view of
// one session. The store stays authoritative; the view is a read-through
// cache refreshed by snapshot or by event, never trusted over either.
package sync

import (
	"encoding/json"

	"github.com/tehtaankatu/tasting/internal/game"
	"github.com/tehtaankatu/tasting/internal/models"
	"github.com/tehtaankatu/tasting/internal/realtime"
)

// SessionView is the local cache one client keeps of a session.
type SessionView struct {
	SessionID    string
	Code         string
	Status       game.Status
	Players      []models.Player
	CurrentRound *models.Round
	// Submitted marks player ids with a guess in the current round; used
	// for the host's submission indicators.
	Submitted map[string]bool
}

// NewSessionView builds the initial view from a one-shot snapshot. A client
// joining mid-session derives its state from this before subscribing, never
// from an event it may have missed.
func NewSessionView(session *models.Session, players []*models.Player, currentRound *models.Round) SessionView {
	view := SessionView{
		Submitted: map[string]bool{},
	}
	if session != nil {
		view.SessionID = session.ID
		view.Code = session.Code
		view.Status = game.ParseStatus(session.Status)
	}
	for _, p := range players {
		view.Players = append(view.Players, *p)
	}
	view.CurrentRound = currentRound
	return view
}

// Reduce folds one change event into the view. Pure function over its
// inputs, and idempotent: the at-least-once feed may deliver any event
// twice, so every case must tolerate replay.
//   - session updates overwrite status (field overwrite is naturally
//     idempotent); an observed ended status is never overwritten back
//   - player inserts dedupe by id, deletes filter by id
//   - round inserts replace the current round only when not older
//   - guess inserts mark the guesser as submitted; the live path also
//     re-fetches players off this trigger
func Reduce(view SessionView, ev *realtime.ChangeEvent) SessionView {
	if ev == nil {
		return view
	}

	switch ev.Table {
	case realtime.TableSessions:
		var session models.Session
		if err := json.Unmarshal(ev.New, &session); err != nil {
			return view
		}
		if view.Status.Terminal() {
			return view
		}
		view.Status = game.ParseStatus(session.Status)
		if session.Code != "" {
			view.Code = session.Code
		}

	case realtime.TablePlayers:
		switch ev.Type {
		case realtime.EventInsert:
			var player models.Player
			if err := json.Unmarshal(ev.New, &player); err != nil {
				return view
			}
			for _, existing := range view.Players {
				if existing.ID == player.ID {
					return view
				}
			}
			players := make([]models.Player, len(view.Players), len(view.Players)+1)
			copy(players, view.Players)
			view.Players = append(players, player)

		case realtime.EventDelete:
			var player models.Player
			if err := json.Unmarshal(ev.Old, &player); err != nil {
				return view
			}
			var players []models.Player
			for _, existing := range view.Players {
				if existing.ID != player.ID {
					players = append(players, existing)
				}
			}
			view.Players = players
		}

	case realtime.TableRounds:
		if ev.Type != realtime.EventInsert {
			return view
		}
		var round models.Round
		if err := json.Unmarshal(ev.New, &round); err != nil {
			return view
		}
		if view.CurrentRound != nil && round.RoundNumber < view.CurrentRound.RoundNumber {
			return view
		}
		// a new round resets the submission indicators
		if view.CurrentRound == nil || round.RoundNumber > view.CurrentRound.RoundNumber {
			view.Submitted = map[string]bool{}
		}
		view.CurrentRound = &round

	case realtime.TableGuesses:
		if ev.Type != realtime.EventInsert && ev.Type != realtime.EventUpdate {
			return view
		}
		var guess models.Guess
		if err := json.Unmarshal(ev.New, &guess); err != nil {
			return view
		}
		if view.CurrentRound == nil || guess.RoundID != view.CurrentRound.ID {
			return view
		}
		submitted := make(map[string]bool, len(view.Submitted)+1)
		for id := range view.Submitted {
			submitted[id] = true
		}
		submitted[guess.PlayerID] = true
		view.Submitted = submitted
	}

	return view
}
