package game

import (
	"sort"

	"github.com/tehtaankatu/tasting/internal/models"
)

// RoundResult is one player's outcome for one round, kept for the detailed
// breakdown view. Guess is nil when the player skipped the round.
type RoundResult struct {
	Round           *models.Round `json:"round"`
	Guess           *models.Guess `json:"guess,omitempty"`
	CountryCorrect  bool          `json:"country_correct"`
	SelectorCorrect bool          `json:"selector_correct"`
}

// PlayerScore is one ranked scoreboard row.
type PlayerScore struct {
	Player           *models.Player `json:"player"`
	CorrectCountries int            `json:"correct_countries"`
	CorrectSelectors int            `json:"correct_selectors"`
	TotalScore       int            `json:"total_score"`
	Rounds           []RoundResult  `json:"rounds"`
}

// Score derives the ranked scoreboard from persisted rows. Pure function:
// no I/O, deterministic for a given input, and order-independent in rounds
// and guesses. Ties keep the players' input order (stable sort).
func Score(players []*models.Player, rounds []*models.Round, guesses []*models.Guess) []PlayerScore {
	ordered := make([]*models.Round, len(rounds))
	copy(ordered, rounds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RoundNumber < ordered[j].RoundNumber
	})

	byPlayerRound := make(map[string]*models.Guess, len(guesses))
	for _, g := range guesses {
		byPlayerRound[g.PlayerID+"/"+g.RoundID] = g
	}

	scores := make([]PlayerScore, 0, len(players))
	for _, player := range players {
		row := PlayerScore{Player: player, Rounds: make([]RoundResult, 0, len(ordered))}
		for _, round := range ordered {
			result := RoundResult{Round: round}
			if guess, ok := byPlayerRound[player.ID+"/"+round.ID]; ok {
				result.Guess = guess
				result.CountryCorrect = guess.GuessedCountry == round.AnswerCountry
				result.SelectorCorrect = guess.GuessedSelector == round.AnswerSelector
				if result.CountryCorrect {
					row.CorrectCountries++
				}
				if result.SelectorCorrect {
					row.CorrectSelectors++
				}
			}
			row.Rounds = append(row.Rounds, result)
		}
		row.TotalScore = row.CorrectCountries + row.CorrectSelectors
		scores = append(scores, row)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})

	return scores
}

// Winner returns the top scoreboard row, nil for an empty board.
func Winner(scores []PlayerScore) *PlayerScore {
	if len(scores) == 0 {
		return nil
	}
	return &scores[0]
}
