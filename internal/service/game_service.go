package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/config"
	"github.com/tehtaankatu/tasting/internal/database"
	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/game"
	"github.com/tehtaankatu/tasting/internal/models"
	"github.com/tehtaankatu/tasting/internal/realtime"
	"github.com/tehtaankatu/tasting/internal/repository"
	"github.com/tehtaankatu/tasting/internal/utils"
)

type gameService struct {
	repos     *repository.Manager
	publisher realtime.Publisher
	jwt       *utils.JWTManager
	cfg       *config.GameConfig
	log       *zap.Logger

	hostCodeHash string

	answerer *game.Answerer

	// rand.Rand is not safe for concurrent use
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGameService wires the game core. The host passphrase from config is
// hashed once here so the plain text never sits in the service.
func NewGameService(
	repos *repository.Manager,
	publisher realtime.Publisher,
	jwtManager *utils.JWTManager,
	cfg *config.GameConfig,
	log *zap.Logger,
) (GameService, error) {
	hash, err := utils.HashPassword(cfg.HostCode)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, "hashing host code")
	}

	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &gameService{
		repos:        repos,
		publisher:    publisher,
		jwt:          jwtManager,
		cfg:          cfg,
		log:          log,
		hostCodeHash: hash,
		answerer:     game.NewAnswerer(cfg.AnswerCountries, cfg.Selectors, rng),
		rng:          rng,
	}, nil
}

// HostSession verifies the host passphrase, allocates a unique join code and
// creates the session with its host player already seated.
func (s *gameService) HostSession(ctx context.Context, req *HostSessionRequest) (*SessionResponse, error) {
	name := strings.TrimSpace(req.HostName)
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "host name is required")
	}

	ok, err := utils.VerifyPassword(req.HostCode, s.hostCodeHash)
	if err != nil || !ok {
		return nil, errors.New(errors.ErrBadHostCode)
	}

	session, err := s.createWithUniqueCode(ctx, name)
	if err != nil {
		return nil, err
	}

	player := &models.Player{
		SessionID: session.ID,
		Name:      name,
		IsHost:    true,
		JoinedAt:  time.Now(),
	}
	if err := s.repos.Player().Create(ctx, player); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "creating host player")
	}

	s.publisher.Publish(realtime.NewChangeEvent(realtime.TableSessions, realtime.EventInsert, session.ID, session, nil))
	s.publisher.Publish(realtime.NewChangeEvent(realtime.TablePlayers, realtime.EventInsert, session.ID, player, nil))

	token, err := s.jwt.GenerateToken(player.ID, player.Name, session.ID, true)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, "signing player token")
	}

	s.log.Info("session hosted",
		zap.String("session_id", session.ID),
		zap.String("code", session.Code),
		zap.String("host", name))

	return &SessionResponse{Session: session, Player: player, Token: token}, nil
}

// createWithUniqueCode retries code allocation until the unique index stops
// rejecting it. The index is the only authority on uniqueness.
func (s *gameService) createWithUniqueCode(ctx context.Context, hostName string) (*models.Session, error) {
	for attempt := 0; attempt < s.cfg.CodeMaxRetries; attempt++ {
		s.rngMu.Lock()
		code := game.NewCode(s.cfg.CodeLength, s.rng)
		s.rngMu.Unlock()

		session := &models.Session{
			Code:     code,
			HostName: hostName,
			Status:   models.StatusWaiting,
		}
		err := s.repos.Session().Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if database.IsDuplicateKey(err) {
			s.log.Warn("join code collision, retrying", zap.String("code", code))
			continue
		}
		return nil, errors.Wrap(err, errors.ErrTransientIO, "creating session")
	}
	return nil, errors.New(errors.ErrConstraint, "could not allocate a unique join code")
}

// JoinSession seats a new player in the session behind the given code.
func (s *gameService) JoinSession(ctx context.Context, req *JoinSessionRequest) (*SessionResponse, error) {
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "player name is required")
	}

	code := game.NormalizeCode(req.Code)
	if code == "" {
		return nil, errors.New(errors.ErrInvalidInput, "join code is required")
	}

	session, err := s.repos.Session().FindByCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "looking up join code")
	}
	if session == nil {
		return nil, errors.New(errors.ErrUnknownCode)
	}
	if game.ParseStatus(session.Status).Terminal() {
		return nil, errors.New(errors.ErrSessionEnded)
	}

	player := &models.Player{
		SessionID: session.ID,
		Name:      name,
		IsHost:    false,
		JoinedAt:  time.Now(),
	}
	if err := s.repos.Player().Create(ctx, player); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "creating player")
	}

	s.publisher.Publish(realtime.NewChangeEvent(realtime.TablePlayers, realtime.EventInsert, session.ID, player, nil))

	token, err := s.jwt.GenerateToken(player.ID, player.Name, session.ID, false)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, "signing player token")
	}

	s.log.Info("player joined",
		zap.String("session_id", session.ID),
		zap.String("player_id", player.ID),
		zap.String("name", name))

	return &SessionResponse{Session: session, Player: player, Token: token}, nil
}

// Snapshot loads the session's full current state.
func (s *gameService) Snapshot(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	players, err := s.repos.Player().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "listing players")
	}

	current, err := s.repos.Round().FindLatest(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "loading current round")
	}

	snapshot := &SessionSnapshot{
		Session:      session,
		Players:      players,
		CurrentRound: current,
	}

	if current != nil {
		guesses, err := s.repos.Guess().FindByRounds(ctx, []string{current.ID})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransientIO, "loading round guesses")
		}
		snapshot.CurrentGuesses = guesses
	}

	return snapshot, nil
}

// EnsureRound is the idempotent round allocator: probe, insert on miss, and
// fold a duplicate-key rejection back into the read path. Two racing callers
// converge on the one row the unique index admitted.
func (s *gameService) EnsureRound(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error) {
	if roundNumber < 1 {
		return nil, errors.Newf(errors.ErrInvalidInput, "round number %d out of range", roundNumber)
	}

	existing, err := s.repos.Round().FindBySessionAndNumber(ctx, sessionID, roundNumber)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "probing round")
	}
	if existing != nil {
		return existing, nil
	}

	s.rngMu.Lock()
	answer := s.answerer.Draw()
	s.rngMu.Unlock()

	round := &models.Round{
		SessionID:      sessionID,
		RoundNumber:    roundNumber,
		AnswerCountry:  answer.Country,
		AnswerSelector: answer.Selector,
	}
	err = s.repos.Round().Create(ctx, round)
	if err == nil {
		s.publisher.Publish(realtime.NewChangeEvent(realtime.TableRounds, realtime.EventInsert, sessionID, round, nil))
		return round, nil
	}

	if !database.IsDuplicateKey(err) {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "creating round")
	}

	// lost the race, the winning row is authoritative
	winner, err := s.repos.Round().FindBySessionAndNumber(ctx, sessionID, roundNumber)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "re-probing round")
	}
	if winner == nil {
		return nil, errors.New(errors.ErrTransientIO, "round vanished after duplicate rejection")
	}
	return winner, nil
}

// StartRound moves the session into tasting and ensures the round row exists.
func (s *gameService) StartRound(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// reject the transition up front so no round row is allocated for a
	// session that cannot start one
	if _, err := game.NextOnCommand(game.ParseStatus(session.Status), game.CommandStartRound); err != nil {
		return nil, err
	}

	latest, err := s.repos.Round().FindLatest(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "loading latest round")
	}
	if latest != nil && roundNumber < latest.RoundNumber {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"round %d already passed, current is %d", roundNumber, latest.RoundNumber)
	}

	round, err := s.EnsureRound(ctx, sessionID, roundNumber)
	if err != nil {
		return nil, err
	}

	if err := s.applyCommand(ctx, session, game.CommandStartRound); err != nil {
		return nil, err
	}

	s.log.Info("round started",
		zap.String("session_id", sessionID),
		zap.Int("round", roundNumber))

	return round, nil
}

// PauseGame suspends the current round.
func (s *gameService) PauseGame(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, game.CommandPause)
}

// ResumeGame reopens a paused round.
func (s *gameService) ResumeGame(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, game.CommandResume)
}

// EndGame closes the session for good.
func (s *gameService) EndGame(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, game.CommandEndGame)
}

func (s *gameService) transition(ctx context.Context, sessionID string, cmd game.Command) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.applyCommand(ctx, session, cmd)
}

// applyCommand resolves and persists a status transition, then publishes the
// update with both old and new rows.
func (s *gameService) applyCommand(ctx context.Context, session *models.Session, cmd game.Command) error {
	from := game.ParseStatus(session.Status)
	to, err := game.NextOnCommand(from, cmd)
	if err != nil {
		return err
	}
	if to == from && session.Status == string(to) {
		return nil
	}

	old := *session
	if err := s.repos.Session().UpdateStatus(ctx, session.ID, string(to)); err != nil {
		return errors.Wrap(err, errors.ErrTransientIO, "updating session status")
	}
	session.Status = string(to)

	s.publisher.Publish(realtime.NewChangeEvent(realtime.TableSessions, realtime.EventUpdate, session.ID, session, &old))

	s.log.Info("session status changed",
		zap.String("session_id", session.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("command", string(cmd)))

	return nil
}

// SubmitGuess records a player's guess for a round, replacing any earlier
// one. Submissions are only open while the session is tasting.
func (s *gameService) SubmitGuess(ctx context.Context, req *SubmitGuessRequest) (*models.Guess, error) {
	if req.PlayerID == "" || req.RoundID == "" {
		return nil, errors.New(errors.ErrInvalidInput, "player and round are required")
	}
	if req.GuessedCountry == "" || req.GuessedSelector == "" {
		return nil, errors.New(errors.ErrInvalidInput, "country and selector are required")
	}

	round, err := s.repos.Round().FindByID(ctx, req.RoundID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.New(errors.ErrNotFound, "round not found")
		}
		return nil, errors.Wrap(err, errors.ErrTransientIO, "loading round")
	}

	session, err := s.loadSession(ctx, round.SessionID)
	if err != nil {
		return nil, err
	}

	switch status := game.ParseStatus(session.Status); {
	case status.AcceptsGuesses():
	case status == game.StatusPaused:
		return nil, errors.New(errors.ErrGamePaused)
	case status.Terminal():
		return nil, errors.New(errors.ErrSessionEnded)
	default:
		return nil, errors.New(errors.ErrGameNotStarted)
	}

	player, err := s.repos.Player().FindByID(ctx, req.PlayerID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.New(errors.ErrNotFound, "player not found")
		}
		return nil, errors.Wrap(err, errors.ErrTransientIO, "loading player")
	}
	if player.SessionID != round.SessionID {
		return nil, errors.New(errors.ErrInvalidInput, "player belongs to another session")
	}

	return s.upsertGuess(ctx, round.SessionID, req)
}

// upsertGuess converges to one row per (player, round): update in place when
// a row exists, insert otherwise, and degrade a racing insert's duplicate
// rejection back into an update. Last write wins.
func (s *gameService) upsertGuess(ctx context.Context, sessionID string, req *SubmitGuessRequest) (*models.Guess, error) {
	existing, err := s.repos.Guess().FindByPlayerAndRound(ctx, req.PlayerID, req.RoundID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "probing guess")
	}
	if existing != nil {
		return s.updateGuess(ctx, sessionID, existing, req)
	}

	guess := &models.Guess{
		PlayerID:        req.PlayerID,
		RoundID:         req.RoundID,
		GuessedCountry:  req.GuessedCountry,
		GuessedSelector: req.GuessedSelector,
	}
	err = s.repos.Guess().Create(ctx, guess)
	if err == nil {
		s.publisher.Publish(realtime.NewChangeEvent(realtime.TableGuesses, realtime.EventInsert, sessionID, guess, nil))
		return guess, nil
	}

	if !database.IsDuplicateKey(err) {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "creating guess")
	}

	winner, err := s.repos.Guess().FindByPlayerAndRound(ctx, req.PlayerID, req.RoundID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "re-probing guess")
	}
	if winner == nil {
		return nil, errors.New(errors.ErrTransientIO, "guess vanished after duplicate rejection")
	}
	return s.updateGuess(ctx, sessionID, winner, req)
}

func (s *gameService) updateGuess(ctx context.Context, sessionID string, guess *models.Guess, req *SubmitGuessRequest) (*models.Guess, error) {
	old := *guess
	guess.GuessedCountry = req.GuessedCountry
	guess.GuessedSelector = req.GuessedSelector
	if err := s.repos.Guess().Update(ctx, guess); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "updating guess")
	}
	s.publisher.Publish(realtime.NewChangeEvent(realtime.TableGuesses, realtime.EventUpdate, sessionID, guess, &old))
	return guess, nil
}

// Scoreboard derives the ranked scores from everything persisted so far.
func (s *gameService) Scoreboard(ctx context.Context, sessionID string) ([]game.PlayerScore, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	players, err := s.repos.Player().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "listing players")
	}

	rounds, err := s.repos.Round().FindBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransientIO, "listing rounds")
	}

	roundIDs := make([]string, 0, len(rounds))
	for _, round := range rounds {
		roundIDs = append(roundIDs, round.ID)
	}

	var guesses []*models.Guess
	if len(roundIDs) > 0 {
		guesses, err = s.repos.Guess().FindByRounds(ctx, roundIDs)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTransientIO, "listing guesses")
		}
	}

	return game.Score(players, rounds, guesses), nil
}

func (s *gameService) loadSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, errors.New(errors.ErrInvalidInput, "session id is required")
	}
	session, err := s.repos.Session().FindByID(ctx, sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.New(errors.ErrNotFound, "session not found")
		}
		return nil, errors.Wrap(err, errors.ErrTransientIO, "loading session")
	}
	return session, nil
}
