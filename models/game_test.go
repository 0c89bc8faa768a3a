package models

import (
	"errors"
	"testing"
)

// fixedBank is a QuestionSource stub returning the same question every draw.
type fixedBank struct {
	question Question
	decoy    string
	err      error
}

func (b *fixedBank) RandomQuestion(gameModeID uint) (*Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	question := b.question
	return &question, nil
}

func (b *fixedBank) RandomCelebrityAnswer(question *Question) (string, error) {
	return b.decoy, nil
}

func testBank() *fixedBank {
	return &fixedBank{
		question: Question{
			ID:            1,
			GameModeID:    1,
			Prompt:        "What is the airspeed velocity of an unladen swallow?",
			CorrectAnswer: "eleven meters per second",
		},
		decoy: "fast enough to carry a coconut",
	}
}

func testMode() *GameMode {
	return &GameMode{ID: 1, Name: "IS THIS A FACT"}
}

func newTestGame(numRounds int) (*Game, *Player, *Player) {
	leader := &Player{ID: 1, Alias: "leader"}
	other := &Player{ID: 2, Alias: "other"}
	game := NewGame(leader, testMode(), "abc123", numRounds, false)
	if err := game.AddPlayer(other); err != nil {
		panic(err)
	}
	return game, leader, other
}

// startedTestGame returns a two-player game already in SUBMITTING_ANSWERS.
func startedTestGame(t *testing.T, numRounds int) (*Game, *Player, *Player) {
	t.Helper()
	game, leader, other := newTestGame(numRounds)
	if err := game.Start(leader, testBank()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return game, leader, other
}

func submitBoth(t *testing.T, game *Game, leader, other *Player) {
	t.Helper()
	if err := game.SubmitAnswer(leader, "leader bluff"); err != nil {
		t.Fatalf("leader submit failed: %v", err)
	}
	if err := game.SubmitAnswer(other, "other bluff"); err != nil {
		t.Fatalf("other submit failed: %v", err)
	}
}

func TestNewGame(t *testing.T) {
	leader := &Player{ID: 1, Alias: "leader"}
	game := NewGame(leader, testMode(), "abc123", 5, true)

	if game.Status != StatusPlayersJoining {
		t.Errorf("Expected status %s, got %s", StatusPlayersJoining, game.Status)
	}
	if !game.HasPlayer(leader.ID) {
		t.Error("Leader should be on the roster")
	}
	if game.LeaderID != leader.ID {
		t.Errorf("Expected leader %d, got %d", leader.ID, game.LeaderID)
	}
	if leader.CurrentGameID == nil {
		t.Error("Leader's current game should be set")
	}
	if len(game.PlayerStats) != 1 {
		t.Errorf("Expected 1 stat delta, got %d", len(game.PlayerStats))
	}
	if !game.HasCelebrity {
		t.Error("Expected celebrity mode enabled")
	}
}

func TestNewGameDefaultsNumRounds(t *testing.T) {
	leader := &Player{ID: 1, Alias: "leader"}
	game := NewGame(leader, testMode(), "abc123", 0, false)

	if game.NumRounds != DefaultNumRounds {
		t.Errorf("Expected %d rounds, got %d", DefaultNumRounds, game.NumRounds)
	}
}

func TestAddPlayerAfterStart(t *testing.T) {
	game, _, _ := startedTestGame(t, 3)

	late := &Player{ID: 3, Alias: "late"}
	err := game.AddPlayer(late)
	if !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
	if game.HasPlayer(late.ID) {
		t.Error("Late player should not be on the roster")
	}
}

func TestAddPlayerTwice(t *testing.T) {
	game, leader, _ := newTestGame(3)

	if err := game.AddPlayer(leader); err != nil {
		t.Errorf("Re-joining should be a no-op, got %v", err)
	}
	if len(game.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(game.Players))
	}
}

func TestStartGamePreconditions(t *testing.T) {
	leader := &Player{ID: 1, Alias: "leader"}
	game := NewGame(leader, testMode(), "abc123", 3, false)

	// Single player
	if err := game.Start(leader, testBank()); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError with one player, got %v", err)
	}

	other := &Player{ID: 2, Alias: "other"}
	game.AddPlayer(other)

	// Not the leader
	if err := game.Start(other, testBank()); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError for non-leader, got %v", err)
	}
	if game.Status != StatusPlayersJoining {
		t.Errorf("Failed start should not change status, got %s", game.Status)
	}

	// Success
	if err := game.Start(leader, testBank()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if game.Status != StatusSubmittingAnswers {
		t.Errorf("Expected status %s, got %s", StatusSubmittingAnswers, game.Status)
	}
	if len(game.Rounds) != 1 {
		t.Fatalf("Expected 1 round, got %d", len(game.Rounds))
	}
	if game.Rounds[0].Number != 1 {
		t.Errorf("Expected round number 1, got %d", game.Rounds[0].Number)
	}

	// Already started
	if err := game.Start(leader, testBank()); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError for started game, got %v", err)
	}
}

func TestStartGameQuestionBankEmpty(t *testing.T) {
	game, leader, _ := newTestGame(3)
	bank := &fixedBank{err: ErrNoQuestions}

	err := game.Start(leader, bank)
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("Expected ErrNoQuestions, got %v", err)
	}
	if game.Status != StatusPlayersJoining {
		t.Errorf("Failed draw should leave status untouched, got %s", game.Status)
	}
	if len(game.Rounds) != 0 {
		t.Errorf("Failed draw should not append a round, got %d", len(game.Rounds))
	}
}

func TestStartGameAttachesCelebrityAnswer(t *testing.T) {
	leader := &Player{ID: 1, Alias: "leader"}
	other := &Player{ID: 2, Alias: "other"}
	game := NewGame(leader, testMode(), "abc123", 3, true)
	game.AddPlayer(other)

	if err := game.Start(leader, testBank()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	round, _ := game.CurrentRound()
	if round.CelebrityAnswer == "" {
		t.Error("Expected a celebrity answer on the round")
	}
}

func TestSubmitAnswerEmpty(t *testing.T) {
	game, leader, _ := startedTestGame(t, 3)

	err := game.SubmitAnswer(leader, "")
	if !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
	round, _ := game.CurrentRound()
	if len(round.Answers) != 0 {
		t.Errorf("Rejected submission must not change the round, got %d answers", len(round.Answers))
	}
}

func TestSubmitAnswerNonMember(t *testing.T) {
	game, _, _ := startedTestGame(t, 3)

	outsider := &Player{ID: 99, Alias: "outsider"}
	if err := game.SubmitAnswer(outsider, "sneaky"); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestSubmitAnswerWrongState(t *testing.T) {
	game, leader, _ := newTestGame(3)

	if err := game.SubmitAnswer(leader, "too early"); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestSubmitAnswerDuplicateDoesNotFlip(t *testing.T) {
	game, leader, _ := startedTestGame(t, 3)

	if err := game.SubmitAnswer(leader, "first"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := game.SubmitAnswer(leader, "second"); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	if game.Status != StatusSubmittingAnswers {
		t.Errorf("Duplicate submitter must not flip the state, got %s", game.Status)
	}
	round, _ := game.CurrentRound()
	if len(round.Answers) != 1 {
		t.Fatalf("Expected 1 distinct answer, got %d", len(round.Answers))
	}
	if round.Answers[0].Text != "second" {
		t.Errorf("Resubmission should overwrite, got %q", round.Answers[0].Text)
	}
}

func TestSubmitAnswerAllFlipsToSelecting(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)

	submitBoth(t, game, leader, other)
	if game.Status != StatusSelectingAnswers {
		t.Errorf("Expected status %s, got %s", StatusSelectingAnswers, game.Status)
	}
}

func TestSelectAnswerWrongState(t *testing.T) {
	game, leader, _ := startedTestGame(t, 3)

	if err := game.SelectAnswer(leader, "anything"); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestSelectAnswerNonMember(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)

	outsider := &Player{ID: 99, Alias: "outsider"}
	if err := game.SelectAnswer(outsider, "leader bluff"); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestSelectAnswerDuplicate(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)

	if err := game.SelectAnswer(leader, "other bluff"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := game.SelectAnswer(leader, "other bluff"); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError on second selection, got %v", err)
	}
}

func TestSelectAnswerScoring(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)

	// Leader falls for the other player's bluff
	if err := game.SelectAnswer(leader, "other bluff"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	// Other player spots the real answer
	if err := game.SelectAnswer(other, "eleven meters per second"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	leaderDelta := game.statDelta(leader.ID)
	otherDelta := game.statDelta(other.ID)

	if leaderDelta.GotPsychedCount != 1 {
		t.Errorf("Expected leader got-psyched 1, got %d", leaderDelta.GotPsychedCount)
	}
	if otherDelta.PsychedOthersCount != 1 {
		t.Errorf("Expected other psyched-others 1, got %d", otherDelta.PsychedOthersCount)
	}
	if otherDelta.CorrectAnswerCount != 1 {
		t.Errorf("Expected other correct 1, got %d", otherDelta.CorrectAnswerCount)
	}
	if leaderDelta.CorrectAnswerCount != 0 {
		t.Errorf("Expected leader correct 0, got %d", leaderDelta.CorrectAnswerCount)
	}
}

func TestSelectOwnBluffScoresNothing(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)

	if err := game.SelectAnswer(leader, "leader bluff"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	delta := game.statDelta(leader.ID)
	if delta.CorrectAnswerCount != 0 || delta.GotPsychedCount != 0 || delta.PsychedOthersCount != 0 {
		t.Errorf("Selecting your own bluff must move no counters, got %+v", *delta)
	}
}

func TestSelectAllMovesToWaitingForReady(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)

	game.SelectAnswer(leader, "other bluff")
	game.SelectAnswer(other, "leader bluff")

	if game.Status != StatusWaitingForReady {
		t.Errorf("Expected status %s, got %s", StatusWaitingForReady, game.Status)
	}
}

func TestSelectAllOnFinalRoundEndsGame(t *testing.T) {
	game, leader, other := startedTestGame(t, 1)
	submitBoth(t, game, leader, other)

	game.SelectAnswer(leader, "other bluff")
	game.SelectAnswer(other, "eleven meters per second")

	if game.Status != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, game.Status)
	}
	for i := range game.Players {
		if game.Players[i].CurrentGameID != nil {
			t.Errorf("Player %d back-reference should be cleared", game.Players[i].ID)
		}
	}
}

func TestReadyFlow(t *testing.T) {
	game, leader, other := startedTestGame(t, 2)
	submitBoth(t, game, leader, other)
	game.SelectAnswer(leader, "other bluff")
	game.SelectAnswer(other, "leader bluff")

	if err := game.PlayerIsReady(leader, testBank()); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if game.Status != StatusWaitingForReady {
		t.Errorf("One ready player must not start the round, got %s", game.Status)
	}

	// Changed their mind
	if err := game.PlayerIsNotReady(leader); err != nil {
		t.Fatalf("unready failed: %v", err)
	}
	if len(game.ReadyPlayers) != 0 {
		t.Errorf("Expected empty ready set, got %d", len(game.ReadyPlayers))
	}

	game.PlayerIsReady(leader, testBank())
	if err := game.PlayerIsReady(other, testBank()); err != nil {
		t.Fatalf("ready failed: %v", err)
	}

	if game.Status != StatusSubmittingAnswers {
		t.Errorf("Expected next round to start, got %s", game.Status)
	}
	if len(game.Rounds) != 2 {
		t.Fatalf("Expected 2 rounds, got %d", len(game.Rounds))
	}
	if game.Rounds[1].Number != 2 {
		t.Errorf("Expected round number 2, got %d", game.Rounds[1].Number)
	}
	if len(game.ReadyPlayers) != 0 {
		t.Errorf("Ready set must be cleared at round start, got %d", len(game.ReadyPlayers))
	}
}

func TestReadyWrongState(t *testing.T) {
	game, leader, _ := startedTestGame(t, 3)

	if err := game.PlayerIsReady(leader, testBank()); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
	if err := game.PlayerIsNotReady(leader); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestReadyNonMember(t *testing.T) {
	game, leader, other := startedTestGame(t, 2)
	submitBoth(t, game, leader, other)
	game.SelectAnswer(leader, "other bluff")
	game.SelectAnswer(other, "leader bluff")

	outsider := &Player{ID: 99, Alias: "outsider"}
	if err := game.PlayerIsReady(outsider, testBank()); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestEndGameLeaderOnly(t *testing.T) {
	game, _, other := startedTestGame(t, 3)

	if err := game.End(other); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError for non-leader, got %v", err)
	}
	if game.Status == StatusEnded {
		t.Error("Non-leader end must not terminate the game")
	}
}

func TestEndGameAggregatesOnce(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)
	submitBoth(t, game, leader, other)
	game.SelectAnswer(leader, "eleven meters per second")

	if err := game.End(leader); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if game.Status != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, game.Status)
	}

	roster := game.RosterPlayer(leader.ID)
	if roster.Stat.CorrectAnswerCount != 1 {
		t.Errorf("Expected lifetime correct 1, got %d", roster.Stat.CorrectAnswerCount)
	}

	// A second end must fail and must not re-aggregate
	if err := game.End(leader); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError on ended game, got %v", err)
	}
	if roster.Stat.CorrectAnswerCount != 1 {
		t.Errorf("Stats must fold exactly once, got %d", roster.Stat.CorrectAnswerCount)
	}
}

func TestRemovePlayerNotInGame(t *testing.T) {
	game, _, _ := newTestGame(3)

	outsider := &Player{ID: 99, Alias: "outsider"}
	if err := game.RemovePlayer(outsider); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

func TestRemovePlayerWhileJoining(t *testing.T) {
	game, _, other := newTestGame(3)
	third := &Player{ID: 3, Alias: "third"}
	game.AddPlayer(third)

	if err := game.RemovePlayer(other); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if game.Status == StatusEnded {
		t.Error("Removing with two players left in PLAYERS_JOINING must not end the game")
	}
	if other.CurrentGameID != nil {
		t.Error("Removed player's back-reference should be cleared")
	}
}

func TestRemoveSecondToLastPlayerAfterStartEndsGame(t *testing.T) {
	game, _, other := startedTestGame(t, 3)

	if err := game.RemovePlayer(other); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if game.Status != StatusEnded {
		t.Errorf("One player left after start must end the game, got %s", game.Status)
	}
}

func TestRemoveLastPlayerEndsGame(t *testing.T) {
	game, leader, other := startedTestGame(t, 3)

	game.RemovePlayer(other)
	// Already ended; removing the survivor as well must not blow up
	if err := game.RemovePlayer(leader); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if game.Status != StatusEnded {
		t.Errorf("Expected status %s, got %s", StatusEnded, game.Status)
	}
	if len(game.Players) != 0 {
		t.Errorf("Expected empty roster, got %d", len(game.Players))
	}
}

func TestCurrentRoundBeforeStart(t *testing.T) {
	game, _, _ := newTestGame(3)

	if _, err := game.CurrentRound(); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
	if _, err := game.RoundData(); !IsInvalidAction(err) {
		t.Errorf("Expected InvalidActionError, got %v", err)
	}
}

// Full two-player single-round session from create to stat folding.
func TestSingleRoundGameEndToEnd(t *testing.T) {
	leader := &Player{ID: 1, Alias: "leader"}
	other := &Player{ID: 2, Alias: "other"}
	game := NewGame(leader, testMode(), "abc123", 1, false)

	if err := game.AddPlayer(other); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := game.Start(leader, testBank()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(game.Rounds) != 1 || game.Status != StatusSubmittingAnswers {
		t.Fatalf("Expected 1 round in %s, got %d rounds in %s",
			StatusSubmittingAnswers, len(game.Rounds), game.Status)
	}

	submitBoth(t, game, leader, other)
	if game.Status != StatusSelectingAnswers {
		t.Fatalf("Expected %s, got %s", StatusSelectingAnswers, game.Status)
	}

	if err := game.SelectAnswer(leader, "other bluff"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := game.SelectAnswer(other, "eleven meters per second"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if game.Status != StatusEnded {
		t.Fatalf("Expected %s, got %s", StatusEnded, game.Status)
	}

	leaderEntry := game.RosterPlayer(leader.ID)
	otherEntry := game.RosterPlayer(other.ID)
	if leaderEntry.Stat.GotPsychedCount != 1 {
		t.Errorf("Expected leader lifetime got-psyched 1, got %d", leaderEntry.Stat.GotPsychedCount)
	}
	if otherEntry.Stat.PsychedOthersCount != 1 {
		t.Errorf("Expected other lifetime psyched-others 1, got %d", otherEntry.Stat.PsychedOthersCount)
	}
	if otherEntry.Stat.CorrectAnswerCount != 1 {
		t.Errorf("Expected other lifetime correct 1, got %d", otherEntry.Stat.CorrectAnswerCount)
	}
}
