package models

import "testing"

func testRound() *Round {
	return &Round{
		GameID: 1,
		Number: 1,
		Question: Question{
			ID:            1,
			Prompt:        "Name the largest moon of Neptune",
			CorrectAnswer: "Triton",
		},
		QuestionID: 1,
	}
}

func TestRoundSubmitAnswerOverwrites(t *testing.T) {
	round := testRound()

	round.SubmitAnswer(1, "Europa")
	round.SubmitAnswer(2, "Charon")
	round.SubmitAnswer(1, "Ganymede")

	if len(round.Answers) != 2 {
		t.Fatalf("Expected 2 distinct answers, got %d", len(round.Answers))
	}
	for i := range round.Answers {
		if round.Answers[i].PlayerID == 1 && round.Answers[i].Text != "Ganymede" {
			t.Errorf("Expected overwrite to Ganymede, got %q", round.Answers[i].Text)
		}
	}
}

func TestRoundAllAnswersSubmitted(t *testing.T) {
	round := testRound()

	if round.AllAnswersSubmitted(2) {
		t.Error("Empty round should not report all submitted")
	}
	round.SubmitAnswer(1, "Europa")
	if round.AllAnswersSubmitted(2) {
		t.Error("One of two submitters should not report all submitted")
	}
	round.SubmitAnswer(1, "Io")
	if round.AllAnswersSubmitted(2) {
		t.Error("A resubmission must not count as a second submitter")
	}
	round.SubmitAnswer(2, "Charon")
	if !round.AllAnswersSubmitted(2) {
		t.Error("Two distinct submitters should report all submitted")
	}
}

func TestRoundAnswerAuthor(t *testing.T) {
	round := testRound()
	round.SubmitAnswer(1, "Europa")

	author := round.AnswerAuthor("Europa")
	if author == nil || *author != 1 {
		t.Errorf("Expected author 1, got %v", author)
	}
	if round.AnswerAuthor("Triton") != nil {
		t.Error("The correct answer has no bluff author")
	}
}

func TestRoundSelections(t *testing.T) {
	round := testRound()
	round.SubmitAnswer(1, "Europa")
	round.SubmitAnswer(2, "Charon")

	author := round.AnswerAuthor("Europa")
	round.SelectAnswer(2, "Europa", author)

	if !round.HasSelected(2) {
		t.Error("Player 2 should have a recorded selection")
	}
	if round.HasSelected(1) {
		t.Error("Player 1 has not selected yet")
	}
	if round.AllAnswersSelected(2) {
		t.Error("One of two selectors should not report all selected")
	}
	round.SelectAnswer(1, "Triton", nil)
	if !round.AllAnswersSelected(2) {
		t.Error("Two selectors should report all selected")
	}
}

func TestRoundDataSnapshot(t *testing.T) {
	round := testRound()
	round.CelebrityAnswer = "Proteus"
	round.SubmitAnswer(1, "Europa")
	round.SubmitAnswer(2, "Charon")
	round.SelectAnswer(1, "Charon", round.AnswerAuthor("Charon"))

	data := round.Data()

	if data.Number != 1 {
		t.Errorf("Expected round number 1, got %d", data.Number)
	}
	if data.Prompt != round.Question.Prompt {
		t.Errorf("Expected prompt %q, got %q", round.Question.Prompt, data.Prompt)
	}
	if data.CelebrityAnswer != "Proteus" {
		t.Errorf("Expected celebrity answer Proteus, got %q", data.CelebrityAnswer)
	}
	if len(data.Answers) != 2 {
		t.Fatalf("Expected 2 answers in snapshot, got %d", len(data.Answers))
	}
	if len(data.Selections) != 1 {
		t.Fatalf("Expected 1 selection in snapshot, got %d", len(data.Selections))
	}
	selection := data.Selections[0]
	if selection.PlayerID != 1 || selection.Text != "Charon" {
		t.Errorf("Unexpected selection %+v", selection)
	}
	if selection.AuthorID == nil || *selection.AuthorID != 2 {
		t.Errorf("Expected author 2, got %v", selection.AuthorID)
	}
}
