package services

import (
	"testing"

	"psychparty/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockGameReturnsSameLockPerCode(t *testing.T) {
	s := NewGameService(nil, nil, nil)

	first := s.lockGame("abc123")
	second := s.lockGame("abc123")
	other := s.lockGame("def456")

	assert.Same(t, first, second, "same code must map to the same lock")
	assert.NotSame(t, first, other, "different codes must not share a lock")
}

func TestGenerateCode(t *testing.T) {
	s := NewGameService(nil, nil, nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := s.generateCode()
		require.Len(t, code, 6)
		assert.Regexp(t, "^[0-9a-f]{6}$", code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should be effectively unique")
}

func TestBuildAnswerPool(t *testing.T) {
	round := &models.Round{
		Question: models.Question{
			Prompt:        "Which planet has the tallest mountain?",
			CorrectAnswer: "Mars",
		},
		CelebrityAnswer: "Venus",
	}
	round.SubmitAnswer(1, "Jupiter")
	round.SubmitAnswer(2, "Mercury")

	pool := buildAnswerPool(round)

	assert.Len(t, pool, 4)
	assert.ElementsMatch(t, []string{"Jupiter", "Mercury", "Mars", "Venus"}, pool)
}

func TestBuildAnswerPoolDeduplicates(t *testing.T) {
	round := &models.Round{
		Question: models.Question{CorrectAnswer: "Mars"},
	}
	// A bluff that happens to match the real answer appears once
	round.SubmitAnswer(1, "Mars")
	round.SubmitAnswer(2, "Mercury")

	pool := buildAnswerPool(round)

	assert.ElementsMatch(t, []string{"Mars", "Mercury"}, pool)
}

func TestBuildAnswerPoolWithoutCelebrity(t *testing.T) {
	round := &models.Round{
		Question: models.Question{CorrectAnswer: "Mars"},
	}
	round.SubmitAnswer(1, "Jupiter")

	pool := buildAnswerPool(round)

	assert.NotContains(t, pool, "")
	assert.ElementsMatch(t, []string{"Jupiter", "Mars"}, pool)
}
