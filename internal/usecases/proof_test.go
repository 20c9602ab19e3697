package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "blip.dashboard/internal/domain/errors"
)

func TestExtractTweetID(t *testing.T) {
	valid := []struct{ url, id string }{
		{"https://twitter.com/blipmoney/status/1790000000000000001", "1790000000000000001"},
		{"https://x.com/blipmoney/status/42", "42"},
		{"http://www.x.com/someone_1/status/7/", "7"},
		{"https://mobile.twitter.com/user/statuses/123", "123"},
		{"https://x.com/i/web/status/555", "555"},
		{"https://twitter.com/i/status/666?s=20", "666"},
		{"https://x.com/user/status/999#reply", "999"},
		{"  https://x.com/user/status/31  ", "31"},
	}
	for _, tc := range valid {
		got, ok := ExtractTweetID(tc.url)
		assert.True(t, ok, tc.url)
		assert.Equal(t, tc.id, got, tc.url)
	}

	invalid := []string{
		"",
		"not a url",
		"https://x.com/user",
		"https://x.com/user/status/",
		"https://x.com/user/status/abc",
		"https://facebook.com/user/status/1",
		"https://x.com.evil.io/user/status/1",
		"ftp://x.com/user/status/1",
		"https://x.com/user/status/12/photo/1",
	}
	for _, in := range invalid {
		_, ok := ExtractTweetID(in)
		assert.False(t, ok, in)
	}
}

func TestValidTelegramID(t *testing.T) {
	assert.True(t, ValidTelegramID("1"))
	assert.True(t, ValidTelegramID("0123456789"))
	assert.False(t, ValidTelegramID(""))
	assert.False(t, ValidTelegramID("12a"))
	assert.False(t, ValidTelegramID(" 12"))
	assert.False(t, ValidTelegramID("-12"))
	assert.False(t, ValidTelegramID("١٢")) // non-ASCII digits
}

func TestScoreQuiz_AllCombinations(t *testing.T) {
	const options = 4
	answers := make([]int, QuizQuestionCount)
	var walk func(i int)
	walk = func(i int) {
		if i == QuizQuestionCount {
			want := 0
			for j, a := range answers {
				if a == quizAnswerKey[j] {
					want++
				}
			}
			got := ScoreQuiz(answers)
			require.Equal(t, want, got, "answers %v", answers)
			assert.Equal(t, got >= 4, QuizPassed(got))
			return
		}
		for o := 0; o < options; o++ {
			answers[i] = o
			walk(i + 1)
		}
	}
	walk(0)
}

func TestScoreQuiz_ShortInput(t *testing.T) {
	assert.Equal(t, 0, ScoreQuiz(nil))
	assert.Equal(t, 1, ScoreQuiz([]int{quizAnswerKey[0]}))
	assert.False(t, QuizPassed(3))
	assert.True(t, QuizPassed(5))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("hunter22"))
	for _, pw := range []string{"", "short1", "allletters", "12345678"} {
		err := ValidatePassword(pw)
		require.Error(t, err, pw)
		assert.Equal(t, domainerrors.KindValidation, domainerrors.KindOf(err))
	}
}

func TestQuizQuestions_IsACopy(t *testing.T) {
	qs := QuizQuestions()
	require.Len(t, qs, QuizQuestionCount)
	qs[0].Prompt = "mutated"
	assert.NotEqual(t, "mutated", QuizQuestions()[0].Prompt)
}
