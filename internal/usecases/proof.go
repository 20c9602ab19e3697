package usecases

import (
	"regexp"
	"strings"
	"unicode"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
)

var (
	tweetURLPattern = regexp.MustCompile(
		`^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/` +
			`(?:[A-Za-z0-9_]{1,15}/status(?:es)?|i/web/status|i/status)/` +
			`(\d+)/?(?:[?#].*)?$`)
	telegramIDPattern = regexp.MustCompile(`^\d+$`)
)

// Validation copy
const (
	MsgInvalidTweetURL   = "Invalid tweet URL. Paste the link to your post, e.g. https://x.com/you/status/123456789."
	MsgInvalidTelegramID = "Telegram user ID must contain digits only."
	MsgQuizIncomplete    = "Please answer all questions."
	MsgQuizFailed        = "You need at least 4 correct answers to pass. Review the whitepaper and try again."
	MsgPasswordPolicy    = "Password must be at least 8 characters and include a letter and a number."
)

// ExtractTweetID returns the numeric status id of a post URL.
func ExtractTweetID(raw string) (string, bool) {
	m := tweetURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ValidTelegramID reports whether id is a non-empty string of ASCII digits.
func ValidTelegramID(id string) bool {
	return telegramIDPattern.MatchString(id)
}

// ScoreQuiz counts answers that match the key position by position.
func ScoreQuiz(answers []int) int {
	score := 0
	for i, a := range answers {
		if i < len(quizAnswerKey) && a == quizAnswerKey[i] {
			score++
		}
	}
	return score
}

// QuizPassed reports whether score permits submission.
func QuizPassed(score int) bool {
	return score >= QuizPassingScore
}

// ValidatePassword applies the client-side password policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return domainerrors.Validation(MsgPasswordPolicy)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return domainerrors.Validation(MsgPasswordPolicy)
	}
	return nil
}

var quizQuestions = []entities.QuizQuestion{
	{
		Prompt:  "What does Blip use to settle cross-border payments?",
		Options: []string{"Bank wires", "Stablecoins on public chains", "Prepaid cards", "Cash couriers"},
	},
	{
		Prompt:  "Who holds the keys to a Blip wallet?",
		Options: []string{"The user", "Blip", "The merchant", "A custodian bank"},
	},
	{
		Prompt:  "How are Blip points earned?",
		Options: []string{"Buying them", "Mining", "Completing tasks and referrals", "Staking"},
	},
	{
		Prompt:  "Which role receives a larger reward for the same task?",
		Options: []string{"Standard user", "Merchant", "Admin", "Guest"},
	},
	{
		Prompt:  "Where is the points ledger kept?",
		Options: []string{"In the browser", "In the wallet", "On a spreadsheet", "On the Blip backend"},
	},
}

// QuizQuestions returns a copy of the fixed question set.
func QuizQuestions() []entities.QuizQuestion {
	out := make([]entities.QuizQuestion, len(quizQuestions))
	copy(out, quizQuestions)
	return out
}
