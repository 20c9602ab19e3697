package usecases

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
)

type repostTask struct{}

func (repostTask) kind() entities.TaskKind { return entities.TaskRepost }

func (repostTask) instructions() string {
	return "Post the campaign text on X, then paste the link to your post."
}

func (repostTask) actionURL() string {
	return TwitterIntentURL + "?text=" + url.QueryEscape(RepostCampaignText)
}

func (repostTask) prepare(proof entities.TaskProof) (*submission, error) {
	raw := strings.TrimSpace(proof.TweetURL)
	id, ok := ExtractTweetID(raw)
	if !ok {
		return nil, domainerrors.Validation(MsgInvalidTweetURL)
	}
	return &submission{
		fingerprint: "tweet:" + id,
		send: func(ctx context.Context, v repositories.TaskVerificationRepository, key string) (*entities.VerificationResult, error) {
			return v.VerifyRetweet(ctx, entities.RetweetVerification{TweetURL: raw, TweetID: id, IdempotencyKey: key})
		},
	}, nil
}

type channelJoinTask struct{}

func (channelJoinTask) kind() entities.TaskKind { return entities.TaskChannelJoin }

func (channelJoinTask) instructions() string {
	return "Join the Blip Telegram channel, then enter your numeric Telegram user ID."
}

func (channelJoinTask) actionURL() string { return TelegramChannelURL }

func (channelJoinTask) prepare(proof entities.TaskProof) (*submission, error) {
	id := proof.TelegramUserID
	if !ValidTelegramID(id) {
		return nil, domainerrors.Validation(MsgInvalidTelegramID)
	}
	return &submission{
		fingerprint: "telegram:" + id,
		send: func(ctx context.Context, v repositories.TaskVerificationRepository, key string) (*entities.VerificationResult, error) {
			return v.VerifyTelegram(ctx, entities.TelegramVerification{TelegramUserID: id, IdempotencyKey: key})
		},
	}, nil
}

type quizTask struct{}

func (quizTask) kind() entities.TaskKind { return entities.TaskQuiz }

func (quizTask) instructions() string {
	return "Read the Blip whitepaper, then answer five questions. You need 4 correct answers to pass."
}

func (quizTask) actionURL() string { return WhitepaperURL }

// prepare scores the answers locally. A failing score is returned with the
// error so the UI can show it.
func (quizTask) prepare(proof entities.TaskProof) (*submission, error) {
	if len(proof.QuizAnswers) != QuizQuestionCount {
		return nil, domainerrors.Validation(MsgQuizIncomplete)
	}
	answers := make([]int, len(proof.QuizAnswers))
	copy(answers, proof.QuizAnswers)

	score := ScoreQuiz(answers)
	if !QuizPassed(score) {
		return &submission{score: &score}, domainerrors.Validation(MsgQuizFailed)
	}

	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = strconv.Itoa(a)
	}
	return &submission{
		fingerprint: "quiz:" + strings.Join(parts, ","),
		score:       &score,
		send: func(ctx context.Context, v repositories.TaskVerificationRepository, key string) (*entities.VerificationResult, error) {
			return v.SubmitQuiz(ctx, entities.QuizSubmission{Score: score, Answers: answers, IdempotencyKey: key})
		},
	}, nil
}

func variantFor(kind entities.TaskKind) (taskVariant, bool) {
	switch kind {
	case entities.TaskRepost:
		return repostTask{}, true
	case entities.TaskChannelJoin:
		return channelJoinTask{}, true
	case entities.TaskQuiz:
		return quizTask{}, true
	}
	return nil, false
}
