package backend

import (
	"context"
	"net/http"

	"blip.dashboard/internal/domain/entities"
)

func (c *Client) VerifyRetweet(ctx context.Context, req entities.RetweetVerification) (*entities.VerificationResult, error) {
	return c.verify(ctx, "/twitter/verify-retweet", req, req.IdempotencyKey)
}

func (c *Client) VerifyTelegram(ctx context.Context, req entities.TelegramVerification) (*entities.VerificationResult, error) {
	return c.verify(ctx, "/telegram/verify", req, req.IdempotencyKey)
}

func (c *Client) SubmitQuiz(ctx context.Context, req entities.QuizSubmission) (*entities.VerificationResult, error) {
	return c.verify(ctx, "/quiz/submit", req, req.IdempotencyKey)
}

func (c *Client) verify(ctx context.Context, path string, body any, key string) (*entities.VerificationResult, error) {
	var out entities.VerificationResult
	if err := c.call(ctx, http.MethodPost, path, body, key, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type historyEnvelope struct {
	History []entities.PointLog `json:"history"`
}

type referralsEnvelope struct {
	Referrals []entities.ReferredUser `json:"referrals"`
}

func (c *Client) History(ctx context.Context) ([]entities.PointLog, error) {
	var out historyEnvelope
	if err := c.call(ctx, http.MethodGet, "/points/history", nil, "", &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

func (c *Client) Referrals(ctx context.Context) ([]entities.ReferredUser, error) {
	var out referralsEnvelope
	if err := c.call(ctx, http.MethodGet, "/referrals", nil, "", &out); err != nil {
		return nil, err
	}
	return out.Referrals, nil
}
