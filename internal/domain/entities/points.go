package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// PointEventType enumerates ledger event kinds.
type PointEventType string

const (
	PointEventRegistration          PointEventType = "REGISTRATION"
	PointEventSocialFollow          PointEventType = "SOCIAL_FOLLOW"
	PointEventSocialRepost          PointEventType = "SOCIAL_REPOST"
	PointEventChannelJoin           PointEventType = "CHANNEL_JOIN"
	PointEventWhitepaperQuiz        PointEventType = "WHITEPAPER_QUIZ"
	PointEventCrossBorderSwap       PointEventType = "CROSS_BORDER_SWAP"
	PointEventReferralBonusEarned   PointEventType = "REFERRAL_BONUS_EARNED"
	PointEventReferralBonusReceived PointEventType = "REFERRAL_BONUS_RECEIVED"
)

// PointLog is an immutable ledger record created by the backend.
type PointLog struct {
	ID        string         `json:"id"`
	Points    int64          `json:"points"`
	EventType PointEventType `json:"event_type"`
	Label     string         `json:"label"`
	CreatedAt time.Time      `json:"created_at"`
}

// ReferralRewardStatus is the payout state of a referral reward.
type ReferralRewardStatus string

const (
	ReferralRewardPending  ReferralRewardStatus = "PENDING"
	ReferralRewardEarned   ReferralRewardStatus = "EARNED"
	ReferralRewardRejected ReferralRewardStatus = "REJECTED"
)

// ReferredUser is a read-only referral relationship row.
type ReferredUser struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	WalletAddress null.String          `json:"wallet_address"`
	JoinedAt      time.Time            `json:"joined_at"`
	PointsEarned  int64                `json:"points_earned"`
	RewardStatus  ReferralRewardStatus `json:"reward_status"`
	RewardAmount  int64                `json:"reward_amount"`
}

// PointLogEntry is a ledger record decorated for display.
type PointLogEntry struct {
	PointLog
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// PointsLedgerView is the points page: the displayed total and where it came
// from, plus the decorated history.
type PointsLedgerView struct {
	Total       int64           `json:"total"`
	FromHistory bool            `json:"from_history"`
	Entries     []PointLogEntry `json:"entries"`
	Message     string          `json:"message,omitempty"`
}

// ReferralSummary lists referred users with reward totals.
type ReferralSummary struct {
	Referrals     []ReferredUser `json:"referrals"`
	Count         int            `json:"count"`
	EarnedPoints  int64          `json:"earned_points"`
	PendingPoints int64          `json:"pending_points"`
}
