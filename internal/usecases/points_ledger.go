package usecases

import (
	"context"

	"go.uber.org/zap"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/logger"
)

type eventStyle struct {
	icon  string
	color string
}

var defaultEventStyle = eventStyle{icon: "star", color: "gray"}

var eventStyles = map[entities.PointEventType]eventStyle{
	entities.PointEventRegistration:          {icon: "user-plus", color: "green"},
	entities.PointEventSocialFollow:          {icon: "user-check", color: "blue"},
	entities.PointEventSocialRepost:          {icon: "repeat", color: "sky"},
	entities.PointEventChannelJoin:           {icon: "send", color: "cyan"},
	entities.PointEventWhitepaperQuiz:        {icon: "book-open", color: "purple"},
	entities.PointEventCrossBorderSwap:       {icon: "arrow-left-right", color: "orange"},
	entities.PointEventReferralBonusEarned:   {icon: "gift", color: "pink"},
	entities.PointEventReferralBonusReceived: {icon: "gift", color: "rose"},
}

// EventStyle returns the icon and color for an event type. Unknown types get
// a neutral style.
func EventStyle(t entities.PointEventType) (icon, color string) {
	s, ok := eventStyles[t]
	if !ok {
		s = defaultEventStyle
	}
	return s.icon, s.color
}

// PointsLedger builds the points page from the backend history.
type PointsLedger struct {
	points  repositories.PointsRepository
	session *SessionStore
}

func NewPointsLedger(points repositories.PointsRepository, session *SessionStore) *PointsLedger {
	return &PointsLedger{points: points, session: session}
}

// Load fetches the history and sums it. The cached session total is shown
// only when the history is empty or could not be fetched; a fetch failure is
// reported in Message, not as an error.
func (l *PointsLedger) Load(ctx context.Context) entities.PointsLedgerView {
	view := entities.PointsLedgerView{Entries: []entities.PointLogEntry{}}

	history, err := l.points.History(ctx)
	if err != nil {
		logger.Warn(ctx, "Failed to load points history", zap.Error(err))
		view.Message = domainerrors.UserMessage(err)
	}

	var total int64
	for _, entry := range history {
		icon, color := EventStyle(entry.EventType)
		view.Entries = append(view.Entries, entities.PointLogEntry{PointLog: entry, Icon: icon, Color: color})
		total += entry.Points
	}

	if len(history) > 0 {
		view.Total = total
		view.FromHistory = true
		return view
	}
	if u := l.session.User(); u != nil {
		view.Total = u.TotalBlipPoints
	}
	return view
}

// Referrals lists referred users with earned and pending reward totals.
func (l *PointsLedger) Referrals(ctx context.Context) (entities.ReferralSummary, error) {
	rows, err := l.points.Referrals(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to load referrals", zap.Error(err))
		return entities.ReferralSummary{}, err
	}

	summary := entities.ReferralSummary{Referrals: rows, Count: len(rows)}
	if summary.Referrals == nil {
		summary.Referrals = []entities.ReferredUser{}
	}
	for _, r := range rows {
		switch r.RewardStatus {
		case entities.ReferralRewardEarned:
			summary.EarnedPoints += r.RewardAmount
		case entities.ReferralRewardPending:
			summary.PendingPoints += r.RewardAmount
		}
	}
	return summary, nil
}
