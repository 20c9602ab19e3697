package usecases

import "time"

// Timing
const (
	DefaultPollInterval   = 5 * time.Second
	DefaultAutoCloseDelay = 2 * time.Second
)

// Navigation targets
const (
	RouteLogin       = "/login"
	RouteVerifyEmail = "/verify-email"
	RouteDashboard   = "/dashboard"
)

// Task content shown on the instructions step.
const (
	RepostCampaignText = "I just joined @blipmoney, the fastest way to move money across borders with crypto. Claim your spot: https://blip.money"
	TwitterIntentURL   = "https://twitter.com/intent/tweet"
	TelegramChannelURL = "https://t.me/blipmoney"
	WhitepaperURL      = "https://blip.money/whitepaper"
)

// Quiz
const (
	QuizQuestionCount = 5
	QuizPassingScore  = 4
)

// quizAnswerKey holds the index of the correct option for each question.
var quizAnswerKey = [QuizQuestionCount]int{1, 0, 2, 1, 3}

// WalletLinkMessage is the text the wallet signs when binding to an account.
const WalletLinkMessage = "Link wallet %s to Blip account %s"
