package entities

// TaskKind identifies a social/engagement task variant.
type TaskKind string

const (
	TaskRepost      TaskKind = "repost"
	TaskChannelJoin TaskKind = "channel-join"
	TaskQuiz        TaskKind = "quiz"
)

// Valid reports whether k is a known task kind.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskRepost, TaskChannelJoin, TaskQuiz:
		return true
	}
	return false
}

// TaskState is a step of the verification state machine.
type TaskState string

const (
	TaskStateInstructions  TaskState = "instructions"
	TaskStateAwaitingProof TaskState = "awaiting-proof"
	TaskStateVerifying     TaskState = "verifying"
	TaskStateSuccess       TaskState = "success"
	TaskStateError         TaskState = "error"
)

// taskRewards mirrors the backend's reward table for display before confirmation.
var taskRewards = map[TaskKind]map[UserRole]int64{
	TaskRepost:      {UserRoleUser: 100, UserRoleMerchant: 200},
	TaskChannelJoin: {UserRoleUser: 100, UserRoleMerchant: 200},
	TaskQuiz:        {UserRoleUser: 200, UserRoleMerchant: 400},
}

// RewardFor returns the points credited for kind when completed by role.
// Roles without a dedicated entry receive the standard user reward.
func RewardFor(kind TaskKind, role UserRole) int64 {
	byRole, ok := taskRewards[kind]
	if !ok {
		return 0
	}
	if v, ok := byRole[role]; ok {
		return v
	}
	return byRole[UserRoleUser]
}

// TaskProof carries the variant-specific proof material a flow collects.
type TaskProof struct {
	TweetURL       string `json:"tweet_url,omitempty"`
	TelegramUserID string `json:"telegram_user_id,omitempty"`
	QuizAnswers    []int  `json:"quiz_answers,omitempty"`
}

// VerificationResult is the backend's adjudication of a submitted proof.
type VerificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Points  int64  `json:"points,omitempty"`
}

// TaskFlowView is the externally visible state of one flow instance.
type TaskFlowView struct {
	ID           string         `json:"id"`
	Kind         TaskKind       `json:"kind"`
	State        TaskState      `json:"state"`
	Reward       int64          `json:"reward"`
	ActionURL    string         `json:"action_url,omitempty"`
	Instructions string         `json:"instructions"`
	Message      string         `json:"message,omitempty"`
	Score        *int           `json:"score,omitempty"`
	Questions    []QuizQuestion `json:"questions,omitempty"`
	Closed       bool           `json:"closed"`
}

// QuizQuestion is one single-choice whitepaper question.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// RetweetVerification is the body of the repost verification call.
type RetweetVerification struct {
	TweetURL       string `json:"tweet_url"`
	TweetID        string `json:"tweet_id"`
	IdempotencyKey string `json:"-"`
}

// TelegramVerification is the body of the channel-join verification call.
type TelegramVerification struct {
	TelegramUserID string `json:"telegram_user_id"`
	IdempotencyKey string `json:"-"`
}

// QuizSubmission carries the claimed score together with the raw answers so
// the backend can re-score them.
type QuizSubmission struct {
	Score          int    `json:"score"`
	Answers        []int  `json:"answers"`
	IdempotencyKey string `json:"-"`
}
