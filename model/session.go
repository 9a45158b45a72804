package model

import (
	"sync"
	"time"
)

// SessionStatus 会话状态
type SessionStatus string

const (
	SessionStatusWaiting SessionStatus = "waiting" // 等待提问
	SessionStatusActive  SessionStatus = "active"  // 有进行中的问题
	SessionStatusEnded   SessionStatus = "ended"   // 已结束
)

// Session is one moderator-led Q&A instance with its participants and
// question history. All mutable state below the registry maps is
// guarded by the session's own mutex: every mutating operation locks
// the session for its whole duration, so there is a single logical
// writer per session.
type Session struct {
	ID           string
	ModeratorID  string
	Participants map[string]*Participant
	// ActiveQuestion is nil exactly when Status != active. Clearing it
	// is the close linearization point: the first close trigger that
	// still observes a matching question wins, later triggers no-op.
	ActiveQuestion *Question
	History        []QuestionResult
	Status         SessionStatus
	CreatedAt      time.Time

	mu sync.Mutex
}

// Lock acquires the session's single-writer lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's single-writer lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Participant 会话中的一名参与者
type Participant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	JoinedAt       time.Time `json:"joined_at"`
	HasAnswered    bool      `json:"has_answered"`
	ChosenOptionID string    `json:"chosen_option_id,omitempty"`
}

// ResetAnswer clears the participant's answer state when a new
// question opens.
func (p *Participant) ResetAnswer() {
	p.HasAnswered = false
	p.ChosenOptionID = ""
}

// MarkAnswered records the participant's single answer. HasAnswered is
// a one-way flag until the next ResetAnswer.
func (p *Participant) MarkAnswered(optionID string) {
	p.HasAnswered = true
	p.ChosenOptionID = optionID
}

// Question 一轮提问
type Question struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Options   []Option      `json:"options"`
	StartedAt time.Time     `json:"started_at"`
	Deadline  time.Duration `json:"-"`
}

// Option 问题的一个选项
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// QuestionResult 问题关闭时生成的不可变结果快照
type QuestionResult struct {
	QuestionID     string         `json:"question_id"`
	QuestionText   string         `json:"question_text"`
	Options        []OptionResult `json:"options"`
	TotalResponses int            `json:"total_responses"`
	Respondents    []string       `json:"respondents"`
	ClosedAt       time.Time      `json:"closed_at"`
}

// OptionResult 单个选项的统计结果
type OptionResult struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}
