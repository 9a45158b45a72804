package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"live-session-backend/model"
	"live-session-backend/registry"
)

// CloseReason 问题关闭原因
type CloseReason string

const (
	ReasonDeadline    CloseReason = "deadline"     // 截止时间到达
	ReasonAllAnswered CloseReason = "all_answered" // 全员已作答
	ReasonManual      CloseReason = "manual"       // 主持人提前结束
)

// Broadcaster 向会话房间推送事件的传输层接口
type Broadcaster interface {
	// BroadcastToSession 向会话内所有连接广播消息
	BroadcastToSession(sessionID string, message *model.WebSocketMessage)
}

// Lifecycle 管理每个会话当前问题的打开/关闭状态机。
//
// Deadline timers are owned here, keyed by question id, never embedded
// in the Question record. A firing timer is just another serialized
// close request that re-checks question identity before acting, so a
// stale timer (question already closed, session already deleted) is a
// silent no-op.
type Lifecycle struct {
	registry    *registry.Registry
	broadcaster Broadcaster
	logger      *slog.Logger

	timersMu sync.Mutex
	timers   map[string]*time.Timer // questionID -> pending deadline timer
}

// NewLifecycle 创建问题生命周期控制器
func NewLifecycle(reg *registry.Registry, broadcaster Broadcaster, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		registry:    reg,
		broadcaster: broadcaster,
		logger:      logger,
		timers:      make(map[string]*time.Timer),
	}
}

// OpenQuestion 在会话上发起一个新问题并启动截止计时器。
// 会话已有进行中的问题时返回 ErrQuestionAlreadyActive。
func (c *Lifecycle) OpenQuestion(sessionID, text string, optionTexts []string, deadline time.Duration) (*model.Question, error) {
	session, err := c.registry.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	options := make([]model.Option, len(optionTexts))
	for i, optText := range optionTexts {
		options[i] = model.Option{
			ID:   uuid.NewString(),
			Text: optText,
		}
	}
	question := &model.Question{
		ID:        uuid.NewString(),
		Text:      text,
		Options:   options,
		StartedAt: time.Now(),
		Deadline:  deadline,
	}

	session.Lock()
	if session.ActiveQuestion != nil {
		session.Unlock()
		return nil, ErrQuestionAlreadyActive
	}

	// 新问题开始，重置所有参与者的答题状态
	for _, p := range session.Participants {
		p.ResetAnswer()
	}
	session.ActiveQuestion = question
	session.Status = model.SessionStatusActive

	// Arm the timer before releasing the lock so an immediate
	// all-answered close always finds a timer to cancel.
	c.armTimer(sessionID, question.ID, deadline)
	session.Unlock()

	c.logger.Info("question opened",
		"session_id", sessionID,
		"question_id", question.ID,
		"options", len(options),
		"deadline", deadline)

	c.broadcaster.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgQuestionOpened,
		SessionID: sessionID,
		Payload: model.QuestionOpenedEvent{
			QuestionID:      question.ID,
			Text:            question.Text,
			Options:         question.Options,
			DeadlineSeconds: int(deadline / time.Second),
			StartedAt:       question.StartedAt,
		},
	})

	return question, nil
}

// RequestClose 请求关闭指定问题。
//
// Idempotency guard: only the trigger that still observes the matching
// active question wins; every other trigger (late timer, duplicate
// all-answered check, racing manual end) finds a nil or different
// active question and exits without touching state. The winner cancels
// the pending timer, appends the final snapshot to history, clears the
// active question and broadcasts the result.
func (c *Lifecycle) RequestClose(sessionID, questionID string, reason CloseReason) (*model.QuestionResult, bool) {
	c.cancelTimer(questionID)

	session, err := c.registry.GetSession(sessionID)
	if err != nil {
		// Session deleted while the trigger was in flight.
		c.logger.Debug("stale close trigger for deleted session",
			"session_id", sessionID, "question_id", questionID, "reason", reason)
		return nil, false
	}

	session.Lock()
	question := session.ActiveQuestion
	if question == nil || question.ID != questionID {
		session.Unlock()
		c.logger.Debug("stale close trigger ignored",
			"session_id", sessionID, "question_id", questionID, "reason", reason)
		return nil, false
	}

	result := snapshotAt(question, session.Participants, time.Now())
	session.History = append(session.History, result)
	session.ActiveQuestion = nil
	session.Status = model.SessionStatusWaiting
	session.Unlock()

	c.logger.Info("question closed",
		"session_id", sessionID,
		"question_id", questionID,
		"reason", reason,
		"responses", result.TotalResponses)

	c.broadcaster.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgQuestionClosed,
		SessionID: sessionID,
		Payload: map[string]interface{}{
			"reason": reason,
			"result": result,
		},
	})

	return &result, true
}

// EndActiveQuestion 主持人提前结束当前问题
func (c *Lifecycle) EndActiveQuestion(sessionID string) (*model.QuestionResult, error) {
	session, err := c.registry.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	if session.ActiveQuestion == nil {
		session.Unlock()
		return nil, ErrNoActiveQuestion
	}
	questionID := session.ActiveQuestion.ID
	session.Unlock()

	result, closed := c.RequestClose(sessionID, questionID, ReasonManual)
	if !closed {
		// Lost the race against the deadline timer between the peek
		// and the close; the question is closed either way.
		return nil, ErrNoActiveQuestion
	}
	return result, nil
}

// DeleteSession 关闭并删除会话。
// 必须先同步取消未触发的截止计时器，再从注册表移除会话，避免
// 残留回调指向已删除的会话。
func (c *Lifecycle) DeleteSession(sessionID string) error {
	session, err := c.registry.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.Lock()
	if session.ActiveQuestion != nil {
		c.cancelTimer(session.ActiveQuestion.ID)
		session.ActiveQuestion = nil
	}
	session.Unlock()

	if err := c.registry.DeleteSession(sessionID); err != nil {
		return err
	}

	c.logger.Info("session deleted", "session_id", sessionID)

	c.broadcaster.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgSessionClosed,
		SessionID: sessionID,
		Payload:   map[string]interface{}{"session_id": sessionID},
	})

	return nil
}

// armTimer 启动截止计时器。调用方持有会话锁。
func (c *Lifecycle) armTimer(sessionID, questionID string, deadline time.Duration) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()

	c.timers[questionID] = time.AfterFunc(deadline, func() {
		c.RequestClose(sessionID, questionID, ReasonDeadline)
	})
}

// cancelTimer 停止并移除问题的截止计时器（若仍存在）
func (c *Lifecycle) cancelTimer(questionID string) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()

	if timer, ok := c.timers[questionID]; ok {
		timer.Stop()
		delete(c.timers, questionID)
	}
}
