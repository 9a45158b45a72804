package service

import (
	"log/slog"

	"live-session-backend/model"
	"live-session-backend/registry"
)

// Submission 处理参与者的答案提交。
type Submission struct {
	registry    *registry.Registry
	lifecycle   *Lifecycle
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewSubmission 创建答案提交处理器
func NewSubmission(reg *registry.Registry, lifecycle *Lifecycle, broadcaster Broadcaster, logger *slog.Logger) *Submission {
	return &Submission{
		registry:    reg,
		lifecycle:   lifecycle,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Submit 校验并记录一名参与者对当前问题的唯一一次作答。
//
// Validation order: active question exists, the supplied question id
// still matches it (answers for a superseded question are rejected,
// not miscounted), the participant belongs to the session, has not
// answered yet, and the option belongs to the question. On success the
// answered flag and the option counter move together under the session
// lock, so the vote-sum invariant holds at every observable instant.
//
// If this submission was the last outstanding one the question closes
// early; the returned snapshot is non-nil in that case.
func (s *Submission) Submit(sessionID, participantID, questionID, optionID string) (*model.QuestionResult, error) {
	session, err := s.registry.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Lock()
	question := session.ActiveQuestion
	if question == nil {
		session.Unlock()
		return nil, ErrNoActiveQuestion
	}
	if question.ID != questionID {
		session.Unlock()
		return nil, ErrQuestionMismatch
	}
	participant, ok := session.Participants[participantID]
	if !ok {
		session.Unlock()
		return nil, registry.ErrParticipantNotFound
	}
	if participant.HasAnswered {
		session.Unlock()
		return nil, ErrAlreadyAnswered
	}

	optionIndex := -1
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			optionIndex = i
			break
		}
	}
	if optionIndex == -1 {
		session.Unlock()
		return nil, ErrInvalidOption
	}

	participant.MarkAnswered(optionID)
	question.Options[optionIndex].Votes++

	answered := 0
	for _, p := range session.Participants {
		if p.HasAnswered {
			answered++
		}
	}
	participantCount := len(session.Participants)
	session.Unlock()

	s.logger.Debug("answer recorded",
		"session_id", sessionID,
		"question_id", questionID,
		"participant_id", participantID,
		"answered", answered,
		"participants", participantCount)

	s.broadcaster.BroadcastToSession(sessionID, &model.WebSocketMessage{
		Type:      model.MsgAnswerProgress,
		SessionID: sessionID,
		Payload: model.AnswerProgressEvent{
			QuestionID:       questionID,
			Answered:         answered,
			ParticipantCount: participantCount,
		},
	})

	// Early close: everyone currently in the session has answered.
	// The deadline timer may fire at the same moment; RequestClose
	// resolves that race, exactly one snapshot is produced.
	if answered >= participantCount {
		if result, closed := s.lifecycle.RequestClose(sessionID, questionID, ReasonAllAnswered); closed {
			return result, nil
		}
	}

	return nil, nil
}
