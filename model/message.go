package model

import (
	"encoding/json"
	"time"
)

// 广播消息类型
const (
	MsgParticipantJoined = "PARTICIPANT_JOINED"
	MsgParticipantLeft   = "PARTICIPANT_LEFT"
	MsgQuestionOpened    = "QUESTION_OPENED"
	MsgAnswerProgress    = "ANSWER_PROGRESS"
	MsgQuestionClosed    = "QUESTION_CLOSED"
	MsgSessionClosed     = "SESSION_CLOSED"
)

// WebSocketMessage 定义WebSocket消息格式
type WebSocketMessage struct {
	Type      string      `json:"type"`      // 消息类型
	SessionID string      `json:"sessionId"` // 会话ID
	Payload   interface{} `json:"payload"`   // 消息内容
}

// ToJSON 将WebSocket消息转换为JSON字节数组
func (m *WebSocketMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParticipantEvent 参与者加入/离开事件内容
type ParticipantEvent struct {
	ParticipantID    string `json:"participant_id"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participant_count"`
}

// QuestionOpenedEvent 新问题广播内容
type QuestionOpenedEvent struct {
	QuestionID      string    `json:"question_id"`
	Text            string    `json:"text"`
	Options         []Option  `json:"options"`
	DeadlineSeconds int       `json:"deadline_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

// AnswerProgressEvent 答题进度广播内容
type AnswerProgressEvent struct {
	QuestionID       string `json:"question_id"`
	Answered         int    `json:"answered"`
	ParticipantCount int    `json:"participant_count"`
}
