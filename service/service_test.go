package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"live-session-backend/model"
	"live-session-backend/registry"
)

// recordingBroadcaster 记录被广播的消息，供断言使用
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []*model.WebSocketMessage
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID string, message *model.WebSocketMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

func (b *recordingBroadcaster) byType(msgType string) []*model.WebSocketMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*model.WebSocketMessage
	for _, m := range b.messages {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type testEnv struct {
	registry    *registry.Registry
	lifecycle   *Lifecycle
	submission  *Submission
	broadcaster *recordingBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New(50)
	broadcaster := &recordingBroadcaster{}
	lifecycle := NewLifecycle(reg, broadcaster, logger)
	submission := NewSubmission(reg, lifecycle, broadcaster, logger)
	return &testEnv{
		registry:    reg,
		lifecycle:   lifecycle,
		submission:  submission,
		broadcaster: broadcaster,
	}
}

// newSessionWithParticipants 创建带参与者的测试会话
func (env *testEnv) newSessionWithParticipants(t *testing.T, sessionID string, names ...string) *model.Session {
	t.Helper()
	session, err := env.registry.CreateSession(sessionID, "mod-"+sessionID)
	require.NoError(t, err)
	for i, name := range names {
		_, err := env.registry.AddParticipant(sessionID, participantID(i), name)
		require.NoError(t, err)
	}
	return session
}

func participantID(i int) string {
	return string(rune('a'+i)) + "-participant"
}

// historyLength 读取会话历史长度
func historyLength(session *model.Session) int {
	session.Lock()
	defer session.Unlock()
	return len(session.History)
}

// checkVoteSumInvariant 校验选项计票总和等于已作答人数
func checkVoteSumInvariant(t *testing.T, session *model.Session) {
	t.Helper()
	session.Lock()
	defer session.Unlock()
	require.NotNil(t, session.ActiveQuestion)

	votes := 0
	for _, opt := range session.ActiveQuestion.Options {
		votes += opt.Votes
	}
	answered := 0
	for _, p := range session.Participants {
		if p.HasAnswered {
			answered++
		}
	}
	require.Equal(t, answered, votes, "sum of option votes must equal answered participants")
}
