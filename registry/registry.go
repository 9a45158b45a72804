package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"live-session-backend/model"
)

var (
	// 业务错误定义
	ErrAlreadyModerating   = errors.New("moderator already owns a session")
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyJoined       = errors.New("participant already joined a session")
	ErrSessionFull         = errors.New("session is full")
	ErrDuplicateName       = errors.New("display name already taken")
)

// Registry 管理所有活跃会话及其身份映射。
//
// The registry's own lock guards only the top-level maps (insert,
// delete, lookup). Mutation of a session's inner state happens under
// that session's lock, never under the registry lock, so independent
// sessions proceed fully in parallel.
type Registry struct {
	mu sync.RWMutex

	sessions     map[string]*model.Session
	moderators   map[string]string // moderatorID -> sessionID
	participants map[string]string // participantID -> sessionID

	maxParticipants int
}

// New 创建会话注册表
func New(maxParticipants int) *Registry {
	return &Registry{
		sessions:        make(map[string]*model.Session),
		moderators:      make(map[string]string),
		participants:    make(map[string]string),
		maxParticipants: maxParticipants,
	}
}

// CreateSession 为主持人创建新会话。一个主持人同时最多拥有一个会话。
func (r *Registry) CreateSession(sessionID, moderatorID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.moderators[moderatorID]; ok {
		return nil, ErrAlreadyModerating
	}

	session := &model.Session{
		ID:           sessionID,
		ModeratorID:  moderatorID,
		Participants: make(map[string]*model.Participant),
		Status:       model.SessionStatusWaiting,
		CreatedAt:    time.Now(),
	}
	r.sessions[sessionID] = session
	r.moderators[moderatorID] = sessionID

	return session, nil
}

// GetSession 按会话ID查找
func (r *Registry) GetSession(sessionID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetSessionByModerator 按主持人ID查找会话
func (r *Registry) GetSessionByModerator(moderatorID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.moderators[moderatorID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r.sessions[sessionID], nil
}

// GetSessionByParticipant 按参与者ID查找会话
func (r *Registry) GetSessionByParticipant(participantID string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.participants[participantID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r.sessions[sessionID], nil
}

// AddParticipant 将参与者加入会话。
// 准入检查：会话存在、未满、参与者未加入其他会话、显示名在会话内
// 唯一（不区分大小写）。
func (r *Registry) AddParticipant(sessionID, participantID, name string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if _, ok := r.participants[participantID]; ok {
		return nil, ErrAlreadyJoined
	}

	session.Lock()
	defer session.Unlock()

	if len(session.Participants) >= r.maxParticipants {
		return nil, ErrSessionFull
	}
	lowered := strings.ToLower(name)
	for _, p := range session.Participants {
		if strings.ToLower(p.Name) == lowered {
			return nil, ErrDuplicateName
		}
	}

	participant := &model.Participant{
		ID:       participantID,
		Name:     name,
		JoinedAt: time.Now(),
	}
	session.Participants[participantID] = participant
	r.participants[participantID] = sessionID

	return participant, nil
}

// RemoveParticipant 将参与者移出会话
func (r *Registry) RemoveParticipant(sessionID, participantID string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()

	participant, ok := session.Participants[participantID]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	delete(session.Participants, participantID)
	delete(r.participants, participantID)

	return participant, nil
}

// DeleteSession 从注册表删除会话并清理身份映射。
// Callers must cancel any pending deadline timer before calling this
// (the lifecycle controller owns the timers).
func (r *Registry) DeleteSession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	session.Lock()
	for participantID := range session.Participants {
		delete(r.participants, participantID)
	}
	session.Status = model.SessionStatusEnded
	session.Unlock()

	delete(r.moderators, session.ModeratorID)
	delete(r.sessions, sessionID)

	return nil
}

// SessionCount 当前活跃会话数
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ParticipantCount 所有会话的参与者总数
func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}
