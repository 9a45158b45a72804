package service

import "errors"

var (
	// 状态冲突类业务错误，调用方可见，不会触发任何状态变更
	ErrQuestionAlreadyActive = errors.New("session already has an active question")
	ErrNoActiveQuestion      = errors.New("session has no active question")
	ErrQuestionMismatch      = errors.New("question is no longer active")
	ErrAlreadyAnswered       = errors.New("participant already answered")
	ErrInvalidOption         = errors.New("option does not belong to the active question")
)
