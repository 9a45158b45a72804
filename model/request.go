package model

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	ModeratorID string `json:"moderator_id" binding:"required"`
}

// JoinSessionRequest 加入会话请求
type JoinSessionRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Name          string `json:"name" binding:"required,min=1,max=64"`
}

// LeaveSessionRequest 离开会话请求
type LeaveSessionRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

// OpenQuestionRequest 发起问题请求
type OpenQuestionRequest struct {
	Text            string   `json:"text" binding:"required,min=1,max=500"`
	Options         []string `json:"options" binding:"required,min=2,max=10,unique,dive,required,max=200"`
	DeadlineSeconds int      `json:"deadline_seconds" binding:"required,min=5,max=600"`
}

// SubmitAnswerRequest 提交答案请求
type SubmitAnswerRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	QuestionID    string `json:"question_id" binding:"required"`
	OptionID      string `json:"option_id" binding:"required"`
}
