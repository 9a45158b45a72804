package service

import (
	"sort"
	"time"

	"live-session-backend/model"
)

// Aggregate 对当前问题和参与者答题状态做纯统计。
//
// The same shape is returned for the mid-question results API and for
// the final closing snapshot, so downstream consumers never branch on
// where the result came from. Callers must hold the session lock; the
// function itself reads only.
func Aggregate(question *model.Question, participants map[string]*model.Participant) *model.QuestionResult {
	options := make([]model.OptionResult, len(question.Options))
	for i, opt := range question.Options {
		options[i] = model.OptionResult{
			ID:    opt.ID,
			Text:  opt.Text,
			Votes: opt.Votes,
		}
	}

	respondents := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.HasAnswered {
			respondents = append(respondents, p.Name)
		}
	}
	// Map iteration order is random; keep the name list stable.
	sort.Strings(respondents)

	return &model.QuestionResult{
		QuestionID:     question.ID,
		QuestionText:   question.Text,
		Options:        options,
		TotalResponses: len(respondents),
		Respondents:    respondents,
	}
}

// snapshotAt 生成带关闭时间的最终快照
func snapshotAt(question *model.Question, participants map[string]*model.Participant, closedAt time.Time) model.QuestionResult {
	result := Aggregate(question, participants)
	result.ClosedAt = closedAt
	return *result
}
