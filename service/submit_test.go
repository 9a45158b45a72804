package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-session-backend/model"
	"live-session-backend/registry"
)

func TestSubmit_ClosesEarlyWhenAllAnswered(t *testing.T) {
	env := newTestEnv(t)
	session := env.newSessionWithParticipants(t, "s1", "Alice", "Bob")

	// Deadline far in the future; the close below must come from the
	// all-answered path, not the timer.
	question, err := env.lifecycle.OpenQuestion("s1", "A or B?", []string{"A", "B"}, 10*time.Second)
	require.NoError(t, err)

	result, err := env.submission.Submit("s1", participantID(0), question.ID, question.Options[0].ID)
	require.NoError(t, err)
	assert.Nil(t, result, "question must stay open while answers are outstanding")
	checkVoteSumInvariant(t, session)

	result, err = env.submission.Submit("s1", participantID(1), question.ID, question.Options[1].ID)
	require.NoError(t, err)
	require.NotNil(t, result, "last answer must close the question")

	assert.Equal(t, 2, result.TotalResponses)
	assert.Equal(t, 1, result.Options[0].Votes)
	assert.Equal(t, 1, result.Options[1].Votes)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Respondents)

	session.Lock()
	assert.Nil(t, session.ActiveQuestion)
	assert.Equal(t, model.SessionStatusWaiting, session.Status)
	session.Unlock()
	assert.Equal(t, 1, historyLength(session))
}

func TestSubmit_AlreadyAnsweredIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	session := env.newSessionWithParticipants(t, "s1", "Alice", "Bob")

	question, err := env.lifecycle.OpenQuestion("s1", "Q?", []string{"A", "B"}, time.Minute)
	require.NoError(t, err)

	_, err = env.submission.Submit("s1", participantID(0), question.ID, question.Options[0].ID)
	require.NoError(t, err)

	// Same submission again, and a different option from the same
	// participant: both rejected, counts unchanged.
	_, err = env.submission.Submit("s1", participantID(0), question.ID, question.Options[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	_, err = env.submission.Submit("s1", participantID(0), question.ID, question.Options[1].ID)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	session.Lock()
	assert.Equal(t, 1, session.ActiveQuestion.Options[0].Votes)
	assert.Equal(t, 0, session.ActiveQuestion.Options[1].Votes)
	session.Unlock()
	checkVoteSumInvariant(t, session)
}

func TestSubmit_InvalidOptionThenValid(t *testing.T) {
	env := newTestEnv(t)
	session := env.newSessionWithParticipants(t, "s1", "Alice", "Bob")

	question, err := env.lifecycle.OpenQuestion("s1", "Q?", []string{"A", "B"}, time.Minute)
	require.NoError(t, err)

	_, err = env.submission.Submit("s1", participantID(0), question.ID, "not-an-option")
	assert.ErrorIs(t, err, ErrInvalidOption)

	// No mutation happened; the same participant can still answer.
	session.Lock()
	assert.False(t, session.Participants[participantID(0)].HasAnswered)
	session.Unlock()
	checkVoteSumInvariant(t, session)

	_, err = env.submission.Submit("s1", participantID(0), question.ID, question.Options[0].ID)
	require.NoError(t, err)
	checkVoteSumInvariant(t, session)
}

func TestSubmit_ValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	env.newSessionWithParticipants(t, "s1", "Alice", "Bob")

	// No active question yet.
	_, err := env.submission.Submit("s1", participantID(0), "q-x", "o-x")
	assert.ErrorIs(t, err, ErrNoActiveQuestion)

	question, err := env.lifecycle.OpenQuestion("s1", "Q?", []string{"A", "B"}, time.Minute)
	require.NoError(t, err)

	// Answer addressed to a superseded question id.
	_, err = env.submission.Submit("s1", participantID(0), "stale-question", question.Options[0].ID)
	assert.ErrorIs(t, err, ErrQuestionMismatch)

	// Unknown participant.
	_, err = env.submission.Submit("s1", "ghost", question.ID, question.Options[0].ID)
	assert.ErrorIs(t, err, registry.ErrParticipantNotFound)

	// Unknown session.
	_, err = env.submission.Submit("missing", participantID(0), question.ID, question.Options[0].ID)
	assert.ErrorIs(t, err, registry.ErrSessionNotFound)
}

func TestSubmit_VoteSumInvariantAfterEverySubmission(t *testing.T) {
	env := newTestEnv(t)
	session := env.newSessionWithParticipants(t, "s1", "Alice", "Bob", "Carol", "Dave")

	question, err := env.lifecycle.OpenQuestion("s1", "Q?", []string{"A", "B", "C"}, time.Minute)
	require.NoError(t, err)

	picks := []int{0, 2, 0, 1}
	for i, pick := range picks {
		result, err := env.submission.Submit("s1", participantID(i), question.ID, question.Options[pick].ID)
		require.NoError(t, err)
		if i < len(picks)-1 {
			require.Nil(t, result)
			checkVoteSumInvariant(t, session)
		} else {
			// Final submission closes the question; check the snapshot.
			require.NotNil(t, result)
			assert.Equal(t, 4, result.TotalResponses)
			assert.Equal(t, 2, result.Options[0].Votes)
			assert.Equal(t, 1, result.Options[1].Votes)
			assert.Equal(t, 1, result.Options[2].Votes)
		}
	}
}

func TestSubmit_BroadcastsProgress(t *testing.T) {
	env := newTestEnv(t)
	env.newSessionWithParticipants(t, "s1", "Alice", "Bob")

	question, err := env.lifecycle.OpenQuestion("s1", "Q?", []string{"A", "B"}, time.Minute)
	require.NoError(t, err)

	_, err = env.submission.Submit("s1", participantID(0), question.ID, question.Options[0].ID)
	require.NoError(t, err)

	progress := env.broadcaster.byType(model.MsgAnswerProgress)
	require.Len(t, progress, 1)
	event, ok := progress[0].Payload.(model.AnswerProgressEvent)
	require.True(t, ok)
	assert.Equal(t, 1, event.Answered)
	assert.Equal(t, 2, event.ParticipantCount)
}
