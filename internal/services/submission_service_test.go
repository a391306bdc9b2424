package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/models"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
	"github.com/SAP-F-2025/submission-service/internal/repositories/memory"
	"github.com/SAP-F-2025/submission-service/internal/validator"
)

const (
	courseID = uint(1)
	learner  = "learner-1"
	other    = "learner-2"
	mentor   = "mentor-1"

	quizPageID     = uint(10)
	practicePageID = uint(20)
	lessonPageID   = uint(30)
	scorePageID    = uint(40)
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func pts(v float64) *float64 { return &v }

func section(t *testing.T, id string, quizType models.QuizType, points *float64, content interface{}) models.Section {
	t.Helper()
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	return models.Section{ID: id, Type: models.SectionQuiz, QuizType: quizType, Points: points, Content: raw}
}

type fixture struct {
	repo      *memory.Repository
	publisher *events.MockEventPublisher
	svc       *submissionService
	release   ReleaseCoordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepository()

	quizSections := []models.Section{
		{ID: "intro", Type: models.SectionText},
		section(t, "q1", models.QuizMCQ, pts(10), models.MCQContent{CorrectAnswers: []string{"a", "b"}}),
		section(t, "q2", models.QuizSequence, pts(10), models.SequenceContent{CorrectOrder: []string{"i1", "i2", "i3", "i4"}}),
		section(t, "q3", models.QuizFillBlank, nil, models.FillBlankContent{Blanks: []models.Blank{
			{ID: "b1", AcceptedAnswers: []string{"alpha"}},
			{ID: "b2", AcceptedAnswers: []string{"beta"}},
			{ID: "b3", AcceptedAnswers: []string{"gamma"}},
		}}),
	}
	maxAttempts := 2

	repo.PutPage(&models.AssessmentPage{
		ID: quizPageID, CourseID: courseID, Title: "Quiz", Kind: models.PageQuiz,
		Sections: quizSections,
		Settings: models.AssessmentSettings{MaxAttempts: &maxAttempts},
	})
	repo.PutPage(&models.AssessmentPage{
		ID: practicePageID, CourseID: courseID, Title: "Practice", Kind: models.PagePractice,
		Sections: []models.Section{
			section(t, "p1", models.QuizTrueFalse, pts(5), models.TrueFalseContent{CorrectAnswer: true}),
		},
	})
	repo.PutPage(&models.AssessmentPage{ID: lessonPageID, CourseID: courseID, Title: "Lesson", Kind: models.PageLesson})
	repo.PutPage(&models.AssessmentPage{
		ID: scorePageID, CourseID: courseID, Title: "Seven points", Kind: models.PageQuiz,
		Sections: []models.Section{
			section(t, "s1", models.QuizMCQ, pts(7), models.MCQContent{CorrectAnswers: []string{"x"}}),
			section(t, "s2", models.QuizTrueFalse, pts(3), models.TrueFalseContent{CorrectAnswer: true}),
		},
	})

	repo.AddMember(courseID, learner, models.MemberLearner)
	repo.AddMember(courseID, other, models.MemberLearner)
	repo.AddMember(courseID, mentor, models.MemberMentor)

	publisher := events.NewMockEventPublisher(logger)
	svc := newSubmissionService(repo, publisher, logger, validator.New())
	svc.now = func() time.Time { return fixedNow }

	rc := NewReleaseCoordinator(repo, publisher, logger).(*releaseCoordinator)
	rc.now = func() time.Time { return fixedNow }

	return &fixture{repo: repo, publisher: publisher, svc: svc, release: rc}
}

func (f *fixture) start(t *testing.T, pageID uint, userID string) *models.SubmissionResponse {
	t.Helper()
	resp, err := f.svc.Start(context.Background(), &models.StartSubmissionRequest{PageID: pageID, CourseID: courseID}, userID)
	require.NoError(t, err)
	return resp
}

func (f *fixture) submit(t *testing.T, id uint, userID string, answers ...models.AnswerInput) *models.SubmissionResponse {
	t.Helper()
	resp, err := f.svc.Submit(context.Background(), id, &models.SubmitRequest{Answers: answers}, userID)
	require.NoError(t, err)
	return resp
}

// submitScorePage leaves a submitted attempt with auto score 7 of 10
func (f *fixture) submitScorePage(t *testing.T) uint {
	t.Helper()
	sub := f.start(t, scorePageID, learner)
	f.submit(t, sub.ID, learner,
		models.AnswerInput{SectionID: "s1", Answer: models.StringsValue("x")},
		models.AnswerInput{SectionID: "s2", Answer: models.BoolValue(false)},
	)
	return sub.ID
}

func (f *fixture) stored(t *testing.T, id uint) *models.Submission {
	t.Helper()
	sub, err := f.repo.Submission().GetByID(context.Background(), id)
	require.NoError(t, err)
	return sub
}

// ===== START =====

func TestStart_CreatesFirstAttempt(t *testing.T) {
	f := newFixture(t)

	resp := f.start(t, quizPageID, learner)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, 1, resp.AttemptNumber)
	assert.Equal(t, models.SubmissionInProgress, resp.Status)
	assert.Empty(t, resp.Answers)
	assert.Equal(t, fixedNow, resp.StartedAt)
	assert.Equal(t, []events.EventType{events.SubmissionStarted}, f.publisher.EventTypes())

	stored := f.stored(t, resp.ID)
	assert.Zero(t, stored.AutoScore)
	assert.Zero(t, stored.MaxScore)
}

func TestStart_IdempotentWhileInProgress(t *testing.T) {
	f := newFixture(t)

	first := f.start(t, quizPageID, learner)
	second := f.start(t, quizPageID, learner)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.AttemptNumber)
	assert.Len(t, f.publisher.GetPublishedEvents(), 1)
}

func TestStart_AttemptNumbersAreGapless(t *testing.T) {
	f := newFixture(t)

	var numbers []int
	for i := 0; i < 3; i++ {
		sub := f.start(t, practicePageID, learner)
		numbers = append(numbers, sub.AttemptNumber)
		f.submit(t, sub.ID, learner)
	}

	assert.Equal(t, []int{1, 2, 3}, numbers)
}

func TestStart_MaxAttemptsReached(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		sub := f.start(t, quizPageID, learner)
		f.submit(t, sub.ID, learner)
	}

	_, err := f.svc.Start(context.Background(), &models.StartSubmissionRequest{PageID: quizPageID, CourseID: courseID}, learner)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.ErrorIs(t, err, ErrMaxAttemptsReached)
	assert.Equal(t, "maximum attempts reached", err.Error())

	// another learner is unaffected
	assert.Equal(t, 1, f.start(t, quizPageID, other).AttemptNumber)
}

func TestStart_Rejections(t *testing.T) {
	f := newFixture(t)
	f.repo.PutPage(&models.AssessmentPage{ID: 99, CourseID: 2, Kind: models.PageQuiz})

	tests := []struct {
		name   string
		req    *models.StartSubmissionRequest
		userID string
		kind   error
	}{
		{"lesson page", &models.StartSubmissionRequest{PageID: lessonPageID, CourseID: courseID}, learner, ErrLessonNotSubmittable},
		{"unknown page", &models.StartSubmissionRequest{PageID: 404, CourseID: courseID}, learner, ErrNotFound},
		{"page of another course", &models.StartSubmissionRequest{PageID: 99, CourseID: courseID}, learner, ErrNotFound},
		{"not enrolled", &models.StartSubmissionRequest{PageID: quizPageID, CourseID: courseID}, "stranger", ErrForbidden},
		{"missing page id", &models.StartSubmissionRequest{CourseID: courseID}, learner, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Start(context.Background(), tt.req, tt.userID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestStart_ConcurrentCallsShareOneAttempt(t *testing.T) {
	f := newFixture(t)

	const callers = 16
	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := f.svc.Start(context.Background(), &models.StartSubmissionRequest{PageID: quizPageID, CourseID: courseID}, learner)
			errs[i] = err
			if resp != nil {
				ids[i] = resp.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	subs, err := f.repo.Submission().ListByPageAndUser(context.Background(), quizPageID, learner)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

// ===== SAVE =====

func TestSaveAnswers_ReplacesDraft(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	ctx := context.Background()

	require.NoError(t, f.svc.SaveAnswers(ctx, sub.ID, &models.SaveAnswersRequest{Answers: []models.AnswerInput{
		{SectionID: "q1", Answer: models.StringsValue("a")},
		{SectionID: "q2", Answer: models.StringsValue("i1")},
	}}, learner))
	require.NoError(t, f.svc.SaveAnswers(ctx, sub.ID, &models.SaveAnswersRequest{Answers: []models.AnswerInput{
		{SectionID: "q1", Answer: models.StringsValue("a", "b")},
	}}, learner))

	stored := f.stored(t, sub.ID)
	assert.Equal(t, models.SubmissionInProgress, stored.Status)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "q1", stored.Answers[0].SectionID)
	assert.Nil(t, stored.Answers[0].AutoScore)
	assert.Zero(t, stored.AutoScore)
}

func TestSaveAnswers_Rejections(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	ctx := context.Background()
	req := &models.SaveAnswersRequest{Answers: []models.AnswerInput{{SectionID: "q1"}}}

	err := f.svc.SaveAnswers(ctx, sub.ID, req, other)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.SaveAnswers(ctx, 999, req, learner)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &models.SaveAnswersRequest{Answers: []models.AnswerInput{{SectionID: "q1"}, {SectionID: "q1"}}}
	err = f.svc.SaveAnswers(ctx, sub.ID, dup, learner)
	assert.ErrorIs(t, err, ErrValidationFailed)

	f.submit(t, sub.ID, learner)
	err = f.svc.SaveAnswers(ctx, sub.ID, req, learner)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

// ===== SUBMIT =====

func TestSubmit_QuizAwaitsRelease(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	f.publisher.ClearEvents()

	resp := f.submit(t, sub.ID, learner,
		models.AnswerInput{SectionID: "q1", Answer: models.StringsValue("b", "a")},
		models.AnswerInput{SectionID: "q2", Answer: models.StringsValue("i1", "i3", "i2", "i4")},
		models.AnswerInput{SectionID: "q3", Answer: models.StringMapValue(map[string]string{"b1": " Alpha", "b2": "BETA", "b3": "delta"})},
	)

	assert.Equal(t, models.SubmissionSubmitted, resp.Status)
	assert.Nil(t, resp.AutoScore)
	assert.Nil(t, resp.Grading)
	for _, a := range resp.Answers {
		assert.Nil(t, a.IsCorrect)
		assert.Nil(t, a.AutoScore)
	}

	stored := f.stored(t, sub.ID)
	require.Len(t, stored.Answers, 3)
	assert.True(t, *stored.Answers[0].IsCorrect)
	assert.Equal(t, 10.0, *stored.Answers[0].AutoScore)
	assert.False(t, *stored.Answers[1].IsCorrect)
	assert.Equal(t, 5.0, *stored.Answers[1].AutoScore)
	assert.False(t, *stored.Answers[2].IsCorrect)
	assert.Equal(t, 6.67, *stored.Answers[2].AutoScore)
	assert.Equal(t, 21.67, stored.AutoScore)
	assert.Equal(t, 30.0, stored.MaxScore)
	require.NotNil(t, stored.SubmittedAt)
	assert.Equal(t, fixedNow, *stored.SubmittedAt)
	assert.Nil(t, stored.Grading)

	assert.Equal(t, []events.EventType{events.SubmissionSubmitted}, f.publisher.EventTypes())
	progress := f.publisher.GetProgressEvents()
	require.Len(t, progress, 1)
	assert.Equal(t, events.PageCompleted, progress[0].Type)
}

func TestSubmit_UsesSavedDraftWithoutFinalAnswers(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	ctx := context.Background()

	require.NoError(t, f.svc.SaveAnswers(ctx, sub.ID, &models.SaveAnswersRequest{Answers: []models.AnswerInput{
		{SectionID: "q1", Answer: models.StringsValue("a", "b")},
	}}, learner))

	_, err := f.svc.Submit(ctx, sub.ID, &models.SubmitRequest{}, learner)
	require.NoError(t, err)

	stored := f.stored(t, sub.ID)
	assert.Equal(t, 10.0, stored.AutoScore)
	assert.Equal(t, 30.0, stored.MaxScore)
	// unanswered sections still produce a zero entry
	require.Len(t, stored.Answers, 3)
	assert.True(t, stored.Answers[1].Answer.IsNull())
	assert.Equal(t, 0.0, *stored.Answers[1].AutoScore)
}

func TestSubmit_PracticeReleasesImmediately(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, practicePageID, learner)

	resp := f.submit(t, sub.ID, learner, models.AnswerInput{SectionID: "p1", Answer: models.BoolValue(true)})

	assert.Equal(t, models.SubmissionReleased, resp.Status)
	require.NotNil(t, resp.AutoScore)
	assert.Equal(t, 5.0, *resp.AutoScore)
	require.NotNil(t, resp.Grading)
	assert.Equal(t, models.SystemGrader, resp.Grading.GradedBy)
	assert.Equal(t, 5.0, resp.Grading.FinalScore)
	assert.NotNil(t, resp.Grading.Overrides)
	assert.Empty(t, resp.Grading.Overrides)
	require.NotNil(t, resp.ReleasedAt)
	assert.True(t, *resp.Answers[0].IsCorrect)

	assert.Equal(t, []events.EventType{events.SubmissionStarted, events.SubmissionSubmitted, events.SubmissionReleased}, f.publisher.EventTypes())
}

func TestSubmit_PublisherFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	f.publisher.Err = errors.New("broker unavailable")

	resp, err := f.svc.Submit(context.Background(), sub.ID, nil, learner)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, resp.Status)
	assert.Equal(t, models.SubmissionSubmitted, f.stored(t, sub.ID).Status)
}

// ===== GRADE =====

func TestGrade_InProgressIsConflict(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)

	_, err := f.svc.Grade(context.Background(), sub.ID, &models.GradeRequest{}, mentor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrNotYetSubmitted)
	assert.Equal(t, "submission not yet submitted", err.Error())

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "grade", conflict.Operation)
	assert.Equal(t, models.SubmissionInProgress, conflict.Status)
}

func TestGrade_FinalScoreMixesOverridesAndAutoScores(t *testing.T) {
	f := newFixture(t)
	sub := f.start(t, quizPageID, learner)
	f.submit(t, sub.ID, learner,
		models.AnswerInput{SectionID: "q1", Answer: models.StringsValue("a", "b")},
		models.AnswerInput{SectionID: "q2", Answer: models.StringsValue("i1", "i3", "i2", "i4")},
		models.AnswerInput{SectionID: "q3", Answer: models.StringMapValue(map[string]string{"b1": "alpha", "b2": "beta"})},
	)

	feedback := "close, but the order matters"
	overall := "good effort"
	resp, err := f.svc.Grade(context.Background(), sub.ID, &models.GradeRequest{
		Overrides:       []models.GradeOverride{{SectionID: "q2", Score: 8, Feedback: &feedback}},
		OverallFeedback: &overall,
	}, mentor)
	require.NoError(t, err)

	// 10 (auto) + 8 (override) + 6.67 (auto)
	assert.Equal(t, models.SubmissionGraded, resp.Status)
	require.NotNil(t, resp.Grading)
	assert.Equal(t, 24.67, resp.Grading.FinalScore)
	assert.Equal(t, mentor, resp.Grading.GradedBy)
	assert.Equal(t, fixedNow, resp.Grading.GradedAt)
	assert.Equal(t, &overall, resp.Grading.OverallFeedback)

	// mentors see the full record, the learner still does not
	require.NotNil(t, resp.AutoScore)
	learnerView, err := f.svc.Get(context.Background(), sub.ID, learner)
	require.NoError(t, err)
	assert.Nil(t, learnerView.Grading)
	assert.Nil(t, learnerView.AutoScore)
}

func TestGrade_RegradeOverwrites(t *testing.T) {
	f := newFixture(t)
	id := f.submitScorePage(t)
	ctx := context.Background()

	_, err := f.svc.Grade(ctx, id, &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "s2", Score: 3}}}, mentor)
	require.NoError(t, err)
	resp, err := f.svc.Grade(ctx, id, &models.GradeRequest{Overrides: []models.GradeOverride{}}, "mentor-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err = f.svc.Grade(ctx, id, &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "s1", Score: 0}}}, mentor)
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.Grading.FinalScore)
	assert.Len(t, resp.Grading.Overrides, 1)
}

func TestGrade_InvalidOverrides(t *testing.T) {
	f := newFixture(t)
	id := f.submitScorePage(t)

	tests := []struct {
		name      string
		overrides []models.GradeOverride
	}{
		{"unknown section", []models.GradeOverride{{SectionID: "nope", Score: 1}}},
		{"above section max", []models.GradeOverride{{SectionID: "s2", Score: 3.5}}},
		{"negative", []models.GradeOverride{{SectionID: "s2", Score: -1}}},
		{"duplicate section", []models.GradeOverride{{SectionID: "s1", Score: 1}, {SectionID: "s1", Score: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Grade(context.Background(), id, &models.GradeRequest{Overrides: tt.overrides}, mentor)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
	assert.Equal(t, models.SubmissionSubmitted, f.stored(t, id).Status)
}

// ===== RELEASE =====

func TestRelease_SynthesizesGradingForUngradedSubmission(t *testing.T) {
	f := newFixture(t)
	id := f.submitScorePage(t)
	assert.Equal(t, 7.0, f.stored(t, id).AutoScore)

	resp, err := f.svc.Release(context.Background(), id, mentor)
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionReleased, resp.Status)
	require.NotNil(t, resp.Grading)
	assert.Equal(t, 7.0, resp.Grading.FinalScore)
	assert.Empty(t, resp.Grading.Overrides)
	assert.NotNil(t, resp.Grading.Overrides)
	assert.Equal(t, mentor, resp.Grading.GradedBy)
	require.NotNil(t, resp.ReleasedAt)

	learnerView, err := f.svc.Get(context.Background(), id, learner)
	require.NoError(t, err)
	require.NotNil(t, learnerView.Grading)
	require.NotNil(t, learnerView.AutoScore)
	assert.Equal(t, 7.0, *learnerView.AutoScore)
}

func TestRelease_KeepsMentorGrading(t *testing.T) {
	f := newFixture(t)
	id := f.submitScorePage(t)
	ctx := context.Background()

	_, err := f.svc.Grade(ctx, id, &models.GradeRequest{Overrides: []models.GradeOverride{{SectionID: "s2", Score: 2}}}, mentor)
	require.NoError(t, err)

	resp, err := f.svc.Release(ctx, id, mentor)
	require.NoError(t, err)
	assert.Equal(t, 9.0, resp.Grading.FinalScore)
	assert.Len(t, resp.Grading.Overrides, 1)

	_, err = f.svc.Release(ctx, id, mentor)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrAlreadyReleased)
}

// ===== TRANSITION TABLE =====

func TestTransitions(t *testing.T) {
	type op func(f *fixture, id uint) error
	submit := func(f *fixture, id uint) error {
		_, err := f.svc.Submit(context.Background(), id, nil, learner)
		return err
	}
	grade := func(f *fixture, id uint) error {
		_, err := f.svc.Grade(context.Background(), id, &models.GradeRequest{}, mentor)
		return err
	}
	release := func(f *fixture, id uint) error {
		_, err := f.svc.Release(context.Background(), id, mentor)
		return err
	}

	// setups leave one quiz submission in the named status
	setups := map[models.SubmissionStatus]func(t *testing.T, f *fixture) uint{
		models.SubmissionInProgress: func(t *testing.T, f *fixture) uint {
			return f.start(t, scorePageID, learner).ID
		},
		models.SubmissionSubmitted: func(t *testing.T, f *fixture) uint {
			return f.submitScorePage(t)
		},
		models.SubmissionGraded: func(t *testing.T, f *fixture) uint {
			id := f.submitScorePage(t)
			require.NoError(t, grade(f, id))
			return id
		},
		models.SubmissionReleased: func(t *testing.T, f *fixture) uint {
			id := f.submitScorePage(t)
			require.NoError(t, release(f, id))
			return id
		},
	}

	tests := []struct {
		name    string
		op      op
		from    models.SubmissionStatus
		allowed bool
	}{
		{"submit in-progress", submit, models.SubmissionInProgress, true},
		{"submit submitted", submit, models.SubmissionSubmitted, false},
		{"submit graded", submit, models.SubmissionGraded, false},
		{"submit released", submit, models.SubmissionReleased, false},
		{"grade in-progress", grade, models.SubmissionInProgress, false},
		{"grade submitted", grade, models.SubmissionSubmitted, true},
		{"grade graded", grade, models.SubmissionGraded, true},
		{"grade released", grade, models.SubmissionReleased, false},
		{"release in-progress", release, models.SubmissionInProgress, false},
		{"release submitted", release, models.SubmissionSubmitted, true},
		{"release graded", release, models.SubmissionGraded, true},
		{"release released", release, models.SubmissionReleased, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := setups[tt.from](t, f)

			err := tt.op(f, id)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConflict)
			assert.Equal(t, tt.from, f.stored(t, id).Status)
		})
	}
}

// ===== READS =====

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	id := f.submitScorePage(t)
	ctx := context.Background()

	mentorView, err := f.svc.Get(ctx, id, mentor)
	require.NoError(t, err)
	require.NotNil(t, mentorView.AutoScore)
	assert.Equal(t, 7.0, *mentorView.AutoScore)
	assert.NotNil(t, mentorView.Answers[0].IsCorrect)

	learnerView, err := f.svc.Get(ctx, id, learner)
	require.NoError(t, err)
	assert.Nil(t, learnerView.AutoScore)
	assert.Nil(t, learnerView.Answers[0].IsCorrect)
	assert.NotNil(t, learnerView.Answers[0].MaxScore)

	_, err = f.svc.Get(ctx, id, other)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(ctx, 12345, mentor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	first := f.start(t, practicePageID, learner)
	f.submit(t, first.ID, learner, models.AnswerInput{SectionID: "p1", Answer: models.BoolValue(true)})
	second := f.start(t, practicePageID, learner)
	f.start(t, practicePageID, other)

	list, err := f.svc.ListMine(context.Background(), practicePageID, learner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.NotNil(t, list[0].Grading)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = f.svc.ListMine(context.Background(), 404, learner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForPage(t *testing.T) {
	f := newFixture(t)
	f.submitScorePage(t)
	f.start(t, scorePageID, other)
	ctx := context.Background()

	resp, err := f.svc.ListForPage(ctx, scorePageID, repositories.SubmissionFilters{Limit: 1, Offset: 1, SortBy: "created_at", SortOrder: "asc"}, mentor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 1, resp.Size)
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, other, resp.Submissions[0].UserID)

	submitted := models.SubmissionSubmitted
	resp, err = f.svc.ListForPage(ctx, scorePageID, repositories.SubmissionFilters{Status: &submitted}, mentor)
	require.NoError(t, err)
	require.Len(t, resp.Submissions, 1)
	assert.Equal(t, learner, resp.Submissions[0].UserID)
	require.NotNil(t, resp.Submissions[0].AutoScore)

	_, err = f.svc.ListForPage(ctx, scorePageID, repositories.SubmissionFilters{}, learner)
	assert.ErrorIs(t, err, ErrForbidden)
}
