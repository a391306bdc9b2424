package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/models"
)

func TestBulkRelease_ReleasesOnlyGraded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	graded := f.submitScorePage(t)
	_, err := f.svc.Grade(ctx, graded, &models.GradeRequest{}, mentor)
	require.NoError(t, err)

	otherSub := f.start(t, scorePageID, other)
	f.submit(t, otherSub.ID, other)
	f.publisher.ClearEvents()

	resp, err := f.release.BulkRelease(ctx, scorePageID, mentor)
	require.NoError(t, err)
	assert.Equal(t, scorePageID, resp.PageID)
	assert.Equal(t, int64(1), resp.Count)

	released := f.stored(t, graded)
	assert.Equal(t, models.SubmissionReleased, released.Status)
	require.NotNil(t, released.ReleasedAt)
	assert.Equal(t, fixedNow, *released.ReleasedAt)
	require.NotNil(t, released.Grading)

	// never graded, so left for an explicit release
	assert.Equal(t, models.SubmissionSubmitted, f.stored(t, otherSub.ID).Status)

	assert.Equal(t, []events.EventType{events.SubmissionBulkReleased}, f.publisher.EventTypes())
	data, ok := f.publisher.GetPublishedEvents()[0].Data.(events.BulkReleaseEventData)
	require.True(t, ok)
	assert.Equal(t, int64(1), data.Count)
}

func TestBulkRelease_NothingToRelease(t *testing.T) {
	f := newFixture(t)
	f.submitScorePage(t)
	f.publisher.ClearEvents()

	resp, err := f.release.BulkRelease(context.Background(), scorePageID, mentor)
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestBulkRelease_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.release.BulkRelease(context.Background(), scorePageID, learner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.release.BulkRelease(context.Background(), 404, mentor)
	assert.ErrorIs(t, err, ErrNotFound)
}
