package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schallwerk/apperr"
	"schallwerk/model"
)

func TestAdvanceStageForwardOnly(t *testing.T) {
	next, err := AdvanceStage(model.StagePending, model.StageStaffUploaded)
	require.NoError(t, err)
	assert.Equal(t, model.StageStaffUploaded, next)

	next, err = AdvanceStage(model.StageStaffUploaded, model.StageFinalsSubmitted)
	require.NoError(t, err)
	assert.Equal(t, model.StageFinalsSubmitted, next)

	// Same stage again is an idempotent no-op.
	next, err = AdvanceStage(model.StageStaffUploaded, model.StageStaffUploaded)
	require.NoError(t, err)
	assert.Equal(t, model.StageStaffUploaded, next)
}

func TestAdvanceStageRejectsBackward(t *testing.T) {
	_, err := AdvanceStage(model.StageFinalsSubmitted, model.StageStaffUploaded)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = AdvanceStage(model.StageStaffUploaded, model.StagePending)
	require.Error(t, err)
}

func TestAdvanceStageRejectsSkip(t *testing.T) {
	_, err := AdvanceStage(model.StagePending, model.StageFinalsSubmitted)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAdvanceStageUnknownStage(t *testing.T) {
	_, err := AdvanceStage("published", model.StagePending)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func song(final bool, status model.ApprovalStatus) *model.Song {
	s := &model.Song{ApprovalStatus: status}
	if final {
		s.FinalMP3Key = "events/evt1/final.mp3"
	}
	return s
}

func TestAggregateApproval(t *testing.T) {
	// No finals at all: pending.
	assert.Equal(t, model.AdminApprovalPending,
		AggregateApproval([]*model.Song{song(false, model.ApprovalPending)}))
	assert.Equal(t, model.AdminApprovalPending, AggregateApproval(nil))

	// One final, not yet approved: ready_for_approval.
	assert.Equal(t, model.AdminApprovalReady,
		AggregateApproval([]*model.Song{song(true, model.ApprovalPending)}))

	// All finals approved: approved, even when final-less songs are pending.
	assert.Equal(t, model.AdminApprovalDone,
		AggregateApproval([]*model.Song{
			song(true, model.ApprovalApproved),
			song(false, model.ApprovalPending),
		}))

	// One rejected final blocks the aggregate.
	assert.Equal(t, model.AdminApprovalReady,
		AggregateApproval([]*model.Song{
			song(true, model.ApprovalApproved),
			song(true, model.ApprovalRejected),
		}))
}

func TestCompletionFlags(t *testing.T) {
	assert.True(t, StaffUploadComplete(3, 3))
	assert.True(t, StaffUploadComplete(4, 3))
	assert.False(t, StaffUploadComplete(2, 3))
	// Zero expected tracks is never complete.
	assert.False(t, StaffUploadComplete(0, 0))
	assert.False(t, StaffUploadComplete(5, 0))

	assert.True(t, MixMasterComplete(3, 3))
	assert.False(t, MixMasterComplete(2, 3))
	assert.False(t, MixMasterComplete(0, 0))
}

func TestPreviewVisibleBoundary(t *testing.T) {
	eventDate := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Exactly 7 days after the event: visible (inclusive boundary).
	at7 := eventDate.Add(7 * 24 * time.Hour)
	assert.True(t, PreviewVisible(true, eventDate, at7))

	// 6 days after: not visible.
	at6 := eventDate.Add(6 * 24 * time.Hour)
	assert.False(t, PreviewVisible(true, eventDate, at6))

	// One second short of the boundary: not visible.
	assert.False(t, PreviewVisible(true, eventDate, at7.Add(-time.Second)))

	// Approval alone is not enough, and the delay alone is not enough.
	assert.False(t, PreviewVisible(false, eventDate, at7.Add(24*time.Hour)))
	assert.False(t, PreviewVisible(false, eventDate, at6))
}

func TestPreviewVisibleComparesInUTC(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	eventDate := time.Date(2025, 3, 10, 9, 0, 0, 0, berlin)
	at7 := eventDate.Add(7 * 24 * time.Hour).UTC()
	assert.True(t, PreviewVisible(true, eventDate, at7))
	assert.False(t, PreviewVisible(true, eventDate, at7.Add(-time.Minute)))
}

func TestAssignEngineer(t *testing.T) {
	schulsong := &model.Song{IsSchulsong: true}
	assert.Equal(t, "engMicha", AssignEngineer(schulsong, "engMicha", "engJakob"))

	classSong := &model.Song{}
	assert.Equal(t, "engJakob", AssignEngineer(classSong, "engMicha", "engJakob"))

	// Assignment never overwrites an engineer that is already set.
	taken := &model.Song{IsSchulsong: true, EngineerID: "engOther"}
	assert.Equal(t, "engOther", AssignEngineer(taken, "engMicha", "engJakob"))
}

func TestCanManageClasses(t *testing.T) {
	assert.False(t, CanManageClasses(model.PortalPendingSetup))
	assert.True(t, CanManageClasses(model.PortalClassesAdded))
	assert.True(t, CanManageClasses(model.PortalReady))
}
