package pipeline

import (
	"time"

	"schallwerk/apperr"
	"schallwerk/model"
)

// stageRank orders the pipeline stages. Transitions only ever move forward.
var stageRank = map[model.PipelineStage]int{
	model.StagePending:         0,
	model.StageStaffUploaded:   1,
	model.StageFinalsSubmitted: 2,
}

// AdvanceStage validates a stage transition. Moving backward or skipping a
// stage is rejected; advancing to the current stage is a no-op and allowed so
// that confirm endpoints stay idempotent.
func AdvanceStage(current, next model.PipelineStage) (model.PipelineStage, error) {
	curRank, ok := stageRank[current]
	if !ok {
		return current, apperr.Ef(apperr.KindInvalid, "unknown pipeline stage %q", current)
	}
	nextRank, ok := stageRank[next]
	if !ok {
		return current, apperr.Ef(apperr.KindInvalid, "unknown pipeline stage %q", next)
	}
	if nextRank < curRank {
		return current, apperr.Ef(apperr.KindConflict, "pipeline stage cannot move back from %s to %s", current, next)
	}
	if nextRank > curRank+1 {
		return current, apperr.Ef(apperr.KindConflict, "pipeline stage cannot skip from %s to %s", current, next)
	}
	return next, nil
}

// AggregateApproval computes the admin-facing status over an event's songs:
// approved iff at least one song has a final file and every song with a
// final file is individually approved; ready_for_approval iff at least one
// final exists; pending otherwise.
func AggregateApproval(songs []*model.Song) model.AdminApprovalStatus {
	finals := 0
	approvedFinals := 0
	for _, s := range songs {
		if !s.HasFinal() {
			continue
		}
		finals++
		if s.ApprovalStatus == model.ApprovalApproved {
			approvedFinals++
		}
	}
	switch {
	case finals == 0:
		return model.AdminApprovalPending
	case approvedFinals == finals:
		return model.AdminApprovalDone
	default:
		return model.AdminApprovalReady
	}
}

// StaffUploadComplete reports whether the staff raw-upload phase is done.
// An event expecting zero tracks is never complete.
func StaffUploadComplete(rawCount, expectedCount int) bool {
	return expectedCount > 0 && rawCount >= expectedCount
}

// MixMasterComplete reports whether the engineer final-upload phase is done.
func MixMasterComplete(finalCount, expectedCount int) bool {
	return expectedCount > 0 && finalCount >= expectedCount
}

// previewDelay is how long after the event date parents have to wait before
// previews unlock.
const previewDelay = 7 * 24 * time.Hour

// PreviewVisible decides whether a parent may see an event's previews:
// every track approved AND now at or past eventDate + 7 days. The boundary
// is inclusive at exactly 7 days; comparison happens in UTC.
func PreviewVisible(allApproved bool, eventDate, now time.Time) bool {
	if !allApproved {
		return false
	}
	unlock := eventDate.UTC().Add(previewDelay)
	return !now.UTC().Before(unlock)
}

// AssignEngineer picks the mixing engineer for a song: the schulsong always
// goes to Micha, everything else to Jakob. A song with an engineer already
// set is left alone, so re-running assignment is a no-op.
func AssignEngineer(song *model.Song, michaID, jakobID string) string {
	if song.EngineerID != "" {
		return song.EngineerID
	}
	if song.IsSchulsong {
		return michaID
	}
	return jakobID
}

// CanManageClasses gates the teacher-portal roster actions (grouping,
// song edits) on the booking's setup progress.
func CanManageClasses(status model.PortalStatus) bool {
	return status == model.PortalClassesAdded || status == model.PortalReady
}
