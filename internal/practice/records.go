package practice

import (
	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/scoring"
	"github.com/verte-zerg/dmt/internal/session"
)

func recordFromSnapshot(snap session.Snapshot, level int) model.SessionRecord {
	rec := model.SessionRecord{
		ID:                    snap.ID,
		UserID:                snap.OwnerID,
		Level:                 level,
		DurationBudgetSeconds: snap.DurationBudgetSeconds,
		StartedAt:             snap.OpenedAt,
		FinishedAt:            snap.FinishedAt,
		WordsPresented:        snap.WordsPresented,
		WordsRead:             snap.WordsRead,
		Errors:                snap.ErrorCount,
		SelfCorrections:       snap.SelfCorrectionCount,
	}
	if snap.Result != nil {
		rec.CorrectWords = snap.Result.CorrectWords
		rec.EffectiveErrors = snap.Result.EffectiveErrors
		rec.WPM = snap.Result.WPM
		rec.Accuracy = snap.Result.Accuracy
	}
	return rec
}

// SnapshotFromRecord rebuilds the finished view of a persisted session.
func SnapshotFromRecord(rec model.SessionRecord) session.Snapshot {
	return session.Snapshot{
		ID:                    rec.ID,
		OwnerID:               rec.UserID,
		DurationBudgetSeconds: rec.DurationBudgetSeconds,
		OpenedAt:              rec.StartedAt,
		FinishedAt:            rec.FinishedAt,
		WordsPresented:        rec.WordsPresented,
		WordsRead:             rec.WordsRead,
		ErrorCount:            rec.Errors,
		SelfCorrectionCount:   rec.SelfCorrections,
		Status:                session.StatusFinished,
		Result: &scoring.Result{
			CorrectWords:    rec.CorrectWords,
			EffectiveErrors: rec.EffectiveErrors,
			WPM:             rec.WPM,
			Accuracy:        rec.Accuracy,
		},
	}
}
