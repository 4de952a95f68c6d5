package audit

import (
	"context"
	"encoding/json"

	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// Recorder appends one change record per mutating operation, inside the
// caller's transaction. A recorder failure must abort the host transaction:
// the compliance model assumes a committed mutation always has its audit
// record, so writes fail closed rather than commit silently unaudited.
type Recorder interface {
	Record(ctx context.Context, e Entry) (int64, error)
}

type recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, e Entry) (int64, error) {
	log := &Log{
		Table:    e.Table,
		RecordID: e.RecordID,
		Action:   e.Action,
		ActorID:  e.ActorID,
	}

	if e.Before != nil {
		data, err := json.Marshal(e.Before)
		if err != nil {
			return 0, domainerr.Unexpected("serialize audit before-image", err)
		}
		log.Before = data
	}
	if e.After != nil {
		data, err := json.Marshal(e.After)
		if err != nil {
			return 0, domainerr.Unexpected("serialize audit after-image", err)
		}
		log.After = data
	}

	id, err := r.repo.Insert(ctx, log)
	if err != nil {
		return 0, domainerr.Unexpected("write audit record", err)
	}
	return id, nil
}
