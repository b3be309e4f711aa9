package recommendation

import "github.com/i474232898/plant-care/internal/plants"

// Status is the kind of an evaluation outcome.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SkipReason explains a skipped evaluation.
type SkipReason string

const (
	ReasonDataUnavailable  SkipReason = "data_unavailable"
	ReasonNotStale         SkipReason = "not_stale"
	ReasonAlreadyGenerated SkipReason = "already_generated"
	ReasonLocationUnknown  SkipReason = "location_unknown"
)

// Outcome is the result of one Writer.Evaluate call.
type Outcome struct {
	Status Status                 `json:"status"`
	Reason SkipReason             `json:"reason,omitempty"`
	Record *plants.Recommendation `json:"record,omitempty"`
	Err    error                  `json:"-"`
}

func Written(rec *plants.Recommendation) Outcome {
	return Outcome{Status: StatusWritten, Record: rec}
}

func Skipped(reason SkipReason) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
