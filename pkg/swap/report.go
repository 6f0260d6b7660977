package swap

import (
	"errors"

	"jup-swap/pkg/types"
)

// Report is the machine readable outcome of a run
type Report struct {
	Success bool              `json:"success"`
	RunID   string            `json:"runId,omitempty"`
	Stage   types.Stage       `json:"stage,omitempty"`
	State   State             `json:"state,omitempty"`
	Error   string            `json:"error,omitempty"`
	TxID    string            `json:"txid,omitempty"`
	Slot    uint64            `json:"slot,omitempty"`
	HTTP    *types.HTTPDetail `json:"http,omitempty"`
}

// NewReport summarises res and err. res may be nil.
func NewReport(res *Result, err error) Report {
	rep := Report{Success: err == nil}
	if res != nil {
		rep.RunID = res.RunID
		rep.State = res.State
		rep.TxID = res.TxID
		rep.Slot = res.Confirmation.Slot
	}
	if err == nil {
		return rep
	}

	rep.Error = err.Error()
	rep.Stage, rep.HTTP = classify(err)
	return rep
}

// StageOf returns the stage err originated from, empty if unknown
func StageOf(err error) types.Stage {
	stage, _ := classify(err)
	return stage
}

func classify(err error) (types.Stage, *types.HTTPDetail) {
	var (
		qe  *types.QuoteError
		be  *types.BuildError
		se  *types.SubmitError
		vt  *types.VerificationTimeout
		ocf *types.OnChainFailure
	)
	switch {
	case errors.As(err, &qe):
		return types.StageQuote, qe.HTTP
	case errors.As(err, &be):
		return types.StageBuild, be.HTTP
	case errors.As(err, &se):
		return types.StageSubmit, se.HTTP
	case errors.As(err, &vt), errors.As(err, &ocf):
		return types.StageConfirm, nil
	}
	return "", nil
}
