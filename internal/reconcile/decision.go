package reconcile

import (
	"github.com/Veraticus/policy-sync/internal/model"
)

// Action is the fate the match engine assigns to a row.
type Action int

// Actions.
const (
	ActionSkip Action = iota
	ActionFail
	ActionInsert
	ActionUpdate
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionFail:
		return "fail"
	default:
		return "skip"
	}
}

// Skip reasons.
const (
	SkipBlank         = "blank"
	SkipTransactional = "transactional-row"
	SkipDuplicate     = "duplicate"
)

// Decision is the outcome of matching one row. Insert and Update carry the
// record to write; an Insert with a Predecessor is a renewal that archives
// the predecessor first.
type Decision struct {
	Err         error
	Policy      *model.Policy
	Predecessor *model.Policy
	Claim       *model.Claim
	Reason      string
	Line        int
	Action      Action
	// predecessorPending means the predecessor is itself an insert of this
	// run and was archived in memory.
	predecessorPending bool
}

func skip(line int, reason string) Decision {
	return Decision{Line: line, Action: ActionSkip, Reason: reason}
}

func fail(line int, err error) Decision {
	return Decision{Line: line, Action: ActionFail, Err: err, Reason: err.Error()}
}
