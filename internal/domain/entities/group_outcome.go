package entities

// ReconcileState is the progress of one update group through reconciliation.
type ReconcileState string

const (
	StatePlanned             ReconcileState = "planned"
	StateBranchChecked       ReconcileState = "branch-checked"
	StateSkippedExisting     ReconcileState = "skipped-existing"
	StateCreated             ReconcileState = "created"
	StateReused              ReconcileState = "reused"
	StateCommitted           ReconcileState = "committed"
	StatePushed              ReconcileState = "pushed"
	StateChangeRequestOpened ReconcileState = "change-request-opened"
	StateFailed              ReconcileState = "failed"
)

// GroupOutcome records what happened to one update group.
type GroupOutcome struct {
	Group  UpdateGroup
	Branch string
	State  ReconcileState
	// LastState is the furthest state reached before a failure.
	LastState   ReconcileState
	PullRequest *PullRequest
	Err         error
}

// Skipped reports whether the group's branch already existed on the remote.
func (o GroupOutcome) Skipped() bool { return o.State == StateSkippedExisting }

// Failed reports whether reconciliation aborted for the group.
func (o GroupOutcome) Failed() bool { return o.State == StateFailed }
