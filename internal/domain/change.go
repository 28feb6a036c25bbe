package domain

// ChangeOp is the kind of mutation applied to the item table.
type ChangeOp string

const (
	ChangeAdded   ChangeOp = "added"
	ChangeUpdated ChangeOp = "updated"
	ChangeDeleted ChangeOp = "deleted"
)

// ChangeEvent is published after a mutation has been committed.
type ChangeEvent struct {
	Op ChangeOp `json:"op"`
	ID uint64   `json:"id"`
}
