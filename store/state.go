// Package store keeps per-entity console state (users, roles, the signed-in
// account) and the
// request life cycle of every list and mutation as an explicit state
// machine: Idle -> Pending -> Succeeded | Failed -> Idle.
package store

import "encoding/json"

// Status is the life-cycle position of one operation.
type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the operation has finished.
func (s Status) Terminal() bool { return s == Succeeded || s == Failed }

// Op names an operation tracked by the state machine.
type Op string

const (
	OpList       Op = "list"
	OpCreateEdit Op = "create_edit"
	OpDelete     Op = "delete"
	OpDeleteMany Op = "delete_many"

	// Self-service operations of the signed-in account
	OpRegister       Op = "register"
	OpUpdateMe       Op = "update_me"
	OpChangePassword Op = "change_password"
)

// OpState is the status of one operation plus the last server message.
type OpState struct {
	Status    Status
	Message   string
	TypeError string
}

// EntityState is everything the console shows for one entity.
type EntityState struct {
	Loading bool
	Items   []json.RawMessage
	Total   int
	// ListSeq is the latest list request issued; older responses are stale.
	ListSeq uint64

	List       OpState
	CreateEdit OpState
	Delete     OpState
	DeleteMany OpState

	Register       OpState
	UpdateMe       OpState
	ChangePassword OpState
}

// Op returns the state of op.
func (s EntityState) Op(op Op) OpState {
	switch op {
	case OpList:
		return s.List
	case OpCreateEdit:
		return s.CreateEdit
	case OpDelete:
		return s.Delete
	case OpDeleteMany:
		return s.DeleteMany
	case OpRegister:
		return s.Register
	case OpUpdateMe:
		return s.UpdateMe
	case OpChangePassword:
		return s.ChangePassword
	}
	return OpState{}
}

func (s *EntityState) setOp(op Op, st OpState) {
	switch op {
	case OpList:
		s.List = st
	case OpCreateEdit:
		s.CreateEdit = st
	case OpDelete:
		s.Delete = st
	case OpDeleteMany:
		s.DeleteMany = st
	case OpRegister:
		s.Register = st
	case OpUpdateMe:
		s.UpdateMe = st
	case OpChangePassword:
		s.ChangePassword = st
	}
}

var allOps = []Op{
	OpList, OpCreateEdit, OpDelete, OpDeleteMany,
	OpRegister, OpUpdateMe, OpChangePassword,
}
