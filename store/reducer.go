package store

import (
	"encoding/json"

	"retail-admin/services"
)

// Action is a typed state transition message.
type Action interface{ isAction() }

type (
	ListPending   struct{ Seq uint64 }
	ListFulfilled struct {
		Seq  uint64
		Resp services.Response
	}
	ListRejected struct {
		Seq uint64
		Err error
	}
	MutationPending   struct{ Op Op }
	MutationFulfilled struct {
		Op   Op
		Resp services.Response
	}
	MutationRejected struct {
		Op  Op
		Err error
	}
	// Reset returns every operation to Idle and clears messages.
	Reset struct{}
)

func (ListPending) isAction()       {}
func (ListFulfilled) isAction()     {}
func (ListRejected) isAction()      {}
func (MutationPending) isAction()   {}
func (MutationFulfilled) isAction() {}
func (MutationRejected) isAction()  {}
func (Reset) isAction()             {}

// Reduce is the pure transition function. Fields are replaced whole; the
// item list is never edited in place.
func Reduce(s EntityState, a Action) EntityState {
	switch a := a.(type) {
	case ListPending:
		// a request overtaken by a newer one must not reopen the list
		if a.Seq < s.ListSeq {
			return s
		}
		s.ListSeq = a.Seq
		s.Loading = true
		s.List = OpState{Status: Pending}

	case ListFulfilled:
		if a.Seq != s.ListSeq {
			return s
		}
		s.Loading = false
		items, total, err := a.Resp.List()
		if err != nil {
			s.Items = []json.RawMessage{}
			s.Total = 0
			s.List = OpState{Status: Failed, Message: a.Resp.Message, TypeError: a.Resp.TypeError}
			return s
		}
		s.Items = items
		s.Total = total
		s.List = OpState{Status: Succeeded, Message: a.Resp.Message}

	case ListRejected:
		if a.Seq != s.ListSeq {
			return s
		}
		s.Loading = false
		s.Items = []json.RawMessage{}
		s.Total = 0
		s.List = OpState{Status: Failed, Message: errText(a.Err)}

	case MutationPending:
		s.Loading = true
		s.setOp(a.Op, OpState{Status: Pending})

	case MutationFulfilled:
		s.Loading = false
		st := OpState{Status: Failed, Message: a.Resp.Message, TypeError: a.Resp.TypeError}
		if mutationSucceeded(a.Op, a.Resp) {
			st.Status = Succeeded
		}
		s.setOp(a.Op, st)

	case MutationRejected:
		s.Loading = false
		s.setOp(a.Op, OpState{Status: Failed, Message: errText(a.Err)})

	case Reset:
		s.Loading = false
		for _, op := range allOps {
			s.setOp(op, OpState{})
		}
	}
	return s
}

// mutationSucceeded reads success from the payload shape rather than the
// transport status. Account payloads need an email, bulk deletes and
// password changes need any data, everything else needs a record id.
func mutationSucceeded(op Op, resp services.Response) bool {
	switch op {
	case OpDeleteMany, OpChangePassword:
		return resp.HasData()
	case OpRegister, OpUpdateMe:
		return resp.Email() != ""
	}
	return resp.RecordID() != ""
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
