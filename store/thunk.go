package store

import (
	"context"

	"retail-admin/models"
	"retail-admin/services"
)

// Lister is any service with a paginated List.
type Lister interface {
	List(ctx context.Context, p services.ListParams) (services.Response, error)
}

// Fetch runs a list request. Only the response to the latest request
// issued by s is applied.
func Fetch(ctx context.Context, s *Store, svc Lister, p services.ListParams) OpState {
	seq := s.NextSeq()
	s.Dispatch(ListPending{Seq: seq})
	resp, err := svc.List(ctx, p)
	if err != nil {
		s.Dispatch(ListRejected{Seq: seq, Err: err})
	} else {
		s.Dispatch(ListFulfilled{Seq: seq, Resp: resp})
	}
	return s.State().List
}

// Mutate runs a create, update or delete call as op.
func Mutate(ctx context.Context, s *Store, op Op, call func(context.Context) (services.Response, error)) OpState {
	s.Dispatch(MutationPending{Op: op})
	resp, err := call(ctx)
	if err != nil {
		s.Dispatch(MutationRejected{Op: op, Err: err})
	} else {
		s.Dispatch(MutationFulfilled{Op: op, Resp: resp})
	}
	return s.State().Op(op)
}

// FetchUsers loads one page of the user list.
func FetchUsers(ctx context.Context, s *Store, svc *services.UserService, p services.ListParams) OpState {
	return Fetch(ctx, s, svc, p)
}

// CreateUser adds a user from the create dialog.
func CreateUser(ctx context.Context, s *Store, svc *services.UserService, req models.CreateUserRequest) OpState {
	return Mutate(ctx, s, OpCreateEdit, func(ctx context.Context) (services.Response, error) {
		return svc.Create(ctx, req)
	})
}

// UpdateUser saves the edit dialog of a user.
func UpdateUser(ctx context.Context, s *Store, svc *services.UserService, id string, req models.UpdateUserRequest) OpState {
	return Mutate(ctx, s, OpCreateEdit, func(ctx context.Context) (services.Response, error) {
		return svc.Update(ctx, id, req)
	})
}

// DeleteUser removes one user.
func DeleteUser(ctx context.Context, s *Store, svc *services.UserService, id string) OpState {
	return Mutate(ctx, s, OpDelete, func(ctx context.Context) (services.Response, error) {
		return svc.Delete(ctx, id)
	})
}

// DeleteUsers removes the selected users.
func DeleteUsers(ctx context.Context, s *Store, svc *services.UserService, ids []string) OpState {
	return Mutate(ctx, s, OpDeleteMany, func(ctx context.Context) (services.Response, error) {
		return svc.DeleteMany(ctx, ids)
	})
}

// FetchRoles loads one page of the role list.
func FetchRoles(ctx context.Context, s *Store, svc *services.RoleService, p services.ListParams) OpState {
	return Fetch(ctx, s, svc, p)
}

// CreateRole adds a role from the create dialog.
func CreateRole(ctx context.Context, s *Store, svc *services.RoleService, req models.CreateRoleRequest) OpState {
	return Mutate(ctx, s, OpCreateEdit, func(ctx context.Context) (services.Response, error) {
		return svc.Create(ctx, req)
	})
}

// UpdateRole saves the edit dialog of a role.
func UpdateRole(ctx context.Context, s *Store, svc *services.RoleService, id string, req models.UpdateRoleRequest) OpState {
	return Mutate(ctx, s, OpCreateEdit, func(ctx context.Context) (services.Response, error) {
		return svc.Update(ctx, id, req)
	})
}

// DeleteRole removes one role.
func DeleteRole(ctx context.Context, s *Store, svc *services.RoleService, id string) OpState {
	return Mutate(ctx, s, OpDelete, func(ctx context.Context) (services.Response, error) {
		return svc.Delete(ctx, id)
	})
}

// Register signs up a new account.
func Register(ctx context.Context, s *Store, svc *services.AuthService, req models.CreateUserRequest) OpState {
	return Mutate(ctx, s, OpRegister, func(ctx context.Context) (services.Response, error) {
		return svc.Register(ctx, req)
	})
}

// UpdateMe saves the profile page.
func UpdateMe(ctx context.Context, s *Store, svc *services.AuthService, req models.UpdateMeRequest) OpState {
	return Mutate(ctx, s, OpUpdateMe, func(ctx context.Context) (services.Response, error) {
		return svc.UpdateMe(ctx, req)
	})
}

// ChangePassword submits the change-password page.
func ChangePassword(ctx context.Context, s *Store, svc *services.AuthService, req models.ChangePasswordRequest) OpState {
	return Mutate(ctx, s, OpChangePassword, func(ctx context.Context) (services.Response, error) {
		return svc.ChangePassword(ctx, req)
	})
}
