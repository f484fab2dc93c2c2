package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-admin/models"
	"retail-admin/services"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *collector) add(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

func (c *collector) all() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

func TestNoticeFiresOncePerTerminalTransition(t *testing.T) {
	s := NewRoleStore(nil)
	var got collector
	cancel := s.Subscribe(got.add)
	defer cancel()

	s.Dispatch(MutationPending{Op: OpCreateEdit})
	assert.Empty(t, got.all())

	s.Dispatch(MutationFulfilled{Op: OpCreateEdit, Resp: services.Response{Status: 409, Message: "exists", TypeError: models.TypeAlreadyExist}})
	s.Dispatch(Reset{})

	notices := got.all()
	require.Len(t, notices, 1)
	assert.Equal(t, Notice{
		Entity: EntityRole, Op: OpCreateEdit, Status: Failed,
		Message: "exists", TypeError: models.TypeAlreadyExist,
	}, notices[0])
}

func TestUnsubscribeStopsNotices(t *testing.T) {
	s := NewUserStore(nil)
	var got collector
	cancel := s.Subscribe(got.add)
	cancel()

	s.Dispatch(MutationRejected{Op: OpDelete, Err: errors.New("boom")})
	assert.Empty(t, got.all())
}

func TestSubscriberMayDispatch(t *testing.T) {
	s := NewUserStore(nil)
	s.Subscribe(func(n Notice) {
		if n.Status == Failed {
			s.Dispatch(Reset{})
		}
	})
	s.Dispatch(MutationRejected{Op: OpDelete, Err: errors.New("boom")})
	assert.Equal(t, Idle, s.State().Delete.Status)
}

func TestNextSeqIsMonotonic(t *testing.T) {
	s := NewUserStore(nil)
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.NextSeq()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, uint64(101), s.NextSeq())
}

type slowLister struct {
	release map[int]chan struct{}
	calls   chan services.ListParams
}

func (l *slowLister) List(ctx context.Context, p services.ListParams) (services.Response, error) {
	l.calls <- p
	<-l.release[p.Page]
	return page(`[{"id":"page`+itoa(p.Page)+`"}]`, p.Page), nil
}

func TestFetchIgnoresOlderResponses(t *testing.T) {
	s := NewUserStore(nil)
	l := &slowLister{
		release: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
		calls:   make(chan services.ListParams, 2),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Fetch(context.Background(), s, l, services.ListParams{Page: 1})
	}()
	<-l.calls

	wg.Add(1)
	go func() {
		defer wg.Done()
		Fetch(context.Background(), s, l, services.ListParams{Page: 2})
	}()
	<-l.calls

	close(l.release[2])
	require.Eventually(t, func() bool { return s.State().List.Status == Succeeded }, timeout, tick)
	close(l.release[1])
	wg.Wait()

	st := s.State()
	require.Len(t, st.Items, 1)
	assert.JSONEq(t, `{"id":"page2"}`, string(st.Items[0]))
	assert.Equal(t, 2, st.Total)
}

func TestThunksAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/roles":
			io.WriteString(w, `{"status":200,"data":{"items":[{"id":"r1","name":"Staff"}],"totalCount":1}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/roles":
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"status":201,"data":{"id":"r2","name":"Cashier"}}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/roles/r1":
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"status":403,"message":"admin role","typeError":"FORBIDDEN"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	roles := services.NewClient(srv.URL, "tok", nil).Roles()
	s := NewRoleStore(nil)
	var got collector
	s.Subscribe(got.add)
	ctx := context.Background()

	assert.Equal(t, Succeeded, FetchRoles(ctx, s, roles, services.ListParams{Page: 1, Limit: 10}).Status)
	assert.Equal(t, 1, s.State().Total)

	assert.Equal(t, Succeeded, CreateRole(ctx, s, roles, models.CreateRoleRequest{Name: "Cashier"}).Status)

	del := DeleteRole(ctx, s, roles, "r1")
	assert.Equal(t, Failed, del.Status)
	assert.Equal(t, models.TypeForbidden, del.TypeError)

	notices := got.all()
	require.Len(t, notices, 3)
	assert.Equal(t, OpList, notices[0].Op)
	assert.Equal(t, OpCreateEdit, notices[1].Op)
	assert.Equal(t, OpDelete, notices[2].Op)
}

func TestThunkTransportFailureRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	users := services.NewClient(url, "", nil).Users()
	s := NewUserStore(nil)

	st := FetchUsers(context.Background(), s, users, services.ListParams{})
	assert.Equal(t, Failed, st.Status)
	assert.NotEmpty(t, st.Message)

	st = DeleteUsers(context.Background(), s, users, []string{"a"})
	assert.Equal(t, Failed, st.Status)
}

func TestAuthThunksReadSuccessFromPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/auth/me":
			io.WriteString(w, `{"status":200,"data":{"id":"u1","email":"ann@shop.test","firstName":"Ann"}}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/auth/change-password":
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"status":400,"message":"Current password is incorrect","typeError":"INVALID"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/auth/signup":
			io.WriteString(w, `{"status":200,"message":"odd","data":{"id":"u2"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	auth := services.NewClient(srv.URL, "tok", nil).Auth()
	s := NewAuthStore(nil)
	var got collector
	s.Subscribe(got.add)
	ctx := context.Background()

	assert.Equal(t, Succeeded, UpdateMe(ctx, s, auth, models.UpdateMeRequest{FirstName: "Ann"}).Status)

	pw := ChangePassword(ctx, s, auth, models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "secret123"})
	assert.Equal(t, Failed, pw.Status)
	assert.Equal(t, "Current password is incorrect", pw.Message)
	assert.Equal(t, models.TypeInvalid, pw.TypeError)

	reg := Register(ctx, s, auth, models.CreateUserRequest{Email: "bob@shop.test", Password: "secret123"})
	assert.Equal(t, Failed, reg.Status, "signup payload without email is a failure")

	notices := got.all()
	require.Len(t, notices, 3)
	assert.Equal(t, EntityAuth, notices[0].Entity)
	assert.Equal(t, []Op{OpUpdateMe, OpChangePassword, OpRegister}, []Op{notices[0].Op, notices[1].Op, notices[2].Op})
	assert.False(t, s.State().Loading)
}
