package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-management-api/internal/domain/entity"
	repo "github.com/oksasatya/go-task-management-api/internal/domain/repository"
	"github.com/oksasatya/go-task-management-api/pkg/helpers"
	"github.com/oksasatya/go-task-management-api/pkg/mailer"
	"github.com/oksasatya/go-task-management-api/pkg/mailer/templates"
)

const adminID = "99999999-9999-4999-8999-999999999999"

func newAdminService() (*AdminService, *mockUserRepo, *mockTaskRepo) {
	users := &mockUserRepo{}
	tasks := &mockTaskRepo{}
	return NewAdminService(users, tasks, helpers.NopLogger()), users, tasks
}

func TestAdminService_UserStats(t *testing.T) {
	svc, users, tasks := newAdminService()
	u := &entity.User{ID: ownerA, Username: "alice"}
	users.On("GetByID", mock.Anything, ownerA).Return(u, nil)
	st := entity.NewTaskStats()
	st.Add(entity.StatusTodo, entity.PriorityLow, 2)
	st.Add(entity.StatusInProgress, entity.PriorityHigh, 1)
	st.Add(entity.StatusDone, entity.PriorityMedium, 3)
	tasks.On("CountByOwner", mock.Anything, ownerA).Return(st, nil)

	got, err := svc.UserStats(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Equal(t, &UserStats{User: u, TotalTasks: 6, Pending: 2, InProgress: 1, Completed: 3}, got)
}

func TestAdminService_UserStatsUnknown(t *testing.T) {
	svc, users, _ := newAdminService()
	users.On("GetByID", mock.Anything, ownerB).Return(nil, repo.ErrNotFound)

	_, err := svc.UserStats(context.Background(), ownerB)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UserStats(context.Background(), "42")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_DeleteUserGuards(t *testing.T) {
	svc, users, _ := newAdminService()
	otherAdmin := "88888888-8888-4888-8888-888888888888"
	users.On("GetByID", mock.Anything, otherAdmin).Return(&entity.User{ID: otherAdmin, Role: entity.RoleAdmin}, nil)
	users.On("GetByID", mock.Anything, ownerB).Return(nil, repo.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), adminID, adminID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), adminID, otherAdmin), ErrCannotDeleteAdmin)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), adminID, ownerB), ErrUserNotFound)
	users.AssertNotCalled(t, "DeleteWithTasks", mock.Anything, mock.Anything)
}

func TestAdminService_DeleteUserCascades(t *testing.T) {
	svc, users, _ := newAdminService()
	cache := &mockCache{}
	idx := &mockIndex{}
	jobs := &mockPublisher{}
	svc.Auth = &AuthService{Users: users, Cache: cache}
	svc.Index = idx
	svc.Jobs = jobs

	u := &entity.User{ID: ownerA, Username: "alice", Email: "a@example.com", Role: entity.RoleUser}
	users.On("GetByID", mock.Anything, ownerA).Return(u, nil)
	users.On("DeleteWithTasks", mock.Anything, ownerA).Return(int64(4), nil).Once()
	cache.On("Delete", mock.Anything, ownerA).Return(nil).Once()
	idx.On("DeleteByOwner", mock.Anything, ownerA).Return(errors.New("es down")).Once()
	jobs.On("PublishJSON", mock.Anything, mock.MatchedBy(func(j mailer.EmailJob) bool {
		return j.To == "a@example.com" && j.Template == templates.AccountDeleted && j.Data["TaskCount"] == float64(4)
	})).Return(nil).Once()

	require.NoError(t, svc.DeleteUser(context.Background(), adminID, ownerA))

	users.AssertExpectations(t)
	cache.AssertExpectations(t)
	idx.AssertExpectations(t)
	jobs.AssertExpectations(t)
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, users, _ := newAdminService()
	want := []*entity.User{{ID: ownerB}, {ID: ownerA}}
	users.On("List", mock.Anything).Return(want, nil)

	got, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
