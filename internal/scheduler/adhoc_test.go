package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

func TestCheckService_RecordsResult(t *testing.T) {
	dir := &staticDir{}
	dir.set(svc(7, "http://a.test", 60))
	sink := &countingSink{}
	sup := NewSupervisor(zap.NewNop(), dir, newFakeChecker(), sink, time.Second)

	res, err := sup.CheckService(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, res.Up)
	assert.Equal(t, 200, res.HTTPStatus)
	assert.Equal(t, "svc-7", res.Name)
	assert.Equal(t, 1, sink.countFor(7))
	assert.False(t, sup.Status().Running, "ad hoc checks do not start loops")
}

func TestCheckService_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl)
	dir.EXPECT().Get(gomock.Any(), domain.ServiceID(99)).
		Return(domain.Service{}, fmt.Errorf("service 99: %w", repo.ErrNotFound))

	sink := &countingSink{}
	sup := NewSupervisor(zap.NewNop(), dir, newFakeChecker(), sink, time.Second)

	_, err := sup.CheckService(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	assert.Equal(t, 0, sink.count())
}

func TestCheckAll_ProbesEveryService(t *testing.T) {
	dir := &staticDir{}
	dir.set(svc(1, "http://a.test", 60), svc(2, "http://b.test", 60), svc(3, "http://c.test", 60))
	sink := &countingSink{}
	sup := NewSupervisor(zap.NewNop(), dir, newFakeChecker(), sink, time.Second)

	out, err := sup.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 3, sink.count())
	for i, r := range out {
		assert.Equal(t, domain.ServiceID(i+1), r.ServiceID)
	}
}

func TestCheckAll_DirectoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl)
	dir.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

	sup := NewSupervisor(zap.NewNop(), dir, newFakeChecker(), &countingSink{}, time.Second)
	out, err := sup.CheckAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
}
