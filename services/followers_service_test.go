package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe2gether/models"
	"safe2gether/supabase"
)

func TestFollowRejectsSelfFollow(t *testing.T) {
	service := NewFollowersService(newFakeStore())

	_, err := service.Follow(context.Background(), &models.CreateFollowerRequest{
		FollowerID: 7,
		FollowedID: 7,
	})

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestFollowRejectsDuplicatePair(t *testing.T) {
	service := NewFollowersService(newFakeStore())

	_, err := service.Follow(context.Background(), &models.CreateFollowerRequest{
		FollowerID: 1,
		FollowedID: 2,
	})
	require.NoError(t, err)

	_, err = service.Follow(context.Background(), &models.CreateFollowerRequest{
		FollowerID: 1,
		FollowedID: 2,
	})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestFollowAllowsReversePair(t *testing.T) {
	service := NewFollowersService(newFakeStore())

	_, err := service.Follow(context.Background(), &models.CreateFollowerRequest{FollowerID: 1, FollowedID: 2})
	require.NoError(t, err)
	_, err = service.Follow(context.Background(), &models.CreateFollowerRequest{FollowerID: 2, FollowedID: 1})
	assert.NoError(t, err)
}

func TestUnfollowByPair(t *testing.T) {
	store := newFakeStore()
	service := NewFollowersService(store)

	_, err := service.Follow(context.Background(), &models.CreateFollowerRequest{FollowerID: 1, FollowedID: 2})
	require.NoError(t, err)

	resp, err := service.Unfollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Deleted)
	assert.Equal(t, 0, store.count(TableFollowers))

	_, err = service.Unfollow(context.Background(), 1, 2)
	assert.ErrorIs(t, err, supabase.ErrNotFound)
}

func TestIsFollowing(t *testing.T) {
	service := NewFollowersService(newFakeStore())

	_, err := service.Follow(context.Background(), &models.CreateFollowerRequest{FollowerID: 1, FollowedID: 2})
	require.NoError(t, err)

	resp, err := service.IsFollowing(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, resp.IsFollowing)

	resp, err = service.IsFollowing(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.False(t, resp.IsFollowing)
}
