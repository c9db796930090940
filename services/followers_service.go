package services

import (
	"context"

	"safe2gether/models"
	"safe2gether/supabase"
)

// FollowersService manages follow relationships between users.
type FollowersService struct {
	store RecordStore
}

func NewFollowersService(store RecordStore) *FollowersService {
	return &FollowersService{store: store}
}

// List returns every follow relationship.
func (s *FollowersService) List(ctx context.Context) ([]models.Follower, error) {
	followers := []models.Follower{}
	err := s.store.List(ctx, TableFollowers, supabase.ListOptions{}, &followers)
	return followers, err
}

// ListFollowers returns the users following userID.
func (s *FollowersService) ListFollowers(ctx context.Context, userID int64) ([]models.Follower, error) {
	followers := []models.Follower{}
	err := s.store.List(ctx, TableFollowers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("seguido_id", userID)},
	}, &followers)
	return followers, err
}

// ListFollowing returns the users userID follows.
func (s *FollowersService) ListFollowing(ctx context.Context, userID int64) ([]models.Follower, error) {
	followers := []models.Follower{}
	err := s.store.List(ctx, TableFollowers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("seguidor_id", userID)},
	}, &followers)
	return followers, err
}

// Get returns a single follow relationship by id.
func (s *FollowersService) Get(ctx context.Context, id int64) (*models.Follower, error) {
	var follower models.Follower
	if err := s.store.Get(ctx, TableFollowers, id, &follower); err != nil {
		return nil, err
	}
	return &follower, nil
}

// Follow creates a follow relationship. Self-follows are rejected and
// an existing pair is a conflict rather than a second row.
func (s *FollowersService) Follow(ctx context.Context, req *models.CreateFollowerRequest) (*models.Follower, error) {
	if req.FollowerID == req.FollowedID {
		return nil, validationErrorf("a user cannot follow themselves")
	}
	existing, err := s.pair(ctx, req.FollowerID, req.FollowedID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, conflictErrorf("user %d already follows user %d", req.FollowerID, req.FollowedID)
	}

	fields := map[string]any{
		"seguidor_id": req.FollowerID,
		"seguido_id":  req.FollowedID,
	}
	var created models.Follower
	if err := s.store.Create(ctx, TableFollowers, fields, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Unfollow deletes the relationship identified by the (follower,
// followed) pair. A missing pair surfaces as NotFound.
func (s *FollowersService) Unfollow(ctx context.Context, followerID, followedID int64) (*DeleteResponse, error) {
	deleted, err := s.store.DeleteWhere(ctx, TableFollowers, []supabase.Filter{
		supabase.Eq("seguidor_id", followerID),
		supabase.Eq("seguido_id", followedID),
	})
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, supabase.ErrNotFound
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// Delete removes a relationship by row id.
func (s *FollowersService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableFollowers, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// IsFollowing reports whether the (follower, followed) pair exists.
func (s *FollowersService) IsFollowing(ctx context.Context, followerID, followedID int64) (*models.IsFollowingResponse, error) {
	existing, err := s.pair(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}
	return &models.IsFollowingResponse{IsFollowing: len(existing) > 0}, nil
}

func (s *FollowersService) pair(ctx context.Context, followerID, followedID int64) ([]models.Follower, error) {
	followers := []models.Follower{}
	err := s.store.List(ctx, TableFollowers, supabase.ListOptions{
		Filters: []supabase.Filter{
			supabase.Eq("seguidor_id", followerID),
			supabase.Eq("seguido_id", followedID),
		},
		Limit: 1,
	}, &followers)
	return followers, err
}
