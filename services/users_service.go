package services

import (
	"context"
	"strings"

	"github.com/apex/log"
	"golang.org/x/crypto/bcrypt"

	"safe2gether/auth"
	"safe2gether/models"
	"safe2gether/supabase"
)

// TokenIssuer signs access tokens for authenticated users.
// *auth.Manager is the production implementation.
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
}

// UsersService manages accounts, login and the password reset flow.
type UsersService struct {
	store    RecordStore
	tokens   TokenIssuer
	resets   auth.ResetTokenStore
	notifier Notifier
}

// NewUsersService creates a users service. notifier may be nil,
// disabling reset emails.
func NewUsersService(store RecordStore, tokens TokenIssuer, resets auth.ResetTokenStore, notifier Notifier) *UsersService {
	return &UsersService{store: store, tokens: tokens, resets: resets, notifier: notifier}
}

// List returns every account without credential fields.
func (s *UsersService) List(ctx context.Context) ([]models.PublicUser, error) {
	users := []models.User{}
	if err := s.store.List(ctx, TableUsers, supabase.ListOptions{}, &users); err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// ListByIDs returns a batch of accounts in one store round-trip.
func (s *UsersService) ListByIDs(ctx context.Context, ids []int64) ([]models.PublicUser, error) {
	if len(ids) == 0 {
		return []models.PublicUser{}, nil
	}
	users := []models.User{}
	if err := s.store.List(ctx, TableUsers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.In("id", ids)},
	}, &users); err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// Get returns a single account by id.
func (s *UsersService) Get(ctx context.Context, id int64) (*models.PublicUser, error) {
	var user models.User
	if err := s.store.Get(ctx, TableUsers, id, &user); err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// Create registers an account. Usernames are unique ignoring case and
// the password is stored as a bcrypt digest.
func (s *UsersService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.PublicUser, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, validationErrorf("user must not be empty")
	}
	existing := []models.User{}
	if err := s.store.List(ctx, TableUsers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Ilike("user", username)},
		Limit:   1,
	}, &existing); err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, conflictErrorf("username %q is already taken", username)
	}

	fields := map[string]any{
		"user":  username,
		"email": req.Email,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["psswd"] = string(hash)
	}

	var created models.User
	if err := s.store.Create(ctx, TableUsers, fields, &created); err != nil {
		return nil, err
	}
	public := created.Public()
	return &public, nil
}

// Update patches an account. A new password is re-hashed before
// storage.
func (s *UsersService) Update(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.PublicUser, error) {
	fields := map[string]any{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, validationErrorf("user must not be empty")
		}
		fields["user"] = username
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["psswd"] = string(hash)
	}

	var updated models.User
	if err := s.store.Update(ctx, TableUsers, id, fields, &updated); err != nil {
		return nil, err
	}
	public := updated.Public()
	return &public, nil
}

// Delete removes an account.
func (s *UsersService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableUsers, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// Login verifies credentials and issues an access token. Legacy rows
// holding a plaintext password still authenticate and are upgraded to a
// bcrypt digest on the way through.
func (s *UsersService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	users := []models.User{}
	if err := s.store.List(ctx, TableUsers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user", req.Username)},
		Limit:   1,
	}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, supabase.ErrNotFound
	}
	user := users[0]

	if !s.passwordMatches(ctx, &user, req.Password) {
		return nil, validationErrorf("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        &public,
	}, nil
}

// passwordMatches checks the supplied password against the stored
// credential, accepting a legacy plaintext value and upgrading it.
func (s *UsersService) passwordMatches(ctx context.Context, user *models.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
		return true
	}
	if user.PasswordHash != password {
		return false
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err == nil {
		var updated models.User
		if err := s.store.Update(ctx, TableUsers, user.ID, map[string]any{"psswd": string(hash)}, &updated); err != nil {
			log.WithError(err).Warnf("User %d: password hash upgrade failed", user.ID)
		}
	}
	return true
}

// RequestPasswordReset issues a reset token and mails it to the given
// address. An unknown address gets the same acknowledgement as a known
// one, so the endpoint does not leak which emails have accounts.
func (s *UsersService) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	ack := &models.PasswordResetResponse{
		Message: "Si el correo existe, se ha enviado un enlace de recuperación",
	}

	users := []models.User{}
	if err := s.store.List(ctx, TableUsers, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Ilike("email", req.Email)},
		Limit:   1,
	}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return ack, nil
	}
	user := users[0]

	token := s.resets.Issue(user.ID)
	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(user.Email, user.Username, token); err != nil {
			log.WithError(err).Warnf("User %d: password reset email failed", user.ID)
		}
	}
	return ack, nil
}

// ConfirmPasswordReset redeems a reset token and replaces the account
// password.
func (s *UsersService) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirm) (*models.PasswordResetResponse, error) {
	userID, ok := s.resets.Redeem(req.Token)
	if !ok {
		return nil, validationErrorf("invalid or expired reset token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var updated models.User
	if err := s.store.Update(ctx, TableUsers, userID, map[string]any{"psswd": string(hash)}, &updated); err != nil {
		return nil, err
	}
	return &models.PasswordResetResponse{Message: "Contraseña actualizada"}, nil
}

func publicUsers(users []models.User) []models.PublicUser {
	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public
}
