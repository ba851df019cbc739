package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/directory"
	"pixelsmith.org/internal/ids"
)

const (
	otpValidity    = 10 * time.Minute
	resendCooldown = time.Minute
	noTeamName     = "No Team"
)

// Service implements the account lifecycle. Token issuance goes through the
// injected codec; all store lookups go through the directory contracts.
type Service struct {
	codec   *auth.Codec
	users   directory.UserStore
	teams   directory.TeamStore
	signups SignUpStore
	mailer  OTPMailer
	google  Provider
	now     func() time.Time
}

// NewService constructs the identity service.
func NewService(codec *auth.Codec, users directory.UserStore, teams directory.TeamStore, signups SignUpStore, mailer OTPMailer, google Provider) *Service {
	return &Service{
		codec:   codec,
		users:   users,
		teams:   teams,
		signups: signups,
		mailer:  mailer,
		google:  google,
		now:     time.Now,
	}
}

// IssuedToken is a freshly signed session credential.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// SignIn authenticates email+password and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*IssuedToken, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, auth.Deny(auth.CodeUserNotFound, "No account found with this email.")
		}
		return nil, err
	}
	// OAuth-provisioned accounts have no password; same message as a wrong
	// password so the response does not reveal the account type.
	if user.PasswordHash == nil || !auth.VerifySecret(*user.PasswordHash, password) {
		return nil, auth.Deny(auth.CodeInvalidCredentials, "The password you provided is incorrect.")
	}
	return s.issueFor(user)
}

// RequestSignUp starts the OTP flow for a new account. A previous pending
// request for the same email is overwritten.
func (s *Service) RequestSignUp(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return auth.Deny(auth.CodeEmailTaken, "An account with this email already exists.")
	} else if !errors.Is(err, auth.ErrNotFound) {
		return err
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	passwordHash, err := auth.HashSecret(password)
	if err != nil {
		return err
	}
	otpHash, err := auth.HashSecret(otp)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	req := &SignUpRequest{
		ID:           ids.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		OTPHash:      otpHash,
		ExpiresAt:    now.Add(otpValidity),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prev, err := s.signups.FindByEmail(ctx, email); err == nil {
		req.ID = prev.ID
		req.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, auth.ErrNotFound) {
		return err
	}
	if err := s.signups.Upsert(ctx, req); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, otp)
}

// ResendOTP re-issues the one-time code, at most once per minute.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	prev, err := s.signups.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeSignUpReqNotFound, "No pending sign-up request found for this email.")
		}
		return err
	}
	if s.now().Before(prev.UpdatedAt.Add(resendCooldown)) {
		return auth.Deny(auth.CodeTooManyRequests, "Please wait a moment before requesting a new code.")
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	otpHash, err := auth.HashSecret(otp)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	prev.OTPHash = otpHash
	prev.ExpiresAt = now.Add(otpValidity)
	prev.UpdatedAt = now
	if err := s.signups.Upsert(ctx, prev); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, otp)
}

// VerifySignUp consumes a pending request and creates a GUEST user.
func (s *Service) VerifySignUp(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	req, err := s.signups.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeSignUpReqNotFound, "No pending sign-up request found.")
		}
		return err
	}
	expired := req.ExpiresAt.Before(s.now())
	if expired || !auth.VerifySecret(req.OTPHash, otp) {
		return auth.Deny(auth.CodeInvalidOTP, "Invalid or expired verification code.")
	}

	now := s.now().UTC()
	passwordHash := req.PasswordHash
	user := &directory.User{
		ID:           ids.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &passwordHash,
		Roles:        []auth.Role{auth.RoleGuest},
		Designation:  auth.DesignationNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	imgKey := defaultProfileImgKey(user.ID)
	user.ProfileImgKey = &imgKey
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	return s.signups.Delete(ctx, req.ID)
}

// SignInWithGoogle exchanges an OAuth code, provisioning a GUEST account on
// first login, and issues a session token.
func (s *Service) SignInWithGoogle(ctx context.Context, code string) (*IssuedToken, error) {
	ident, err := s.google.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, ErrProviderRejected) {
			return nil, auth.Deny(auth.CodeOAuthFailed, "Unable to verify code with Google.")
		}
		return nil, err
	}
	if !ident.EmailVerified {
		return nil, auth.Deny(auth.CodeOAuthFailed, "Google account email not verified.")
	}

	email := normalizeEmail(ident.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, auth.ErrNotFound) {
		user, err = s.provisionOAuthUser(ctx, ident, email)
	}
	if err != nil {
		return nil, err
	}
	return s.issueFor(user)
}

func (s *Service) provisionOAuthUser(ctx context.Context, ident Identity, email string) (*directory.User, error) {
	name := strings.TrimSpace(ident.Name)
	if name == "" {
		name = "Unnamed User"
	}
	now := s.now().UTC()
	user := &directory.User{
		ID:          ids.New(),
		Name:        name,
		Email:       email,
		Roles:       []auth.Role{auth.RoleGuest},
		Designation: auth.DesignationNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	imgKey := ident.Picture
	if imgKey == "" {
		imgKey = defaultProfileImgKey(user.ID)
	}
	user.ProfileImgKey = &imgKey
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the caller's profile with the team name resolved.
func (s *Service) Me(ctx context.Context, session *auth.Session) (*Profile, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			// Invariant violation, not a denial: the extractor already
			// resolved this session against the store.
			return nil, fmt.Errorf("identity: session exists but user %s not found", session.UserID)
		}
		return nil, err
	}
	team := ProfileTeam{Name: noTeamName}
	if user.TeamID != nil {
		if t, err := s.teams.FindByID(ctx, *user.TeamID); err == nil {
			team = ProfileTeam{ID: user.TeamID, Name: t.Name}
		} else if !errors.Is(err, auth.ErrNotFound) {
			return nil, err
		}
	}
	user.PasswordHash = nil
	return &Profile{User: *user, Team: team}, nil
}

// ChangePassword verifies the current password (when one is set) and stores
// a new hash.
func (s *Service) ChangePassword(ctx context.Context, session *auth.Session, current, next string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return fmt.Errorf("identity: session exists but user %s not found", session.UserID)
		}
		return err
	}
	if user.PasswordHash != nil && !auth.VerifySecret(*user.PasswordHash, current) {
		return auth.Deny(auth.CodeInvalidCredentials, "The password you provided is incorrect.")
	}
	hash, err := auth.HashSecret(next)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, user.ID, hash)
}

func (s *Service) issueFor(user *directory.User) (*IssuedToken, error) {
	token, expiresAt, err := s.codec.Issue(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultProfileImgKey(userID string) string {
	return fmt.Sprintf("user-assets/%s/profileImage", userID)
}
