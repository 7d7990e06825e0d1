// Package account owns sign-up, sign-in, email confirmation and role
// changes. Session cookies are handled by system/auth; this package works
// with user ids and publishes every auth state change on an Events hub.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	confirmationstore "github.com/dalemusser/mathmastery/internal/app/store/confirmations"
	profilestore "github.com/dalemusser/mathmastery/internal/app/store/profiles"
	userstore "github.com/dalemusser/mathmastery/internal/app/store/users"
	"github.com/dalemusser/mathmastery/internal/app/system/authutil"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
	"github.com/dalemusser/mathmastery/internal/app/system/normalize"
	"github.com/dalemusser/mathmastery/internal/app/system/ratelimit"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config controls account behaviour.
type Config struct {
	RequireEmailConfirmation bool
	BaseURL                  string // used in confirmation links
	SiteName                 string
	ConfirmationExpiry       time.Duration
}

type Service struct {
	users    *userstore.Store
	profiles *profilestore.Store
	confirms *confirmationstore.Store
	mail     mailer.Sender
	events   *Events
	limiter  *ratelimit.LoginLimiter
	cfg      Config
	log      *zap.Logger
}

func NewService(db *mongo.Database, mail mailer.Sender, events *Events, cfg Config, log *zap.Logger) *Service {
	if cfg.ConfirmationExpiry <= 0 {
		cfg.ConfirmationExpiry = confirmationstore.DefaultExpiry
	}
	if cfg.SiteName == "" {
		cfg.SiteName = models.DefaultSiteName
	}
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = NewEvents()
	}
	return &Service{
		users:    userstore.New(db),
		profiles: profilestore.New(db),
		confirms: confirmationstore.New(db, cfg.ConfirmationExpiry),
		mail:     mail,
		events:   events,
		cfg:      cfg,
		log:      log,
	}
}

// SetLoginLimiter enables rate limiting of SignIn.
func (s *Service) SetLoginLimiter(l *ratelimit.LoginLimiter) { s.limiter = l }

// Events returns the hub the service publishes on.
func (s *Service) Events() *Events { return s.events }

// Current is a signed-in user with its profile. Profile is nil when it
// could not be loaded or created.
type Current struct {
	User    models.User
	Profile *models.UserProfile
}

// DisplayName prefers the profile names, then sign-up metadata, then email.
func (c Current) DisplayName() string {
	if c.Profile != nil {
		if n := c.Profile.FullName(); n != "" {
			return n
		}
	}
	p := models.UserProfile{FirstName: c.User.Metadata.FirstName, LastName: c.User.Metadata.LastName}
	if n := p.FullName(); n != "" {
		return n
	}
	return c.User.Email
}

// CurrentUser loads a user and its profile, creating the profile from the
// sign-up metadata when it does not exist yet. Profile problems are logged
// and never fail the call.
func (s *Service) CurrentUser(ctx context.Context, id primitive.ObjectID) (*Current, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &Current{User: *u, Profile: s.ensureProfile(ctx, u)}, nil
}

func (s *Service) ensureProfile(ctx context.Context, u *models.User) *models.UserProfile {
	p, err := s.profiles.GetByUserID(ctx, u.ID)
	if err == nil {
		return p
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		s.log.Warn("profile fetch failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		return nil
	}

	created, err := s.profiles.Create(ctx, models.UserProfile{
		UserID:    u.ID,
		FirstName: u.Metadata.FirstName,
		LastName:  u.Metadata.LastName,
		Role:      u.Role,
	})
	switch {
	case err == nil:
		return &created
	case errors.Is(err, profilestore.ErrExists):
		// Created concurrently by another request.
		if p, err := s.profiles.GetByUserID(ctx, u.ID); err == nil {
			return p
		}
		return nil
	default:
		s.log.Warn("profile create failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		return nil
	}
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email     string `form:"email" json:"email" validate:"required,email"`
	Password  string `form:"password" json:"password" validate:"required,min=6"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=100"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=100"`
}

// SignUp creates a student account. When email confirmation is required a
// confirmation link is mailed and the account cannot sign in until it is
// used; otherwise the account is confirmed immediately.
func (s *Service) SignUp(ctx context.Context, in SignUpInput, meta RequestMeta) (*models.User, error) {
	in.Email = normalize.Email(in.Email)
	if err := inputval.Struct(in); err != nil {
		return nil, err
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		AuthMethod:   models.AuthMethodPassword,
		Metadata:     models.UserMetadata{FirstName: in.FirstName, LastName: in.LastName},
	}
	if !s.cfg.RequireEmailConfirmation {
		now := time.Now().UTC()
		u.EmailConfirmedAt = &now
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.ensureProfile(ctx, &created)

	if s.cfg.RequireEmailConfirmation {
		if err := s.sendConfirmation(ctx, &created); err != nil {
			// The account exists; the user can ask for a new link.
			s.log.Error("confirmation email failed", zap.String("user_id", created.ID.Hex()), zap.Error(err))
		}
	}

	s.events.Publish(ctx, Event{
		Kind:   KindSignedUp,
		UserID: created.ID,
		Email:  created.Email,
		Role:   created.Role,
		Method: created.AuthMethod,
		Meta:   meta,
	})
	return &created, nil
}

// ResendConfirmation issues a fresh confirmation link. Unknown or already
// confirmed addresses succeed silently.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	if u.IsConfirmed() {
		return nil
	}
	return s.sendConfirmation(ctx, u)
}

func (s *Service) sendConfirmation(ctx context.Context, u *models.User) error {
	token, err := s.confirms.Create(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("create confirmation: %w", err)
	}
	if s.mail == nil {
		return nil
	}
	msg := mailer.BuildConfirmationEmail(mailer.ConfirmationEmailData{
		SiteName:    s.cfg.SiteName,
		FirstName:   u.Metadata.FirstName,
		ConfirmLink: s.ConfirmLink(token),
		ExpiresIn:   formatExpiry(s.cfg.ConfirmationExpiry),
	})
	msg.To = u.Email
	return s.mail.Send(ctx, msg)
}

// ConfirmLink builds the absolute confirmation URL for token.
func (s *Service) ConfirmLink(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/auth/confirm?token=" + url.QueryEscape(token)
}

// ConfirmEmail consumes a confirmation token and marks the address
// confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, token string, meta RequestMeta) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	userID, err := s.confirms.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, confirmationstore.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}
	if err := s.users.MarkConfirmed(ctx, userID, time.Now()); err != nil {
		return nil, fmt.Errorf("mark confirmed: %w", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	s.events.Publish(ctx, Event{Kind: KindEmailConfirmed, UserID: u.ID, Email: u.Email, Role: u.Role, Meta: meta})
	return u, nil
}

// SignIn checks a password login. The caller stores the returned user's id
// in the session.
func (s *Service) SignIn(ctx context.Context, email, password string, meta RequestMeta) (*models.User, error) {
	email = normalize.Email(email)

	if s.limiter != nil {
		if ok, limit := s.limiter.Check(meta.IP, email); !ok {
			s.events.Publish(ctx, Event{Kind: KindSignInFailed, Email: email, Reason: ReasonRateLimit, Method: limit, Meta: meta})
			return nil, ErrRateLimited
		}
	}

	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.failSignIn(meta.IP, email)
			s.events.Publish(ctx, Event{Kind: KindSignInFailed, Email: email, Reason: ReasonUserNotFound, Meta: meta})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		s.failSignIn(meta.IP, email)
		s.events.Publish(ctx, Event{Kind: KindSignInFailed, UserID: u.ID, Email: email, Reason: ReasonWrongPassword, Meta: meta})
		return nil, ErrInvalidCredentials
	}

	if s.cfg.RequireEmailConfirmation && !u.IsConfirmed() {
		s.events.Publish(ctx, Event{Kind: KindSignInFailed, UserID: u.ID, Email: email, Reason: ReasonUnconfirmed, Meta: meta})
		return nil, ErrEmailNotConfirmed
	}

	s.completeSignIn(ctx, u, models.AuthMethodPassword, meta)
	if s.limiter != nil {
		s.limiter.ResetEmail(email)
	}
	return u, nil
}

// failSignIn counts a rejected credential against the login limiter.
func (s *Service) failSignIn(ip, email string) {
	if s.limiter != nil {
		s.limiter.Fail(ip, email)
	}
}

func (s *Service) completeSignIn(ctx context.Context, u *models.User, method string, meta RequestMeta) {
	now := time.Now().UTC()
	if err := s.users.TouchSignIn(ctx, u.ID, now); err != nil {
		s.log.Warn("record sign-in failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	} else {
		u.LastSignInAt = &now
	}
	s.events.Publish(ctx, Event{Kind: KindSignedIn, UserID: u.ID, Email: u.Email, Role: u.Role, Method: method, Meta: meta})
}

// SignOut records a sign-out. Clearing the session is the caller's job.
func (s *Service) SignOut(ctx context.Context, userID string, meta RequestMeta) {
	oid, _ := primitive.ObjectIDFromHex(userID)
	s.events.Publish(ctx, Event{Kind: KindSignedOut, UserID: oid, Meta: meta})
}

// GoogleIdentity is the verified identity returned by Google.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// GoogleSignIn resolves a Google identity to an account: by Google id, then
// by email (linking the account), else a new confirmed student account.
func (s *Service) GoogleSignIn(ctx context.Context, id GoogleIdentity, meta RequestMeta) (*models.User, error) {
	if id.Subject == "" || !id.EmailVerified || normalize.Email(id.Email) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByGoogleID(ctx, id.Subject)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("load user by google id: %w", err)
	}

	if u == nil {
		u, err = s.users.GetByEmail(ctx, id.Email)
		switch {
		case err == nil:
			if err := s.users.LinkGoogle(ctx, u.ID, id.Subject); err != nil {
				return nil, fmt.Errorf("link google: %w", err)
			}
		case errors.Is(err, mongo.ErrNoDocuments):
			u, err = s.createGoogleUser(ctx, id, meta)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("load user: %w", err)
		}
	}

	s.completeSignIn(ctx, u, models.AuthMethodGoogle, meta)
	return u, nil
}

func (s *Service) createGoogleUser(ctx context.Context, id GoogleIdentity, meta RequestMeta) (*models.User, error) {
	now := time.Now().UTC()
	created, err := s.users.Create(ctx, models.User{
		Email:            id.Email,
		Role:             models.RoleStudent,
		AuthMethod:       models.AuthMethodGoogle,
		GoogleID:         id.Subject,
		Metadata:         models.UserMetadata{FirstName: id.GivenName, LastName: id.FamilyName},
		EmailConfirmedAt: &now,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.ensureProfile(ctx, &created)
	s.events.Publish(ctx, Event{
		Kind:   KindSignedUp,
		UserID: created.ID,
		Email:  created.Email,
		Role:   created.Role,
		Method: models.AuthMethodGoogle,
		Meta:   meta,
	})
	return &created, nil
}

// SetRoleByEmail changes the role of the account with email. users.role is
// authoritative; the profile mirror is updated best-effort. An admin may
// not demote themselves.
func (s *Service) SetRoleByEmail(ctx context.Context, actorID primitive.ObjectID, actorEmail, email, role string, meta RequestMeta) (*models.User, error) {
	role = normalize.Role(role)
	email = normalize.Email(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	if role != models.RoleAdmin && email == normalize.Email(actorEmail) {
		return nil, ErrSelfDemotion
	}

	u, err := s.users.SetRoleByEmail(ctx, email, role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set role: %w", err)
	}

	if err := s.profiles.SetRole(ctx, u.ID, role); err != nil {
		s.log.Warn("profile role mirror failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}

	s.events.Publish(ctx, Event{
		Kind:    KindRoleChanged,
		UserID:  u.ID,
		ActorID: actorID,
		Email:   u.Email,
		Role:    role,
		Meta:    meta,
	})
	return u, nil
}

// EnsureAdmin makes sure the account with email exists and holds the admin
// role. A missing account is created as a confirmed Google account so the
// owner can sign in with Google.
func (s *Service) EnsureAdmin(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			return nil
		}
		if _, err := s.users.SetRoleByEmail(ctx, email, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		if err := s.profiles.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			s.log.Warn("profile role mirror failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
		s.log.Info("promoted configured admin", zap.String("email", email))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		now := time.Now().UTC()
		created, err := s.users.Create(ctx, models.User{
			Email:            email,
			Role:             models.RoleAdmin,
			AuthMethod:       models.AuthMethodGoogle,
			EmailConfirmedAt: &now,
		})
		if err != nil && !errors.Is(err, userstore.ErrDuplicateEmail) {
			return fmt.Errorf("create admin: %w", err)
		}
		if err == nil {
			s.ensureProfile(ctx, &created)
			s.log.Info("created configured admin", zap.String("email", email))
		}
		return nil

	default:
		return fmt.Errorf("load admin: %w", err)
	}
}

func formatExpiry(d time.Duration) string {
	hours := int(d.Hours())
	switch {
	case hours >= 2:
		return fmt.Sprintf("%d heures", hours)
	case hours == 1:
		return "1 heure"
	}
	minutes := int(d.Minutes())
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// ProfileInput is the profile form.
type ProfileInput struct {
	FirstName string `form:"first_name" json:"first_name" validate:"max=100"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=100"`
}

// UpdateProfile sets the names shown for a user.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := inputval.Struct(in); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if err := s.profiles.SetNames(ctx, u.ID, in.FirstName, in.LastName, u.Role); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// ChangePassword replaces the password of a password account after checking
// the current one. Google-only accounts have no password to change.
func (s *Service) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string, meta RequestMeta) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if u.PasswordHash == "" {
		return ErrNoPassword
	}
	if !authutil.CheckPassword(current, u.PasswordHash) {
		return ErrWrongPassword
	}
	if err := authutil.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	s.events.Publish(ctx, Event{Kind: KindPasswordChanged, UserID: u.ID, Email: u.Email, Role: u.Role, Meta: meta})
	return nil
}
