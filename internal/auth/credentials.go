package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/db/controller/role"
	"github.com/anindta/task-management-project/internal/db/controller/user"
	"github.com/anindta/task-management-project/internal/db/models"
)

// RegisterInput is a self-registration request. An empty or unknown Role
// falls back to models.DefaultRoleName.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Identity is the authenticated subject handed to the token service.
type Identity struct {
	UserID   uint64
	Username string
	RoleName string
}

// Store persists user credentials.
type Store struct {
	db     *gorm.DB
	hasher *Hasher
}

// NewStore creates a credential store.
func NewStore(db *gorm.DB, hasher *Hasher) *Store {
	return &Store{db: db, hasher: hasher}
}

// Register creates a user. The username is checked before anything is written.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, errUser := user.GetByUsername(tx, in.Username)
		if errUser == nil {
			return ErrUsernameTaken
		}

		if !errors.Is(errUser, user.ErrUserNotFound) {
			return fmt.Errorf("failed to check existing user: %w", errUser)
		}

		r, errRole := resolveRole(tx, in.Role)
		if errRole != nil {
			return errRole
		}

		u.RoleID = r.ID
		u.Role = *r

		if errCreate := tx.Omit("Role").Create(&u).Error; errCreate != nil {
			if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}

			return fmt.Errorf("failed to create user: %w", errCreate)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Str("role", u.Role.Name).
		Msg("user registered")

	return &u, nil
}

// VerifyLogin checks username and password and returns the identity for the token.
// An unknown user and a wrong password are reported as different errors.
func (s *Store) VerifyLogin(ctx context.Context, username, password string) (*Identity, error) {
	db := s.db.WithContext(ctx)

	u, err := user.GetByUsername(db, username)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to verify password")

		return nil, ErrBadPassword
	}

	if !ok {
		return nil, ErrBadPassword
	}

	if IsLegacyHash(u.Password) {
		s.upgradeHash(db, u.ID, password)
	}

	id := &Identity{UserID: u.ID, Username: u.Username, RoleName: u.Role.Name}
	if id.RoleName == "" {
		id.RoleName = models.DefaultRoleName
	}

	return id, nil
}

// upgradeHash replaces a bcrypt hash by an argon2id one after a successful login.
func (s *Store) upgradeHash(db *gorm.DB, userID uint64, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("failed to rehash legacy password")
		return
	}

	if err = db.Model(&models.User{}).Where("id = ?", userID).Update("password", hash).Error; err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("failed to store rehashed password")
	}
}

// resolveRole returns the requested role, else the default one, creating it when missing.
func resolveRole(tx *gorm.DB, name string) (*models.Role, error) {
	if name != "" {
		r, err := role.FindByName(tx, name)
		if err == nil {
			return r, nil
		}

		if !errors.Is(err, role.ErrRoleNotFound) {
			return nil, fmt.Errorf("failed to resolve role: %w", err)
		}

		log.Debug().Str("role", name).Msg("requested role not found, using default role")
	}

	r, err := role.FindByName(tx, models.DefaultRoleName)
	if err == nil {
		return r, nil
	}

	if !errors.Is(err, role.ErrRoleNotFound) {
		return nil, fmt.Errorf("failed to resolve default role: %w", err)
	}

	log.Warn().Str("role", models.DefaultRoleName).Msg("default role missing, creating it")

	r = &models.Role{Name: models.DefaultRoleName}
	if err = tx.Create(r).Error; err != nil {
		return nil, fmt.Errorf("failed to create default role: %w", err)
	}

	return r, nil
}
