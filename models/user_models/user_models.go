package user_models

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/argon2"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
)

// Argon2id parameters.
const (
	Memory      = 64 * 1024
	Iterations  = 3
	Parallelism = 4
	SaltLength  = 16
	KeyLength   = 64
)

const refreshTokenPrefix = "refresh_token:"

// ErrInvalidCredentials is returned for both unknown users and wrong
// passwords so login failures stay indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an account record. Role decides which side of the marketplace the
// account operates on; PhoneNumber is the contact the booking engine
// denormalizes into bookings.
type User struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	PhoneNumber     *string   `json:"phoneNumber"`
	IsVerifiedEmail bool      `json:"isVerifiedEmail"`
	TokenVersion    int       `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func generateSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword hashes a password using Argon2id.
func HashPassword(password string) (string, error) {
	salt, err := generateSalt(SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)

	saltBase64 := base64.RawStdEncoding.EncodeToString(salt)
	hashBase64 := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("%s$%s", saltBase64, hashBase64), nil
}

// VerifyPassword verifies a password against a stored hash.
func VerifyPassword(password, storedHash string) (bool, error) {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 2 {
		return false, errors.New("invalid stored hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, err
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

// CreateUser registers a new account and returns the stored record.
func CreateUser(ctx context.Context, db *pgxpool.Pool, username, email, password, role string, phoneNumber *string) (*User, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	userID, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUIDv7: %w", err)
	}

	query := `INSERT INTO users (id, username, email, password_hash, role, phone_number)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING created_at, updated_at`

	user := &User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		PhoneNumber:  phoneNumber,
	}
	err = db.QueryRow(ctx, query, userID, username, email, passwordHash, role, phoneNumber).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", username, err)
		return nil, err
	}

	logger.InfoLogger.Infof("User %s registered with role %s", user.ID, role)
	return user, nil
}

// LoginUser authenticates a user and issues JWT access + refresh tokens. The
// refresh token is held in Redis so logout and rotation can revoke it.
func LoginUser(ctx context.Context, db *pgxpool.Pool, rdb *redislib.Client, email, password string) (*User, string, string, error) {
	user, err := GetUserByEmail(ctx, db, email)
	if err != nil {
		logger.ErrorLogger.Errorf("Login failed for %s: %v", email, err)
		return nil, "", "", ErrInvalidCredentials
	}

	valid, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		logger.ErrorLogger.Errorf("Invalid password attempt for user %s", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := shared_models.GenerateAccessToken(user.ID, user.Role, shared_models.AccessTokenExpiry)
	if err != nil {
		return nil, "", "", errors.New("failed to generate access token")
	}
	refreshToken, err := shared_models.GenerateRefreshToken(user.ID, user.Role, shared_models.RefreshTokenExpiry)
	if err != nil {
		return nil, "", "", errors.New("failed to generate refresh token")
	}

	if rdb != nil {
		err = rdb.Set(ctx, refreshTokenPrefix+user.ID.String(), refreshToken, shared_models.RefreshTokenExpiry).Err()
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to store refresh token in Redis for user %s: %v", user.ID, err)
			return nil, "", "", fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	logger.InfoLogger.Infof("Tokens generated for user %s", user.ID)
	return user, accessToken, refreshToken, nil
}

// LogoutUser drops the stored refresh token.
func LogoutUser(ctx context.Context, rdb *redislib.Client, userID uuid.UUID) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, refreshTokenPrefix+userID.String()).Err()
}

const userColumns = `id, username, email, password_hash, role, phone_number, is_verified_email, token_version, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.PhoneNumber, &user.IsVerifiedEmail, &user.TokenVersion,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID fetches a user by ID.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// GetUserByEmail fetches a user by email.
func GetUserByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*User, error) {
	row := db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch user by email: %v", err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// ProfileUpdate is a sparse profile patch: nil means "leave unchanged".
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// UpdateProfile applies a sparse patch over recognized fields only.
func UpdateProfile(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, patch ProfileUpdate) (*User, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	arg := 1

	if patch.Username != nil {
		sets = append(sets, fmt.Sprintf("username = $%d", arg))
		args = append(args, *patch.Username)
		arg++
	}
	if patch.PhoneNumber != nil {
		sets = append(sets, fmt.Sprintf("phone_number = $%d", arg))
		args = append(args, *patch.PhoneNumber)
		arg++
	}
	if len(sets) == 0 {
		return nil, errors.New("no recognized fields to update")
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), arg)

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update profile for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return GetUserByID(ctx, db, userID)
}
