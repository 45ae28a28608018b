package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"ridehail/pkg/apperr"
	"ridehail/pkg/jwt"
	"ridehail/pkg/validation"
)

// Service contains account business logic.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a user service backed by the given pool.
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Register creates a new account and returns a JWT.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if !validation.ValidateName(req.Name) {
		return nil, apperr.Validation("name", "name must be 2-200 characters")
	}
	if !validation.ValidateEmail(req.Email) {
		return nil, apperr.Validation("email", "invalid email")
	}
	if !validation.ValidatePhone(req.Phone) {
		return nil, apperr.Validation("phone", "invalid phone number")
	}
	if !validation.ValidatePassword(req.Password) {
		return nil, apperr.Validation("password", "password must be 6-100 characters")
	}
	switch req.UserType {
	case jwt.RoleCustomer, jwt.RoleDriver, jwt.RoleAdmin:
	case "":
		req.UserType = jwt.RoleCustomer
	default:
		return nil, apperr.Validation("user_type", "user_type must be customer, driver or admin")
	}

	var exists bool
	_ = s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)", req.Email).Scan(&exists)
	if exists {
		return nil, apperr.Validation("email", "email already exists")
	}
	_ = s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE phone=$1)", req.Phone).Scan(&exists)
	if exists {
		return nil, apperr.Validation("phone", "phone already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err = s.db.Exec(ctx,
		`INSERT INTO users (id,name,email,phone,password_hash,user_type) VALUES ($1,$2,$3,$4,$5,$6)`,
		id, req.Name, req.Email, req.Phone, string(hash), req.UserType)
	if err != nil {
		return nil, err
	}

	// Drivers also get a presence row so heartbeats have somewhere to land.
	if req.UserType == jwt.RoleDriver {
		_, _ = s.db.Exec(ctx, `INSERT INTO driver_details (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, id)
	}

	token, err := jwt.Generate(id, req.Phone, req.UserType)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &User{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone, UserType: req.UserType},
	}, nil
}

// Login authenticates by phone and password and returns a JWT.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var u User
	var hash string
	err := s.db.QueryRow(ctx,
		`SELECT id,name,email,phone,password_hash,user_type,role_id,created_at FROM users WHERE phone=$1`,
		req.Phone).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &hash, &u.UserType, &u.RoleID, &u.CreatedAt)
	if err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := jwt.Generate(u.ID, u.Phone, u.UserType)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: &u}, nil
}

// Exists reports whether a user row is still present. The realtime
// gateway calls this before admitting a token whose subject may have
// been deleted since issuance.
func (s *Service) Exists(ctx context.Context, id string) bool {
	var ok bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)", id).Scan(&ok); err != nil {
		return false
	}
	return ok
}

// GetByID fetches a single user by primary key.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx,
		`SELECT id,name,email,phone,user_type,role_id,profile_pic,created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.UserType, &u.RoleID, &u.ProfilePic, &u.CreatedAt)
	if err != nil {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}
