package auth

import (
	"errors"
	"strings"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterSuperAdminRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

// POST /api/auth/register-super-admin
// Creates the protected admin account once. Refused when any admin exists.
func RegisterSuperAdminHandler(users store.UserStore, protectedEmail string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Password is required")
		}

		count, err := users.CountUsersByRole(c.UserContext(), models.RoleAdmin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check existing admins")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "An admin already exists")
		}

		hash, err := HashPassword(body.Password)
		if errors.Is(err, ErrPasswordTooShort) {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 6 characters")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Email:        protectedEmail,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if err := users.CreateUser(c.UserContext(), &user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fiber.NewError(fiber.StatusConflict, "User already exists")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// POST /api/auth/login
// Only accounts whose user record has the admin role get a token.
func LoginHandler(users store.UserStore, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
		}

		user, err := users.GetUserByEmail(c.UserContext(), body.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not sign in")
		}

		if !CheckPassword(user.PasswordHash, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		if user.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Access denied. Admin privileges required.")
		}

		token, err := GenerateToken(secret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// POST /api/auth/logout
// Tokens are stateless; the client drops its copy. When the request still
// carries a valid token, onLogout receives its user id so per-user state can
// be released. A missing or expired token is not an error.
func LogoutHandler(secret string, onLogout func(userID string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr, ok := bearerToken(c.Get("Authorization")); ok && onLogout != nil {
			if claims, err := ParseToken(secret, tokenStr); err == nil {
				onLogout(claims.UserID)
			}
		}
		return c.JSON(fiber.Map{"message": "Signed out"})
	}
}

// GET /api/auth/me
func MeHandler(users store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := Actor(c)
		user, err := users.GetUser(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load user")
		}
		return c.JSON(toUserResponse(user))
	}
}
