package users

import (
	"time"

	"circulyte-backend/internal/apperr"
	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DeleteUserRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"createdAt"`
}

func callerOf(c *fiber.Ctx) Caller {
	id, email := auth.Actor(c)
	return Caller{ID: id, Email: email}
}

// POST /api/functions/createNewUser
func CreateNewUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.New(apperr.InvalidArgument, "Invalid request body.")
		}

		res, err := svc.CreateNewUser(c.UserContext(), callerOf(c), body)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/functions/deleteUser
func DeleteUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DeleteUserRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.New(apperr.InvalidArgument, "Invalid request body.")
		}

		res, err := svc.DeleteUser(c.UserContext(), callerOf(c), body.Email)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/users
func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load users")
		}

		resp := make([]UserResponse, 0, len(list))
		for _, u := range list {
			resp = append(resp, UserResponse{
				ID:        u.ID,
				Email:     u.Email,
				Role:      u.Role,
				CreatedAt: u.CreatedAt.Format(time.RFC3339),
			})
		}
		return c.JSON(resp)
	}
}
