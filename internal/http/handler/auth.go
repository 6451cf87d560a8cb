package handler

import (
	"github.com/gofiber/fiber/v2"

	"fileshare/internal/http/middleware"
	"fileshare/internal/model"
	"fileshare/internal/service"
)

type registerRequest struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "registration form"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /registration [post]
func Register(identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		u, err := identity.Register(c.UserContext(), service.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
		}
		return issueToken(c, identity, u)
	}
}

// Authorize godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /authorization [post]
func Authorize(identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		u, err := identity.Authenticate(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
		}
		return issueToken(c, identity, u)
	}
}

func issueToken(c *fiber.Ctx, identity service.IdentityService, u *model.User) error {
	token, err := identity.IssueToken(c.UserContext(), u)
	if err != nil {
		return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
	}
	return c.JSON(tokenResponse{Success: true, Message: "Success", Token: token})
}

// Logout godoc
// @Summary Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} messageResponse
// @Failure 401 {object} errorPayload
// @Router /logout [get]
func Logout(identity service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := identity.Logout(c.UserContext(), middleware.CurrentClaims(c)); err != nil {
			return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
		}
		return c.JSON(messageResponse{Success: true, Message: "Logout"})
	}
}
