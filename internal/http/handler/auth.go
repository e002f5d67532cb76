package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/apperror"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/model"
	"catalogapi/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

func malformedBody() error {
	return apperror.Invalid("non_field_errors", "malformed request body")
}

// Register godoc
// @Summary  Register an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body model.Registration true "new account"
// @Success  200 {object} model.TokenPair
// @Failure  400 {object} errorPayload
// @Router   /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.Registration
		if err := c.BodyParser(&in); err != nil {
			return respondError(c, malformedBody())
		}
		pair, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pair)
	}
}

// Login godoc
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body model.Credentials true "credentials"
// @Success  200 {object} model.TokenPair
// @Failure  400 {object} errorPayload
// @Router   /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.Credentials
		if err := c.BodyParser(&in); err != nil {
			return respondError(c, malformedBody())
		}
		pair, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pair)
	}
}

// Logout revokes the bearer token of the request. Must run behind RequireAuth.
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), middleware.AccessToken(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(messageResponse{Message: "successfully logged out"})
	}
}

// ChangePassword must run behind RequireAuth.
func ChangePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.PasswordChange
		if err := c.BodyParser(&in); err != nil {
			return respondError(c, malformedBody())
		}
		if err := svc.ChangePassword(c.UserContext(), middleware.AccessToken(c), in); err != nil {
			return respondError(c, err)
		}
		return c.JSON(messageResponse{Message: "password updated successfully"})
	}
}
