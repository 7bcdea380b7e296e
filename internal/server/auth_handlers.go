package server

import (
	"wander/internal/auth"
	"wander/internal/models"
	"wander/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. The account starts unverified; the
// verification link goes out by mail.
func (s *Server) Signup(c *fiber.Ctx) error {
	var in service.SignupInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	user, err := s.userService.Signup(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated,
		"Account created successfully. Please check your email to verify your account.",
		fiber.Map{"user": user})
}

// Login handles POST /api/auth/login. On success the refresh token is set as
// an HTTP-only cookie and the access token returned in the payload.
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	user, pair, err := s.userService.Login(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	c.Cookie(s.sessions.RefreshCookie(pair.RefreshToken))

	return models.Respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Logout handles POST /api/auth/logout by clearing the refresh cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(s.sessions.ClearRefreshCookie())
	return models.Respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

// Refresh handles POST /api/auth/refresh. It always answers 200: a missing
// or revoked refresh token yields an empty access token instead of an error,
// and a good one rotates the cookie.
func (s *Server) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(auth.RefreshCookieName)

	pair, _, err := s.sessions.Refresh(c.UserContext(), raw)
	if err != nil {
		return models.RespondError(c, err)
	}
	if pair == nil {
		return models.Respond(c, fiber.StatusOK, "Could not refresh access token", fiber.Map{
			"accessToken": "",
		})
	}

	c.Cookie(s.sessions.RefreshCookie(pair.RefreshToken))

	return models.Respond(c, fiber.StatusOK, "Token refreshed", fiber.Map{
		"accessToken": pair.AccessToken,
	})
}

// VerifyEmail handles POST /api/auth/verify-email/:userId/:token.
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "user ID")
	if err != nil {
		return nil
	}
	token := c.Params("token")

	user, serr := s.userService.VerifyEmail(c.UserContext(), userID, token)
	if serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Email verified successfully", fiber.Map{"user": user})
}

type emailBody struct {
	Email string `json:"email"`
}

// ResendVerification handles POST /api/auth/resend-verification.
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var body emailBody
	if err := parseBody(c, &body); err != nil {
		return nil
	}

	if err := s.userService.ResendVerification(c.UserContext(), body.Email); err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Verification email sent", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is the
// same whether or not the address has an account.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var body emailBody
	if err := parseBody(c, &body); err != nil {
		return nil
	}

	if err := s.userService.ForgotPassword(c.UserContext(), body.Email); err != nil {
		return models.RespondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK,
		"If an account with that email exists, a password reset link has been sent", nil)
}

// ResetPassword handles POST /api/auth/reset-password/:userId/:token.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId", "user ID")
	if err != nil {
		return nil
	}
	token := c.Params("token")

	var body struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &body); err != nil {
		return nil
	}

	if serr := s.userService.ResetPassword(c.UserContext(), userID, token, body.Password); serr != nil {
		return models.RespondError(c, serr)
	}

	return models.Respond(c, fiber.StatusOK, "Password reset successfully", nil)
}

// RevokeSessions handles POST /api/auth/revoke-sessions for the
// authenticated user; every outstanding refresh token stops working.
func (s *Server) RevokeSessions(c *fiber.Ctx) error {
	if err := s.userService.RevokeSessions(c.UserContext(), currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}

	c.Cookie(s.sessions.ClearRefreshCookie())
	return models.Respond(c, fiber.StatusOK, "All sessions revoked", nil)
}
