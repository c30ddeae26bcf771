package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/config"
	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/utils"
)

// AuthHandler manages staff authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a staff member and issues a JWT carrying the actor
// identity.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.AdminUser
	if err := h.db.Preload("Team").First(&user, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	teamCode := ""
	if user.Team != nil {
		teamCode = user.Team.Code
	}

	actor := models.Actor{ID: user.ID, Role: user.Role, TeamCode: teamCode}
	token, err := utils.GenerateToken(h.cfg.JWTSecret, actor, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"role":       user.Role,
			"team":       teamCode,
		},
	})
}

type registerStaffRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TeamCode  string `json:"team_code"`
}

var validRoles = map[string]bool{
	models.RoleAgent:      true,
	models.RoleSupervisor: true,
	models.RoleAdmin:      true,
}

// RegisterStaff creates a staff account. Admin only.
func (h *AuthHandler) RegisterStaff(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}

	var req registerStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}
	if !validRoles[req.Role] {
		return fiber.NewError(fiber.StatusBadRequest, "unknown role")
	}

	var teamID *uuid.UUID
	if req.TeamCode != "" {
		var team models.Team
		if err := h.db.First(&team, "code = ?", req.TeamCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "unknown team")
			}
			return err
		}
		teamID = &team.ID
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.AdminUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		TeamID:       teamID,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}
