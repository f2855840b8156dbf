package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type UserInput struct {
	tenantBody
	Name       string `json:"nome" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"cargo"`
	Department string `json:"departamento"`
	Password   string `json:"senha"`
	Status     string `json:"status"`
}

func (in UserInput) toService() services.UserInput {
	return services.UserInput{
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		Password:   in.Password,
		Status:     in.Status,
	}
}

type UserController struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserController(users *services.UserService, log *zap.Logger) *UserController {
	return &UserController{users: users, log: log}
}

// Login answers with the user (never its password), the workshop name and,
// when a signing secret is configured, a session token
func (uc *UserController) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}
	result, err := uc.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondWithAppError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (uc *UserController) GetUsers(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	users, err := uc.users.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, uc.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var input UserInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	if input.Password == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "senha is required")
		return
	}
	user, err := uc.users.Create(c.Request.Context(), input.WorkshopID, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, uc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "User created successfully", user.ID)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var input UserInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	if _, err := uc.users.Update(c.Request.Context(), input.WorkshopID, id, input.toService()); err != nil {
		utils.RespondWithAppError(c, uc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "User updated successfully", nil)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, uc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "User deleted successfully", nil)
}
