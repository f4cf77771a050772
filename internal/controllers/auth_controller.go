package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/config"
	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
	"road_treatment/internal/services"
)

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,role"`
	TMCID    *uint  `json:"tmcId"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

type updateUserInput struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
	TMCID *uint  `json:"tmcId"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

func LoginUser(c *gin.Context) {
	var body loginInput
	if !bindJSON(c, &body) {
		return
	}

	user, err := services.NewUserService(config.DB).Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		logrus.WithField("email", body.Email).Warn("Login failed")
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func ListUsers(c *gin.Context) {
	users, err := services.NewUserService(config.DB).List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func CreateUser(c *gin.Context) {
	var input createUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.NewUserService(config.DB).Create(c.Request.Context(), services.CreateUserInput{
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
		TMCID:    input.TMCID,
		Name:     input.Name,
		Phone:    input.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.UserCreated, user)
	c.JSON(http.StatusCreated, user)
}

func UpdateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input updateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.NewUserService(config.DB).Update(c.Request.Context(), id, services.UpdateUserInput{
		Email: input.Email,
		Role:  input.Role,
		TMCID: input.TMCID,
		Name:  input.Name,
		Phone: input.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.UserUpdated, user)
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := services.NewUserService(config.DB).Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.UserDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
