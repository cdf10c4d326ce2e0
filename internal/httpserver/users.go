package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type userResponse struct {
	ID    string      `json:"_id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req usersvc.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := h.deps.UserSvc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: toUserResponse(*u), Token: token})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := h.deps.UserSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: toUserResponse(*u), Token: token})
}

func (h *handlers) profile(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	u, err := h.deps.UserSvc.Profile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(*u))
}

func (h *handlers) adminListUsers(c *gin.Context) {
	users, err := h.deps.UserSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *handlers) adminCreateUser(c *gin.Context) {
	var req usersvc.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.deps.UserSvc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully", "user": toUserResponse(*u)})
}

func (h *handlers) adminUpdateUser(c *gin.Context) {
	var req usersvc.UpdateInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.deps.UserSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully", "user": toUserResponse(*u)})
}

func (h *handlers) adminDeleteUser(c *gin.Context) {
	if err := h.deps.UserSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
