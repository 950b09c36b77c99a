package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/account"
	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/middleware"
)

type ProfileHandler struct {
	accounts *account.Service
}

func NewProfileHandler(accounts *account.Service) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// GET /api/account/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.accounts.GetProfile(c.Request.Context(), c.GetString("user_id"), c.GetString("email"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/account/profile (multipart : display_name, remove_avatar, avatar)
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	file, closeFile, err := handlers.FormUpload(c, "avatar")
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	defer closeFile()

	in := account.ProfileInput{
		DisplayName:  c.PostForm("display_name"),
		RemoveAvatar: c.PostForm("remove_avatar") == "true",
	}
	p, err := h.accounts.SaveProfile(c.Request.Context(), c.GetString("user_id"), c.GetString("email"), in, file)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /api/account
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cuenta eliminada"})
}
