package http

import (
	"net/http"

	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/httpx"
	"github.com/guachince/guachince/pkg/slogx"
)

// UsersHandler serves the staff-facing user listing.
type UsersHandler struct {
	Store store.Store
}

// UserSummary is one row of the admin user listing. Credential material and
// MFA secrets never appear here.
type UserSummary struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	IsActive  bool     `json:"isActive"`
	Roles     []string `json:"roles"`
}

// UsersResponse wraps the admin user listing.
type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// HandleList handles GET /api/admin/users
//
//	@Summary		List users (staff only)
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	UsersResponse
//	@Failure		401	{object}	map[string]string
//	@Failure		403	{object}	map[string]string	"Missing staff.read"
//	@Router			/api/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Store.Users().ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("user listing failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error.",
		})
		return
	}

	payload := make([]UserSummary, 0, len(users))
	for _, user := range users {
		roles := make([]string, 0, len(user.Roles))
		for _, role := range user.Roles {
			roles = append(roles, role.Name)
		}
		payload = append(payload, UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsActive:  user.IsActive,
			Roles:     roles,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, UsersResponse{Users: payload})
}
