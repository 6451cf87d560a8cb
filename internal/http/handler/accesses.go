package handler

import (
	"github.com/gofiber/fiber/v2"

	"fileshare/internal/http/middleware"
	"fileshare/internal/model"
	"fileshare/internal/service"
)

type accessRequest struct {
	Email string `json:"email" form:"email"`
}

// accessEntry is one grant as shown to the file owner.
type accessEntry struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Type     string `json:"type"`
}

func toAccessEntries(list []model.Access) []accessEntry {
	out := make([]accessEntry, 0, len(list))
	for _, a := range list {
		u := model.User{FirstName: a.FirstName, LastName: a.LastName}
		out = append(out, accessEntry{FullName: u.FullName(), Email: a.Email, Type: a.Type})
	}
	return out
}

// GrantAccess godoc
// @Summary Grant co-author access by email
// @Tags accesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file_id path string true "public file id"
// @Param body body accessRequest true "grantee"
// @Success 200 {array} accessEntry
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{file_id}/accesses [post]
func GrantAccess(accesses service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req accessRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		list, err := accesses.Grant(c.UserContext(), c.Params("file_id"), middleware.CurrentUser(c), req.Email)
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(toAccessEntries(list))
	}
}

// RevokeAccess godoc
// @Summary Revoke co-author access by email
// @Tags accesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file_id path string true "public file id"
// @Param body body accessRequest true "grantee"
// @Success 200 {array} accessEntry
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{file_id}/accesses [delete]
func RevokeAccess(accesses service.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req accessRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		list, err := accesses.Revoke(c.UserContext(), c.Params("file_id"), middleware.CurrentUser(c), req.Email)
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(toAccessEntries(list))
	}
}
