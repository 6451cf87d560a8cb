package handler

import (
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	"fileshare/internal/http/middleware"
	"fileshare/internal/model"
	"fileshare/internal/service"
)

type uploadItem struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Name    string              `json:"name"`
	URL     string              `json:"url,omitempty"`
	FileID  string              `json:"file_id,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type renameRequest struct {
	Name string `json:"name" form:"name"`
}

type fileItem struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

type diskItem struct {
	FileID   string        `json:"file_id"`
	Name     string        `json:"name"`
	URL      string        `json:"url"`
	Accesses []accessEntry `json:"accesses"`
}

type linkResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// UploadFiles godoc
// @Summary Upload one or more files
// @Description Every file is stored independently. If any file fails the status is 422 and the body still lists every outcome.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "files to upload"
// @Success 200 {array} uploadItem
// @Failure 422 {array} uploadItem
// @Router /files [post]
func UploadFiles(files service.FileService, baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			return writeErrorFields(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "No files were uploaded",
				map[string][]string{"files": {"At least one file is required"}})
		}

		headers := form.File["files"]
		uploads := make([]service.Upload, 0, len(headers))
		for _, fh := range headers {
			up := service.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			}
			if f, err := fh.Open(); err == nil {
				defer closeQuietly(f)
				up.Body = f
			}
			uploads = append(uploads, up)
		}

		results, err := files.Upload(c.UserContext(), middleware.CurrentUser(c), uploads)
		if err != nil && results == nil {
			return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
		}

		items := make([]uploadItem, 0, len(results))
		for _, r := range results {
			item := uploadItem{Success: r.Success, Message: r.Message, Name: r.Name, Errors: r.Fields}
			if r.File != nil {
				item.FileID = r.File.FileID
				item.URL = downloadURL(baseURL, r.File.FileID)
			}
			items = append(items, item)
		}
		status := fiber.StatusOK
		if err != nil {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(items)
	}
}

func closeQuietly(f multipart.File) { _ = f.Close() }

// RenameFile godoc
// @Summary Rename a file
// @Tags files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param file_id path string true "public file id"
// @Param body body renameRequest true "new name"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{file_id} [patch]
func RenameFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req renameRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		if _, err := files.Rename(c.UserContext(), c.Params("file_id"), middleware.CurrentUser(c), req.Name); err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(messageResponse{Success: true, Message: "Renamed"})
	}
}

// DeleteFile godoc
// @Summary Delete a file with its grants
// @Tags files
// @Security BearerAuth
// @Param pk path string true "public file id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{pk}/delete [delete]
func DeleteFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := files.Delete(c.UserContext(), c.Params("pk"), middleware.CurrentUser(c)); err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadFile godoc
// @Summary Download a file as an attachment
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param file_id path string true "public file id"
// @Success 200 {file} file
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{file_id}/download [get]
func DownloadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, rc, err := files.Download(c.UserContext(), c.Params("file_id"), middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		c.Attachment(f.Name)
		if f.ContentType != "" {
			c.Set(fiber.HeaderContentType, f.ContentType)
		}
		size := -1
		if f.Size > 0 {
			size = int(f.Size)
		}
		// the stream is closed once the body has been written
		return c.SendStream(rc, size)
	}
}

// FileLink godoc
// @Summary Get a presigned download link
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param file_id path string true "public file id"
// @Success 200 {object} linkResponse
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{file_id}/link [get]
func FileLink(files service.FileService, expiry time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := files.Link(c.UserContext(), c.Params("file_id"), middleware.CurrentUser(c), expiry)
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(linkResponse{URL: u, ExpiresIn: int(expiry / time.Second)})
	}
}

// ListDisk godoc
// @Summary List own files with their grants
// @Tags files
// @Produce json
// @Security BearerAuth
// @Success 200 {array} diskItem
// @Router /files/disk [get]
func ListDisk(files service.FileService, accesses service.AccessService, baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owned, err := files.ListOwnedBy(c.UserContext(), middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		grants, err := accesses.ListForFiles(c.UserContext(), owned)
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		items := make([]diskItem, 0, len(owned))
		for _, f := range owned {
			items = append(items, diskItem{
				FileID:   f.FileID,
				Name:     f.Name,
				URL:      downloadURL(baseURL, f.FileID),
				Accesses: toAccessEntries(grants[f.ID]),
			})
		}
		return c.JSON(items)
	}
}

// ListShared godoc
// @Summary List files uploaded by other users
// @Tags files
// @Produce json
// @Security BearerAuth
// @Success 200 {array} fileItem
// @Router /shared [get]
func ListShared(files service.FileService, baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		visible, err := files.ListVisibleTo(c.UserContext(), middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err, fiber.StatusBadRequest)
		}
		return c.JSON(toFileItems(visible, baseURL))
	}
}

func toFileItems(files []model.File, baseURL string) []fileItem {
	items := make([]fileItem, 0, len(files))
	for _, f := range files {
		items = append(items, fileItem{FileID: f.FileID, Name: f.Name, URL: downloadURL(baseURL, f.FileID)})
	}
	return items
}
