package handler

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"fileshare/internal/http/middleware"
	"fileshare/internal/service"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Identity service.IdentityService
	Files    service.FileService
	Accesses service.AccessService
}

// Options tunes response content.
type Options struct {
	// BaseURL prefixes download URLs in responses, e.g. "http://localhost:8080".
	BaseURL string
	// LinkExpiry is the lifetime of presigned links.
	LinkExpiry time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, opts Options) {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.LinkExpiry <= 0 {
		opts.LinkExpiry = 5 * time.Minute
	}

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/registration", Register(svc.Identity))
	app.Post("/authorization", Authorize(svc.Identity))

	auth := middleware.RequireAuth(svc.Identity)
	app.Get("/logout", auth, Logout(svc.Identity))

	// static segments first so "disk" is never taken as a :file_id
	app.Get("/files/disk", auth, ListDisk(svc.Files, svc.Accesses, opts.BaseURL))
	app.Post("/files", auth, UploadFiles(svc.Files, opts.BaseURL))
	app.Patch("/files/:file_id", auth, RenameFile(svc.Files))
	app.Delete("/files/:pk/delete", auth, DeleteFile(svc.Files))
	app.Get("/files/:file_id/download", auth, DownloadFile(svc.Files))
	app.Get("/files/:file_id/link", auth, FileLink(svc.Files, opts.LinkExpiry))
	app.Post("/files/:file_id/accesses", auth, GrantAccess(svc.Accesses))
	app.Delete("/files/:file_id/accesses", auth, RevokeAccess(svc.Accesses))
	app.Get("/shared", auth, ListShared(svc.Files, opts.BaseURL))
}

func downloadURL(baseURL, fileID string) string {
	return baseURL + "/files/" + fileID + "/download"
}
