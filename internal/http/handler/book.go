package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/service"
)

// UploadCover accepts a multipart form with the image in field "file".
func UploadCover(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}

		b, err := svc.UploadCover(c.UserContext(), id, service.CoverUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	}
}

// GetCover redirects to a presigned download URL of the book's cover.
func GetCover(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		u, err := svc.CoverURL(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}
