package server

import (
	"io"

	"wander/internal/models"
	"wander/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/uploads. It accepts one multipart file field
// named "image", validates type and size, and pushes it to the image host.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return models.RespondError(c, models.NewBadRequest("An image file is required"))
	}

	contentType := header.Header.Get("Content-Type")
	if verr := upload.Validate(contentType, header.Size); verr != nil {
		return models.RespondError(c, verr)
	}

	file, err := header.Open()
	if err != nil {
		return models.RespondError(c, models.NewInternal(err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxImageBytes+1))
	if err != nil {
		return models.RespondError(c, models.NewInternal(err))
	}
	// The multipart header size can lie; check the actual bytes too.
	if verr := upload.Validate(contentType, int64(len(data))); verr != nil {
		return models.RespondError(c, verr)
	}

	url, uerr := s.uploader.Upload(c.UserContext(), upload.ToDataURI(contentType, data))
	if uerr != nil {
		return models.RespondError(c, uerr)
	}

	return models.Respond(c, fiber.StatusCreated, "Image uploaded successfully", fiber.Map{"url": url})
}
