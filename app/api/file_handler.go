package api

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rag/extract"
)

// FileHandler serves text extraction for uploaded PDF/DOCX/PPTX files.
type FileHandler struct{}

func NewFileHandler() *FileHandler {
	return &FileHandler{}
}

func (h *FileHandler) HandleExtractFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	// Keep the raw upload around when an upload dir is configured. The uuid
	// prefix prevents concurrent uploads of equally named files colliding.
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		path := filepath.Join(dir, uuid.New().String()+"_"+filepath.Base(fileHeader.Filename))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}

	result, err := extract.File(fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
