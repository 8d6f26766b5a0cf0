package handler

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docserver/internal/service"
	"docserver/internal/storage"
)

type replaceBody struct {
	Description        string `json:"description"`
	FileExtension      string `json:"file_extension"`
	FileInBase64Format string `json:"file_in_base64_format"`
}

type contentResponse struct {
	ID                 string `json:"id"`
	FileInBase64Format string `json:"file_in_base64_format"`
}

type storedFileResponse struct {
	Path string `json:"path"`
}

// documentID validates the :id route parameter.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// StoreDocument stores a new document sent in transfer form.
func StoreDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.StoreDocumentFirstTime(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// UploadDocument stores a new document sent as multipart/form-data.
// Fields: file, document_type_id, description.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typeID, err := strconv.ParseInt(c.FormValue("document_type_id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE_ID", "invalid document_type_id")
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

		content, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		// The file name yields its last extension only; compound ones such as
		// "tar.gz" come from the file_extension field.
		ext := c.FormValue("file_extension")
		if ext == "" {
			ext = strings.TrimPrefix(filepath.Ext(fh.Filename), ".")
		}

		doc, err := docSvc.StoreDocumentFirstTime(c.UserContext(), service.UploadRequest{
			DocumentTypeID:     typeID,
			Description:        c.FormValue("description"),
			FileExtension:      ext,
			FileInBase64Format: storage.EncodeTransfer(content),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ReplaceDocument swaps the content of an existing document.
func ReplaceDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var body replaceBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.StoreReplacementDocument(c.UserContext(), service.ReplacementRequest{
			CurrentID:          id,
			Description:        body.Description,
			FileExtension:      body.FileExtension,
			FileInBase64Format: body.FileInBase64Format,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocument returns document metadata.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.GetStoredDocument(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ReadDocument returns document content in transfer form.
func ReadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		content, err := docSvc.ReadStoredDocument(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(contentResponse{ID: id, FileInBase64Format: content})
	}
}

// ListDocuments lists documents of one type with limit & offset.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typeID, err := strconv.ParseInt(c.Query("document_type_id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE_ID", "invalid document_type_id")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.ListDocuments(c.UserContext(), typeID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListExpiredDocuments lists expiration records due at or before ?before
// (RFC 3339, defaults to now).
func ListExpiredDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Absent parameters stay zero; the service applies its clock and page size.
		var before time.Time
		if raw := c.Query("before"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BEFORE", "before must be an RFC 3339 timestamp")
			}
			before = t.UTC()
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		items, err := docSvc.ListExpiredDocuments(c.UserContext(), before, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// StoreFile writes a file for a document type onto an explicit storage node
// without recording a document.
func StoreFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.StoreFileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		path, err := docSvc.StoreFileOnStorageMedia(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(storedFileResponse{Path: path})
	}
}
