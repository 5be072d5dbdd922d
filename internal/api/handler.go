package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/extractor"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/parser"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/writer"
)

// PreviewRows is how many transactions the JSON response previews.
const PreviewRows = 10

const requestIDKey = "requestid"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                       `json:"success"`
	RequestID    string                     `json:"requestId,omitempty"`
	ID           string                     `json:"id,omitempty"`
	Digest       string                     `json:"digest,omitempty"`
	Bank         string                     `json:"bank,omitempty"`
	FileName     string                     `json:"fileName,omitempty"`
	Pages        int                        `json:"pages,omitempty"`
	Count        int                        `json:"count"`
	Transactions []models.TransactionRecord `json:"transactions"`
	Preview      []models.TransactionRecord `json:"preview"`
	TotalDebit   string                     `json:"totalDebit,omitempty"`
	TotalCredit  string                     `json:"totalCredit,omitempty"`
	CSV          string                     `json:"csv,omitempty"`
	RawText      string                     `json:"rawText,omitempty"`
	Warnings     []models.PageWarning       `json:"warnings,omitempty"`
	Version      string                     `json:"version,omitempty"`
}

// Converter is the part of the conversion pipeline the handlers need.
type Converter interface {
	Convert(ctx context.Context, name string, data []byte) (*models.Document, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Converter      Converter
	Log            logrus.FieldLogger
	Version        string
	MaxUploadBytes int64
}

// NewApp builds the fiber application with middleware and routes.
func (h *Handler) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ubextract",
		BodyLimit:             h.bodyLimit(),
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.logRequests)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
func (h *Handler) Listen(ctx context.Context, addr string) error {
	app := h.NewApp()

	errCh := make(chan error, 1)
	go func() {
		h.logger().WithField("addr", addr).Info("Server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.logger().Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"bank":    parser.BankName,
		"version": h.Version,
	})
}

// HandleConvert accepts a multipart upload in the "file" field and returns
// the parsed statement. The "format" query parameter selects the response:
// json (default), or a csv, txt or xlsx download.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", "json"))
	var download writer.Format
	if format != "json" {
		f, err := writer.ParseFormat(format)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		download = f
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}
	if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
		return writeError(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File is larger than the %d byte limit.", h.MaxUploadBytes))
	}

	file, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
	}

	doc, err := h.Converter.Convert(c.UserContext(), fh.Filename, data)
	if err != nil {
		return h.conversionError(c, err)
	}

	if download != "" {
		var buf bytes.Buffer
		if err := writer.Write(&buf, download, doc); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("%s generation failed: %v", download, err))
		}
		c.Attachment(download.FileName())
		c.Set(fiber.HeaderContentType, download.ContentType())
		return c.Send(buf.Bytes())
	}

	var csvBuf bytes.Buffer
	if err := writer.Write(&csvBuf, writer.FormatCSV, doc); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil marshals to JSON null, not []
	txns := doc.Transactions
	if txns == nil {
		txns = []models.TransactionRecord{}
	}
	preview := txns
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}
	debit, credit := doc.Totals()

	return c.JSON(ConvertResponse{
		Success:      true,
		RequestID:    requestID(c),
		ID:           doc.ShortID(),
		Digest:       doc.Digest,
		Bank:         parser.BankName,
		FileName:     fh.Filename,
		Pages:        doc.Pages,
		Count:        len(txns),
		Transactions: txns,
		Preview:      preview,
		TotalDebit:   debit.StringFixed(2),
		TotalCredit:  credit.StringFixed(2),
		CSV:          csvBuf.String(),
		RawText:      doc.Text,
		Warnings:     doc.Warnings,
		Version:      h.Version,
	})
}

func (h *Handler) conversionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, extractor.ErrUnreadable):
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Could not read PDF: %v", err))
	case errors.Is(err, extractor.ErrEmptyDocument):
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("No text found in PDF: %v", err))
	default:
		h.logger().WithError(err).WithField(logging.FieldRequestID, requestID(c)).Error("Conversion failed")
		return writeError(c, fiber.StatusInternalServerError, "Internal server error.")
	}
}

// handleError renders errors returned by fiber itself (unknown routes,
// oversized bodies, recovered panics) in the API's JSON shape.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		h.logger().WithError(err).Error("Unhandled error")
	}
	return writeError(c, code, msg)
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	h.logger().WithFields(logrus.Fields{
		logging.FieldRequestID: requestID(c),
		"method":               c.Method(),
		"path":                 c.Path(),
		"status":               status,
		logging.FieldDuration:  time.Since(start).Milliseconds(),
	}).Info("Request handled")
	return err
}

func (h *Handler) bodyLimit() int {
	if h.MaxUploadBytes <= 0 {
		return fiber.DefaultBodyLimit
	}
	// room for multipart framing around the file
	return int(h.MaxUploadBytes) + 1<<20
}

func (h *Handler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Error:     msg,
		RequestID: requestID(c),
	})
}
