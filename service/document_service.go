package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"
	"dzlegal-backend/repository"
	"dzlegal-backend/storage"

	"github.com/google/uuid"
)

const (
	DefaultMaxFileSize   = 10 * 1024 * 1024
	MaxAnalyzedDocuments = 5
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the maximum size")
	ErrUnsupportedFileType = errors.New("file type not allowed")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentCount       = fmt.Errorf("between 1 and %d documents are required", MaxAnalyzedDocuments)
)

// AllowedMimeTypes are the formats the model can read inline
var AllowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

// DocumentService stores uploaded documents and analyzes them together
type DocumentService struct {
	store       DocumentStore
	storage     storage.Storage
	generator   Generator
	maxFileSize int64
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithStore sets the metadata store
func DocumentWithStore(store DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.store = store
	}
}

// DocumentWithStorage sets the file storage backend
func DocumentWithStorage(st storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.storage = st
	}
}

// DocumentWithGenerator sets the model client
func DocumentWithGenerator(g Generator) DocumentServiceOption {
	return func(s *DocumentService) {
		s.generator = g
	}
}

// DocumentWithMaxFileSize overrides the 10MB upload limit
func DocumentWithMaxFileSize(n int64) DocumentServiceOption {
	return func(s *DocumentService) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxFileSize returns the upload limit in bytes
func (s *DocumentService) MaxFileSize() int64 {
	return s.maxFileSize
}

// UploadDocumentRequest represents an uploaded file
type UploadDocumentRequest struct {
	SessionID string
	Filename  string
	MimeType  string
	Size      int64
	Data      io.Reader
}

// AnalyzeDocumentsRequest represents a joint analysis of stored documents
type AnalyzeDocumentsRequest struct {
	DocumentIDs []uuid.UUID
	Query       string
}

// AnalyzeDocumentsResult holds the analysis and the documents it covered
type AnalyzeDocumentsResult struct {
	Documents []*models.Document
	Text      string
	Sources   []models.Source
}

// Upload validates and stores a document, then records its metadata
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if s.store == nil || s.storage == nil {
		return nil, fmt.Errorf("%w: document service", ErrNotConfigured)
	}

	if req.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	mimeType := ResolveMimeType(req.MimeType, req.Filename)
	if !AllowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	doc := &models.Document{
		ID:       uuid.New(),
		Filename: req.Filename,
		MimeType: mimeType,
		Size:     req.Size,
	}
	if req.SessionID != "" {
		doc.SessionID = &req.SessionID
	}

	storagePath, err := s.storage.Upload(ctx, doc.ID, req.Filename, io.LimitReader(req.Data, s.maxFileSize+1), req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	doc.StoragePath = storagePath

	if err := s.store.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			logger.Warn(ctx, "failed to clean up stored file", "path", storagePath, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	logger.Info(ctx, "document uploaded", "document_id", doc.ID, "mime_type", doc.MimeType, "size", doc.Size)
	return doc, nil
}

// Get returns the metadata of a document
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: document store", ErrNotConfigured)
	}
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Open returns the metadata and content of a document. The caller closes the reader.
func (s *DocumentService) Open(ctx context.Context, id uuid.UUID) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil {
		return nil, nil, fmt.Errorf("%w: storage", ErrNotConfigured)
	}

	rc, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	return doc, rc, nil
}

// Analyze sends all requested documents to the model in one call
func (s *DocumentService) Analyze(ctx context.Context, req AnalyzeDocumentsRequest) (*AnalyzeDocumentsResult, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNotConfigured)
	}
	if len(req.DocumentIDs) == 0 || len(req.DocumentIDs) > MaxAnalyzedDocuments {
		return nil, ErrDocumentCount
	}

	docs := make([]*models.Document, 0, len(req.DocumentIDs))
	attachments := make([]gemini.Attachment, 0, len(req.DocumentIDs))
	for _, id := range req.DocumentIDs {
		doc, data, err := s.readAll(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		attachments = append(attachments, gemini.Attachment{MIMEType: doc.MimeType, Data: data})
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "file_analysis",
		SystemInstruction: documentInstruction,
		Text:              documentPrompt(strings.TrimSpace(req.Query)),
		Attachments:       attachments,
		Temperature:       temperature(0.1),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return &AnalyzeDocumentsResult{
		Documents: docs,
		Text:      resp.Text,
		Sources:   resp.Sources,
	}, nil
}

func (s *DocumentService) readAll(ctx context.Context, id uuid.UUID) (*models.Document, []byte, error) {
	doc, rc, err := s.Open(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxFileSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document %s: %w", id, err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, nil, fmt.Errorf("%w: document %s", ErrFileTooLarge, id)
	}
	return doc, data, nil
}

// ResolveMimeType keeps a declared type when it is specific and otherwise
// infers it from the file extension
func ResolveMimeType(declared, filename string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "" || declared == "application/octet-stream" {
		return storage.ContentType(filename)
	}
	if declared == "image/jpg" {
		return "image/jpeg"
	}
	return declared
}
