package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/telemetry"
)

// Candidate is a file offered to the widget by selection or drop
type Candidate struct {
	Path         string
	Name         string
	MIMEType     string // declared type; must start with image/
	Size         int64
	LastModified time.Time
	Data         []byte // optional; read from Path when nil
}

// CandidateFromPath stats a file on disk and declares its MIME type.
// The extension decides the type; content sniffing is the fallback.
func CandidateFromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory: %w", path, domain.ErrRejectedCandidate)
	}

	return Candidate{
		Path:         path,
		Name:         info.Name(),
		MIMEType:     DetectMIME(path),
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

// DetectMIME returns the declared MIME type of a file, without parameters
func DetectMIME(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(mt.String())
	if err != nil {
		return mt.String()
	}
	return mediaType
}

// IntakeService reads and decodes accepted candidates
type IntakeService struct {
	maxBytes int64 // 0 disables the ceiling
	logger   *zap.Logger
}

// NewIntakeService creates a new intake service
func NewIntakeService(maxBytes int64, logger *zap.Logger) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Check performs the synchronous part of intake: the MIME gate and the size
// ceiling as declared by the candidate.
func (s *IntakeService) Check(c Candidate) error {
	if !domain.IsImageMIME(c.MIMEType) {
		return domain.ErrRejectedCandidate
	}
	if s.maxBytes > 0 && c.Size > s.maxBytes {
		return domain.ErrTooLarge
	}
	return nil
}

// Accept validates, reads and decodes a candidate.
// Image and metadata are returned together or not at all.
func (s *IntakeService) Accept(ctx context.Context, c Candidate) (*domain.Intake, error) {
	ctx, span := telemetry.StartSpan(ctx, "intake.accept")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.name", c.Name),
		attribute.String("file.mime_type", c.MIMEType),
	)

	// 1. MIME gate and declared size
	if err := s.Check(c); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// 2. Read content
	data := c.Data
	if data == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		data, err = os.ReadFile(c.Path)
		if err != nil {
			s.logger.Warn("intake read failed", zap.String("path", c.Path), zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "read failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrUndecodable, err)
		}
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		span.SetStatus(codes.Error, domain.ErrTooLarge.Error())
		return nil, domain.ErrTooLarge
	}

	// 3. Decode for dimensions
	pixels, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("intake decode failed", zap.String("name", c.Name), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUndecodable, err)
	}
	bounds := pixels.Bounds()

	name := c.Name
	if name == "" {
		name = filepath.Base(c.Path)
	}
	modified := c.LastModified
	if modified.IsZero() {
		modified = time.Now()
	}

	intake := &domain.Intake{
		Image: domain.SelectedImage{
			PreviewURL: domain.DataURI(c.MIMEType, data),
			Source: domain.SourceFile{
				Name:     name,
				MIMEType: c.MIMEType,
				Data:     data,
			},
		},
		Metadata: domain.ImageMetadata{
			Name:         name,
			Size:         int64(len(data)),
			MIMEType:     c.MIMEType,
			LastModified: modified,
			Width:        bounds.Dx(),
			Height:       bounds.Dy(),
		},
		Pixels: pixels,
	}

	span.SetAttributes(
		attribute.String("image.format", format),
		attribute.Int("image.width", bounds.Dx()),
		attribute.Int("image.height", bounds.Dy()),
	)
	s.logger.Debug("intake accepted",
		zap.String("name", name),
		zap.String("format", format),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)

	return intake, nil
}
