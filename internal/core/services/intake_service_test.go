package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
)

func TestIntakeService_Accept(t *testing.T) {
	tempDir := t.TempDir()
	path := writeFile(t, tempDir, "leaf.png", encodePNG(t, 64, 48))

	candidate, err := CandidateFromPath(path)
	if err != nil {
		t.Fatalf("CandidateFromPath failed: %v", err)
	}

	svc := NewIntakeService(0, nil)
	intake, err := svc.Accept(context.Background(), candidate)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if intake.Metadata.Width != 64 || intake.Metadata.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", intake.Metadata.Width, intake.Metadata.Height)
	}

	if intake.Metadata.Name != "leaf.png" {
		t.Errorf("expected name leaf.png, got %q", intake.Metadata.Name)
	}

	if intake.Metadata.MIMEType != "image/png" {
		t.Errorf("expected image/png, got %q", intake.Metadata.MIMEType)
	}

	if intake.Metadata.Size != candidate.Size {
		t.Errorf("expected size %d, got %d", candidate.Size, intake.Metadata.Size)
	}

	if !intake.Metadata.LastModified.Equal(candidate.LastModified) {
		t.Errorf("expected modified time to come from the file")
	}

	if !strings.HasPrefix(intake.Image.PreviewURL, "data:image/png;base64,") {
		t.Errorf("expected data URI preview, got %q", intake.Image.PreviewURL[:30])
	}

	if intake.Image.Source.Size() != candidate.Size {
		t.Errorf("expected source file to hold all bytes")
	}

	if intake.Pixels == nil {
		t.Error("expected decoded pixels")
	}
}

func TestIntakeService_RejectsNonImage(t *testing.T) {
	svc := NewIntakeService(0, nil)

	tests := []string{"text/plain", "application/pdf", "", "video/mp4"}
	for _, mimeType := range tests {
		t.Run(mimeType, func(t *testing.T) {
			_, err := svc.Accept(context.Background(), Candidate{
				Name:     "notes.txt",
				MIMEType: mimeType,
				Data:     []byte("hello"),
			})
			if !errors.Is(err, domain.ErrRejectedCandidate) {
				t.Errorf("expected ErrRejectedCandidate, got %v", err)
			}
		})
	}
}

func TestIntakeService_Undecodable(t *testing.T) {
	svc := NewIntakeService(0, nil)

	_, err := svc.Accept(context.Background(), Candidate{
		Name:     "broken.png",
		MIMEType: "image/png",
		Data:     []byte("not really a png"),
	})
	if !errors.Is(err, domain.ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestIntakeService_MissingFile(t *testing.T) {
	svc := NewIntakeService(0, nil)

	_, err := svc.Accept(context.Background(), Candidate{
		Path:     "/nonexistent/leaf.png",
		Name:     "leaf.png",
		MIMEType: "image/png",
	})
	if !errors.Is(err, domain.ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestIntakeService_TooLarge(t *testing.T) {
	c := pngCandidate(t, "big.png", 32, 32)
	svc := NewIntakeService(c.Size-1, nil)

	if err := svc.Check(c); !errors.Is(err, domain.ErrTooLarge) {
		t.Errorf("expected Check to return ErrTooLarge, got %v", err)
	}

	// Declared size lies; the read content is still measured
	c.Size = 1
	if _, err := svc.Accept(context.Background(), c); !errors.Is(err, domain.ErrTooLarge) {
		t.Errorf("expected Accept to return ErrTooLarge, got %v", err)
	}
}

func TestCandidateFromPath(t *testing.T) {
	tempDir := t.TempDir()
	png := encodePNG(t, 4, 4)

	tests := []struct {
		name     string
		filename string
		data     []byte
		expected string
	}{
		{"png extension", "a.png", png, "image/png"},
		{"upper-case extension", "b.PNG", png, "image/png"},
		{"jpeg extension", "c.jpg", []byte{0xff, 0xd8, 0xff}, "image/jpeg"},
		{"sniffed without extension", "d", png, "image/png"},
		{"text file", "e.txt", []byte("hello"), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tempDir, tt.filename, tt.data)

			c, err := CandidateFromPath(path)
			if err != nil {
				t.Fatalf("CandidateFromPath failed: %v", err)
			}
			if c.MIMEType != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, c.MIMEType)
			}
			if c.Name != tt.filename {
				t.Errorf("expected name %q, got %q", tt.filename, c.Name)
			}
		})
	}
}

func TestCandidateFromPath_Directory(t *testing.T) {
	_, err := CandidateFromPath(t.TempDir())
	if !errors.Is(err, domain.ErrRejectedCandidate) {
		t.Errorf("expected ErrRejectedCandidate for a directory, got %v", err)
	}
}
