package ports

import (
	"context"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
)

// Predictor defines the port for the remote classification endpoint
type Predictor interface {
	// Predict uploads the file and returns the decoded response.
	// An error means the request never produced a readable response.
	Predict(ctx context.Context, file domain.SourceFile) (*domain.PredictionResponse, error)
}

// FilePicker defines the port for interactive file selection
type FilePicker interface {
	// Pick returns the path chosen by the user, or domain.ErrPickCancelled
	Pick(ctx context.Context) (string, error)
}

// ThumbnailRenderer turns a decoded intake into a terminal preview
type ThumbnailRenderer interface {
	// Render returns the preview as printable lines
	Render(intake *domain.Intake, width int) string
}
