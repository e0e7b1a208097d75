package domain

import "errors"

var (
	// ErrRejectedCandidate is returned for files whose MIME type is not image/*.
	// Callers ignore it silently.
	ErrRejectedCandidate = errors.New("candidate is not an image")

	// ErrUndecodable is returned when a file cannot be read or decoded as an image
	ErrUndecodable = errors.New("image could not be decoded")

	// ErrTooLarge is returned when a file exceeds the configured size ceiling
	ErrTooLarge = errors.New("image exceeds the maximum file size")

	// ErrNoImage is returned when a prediction is requested without an image
	ErrNoImage = errors.New("no image selected")

	// ErrPredictionInFlight is returned when a prediction is already running
	ErrPredictionInFlight = errors.New("prediction already in progress")

	// ErrSuperseded is returned when a newer image replaced the one an
	// operation was started for
	ErrSuperseded = errors.New("image superseded by a newer one")

	// ErrPickCancelled is returned when the user closes the file picker
	ErrPickCancelled = errors.New("file selection cancelled")
)

// Messages shown to the user. The widget speaks Spanish.
const (
	ConnectivityErrorMessage = "No se pudo conectar con el servidor."
	UnknownErrorMessage      = "Error desconocido"
	UndecodableErrorMessage  = "No se pudo leer la imagen."
	TooLargeErrorMessage     = "La imagen supera el tamaño máximo permitido."
	PendingPrediction        = "Pendiente"
)

// IntakeErrorMessage maps an intake failure to the message shown in the Error state
func IntakeErrorMessage(err error) string {
	if errors.Is(err, ErrTooLarge) {
		return TooLargeErrorMessage
	}
	return UndecodableErrorMessage
}
