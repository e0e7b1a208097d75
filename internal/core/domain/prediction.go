package domain

import "strings"

// PredictionResponse mirrors the JSON document returned by the prediction endpoint
type PredictionResponse struct {
	Success bool     `json:"success"`
	Data    *Payload `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Payload is the data section of a successful response
type Payload struct {
	Message    string          `json:"message"`
	Prediction string          `json:"prediction,omitempty"`
	ImageInfo  ServerImageInfo `json:"image_info"`
}

// ServerImageInfo is what the server saw of the uploaded file
type ServerImageInfo struct {
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	FileSize    int64   `json:"file_size"`
	ImageFormat *string `json:"image_format"`
	ImageSize   string  `json:"image_size"`
	ImageMode   string  `json:"image_mode"`
}

// ErrorMessage joins the application errors of a failed response.
// An empty list falls back to UnknownErrorMessage.
func (r *PredictionResponse) ErrorMessage() string {
	if r == nil || len(r.Errors) == 0 {
		return UnknownErrorMessage
	}
	return strings.Join(r.Errors, ", ")
}

// Label returns the prediction to display, or PendingPrediction when the
// server accepted the image without classifying it
func (p *Payload) Label() string {
	if p == nil || p.Prediction == "" {
		return PendingPrediction
	}
	return p.Prediction
}

// ResolvePrediction maps the outcome of a prediction request to its final phase.
// A transport error or a missing body always gives the connectivity message.
func ResolvePrediction(resp *PredictionResponse, err error) Phase {
	switch {
	case err != nil || resp == nil:
		return Failed{Message: ConnectivityErrorMessage}
	case resp.Success:
		return Succeeded{Response: *resp}
	default:
		return Failed{Message: resp.ErrorMessage()}
	}
}
