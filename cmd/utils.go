package cmd

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

// Copy shown by every surface
const (
	textDropTitle   = "Arrastra tu imagen aquí"
	textDropHint    = "o pega la ruta del archivo"
	textSelectFile  = "Seleccionar archivo"
	textReady       = "Imagen lista para análisis"
	textStart       = "Iniciar Análisis"
	textAnalyzing   = "Analizando imagen..."
	textResultTitle = "Resultado del análisis:"
	textNoResult    = "Carga una imagen para ver los resultados del análisis."
	textSuperseded  = "reemplazada por una imagen más reciente"
	textInFlight    = "ya hay un análisis en curso"
	textNoImage     = "no hay ninguna imagen seleccionada"
	textNotAnImage  = "%s no es una imagen (%s)"
)

// renderMetadataPanel renders the summary of the held image
func renderMetadataPanel(meta domain.ImageMetadata) string {
	lines := []string{
		ui.RenderKeyValue("Nombre", meta.Name),
		ui.RenderKeyValue("Tamaño", domain.FormatFileSize(meta.Size)),
		ui.RenderKeyValue("Dimensiones", meta.Dimensions()),
		ui.RenderKeyValue("Tipo", meta.MIMEType),
		ui.RenderKeyValue("Modificado", humanize.Time(meta.LastModified)),
	}
	return ui.RenderPanel(ui.IconImage+" "+textReady, lines)
}

// renderResult renders the result area for a snapshot.
// spinner is the current spinner frame, shown while loading.
func renderResult(snap services.Snapshot, spinner string) string {
	switch phase := snap.Phase.(type) {
	case domain.Loading:
		return spinner + " " + ui.StyleInfo.Render(textAnalyzing)
	case domain.Succeeded:
		return renderPrediction(phase.Response)
	case domain.Failed:
		return ui.FormatError(phase.Message)
	default:
		return ui.FormatMuted(textNoResult)
	}
}

// renderPrediction renders the payload of a successful response
func renderPrediction(resp domain.PredictionResponse) string {
	lines := []string{ui.FormatLeaf(resp.Data.Label())}
	if resp.Data != nil {
		info := resp.Data.ImageInfo
		format := "-"
		if info.ImageFormat != nil {
			format = *info.ImageFormat
		}
		if resp.Data.Message != "" {
			lines = append(lines, ui.RenderKeyValue("Mensaje", resp.Data.Message))
		}
		lines = append(lines,
			ui.RenderKeyValue("Formato", format),
			ui.RenderKeyValue("Resolución", info.ImageSize),
			ui.RenderKeyValue("Modo", info.ImageMode),
		)
	}
	return ui.RenderPanel(textResultTitle, lines)
}

// predictionLabel returns the label of a successful snapshot
func predictionLabel(snap services.Snapshot) (string, bool) {
	resp, ok := snap.Result()
	if !ok {
		return "", false
	}
	return resp.Data.Label(), true
}

// predictionStartMessage explains why a prediction could not start
func predictionStartMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		return textSuperseded
	case errors.Is(err, domain.ErrPredictionInFlight):
		return textInFlight
	case errors.Is(err, domain.ErrNoImage):
		return textNoImage
	default:
		return err.Error()
	}
}

// cleanDroppedPath turns what a terminal pastes for a dropped file into a path.
// Terminals quote the path, escape spaces, or paste a file:// URL.
func cleanDroppedPath(raw string) string {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}

	if strings.HasPrefix(p, "file://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
		}
	} else {
		p = strings.ReplaceAll(p, `\ `, " ")
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
