package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/grassfier/internal/adapters/picker"
	"github.com/kamal-hamza/grassfier/internal/adapters/report"
	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var batchChart string

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Clasifica todas las imágenes de una carpeta",
	Long: `Clasifica cada imagen que esté directamente dentro de una carpeta, una
petición a la vez, y muestra una tabla con los resultados.

Usa --chart para escribir además un gráfico de barras HTML de las predicciones.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchChart, "chart", "", "Escribe un gráfico HTML de los resultados en este archivo")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	dir := cleanDroppedPath(args[0])

	paths, err := picker.ImagePaths(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println(ui.FormatWarning("No se encontraron imágenes en " + dir))
		return nil
	}

	fmt.Println(ui.FormatRocket(fmt.Sprintf("Clasificando %d imágenes...", len(paths))))
	fmt.Println()

	classifier := newClassifier()
	table := ui.NewTable([]ui.TableColumn{
		{Header: "ARCHIVO"},
		{Header: "TAMAÑO", Align: "right"},
		{Header: "DIMENSIONES", Align: "right"},
		{Header: "RESULTADO"},
	})

	var rows []report.Row
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		name := filepath.Base(path)

		row, meta := classifyOne(classifier, path)
		if row == nil {
			continue
		}
		rows = append(rows, *row)

		size, dims := "-", "-"
		if meta != nil {
			size = domain.FormatFileSize(meta.Size)
			dims = meta.Dimensions()
		}
		result := ui.StyleSuccess.Render(row.Prediction)
		if row.Failed() {
			result = ui.StyleError.Render(row.Message)
		}
		table.AddRow([]string{name, size, dims, result})

		classifier.State().ClearImage()
	}

	fmt.Print(table.Render())
	fmt.Println()

	for _, b := range report.CountPredictions(rows) {
		fmt.Println(ui.RenderKeyValue(b.Label, fmt.Sprintf("%d", b.Count)))
	}

	if batchChart != "" {
		if err := report.WriteChart(batchChart, "Grassfier: "+filepath.Base(dir), rows); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(ui.FormatSuccess("Gráfico guardado en " + batchChart))
	}

	return nil
}

// classifyOne runs a single file through the classifier.
// It returns nil for files that are not images.
func classifyOne(classifier *services.ClassifierService, path string) (*report.Row, *domain.ImageMetadata) {
	ctx := getContext()
	name := filepath.Base(path)

	candidate, err := services.CandidateFromPath(path)
	if err != nil {
		return &report.Row{File: name, Message: err.Error()}, nil
	}

	if err := classifier.Intake(ctx, candidate); err != nil {
		if errors.Is(err, domain.ErrRejectedCandidate) {
			return nil, nil
		}
		return &report.Row{File: name, Message: classifier.State().Snapshot().ErrorMessage()}, nil
	}
	meta := classifier.State().Snapshot().Metadata

	snap, err := classifier.Predict(ctx)
	if err != nil {
		return &report.Row{File: name, Message: predictionStartMessage(err)}, meta
	}
	if label, ok := predictionLabel(snap); ok {
		return &report.Row{File: name, Prediction: label}, meta
	}
	return &report.Row{File: name, Message: snap.ErrorMessage()}, meta
}
