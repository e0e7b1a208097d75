package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var (
	classifyCopy bool
	classifyJSON bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>",
	Short: "Clasifica una sola imagen",
	Long: `Carga una imagen, muestra su resumen y la envía al servicio de predicción.

Usa --copy para copiar la predicción al portapapeles, o --json para mostrar
la respuesta tal como la devuelve el servidor.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVarP(&classifyCopy, "copy", "c", false, "Copia la predicción al portapapeles")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Muestra la respuesta JSON sin procesar")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	classifier := newClassifier()

	// 1. Intake
	candidate, err := services.CandidateFromPath(cleanDroppedPath(args[0]))
	if err != nil {
		return err
	}
	if err := classifier.Intake(ctx, candidate); err != nil {
		if errors.Is(err, domain.ErrRejectedCandidate) {
			return fmt.Errorf(textNotAnImage, candidate.Name, candidate.MIMEType)
		}
		return errors.New(classifier.State().Snapshot().ErrorMessage())
	}

	snap := classifier.State().Snapshot()
	if !classifyJSON {
		fmt.Println(renderMetadataPanel(*snap.Metadata))
		fmt.Println(ui.FormatRocket(textAnalyzing))
	}

	// 2. Prediction
	ticket, file, err := classifier.StartPrediction()
	if err != nil {
		return errors.New(predictionStartMessage(err))
	}
	resp, err := classifier.RunPrediction(ctx, file)
	classifier.FinishPrediction(ticket, resp, err)
	snap = classifier.State().Snapshot()

	if classifyJSON && resp != nil {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Println(string(out))
	}

	if msg := snap.ErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	if classifyJSON {
		return nil
	}

	// 3. Result
	fmt.Println(renderResult(snap, ""))

	if label, ok := predictionLabel(snap); ok && classifyCopy {
		if err := clipboard.WriteAll(label); err != nil {
			fmt.Println(ui.FormatMuted("(No se pudo acceder al portapapeles, cópialo manualmente)"))
		} else {
			fmt.Println(ui.FormatSuccess("Predicción copiada al portapapeles"))
		}
	}

	return nil
}
