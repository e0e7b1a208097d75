package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var infoNoPreview bool

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Muestra el resumen de una imagen sin clasificarla",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoNoPreview, "no-preview", false, "No dibuja la miniatura")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	classifier := newClassifier()

	candidate, err := services.CandidateFromPath(cleanDroppedPath(args[0]))
	if err != nil {
		return err
	}

	intake, err := classifier.RunIntake(ctx, candidate)
	if err != nil {
		if errors.Is(err, domain.ErrRejectedCandidate) {
			return fmt.Errorf(textNotAnImage, candidate.Name, candidate.MIMEType)
		}
		return errors.New(domain.IntakeErrorMessage(err))
	}

	if !infoNoPreview && thumbnails != nil {
		if thumb := thumbnails.Render(intake, appConfig.PreviewWidth); thumb != "" {
			fmt.Println(thumb)
		}
	}
	fmt.Println(renderMetadataPanel(intake.Metadata))
	fmt.Println(ui.RenderKeyValue("Data URI", domain.FormatFileSize(int64(len(intake.Image.PreviewURL)))))

	return nil
}
