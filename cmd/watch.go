package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var watchQuiet bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Clasifica las imágenes que se dejan en una carpeta",
	Long: `Vigila una carpeta y clasifica cada imagen que llega a ella.

Las escrituras se agrupan para leer el archivo una vez copiado por completo.
Una imagen nueva reemplaza a la que todavía se está analizando.

Usa --quiet para mostrar solo los resultados.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Muestra solo los resultados")
}

// dropFolder serializes output and debounces events per file
type dropFolder struct {
	classifier *services.ClassifierService
	debounce   time.Duration
	mu         sync.Mutex
	timers     map[string]*time.Timer
	w          io.Writer // os.Stdout when nil
	outMu      sync.Mutex
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	dir := cleanDroppedPath(args[0])

	// Create file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if !watchQuiet {
		fmt.Println(ui.FormatRocket("Esperando imágenes..."))
		fmt.Println(ui.FormatMuted("Carpeta: " + dir))
		fmt.Println(ui.FormatMuted("Servidor: " + appConfig.Endpoint))
		fmt.Println(ui.FormatMuted("Pulsa Ctrl+C para detener"))
		fmt.Println()
	}

	folder := &dropFolder{
		classifier: newClassifier(),
		debounce:   appConfig.WatchDebounce(),
		timers:     make(map[string]*time.Timer),
	}

	// Event loop
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			baseName := filepath.Base(event.Name)
			if strings.HasPrefix(baseName, ".") || strings.HasPrefix(baseName, "~") {
				continue
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				folder.schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			folder.stop()
			if !watchQuiet {
				fmt.Println()
				fmt.Println(ui.FormatMuted("Vigilancia detenida"))
			}
			return nil
		}
	}
}

// schedule (re)starts the debounce timer for path
func (d *dropFolder) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.debounce, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.process(path)
	})
}

func (d *dropFolder) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

// process runs one drop through intake and prediction
func (d *dropFolder) process(path string) {
	ctx := getContext()
	name := filepath.Base(path)

	candidate, err := services.CandidateFromPath(path)
	if err != nil {
		return
	}

	// 1. Intake
	ticket, err := d.classifier.StartIntake(candidate)
	if err != nil {
		if errors.Is(err, domain.ErrTooLarge) {
			d.print(ui.FormatError(name + ": " + domain.TooLargeErrorMessage))
		}
		return
	}
	if !watchQuiet {
		d.print(ui.FormatInfo(name + ": " + textAnalyzing))
	}

	intake, err := d.classifier.RunIntake(ctx, candidate)
	if !d.classifier.FinishIntake(ticket, intake, err) {
		d.printSuperseded(name)
		return
	}
	if err != nil {
		d.print(ui.FormatError(name + ": " + domain.IntakeErrorMessage(err)))
		return
	}

	// 2. Prediction, bound to this drop's intake
	predTicket, file, err := d.classifier.StartPredictionFor(ticket)
	if err != nil {
		if errors.Is(err, domain.ErrSuperseded) {
			d.printSuperseded(name)
		} else {
			d.print(ui.FormatWarning(name + ": " + predictionStartMessage(err)))
		}
		return
	}
	resp, err := d.classifier.RunPrediction(ctx, file)
	if !d.classifier.FinishPrediction(predTicket, resp, err) {
		d.printSuperseded(name)
		return
	}

	// 3. Report the outcome of this request, not whatever the state holds now
	switch phase := domain.ResolvePrediction(resp, err).(type) {
	case domain.Succeeded:
		d.print(ui.FormatLeaf(file.Name + ": " + phase.Response.Data.Label()))
	case domain.Failed:
		d.print(ui.FormatError(file.Name + ": " + phase.Message))
	}
}

func (d *dropFolder) printSuperseded(name string) {
	if !watchQuiet {
		d.print(ui.FormatMuted(name + ": " + textSuperseded))
	}
}

func (d *dropFolder) print(line string) {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	w := d.w
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, line)
}
