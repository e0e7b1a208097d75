package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/ports"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard [path]",
	Aliases: []string{"dash"},
	Short:   "Abre el clasificador interactivo (alias: dash)",
	Long: `Abre el widget interactivo del clasificador.

Arrastra una imagen a la terminal (la mayoría pega la ruta del archivo),
escribe una ruta o elígela con el buscador. La imagen se previsualiza y
luego puede enviarse al servicio de predicción.

Atajos de teclado:
  Imagen:
    i / Tab     Zona de carga (pega o escribe una ruta, Enter para cargar)
    p           Seleccionar archivo
    r / x       Quitar la imagen

  Análisis:
    Enter       Iniciar análisis
    y           Copiar la predicción

  General:
    ?           Mostrar u ocultar la ayuda
    q           Salir
    Ctrl+C      Forzar salida`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	m := newDashboardModel(ctx, newClassifier(), filePicker, thumbnails)
	if len(args) == 1 {
		m.initCmd = m.submitPath(args[0])
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

// Dashboard view modes
type viewMode int

const (
	modeWidget viewMode = iota
	modeDrop
	modeHelp
)

// Dashboard model
type dashboardModel struct {
	ctx        context.Context
	classifier *services.ClassifierService
	picker     ports.FilePicker
	thumbs     ports.ThumbnailRenderer
	copyText   func(string) error

	mode          viewMode
	dropInput     *textinput.Model // pointer so the clear hook can reset it
	spinner       spinner.Model
	help          help.Model
	keys          keyMap
	width         int
	height        int
	ready         bool
	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time
	initCmd       tea.Cmd
}

// Key bindings
type keyMap struct {
	Drop    key.Binding
	Pick    key.Binding
	Predict key.Binding
	Remove  key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
	Submit  key.Binding
	Escape  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Drop, k.Pick, k.Predict, k.Remove, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Drop, k.Pick, k.Remove},
		{k.Predict, k.Copy},
		{k.Help, k.Escape, k.Quit},
	}
}

var keys = keyMap{
	Drop: key.NewBinding(
		key.WithKeys("i", "tab"),
		key.WithHelp("i/tab", "zona de carga"),
	),
	Pick: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", strings.ToLower(textSelectFile)),
	),
	Predict: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", strings.ToLower(textStart)),
	),
	Remove: key.NewBinding(
		key.WithKeys("r", "x", "delete"),
		key.WithHelp("r/x", "quitar imagen"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copiar resultado"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "ayuda"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "salir"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "cargar"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancelar"),
	),
}

func newDashboardModel(ctx context.Context, classifier *services.ClassifierService, picker ports.FilePicker, thumbs ports.ThumbnailRenderer) dashboardModel {
	ti := textinput.New()
	ti.Placeholder = "/ruta/a/la/imagen.jpg"
	ti.Prompt = ui.IconUpload + " "
	ti.CharLimit = 4096
	ti.Width = 50

	// Removing the image clears the input so the same file can be dropped again
	classifier.State().OnClear(ti.Reset)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.StyleInfo

	return dashboardModel{
		ctx:        ctx,
		classifier: classifier,
		picker:     picker,
		thumbs:     thumbs,
		copyText:   clipboard.WriteAll,
		mode:       modeWidget,
		dropInput:  &ti,
		spinner:    sp,
		help:       help.New(),
		keys:       keys,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.initCmd
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.dropInput.Width = max(20, msg.Width/2-8)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeDrop:
			return m.updateDrop(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateWidget(msg)
		}

	case intakeDoneMsg:
		if !m.classifier.FinishIntake(msg.ticket, msg.intake, msg.err) {
			logger.Debug("stale intake discarded", zap.Uint64("generation", msg.ticket.Generation))
			return m, nil
		}
		m.dropInput.Reset()
		return m, nil

	case predictionDoneMsg:
		if !m.classifier.FinishPrediction(msg.ticket, msg.resp, msg.err) {
			logger.Debug("stale prediction discarded", zap.Uint64("request", msg.ticket.Request))
		}
		return m, nil

	case pickedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, domain.ErrPickCancelled) {
				return m, m.setStatus("Selección cancelada", ui.StyleMuted)
			}
			return m, m.setStatus("Selector: "+msg.err.Error(), ui.StyleError)
		}
		return m, m.submitPath(msg.path)

	case spinner.TickMsg:
		if !m.classifier.State().Snapshot().Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = time.Now().Add(3 * time.Second)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearMessageMsg{} })

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil
	}

	// Cursor blink and other input messages
	if m.mode == modeDrop {
		var cmd tea.Cmd
		*m.dropInput, cmd = m.dropInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) updateWidget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case msg.Paste:
		// A file dropped on the terminal arrives as a paste
		m.mode = modeDrop
		m.dropInput.Focus()
		m.classifier.State().SetDragHover(true)
		return m.updateDrop(msg)

	case key.Matches(msg, m.keys.Drop):
		m.mode = modeDrop
		m.classifier.State().SetDragHover(true)
		return m, m.dropInput.Focus()

	case key.Matches(msg, m.keys.Pick):
		return m, m.pickFile()

	case key.Matches(msg, m.keys.Predict):
		return m, m.startPrediction()

	case key.Matches(msg, m.keys.Remove):
		m.classifier.State().ClearImage()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyPrediction()

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		m.help.ShowAll = true
	}

	return m, nil
}

func (m dashboardModel) updateDrop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.mode = modeWidget
		m.dropInput.Blur()
		m.dropInput.Reset()
		m.classifier.State().SetDragHover(false)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		path := m.dropInput.Value()
		m.mode = modeWidget
		m.dropInput.Blur()
		m.classifier.State().SetDragHover(false)
		if strings.TrimSpace(path) == "" {
			return m, nil
		}
		return m, m.submitPath(path)
	}

	var cmd tea.Cmd
	*m.dropInput, cmd = m.dropInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.mode = modeWidget
	m.help.ShowAll = false
	return m, nil
}

// View

func (m dashboardModel) View() string {
	if !m.ready {
		return "\n  Cargando..."
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	snap := m.classifier.State().Snapshot()
	left := m.renderImageArea(snap)
	right := m.renderResultArea(snap)

	half := max(30, m.width/2-2)
	s.WriteString(lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left),
		"  ",
		lipgloss.NewStyle().Width(half).Render(right),
	))
	s.WriteString("\n\n")

	s.WriteString(m.renderFooter())
	return s.String()
}

func (m dashboardModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	endpointStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	title := titleStyle.Render(ui.IconLeaf + " Grassfier")
	endpoint := ""
	if appConfig != nil {
		endpoint = endpointStyle.Render(appConfig.Endpoint)
	}

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(endpoint)
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacer), endpoint)
}

func (m dashboardModel) renderImageArea(snap services.Snapshot) string {
	if snap.HasImage() {
		var s strings.Builder
		if m.thumbs != nil && snap.Pixels != nil {
			width := 32
			if appConfig != nil {
				width = appConfig.PreviewWidth
			}
			thumb := m.thumbs.Render(&domain.Intake{Image: *snap.Image, Metadata: *snap.Metadata, Pixels: snap.Pixels}, width)
			if thumb != "" {
				s.WriteString(thumb)
				s.WriteString("\n")
			}
		}
		s.WriteString(renderMetadataPanel(*snap.Metadata))
		s.WriteString("\n")
		if !snap.Loading() {
			s.WriteString(ui.FormatMuted("[enter] " + textStart + "  [r] Quitar"))
		}
		return s.String()
	}

	limit := "PNG, JPG hasta 10 MiB"
	if appConfig != nil && appConfig.MaxFileSizeMB > 0 {
		limit = fmt.Sprintf("PNG, JPG hasta %d MiB", appConfig.MaxFileSizeMB)
	}

	style := ui.StyleDropZone
	if snap.Status == domain.StatusDragHover {
		style = ui.StyleDropHover
	}

	zone := lipgloss.JoinVertical(
		lipgloss.Center,
		ui.StyleBold.Render(ui.IconUpload+" "+textDropTitle),
		ui.FormatMuted(textDropHint),
		ui.FormatMuted(limit),
		"",
		ui.StyleAccent.Render("[p] "+textSelectFile),
	)

	out := style.Render(zone)
	if m.mode == modeDrop || m.dropInput.Value() != "" {
		out += "\n" + m.dropInput.View()
	}
	return out
}

func (m dashboardModel) renderResultArea(snap services.Snapshot) string {
	return renderResult(snap, m.spinner.View())
}

func (m dashboardModel) renderFooter() string {
	var statusLine string
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	} else {
		statusLine = ui.StyleMuted.Render(m.classifier.State().Status().String())
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		statusLine,
		m.help.View(m.keys),
	))
}

// Commands

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type intakeDoneMsg struct {
	ticket domain.Ticket
	intake *domain.Intake
	err    error
}

type predictionDoneMsg struct {
	ticket domain.Ticket
	resp   *domain.PredictionResponse
	err    error
}

type pickedMsg struct {
	path string
	err  error
}

func (m dashboardModel) setStatus(message string, style lipgloss.Style) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: message, style: style}
	}
}

// submitPath starts intake of a dropped, typed or picked path.
// Non-image candidates are ignored without touching the widget.
func (m dashboardModel) submitPath(raw string) tea.Cmd {
	path := cleanDroppedPath(raw)

	candidate, err := services.CandidateFromPath(path)
	if err != nil {
		if errors.Is(err, domain.ErrRejectedCandidate) {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return m.setStatus("Archivo no encontrado: "+path, ui.StyleWarning)
		}
		return m.setStatus(err.Error(), ui.StyleError)
	}

	ticket, err := m.classifier.StartIntake(candidate)
	if err != nil {
		// Rejected: silently ignored. Too large: already shown as an error.
		return nil
	}

	classifier := m.classifier
	ctx := m.ctx
	return func() tea.Msg {
		intake, err := classifier.RunIntake(ctx, candidate)
		return intakeDoneMsg{ticket: ticket, intake: intake, err: err}
	}
}

// startPrediction enters Loading and uploads the held image
func (m dashboardModel) startPrediction() tea.Cmd {
	ticket, file, err := m.classifier.StartPrediction()
	if err != nil {
		// No image, or already in flight
		return nil
	}

	classifier := m.classifier
	ctx := m.ctx
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := classifier.RunPrediction(ctx, file)
			return predictionDoneMsg{ticket: ticket, resp: resp, err: err}
		},
	)
}

func (m dashboardModel) copyPrediction() tea.Cmd {
	label, ok := predictionLabel(m.classifier.State().Snapshot())
	if !ok {
		return nil
	}
	if err := m.copyText(label); err != nil {
		return m.setStatus("(No se pudo acceder al portapapeles)", ui.StyleMuted)
	}
	return m.setStatus(ui.IconSuccess+" Copiado: "+label, ui.StyleSuccess)
}

// pickExec runs the fuzzy finder while bubbletea releases the terminal
type pickExec struct {
	ctx    context.Context
	picker ports.FilePicker
	path   string
}

func (e *pickExec) Run() error {
	path, err := e.picker.Pick(e.ctx)
	e.path = path
	return err
}

func (e *pickExec) SetStdin(io.Reader)  {}
func (e *pickExec) SetStdout(io.Writer) {}
func (e *pickExec) SetStderr(io.Writer) {}

func (m dashboardModel) pickFile() tea.Cmd {
	if m.picker == nil {
		return nil
	}
	e := &pickExec{ctx: m.ctx, picker: m.picker}
	return tea.Exec(e, func(err error) tea.Msg {
		return pickedMsg{path: e.path, err: err}
	})
}
