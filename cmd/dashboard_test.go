package cmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamal-hamza/grassfier/internal/adapters/thumbnail"
	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/ports/mocks"
	"github.com/kamal-hamza/grassfier/internal/core/services"
)

type stubPicker struct {
	path string
	err  error
}

func (p stubPicker) Pick(context.Context) (string, error) {
	return p.path, p.err
}

// writeTestPNG writes a w×h PNG into dir and returns its path
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write png: %v", err)
	}
	return path
}

func newTestDashboard(predictor *mocks.MockPredictor) dashboardModel {
	classifier := services.NewClassifierService(
		services.NewIntakeService(10*1024*1024, nil),
		services.NewPreviewState(),
		predictor,
		nil,
	)
	m := newDashboardModel(context.Background(), classifier, stubPicker{}, thumbnail.NewHalfBlockRenderer(8))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(dashboardModel)
}

// drain runs a command and feeds every resulting message back into the model
func drain(t *testing.T, m dashboardModel, cmd tea.Cmd) dashboardModel {
	t.Helper()

	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case nil:
	default:
		updated, _ := m.Update(msg)
		m = updated.(dashboardModel)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestDashboardModelInitialization tests that the dashboard model is initialized correctly
func TestDashboardModelInitialization(t *testing.T) {
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	if m.mode != modeWidget {
		t.Errorf("Expected mode to be modeWidget, got %v", m.mode)
	}

	if m.classifier.State().Status() != domain.StatusEmpty {
		t.Errorf("Expected empty state, got %s", m.classifier.State().Status())
	}

	if !m.ready {
		t.Error("Expected ready after window size message")
	}

	view := m.View()
	if !strings.Contains(view, textDropTitle) {
		t.Error("Expected drop zone in initial view")
	}
	if !strings.Contains(view, textNoResult) {
		t.Error("Expected empty result placeholder in initial view")
	}
}

// TestDashboardDropPath tests that a pasted path loads the image
func TestDashboardDropPath(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "hoja.png", 12, 6)
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true}
	updated, _ := m.updateWidget(paste)
	m = updated.(dashboardModel)

	if m.mode != modeDrop {
		t.Fatalf("Expected paste to focus the drop zone, got mode %v", m.mode)
	}
	if m.classifier.State().Status() != domain.StatusDragHover {
		t.Errorf("Expected drag-hover while dropping, got %s", m.classifier.State().Status())
	}

	updated, cmd := m.updateDrop(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)
	m = drain(t, m, cmd)

	snap := m.classifier.State().Snapshot()
	if snap.Status != domain.StatusReady {
		t.Fatalf("Expected ready after drop, got %s", snap.Status)
	}
	if snap.Metadata.Dimensions() != "12 × 6px" {
		t.Errorf("Expected true dimensions, got %s", snap.Metadata.Dimensions())
	}
	if m.dropInput.Value() != "" {
		t.Errorf("Expected drop zone to be cleared, got %q", m.dropInput.Value())
	}
	if !strings.Contains(m.View(), "hoja.png") {
		t.Error("Expected file name in view")
	}
}

// TestDashboardDropNonImage tests that a non-image file is silently ignored
func TestDashboardDropNonImage(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "notas.txt")
	if err := os.WriteFile(textPath, []byte("hola"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	m := newTestDashboard(mocks.NewMockPredictor(nil))
	before := m.classifier.State().Snapshot()

	if cmd := m.submitPath(textPath); cmd != nil {
		t.Error("Expected no command for a non-image file")
	}

	after := m.classifier.State().Snapshot()
	if after.Generation != before.Generation || after.Status != before.Status {
		t.Error("Expected state to be unchanged")
	}
}

// TestDashboardPredictWithoutImage tests that Enter does nothing without an image
func TestDashboardPredictWithoutImage(t *testing.T) {
	predictor := mocks.NewMockPredictor(&domain.PredictionResponse{Success: true})
	m := newTestDashboard(predictor)

	_, cmd := m.updateWidget(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Expected no command without an image")
	}
	if predictor.Calls() != 0 {
		t.Errorf("Expected no network call, got %d", predictor.Calls())
	}
}

// TestDashboardPredictFlow tests the full select, analyze, result cycle
func TestDashboardPredictFlow(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "hoja.png", 8, 8)
	predictor := mocks.NewMockPredictor(&domain.PredictionResponse{
		Success: true,
		Data:    &domain.Payload{Message: "ok", Prediction: "Mancha foliar"},
	})
	m := newTestDashboard(predictor)
	m = drain(t, m, m.submitPath(path))

	updated, cmd := m.updateWidget(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)

	if !m.classifier.State().Snapshot().Loading() {
		t.Fatal("Expected loading after Enter")
	}
	if !strings.Contains(m.View(), textAnalyzing) {
		t.Error("Expected loading message in view")
	}

	// A second Enter while loading is refused
	if _, again := m.updateWidget(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("Expected no second request while loading")
	}

	m = drain(t, m, cmd)

	if predictor.Calls() != 1 {
		t.Errorf("Expected exactly one request, got %d", predictor.Calls())
	}
	if m.classifier.State().Status() != domain.StatusSuccess {
		t.Fatalf("Expected success, got %s", m.classifier.State().Status())
	}

	view := m.View()
	if !strings.Contains(view, textResultTitle) || !strings.Contains(view, "Mancha foliar") {
		t.Error("Expected result panel in view")
	}

	var copied string
	m.copyText = func(s string) error { copied = s; return nil }
	m.copyPrediction()()
	if copied != "Mancha foliar" {
		t.Errorf("Expected prediction to be copied, got %q", copied)
	}
}

// TestDashboardPredictFailure tests that transport failures show the fixed message
func TestDashboardPredictFailure(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "hoja.png", 8, 8)
	m := newTestDashboard(mocks.NewFailingPredictor(errors.New("dial tcp: connection refused")))
	m = drain(t, m, m.submitPath(path))

	updated, cmd := m.updateWidget(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, updated.(dashboardModel), cmd)

	view := m.View()
	if !strings.Contains(view, domain.ConnectivityErrorMessage) {
		t.Error("Expected connectivity message in view")
	}
	if strings.Contains(view, "connection refused") {
		t.Error("Expected raw error text to stay hidden")
	}
}

// TestDashboardRemove tests removing the image and re-selecting the same file
func TestDashboardRemove(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "hoja.png", 8, 8)
	m := newTestDashboard(mocks.NewMockPredictor(nil))
	m = drain(t, m, m.submitPath(path))

	m.dropInput.SetValue("leftover")
	updated, _ := m.updateWidget(keyRunes("r"))
	m = updated.(dashboardModel)

	if m.classifier.State().Status() != domain.StatusEmpty {
		t.Errorf("Expected empty after remove, got %s", m.classifier.State().Status())
	}
	if m.dropInput.Value() != "" {
		t.Errorf("Expected input to be reset, got %q", m.dropInput.Value())
	}

	m = drain(t, m, m.submitPath(path))
	if m.classifier.State().Status() != domain.StatusReady {
		t.Errorf("Expected the same file to load again, got %s", m.classifier.State().Status())
	}
}

// TestDashboardStaleIntake tests that a superseded intake is discarded
func TestDashboardStaleIntake(t *testing.T) {
	dir := t.TempDir()
	first := writeTestPNG(t, dir, "primera.png", 4, 4)
	second := writeTestPNG(t, dir, "segunda.png", 6, 6)
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	firstCmd := m.submitPath(first)
	secondCmd := m.submitPath(second)

	m = drain(t, m, secondCmd)
	m = drain(t, m, firstCmd)

	if name := m.classifier.State().Snapshot().Metadata.Name; name != "segunda.png" {
		t.Errorf("Expected the newest drop to win, got %q", name)
	}
}

// TestDashboardEscapeLeavesDropZone tests cancelling the drop zone
func TestDashboardEscapeLeavesDropZone(t *testing.T) {
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	updated, _ := m.updateWidget(keyRunes("i"))
	m = updated.(dashboardModel)
	if m.mode != modeDrop {
		t.Fatalf("Expected drop mode, got %v", m.mode)
	}

	updated, _ = m.updateDrop(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(dashboardModel)

	if m.mode != modeWidget {
		t.Errorf("Expected widget mode, got %v", m.mode)
	}
	if m.classifier.State().Status() != domain.StatusEmpty {
		t.Errorf("Expected hover to end, got %s", m.classifier.State().Status())
	}
}

// TestDashboardHelpToggle tests the help screen
func TestDashboardHelpToggle(t *testing.T) {
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	updated, _ := m.updateWidget(keyRunes("?"))
	m = updated.(dashboardModel)
	if m.mode != modeHelp || !m.help.ShowAll {
		t.Error("Expected full help to be shown")
	}

	updated, _ = m.updateHelp(keyRunes("?"))
	m = updated.(dashboardModel)
	if m.mode != modeWidget {
		t.Error("Expected any key to close help")
	}
}

// TestDashboardQuit tests quitting
func TestDashboardQuit(t *testing.T) {
	m := newTestDashboard(mocks.NewMockPredictor(nil))

	_, cmd := m.updateWidget(keyRunes("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

// TestPickExec tests the picker bridge used by the dashboard
func TestPickExec(t *testing.T) {
	e := &pickExec{ctx: context.Background(), picker: stubPicker{path: "/tmp/hoja.png"}}
	if err := e.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if e.path != "/tmp/hoja.png" {
		t.Errorf("Expected picked path, got %q", e.path)
	}

	m := newTestDashboard(mocks.NewMockPredictor(nil))
	updated, cmd := m.Update(pickedMsg{err: domain.ErrPickCancelled})
	m = drain(t, updated.(dashboardModel), cmd)
	if m.classifier.State().Status() != domain.StatusEmpty {
		t.Errorf("Expected cancelled pick to leave state alone, got %s", m.classifier.State().Status())
	}
}
