package services

import (
	"image"
	"sync"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
)

// Snapshot is a copy of the preview state taken for rendering
type Snapshot struct {
	Phase      domain.Phase
	Status     domain.Status
	DragHover  bool
	Image      *domain.SelectedImage
	Metadata   *domain.ImageMetadata
	Pixels     image.Image
	Generation uint64
}

// HasImage reports whether an image is held
func (s Snapshot) HasImage() bool {
	return s.Image != nil
}

// Loading reports whether a prediction is in flight
func (s Snapshot) Loading() bool {
	_, ok := s.Phase.(domain.Loading)
	return ok
}

// Result returns the stored response of a successful prediction
func (s Snapshot) Result() (*domain.PredictionResponse, bool) {
	if p, ok := s.Phase.(domain.Succeeded); ok {
		resp := p.Response
		return &resp, true
	}
	return nil, false
}

// ErrorMessage returns the message of the Failed phase, or ""
func (s Snapshot) ErrorMessage() string {
	if p, ok := s.Phase.(domain.Failed); ok {
		return p.Message
	}
	return ""
}

// PreviewState is the single source of truth for what the widget displays.
// Asynchronous completions carry a Ticket and are dropped once stale.
type PreviewState struct {
	mu         sync.Mutex
	phase      domain.Phase
	intake     *domain.Intake
	dragHover  bool
	generation uint64
	request    uint64
	onClear    []func()
}

// NewPreviewState creates an empty preview state
func NewPreviewState() *PreviewState {
	return &PreviewState{
		phase: domain.Empty{},
	}
}

// OnClear registers a hook run after ClearImage, used to reset input controls
func (p *PreviewState) OnClear(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClear = append(p.onClear, fn)
}

// BeginIntake starts a new generation and returns its ticket.
// Completions issued for earlier generations become stale.
func (p *PreviewState) BeginIntake() domain.Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	return domain.Ticket{Generation: p.generation, Request: p.request}
}

// SetImage replaces the held image and metadata and enters Ready
func (p *PreviewState) SetImage(ticket domain.Ticket, img domain.SelectedImage, meta domain.ImageMetadata) bool {
	return p.SetIntake(ticket, &domain.Intake{Image: img, Metadata: meta})
}

// SetIntake is SetImage that also keeps the decoded pixels for thumbnails
func (p *PreviewState) SetIntake(ticket domain.Ticket, intake *domain.Intake) bool {
	if intake == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket.Generation != p.generation {
		return false
	}

	p.intake = intake
	p.request++ // abandons any prediction for the previous image
	p.phase = domain.Ready{}
	return true
}

// FailIntake drops the held image and shows the intake failure
func (p *PreviewState) FailIntake(ticket domain.Ticket, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket.Generation != p.generation {
		return false
	}

	p.intake = nil
	p.request++
	p.phase = domain.Failed{Message: domain.IntakeErrorMessage(err)}
	return true
}

// ClearImage resets to Empty from any state and runs the reset hooks
func (p *PreviewState) ClearImage() {
	p.mu.Lock()
	p.generation++
	p.request++
	p.intake = nil
	p.dragHover = false
	p.phase = domain.Empty{}
	hooks := append([]func(){}, p.onClear...)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// BeginPrediction enters Loading for the held image.
// It fails with ErrNoImage or ErrPredictionInFlight without changing anything.
func (p *PreviewState) BeginPrediction() (domain.Ticket, domain.SourceFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beginPredictionLocked()
}

// BeginPredictionFor is BeginPrediction bound to the intake that produced
// ticket. It fails with ErrSuperseded once another image has been selected.
func (p *PreviewState) BeginPredictionFor(intake domain.Ticket) (domain.Ticket, domain.SourceFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if intake.Generation != p.generation {
		return domain.Ticket{}, domain.SourceFile{}, domain.ErrSuperseded
	}
	return p.beginPredictionLocked()
}

func (p *PreviewState) beginPredictionLocked() (domain.Ticket, domain.SourceFile, error) {
	if p.intake == nil {
		return domain.Ticket{}, domain.SourceFile{}, domain.ErrNoImage
	}
	if _, loading := p.phase.(domain.Loading); loading {
		return domain.Ticket{}, domain.SourceFile{}, domain.ErrPredictionInFlight
	}

	p.request++
	ticket := domain.Ticket{Generation: p.generation, Request: p.request}
	p.phase = domain.Loading{Ticket: ticket}
	return ticket, p.intake.Image.Source, nil
}

// CompletePrediction applies the outcome of a prediction.
// A transport error always shows the fixed connectivity message.
func (p *PreviewState) CompletePrediction(ticket domain.Ticket, resp *domain.PredictionResponse, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	loading, ok := p.phase.(domain.Loading)
	if !ok || loading.Ticket != ticket || ticket.Generation != p.generation {
		return false
	}

	p.phase = domain.ResolvePrediction(resp, err)
	return true
}

// CancelIntake abandons an intake that will never complete.
// A prediction left Loading by the abandoned generation falls back to Ready.
func (p *PreviewState) CancelIntake(ticket domain.Ticket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket.Generation != p.generation {
		return false
	}
	if _, loading := p.phase.(domain.Loading); loading {
		p.request++
		if p.intake != nil {
			p.phase = domain.Ready{}
		} else {
			p.phase = domain.Empty{}
		}
	}
	return true
}

// SetDragHover records whether the drop zone is being hovered
func (p *PreviewState) SetDragHover(hover bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dragHover = hover
}

// Status returns the coarse UI status
func (p *PreviewState) Status() domain.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *PreviewState) statusLocked() domain.Status {
	status := p.phase.Status()
	if p.dragHover && (status == domain.StatusEmpty || status == domain.StatusReady) {
		return domain.StatusDragHover
	}
	return status
}

// Snapshot returns a copy of the state for rendering
func (p *PreviewState) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Phase:      p.phase,
		Status:     p.statusLocked(),
		DragHover:  p.dragHover,
		Generation: p.generation,
	}
	if p.intake != nil {
		img := p.intake.Image
		meta := p.intake.Metadata
		snap.Image = &img
		snap.Metadata = &meta
		snap.Pixels = p.intake.Pixels
	}
	return snap
}
