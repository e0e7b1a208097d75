package domain

// Status is the coarse UI status derived from the preview state
type Status int

const (
	StatusEmpty Status = iota
	StatusDragHover
	StatusReady
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusDragHover:
		return "drag-hover"
	case StatusReady:
		return "ready"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Ticket identifies an asynchronous operation.
// Generation changes whenever the selected image changes; Request changes
// for every prediction. A completion is applied only when its ticket is current.
type Ticket struct {
	Generation uint64
	Request    uint64
}

// Phase is the tagged union of widget phases.
// The concrete types are Empty, Ready, Loading, Succeeded and Failed.
type Phase interface {
	Status() Status
	isPhase()
}

// Empty means no image is held
type Empty struct{}

// Ready means an image is held and no prediction is running or stored
type Ready struct{}

// Loading means a prediction is in flight
type Loading struct {
	Ticket Ticket
}

// Succeeded holds the payload of the last successful prediction
type Succeeded struct {
	Response PredictionResponse
}

// Failed holds the message of the last failure
type Failed struct {
	Message string
}

func (Empty) Status() Status     { return StatusEmpty }
func (Ready) Status() Status     { return StatusReady }
func (Loading) Status() Status   { return StatusLoading }
func (Succeeded) Status() Status { return StatusSuccess }
func (Failed) Status() Status    { return StatusError }

func (Empty) isPhase()     {}
func (Ready) isPhase()     {}
func (Loading) isPhase()   {}
func (Succeeded) isPhase() {}
func (Failed) isPhase()    {}
