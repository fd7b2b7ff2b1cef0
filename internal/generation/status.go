package generation

// Status is what the output region shows: Idle, Loading, Succeeded or Failed.
type Status interface {
	State() string
}

type Idle struct{}

type Loading struct{}

type Succeeded struct {
	Content string
}

type Failed struct {
	Message string
}

func (Idle) State() string      { return "idle" }
func (Loading) State() string   { return "loading" }
func (Succeeded) State() string { return "succeeded" }
func (Failed) State() string    { return "failed" }

// View is the JSON shape of a Status.
type View struct {
	State   string `json:"state"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ViewOf(s Status) View {
	switch v := s.(type) {
	case Succeeded:
		return View{State: v.State(), Content: v.Content}
	case Failed:
		return View{State: v.State(), Error: v.Message}
	case nil:
		return View{State: Idle{}.State()}
	default:
		return View{State: v.State()}
	}
}
