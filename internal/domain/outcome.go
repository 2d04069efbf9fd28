package domain

// Outcome is the terminal result of one flow for one copier token.
type Outcome struct {
	Token      string       `json:"token"`
	Kind       FlowKind     `json:"kind"`
	Status     CopierStatus `json:"status"`
	Message    string       `json:"message"`
	Simulated  bool         `json:"simulated,omitempty"`
	DemoToReal bool         `json:"demo_to_real,omitempty"`
	Err        error        `json:"-"`
}

func (o Outcome) Failed() bool {
	return o.Status == CopierStatusError
}

type NoticeKind string

const (
	NoticeOK    NoticeKind = "ok"
	NoticeError NoticeKind = "err"
)

// Notice is a short user-facing message emitted on every terminal event.
type Notice struct {
	Kind NoticeKind
	Text string
}
