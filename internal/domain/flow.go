package domain

import "fmt"

type Operation string

const (
	OpAuthorize   Operation = "authorize"
	OpGetSettings Operation = "get_settings"
	OpSetSettings Operation = "set_settings"
	OpLogout      Operation = "logout"
	OpCopyStart   Operation = "copy_start"
	OpCopyStop    Operation = "copy_stop"
	OpPing        Operation = "ping"
)

// Tag correlates a request with the step that is waiting for its response.
type Tag string

const (
	TagAuthTrader       Tag = "setup_auth_trader"
	TagGetSettings1     Tag = "setup_get_settings_1"
	TagSetAllow         Tag = "setup_set_allow"
	TagGetSettings2     Tag = "setup_get_settings_2"
	TagLogoutTrader     Tag = "setup_logout_trader"
	TagAuthCopier       Tag = "setup_auth_copier"
	TagCopyStart        Tag = "setup_copy_start"
	TagStopAuthCopier   Tag = "stop_auth_copier"
	TagStopCopy         Tag = "stop_copy"
	TagSessionAuthorize Tag = "session_authorize"
)

// Request is a transport-neutral outgoing call. Token carries the credential
// for authorize, copy_start and copy_stop.
type Request struct {
	Op         Operation
	Token      string
	LoginID    string
	Tag        Tag
	FlowID     string
	DemoToReal bool
}

// Event is a decoded incoming message.
type Event struct {
	MsgType      Operation
	Tag          Tag
	FlowID       string
	LoginID      string
	AllowCopiers bool
	Err          *ServerError
}

type FlowKind string

const (
	FlowStart FlowKind = "start"
	FlowStop  FlowKind = "stop"
)

type Step string

const (
	StepIdle              Step = "idle"
	StepAuthTrader        Step = "auth_trader"
	StepCheckingSettings  Step = "checking_settings"
	StepAwaitingAllow     Step = "awaiting_allow"
	StepVerifyingSettings Step = "verifying_settings"
	StepLogoutTrader      Step = "logout_trader"
	StepAuthCopier        Step = "auth_copier"
	StepCopyStart         Step = "copy_start"
	StepStopAuthCopier    Step = "stop_auth_copier"
	StepCopyStop          Step = "copy_stop"
)

// expectations maps each waiting step to the response that advances it.
var expectations = map[Step]struct {
	msgType Operation
	tag     Tag
}{
	StepAuthTrader:        {OpAuthorize, TagAuthTrader},
	StepCheckingSettings:  {OpGetSettings, TagGetSettings1},
	StepAwaitingAllow:     {OpSetSettings, TagSetAllow},
	StepVerifyingSettings: {OpGetSettings, TagGetSettings2},
	StepLogoutTrader:      {OpLogout, TagLogoutTrader},
	StepAuthCopier:        {OpAuthorize, TagAuthCopier},
	StepCopyStart:         {OpCopyStart, TagCopyStart},
	StepStopAuthCopier:    {OpAuthorize, TagStopAuthCopier},
	StepCopyStop:          {OpCopyStop, TagStopCopy},
}

// Flow is the single in-flight workflow of a connection.
type Flow struct {
	ID            string
	Kind          FlowKind
	Step          Step
	CopierToken   string
	TraderToken   string
	TraderLoginID string
	CopierLoginID string
	DemoToReal    bool
}

type EffectKind int

const (
	EffectIgnore EffectKind = iota
	EffectSend
	EffectFinish
)

type Effect struct {
	Kind    EffectKind
	Request Request
	// Deferred asks the caller to delay the send by its recheck delay.
	Deferred   bool
	StatusLine string
	Authorized *Authorization
	LoggedOut  bool
	Result     Result
}

// Result is the terminal state of a flow for its copier token.
type Result struct {
	Status  CopierStatus
	Message string
	Err     error
}

func (f Flow) Active() bool {
	return f.Step != "" && f.Step != StepIdle
}

func (f Flow) ModeLabel() string {
	if f.DemoToReal {
		return "Demo to Real"
	}
	return "Real to Real"
}

// BeginStart creates a copy-start flow and the first request to send.
func BeginStart(id, copierToken, traderToken string, demoToReal bool) (Flow, Effect) {
	flow := Flow{
		ID:          id,
		Kind:        FlowStart,
		Step:        StepAuthTrader,
		CopierToken: copierToken,
		TraderToken: traderToken,
		DemoToReal:  demoToReal,
	}

	trader := "real trader"
	if demoToReal {
		trader = "demo trader"
	}

	return flow, flow.send(Request{Op: OpAuthorize, Token: traderToken}, TagAuthTrader, fmt.Sprintf("Authorizing %s...", trader))
}

// BeginStop creates a copy-stop flow. When the connection is already
// authorized as the copier the flow sends copy_stop directly.
func BeginStop(id, copierToken, traderToken string, demoToReal, authorizedAsCopier bool) (Flow, Effect) {
	flow := Flow{
		ID:          id,
		Kind:        FlowStop,
		CopierToken: copierToken,
		TraderToken: traderToken,
		DemoToReal:  demoToReal,
	}

	if authorizedAsCopier {
		flow.Step = StepCopyStop
		return flow, flow.send(Request{Op: OpCopyStop, Token: traderToken}, TagStopCopy, "Stopping copy...")
	}

	flow.Step = StepStopAuthCopier
	return flow, flow.send(Request{Op: OpAuthorize, Token: copierToken}, TagStopAuthCopier, "Authorizing copier...")
}

// Advance applies one incoming event. Events that do not belong to the step
// the flow is waiting on are ignored and leave the flow unchanged.
func (f Flow) Advance(ev Event) (Flow, Effect) {
	want, ok := expectations[f.Step]
	if !ok || ev.MsgType != want.msgType || ev.Tag != want.tag || ev.FlowID != f.ID {
		return f, Effect{Kind: EffectIgnore}
	}

	if ev.Err != nil {
		return f.fail(ev.Err)
	}

	switch f.Step {
	case StepAuthTrader:
		traderType := DetectAccountType(ev.LoginID)
		if f.DemoToReal && traderType != AccountTypeDemo {
			return f.fail(ErrTraderTypeMismatch)
		}
		f.TraderLoginID = ev.LoginID
		f.Step = StepCheckingSettings
		effect := f.send(Request{Op: OpGetSettings}, TagGetSettings1, "Checking trader settings...")
		effect.Authorized = &Authorization{Role: RoleTrader, LoginID: ev.LoginID, AccountType: traderType}
		return f, effect

	case StepCheckingSettings:
		if ev.AllowCopiers {
			f.Step = StepAuthCopier
			return f, f.send(Request{Op: OpAuthorize, Token: f.CopierToken}, TagAuthCopier, "Authorizing copier...")
		}
		f.Step = StepAwaitingAllow
		return f, f.send(Request{Op: OpSetSettings, LoginID: f.TraderLoginID}, TagSetAllow, "Enabling copy permission on trader...")

	case StepAwaitingAllow:
		f.Step = StepVerifyingSettings
		effect := f.send(Request{Op: OpGetSettings}, TagGetSettings2, "Verifying trader settings...")
		effect.Deferred = true
		return f, effect

	case StepVerifyingSettings:
		// Proceeds whatever allow_copiers reports.
		f.Step = StepLogoutTrader
		return f, f.send(Request{Op: OpLogout}, TagLogoutTrader, "Preparing copier session...")

	case StepLogoutTrader:
		f.Step = StepAuthCopier
		effect := f.send(Request{Op: OpAuthorize, Token: f.CopierToken}, TagAuthCopier, "Authorizing copier...")
		effect.LoggedOut = true
		return f, effect

	case StepAuthCopier:
		f.CopierLoginID = ev.LoginID
		f.Step = StepCopyStart
		effect := f.send(Request{Op: OpCopyStart, Token: f.TraderToken, DemoToReal: f.DemoToReal}, TagCopyStart, "Starting copy...")
		effect.Authorized = &Authorization{Role: RoleCopier, LoginID: ev.LoginID, AccountType: DetectAccountType(ev.LoginID)}
		return f, effect

	case StepCopyStart:
		message := fmt.Sprintf("%s copying started", f.ModeLabel())
		return Flow{}, Effect{
			Kind:       EffectFinish,
			StatusLine: message,
			Result:     Result{Status: CopierStatusCopying, Message: message},
		}

	case StepStopAuthCopier:
		f.CopierLoginID = ev.LoginID
		f.Step = StepCopyStop
		effect := f.send(Request{Op: OpCopyStop, Token: f.TraderToken}, TagStopCopy, "Stopping copy...")
		effect.Authorized = &Authorization{Role: RoleCopier, LoginID: ev.LoginID, AccountType: DetectAccountType(ev.LoginID)}
		return f, effect

	case StepCopyStop:
		return Flow{}, Effect{
			Kind:       EffectFinish,
			StatusLine: "Copying stopped",
			Result:     Result{Status: CopierStatusIdle, Message: "Copying stopped"},
		}
	}

	return f, Effect{Kind: EffectIgnore}
}

func (f Flow) send(req Request, tag Tag, status string) Effect {
	req.Tag = tag
	req.FlowID = f.ID

	return Effect{Kind: EffectSend, Request: req, StatusLine: status}
}

func (f Flow) fail(err error) (Flow, Effect) {
	return Flow{}, Effect{
		Kind:       EffectFinish,
		StatusLine: err.Error(),
		Result:     Result{Status: CopierStatusError, Message: err.Error(), Err: err},
	}
}
