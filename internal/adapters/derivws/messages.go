package derivws

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/copytrade-cli/internal/domain"
)

type passthrough struct {
	Tag        string `json:"tag,omitempty"`
	FlowID     string `json:"flow_id,omitempty"`
	DemoToReal *int   `json:"is_demo_to_real,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	MsgType     string       `json:"msg_type"`
	Error       *apiError    `json:"error,omitempty"`
	Passthrough *passthrough `json:"passthrough,omitempty"`
	EchoReq     struct {
		Passthrough *passthrough `json:"passthrough,omitempty"`
	} `json:"echo_req"`
	Authorize *struct {
		LoginID string `json:"loginid"`
	} `json:"authorize,omitempty"`
	GetSettings *struct {
		AllowCopiers int `json:"allow_copiers"`
	} `json:"get_settings,omitempty"`
	CopyStart json.RawMessage `json:"copy_start,omitempty"`
	CopyStop  json.RawMessage `json:"copy_stop,omitempty"`
}

// Encode renders a request in the trading API wire format.
func Encode(req domain.Request) ([]byte, error) {
	msg := map[string]any{}

	switch req.Op {
	case domain.OpAuthorize:
		msg["authorize"] = req.Token
	case domain.OpGetSettings:
		msg["get_settings"] = 1
	case domain.OpSetSettings:
		msg["set_settings"] = 1
		msg["allow_copiers"] = 1
		if req.LoginID != "" {
			msg["loginid"] = req.LoginID
		}
	case domain.OpLogout:
		msg["logout"] = 1
	case domain.OpCopyStart:
		msg["copy_start"] = req.Token
	case domain.OpCopyStop:
		msg["copy_stop"] = req.Token
	case domain.OpPing:
		msg["ping"] = 1
	default:
		return nil, fmt.Errorf("encode request: unsupported operation %q", req.Op)
	}

	if pt := passthroughFor(req); pt != nil {
		msg["passthrough"] = pt
	}

	return json.Marshal(msg)
}

func passthroughFor(req domain.Request) *passthrough {
	if req.Op == domain.OpPing {
		return nil
	}

	pt := passthrough{Tag: string(req.Tag), FlowID: req.FlowID}
	if req.Op == domain.OpCopyStart {
		flag := 0
		if req.DemoToReal {
			flag = 1
		}
		pt.DemoToReal = &flag
	}

	if pt.Tag == "" && pt.FlowID == "" && pt.DemoToReal == nil {
		return nil
	}

	return &pt
}

// Decode turns one incoming frame into an event. Message types the client
// does not know decode to an event no flow waits for.
func Decode(data []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Event{}, fmt.Errorf("decode message: %w", err)
	}

	ev := domain.Event{MsgType: domain.Operation(env.MsgType)}

	pt := env.EchoReq.Passthrough
	if pt == nil {
		pt = env.Passthrough
	}
	if pt != nil {
		ev.Tag = domain.Tag(pt.Tag)
		ev.FlowID = pt.FlowID
	}

	switch {
	case env.Error != nil:
		ev.Err = &domain.ServerError{Op: ev.MsgType, Code: env.Error.Code, Message: env.Error.Message}
	case ev.MsgType == domain.OpCopyStart && !acked(env.CopyStart),
		ev.MsgType == domain.OpCopyStop && !acked(env.CopyStop):
		ev.Err = &domain.ServerError{Op: ev.MsgType}
	}
	if env.Authorize != nil {
		ev.LoginID = env.Authorize.LoginID
	}
	if env.GetSettings != nil {
		ev.AllowCopiers = env.GetSettings.AllowCopiers == 1
	}

	return ev, nil
}

// acked reports whether a copy_start or copy_stop reply carries the value 1.
func acked(raw json.RawMessage) bool {
	var v int
	return json.Unmarshal(raw, &v) == nil && v == 1
}

// redact returns a copy of the request safe to log.
func redact(req domain.Request) domain.Request {
	switch req.Op {
	case domain.OpAuthorize, domain.OpCopyStart, domain.OpCopyStop:
		req.Token = domain.MaskToken(req.Token)
	}

	return req
}
