package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ack(msgType Operation, req Request) Event {
	return Event{MsgType: msgType, Tag: req.Tag, FlowID: req.FlowID}
}

func TestStartFlowFullSequenceWhenCopiersNotAllowed(t *testing.T) {
	flow, effect := BeginStart("f1", "copier-token", "trader-token", false)
	require.Equal(t, EffectSend, effect.Kind)
	assert.Equal(t, Request{Op: OpAuthorize, Token: "trader-token", Tag: TagAuthTrader, FlowID: "f1"}, effect.Request)
	assert.Equal(t, "Authorizing real trader...", effect.StatusLine)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR100"
	flow, effect = flow.Advance(ev)
	require.Equal(t, StepCheckingSettings, flow.Step)
	assert.Equal(t, TagGetSettings1, effect.Request.Tag)
	require.NotNil(t, effect.Authorized)
	assert.Equal(t, Authorization{Role: RoleTrader, LoginID: "CR100", AccountType: AccountTypeReal}, *effect.Authorized)

	flow, effect = flow.Advance(ack(OpGetSettings, effect.Request))
	require.Equal(t, StepAwaitingAllow, flow.Step)
	assert.Equal(t, OpSetSettings, effect.Request.Op)
	assert.Equal(t, "CR100", effect.Request.LoginID)
	assert.Equal(t, TagSetAllow, effect.Request.Tag)

	flow, effect = flow.Advance(ack(OpSetSettings, effect.Request))
	require.Equal(t, StepVerifyingSettings, flow.Step)
	assert.True(t, effect.Deferred)
	assert.Equal(t, TagGetSettings2, effect.Request.Tag)

	ev = ack(OpGetSettings, effect.Request)
	ev.AllowCopiers = true
	flow, effect = flow.Advance(ev)
	require.Equal(t, StepLogoutTrader, flow.Step)
	assert.Equal(t, OpLogout, effect.Request.Op)

	flow, effect = flow.Advance(ack(OpLogout, effect.Request))
	require.Equal(t, StepAuthCopier, flow.Step)
	assert.True(t, effect.LoggedOut)
	assert.Equal(t, Request{Op: OpAuthorize, Token: "copier-token", Tag: TagAuthCopier, FlowID: "f1"}, effect.Request)

	ev = ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR200"
	flow, effect = flow.Advance(ev)
	require.Equal(t, StepCopyStart, flow.Step)
	assert.Equal(t, Request{Op: OpCopyStart, Token: "trader-token", Tag: TagCopyStart, FlowID: "f1"}, effect.Request)
	require.NotNil(t, effect.Authorized)
	assert.Equal(t, RoleCopier, effect.Authorized.Role)

	flow, effect = flow.Advance(ack(OpCopyStart, effect.Request))
	assert.False(t, flow.Active())
	require.Equal(t, EffectFinish, effect.Kind)
	assert.Equal(t, CopierStatusCopying, effect.Result.Status)
	assert.Equal(t, "Real to Real copying started", effect.Result.Message)
	assert.NoError(t, effect.Result.Err)
}

func TestStartFlowSkipsPermissionStepsWhenAllowed(t *testing.T) {
	flow, effect := BeginStart("f2", "copier-token", "trader-token", false)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR100"
	flow, effect = flow.Advance(ev)

	ev = ack(OpGetSettings, effect.Request)
	ev.AllowCopiers = true
	flow, effect = flow.Advance(ev)

	require.Equal(t, StepAuthCopier, flow.Step)
	assert.Equal(t, OpAuthorize, effect.Request.Op)
	assert.Equal(t, "copier-token", effect.Request.Token)
	assert.False(t, effect.LoggedOut)
}

func TestStartFlowRejectsRealTraderForDemoToReal(t *testing.T) {
	flow, effect := BeginStart("f3", "copier-token", "demo-trader", true)
	assert.Equal(t, "Authorizing demo trader...", effect.StatusLine)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR100"
	flow, effect = flow.Advance(ev)

	assert.False(t, flow.Active())
	require.Equal(t, EffectFinish, effect.Kind)
	assert.Equal(t, CopierStatusError, effect.Result.Status)
	assert.ErrorIs(t, effect.Result.Err, ErrTraderTypeMismatch)
}

func TestStartFlowDemoToRealCarriesFlagToCopyStart(t *testing.T) {
	flow, effect := BeginStart("f4", "copier-token", "demo-trader", true)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "VRTC100"
	flow, effect = flow.Advance(ev)

	ev = ack(OpGetSettings, effect.Request)
	ev.AllowCopiers = true
	flow, effect = flow.Advance(ev)

	ev = ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR200"
	flow, effect = flow.Advance(ev)

	assert.True(t, effect.Request.DemoToReal)

	_, effect = flow.Advance(ack(OpCopyStart, effect.Request))
	assert.Equal(t, "Demo to Real copying started", effect.Result.Message)
}

func TestStartFlowLogsOutAfterReverifyEvenIfStillDisallowed(t *testing.T) {
	flow, effect := BeginStart("f5", "copier-token", "trader-token", false)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR100"
	flow, effect = flow.Advance(ev)
	flow, effect = flow.Advance(ack(OpGetSettings, effect.Request))
	flow, effect = flow.Advance(ack(OpSetSettings, effect.Request))
	flow, effect = flow.Advance(ack(OpGetSettings, effect.Request))

	assert.True(t, flow.Active())
	assert.Equal(t, StepLogoutTrader, flow.Step)
	assert.Equal(t, EffectSend, effect.Kind)
	assert.Equal(t, OpLogout, effect.Request.Op)
	assert.Equal(t, TagLogoutTrader, effect.Request.Tag)
}

func TestAdvanceServerErrorFinishesAtAnyStep(t *testing.T) {
	flow, effect := BeginStart("f6", "copier-token", "trader-token", false)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR100"
	flow, effect = flow.Advance(ev)

	ev = ack(OpGetSettings, effect.Request)
	ev.Err = &ServerError{Code: "PermissionDenied", Message: "Permission denied"}
	flow, effect = flow.Advance(ev)

	assert.False(t, flow.Active())
	require.Equal(t, EffectFinish, effect.Kind)
	assert.Equal(t, CopierStatusError, effect.Result.Status)
	assert.Equal(t, "Permission denied", effect.Result.Message)

	var serverErr *ServerError
	require.ErrorAs(t, effect.Result.Err, &serverErr)
	assert.Equal(t, "PermissionDenied", serverErr.Code)
}

func TestAdvanceIgnoresMismatchedEvents(t *testing.T) {
	flow, effect := BeginStart("f7", "copier-token", "trader-token", false)
	req := effect.Request

	tests := []struct {
		name string
		ev   Event
	}{
		{name: "other flow id", ev: Event{MsgType: OpAuthorize, Tag: req.Tag, FlowID: "stale"}},
		{name: "other tag", ev: Event{MsgType: OpAuthorize, Tag: TagAuthCopier, FlowID: req.FlowID}},
		{name: "other msg type", ev: Event{MsgType: OpGetSettings, Tag: req.Tag, FlowID: req.FlowID}},
		{name: "untagged", ev: Event{MsgType: OpAuthorize}},
		{name: "ping", ev: Event{MsgType: OpPing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect := flow.Advance(tt.ev)
			assert.Equal(t, flow, next)
			assert.Equal(t, EffectIgnore, effect.Kind)
		})
	}
}

func TestIdleFlowIgnoresEverything(t *testing.T) {
	flow := Flow{}
	next, effect := flow.Advance(Event{MsgType: OpCopyStart, Tag: TagCopyStart})

	assert.Equal(t, flow, next)
	assert.Equal(t, EffectIgnore, effect.Kind)
}

func TestStopFlowAuthorizesCopierFirst(t *testing.T) {
	flow, effect := BeginStop("s1", "copier-token", "trader-token", false, false)
	require.Equal(t, StepStopAuthCopier, flow.Step)
	assert.Equal(t, Request{Op: OpAuthorize, Token: "copier-token", Tag: TagStopAuthCopier, FlowID: "s1"}, effect.Request)

	ev := ack(OpAuthorize, effect.Request)
	ev.LoginID = "CR200"
	flow, effect = flow.Advance(ev)
	require.Equal(t, StepCopyStop, flow.Step)
	assert.Equal(t, Request{Op: OpCopyStop, Token: "trader-token", Tag: TagStopCopy, FlowID: "s1"}, effect.Request)

	flow, effect = flow.Advance(ack(OpCopyStop, effect.Request))
	assert.False(t, flow.Active())
	assert.Equal(t, CopierStatusIdle, effect.Result.Status)
	assert.Equal(t, "Copying stopped", effect.Result.Message)
}

func TestStopFlowSkipsAuthorizeWhenAlreadyCopier(t *testing.T) {
	flow, effect := BeginStop("s2", "copier-token", "trader-token", false, true)

	require.Equal(t, StepCopyStop, flow.Step)
	assert.Equal(t, OpCopyStop, effect.Request.Op)
	assert.Equal(t, TagStopCopy, effect.Request.Tag)
}
