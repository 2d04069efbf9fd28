package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CopySettings struct {
	TraderToken        string
	DemoTraderToken    string
	SimulateDemoToReal bool
	RecheckDelay       time.Duration
}

// CopyController owns the single active flow of one connection, the
// per-token statuses and the batch driver. It implements ports.EventHandler.
type CopyController struct {
	transport ports.Transport
	journal   ports.LoginJournal
	clock     ports.Clock
	settings  CopySettings
	logger    *zap.Logger
	newID     func() string

	mu         sync.Mutex
	flow       domain.Flow
	waiter     chan domain.Outcome
	batch      *batchRun
	session    *sessionAuth
	timer      *time.Timer
	statuses   map[string]domain.CopierStatus
	simulated  map[string]bool
	demoCopies map[string]bool
	authorized domain.Authorization
	authToken  string
	statusLine string
	notify     func(domain.Notice)

	pendingNotices []domain.Notice
	pendingLogins  []domain.LoginRecord
	pendingResults []func()
}

type batchRun struct {
	kind     domain.FlowKind
	tokens   []string
	index    int
	demo     bool
	outcomes []domain.Outcome
	done     chan []domain.Outcome
}

type sessionAuth struct {
	id    string
	token string
	done  chan authResult
}

type authResult struct {
	auth domain.Authorization
	err  error
}

var _ ports.EventHandler = (*CopyController)(nil)

func NewCopyController(transport ports.Transport, journal ports.LoginJournal, clock ports.Clock, settings CopySettings, logger *zap.Logger) *CopyController {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CopyController{
		transport:  transport,
		journal:    journal,
		clock:      clock,
		settings:   settings,
		logger:     logger,
		newID:      uuid.NewString,
		statuses:   map[string]domain.CopierStatus{},
		simulated:  map[string]bool{},
		demoCopies: map[string]bool{},
		statusLine: "Idle",
	}
}

// OnNotice registers the receiver of success and failure notices. It is
// called outside the controller lock.
func (c *CopyController) OnNotice(fn func(domain.Notice)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notify = fn
}

func (c *CopyController) StartCopy(ctx context.Context, copierToken string, demoToReal bool) (domain.Outcome, error) {
	return c.runSingle(ctx, domain.FlowStart, copierToken, demoToReal)
}

// StopCopy stops copying for copierToken. demoToReal selects the demo trader
// for copies started in an earlier process; with simulation enabled it stops
// the copy locally.
func (c *CopyController) StopCopy(ctx context.Context, copierToken string, demoToReal bool) (domain.Outcome, error) {
	return c.runSingle(ctx, domain.FlowStop, copierToken, demoToReal)
}

// StartAll runs one start flow per token, strictly in order. A failed token
// never stops the batch.
func (c *CopyController) StartAll(ctx context.Context, tokens []string, demoToReal bool) ([]domain.Outcome, error) {
	return c.runBatch(ctx, domain.FlowStart, tokens, demoToReal)
}

func (c *CopyController) StopAll(ctx context.Context, tokens []string, demoToReal bool) ([]domain.Outcome, error) {
	return c.runBatch(ctx, domain.FlowStop, tokens, demoToReal)
}

// Authorize authorizes the connection with token outside any copy flow.
func (c *CopyController) Authorize(ctx context.Context, token string) (domain.Authorization, error) {
	token = domain.NormalizeToken(token)
	if token == "" {
		return domain.Authorization{}, domain.ErrEmptyToken
	}

	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return domain.Authorization{}, domain.ErrFlowInProgress
	}

	pending := &sessionAuth{id: c.newID(), token: token, done: make(chan authResult, 1)}
	c.session = pending
	c.statusLine = "Authorizing..."

	err := c.transport.Send(domain.Request{
		Op:     domain.OpAuthorize,
		Token:  token,
		Tag:    domain.TagSessionAuthorize,
		FlowID: pending.id,
	})
	if err != nil {
		c.session = nil
		c.statusLine = err.Error()
		c.noticeLocked(domain.NoticeError, err.Error())
		c.unlockAndFlush()
		return domain.Authorization{}, err
	}
	c.unlockAndFlush()

	select {
	case res := <-pending.done:
		return res.auth, res.err
	case <-ctx.Done():
		c.mu.Lock()
		if c.session == pending {
			c.session = nil
			c.statusLine = ctx.Err().Error()
		}
		c.unlockAndFlush()
		return domain.Authorization{}, ctx.Err()
	}
}

func (c *CopyController) HandleEvent(ev domain.Event) {
	c.mu.Lock()
	defer c.unlockAndFlush()

	if c.session != nil && ev.MsgType == domain.OpAuthorize && ev.Tag == domain.TagSessionAuthorize && ev.FlowID == c.session.id {
		c.resolveSessionLocked(ev)
		return
	}

	if !c.flow.Active() {
		return
	}

	current := c.flow
	next, effect := current.Advance(ev)
	if effect.Kind == domain.EffectIgnore {
		c.logger.Debug("ignore event",
			zap.String("msg_type", string(ev.MsgType)),
			zap.String("tag", string(ev.Tag)),
			zap.String("step", string(current.Step)),
		)
		return
	}

	if current.Step == domain.StepVerifyingSettings && !ev.AllowCopiers {
		c.logger.Warn("trader settings recheck still reports copiers not allowed",
			zap.String("flow_id", current.ID),
			zap.String("login_id", current.TraderLoginID),
		)
	}

	c.flow = next
	if outcome, finished := c.applyLocked(current, effect); finished {
		c.completeLocked(outcome)
	}
}

// HandleDisconnect finishes the active flow with domain.ErrDisconnected and
// drops the authorization state of the connection.
func (c *CopyController) HandleDisconnect(err error) {
	c.mu.Lock()
	defer c.unlockAndFlush()

	c.authorized = domain.Authorization{}
	c.authToken = ""

	cause := domain.ErrDisconnected
	if err != nil {
		c.logger.Warn("connection lost", zap.Error(err))
	}

	if c.session != nil {
		pending := c.session
		c.session = nil
		c.noticeLocked(domain.NoticeError, cause.Error())
		c.pendingResults = append(c.pendingResults, func() { pending.done <- authResult{err: cause} })
	}

	if c.flow.Active() {
		outcome := c.finishLocked(c.flow, domain.Result{Status: domain.CopierStatusError, Message: cause.Error(), Err: cause})
		c.completeLocked(outcome)
	}

	c.statusLine = "Disconnected"
}

func (c *CopyController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.busyLocked()
}

func (c *CopyController) StatusLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.statusLine
}

// Statuses returns a copy of the per-token status map.
func (c *CopyController) Statuses() map[string]domain.CopierStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.CopierStatus, len(c.statuses))
	for token, status := range c.statuses {
		out[token] = status
	}
	return out
}

func (c *CopyController) Status(token string) domain.CopierStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if status, ok := c.statuses[domain.NormalizeToken(token)]; ok {
		return status
	}
	return domain.CopierStatusIdle
}

func (c *CopyController) Authorization() domain.Authorization {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.authorized
}

func (c *CopyController) runSingle(ctx context.Context, kind domain.FlowKind, copierToken string, demoToReal bool) (domain.Outcome, error) {
	token := domain.NormalizeToken(copierToken)
	if token == "" {
		return domain.Outcome{}, domain.ErrEmptyToken
	}

	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return domain.Outcome{}, domain.ErrFlowInProgress
	}

	if outcome, finished := c.beginLocked(kind, token, demoToReal); finished {
		c.unlockAndFlush()
		return outcome, outcome.Err
	}

	waiter := make(chan domain.Outcome, 1)
	c.waiter = waiter
	c.unlockAndFlush()

	select {
	case outcome := <-waiter:
		return outcome, outcome.Err
	case <-ctx.Done():
		c.mu.Lock()
		var outcome domain.Outcome
		if c.waiter == waiter {
			c.waiter = nil
			outcome = c.abandonLocked(ctx.Err())
		}
		c.unlockAndFlush()
		return outcome, ctx.Err()
	}
}

func (c *CopyController) runBatch(ctx context.Context, kind domain.FlowKind, tokens []string, demoToReal bool) ([]domain.Outcome, error) {
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token = domain.NormalizeToken(token); token != "" {
			normalized = append(normalized, token)
		}
	}
	if len(normalized) == 0 {
		return nil, domain.ErrNoCopiers
	}

	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return nil, domain.ErrFlowInProgress
	}

	run := &batchRun{
		kind:   kind,
		tokens: normalized,
		demo:   demoToReal,
		done:   make(chan []domain.Outcome, 1),
	}
	c.batch = run
	c.logger.Info("batch started", zap.String("kind", string(kind)), zap.Int("tokens", len(normalized)))

	if outcome, finished := c.beginLocked(kind, normalized[0], demoToReal); finished {
		c.advanceBatchLocked(outcome)
	}
	c.unlockAndFlush()

	select {
	case outcomes := <-run.done:
		return outcomes, nil
	case <-ctx.Done():
		c.mu.Lock()
		var outcomes []domain.Outcome
		if c.batch == run {
			c.batch = nil
			if outcome := c.abandonLocked(ctx.Err()); outcome.Token != "" {
				run.outcomes = append(run.outcomes, outcome)
			}
			outcomes = run.outcomes
		}
		c.unlockAndFlush()
		return outcomes, ctx.Err()
	}
}

// abandonLocked finishes the active flow with err once its caller stopped
// waiting. Late responses for it are ignored.
func (c *CopyController) abandonLocked(err error) domain.Outcome {
	c.stopTimerLocked()
	if !c.flow.Active() {
		return domain.Outcome{}
	}

	return c.finishLocked(c.flow, domain.Result{Status: domain.CopierStatusError, Message: err.Error(), Err: err})
}

// beginLocked starts a flow for token. finished reports a flow that ended
// without waiting on the network, such as a simulated copy or a failed send.
func (c *CopyController) beginLocked(kind domain.FlowKind, token string, demoToReal bool) (domain.Outcome, bool) {
	if kind == domain.FlowStart && demoToReal && c.settings.SimulateDemoToReal {
		return c.simulateStartLocked(token), true
	}
	if kind == domain.FlowStop {
		demoToReal = demoToReal || c.demoCopies[token]
		if c.simulated[token] || (demoToReal && c.settings.SimulateDemoToReal) {
			return c.simulateStopLocked(token), true
		}
	}

	trader := c.settings.TraderToken
	if demoToReal {
		trader = c.settings.DemoTraderToken
	}

	var (
		flow   domain.Flow
		effect domain.Effect
	)
	switch kind {
	case domain.FlowStart:
		flow, effect = domain.BeginStart(c.newID(), token, trader, demoToReal)
	default:
		flow, effect = domain.BeginStop(c.newID(), token, trader, demoToReal, c.authToken == token)
	}

	if trader == "" {
		return c.finishLocked(flow, domain.Result{
			Status:  domain.CopierStatusError,
			Message: domain.ErrTraderTokenMissing.Error(),
			Err:     domain.ErrTraderTokenMissing,
		}), true
	}

	c.flow = flow
	c.logger.Debug("flow started",
		zap.String("flow_id", flow.ID),
		zap.String("kind", string(kind)),
		zap.String("token", domain.MaskToken(token)),
		zap.Bool("demo_to_real", demoToReal),
	)

	return c.applyLocked(flow, effect)
}

// applyLocked carries out one effect produced by flow.
func (c *CopyController) applyLocked(flow domain.Flow, effect domain.Effect) (domain.Outcome, bool) {
	if effect.StatusLine != "" {
		c.statusLine = effect.StatusLine
	}

	if effect.Authorized != nil {
		token := flow.CopierToken
		if effect.Authorized.Role == domain.RoleTrader {
			token = flow.TraderToken
		}
		c.recordAuthorizationLocked(*effect.Authorized, token)
	}
	if effect.LoggedOut {
		c.authorized = domain.Authorization{}
		c.authToken = ""
	}

	switch effect.Kind {
	case domain.EffectFinish:
		return c.finishLocked(flow, effect.Result), true
	case domain.EffectSend:
		if effect.Deferred && c.settings.RecheckDelay > 0 {
			c.scheduleLocked(c.flow, effect.Request)
			return domain.Outcome{}, false
		}
		if err := c.transport.Send(effect.Request); err != nil {
			return c.finishLocked(c.flow, domain.Result{Status: domain.CopierStatusError, Message: err.Error(), Err: err}), true
		}
	}

	return domain.Outcome{}, false
}

func (c *CopyController) scheduleLocked(flow domain.Flow, req domain.Request) {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.settings.RecheckDelay, func() {
		c.mu.Lock()
		defer c.unlockAndFlush()

		if c.flow.ID != flow.ID || c.flow.Step != flow.Step {
			return
		}

		if err := c.transport.Send(req); err != nil {
			outcome := c.finishLocked(c.flow, domain.Result{Status: domain.CopierStatusError, Message: err.Error(), Err: err})
			c.completeLocked(outcome)
		}
	})
}

func (c *CopyController) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// finishLocked records the terminal result of flow and resets the active flow.
func (c *CopyController) finishLocked(flow domain.Flow, result domain.Result) domain.Outcome {
	token := flow.CopierToken

	c.stopTimerLocked()
	c.flow = domain.Flow{}
	c.statuses[token] = result.Status
	c.statusLine = result.Message

	if result.Err == nil {
		switch flow.Kind {
		case domain.FlowStart:
			if flow.DemoToReal {
				c.demoCopies[token] = true
			} else {
				delete(c.demoCopies, token)
			}
		case domain.FlowStop:
			delete(c.demoCopies, token)
		}
	}

	outcome := domain.Outcome{
		Token:      token,
		Kind:       flow.Kind,
		Status:     result.Status,
		Message:    result.Message,
		DemoToReal: flow.DemoToReal,
		Err:        result.Err,
	}

	if result.Err != nil {
		c.logger.Warn("flow failed",
			zap.String("flow_id", flow.ID),
			zap.String("kind", string(flow.Kind)),
			zap.String("step", string(flow.Step)),
			zap.String("token", domain.MaskToken(token)),
			zap.Error(result.Err),
		)
		c.noticeLocked(domain.NoticeError, result.Message)
	} else {
		c.logger.Info("flow finished",
			zap.String("flow_id", flow.ID),
			zap.String("kind", string(flow.Kind)),
			zap.String("token", domain.MaskToken(token)),
			zap.String("status", string(result.Status)),
		)
		c.noticeLocked(domain.NoticeOK, result.Message)
	}

	return outcome
}

func (c *CopyController) simulateStartLocked(token string) domain.Outcome {
	c.statuses[token] = domain.CopierStatusCopying
	c.simulated[token] = true
	c.demoCopies[token] = true

	message := "Demo to Real copying started (simulated)"
	c.statusLine = message
	c.noticeLocked(domain.NoticeOK, message)

	return domain.Outcome{
		Token:      token,
		Kind:       domain.FlowStart,
		Status:     domain.CopierStatusCopying,
		Message:    message,
		Simulated:  true,
		DemoToReal: true,
	}
}

func (c *CopyController) simulateStopLocked(token string) domain.Outcome {
	c.statuses[token] = domain.CopierStatusIdle
	delete(c.simulated, token)
	delete(c.demoCopies, token)

	message := "Copying stopped (simulated)"
	c.statusLine = message
	c.noticeLocked(domain.NoticeOK, message)

	return domain.Outcome{
		Token:      token,
		Kind:       domain.FlowStop,
		Status:     domain.CopierStatusIdle,
		Message:    message,
		Simulated:  true,
		DemoToReal: true,
	}
}

// completeLocked hands a terminal outcome to whoever waits for it: the batch
// driver or a single-flow caller.
func (c *CopyController) completeLocked(outcome domain.Outcome) {
	if c.batch != nil {
		c.advanceBatchLocked(outcome)
		return
	}

	if waiter := c.waiter; waiter != nil {
		c.waiter = nil
		c.pendingResults = append(c.pendingResults, func() { waiter <- outcome })
	}
}

func (c *CopyController) advanceBatchLocked(outcome domain.Outcome) {
	run := c.batch

	for {
		run.outcomes = append(run.outcomes, outcome)
		run.index++

		if run.index >= len(run.tokens) {
			c.batch = nil
			outcomes := run.outcomes
			c.logger.Info("batch finished", zap.String("kind", string(run.kind)), zap.Int("tokens", len(outcomes)))
			c.pendingResults = append(c.pendingResults, func() { run.done <- outcomes })
			return
		}

		next, finished := c.beginLocked(run.kind, run.tokens[run.index], run.demo)
		if !finished {
			return
		}
		outcome = next
	}
}

func (c *CopyController) resolveSessionLocked(ev domain.Event) {
	pending := c.session
	c.session = nil

	if ev.Err != nil {
		c.statusLine = ev.Err.Error()
		c.noticeLocked(domain.NoticeError, ev.Err.Error())
		c.pendingResults = append(c.pendingResults, func() { pending.done <- authResult{err: ev.Err} })
		return
	}

	auth := domain.Authorization{
		Role:        domain.RoleSession,
		LoginID:     ev.LoginID,
		AccountType: domain.DetectAccountType(ev.LoginID),
	}
	c.recordAuthorizationLocked(auth, pending.token)

	message := fmt.Sprintf("Authorized as %s (%s)", auth.LoginID, auth.AccountType.Label())
	c.statusLine = message
	c.noticeLocked(domain.NoticeOK, message)
	c.pendingResults = append(c.pendingResults, func() { pending.done <- authResult{auth: auth} })
}

func (c *CopyController) recordAuthorizationLocked(auth domain.Authorization, token string) {
	c.authorized = auth
	c.authToken = token

	if c.journal == nil || auth.LoginID == "" {
		return
	}

	c.pendingLogins = append(c.pendingLogins, domain.LoginRecord{
		LoginID:     auth.LoginID,
		AccountType: auth.AccountType,
		Role:        auth.Role,
		Token:       domain.MaskToken(token),
		At:          c.clock.Now(),
	})
}

func (c *CopyController) noticeLocked(kind domain.NoticeKind, text string) {
	c.pendingNotices = append(c.pendingNotices, domain.Notice{Kind: kind, Text: text})
}

func (c *CopyController) busyLocked() bool {
	return c.flow.Active() || c.batch != nil || c.session != nil
}

// unlockAndFlush releases the lock, then writes journal entries, emits
// notices and finally wakes waiting callers.
func (c *CopyController) unlockAndFlush() {
	logins := c.pendingLogins
	notices := c.pendingNotices
	results := c.pendingResults
	notify := c.notify
	c.pendingLogins = nil
	c.pendingNotices = nil
	c.pendingResults = nil
	c.mu.Unlock()

	for _, record := range logins {
		if err := c.journal.Record(context.Background(), record); err != nil {
			c.logger.Warn("record login", zap.String("login_id", record.LoginID), zap.Error(err))
		}
	}

	if notify != nil {
		for _, notice := range notices {
			notify(notice)
		}
	}

	for _, deliver := range results {
		deliver()
	}
}
