package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
)

const testSecret = "pi_3Nabc123_secret_xyz789"

type step struct {
	result *IntentResult
	err    error
}

// fakeGateway отдаёт заранее заданные ответы по очереди для каждой операции
type fakeGateway struct {
	retrieves []step
	confirms  []step
	actions   []step

	// если задано, используется после исчерпания очереди
	retrieveDefault *step
	actionDefault   *step

	retrieveCalls int
	confirmCalls  int
	actionCalls   int

	onConfirm func()
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, _ string) (*IntentResult, error) {
	g.retrieveCalls++
	return next(&g.retrieves, g.retrieveDefault)
}

func (g *fakeGateway) ConfirmPayment(_ context.Context, _ string, _ Instrument, _ BillingDetails) (*IntentResult, error) {
	g.confirmCalls++
	if g.onConfirm != nil {
		g.onConfirm()
	}
	return next(&g.confirms, nil)
}

func (g *fakeGateway) HandleRequiredAction(_ context.Context, _ string) (*IntentResult, error) {
	g.actionCalls++
	return next(&g.actions, g.actionDefault)
}

func next(queue *[]step, def *step) (*IntentResult, error) {
	if len(*queue) == 0 {
		if def != nil {
			return def.result, def.err
		}
		return nil, errors.New("fake gateway: unexpected call")
	}
	s := (*queue)[0]
	*queue = (*queue)[1:]
	return s.result, s.err
}

func intent(status IntentStatus) step {
	return step{result: &IntentResult{IntentID: "pi_3Nabc123", Status: status, Amount: 5000, Currency: "usd"}}
}

func gatewayErr(typ, code, msg string) step {
	return step{err: &GatewayError{Type: typ, Code: code, Message: msg}}
}

func newTestEngine(gw Gateway) *Engine {
	return NewEngine(gw, 3, nil, logger.NewNop())
}

func request() *Request {
	return &Request{
		BookingID:    7,
		ClientSecret: testSecret,
		Instrument:   Instrument{PaymentMethodID: "pm_card_visa"},
		Billing:      BillingDetails{Name: "Ivan", Email: "ivan@example.com"},
	}
}

func TestReconcile_AlreadySucceededSkipsConfirm(t *testing.T) {
	gw := &fakeGateway{retrieves: []step{intent(StatusSucceeded)}}

	out, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, out.Status)
	assert.False(t, out.Confirmed)
	assert.Equal(t, 0, gw.confirmCalls)
	assert.Equal(t, 1, gw.retrieveCalls)
}

func TestReconcile_ConfirmSucceeds(t *testing.T) {
	for _, initial := range []IntentStatus{StatusRequiresConfirmation, StatusRequiresPaymentMethod} {
		gw := &fakeGateway{
			retrieves: []step{intent(initial)},
			confirms:  []step{intent(StatusSucceeded)},
		}

		out, err := newTestEngine(gw).Reconcile(context.Background(), request())
		require.NoError(t, err, initial)
		assert.True(t, out.Confirmed)
		assert.Equal(t, int64(5000), out.Amount)
		assert.Equal(t, 1, gw.confirmCalls)
	}
}

func TestReconcile_StepUpThenSuccess(t *testing.T) {
	gw := &fakeGateway{
		retrieves: []step{
			intent(StatusRequiresConfirmation),
			intent(StatusSucceeded),
		},
		confirms: []step{intent(StatusRequiresAction)},
		actions:  []step{intent(StatusSucceeded)},
	}

	out, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 1, out.RetryCount)
	assert.Equal(t, 1, gw.confirmCalls)
	assert.Equal(t, 1, gw.actionCalls)
	assert.Equal(t, 2, gw.retrieveCalls)
}

func redirectAction() step {
	s := intent(StatusRequiresAction)
	s.result.NextAction = &NextAction{
		Type:        NextActionRedirectToURL,
		RedirectURL: "https://hooks.stripe.com/3d_secure_2/authenticate/pi_3Nabc123",
		ReturnURL:   "https://app.example.com/return",
	}
	return s
}

func TestReconcile_PendingChallengeReturnsNextAction(t *testing.T) {
	gw := &fakeGateway{
		retrieves: []step{intent(StatusRequiresConfirmation)},
		confirms:  []step{intent(StatusRequiresAction)},
		actions:   []step{redirectAction()},
	}

	out, err := newTestEngine(gw).Reconcile(context.Background(), request())
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrActionRequired)

	action, ok := RequiredAction(err)
	require.True(t, ok)
	assert.Equal(t, "pi_3Nabc123", action.IntentID)
	assert.Equal(t, NextActionRedirectToURL, action.NextAction.Type)
	assert.Contains(t, action.NextAction.RedirectURL, "3d_secure_2")

	_, isFailure := UserMessage(err)
	assert.False(t, isFailure, "a pending challenge is not a payment failure")

	assert.Equal(t, 1, gw.retrieveCalls, "no re-read loop while the customer is in the challenge")
	assert.Equal(t, 1, gw.actionCalls)
}

func TestReconcile_ResubmitAfterChallenge(t *testing.T) {
	// Клиент прошёл challenge и отправил форму повторно: протокол начинается с retrieve
	gw := &fakeGateway{
		retrieves: []step{intent(StatusRequiresAction), intent(StatusSucceeded)},
		actions:   []step{intent(StatusSucceeded)},
	}

	out, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, out.Status)
	assert.False(t, out.Confirmed)
	assert.Equal(t, 0, gw.confirmCalls)
	assert.Equal(t, 2, gw.retrieveCalls)
}

func TestReconcile_ResubmitWithChallengeStillPending(t *testing.T) {
	gw := &fakeGateway{
		retrieves: []step{intent(StatusRequiresAction)},
		actions:   []step{{result: &IntentResult{IntentID: "pi_3Nabc123", Status: StatusRequiresAction}}},
	}

	_, err := newTestEngine(gw).Reconcile(context.Background(), request())
	action, ok := RequiredAction(err)
	require.True(t, ok)
	assert.Empty(t, action.NextAction.Type, "gateway without next_action details")
	assert.Equal(t, 1, gw.actionCalls)
}

func TestReconcile_RetryCap(t *testing.T) {
	gw := &fakeGateway{
		retrieves:       []step{intent(StatusRequiresConfirmation)},
		confirms:        []step{intent(StatusRequiresAction)},
		retrieveDefault: ptrStep(intent(StatusRequiresAction)),
		actionDefault:   ptrStep(intent(StatusRequiresConfirmation)),
	}

	_, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, 4, gw.actionCalls)
	assert.Equal(t, 4, gw.retrieveCalls)

	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, msgTooManyAttempts, msg)
}

func ptrStep(s step) *step {
	return &s
}

func TestReconcile_ValidationFailsBeforeNetwork(t *testing.T) {
	gw := &fakeGateway{}
	req := request()
	req.ClientSecret = "seti_123_secret_abc"

	_, err := newTestEngine(gw).Reconcile(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidClientSecret)
	assert.Equal(t, 0, gw.retrieveCalls)

	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, msgRefreshAndRetry, msg)
}

func TestReconcile_RetrieveErrors(t *testing.T) {
	cases := []struct {
		name string
		step step
		want error
		msg  string
	}{
		{"resource missing", gatewayErr(ErrorTypeInvalidRequest, ErrorCodeResourceMissing, "No such payment_intent"), ErrExpiredOrInvalidSession, msgSessionExpired},
		{"invalid request", gatewayErr(ErrorTypeInvalidRequest, "parameter_invalid", "bad"), ErrInvalidRequest, msgInvalidRequest},
		{"api error carries gateway message", gatewayErr(ErrorTypeAPI, "", "Gateway is down"), ErrUnknownGateway, "Gateway is down"},
		{"transport error", step{err: errors.New("connection reset")}, ErrUnknownGateway, msgUnknownGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{retrieves: []step{tc.step}}
			_, err := newTestEngine(gw).Reconcile(context.Background(), request())
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, 0, gw.confirmCalls, "retrieve errors are terminal")

			msg, ok := UserMessage(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestReconcile_ConfirmErrors(t *testing.T) {
	cases := []struct {
		name string
		step step
		want error
		msg  string
	}{
		{"card declined verbatim", gatewayErr(ErrorTypeCard, "card_declined", "Your card was declined."), ErrCardError, "Your card was declined."},
		{"validation verbatim", gatewayErr(ErrorTypeValidation, "incomplete_number", "Your card number is incomplete."), ErrCardError, "Your card number is incomplete."},
		{"authentication failure", gatewayErr(ErrorTypeInvalidRequest, ErrorCodeAuthenticationFailure, "auth failed"), ErrAuthenticationFailure, msgAuthenticationFailed},
		{"other", gatewayErr(ErrorTypeAPI, "", "boom"), ErrConfirmationFailed, msgConfirmationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{
				retrieves: []step{intent(StatusRequiresPaymentMethod)},
				confirms:  []step{tc.step},
			}
			_, err := newTestEngine(gw).Reconcile(context.Background(), request())
			require.ErrorIs(t, err, tc.want)

			msg, ok := UserMessage(err)
			require.True(t, ok)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestReconcile_TerminalStatuses(t *testing.T) {
	cases := []struct {
		status IntentStatus
		want   error
	}{
		{StatusProcessing, ErrPaymentProcessing},
		{StatusCanceled, ErrPaymentCanceled},
		{IntentStatus("requires_capture"), ErrUnexpectedStatus},
	}

	for _, tc := range cases {
		gw := &fakeGateway{
			retrieves: []step{intent(StatusRequiresConfirmation)},
			confirms:  []step{intent(tc.status)},
		}
		_, err := newTestEngine(gw).Reconcile(context.Background(), request())
		assert.ErrorIs(t, err, tc.want, tc.status)
	}

	// Тот же результат, если статус получен уже при retrieve
	gw := &fakeGateway{retrieves: []step{intent(StatusProcessing)}}
	_, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.ErrorIs(t, err, ErrPaymentProcessing)
	msg, _ := UserMessage(err)
	assert.Equal(t, msgProcessing, msg)
	assert.Equal(t, 0, gw.confirmCalls)
}

func TestReconcile_ActionError(t *testing.T) {
	gw := &fakeGateway{
		retrieves: []step{intent(StatusRequiresConfirmation)},
		confirms:  []step{intent(StatusRequiresAction)},
		actions:   []step{gatewayErr(ErrorTypeInvalidRequest, ErrorCodeAuthenticationFailure, "We are unable to authenticate your payment method.")},
	}

	_, err := newTestEngine(gw).Reconcile(context.Background(), request())
	require.ErrorIs(t, err, ErrActionFailed)
	msg, _ := UserMessage(err)
	assert.Equal(t, "We are unable to authenticate your payment method.", msg)
	assert.Equal(t, 1, gw.retrieveCalls, "no re-entry after a failed action")
}

func TestReconcile_CancelledCallerDropsSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gw := &fakeGateway{
		retrieves: []step{intent(StatusRequiresConfirmation)},
		confirms:  []step{intent(StatusSucceeded)},
		onConfirm: cancel,
	}

	out, err := newTestEngine(gw).Reconcile(ctx, request())
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrAttemptCancelled)
}

func TestValidateClientSecret(t *testing.T) {
	assert.NoError(t, ValidateClientSecret(testSecret))

	for _, bad := range []string{"", "   ", "pi_123", "pi_123_secret_", "pm_123_secret_abc", "pi_12-3_secret_abc"} {
		assert.ErrorIs(t, ValidateClientSecret(bad), ErrInvalidClientSecret, bad)
	}

	id, err := IntentIDFromClientSecret(testSecret)
	require.NoError(t, err)
	assert.Equal(t, "pi_3Nabc123", id)
}
