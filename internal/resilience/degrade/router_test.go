package degrade

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"tourbook/internal/queue"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"
)

type fakeEnqueuer struct {
	enqueueFunc func(ctx context.Context, opType string, payload map[string]any) (string, error)
	calls       int
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, opType string, payload map[string]any, _ ...queue.Option) (string, error) {
	f.calls++
	if f.enqueueFunc != nil {
		return f.enqueueFunc(ctx, opType, payload)
	}
	return "op-1", nil
}

type fakeHealth struct {
	failures  []string
	successes []string
}

func (f *fakeHealth) RecordFailure(_ context.Context, name string, _ error) {
	f.failures = append(f.failures, name)
}

func (f *fakeHealth) RecordSuccess(_ context.Context, name string) {
	f.successes = append(f.successes, name)
}

func TestExecuteSuccess(t *testing.T) {
	enq := &fakeEnqueuer{}
	health := &fakeHealth{}
	router := NewRouter(enq, health, logger.Discard())

	outcome, err := router.Execute(context.Background(),
		func(context.Context) (any, error) { return "charged", nil },
		Descriptor{Type: model.OpTypePaymentCreate, Dependency: model.DepPaymentGateway},
	)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !outcome.Success {
		t.Error("expected success outcome")
	}
	if outcome.Result != "charged" {
		t.Errorf("expected action result passed through, got %v", outcome.Result)
	}
	if enq.calls != 0 {
		t.Error("nothing should be queued on success")
	}
	if len(health.successes) != 1 || health.successes[0] != model.DepPaymentGateway {
		t.Errorf("expected success recorded for payment gateway, got %v", health.successes)
	}
}

func TestExecuteTransientFailureQueues(t *testing.T) {
	enq := &fakeEnqueuer{}
	health := &fakeHealth{}
	router := NewRouter(enq, health, logger.Discard())

	outcome, err := router.Execute(context.Background(),
		func(context.Context) (any, error) { return nil, errors.New("dial tcp: ECONNREFUSED") },
		Descriptor{
			Type:       model.OpTypeEmailSend,
			Payload:    map[string]any{"to": "a@b.com"},
			Dependency: model.DepEmailSender,
		},
	)
	if err != nil {
		t.Fatalf("expected transient failure swallowed, got %v", err)
	}
	if outcome.Success {
		t.Error("expected non-success outcome")
	}
	if !outcome.Queued {
		t.Error("expected operation queued")
	}
	if outcome.OperationID == "" {
		t.Error("expected a tracking id")
	}
	if enq.calls != 1 {
		t.Errorf("expected one enqueue call, got %d", enq.calls)
	}
	if len(health.failures) != 1 || health.failures[0] != model.DepEmailSender {
		t.Errorf("expected failure recorded for email sender, got %v", health.failures)
	}
}

func TestExecuteFatalFailureRethrowsOriginal(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := NewRouter(enq, &fakeHealth{}, logger.Discard())

	original := errors.New("Invalid input data")
	_, err := router.Execute(context.Background(),
		func(context.Context) (any, error) { return nil, original },
		Descriptor{Type: model.OpTypeEmailSend},
	)
	if err != original {
		t.Fatalf("expected the original error unchanged, got %v", err)
	}
	if enq.calls != 0 {
		t.Error("fatal errors must not be queued")
	}
}

func TestExecuteEnqueueFailureSurfacesOriginal(t *testing.T) {
	original := errors.New("connection refused")
	enq := &fakeEnqueuer{
		enqueueFunc: func(context.Context, string, map[string]any) (string, error) {
			return "", errors.New("queue store down")
		},
	}
	router := NewRouter(enq, nil, logger.Discard())

	_, err := router.Execute(context.Background(),
		func(context.Context) (any, error) { return nil, original },
		Descriptor{Type: model.OpTypeWebhookSend},
	)
	if err != original {
		t.Fatalf("expected the original dependency error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindFatal},
		{"transient wrapper", Transient(errors.New("anything at all")), KindRetriable},
		{"permanent wrapper beats message", Permanent(errors.New("connection refused")), KindFatal},
		{"connection refused text", errors.New("ECONNREFUSED"), KindRetriable},
		{"connection reset text", errors.New("read: connection reset by peer"), KindRetriable},
		{"timeout text", errors.New("request timeout"), KindRetriable},
		{"rate limit text", errors.New("429 Too Many Requests"), KindRetriable},
		{"syscall refused", syscall.ECONNREFUSED, KindRetriable},
		{"deadline exceeded", context.DeadlineExceeded, KindRetriable},
		{"validation text", errors.New("Invalid input data"), KindFatal},
		{"unknown defaults fatal", errors.New("something odd happened"), KindFatal},
		{"app error unavailable", apperrors.Unavailable("gateway down"), KindRetriable},
		{"app error timeout", apperrors.Timeout("gateway slow"), KindRetriable},
		{"app error validation", apperrors.InvalidInput("bad payload"), KindFatal},
		{"app error conflict", apperrors.Conflict("duplicate"), KindFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}
