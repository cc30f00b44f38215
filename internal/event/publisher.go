package event

import "context"

type Publisher interface {
	PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error
	PublishPaymentRecorded(ctx context.Context, event PaymentRecordedEvent) error
}

// NoopPublisher is used when messaging is disabled in configuration.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) PublishLoanStatusChanged(context.Context, LoanStatusChangedEvent) error {
	return nil
}

func (*NoopPublisher) PublishPaymentRecorded(context.Context, PaymentRecordedEvent) error {
	return nil
}
