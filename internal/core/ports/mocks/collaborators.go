package mocks

import (
	"context"
	"time"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type PaymentProcessor struct {
	mock.Mock
}

func NewPaymentProcessor(t testingT) *PaymentProcessor {
	m := &PaymentProcessor{}
	register(&m.Mock, t)
	return m
}

func (_m *PaymentProcessor) Charge(ctx context.Context, req ports.ChargeRequest) (*domain.Payment, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Payment)
	}
	return r0, ret.Error(1)
}

type CacheInvalidator struct {
	mock.Mock
}

func NewCacheInvalidator(t testingT) *CacheInvalidator {
	m := &CacheInvalidator{}
	register(&m.Mock, t)
	return m
}

func (_m *CacheInvalidator) Evict(ctx context.Context, keys ...string) error {
	ret := _m.Called(ctx, keys)
	return ret.Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	register(&m.Mock, t)
	return m
}

func (_m *EventPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

type Locker struct {
	mock.Mock
}

func NewLocker(t testingT) *Locker {
	m := &Locker{}
	register(&m.Mock, t)
	return m
}

func (_m *Locker) TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (ports.Lock, error) {
	ret := _m.Called(ctx, key, wait, lease)

	var r0 ports.Lock
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(ports.Lock)
	}
	return r0, ret.Error(1)
}

type Lock struct {
	mock.Mock
}

func NewLock(t testingT) *Lock {
	m := &Lock{}
	register(&m.Mock, t)
	return m
}

func (_m *Lock) Key() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *Lock) Release(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

func (_m *Lock) Held(ctx context.Context) (bool, error) {
	ret := _m.Called(ctx)
	return ret.Bool(0), ret.Error(1)
}
