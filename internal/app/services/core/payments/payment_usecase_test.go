package payments

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/app/services/core/appointments"
	"ambica-diagnostic-service/internal/app/services/core/slot"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/dto/requests"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/testutil"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testDate   = "2026-10-20"
	testSecret = "test_key_secret"
)

// fakeGateway issues sequential order ids and verifies signatures with testSecret.
type fakeGateway struct {
	orders  atomic.Int64
	calls   atomic.Int64
	failErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountInMinorUnits int64, currency, receipt string) (*models.GatewayOrder, error) {
	g.calls.Add(1)
	if g.failErr != nil {
		return nil, g.failErr
	}
	n := g.orders.Add(1)
	return &models.GatewayOrder{
		ID:       fmt.Sprintf("order_%04d", n),
		Amount:   amountInMinorUnits,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderRef, paymentRef, signature string) (bool, error) {
	return hmac.Equal([]byte(sign(orderRef, paymentRef)), []byte(signature)), nil
}

func sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

type paymentFixture struct {
	usecase         contracts.PaymentUsecase
	appointments    contracts.AppointmentUsecase
	repo            *testutil.MemoryPaymentRepository
	appointmentRepo *testutil.MemoryAppointmentRepository
	gateway         *fakeGateway
	publisher       *testutil.RecordingPublisher
	clock           *clock.MockClock
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	cfg := &config.InternalConfig{
		App: config.App{
			PaymentExpiredTimeInMinutes:           30,
			PaymentGatewayRequestTimeoutInSeconds: 5,
		},
		Slot:           config.AppSlot{Capacity: 3, StartTime: "06:00", EndTime: "08:30", IntervalInMinutes: 15},
		PaymentGateway: config.AppPaymentGateway{Currency: "INR"},
		Worker: config.AppWorker{
			ReconcileConfirmMaxAttempts:      3,
			ReconcileConfirmInitialDelayInMs: 1,
		},
	}
	f := &paymentFixture{
		repo:            testutil.NewMemoryPaymentRepository(),
		appointmentRepo: testutil.NewMemoryAppointmentRepository(),
		gateway:         &fakeGateway{},
		publisher:       &testutil.RecordingPublisher{},
		clock:           clock.NewMockClock(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)),
	}
	slotUsecase, err := slot.NewSlotUsecase(testutil.NewMemorySlotRepository(), f.appointmentRepo, cfg, f.clock, zap.NewNop())
	require.NoError(t, err)
	f.appointments = appointments.NewAppointmentUsecase(f.appointmentRepo, slotUsecase, testutil.NewMemoryReportStorage("reports"), f.publisher, f.clock, zap.NewNop())
	f.usecase = NewPaymentUsecase(f.repo, f.appointments, f.gateway, f.publisher, f.clock, cfg, zap.NewNop())
	return f
}

func (f *paymentFixture) book(t *testing.T, timeSlot, paymentMode string) *models.Appointment {
	t.Helper()
	appointment, err := f.appointments.Book(context.Background(), &requests.CreateAppointment{
		TestType:    constvars.TestTypeBloodTest,
		TestID:      "cbc",
		TestName:    "Complete Blood Count",
		Date:        testDate,
		TimeSlot:    timeSlot,
		PaymentMode: paymentMode,
		Amount:      350.0,
		UserID:      "user-1",
	})
	require.NoError(t, err)
	return appointment
}

func (f *paymentFixture) open(t *testing.T, appointmentID string) *models.Payment {
	t.Helper()
	payment, err := f.usecase.OpenOrder(context.Background(), &requests.CreatePaymentOrder{
		AppointmentID: appointmentID,
		Amount:        350.0,
		UserID:        "user-1",
	})
	require.NoError(t, err)
	return payment
}

func verifyRequest(orderRef, paymentRef string) *requests.VerifyPayment {
	return &requests.VerifyPayment{
		RazorpayOrderID:   orderRef,
		RazorpayPaymentID: paymentRef,
		RazorpaySignature: sign(orderRef, paymentRef),
	}
}

func TestPaymentUsecase_OpenOrderThenReconcile(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)

	payment := f.open(t, appointment.ID)
	assert.Equal(t, constvars.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(35000), payment.GatewayAmount)
	assert.Equal(t, "INR", payment.Currency)
	assert.Equal(t, appointment.ID, payment.AppointmentID)

	outcome, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	assert.False(t, outcome.Replayed)
	assert.False(t, outcome.RefundRequired)
	assert.Equal(t, constvars.PaymentStatusCompleted, outcome.Payment.Status)
	assert.Equal(t, "pay_A1", outcome.Payment.PaymentRef)
	require.NotNil(t, outcome.Appointment)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, outcome.Appointment.Status)

	stored := f.appointmentRepo.Get(appointment.ID)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, stored.Status)
	assert.Equal(t, constvars.PaymentStatusCompleted, stored.PaymentStatus)
	assert.Equal(t, "pay_A1", stored.PaymentID)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentCompleted))

	_, err = f.usecase.OpenOrder(ctx, &requests.CreatePaymentOrder{AppointmentID: appointment.ID, Amount: 350.0, UserID: "user-1"})
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))
}

func TestPaymentUsecase_ReconcileTamperedSignature(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)
	writes := f.repo.Writes()
	valid := sign(payment.OrderRef, "pay_A1")

	cases := []struct {
		name      string
		signature string
		reason    string
	}{
		{"signed for another payment", sign(payment.OrderRef, "pay_other"), constvars.SignatureRejectMismatch},
		{"not hex", "tampered-signature", constvars.SignatureRejectMalformed},
		{"truncated", valid[:63], constvars.SignatureRejectMalformed},
		{"padded", valid + "00", constvars.SignatureRejectMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			request := verifyRequest(payment.OrderRef, "pay_A1")
			request.RazorpaySignature = tc.signature

			_, err := f.usecase.Reconcile(context.Background(), request)
			require.Error(t, err)
			assert.True(t, exceptions.HasCode(err, constvars.ErrCodeVerificationFailed))
			assert.False(t, exceptions.HasCode(err, constvars.ErrCodeInvalidInput))

			var customErr *exceptions.CustomError
			require.True(t, errors.As(err, &customErr))
			assert.Equal(t, fmt.Sprintf(constvars.ErrDevSignatureRejected, tc.reason), customErr.DevMessage)
		})
	}

	assert.Equal(t, writes, f.repo.Writes())
	assert.Equal(t, constvars.PaymentStatusPending, f.repo.Get(payment.OrderRef).Status)
	assert.Equal(t, constvars.AppointmentStatusPending, f.appointmentRepo.Get(appointment.ID).Status)
}

func TestPaymentUsecase_ReconcileReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)

	first, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	writes := f.repo.Writes()

	f.clock.Add(time.Minute)
	second, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, writes, f.repo.Writes())
	assert.Equal(t, *first.Payment.CompletedAt, *second.Payment.CompletedAt)
	assert.Equal(t, *first.Appointment.ConfirmedAt, *second.Appointment.ConfirmedAt)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentCompleted))
	assert.Equal(t, 1, f.publisher.Count(constvars.EventAppointmentConfirmed))

	_, err = f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_B2"))
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))
}

func TestPaymentUsecase_ConcurrentReconcileCompletesOnce(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)

	var (
		wg       sync.WaitGroup
		replayed atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.usecase.Reconcile(context.Background(), verifyRequest(payment.OrderRef, "pay_A1"))
			if assert.NoError(t, err) && outcome.Replayed {
				replayed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(7), replayed.Load())
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentCompleted))
	assert.Equal(t, constvars.AppointmentStatusConfirmed, f.appointmentRepo.Get(appointment.ID).Status)
}

func TestPaymentUsecase_ReconcileUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.usecase.Reconcile(context.Background(), verifyRequest("order_missing", "pay_A1"))
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeNotFound))
}

func TestPaymentUsecase_OpenOrderReturnsExistingPending(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)

	first := f.open(t, appointment.ID)
	second := f.open(t, appointment.ID)

	assert.Equal(t, first.OrderRef, second.OrderRef)
	assert.Equal(t, int64(1), f.gateway.calls.Load())
	assert.Equal(t, 1, f.repo.Len())
}

func TestPaymentUsecase_ConcurrentOpenOrderKeepsOnePending(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		orderRefs = make(map[string]struct{})
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payment, err := f.usecase.OpenOrder(context.Background(), &requests.CreatePaymentOrder{
				AppointmentID: appointment.ID,
				Amount:        350.0,
				UserID:        "user-1",
			})
			if assert.NoError(t, err) {
				mu.Lock()
				orderRefs[payment.OrderRef] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, orderRefs, 1)
	assert.Equal(t, 1, f.repo.Len())
}

func TestPaymentUsecase_OpenOrderGatewayTimeoutStoresNothing(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	f.gateway.failErr = exceptions.ErrPaymentGatewayTimeout(context.DeadlineExceeded)

	_, err := f.usecase.OpenOrder(context.Background(), &requests.CreatePaymentOrder{AppointmentID: appointment.ID, Amount: 350.0, UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeGatewayOutcomeUnknown))
	assert.True(t, exceptions.IsRetryable(err))
	assert.Equal(t, 0, f.repo.Len())

	f.gateway.failErr = nil
	payment := f.open(t, appointment.ID)
	assert.Equal(t, constvars.PaymentStatusPending, payment.Status)
}

func TestPaymentUsecase_OpenOrderRejections(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	online := f.book(t, "06:00", constvars.PaymentModeOnline)
	atCenter := f.book(t, "06:15", constvars.PaymentModeAtCenter)

	_, err := f.usecase.OpenOrder(ctx, &requests.CreatePaymentOrder{AppointmentID: online.ID, Amount: 300.0, UserID: "user-1"})
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidInput))

	_, err = f.usecase.OpenOrder(ctx, &requests.CreatePaymentOrder{AppointmentID: atCenter.ID, Amount: 350.0, UserID: "user-1"})
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))

	_, err = f.usecase.OpenOrder(ctx, &requests.CreatePaymentOrder{AppointmentID: online.ID, Amount: 350.0, UserID: "user-2"})
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeForbidden))

	_, err = f.usecase.OpenOrder(ctx, &requests.CreatePaymentOrder{AppointmentID: "missing", Amount: 350.0, UserID: "user-1"})
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeNotFound))

	assert.Equal(t, int64(0), f.gateway.calls.Load())
	assert.Equal(t, 0, f.repo.Len())
}

func TestPaymentUsecase_ReconcileForCancelledAppointmentFlagsRefund(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)

	_, err := f.appointments.Cancel(ctx, requests.AppointmentActor{UserID: "user-1"}, appointment.ID, "")
	require.NoError(t, err)

	outcome, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	assert.True(t, outcome.RefundRequired)
	assert.True(t, outcome.Payment.RefundRequired)
	assert.Equal(t, constvars.PaymentStatusCompleted, outcome.Payment.Status)
	assert.Equal(t, constvars.AppointmentStatusCancelled, outcome.Appointment.Status)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentRefundRequired))

	replay, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.True(t, replay.RefundRequired)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentRefundRequired))
	assert.Equal(t, constvars.AppointmentStatusCancelled, f.appointmentRepo.Get(appointment.ID).Status)
}

func TestPaymentUsecase_ReconcileRetriesTransientConfirmFailure(t *testing.T) {
	f := newPaymentFixture(t)
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)
	f.appointmentRepo.Fail("Transition", exceptions.ErrMongoDBUpdateDocument(errors.New("no primary")), 2)

	outcome, err := f.usecase.Reconcile(context.Background(), verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, outcome.Appointment.Status)
}

func TestPaymentUsecase_ReconcileSurfacesPersistentStoreError(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)
	f.appointmentRepo.Fail("Transition", exceptions.ErrMongoDBUpdateDocument(errors.New("no primary")), -1)

	_, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeTransientStoreError))
	assert.Equal(t, constvars.PaymentStatusCompleted, f.repo.Get(payment.OrderRef).Status)

	f.appointmentRepo.Clear("Transition")
	outcome, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)
	assert.True(t, outcome.Replayed)
	assert.Equal(t, constvars.AppointmentStatusConfirmed, outcome.Appointment.Status)
}

func TestPaymentUsecase_ExpirePending(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)

	expired, err := f.usecase.ExpirePending(ctx, payment.OrderRef, "")
	require.NoError(t, err)
	assert.Equal(t, constvars.PaymentStatusFailed, expired.Status)
	assert.Equal(t, adminExpiryReason, expired.FailureReason)
	assert.Equal(t, constvars.PaymentStatusFailed, f.appointmentRepo.Get(appointment.ID).PaymentStatus)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentExpired))

	again, err := f.usecase.ExpirePending(ctx, payment.OrderRef, "")
	require.NoError(t, err)
	assert.Equal(t, constvars.PaymentStatusFailed, again.Status)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentExpired))

	_, err = f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))
	assert.Equal(t, constvars.AppointmentStatusPending, f.appointmentRepo.Get(appointment.ID).Status)

	_, err = f.usecase.ExpirePending(ctx, "order_missing", "")
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeNotFound))
}

func TestPaymentUsecase_ExpirePendingRejectsCompleted(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)
	_, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_A1"))
	require.NoError(t, err)

	_, err = f.usecase.ExpirePending(ctx, payment.OrderRef, "manual")
	assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))
	assert.Equal(t, constvars.PaymentStatusCompleted, f.repo.Get(payment.OrderRef).Status)
}

func TestPaymentUsecase_ExpireStale(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	old := f.book(t, "06:00", constvars.PaymentModeOnline)
	oldPayment := f.open(t, old.ID)

	f.clock.Add(20 * time.Minute)
	fresh := f.book(t, "06:15", constvars.PaymentModeOnline)
	freshPayment := f.open(t, fresh.ID)

	f.clock.Add(15 * time.Minute)
	count, err := f.usecase.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, constvars.PaymentStatusFailed, f.repo.Get(oldPayment.OrderRef).Status)
	assert.Equal(t, staleExpiryReason, f.repo.Get(oldPayment.OrderRef).FailureReason)
	assert.Equal(t, constvars.PaymentStatusPending, f.repo.Get(freshPayment.OrderRef).Status)
	assert.Equal(t, constvars.PaymentStatusFailed, f.appointmentRepo.Get(old.ID).PaymentStatus)

	count, err = f.usecase.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	reopened := f.open(t, old.ID)
	assert.NotEqual(t, oldPayment.OrderRef, reopened.OrderRef)
}

func TestPaymentUsecase_ExpireStaleDrainsEveryBatch(t *testing.T) {
	f := newPaymentFixture(t)
	createdAt := f.clock.Now()
	total := expireStaleBatchSize + 1
	for i := 0; i < total; i++ {
		f.repo.Put(models.Payment{
			ID:            fmt.Sprintf("p-%d", i),
			AppointmentID: fmt.Sprintf("a-%d", i),
			OrderRef:      fmt.Sprintf("order_stale_%04d", i),
			Status:        constvars.PaymentStatusPending,
			TimeModel:     models.TimeModel{CreatedAt: createdAt, UpdatedAt: createdAt},
		})
	}

	f.clock.Add(31 * time.Minute)
	count, err := f.usecase.ExpireStale(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, total, count)
	assert.Equal(t, constvars.PaymentStatusFailed, f.repo.Get("order_stale_0000").Status)
	assert.Equal(t, constvars.PaymentStatusFailed, f.repo.Get(fmt.Sprintf("order_stale_%04d", total-1)).Status)
	assert.Equal(t, total, f.publisher.Count(constvars.EventPaymentExpired))
}

func TestPaymentUsecase_ReconcileAfterExpiryFlagsRefund(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)

	f.clock.Add(31 * time.Minute)
	expired, err := f.usecase.ExpireStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	outcome, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_late"))
	require.NoError(t, err)
	assert.True(t, outcome.RefundRequired)
	assert.False(t, outcome.Replayed)
	assert.Equal(t, constvars.PaymentStatusFailed, outcome.Payment.Status)
	require.NotNil(t, outcome.Appointment)
	assert.Equal(t, constvars.AppointmentStatusPending, outcome.Appointment.Status)

	stored := f.repo.Get(payment.OrderRef)
	assert.Equal(t, constvars.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "pay_late", stored.PaymentRef)
	assert.True(t, stored.RefundRequired)
	require.NotNil(t, stored.CapturedAt)
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentRefundRequired))
	assert.Equal(t, 0, f.publisher.Count(constvars.EventPaymentCompleted))
	assert.Equal(t, constvars.AppointmentStatusPending, f.appointmentRepo.Get(appointment.ID).Status)

	t.Run("replay does not write again", func(t *testing.T) {
		writes := f.repo.Writes()
		replay, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_late"))
		require.NoError(t, err)
		assert.True(t, replay.Replayed)
		assert.True(t, replay.RefundRequired)
		assert.Equal(t, writes, f.repo.Writes())
		assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentRefundRequired))
	})

	t.Run("another capture on the same order is rejected", func(t *testing.T) {
		_, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_second"))
		assert.True(t, exceptions.HasCode(err, constvars.ErrCodeInvalidTransition))
		assert.Equal(t, "pay_late", f.repo.Get(payment.OrderRef).PaymentRef)
	})
}

func TestPaymentUsecase_ConcurrentLateCapturesRecordOnce(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	payment := f.open(t, appointment.ID)
	_, err := f.usecase.ExpirePending(ctx, payment.OrderRef, "")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	var fresh atomic.Int64
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.usecase.Reconcile(ctx, verifyRequest(payment.OrderRef, "pay_late"))
			if err == nil && !outcome.Replayed {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fresh.Load())
	assert.Equal(t, 1, f.publisher.Count(constvars.EventPaymentRefundRequired))
}

func TestPaymentUsecase_FindByUser(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	none, err := f.usecase.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, none)

	appointment := f.book(t, "06:00", constvars.PaymentModeOnline)
	f.open(t, appointment.ID)

	payments, err := f.usecase.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}
