package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db      *gorm.DB
	orders  *fakeOrders
	svc     *Service
	appt    model.Appointment
	patient model.Principal
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	doc := model.Doctor{Name: "Dr. Richard James", Email: "doc@example.com", Password: "x", Fees: 49.5, Available: true}
	require.NoError(t, db.Create(&doc).Error)
	user := model.User{Name: "Jane Doe", Email: "jane@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	appt, err := booking.BookSlot(context.Background(), db, booking.SlotRequest{DoctorID: doc.ID, PatientID: user.ID, Date: "2025-07-15", Time: "10:30 AM"})
	require.NoError(t, err)

	orders := newFakeOrders()
	return serviceFixture{
		db:      db,
		orders:  orders,
		svc:     NewService(db, &RazorpayGateway{orders: orders}, ""),
		appt:    appt,
		patient: model.Principal{Role: model.RolePatient, SubjectID: user.ID},
	}
}

func TestService_CreateOrder(t *testing.T) {
	f := newServiceFixture(t)

	row, err := f.svc.CreateOrder(context.Background(), f.appt.ID, f.patient)
	require.NoError(t, err)
	assert.Equal(t, int64(4950), row.Amount)
	assert.Equal(t, "INR", row.Currency)
	assert.Equal(t, fmt.Sprint(f.appt.ID), row.Receipt)
	assert.Equal(t, model.PaymentOrderCreated, row.Status)

	var stored model.PaymentOrder
	require.NoError(t, f.db.Where("order_id = ?", row.OrderID).First(&stored).Error)
	assert.Equal(t, f.appt.ID, stored.AppointmentID)
}

func TestService_CreateOrder_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, 404, f.patient)
	assert.ErrorIs(t, err, booking.ErrAppointmentNotFound)

	_, err = f.svc.CreateOrder(ctx, f.appt.ID, model.Principal{Role: model.RolePatient, SubjectID: 999})
	assert.ErrorIs(t, err, booking.ErrNotOwner)

	_, err = booking.MarkPaid(ctx, f.db, f.appt.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, f.appt.ID, f.patient)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestService_CreateOrder_Cancelled(t *testing.T) {
	f := newServiceFixture(t)
	_, err := booking.Cancel(context.Background(), f.db, f.appt.ID, f.patient)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(context.Background(), f.appt.ID, f.patient)
	assert.ErrorIs(t, err, booking.ErrCancelledAppointment)
	assert.Equal(t, "Cannot pay cancelled appointment", booking.Message(err, "pay"))
}

func TestService_Verify(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	row, err := f.svc.CreateOrder(ctx, f.appt.ID, f.patient)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, row.OrderID, f.patient)
	assert.ErrorIs(t, err, ErrNotPaid)

	f.orders.orders[row.OrderID]["status"] = "paid"
	appt, err := f.svc.Verify(ctx, row.OrderID, f.patient)
	require.NoError(t, err)
	assert.True(t, appt.Payment)

	var stored model.PaymentOrder
	require.NoError(t, f.db.Where("order_id = ?", row.OrderID).First(&stored).Error)
	assert.Equal(t, model.PaymentOrderPaid, stored.Status)
}

func TestService_Verify_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Verify(ctx, "order_missing", f.patient)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	row, err := f.svc.CreateOrder(ctx, f.appt.ID, f.patient)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, row.OrderID, model.Principal{Role: model.RolePatient, SubjectID: 999})
	assert.ErrorIs(t, err, booking.ErrNotOwner)
}
