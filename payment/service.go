package payment

import (
	"context"
	"errors"
	"strconv"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/model"
	"gorm.io/gorm"
)

const statusPaid = "paid"

var (
	ErrAlreadyPaid   = errors.New("appointment already paid")
	ErrOrderNotFound = errors.New("payment order not found")
	ErrNotPaid       = errors.New("order not paid")
)

// Service ties gateway orders to appointments.
type Service struct {
	db       *gorm.DB
	gateway  Gateway
	currency string
}

func NewService(db *gorm.DB, gateway Gateway, currency string) *Service {
	if currency == "" {
		currency = "INR"
	}
	return &Service{db: db, gateway: gateway, currency: currency}
}

// CreateOrder raises a gateway order for the patient's own unpaid, uncancelled appointment.
func (s *Service) CreateOrder(ctx context.Context, appointmentID uint, by model.Principal) (model.PaymentOrder, error) {
	var appt model.Appointment
	if err := s.db.WithContext(ctx).First(&appt, appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PaymentOrder{}, booking.ErrAppointmentNotFound
		}
		return model.PaymentOrder{}, err
	}
	if by.Role != model.RoleAdmin && appt.UserID != by.SubjectID {
		return model.PaymentOrder{}, booking.ErrNotOwner
	}
	if appt.Cancelled {
		return model.PaymentOrder{}, booking.ErrCancelledAppointment
	}
	if appt.Payment {
		return model.PaymentOrder{}, ErrAlreadyPaid
	}

	receipt := strconv.FormatUint(uint64(appt.ID), 10)
	order, err := s.gateway.CreateOrder(ctx, ToMinor(appt.Amount), s.currency, receipt)
	if err != nil {
		return model.PaymentOrder{}, err
	}

	row := model.PaymentOrder{
		OrderID:       order.ID,
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Receipt:       receipt,
		Status:        model.PaymentOrderCreated,
	}
	if row.Amount == 0 {
		row.Amount = ToMinor(appt.Amount)
	}
	if row.Currency == "" {
		row.Currency = s.currency
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.PaymentOrder{}, err
	}
	return row, nil
}

// Verify asks the gateway for the order status. A paid order marks the
// appointment paid; anything else returns ErrNotPaid.
func (s *Service) Verify(ctx context.Context, orderID string, by model.Principal) (model.Appointment, error) {
	var row model.PaymentOrder
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Appointment{}, ErrOrderNotFound
		}
		return model.Appointment{}, err
	}
	if by.Role != model.RoleAdmin && row.UserID != by.SubjectID {
		return model.Appointment{}, booking.ErrNotOwner
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return model.Appointment{}, err
	}
	if order.Status != statusPaid {
		return model.Appointment{}, ErrNotPaid
	}

	appt, err := booking.MarkPaid(ctx, s.db, row.AppointmentID)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.db.WithContext(ctx).Model(&row).Update("status", model.PaymentOrderPaid).Error; err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}
