package model

// All lists every model the application migrates.
func All() []interface{} {
	return []interface{}{
		&Doctor{},
		&BookedSlot{},
		&User{},
		&Appointment{},
		&PaymentOrder{},
		&NotificationLog{},
		&SecurityLog{},
	}
}
