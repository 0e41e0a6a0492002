package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBookingDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, available bool) model.Doctor {
	t.Helper()
	d := model.Doctor{
		Name:       "Dr. Richard James",
		Email:      email,
		Password:   "hashed",
		Speciality: "General physician",
		Degree:     "MBBS",
		Experience: "4 Years",
		Fees:       50,
		Address:    datatypes.NewJSONType(model.Address{Line1: "17th Cross", Line2: "Richmond"}),
		Available:  available,
	}
	require.NoError(t, db.Create(&d).Error)
	return d
}

func seedUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{Name: "Jane Doe", Email: email, Password: "hashed", Phone: "+919876543210"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func patient(u model.User) model.Principal {
	return model.Principal{Role: model.RolePatient, SubjectID: u.ID, Email: u.Email}
}

func doctorPrincipal(d model.Doctor) model.Principal {
	return model.Principal{Role: model.RoleDoctor, SubjectID: d.ID, Email: d.Email}
}

var admin = model.Principal{Role: model.RoleAdmin, Email: "admin@example.com"}
