package cli

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testDoctorEmail = "test@doctor.com"

func createTestDoctorCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "create-test-doctor",
		Short: "Seed a demo doctor account for the doctor console",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(true)
			if err != nil {
				return err
			}
			created, err := createTestDoctor(db, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "Test doctor created successfully!")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Test doctor already exists!")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Email: %s\nPassword: %s\n", testDoctorEmail, password)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "test1234", "password for the demo account")
	return cmd
}

// createTestDoctor inserts the demo doctor unless the email is already registered.
func createTestDoctor(db *gorm.DB, password string) (bool, error) {
	var existing model.Doctor
	err := db.Where("email = ?", testDoctorEmail).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		return false, err
	}
	doctor := model.Doctor{
		Name:       "Dr. Test Doctor",
		Email:      testDoctorEmail,
		Password:   hashed,
		Speciality: "General Physiotherapist",
		Degree:     "MBBS",
		Experience: "5 years",
		About:      "Demo account for trying the doctor console.",
		Fees:       100,
		Address:    datatypes.NewJSONType(model.Address{Line1: "Test Address Line 1", Line2: "Test Address Line 2"}),
		Available:  true,
	}
	if err := db.Create(&doctor).Error; err != nil {
		return false, err
	}
	return true, nil
}
