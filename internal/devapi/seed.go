package devapi

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"parkdesk.app/internal/services"
)

// Seed loads a small demo dataset so the console has something to show on a
// fresh start. Returns the admin login for convenience.
func Seed(store *Store) (adminLogin string, err error) {
	hash := func(pw string) []byte {
		h, herr := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		if herr != nil && err == nil {
			err = fmt.Errorf("seed password hash: %w", herr)
		}
		return h
	}

	admin := store.CreateUser(services.User{
		User:     "admin",
		Email:    "admin@parkdesk.local",
		Name:     "Ada",
		LastName: "Admin",
		Role:     roleAdmin,
		Enabled:  true,
	}, hash("admin123"))

	business := store.CreateBusiness(services.Business{
		UserID:             admin.ID,
		BusinessName:       "Central Parking",
		BusinessBrand:      "ParkDesk Demo",
		CarHourCost:        3500,
		MotorcycleHourCost: 2000,
		CarDayCost:         28000,
		MotorcycleDayCost:  15000,
		BusinessNIT:        "900123456-7",
		Address:            "Cra 7 # 45-10",
		Schedule:           "06:00-22:00",
	})

	if _, uerr := store.UpdateUser(admin.ID, func(rec *userRecord) {
		rec.Business = business.ID
	}); uerr != nil && err == nil {
		err = uerr
	}

	store.CreateUser(services.User{
		User:     "worker",
		Email:    "worker@parkdesk.local",
		Name:     "Wendy",
		LastName: "Worker",
		Business: business.ID,
		Role:     roleWorker,
		Enabled:  true,
	}, hash("worker123"))

	store.CreateVehicle(services.Vehicle{
		Plate:      "ABC123",
		Type:       services.VehicleCar,
		BusinessID: business.ID,
	})
	store.CreateVehicle(services.Vehicle{
		Plate:      "XYZ78F",
		Type:       services.VehicleMotorcycle,
		BusinessID: business.ID,
	})

	for _, draft := range []services.CatalogEntry{
		{Name: "Espalda", NameEnglish: "Back", IsActive: true},
		{Name: "Pecho", NameEnglish: "Chest", IsActive: true},
	} {
		if _, cerr := store.CreateCatalogEntry("body-parts", draft); cerr != nil && err == nil {
			err = cerr
		}
	}

	return admin.User, err
}
