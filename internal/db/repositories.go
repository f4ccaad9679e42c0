package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Medications *MedicationRepository
	Logs        *MedicationLogRepository
	Family      *FamilyRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Medications: NewMedicationRepository(database),
		Logs:        NewMedicationLogRepository(database),
		Family:      NewFamilyRepository(database),
	}
}
