package seeder

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/repository"
)

// SeedCenters inserts two demo centers and a handful of unbound employees
// so a fresh install has something to check in against.
func SeedCenters(centerRepo repository.CenterRepository, employeeRepo repository.EmployeeRepository) {
	log.Println("Seeding centers and employees...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := centerRepo.FindAllActive(ctx)
	if err != nil {
		log.Printf("Failed to list centers, skipping center seed: %v", err)
		return
	}
	if len(existing) > 0 {
		log.Println("Centers already exist, skipping center seed.")
		return
	}

	centers := []*models.Center{
		{
			ID:            primitive.NewObjectID(),
			Name:          "Downtown Center",
			Active:        true,
			StartTime:     "08:00",
			EndTime:       "16:00",
			CheckInGrace:  15,
			CheckOutGrace: 15,
			WorkDays:      "FREQ=WEEKLY;BYDAY=SU,MO,TU,WE,TH",
		},
		{
			ID:            primitive.NewObjectID(),
			Name:          "Riverside Center",
			Active:        true,
			StartTime:     "09:00",
			EndTime:       "17:00",
			CheckInGrace:  10,
			CheckOutGrace: 10,
			// Unrestricted network; set authorized_network_id in production.
		},
	}

	names := []string{"Lina Haddad", "Omar Khalil", "Sara Mansour", "Yusuf Nasser", "Rania Aoun", "Karim Saleh"}

	for _, center := range centers {
		if _, err := centerRepo.Create(ctx, center); err != nil {
			log.Printf("Failed to seed center %s: %v", center.Name, err)
			continue
		}
		log.Printf("Seeded center %q", center.Name)

		for i := 0; i < 3; i++ {
			employee := &models.Employee{
				Name:       names[0],
				CenterID:   center.ID,
				Active:     true,
				JoinedDate: time.Now().AddDate(0, -(i + 1), 0).Format("2006-01-02"),
			}
			names = names[1:]
			if _, err := employeeRepo.Create(ctx, employee); err != nil {
				log.Printf("Failed to seed employee %s: %v", employee.Name, err)
				continue
			}
			fmt.Printf("Seeded employee %s at %s\n", employee.Name, center.Name)
		}
	}

	log.Println("Center seeding done.")
}
