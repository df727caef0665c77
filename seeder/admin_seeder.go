package seeder

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"attendance-core/models"
	"attendance-core/repository"
)

// SeedAdmins creates the initial super admin when the collection is empty.
// The default password must be rotated after the first login.
func SeedAdmins(adminRepo repository.AdminRepository) {
	log.Println("Seeding admins...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := adminRepo.Count(ctx)
	if err != nil {
		log.Printf("Failed to count admins, skipping admin seed: %v", err)
		return
	}
	if count > 0 {
		log.Println("Admins already exist, skipping admin seed.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	admins := []*models.Admin{
		{
			Name:     "Primary Admin",
			Username: "admin",
			Password: string(hashedPassword),
			Role:     models.RoleSuperAdmin,
		},
		{
			Name:     "Shift Manager",
			Username: "manager",
			Password: string(hashedPassword),
			Role:     models.RoleManager,
		},
	}

	for _, admin := range admins {
		if _, err := adminRepo.Create(ctx, admin); err != nil {
			log.Printf("Failed to seed admin %s: %v", admin.Username, err)
			continue
		}
		log.Printf("Seeded admin %q (%s)", admin.Username, admin.Role)
	}

	log.Println("Admin seeding done.")
}
