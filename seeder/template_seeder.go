package seeder

import (
	"context"
	"log"
	"time"

	"attendance-core/models"
	"attendance-core/repository"
)

// SeedTemplates upserts the default outcome messages. Existing rows are
// overwritten so the defaults stay a single source of truth until an admin
// customizes them.
func SeedTemplates(templateRepo repository.TemplateRepository) {
	log.Println("Seeding message templates...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	defaults := map[string]string{
		models.TemplateCheckIn:       "Checked in. Have a good shift!",
		models.TemplateLateCheckIn:   "Checked in {minutes} minutes late.",
		models.TemplateCheckOut:      "Checked out. See you tomorrow!",
		models.TemplateEarlyCheckOut: "Checked out {minutes} minutes early.",
	}

	for templateType, content := range defaults {
		if err := templateRepo.Upsert(ctx, templateType, content); err != nil {
			log.Printf("Failed to seed template %s: %v", templateType, err)
			continue
		}
		log.Printf("Seeded template %q", templateType)
	}

	log.Println("Template seeding done.")
}
