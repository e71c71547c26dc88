package main

import (
	"fmt"
	"log"
	"time"

	"vereinsportal/internal/events"
	"vereinsportal/internal/registrations"
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/database"
	"vereinsportal/internal/users"
	"vereinsportal/internal/waitlist"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Vereinsportal Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"waitlist_notifications",
		"waitlist_entries",
		"children",
		"registrations",
		"events",
		"users",
	}

	pg := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll seeds users, events, registrations and a waitlist in order
func (s *Seeder) SeedAll() error {
	admin, err := s.seedUsers()
	if err != nil {
		return err
	}

	campID, err := s.seedEvents(admin.ID)
	if err != nil {
		return err
	}

	if err := s.seedRegistrations(campID); err != nil {
		return err
	}

	return s.seedWaitlist(campID)
}

func (s *Seeder) seedUsers() (*users.User, error) {
	hash := func(password string) string {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		return string(hashed)
	}

	admin := users.User{
		ID:        uuid.New(),
		FirstName: "Petra",
		LastName:  "Vogel",
		Email:     "admin@vereinsportal.local",
		Password:  hash("admin123"),
		Role:      users.RoleAdmin,
	}
	staff := users.User{
		ID:        uuid.New(),
		FirstName: "Markus",
		LastName:  "Klein",
		Email:     "staff@vereinsportal.local",
		Password:  hash("staff123"),
		Role:      users.RoleStaff,
	}

	pg := s.db.GetPostgreSQL()
	if err := pg.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	if err := pg.Create(&staff).Error; err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}

	fmt.Printf("   👤 admin@vereinsportal.local / admin123\n")
	fmt.Printf("   👤 staff@vereinsportal.local / staff123\n")
	return &admin, nil
}

// seedEvents creates sample events and returns the ID of the summer camp,
// which the registration and waitlist seeds fill to capacity.
func (s *Seeder) seedEvents(createdBy uuid.UUID) (uuid.UUID, error) {
	nextSummer := time.Date(time.Now().Year()+1, time.July, 15, 9, 0, 0, 0, time.UTC)
	intPtr := func(n int) *int { return &n }

	camp := events.Event{
		ID:              uuid.New(),
		Title:           "Sommerfreizeit",
		Description:     "One week summer camp at the lake.",
		Location:        "Jugendherberge Seeblick",
		Date:            nextSummer,
		MaxParticipants: intPtr(6),
		MinAge:          intPtr(6),
		MaxAge:          intPtr(14),
		Status:          events.EventStatusPublished,
		CreatedBy:       &createdBy,
	}
	openDay := events.Event{
		ID:          uuid.New(),
		Title:       "Tag der offenen Tür",
		Description: "Open day, no participant limit.",
		Location:    "Vereinsheim",
		Date:        nextSummer.AddDate(0, -1, 0),
		Status:      events.EventStatusPublished,
		CreatedBy:   &createdBy,
	}
	draft := events.Event{
		ID:              uuid.New(),
		Title:           "Herbstlager",
		Description:     "Autumn camp, still in planning.",
		Location:        "Waldheim Tannenhof",
		Date:            nextSummer.AddDate(0, 3, 0),
		MaxParticipants: intPtr(20),
		Status:          events.EventStatusDraft,
		CreatedBy:       &createdBy,
	}

	pg := s.db.GetPostgreSQL()
	for _, event := range []*events.Event{&camp, &openDay, &draft} {
		if err := pg.Create(event).Error; err != nil {
			return uuid.Nil, fmt.Errorf("failed to create event %q: %w", event.Title, err)
		}
		fmt.Printf("   🎪 %s\n", event.Title)
	}

	return camp.ID, nil
}

// seedRegistrations fills the summer camp to capacity: 6 spots, 6 children
func (s *Seeder) seedRegistrations(eventID uuid.UUID) error {
	pg := s.db.GetPostgreSQL()

	families := []registrations.Registration{
		{
			ID:         uuid.New(),
			EventID:    eventID,
			FirstName:  "Anna",
			LastName:   "Weber",
			Email:      "anna.weber@example.org",
			Phone:      "+49 170 1111111",
			Street:     "Lindenstraße 12",
			PostalCode: "50667",
			City:       "Köln",
			Children: []registrations.Child{
				{ID: uuid.New(), FirstName: "Lena", LastName: "Weber", DateOfBirth: birthday(9), Gender: "female", PhotoConsent: true},
				{ID: uuid.New(), FirstName: "Paul", LastName: "Weber", DateOfBirth: birthday(7), Gender: "male", PhotoConsent: true},
			},
		},
		{
			ID:         uuid.New(),
			EventID:    eventID,
			FirstName:  "Jonas",
			LastName:   "Berg",
			Email:      "jonas.berg@example.org",
			Phone:      "+49 170 2222222",
			Street:     "Am Bach 3",
			PostalCode: "50823",
			City:       "Köln",
			Children: []registrations.Child{
				{ID: uuid.New(), FirstName: "Mia", LastName: "Berg", DateOfBirth: birthday(11), Gender: "female"},
				{ID: uuid.New(), FirstName: "Tom", LastName: "Berg", DateOfBirth: birthday(8), Gender: "male"},
				{ID: uuid.New(), FirstName: "Emma", LastName: "Berg", DateOfBirth: birthday(6), Gender: "female"},
			},
		},
		{
			ID:         uuid.New(),
			EventID:    eventID,
			FirstName:  "Sofia",
			LastName:   "Richter",
			Email:      "sofia.richter@example.org",
			Phone:      "+49 170 3333333",
			Street:     "Hauptstraße 45",
			PostalCode: "51063",
			City:       "Köln",
			Children: []registrations.Child{
				{ID: uuid.New(), FirstName: "Noah", LastName: "Richter", DateOfBirth: birthday(12), Gender: "male", HealthInfo: "Nut allergy"},
			},
		},
	}

	totalChildren := 0
	for i := range families {
		if err := pg.Create(&families[i]).Error; err != nil {
			return fmt.Errorf("failed to create registration for %s %s: %w", families[i].FirstName, families[i].LastName, err)
		}
		totalChildren += len(families[i].Children)
	}

	// Write the derived counts the capacity ledger would compute
	err := pg.Model(&events.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"participant_count": totalChildren,
			"is_full":           true,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update event counts: %w", err)
	}

	fmt.Printf("   📝 %d registrations, %d children (event full)\n", len(families), totalChildren)
	return nil
}

// seedWaitlist queues two families behind the full summer camp
func (s *Seeder) seedWaitlist(eventID uuid.UUID) error {
	pg := s.db.GetPostgreSQL()
	now := time.Now().UTC()

	entries := []waitlist.WaitlistEntry{
		{
			ID:      uuid.New(),
			EventID: eventID,
			Parent: waitlist.ParentSnapshot{
				FirstName:  "Laura",
				LastName:   "Schmidt",
				Email:      "laura.schmidt@example.org",
				Phone:      "+49 170 4444444",
				Street:     "Gartenweg 8",
				PostalCode: "50968",
				City:       "Köln",
			},
			Children: waitlist.ChildSnapshots{
				{FirstName: "Finn", LastName: "Schmidt", DateOfBirth: birthday(10), Gender: "male"},
			},
			ChildrenCount: 1,
			Status:        waitlist.StatusPending,
			QueuePosition: 1,
			CreatedAt:     now.Add(-48 * time.Hour),
		},
		{
			ID:      uuid.New(),
			EventID: eventID,
			Parent: waitlist.ParentSnapshot{
				FirstName:  "David",
				LastName:   "Braun",
				Email:      "david.braun@example.org",
				Phone:      "+49 170 5555555",
				Street:     "Mühlenweg 21",
				PostalCode: "51103",
				City:       "Köln",
			},
			Children: waitlist.ChildSnapshots{
				{FirstName: "Ida", LastName: "Braun", DateOfBirth: birthday(9), Gender: "female"},
				{FirstName: "Max", LastName: "Braun", DateOfBirth: birthday(7), Gender: "male"},
			},
			ChildrenCount: 2,
			Status:        waitlist.StatusPending,
			QueuePosition: 2,
			CreatedAt:     now.Add(-24 * time.Hour),
		},
	}

	for i := range entries {
		if err := pg.Create(&entries[i]).Error; err != nil {
			return fmt.Errorf("failed to create waitlist entry for %s %s: %w", entries[i].Parent.FirstName, entries[i].Parent.LastName, err)
		}
	}

	fmt.Printf("   ⏳ %d families on the waitlist\n", len(entries))
	return nil
}

// birthday returns a date of birth for a child of the given age today
func birthday(age int) time.Time {
	return time.Now().UTC().AddDate(-age, -3, 0).Truncate(24 * time.Hour)
}
