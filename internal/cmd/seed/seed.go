// Package seed parses seed command flags and populates the obligations
// database with sample data for local development.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	entrypoint "github.com/duebook/duebook/internal/platform/cmd"
	"github.com/duebook/duebook/internal/platform/id"
	"github.com/duebook/duebook/internal/services/obligations/storage"
	obligationsqlite "github.com/duebook/duebook/internal/services/obligations/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"DUEBOOK_SEED_DB_PATH" envDefault:"data/obligations.db"`
	Seed   int64  `env:"DUEBOOK_SEED_RANDOM_SEED" envDefault:"0"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The obligations SQLite database path")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 uses current time")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run populates the obligations database with sample data.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
			log.Printf("using seed %d", seed)
		}

		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := obligationsqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open obligations sqlite store: %w", err)
		}
		defer store.Close()

		rng := rand.New(rand.NewSource(seed))
		return Populate(ctx, store, rng, time.Now().UTC())
	})
}

var billTemplates = []struct {
	name       string
	cents      int64
	recurrence string
}{
	{name: "Electric Bill", cents: 12050, recurrence: "monthly"},
	{name: "Internet", cents: 8900, recurrence: "monthly"},
	{name: "Water Bill", cents: 4500, recurrence: "monthly"},
	{name: "Car Insurance", cents: 68000, recurrence: "yearly"},
	{name: "Gym Membership", cents: 5500, recurrence: "monthly"},
	{name: "Furniture Delivery", cents: 32000, recurrence: "one-time"},
}

var errandTemplates = []struct {
	description string
	priority    string
}{
	{description: "Renew passport", priority: "urgent"},
	{description: "Pick up dry cleaning", priority: "normal"},
	{description: "Return library books", priority: "normal"},
	{description: "Schedule car service", priority: "urgent"},
}

var appointmentTemplates = []struct {
	title string
	kind  string
}{
	{title: "Dentist checkup", kind: "medical"},
	{title: "Parent-teacher meeting", kind: "family"},
	{title: "Haircut", kind: "personal"},
}

// Populate writes a randomized sample data set through the store.
func Populate(ctx context.Context, store storage.Store, rng *rand.Rand, now time.Time) error {
	methodID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate method id: %w", err)
	}
	method := storage.PaymentMethodRecord{
		ID:              methodID,
		Kind:            "card",
		Label:           "Personal Visa",
		CardLast4:       fmt.Sprintf("%04d", rng.Intn(10000)),
		CardExpiryMonth: 1 + rng.Intn(12),
		CardExpiryYear:  now.Year() + rng.Intn(3),
		CreatedAt:       now,
	}
	if err := store.PutPaymentMethod(ctx, method); err != nil {
		return fmt.Errorf("seed payment method: %w", err)
	}

	for _, template := range billTemplates {
		billID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate bill id: %w", err)
		}
		bill := storage.BillRecord{
			ID:          billID,
			Name:        template.name,
			AmountCents: template.cents,
			DueDate:     now.AddDate(0, 0, rng.Intn(21)-3),
			Recurrence:  template.recurrence,
			Status:      "upcoming",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		// Roughly half the bills are on auto-pay.
		if rng.Intn(2) == 0 {
			bill.AutoPayEnabled = true
			bill.PaymentMethodID = method.ID
			if rng.Intn(3) == 0 {
				bill.AutoPayLimitCents = template.cents / 2
			}
		}
		if err := store.PutBill(ctx, bill); err != nil {
			return fmt.Errorf("seed bill %s: %w", template.name, err)
		}
	}

	for _, template := range errandTemplates {
		errandID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate errand id: %w", err)
		}
		errand := storage.ErrandRecord{
			ID:            errandID,
			Description:   template.description,
			Priority:      template.priority,
			Status:        "pending",
			PreferredDate: now.AddDate(0, 0, rng.Intn(14)-2),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := store.PutErrand(ctx, errand); err != nil {
			return fmt.Errorf("seed errand %s: %w", template.description, err)
		}
	}

	for _, template := range appointmentTemplates {
		appointmentID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate appointment id: %w", err)
		}
		appointment := storage.AppointmentRecord{
			ID:        appointmentID,
			Title:     template.title,
			Type:      template.kind,
			StartsAt:  now.AddDate(0, 0, rng.Intn(10)).Add(time.Duration(9+rng.Intn(8)) * time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.PutAppointment(ctx, appointment); err != nil {
			return fmt.Errorf("seed appointment %s: %w", template.title, err)
		}
	}

	log.Printf("seeded %d bills, %d errands, %d appointments",
		len(billTemplates), len(errandTemplates), len(appointmentTemplates))
	return nil
}
