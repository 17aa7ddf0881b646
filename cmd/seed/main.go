// Package main seeds the database with demo events and attendees. Seed data
// is a setup convenience for local development; it has no bearing on the
// capacity or uniqueness invariants the server enforces.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherhq/events-api/config"
	"github.com/gatherhq/events-api/internal/events"
	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/internal/registrations"
	"github.com/gatherhq/events-api/pkg/database"
)

var attendeeNames = []string{
	"Rajesh Kumar", "Priya Sharma", "Amit Singh", "Sneha Patel", "Rahul Gupta",
	"Pooja Verma", "Vikram Yadav", "Kavya Joshi", "Arjun Reddy", "Meera Iyer",
	"Sanjay Dubey", "Ritu Agarwal", "Karan Malhotra", "Divya Nair", "Rohit Saxena",
	"Anita Bhatt", "Suresh Tiwari", "Neha Kapoor", "Manish Jain", "Shruti Bansal",
	"Deepak Mehta", "Anjali Roy", "Vinod Kumar", "Swati Chopra", "Nikhil Sinha",
	"Preeti Goel", "Ashok Pandey", "Sunita Rao", "Rajeev Mishra", "Jyoti Sethi",
}

type seedEvent struct {
	name     string
	daysOut  int // negative for past events
	hours    int
	capacity int
}

var seedEvents = []seedEvent{
	{"Mumbai Tech Meetup 2024", -30, 3, 50},
	{"Delhi AI Workshop", -15, 4, 30},
	{"Bangalore DevOps Conference", 5, 6, 100},
	{"Chennai React Workshop", 10, 4, 40},
	{"Pune Startup Pitch Event", 15, 5, 80},
	{"Hyderabad Blockchain Summit", 20, 7, 120},
	{"Kolkata Data Science Bootcamp", 25, 8, 60},
	{"Ahmedabad Mobile App Hackathon", 30, 48, 150},
	{"Kochi Digital Marketing Seminar", 35, 3, 70},
	{"Jaipur Cybersecurity Conference", 40, 5, 90},
	{"Lucknow E-commerce Workshop", 45, 6, 55},
	{"Bhubaneswar IoT Innovation Day", 50, 4, 75},
	{"Indore Cloud Computing Summit", 55, 7, 110},
	{"Chandigarh UX/UI Design Workshop", 60, 5, 45},
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.LockTimeoutMS, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		logger.Fatal("load timezone", zap.Error(err))
	}

	eventRepo := events.NewRepository(pool)
	registrationRepo := registrations.NewRepository(pool)
	registrationService := registrations.NewService(registrationRepo, logger)

	created := 0
	registered := 0
	for _, se := range seedEvents {
		start := time.Now().In(ist).AddDate(0, 0, se.daysOut)
		e := &models.Event{
			Name:        se.name,
			Location:    location(se.name),
			StartTime:   start.UTC(),
			EndTime:     start.Add(time.Duration(se.hours) * time.Hour).UTC(),
			MaxCapacity: se.capacity,
		}
		if err := eventRepo.Insert(ctx, e); err != nil {
			logger.Fatal("insert event", zap.String("name", se.name), zap.Error(err))
		}
		created++

		// Fill a random share of each event, leaving spots available.
		target := 15 + rand.Intn(min(se.capacity-5, 35)-14)
		for i := 0; i < target; i++ {
			name := attendeeNames[rand.Intn(len(attendeeNames))]
			email := fmt.Sprintf("%s%d@example.com",
				strings.ToLower(strings.ReplaceAll(name, " ", ".")), rand.Intn(999)+1)
			if _, err := registrationService.Register(ctx, e.ID, name, email); err != nil {
				// Random emails occasionally collide; skip and move on.
				continue
			}
			registered++
		}
	}

	logger.Info("demo data seeded",
		zap.Int("events", created),
		zap.Int("attendees", registered),
	)
}

func location(eventName string) *string {
	city := strings.SplitN(eventName, " ", 2)[0]
	return &city
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
