package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram-project/backend/config"
	"github.com/foodgram-project/backend/internal/database"
	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/service"
)

type seedData struct {
	Tags []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	} `json:"tags"`
	Ingredients []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	} `json:"ingredients"`
	Users []struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	} `json:"users"`
}

// Loads reference data (tags, the ingredient catalog, optional users) from a
// JSON file. Reruns are safe: rows are matched on their unique keys.
func main() {
	path := flag.String("data", "data/seed.json", "path to the seed data file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	content, err := os.ReadFile(*path)
	if err != nil {
		logrus.Fatalf("failed to read seed file: %v", err)
	}
	var data seedData
	if err := json.Unmarshal(content, &data); err != nil {
		logrus.Fatalf("failed to parse seed file: %v", err)
	}

	for _, t := range data.Tags {
		tag := models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
		if err := upsert(db, "slug", &tag); err != nil {
			logrus.Fatalf("failed to seed tag %s: %v", t.Slug, err)
		}
	}
	logrus.Infof("seeded %d tags", len(data.Tags))

	for _, i := range data.Ingredients {
		ingredient := models.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			logrus.Fatalf("failed to seed ingredient %s: %v", i.Name, err)
		}
	}
	logrus.Infof("seeded %d ingredients", len(data.Ingredients))

	for _, u := range data.Users {
		hash, err := service.HashPassword(u.Password)
		if err != nil {
			logrus.Fatalf("failed to hash password for %s: %v", u.Username, err)
		}
		user := models.User{
			Username:     u.Username,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PasswordHash: hash,
		}
		if err := upsert(db, "username", &user); err != nil {
			logrus.Fatalf("failed to seed user %s: %v", u.Username, err)
		}
	}
	logrus.Infof("seeded %d users", len(data.Users))
}

func upsert(db *gorm.DB, column string, value interface{}) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		DoNothing: true,
	}).Create(value).Error
}
