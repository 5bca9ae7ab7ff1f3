package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-gis-markers/config"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

type seedMarker struct {
	title, description string
	lat, lng           float64
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "demo-password"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO gis_schema.users (username, email, password)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(username)) DO UPDATE SET updated_at = now()
		RETURNING id
	`, username, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d username=%s password=%s\n", id, username, password)

	markers := []seedMarker{
		{"Brandenburg Gate", "Neoclassical monument", 52.516275, 13.377704},
		{"Eiffel Tower", "Wrought-iron lattice tower", 48.858370, 2.294481},
		{"Monas", "National Monument, Jakarta", -6.175392, 106.827153},
	}
	for _, m := range markers {
		if _, err := db.Exec(`
			INSERT INTO gis_schema.markers (title, description, geom, created_by)
			SELECT $1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5
			WHERE NOT EXISTS (SELECT 1 FROM gis_schema.markers WHERE title = $1)
		`, m.title, m.description, m.lng, m.lat, id); err != nil {
			log.Fatalf("failed to seed marker %q: %v", m.title, err)
		}
	}
	fmt.Printf("ensured %d demo markers\n", len(markers))
}
