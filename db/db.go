package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
)

// InitDatabase opens the shared connection pool and bootstraps the
// schema. The pool lives for the whole process; handlers never open
// their own connections.
func InitDatabase() (*pgxpool.Pool, error) {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	host := os.Getenv("DATABASE_HOST")
	port := os.Getenv("DATABASE_PORT")
	user := os.Getenv("DATABASE_USER")
	password := os.Getenv("DATABASE_PASSWORD")
	databaseName := os.Getenv("DATABASE_NAME")

	config, err := pgxpool.ParseConfig(" host=" + host + " port=" + port + " user=" + user + " password=" + password + " database=" + databaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	conn, err := pgxpool.ConnectConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := CreateSchema(context.Background(), conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// CreateSchema creates the tables and indexes if they do not exist yet.
func CreateSchema(ctx context.Context, conn *pgxpool.Pool) error {
	sqlQueries := []string{
		`CREATE TABLE IF NOT EXISTS doctors (
			id uuid PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			speciality VARCHAR(100) NOT NULL,
			degree VARCHAR(100) NOT NULL,
			experience VARCHAR(50) NOT NULL,
			about TEXT NOT NULL DEFAULT '',
			fees NUMERIC NOT NULL,
			adr_line1 VARCHAR(200) NOT NULL DEFAULT '',
			adr_line2 VARCHAR(200) NOT NULL DEFAULT '',
			image_url VARCHAR(500) NOT NULL DEFAULT '',
			availability BOOLEAN NOT NULL DEFAULT TRUE,
			earnings NUMERIC NOT NULL DEFAULT 0 CHECK (earnings >= 0)
		)`,

		`CREATE TABLE IF NOT EXISTS patients (
			id uuid PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			date_of_birth DATE,
			age INTEGER,
			phone_num VARCHAR(50),
			address VARCHAR(300),
			gender VARCHAR(20),
			image_url VARCHAR(500) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS admins (
			id uuid PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(50) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS appointments (
			id uuid PRIMARY KEY,
			doctor_id uuid NOT NULL REFERENCES doctors(id),
			doctor_name VARCHAR(100) NOT NULL,
			doc_image_url VARCHAR(500) NOT NULL DEFAULT '',
			department VARCHAR(100) NOT NULL DEFAULT '',
			fees NUMERIC NOT NULL,
			appointment_date DATE NOT NULL,
			appointment_day VARCHAR(20) NOT NULL,
			appointment_hour INTEGER NOT NULL,
			adr_line1 VARCHAR(200) NOT NULL DEFAULT '',
			adr_line2 VARCHAR(200) NOT NULL DEFAULT '',
			patient_id uuid NOT NULL REFERENCES patients(id),
			patient_name VARCHAR(100) NOT NULL,
			patient_age INTEGER,
			patient_img_url VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'waiting'
		)`,

		// One active appointment per slot. Cancelled rows fall out of
		// the index so the slot can be booked again.
		`CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot_key
			ON appointments (doctor_id, appointment_date, appointment_hour)
			WHERE status <> 'cancelled'`,
	}

	for _, query := range sqlQueries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}
