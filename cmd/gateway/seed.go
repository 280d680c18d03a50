package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prepforge/prepforge/internal/questionbank"
)

// seedAdmin creates the admin account on first boot. An empty password
// with no existing users is a hard error rather than a guessable
// default.
func seedAdmin(ctx context.Context, db *sql.DB, username, password string) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		return fmt.Errorf("no users exist and no admin password set; pass --admin-password or PREPFORGE_ADMIN_PASSWORD")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,'admin',$4)`,
		uuid.NewString(), username, string(hash), time.Now().Unix())
	if err != nil {
		return err
	}
	slog.Info("seeded admin user", "username", username)
	return nil
}

var demoSubjects = []string{
	"mathematics", "physics", "chemistry", "biology",
	"english", "history", "geography",
}

// seedDemo fills the question bank with synthetic subjects so a fresh
// install can run a full campaign. Idempotent: existing subjects are
// left alone.
func seedDemo(ctx context.Context, db *sql.DB, totalDays, questionsPerDay int) error {
	opts, err := json.Marshal([]questionbank.Option{
		{ID: "a", Label: "Option A"}, {ID: "b", Label: "Option B"},
		{ID: "c", Label: "Option C"}, {ID: "d", Label: "Option D"},
	})
	if err != nil {
		return err
	}

	seeded := 0
	for i, name := range demoSubjects {
		if i >= totalDays {
			break
		}
		var one int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE id=$1`, name).Scan(&one)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return err
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO subjects (id, name) VALUES ($1,$2)`, name, name); err != nil {
			return err
		}
		for q := 1; q <= questionsPerDay; q++ {
			_, err := db.ExecContext(ctx,
				`INSERT INTO questions (id, subject_id, prompt, options_json, correct_option, active)
				 VALUES ($1,$2,$3,$4,'a',$5)`,
				fmt.Sprintf("%s-q%03d", name, q), name,
				fmt.Sprintf("Demo %s question %d", name, q), string(opts), true)
			if err != nil {
				return err
			}
		}
		seeded++
	}
	if seeded > 0 {
		slog.Info("seeded demo subjects", "subjects", seeded, "questions_each", questionsPerDay)
	}
	return nil
}
