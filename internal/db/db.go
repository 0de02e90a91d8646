package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens the database and applies migrations.
func Connect(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database ready")
	return database, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS role (
            role_id SERIAL PRIMARY KEY,
            role_name TEXT NOT NULL UNIQUE
        );`,
		`INSERT INTO role (role_id, role_name)
            VALUES (1, 'admin'), (2, 'client'), (3, 'agent')
            ON CONFLICT (role_id) DO NOTHING;`,
		`CREATE TABLE IF NOT EXISTS department (
            dept_id SERIAL PRIMARY KEY,
            dept_name TEXT NOT NULL UNIQUE,
            dept_is_active BOOLEAN NOT NULL DEFAULT TRUE,
            dept_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            dept_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS profile (
            prof_id SERIAL PRIMARY KEY,
            prof_firstname TEXT,
            prof_middlename TEXT,
            prof_lastname TEXT,
            prof_address TEXT,
            prof_date_of_birth DATE,
            prof_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            prof_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS image (
            img_id SERIAL PRIMARY KEY,
            prof_id INT NOT NULL REFERENCES profile(prof_id) ON DELETE CASCADE,
            img_location TEXT NOT NULL,
            img_is_current BOOLEAN NOT NULL DEFAULT FALSE,
            img_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS system_user (
            sys_user_id SERIAL PRIMARY KEY,
            sys_user_email TEXT NOT NULL UNIQUE,
            sys_user_password TEXT NOT NULL,
            sys_user_is_active BOOLEAN NOT NULL DEFAULT TRUE,
            role_id INT NOT NULL REFERENCES role(role_id),
            prof_id INT REFERENCES profile(prof_id),
            sys_user_created_by INT,
            sys_user_updated_by INT,
            sys_user_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            sys_user_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS sys_user_department (
            sys_user_id INT NOT NULL REFERENCES system_user(sys_user_id) ON DELETE CASCADE,
            dept_id INT NOT NULL REFERENCES department(dept_id) ON DELETE CASCADE,
            PRIMARY KEY (sys_user_id, dept_id)
        );`,
		`CREATE TABLE IF NOT EXISTS client (
            client_id SERIAL PRIMARY KEY,
            client_country_code TEXT NOT NULL,
            client_number TEXT NOT NULL UNIQUE,
            client_password TEXT NOT NULL,
            prof_id INT REFERENCES profile(prof_id),
            client_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// UNIQUE(client_id) closes the duplicate-group race between two
		// concurrent first logins of the same client.
		`CREATE TABLE IF NOT EXISTS chat_group (
            chat_group_id SERIAL PRIMARY KEY,
            client_id INT UNIQUE REFERENCES client(client_id),
            dept_id INT REFERENCES department(dept_id),
            sys_user_id INT REFERENCES system_user(sys_user_id),
            chat_group_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// A row carries at most one sender; rows with neither are system
		// notices such as the department-assignment message.
		`CREATE TABLE IF NOT EXISTS chat (
            chat_id SERIAL PRIMARY KEY,
            chat_group_id INT NOT NULL REFERENCES chat_group(chat_group_id) ON DELETE CASCADE,
            sys_user_id INT REFERENCES system_user(sys_user_id),
            client_id INT REFERENCES client(client_id),
            chat_body TEXT NOT NULL,
            chat_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT chat_single_sender CHECK (sys_user_id IS NULL OR client_id IS NULL)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chat_group_created
            ON chat (chat_group_id, chat_created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS canned_message (
            canned_id SERIAL PRIMARY KEY,
            canned_message TEXT NOT NULL,
            canned_is_active BOOLEAN NOT NULL DEFAULT TRUE,
            dept_id INT REFERENCES department(dept_id),
            role_id INT NOT NULL REFERENCES role(role_id),
            canned_created_by INT,
            canned_updated_by INT,
            canned_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            canned_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS auto_reply (
            auto_reply_id SERIAL PRIMARY KEY,
            auto_reply_message TEXT NOT NULL,
            auto_reply_is_active BOOLEAN NOT NULL DEFAULT TRUE,
            dept_id INT REFERENCES department(dept_id),
            auto_reply_created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            auto_reply_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
