package db

import (
	"context"
	"database/sql"
	"log"
)

type tableDDL struct {
	name string
	ddl  string
}

var schema = []tableDDL{
	{"rooms", `CREATE TABLE IF NOT EXISTS rooms (
		id CHAR(36) NOT NULL PRIMARY KEY,
		room_number VARCHAR(32) NOT NULL,
		price BIGINT NOT NULL,
		toilet VARCHAR(3) NOT NULL DEFAULT 'No',
		status VARCHAR(16) NOT NULL DEFAULT 'Available',
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_rooms_room_number (room_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"beds", `CREATE TABLE IF NOT EXISTS beds (
		id CHAR(36) NOT NULL PRIMARY KEY,
		room_id CHAR(36) NOT NULL,
		bed_number VARCHAR(40) NOT NULL,
		position INT NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'Vacant',
		hostler_id CHAR(36) NULL,
		occupant_name VARCHAR(255) NULL,
		version BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_beds_room_bed (room_id, bed_number),
		KEY idx_beds_hostler (hostler_id),
		CONSTRAINT fk_beds_room FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"hostlers", `CREATE TABLE IF NOT EXISTS hostlers (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(16) NOT NULL,
		aadhar CHAR(12) NOT NULL,
		image MEDIUMTEXT NULL,
		room_id CHAR(36) NOT NULL,
		room_number VARCHAR(32) NOT NULL,
		bed_no VARCHAR(40) NOT NULL,
		price BIGINT NOT NULL,
		joining_date DATE NOT NULL,
		next_payment_date DATE NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_hostlers_phone (phone),
		UNIQUE KEY uq_hostlers_aadhar (aadhar),
		KEY idx_hostlers_room (room_id),
		KEY idx_hostlers_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"payments", `CREATE TABLE IF NOT EXISTS payments (
		id CHAR(36) NOT NULL PRIMARY KEY,
		hostler_id CHAR(36) NOT NULL,
		hostler_name VARCHAR(255) NULL,
		amount BIGINT NOT NULL,
		num_payments INT NULL,
		payment_date DATETIME NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		proof MEDIUMTEXT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_payments_hostler (hostler_id),
		KEY idx_payments_date (payment_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"users", `CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(16) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'admin',
		UNIQUE KEY uq_users_phone (phone)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, t := range schema {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return err
		}
		log.Printf("[DB] created table %s", t.name)
	}
	return nil
}
