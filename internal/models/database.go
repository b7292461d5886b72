package models

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

type LedgerContext string

const (
	DBContextURL LedgerContext = "hourledger-backend-url"
)

// Connect opens the database and configures the connection pool.
//
// When dsn is empty and DB_HOST is set, a MySQL server is used. In all other
// cases dsn is the path to a SQLite database file, which is also what every
// test uses.
func Connect(dsn string) error {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	if host, ok := os.LookupEnv("DB_HOST"); ok && dsn == "" {
		log.Debug().Str("host", host).Msg("DB_HOST is set, using MySQL")

		mysqlDSN := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, os.Getenv("DB_NAME"))

		db, err := gorm.Open(mysql.Open(mysqlDSN), config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		err = migrate(db)
		if err != nil {
			return err
		}

		return configure(db, 0)
	}

	if dsn == "" {
		dataDir := "data"
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not create data directory: %w", err)
		}
		dsn = "data/gorm.db"
	}

	// Migration with foreign keys disabled since sqlite does not support
	// ALTER COLUMN. Tables are copied to a temporary table, then the table
	// is dropped and recreated.
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	// Close the connection
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Now, reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection prevents SQLITE_BUSY errors
	return configure(db, 1)
}

// configure sets up the connection pool and the callbacks
// and exports the database handle.
func configure(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	if maxOpen > 0 {
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	// Query callbacks
	err = db.Callback().Query().After("*").Register("hourledger:after_query", queryCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Query().After("*").Register("hourledger:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	// Create callbacks
	err = db.Callback().Create().After("*").Register("hourledger:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Create().After("*").Register("hourledger:after_create_general", generalCallback)
	if err != nil {
		return err
	}

	// Update callbacks
	err = db.Callback().Update().After("*").Register("hourledger:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("hourledger:after_update_general", generalCallback)
	if err != nil {
		return err
	}

	// Delete callbacks
	err = db.Callback().Delete().After("*").Register("hourledger:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	// Set the exported variable
	DB = db

	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	msg := db.Error.Error()

	// Only one window configuration per year and month
	if strings.Contains(msg, "UNIQUE constraint failed: billing_windows.year, billing_windows.month") ||
		strings.Contains(msg, "for key 'billing_windows.PRIMARY'") {
		db.Error = ErrBillingWindowNotUnique
	}

	// The allocation identity tuple is unique
	if strings.Contains(msg, "UNIQUE constraint failed: allocations.") ||
		strings.Contains(msg, "for key 'allocations.allocation_key'") {
		db.Error = ErrAllocationNotUnique
	}

	// One distribution row per lead, window, subproject and reportee
	if strings.Contains(msg, "UNIQUE constraint failed: team_distributions.") ||
		strings.Contains(msg, "for key 'team_distributions.distribution_key'") {
		db.Error = ErrDistributionNotUnique
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(BillingWindow{}, Allocation{}, WeeklySplit{}, TeamDistribution{}, DailyPunch{}, IdentityAlias{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
