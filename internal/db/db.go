package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"autoshop/internal/model"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open returns a connected GORM DB instance for the given dialect.
// Constraint violations are translated to gorm.ErrDuplicatedKey and friends.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Migrate registers the custom join tables and creates or updates all tables.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		owner interface{}
		field string
		join  interface{}
	}{
		{&model.ServiceTicket{}, "Mechanics", &model.TicketMechanic{}},
		{&model.Mechanic{}, "ServiceTickets", &model.TicketMechanic{}},
		{&model.ServiceTicket{}, "Parts", &model.TicketPart{}},
		{&model.Part{}, "ServiceTickets", &model.TicketPart{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.owner, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %s: %w", j.field, err)
		}
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Mechanic{},
		&model.Part{},
		&model.ServiceTicket{},
		&model.TicketMechanic{},
		&model.TicketPart{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Tables lists models in drop order, children first.
func Tables() []interface{} {
	return []interface{}{
		&model.TicketMechanic{},
		&model.TicketPart{},
		&model.ServiceTicket{},
		&model.Part{},
		&model.Mechanic{},
		&model.User{},
	}
}
