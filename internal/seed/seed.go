// Package seed bootstraps the first admin user and a sample catalog.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"autoshop/internal/auth"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

// Admin describes the admin account to create or promote.
type Admin struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Result counts what a run changed.
type Result struct {
	AdminCreated  bool
	AdminPromoted bool
	Mechanics     int
	Parts         int
}

var sampleMechanics = []model.Mechanic{
	{Name: "Maria Lopez", Phone: "555-0101", Specialty: "Brakes"},
	{Name: "Tom Becker", Phone: "555-0102", Specialty: "Engine"},
	{Name: "Aiko Tanaka", Phone: "555-0103", Specialty: "Electrical"},
}

var sampleParts = []struct {
	name   string
	number string
	price  string
	qty    int
}{
	{"Brake pad set", "BP-1001", "49.99", 20},
	{"Oil filter", "OF-2002", "8.50", 50},
	{"Spark plug", "SP-3003", "4.25", 120},
	{"Air filter", "AF-4004", "15.00", 35},
}

// Run is idempotent: the admin is matched by email, mechanics by name and parts by part number.
func Run(ctx context.Context, db *gorm.DB, hasher *auth.PasswordHasher, admin Admin) (*Result, error) {
	result := &Result{}
	repos := repository.New(db)

	err := repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if admin.Email != "" {
			if err := ensureAdmin(ctx, tx, hasher, admin, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range sampleMechanics {
			mechanic := m
			created, err := createMissing(tx, &mechanic, "name = ?", mechanic.Name)
			if err != nil {
				return fmt.Errorf("seed mechanic %s: %w", mechanic.Name, err)
			}
			if created {
				result.Mechanics++
			}
		}
		for _, p := range sampleParts {
			number := p.number
			qty := p.qty
			part := model.Part{Name: p.name, PartNumber: &number, Price: decimal.RequireFromString(p.price), Quantity: &qty}
			created, err := createMissing(tx, &part, "part_number = ?", number)
			if err != nil {
				return fmt.Errorf("seed part %s: %w", number, err)
			}
			if created {
				result.Parts++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureAdmin(ctx context.Context, tx *repository.Repositories, hasher *auth.PasswordHasher, admin Admin, result *Result) error {
	existing, err := tx.Users.FindByEmail(ctx, admin.Email)
	if err == nil {
		if existing.IsAdmin {
			return nil
		}
		if err := tx.Users.Update(ctx, existing.ID, map[string]interface{}{"is_admin": true}); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		result.AdminPromoted = true
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	if admin.Password == "" {
		return errors.New("admin password is required to create the admin user")
	}
	digest, err := hasher.Hash(admin.Password)
	if err != nil {
		return err
	}
	user := &model.User{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: digest,
		Phone:        admin.Phone,
		IsAdmin:      true,
	}
	if err := tx.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	result.AdminCreated = true
	return nil
}

// createMissing inserts row unless a row of the same model already matches the condition.
func createMissing(tx *gorm.DB, row interface{}, cond string, arg interface{}) (bool, error) {
	var count int64
	if err := tx.Model(row).Where(cond, arg).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, tx.Create(row).Error
}
