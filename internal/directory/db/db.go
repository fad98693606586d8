package db

import (
	"context"
	"fmt"

	e "github.com/gartstein/companydir/internal/directory/errors"
	dbmodels "github.com/gartstein/companydir/internal/directory/db/models"
	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite, "":
		path := c.Path
		if path == "" {
			path = "file:companydir?mode=memory&cache=shared"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", e.ErrInvalidInput, c.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// ListCompanies returns every stored company in source order.
func (r *Repository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var rows []dbmodels.Company
	result := r.db.WithContext(ctx).Order("position ASC").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	companies := make([]models.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, row.ToDomain())
	}
	return companies, nil
}

// CreateCompanies appends the given companies after the last stored position.
func (r *Repository) CreateCompanies(ctx context.Context, companies []models.Company) error {
	if len(companies) == 0 {
		return nil
	}
	return r.WithTransaction(ctx, func(repo *Repository) error {
		var last struct{ Max *int }
		if err := repo.db.Model(&dbmodels.Company{}).Select("MAX(position) AS max").Scan(&last).Error; err != nil {
			return err
		}
		next := 0
		if last.Max != nil {
			next = *last.Max + 1
		}
		rows := make([]dbmodels.Company, 0, len(companies))
		for i, c := range companies {
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
			rows = append(rows, dbmodels.FromDomain(c, next+i))
		}
		return repo.db.Create(&rows).Error
	})
}

// CountCompanies returns the number of stored companies.
func (r *Repository) CountCompanies(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).Count(&count)
	return count, result.Error
}

// SeedIfEmpty stores the given collection when the table holds no rows yet.
// It reports whether anything was written.
func (r *Repository) SeedIfEmpty(ctx context.Context, companies []models.Company) (bool, error) {
	count, err := r.CountCompanies(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count companies: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := r.CreateCompanies(ctx, companies); err != nil {
		return false, fmt.Errorf("failed to seed companies: %w", err)
	}
	return true, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
