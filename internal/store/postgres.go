package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/i474232898/plant-care/internal/plants"
)

// DBConfig holds postgres connection settings.
type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func (c DBConfig) dsn() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s application_name=plant-care",
		c.Host, c.User, c.Password, c.Name, c.Port, sslmode,
	)
}

// Connect opens a pooled gorm connection to postgres.
func Connect(cfg DBConfig) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{
		Logger:                 newLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		// Maps unique violations to gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("INFO: connected to database")
	return db, nil
}

// Migrate creates or updates the schema, including the recommendation generation index.
func Migrate(db *gorm.DB) error {
	log.Println("INFO: running database migrations")
	if err := db.AutoMigrate(
		&plants.Conditions{},
		&plants.Plant{},
		&plants.WateringLog{},
		&plants.Recommendation{},
		&plants.Profile{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PostgresStore implements Store on gorm.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB exposes the underlying handle for health and pool monitoring.
func (s *PostgresStore) DB() *gorm.DB {
	return s.db
}

func (s *PostgresStore) ListConditions(ctx context.Context) ([]plants.Conditions, error) {
	var out []plants.Conditions
	err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

func (s *PostgresStore) GetConditions(ctx context.Context, id uuid.UUID) (plants.Conditions, error) {
	var c plants.Conditions
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return plants.Conditions{}, translate(err)
	}
	return c, nil
}

// UpsertConditions updates the ideals of an existing species by name or inserts a new one.
func (s *PostgresStore) UpsertConditions(ctx context.Context, c *plants.Conditions) error {
	var existing plants.Conditions
	err := s.db.WithContext(ctx).Where("lower(name) = lower(?)", c.Name).First(&existing).Error
	switch {
	case err == nil:
		c.ID = existing.ID
	case errors.Is(err, gorm.ErrRecordNotFound):
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
	default:
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

func (s *PostgresStore) CreatePlant(ctx context.Context, p *plants.Plant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Omit("Conditions").Create(p).Error)
}

func (s *PostgresStore) GetPlant(ctx context.Context, userID, plantID uuid.UUID) (plants.Plant, error) {
	var p plants.Plant
	err := s.db.WithContext(ctx).
		Preload("Conditions").
		Where("id = ? AND user_id = ?", plantID, userID).
		First(&p).Error
	if err != nil {
		return plants.Plant{}, translate(err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlants(ctx context.Context, userID uuid.UUID) ([]plants.Plant, error) {
	var out []plants.Plant
	err := s.db.WithContext(ctx).
		Preload("Conditions").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

func (s *PostgresStore) CreateWateringLog(ctx context.Context, l *plants.WateringLog) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&plants.Plant{}).
		Where("id = ? AND user_id = ?", l.PlantID, l.UserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *PostgresStore) LatestWateringLog(ctx context.Context, userID, plantID uuid.UUID) (*plants.WateringLog, error) {
	var l plants.WateringLog
	err := s.db.WithContext(ctx).
		Where("plant_id = ? AND user_id = ?", plantID, userID).
		Order("log_date desc").
		Order("created_at desc").
		Limit(1).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) InsertRecommendation(ctx context.Context, rec *plants.Recommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(rec).Error)
}

func (s *PostgresStore) LatestRecommendation(ctx context.Context, userID, plantID uuid.UUID) (*plants.Recommendation, error) {
	recs, err := s.ListRecommendations(ctx, userID, plantID, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, userID, plantID uuid.UUID, limit int) ([]plants.Recommendation, error) {
	var out []plants.Recommendation
	q := s.db.WithContext(ctx).
		Where("plant_id = ? AND user_id = ?", plantID, userID).
		Order("date_generated desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID uuid.UUID) (*plants.Profile, error) {
	var p plants.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p *plants.Profile) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
