package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/internal/models"
	"github.com/feichai0017/exam-solver/pkg/logger"
)

type PostgresRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewPostgresRepository connects, tunes the pool and migrates the schema.
func NewPostgresRepository(cfg config.DatabaseConfig, log logger.Logger) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Running database migrations")
	if err := db.AutoMigrate(
		&models.SolutionRecord{},
		&models.EvaluationRecord{},
		&models.GeneratedPaper{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresRepository{db: db, logger: log}, nil
}

// Ping checks the database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *PostgresRepository) CreateSolution(ctx context.Context, rec *models.SolutionRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create solution record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSolution(ctx context.Context, id string) (*models.SolutionRecord, error) {
	var rec models.SolutionRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *PostgresRepository) ListSolutions(ctx context.Context) ([]models.SolutionRecord, error) {
	var recs []models.SolutionRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	return recs, nil
}

func (r *PostgresRepository) DeleteSolution(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &models.SolutionRecord{}, id)
}

func (r *PostgresRepository) CreateEvaluation(ctx context.Context, rec *models.EvaluationRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create evaluation record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetEvaluation(ctx context.Context, id string) (*models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *PostgresRepository) ListEvaluations(ctx context.Context, paperID string) ([]models.EvaluationRecord, error) {
	var recs []models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Order("created_at desc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return recs, nil
}

func (r *PostgresRepository) UpdateEvaluationScore(ctx context.Context, id, score string) error {
	res := r.db.WithContext(ctx).
		Model(&models.EvaluationRecord{}).
		Where("id = ?", id).
		Update("score", score)
	if res.Error != nil {
		return fmt.Errorf("failed to update evaluation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteEvaluation(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &models.EvaluationRecord{}, id)
}

func (r *PostgresRepository) CreatePaper(ctx context.Context, p *models.GeneratedPaper) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create generated paper: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPaper(ctx context.Context, id string) (*models.GeneratedPaper, error) {
	var p models.GeneratedPaper
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListPapers(ctx context.Context) ([]models.GeneratedPaper, error) {
	var papers []models.GeneratedPaper
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("failed to list generated papers: %w", err)
	}
	return papers, nil
}

func (r *PostgresRepository) DeletePaper(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &models.GeneratedPaper{}, id)
}

func deleteByID(db *gorm.DB, model interface{}, id string) error {
	res := db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("failed to delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load record: %w", err)
}
