package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/luminacare/pipeline-service/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db, mock
}

func TestStageUpdateWritesArchiveFlag(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "crm_stages" SET .*"active"=\$\d+.* WHERE stage_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &StageRepository{db: db}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	stage := domain.Stage{
		StageID:    "stage_1",
		RegistryID: "reg_1",
		Name:       "Intake",
		Slug:       "intake",
		Color:      "blue",
		Position:   2,
		Active:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Update(context.Background(), stage); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("archive flag never reached the SET list: %v", err)
	}
}

func TestStageUpdateMissingRow(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "crm_stages" SET .* WHERE stage_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &StageRepository{db: db}
	err := repo.Update(context.Background(), domain.Stage{StageID: "stage_missing", RegistryID: "reg_1"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
