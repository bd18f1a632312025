package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyshelf/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var resourceColumns = []string{"id", "title", "subject", "year", "branch", "category", "file_url", "uploaded_by", "created_at"}

func TestResourceRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResourceRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM `resources` WHERE branch = \\? AND year = \\? ORDER BY created_at DESC").
		WithArgs("CSE", "2").
		WillReturnRows(sqlmock.NewRows(resourceColumns).
			AddRow(2, "DSA", "Data Structures", "2", "CSE", "Notes", "https://cdn/2.pdf", 7, now).
			AddRow(1, "OS", "Operating Systems", "2", "CSE", "Paper", "https://cdn/1.pdf", 7, now.Add(-time.Hour)))

	out, err := repo.List(context.Background(), model.ResourceFilter{Branch: "CSE", Year: "2"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "DSA", out[0].Title)
	assert.Equal(t, "Paper", out[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryListUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `resources` ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(resourceColumns))

	out, err := repo.List(context.Background(), model.ResourceFilter{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `resources` WHERE `resources`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows(resourceColumns).
			AddRow(5, "DSA", "Data Structures", "2", "CSE", "Notes", "https://cdn/5.pdf", 7, time.Now()))
	mock.ExpectQuery("SELECT \\* FROM `resources` WHERE `resources`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows(resourceColumns))
	mock.ExpectQuery("SELECT \\* FROM `resources` WHERE `resources`.`id` = \\?").
		WillReturnError(errors.New("connection reset"))

	found, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, uint(7), found.UploadedBy)

	missing, err := repo.GetByID(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(context.Background(), 7)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResourceRepository(db)

	mock.ExpectExec("INSERT INTO `resources`").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("DELETE FROM `resources` WHERE `resources`.`id` = \\?").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := &model.Resource{Title: "DSA", Subject: "DS", Year: "2", Branch: "CSE", Category: "Notes", FileURL: "https://cdn/x.pdf"}
	require.NoError(t, repo.Create(context.Background(), res))
	assert.Equal(t, uint(9), res.ID)

	require.NoError(t, repo.Delete(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorExchangeRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTutorExchangeRepository(db)

	mock.ExpectExec("INSERT INTO `tutor_exchanges`").WillReturnResult(sqlmock.NewResult(1, 1))

	exchange := &model.TutorExchange{Question: "q", Reply: "r", Model: "m"}
	require.NoError(t, repo.Create(context.Background(), exchange))
	assert.Equal(t, uint(1), exchange.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
