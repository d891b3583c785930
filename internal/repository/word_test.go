package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/phihung0131/vocabulary-extension/internal/models"
)

func setupMock(t *testing.T) (*PostgresWordRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresWordRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestWordExists_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM collocations WHERE word = $1 AND deleted = false)`)).
		WithArgs("rain").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.WordExists(context.Background(), "rain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestWordExists_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM collocations`)).
		WithArgs("rain").
		WillReturnError(errors.New("query fail"))

	_, err := repo.WordExists(context.Background(), "rain")
	if err == nil || !regexp.MustCompile(`WordExists failed`).MatchString(err.Error()) {
		t.Errorf("expected WordExists failed error, got %v", err)
	}
}

func TestInsertCollocations_CountsOnlyNewRows(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	insertRe := regexp.QuoteMeta(`INSERT INTO collocations`)

	mock.ExpectBegin()
	mock.ExpectExec(insertRe).
		WithArgs(sqlmock.AnyArg(), "rain", "heavy rain", "", "", pq.Array([]string(nil)), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertRe).
		WithArgs(sqlmock.AnyArg(), "rain", "light rain", "", "", pq.Array([]string(nil)), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0)) // conflict: already stored
	mock.ExpectCommit()

	n, err := repo.InsertCollocations(context.Background(), []models.Collocation{
		{Word: "rain", Collocation: "heavy rain"},
		{Word: "rain", Collocation: "light rain"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted = %d; want 1", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertCollocations_RollbackOnError(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO collocations`)).
		WillReturnError(errors.New("insert fail"))
	mock.ExpectRollback()

	_, err := repo.InsertCollocations(context.Background(), []models.Collocation{
		{Word: "rain", Collocation: "heavy rain"},
	})
	if err == nil || !regexp.MustCompile(`insert collocation`).MatchString(err.Error()) {
		t.Errorf("expected insert error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetCollocations_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "word", "collocation", "ipa", "meaning", "synonyms", "version"}).
		AddRow("1", "rain", "heavy rain", "/ˈhɛvi reɪn/", "intense rainfall", pq.Array([]string{"downpour"}), int64(7)).
		AddRow("2", "rain", "light rain", "", "", pq.Array([]string(nil)), int64(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, word, collocation, ipa, meaning, synonyms, version`)).
		WillReturnRows(rows)

	collocations, err := repo.GetCollocations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(collocations) != 2 {
		t.Fatalf("expected 2 collocations, got %d", len(collocations))
	}
	if collocations[0].Collocation != "heavy rain" || collocations[0].Synonyms[0] != "downpour" {
		t.Errorf("unexpected first row: %+v", collocations[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteAll_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE collocations SET deleted = true`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted = %d; want 4", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
