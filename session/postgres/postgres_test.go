package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/skillscout/skillscout/models"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil), mock
}

func TestEnsureUpsert(t *testing.T) {
	st, mock := newStore(t)

	query := regexp.QuoteMeta(`INSERT INTO agent_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`)
	mock.ExpectExec(query).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.Ensure(context.Background(), "u1"); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	// Second call hits the conflict branch and still succeeds.
	if err := st.Ensure(context.Background(), "u1"); err != nil {
		t.Fatalf("Ensure (repeat): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetItemsReversesToChronological(t *testing.T) {
	st, mock := newStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "message_data", "created_at"}).
		AddRow(int64(3), []byte(`{"role":"assistant","content":"c"}`), now).
		AddRow(int64(2), []byte(`{"role":"user","content":"b"}`), now).
		AddRow(int64(1), []byte(`{"role":"user","content":"a"}`), now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, message_data, created_at FROM agent_messages WHERE session_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`)).
		WithArgs("u1", 3).
		WillReturnRows(rows)

	items, err := st.GetItems(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	var first models.Message
	if err := json.Unmarshal(items[0].Data, &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.Content != "a" || items[0].ID != 1 || items[2].ID != 3 {
		t.Fatalf("items not chronological: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetItemsStorageFault(t *testing.T) {
	st, mock := newStore(t)

	mock.ExpectQuery(`SELECT id, message_data, created_at FROM agent_messages`).
		WithArgs("u1").
		WillReturnError(context.DeadlineExceeded)

	items, err := st.GetItems(context.Background(), "u1", 0)
	if err == nil {
		t.Fatal("expected error on storage fault")
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result on fault, got %d", len(items))
	}
}

func TestAddItemsBatchTx(t *testing.T) {
	st, mock := newStore(t)

	insert := regexp.QuoteMeta(`INSERT INTO agent_messages (session_id, message_data) VALUES ($1, $2)`)
	touch := regexp.QuoteMeta(`UPDATE agent_sessions SET updated_at=NOW() WHERE session_id=$1`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("u1", []byte(`{"role":"user","content":"hi"}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs("u1", []byte(`{"role":"assistant","content":"hello"}`)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(touch).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	items := []models.Item{
		{Data: json.RawMessage(`{"role":"user","content":"hi"}`)},
		{Data: json.RawMessage(`{"role":"assistant","content":"hello"}`)},
	}
	if err := st.AddItems(context.Background(), "u1", items); err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddItemsEmptyNoop(t *testing.T) {
	st, mock := newStore(t)
	if err := st.AddItems(context.Background(), "u1", nil); err != nil {
		t.Fatalf("AddItems empty: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestAddItemsFaultRollsBack(t *testing.T) {
	st, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO agent_messages`).
		WithArgs("u1", []byte(`{"role":"user","content":"hi"}`)).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := st.AddItems(context.Background(), "u1", []models.Item{
		{Data: json.RawMessage(`{"role":"user","content":"hi"}`)},
	})
	if err == nil {
		t.Fatal("expected error on storage fault")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPopItemRemovesNewest(t *testing.T) {
	st, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, message_data, created_at FROM agent_messages WHERE session_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "message_data", "created_at"}).
			AddRow(int64(9), []byte(`{"role":"assistant","content":"last"}`), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM agent_messages WHERE id=$1`)).
		WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))

	it, err := st.PopItem(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PopItem: %v", err)
	}
	if it == nil || it.ID != 9 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPopItemEmpty(t *testing.T) {
	st, mock := newStore(t)

	mock.ExpectQuery(`SELECT id, message_data, created_at FROM agent_messages`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "message_data", "created_at"}))

	it, err := st.PopItem(context.Background(), "u1")
	if err != nil {
		t.Fatalf("PopItem: %v", err)
	}
	if it != nil {
		t.Fatalf("expected nil item on empty session, got %+v", it)
	}
}

func TestClearDeletesItemsAndRow(t *testing.T) {
	st, mock := newStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM agent_messages WHERE session_id=$1`)).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM agent_sessions WHERE session_id=$1`)).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.Clear(context.Background(), "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
