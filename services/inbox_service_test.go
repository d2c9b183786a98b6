package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func TestInboxList(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"notification_id", "event_type_id", "event_name", "message",
		"link_url", "request_id", "read_at", "created_at",
	}).
		AddRow(2, 1, "Status Change", "Status change: ACME-20250115-001 → in_transit",
			"http://localhost:3000/requests?number=ACME-20250115-001", 1, nil, now).
		AddRow(1, 2, "New Request", "New request: ACME-20250115-001 (Acme GmbH)",
			"http://localhost:3000/requests?number=ACME-20250115-001", 1, now, now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT n.notification_id, n.event_type_id, net.event_name, n.message, n.link_url, n.request_id, n.read_at, n.created_at " +
			"FROM notifications AS n " +
			"JOIN notification_event_types net ON net.event_type_id = n.event_type_id " +
			"WHERE n.user_id = ? ORDER BY n.created_at DESC LIMIT 50")).
		WithArgs(7).
		WillReturnRows(rows)

	items, err := svc.List(7, false, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].NotificationID != 2 || items[0].ReadAt != nil {
		t.Errorf("newest item first and unread, got %+v", items[0])
	}
	if items[1].ReadAt == nil {
		t.Error("second item should be read")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxListUnreadOnlyAndLimitCap(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE n.user_id = ? AND n.read_at IS NULL ORDER BY n.created_at DESC LIMIT 50")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"notification_id"}))

	// limit above the cap falls back to the default
	if _, err := svc.List(7, true, 500); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxMarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE `notifications` SET `read_at`=? WHERE notification_id = ? AND user_id = ? AND read_at IS NULL")).
		WithArgs(sqlmock.AnyArg(), 3, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.MarkRead(3, 7); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxMarkReadIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	// Already read or not owned: zero rows affected, still no error.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notifications`").
		WithArgs(sqlmock.AnyArg(), 3, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := svc.MarkRead(3, 7); err != nil {
		t.Fatalf("MarkRead repeat: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxMarkAllRead(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE `notifications` SET `read_at`=? WHERE user_id = ? AND read_at IS NULL")).
		WithArgs(sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	updated, err := svc.MarkAllRead(7)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if updated != 4 {
		t.Errorf("updated = %d, want 4", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxDelete(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM `notifications` WHERE notification_id = ? AND user_id = ?")).
		WithArgs(3, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.Delete(3, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInboxUnreadCount(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInboxService(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `notifications` WHERE user_id = ? AND read_at IS NULL")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))

	count, err := svc.UnreadCount(7)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
