package services

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()

	dsn := "file:services_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db := database.NewDatabase(gdb)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, db *database.Database, name string) *models.User {
	t.Helper()

	u := &models.User{
		FirstName:    name,
		LastName:     "Test",
		Email:        name + "@example.com",
		PhoneNumber:  "+1" + uuid.NewString()[:8],
		PasswordHash: "x",
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func link(t *testing.T, db *database.Database, a, b *models.User) {
	t.Helper()
	if _, err := NewContactService(db).AddContact(context.Background(), a.ID, b.ID); err != nil {
		t.Fatalf("add contact %s-%s: %v", a.FirstName, b.FirstName, err)
	}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %v, got %v (%v)", kind, got, err)
	}
}

// fakeRooms запоминает вызовы GroupRooms
type fakeRooms struct {
	mu      sync.Mutex
	evicted []uuid.UUID
	closed  []uuid.UUID
	notices []notice
	online  map[uuid.UUID]bool
}

type notice struct {
	userID uuid.UUID
	role   string
	status string
}

func (f *fakeRooms) NotifyMembership(_, userID uuid.UUID, role, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{userID: userID, role: role, status: status})
}

func (f *fakeRooms) IsOnline(userID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakeRooms) EvictFromGroup(_, userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicted = append(f.evicted, userID)
}

func (f *fakeRooms) CloseGroup(groupID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, groupID)
}
