package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/models"
)

func TestAddMember_Guards(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db, nil)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	link(t, db, alice, bob)
	link(t, db, bob, carol)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}

	_, err = members.AddMember(ctx, alice.ID, uuid.New(), bob.ID)
	assertKind(t, err, ErrNotFound)

	_, err = members.AddMember(ctx, alice.ID, g.ID, uuid.New())
	assertKind(t, err, ErrNotFound)

	// carol не в контактах alice
	_, err = members.AddMember(ctx, alice.ID, g.ID, carol.ID)
	assertKind(t, err, ErrNotFound)

	view, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if view.ID != bob.ID || view.Role != models.RoleMember {
		t.Fatalf("unexpected member %+v", view)
	}

	_, err = members.AddMember(ctx, alice.ID, g.ID, bob.ID)
	assertKind(t, err, ErrInvalidState)

	// bob участник, но не администратор
	_, err = members.AddMember(ctx, bob.ID, g.ID, carol.ID)
	assertKind(t, err, ErrNotAuthorized)
}

func TestPromote(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db, nil)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	link(t, db, alice, bob)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}

	_, err = members.Promote(ctx, alice.ID, g.ID, carol.ID)
	assertKind(t, err, ErrNotFound)

	if _, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	_, err = members.Promote(ctx, bob.ID, g.ID, alice.ID)
	assertKind(t, err, ErrNotAuthorized)

	view, err := members.Promote(ctx, alice.ID, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if view.Role != models.RoleAdmin {
		t.Fatalf("expected admin, got %s", view.Role)
	}

	_, err = members.Promote(ctx, alice.ID, g.ID, bob.ID)
	assertKind(t, err, ErrInvalidState)
}

func TestRemove(t *testing.T) {
	db := newTestDB(t)
	rooms := &fakeRooms{}
	groups := NewGroupService(db, rooms)
	members := NewMembershipService(db, rooms)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	link(t, db, alice, bob)
	link(t, db, alice, carol)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range []*models.User{bob, carol} {
		if _, err := members.AddMember(ctx, alice.ID, g.ID, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := members.Promote(ctx, alice.ID, g.ID, carol.ID); err != nil {
		t.Fatal(err)
	}

	err = members.Remove(ctx, bob.ID, g.ID, alice.ID)
	assertKind(t, err, ErrNotAuthorized)

	// администратора удалить нельзя
	err = members.Remove(ctx, alice.ID, g.ID, carol.ID)
	assertKind(t, err, ErrInvalidState)

	if err := members.Remove(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(rooms.evicted) != 1 || rooms.evicted[0] != bob.ID {
		t.Fatalf("expected bob evicted, got %v", rooms.evicted)
	}

	err = members.Remove(ctx, alice.ID, g.ID, bob.ID)
	assertKind(t, err, ErrNotFound)

	err = members.RequireActiveMember(ctx, g.ID, bob.ID)
	assertKind(t, err, ErrNotAuthorized)
}

func TestLeave_LastAdminMustStay(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db, nil)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	link(t, db, alice, bob)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	err = members.Leave(ctx, alice.ID, g.ID)
	assertKind(t, err, ErrInvalidState)

	if err := members.Leave(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("member Leave: %v", err)
	}
	err = members.Leave(ctx, bob.ID, g.ID)
	assertKind(t, err, ErrNotFound)

	// единственный участник и администратор тоже не может выйти
	err = members.Leave(ctx, alice.ID, g.ID)
	assertKind(t, err, ErrInvalidState)
}

func TestRestore_KeepsRowAndRole(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db, nil)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	link(t, db, alice, bob)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := members.Promote(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	before, err := db.GetMember(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := members.Leave(ctx, bob.ID, g.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	removed, err := db.GetMember(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Status != models.MemberRemoved || removed.DeletedAt == nil {
		t.Fatalf("expected removed row, got %+v", removed)
	}

	view, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if view.Role != models.RoleAdmin {
		t.Fatalf("expected restored role admin, got %s", view.Role)
	}

	after, err := db.GetMember(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.ID != before.ID {
		t.Fatalf("expected same row %v, got %v", before.ID, after.ID)
	}
	if !after.IsActive() || after.DeletedAt != nil {
		t.Fatalf("expected active row, got %+v", after)
	}

	var rows int64
	db.DB().Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", g.ID, bob.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected exactly one row per pair, got %d", rows)
	}
}

func TestLeave_ConcurrentAdminsKeepOne(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db, nil)
	members := NewMembershipService(db, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	link(t, db, alice, bob)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := members.AddMember(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := members.Promote(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, u := range []*models.User{alice, bob} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			errs[i] = members.Leave(ctx, id, g.ID)
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case KindOf(err) != ErrInvalidState:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one leave to succeed, got %d", succeeded)
	}

	admins, err := db.CountActiveAdmins(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if admins != 1 {
		t.Fatalf("expected one admin left, got %d", admins)
	}
}

func TestMembership_NotifiesAffectedUser(t *testing.T) {
	db := newTestDB(t)
	rooms := &fakeRooms{}
	groups := NewGroupService(db, rooms)
	members := NewMembershipService(db, rooms)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	link(t, db, alice, bob)
	link(t, db, alice, carol)

	g, err := groups.CreateGroup(ctx, alice.ID, "g")
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range []*models.User{bob, carol} {
		if _, err := members.AddMember(ctx, alice.ID, g.ID, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := members.Promote(ctx, alice.ID, g.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := members.Remove(ctx, alice.ID, g.ID, carol.ID); err != nil {
		t.Fatal(err)
	}
	if err := members.Leave(ctx, bob.ID, g.ID); err != nil {
		t.Fatal(err)
	}
	// отказ не порождает уведомления
	_, err = members.Promote(ctx, alice.ID, g.ID, carol.ID)
	assertKind(t, err, ErrNotFound)

	want := []notice{
		{bob.ID, "member", "active"},
		{carol.ID, "member", "active"},
		{bob.ID, "admin", "active"},
		{carol.ID, "member", "removed"},
		{bob.ID, "admin", "removed"},
	}
	if len(rooms.notices) != len(want) {
		t.Fatalf("notices = %+v, want %+v", rooms.notices, want)
	}
	for i := range want {
		if rooms.notices[i] != want[i] {
			t.Fatalf("notice %d = %+v, want %+v", i, rooms.notices[i], want[i])
		}
	}
}
