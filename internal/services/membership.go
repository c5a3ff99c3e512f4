package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
)

// GroupRooms живые комнаты групп. После удаления участника его соединения
// выводятся из комнаты группы, о смене роли или статуса он узнает сразу.
type GroupRooms interface {
	EvictFromGroup(groupID, userID uuid.UUID)
	CloseGroup(groupID uuid.UUID)
	NotifyMembership(groupID, userID uuid.UUID, role, status string)
	IsOnline(userID uuid.UUID) bool
}

// MembershipService переходы состояний участника группы:
// absent -> member -> admin, member|admin -> removed -> восстановление.
type MembershipService struct {
	db    *database.Database
	rooms GroupRooms
}

func NewMembershipService(db *database.Database, rooms GroupRooms) *MembershipService {
	return &MembershipService{db: db, rooms: rooms}
}

// AddMember добавляет контакт администратора в группу. Удаленный ранее
// участник восстанавливается с прежней ролью.
func (s *MembershipService) AddMember(ctx context.Context, actorID, groupID, targetID uuid.UUID) (MemberView, error) {
	if groupID == uuid.Nil || targetID == uuid.Nil {
		return MemberView{}, invalidInput("groupId and userId are required")
	}

	var view MemberView
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return lookupErr(err, "group")
		}
		if err := requireAdmin(ctx, tx, groupID, actorID); err != nil {
			return err
		}

		target, err := tx.GetUser(ctx, targetID)
		if err != nil {
			return lookupErr(err, "user")
		}
		if err := requireContact(ctx, tx, actorID, targetID); err != nil {
			return err
		}

		member, err := tx.GetMember(ctx, groupID, targetID)
		switch {
		case err == nil && member.IsActive():
			return invalidState("user is already a member of this group")
		case err == nil:
			member.Restore()
			if err := tx.SaveMember(ctx, member); err != nil {
				return err
			}
		case errors.Is(err, database.ErrNotFound):
			member = &models.GroupMember{
				GroupID: groupID,
				UserID:  targetID,
				Role:    models.RoleMember,
				Status:  models.MemberActive,
			}
			if err := tx.CreateMember(ctx, member); err != nil {
				return err
			}
		default:
			return err
		}

		view = MemberView{UserView: newUserView(target), Role: member.Role}
		return nil
	})
	if err != nil {
		return MemberView{}, storeErr(err, "failed to add member")
	}
	s.notify(groupID, targetID, view.Role, models.MemberActive)
	return view, nil
}

// Promote делает участника администратором
func (s *MembershipService) Promote(ctx context.Context, actorID, groupID, targetID uuid.UUID) (MemberView, error) {
	if groupID == uuid.Nil || targetID == uuid.Nil {
		return MemberView{}, invalidInput("groupId and userId are required")
	}

	var view MemberView
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return lookupErr(err, "group")
		}
		if err := requireAdmin(ctx, tx, groupID, actorID); err != nil {
			return err
		}

		member, err := activeMember(ctx, tx, groupID, targetID)
		if err != nil {
			return err
		}
		if member.Role == models.RoleAdmin {
			return invalidState("user is already an admin")
		}
		if err := requireContact(ctx, tx, actorID, targetID); err != nil {
			return err
		}

		member.Role = models.RoleAdmin
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}

		target, err := tx.GetUser(ctx, targetID)
		if err != nil {
			return lookupErr(err, "user")
		}
		view = MemberView{UserView: newUserView(target), Role: member.Role}
		return nil
	})
	if err != nil {
		return MemberView{}, storeErr(err, "failed to promote member")
	}
	s.notify(groupID, targetID, view.Role, models.MemberActive)
	return view, nil
}

// Remove удаляет обычного участника. Администратор может только выйти сам.
func (s *MembershipService) Remove(ctx context.Context, actorID, groupID, targetID uuid.UUID) error {
	if groupID == uuid.Nil || targetID == uuid.Nil {
		return invalidInput("groupId and userId are required")
	}

	var role models.Role
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return lookupErr(err, "group")
		}
		if err := requireAdmin(ctx, tx, groupID, actorID); err != nil {
			return err
		}

		member, err := activeMember(ctx, tx, groupID, targetID)
		if err != nil {
			return err
		}
		if member.Role == models.RoleAdmin {
			return invalidState("an admin cannot be removed from the group")
		}

		role = member.Role
		member.Remove(now())
		return tx.SaveMember(ctx, member)
	})
	if err != nil {
		return storeErr(err, "failed to remove member")
	}

	s.evict(groupID, targetID)
	s.notify(groupID, targetID, role, models.MemberRemoved)
	return nil
}

// Leave выход из группы. Последний администратор выйти не может.
func (s *MembershipService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	if groupID == uuid.Nil {
		return invalidInput("groupId is required")
	}

	var role models.Role
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return lookupErr(err, "group")
		}

		member, err := activeMember(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if member.Role == models.RoleAdmin {
			admins, err := tx.CountActiveAdmins(ctx, groupID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return invalidState("you are the last admin of this group, promote another member first")
			}
		}

		role = member.Role
		member.Remove(now())
		return tx.SaveMember(ctx, member)
	})
	if err != nil {
		return storeErr(err, "failed to leave group")
	}

	s.evict(groupID, userID)
	s.notify(groupID, userID, role, models.MemberRemoved)
	return nil
}

// RequireActiveMember проверяет, что пользователь сейчас состоит в группе
func (s *MembershipService) RequireActiveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return requireActiveMember(ctx, s.db, groupID, userID)
}

func (s *MembershipService) evict(groupID, userID uuid.UUID) {
	if s.rooms != nil {
		s.rooms.EvictFromGroup(groupID, userID)
	}
}

func (s *MembershipService) notify(groupID, userID uuid.UUID, role models.Role, status models.MemberStatus) {
	if s.rooms != nil {
		s.rooms.NotifyMembership(groupID, userID, string(role), string(status))
	}
}

func requireAdmin(ctx context.Context, db *database.Database, groupID, userID uuid.UUID) error {
	member, err := db.GetMember(ctx, groupID, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return internal("failed to load membership", err)
	}
	if err != nil || !member.IsAdmin() {
		return notAuthorized("only group admins can do this")
	}
	return nil
}

func requireActiveMember(ctx context.Context, db *database.Database, groupID, userID uuid.UUID) error {
	if groupID == uuid.Nil {
		return invalidInput("groupId is required")
	}
	if _, err := db.GetGroup(ctx, groupID); err != nil {
		return lookupErr(err, "group")
	}
	member, err := db.GetMember(ctx, groupID, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return internal("failed to load membership", err)
	}
	if err != nil || !member.IsActive() {
		return notAuthorized("you are not a member of this group")
	}
	return nil
}

func requireContact(ctx context.Context, db *database.Database, actorID, targetID uuid.UUID) error {
	ok, err := areContacts(ctx, db, actorID, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("user is not in your contacts")
	}
	return nil
}

func activeMember(ctx context.Context, db *database.Database, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	member, err := db.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, lookupErr(err, "group member")
	}
	if !member.IsActive() {
		return nil, notFound("group member not found")
	}
	return member, nil
}
