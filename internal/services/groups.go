package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/models"
)

const maxGroupNameLength = 100

type GroupService struct {
	db    *database.Database
	rooms GroupRooms
}

func NewGroupService(db *database.Database, rooms GroupRooms) *GroupService {
	return &GroupService{db: db, rooms: rooms}
}

// CreateGroup создает группу, создатель становится администратором
func (s *GroupService) CreateGroup(ctx context.Context, creatorID uuid.UUID, name string) (GroupView, error) {
	name, err := normalizeGroupName(name)
	if err != nil {
		return GroupView{}, err
	}

	var view GroupView
	err = s.db.Atomic(ctx, func(tx *database.Database) error {
		creator, err := tx.GetUser(ctx, creatorID)
		if err != nil {
			return lookupErr(err, "user")
		}
		if err := ensureNameFree(ctx, tx, creatorID, name, uuid.Nil); err != nil {
			return err
		}

		group := &models.Group{Name: name, CreatedBy: creatorID}
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		admin := &models.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			Role:    models.RoleAdmin,
			Status:  models.MemberActive,
		}
		if err := tx.CreateMember(ctx, admin); err != nil {
			return err
		}

		view = newGroupView(group)
		view.Members = []MemberView{{UserView: newUserView(creator), Role: models.RoleAdmin}}
		return nil
	})
	if err != nil {
		return GroupView{}, storeErr(err, "failed to create group")
	}
	return view, nil
}

// RenameGroup меняет имя группы, только для администраторов
func (s *GroupService) RenameGroup(ctx context.Context, actorID, groupID uuid.UUID, name string) (GroupView, error) {
	name, err := normalizeGroupName(name)
	if err != nil {
		return GroupView{}, err
	}

	var view GroupView
	err = s.db.Atomic(ctx, func(tx *database.Database) error {
		group, err := tx.LockGroup(ctx, groupID)
		if err != nil {
			return lookupErr(err, "group")
		}
		if err := requireAdmin(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		if group.Name != name {
			if err := ensureNameFree(ctx, tx, group.CreatedBy, name, group.ID); err != nil {
				return err
			}
			if err := tx.UpdateGroupName(ctx, groupID, name); err != nil {
				return err
			}
			group.Name = name
		}
		view = newGroupView(group)
		return nil
	})
	if err != nil {
		return GroupView{}, storeErr(err, "failed to rename group")
	}
	return view, nil
}

// DeleteGroup удаляет группу вместе с сообщениями и участниками
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID uuid.UUID) error {
	err := s.db.Atomic(ctx, func(tx *database.Database) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return lookupErr(err, "group")
		}
		if err := requireAdmin(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		return tx.DeleteGroupCascade(ctx, groupID)
	})
	if err != nil {
		return storeErr(err, "failed to delete group")
	}

	if s.rooms != nil {
		s.rooms.CloseGroup(groupID)
	}
	return nil
}

func (s *GroupService) ListGroups(ctx context.Context, userID uuid.UUID) ([]GroupView, error) {
	groups, err := s.db.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, internal("failed to load groups", err)
	}
	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, newGroupView(&groups[i]))
	}
	return views, nil
}

// GetGroup группа с активными участниками
func (s *GroupService) GetGroup(ctx context.Context, groupID, callerID uuid.UUID) (GroupView, error) {
	if err := requireActiveMember(ctx, s.db, groupID, callerID); err != nil {
		return GroupView{}, err
	}
	group, err := s.db.GetGroup(ctx, groupID)
	if err != nil {
		return GroupView{}, lookupErr(err, "group")
	}
	members, err := s.memberViews(ctx, groupID)
	if err != nil {
		return GroupView{}, err
	}
	view := newGroupView(group)
	view.Members = members
	return view, nil
}

func (s *GroupService) ListMembers(ctx context.Context, groupID, callerID uuid.UUID) ([]MemberView, error) {
	if err := requireActiveMember(ctx, s.db, groupID, callerID); err != nil {
		return nil, err
	}
	return s.memberViews(ctx, groupID)
}

func (s *GroupService) memberViews(ctx context.Context, groupID uuid.UUID) ([]MemberView, error) {
	members, err := s.db.ListActiveMembers(ctx, groupID)
	if err != nil {
		return nil, internal("failed to load members", err)
	}
	views := make([]MemberView, 0, len(members))
	for i := range members {
		views = append(views, MemberView{
			UserView: newUserView(&members[i].User),
			Role:     members[i].Role,
			Online:   s.rooms != nil && s.rooms.IsOnline(members[i].UserID),
		})
	}
	return views, nil
}

func normalizeGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("group name is required")
	}
	if len([]rune(name)) > maxGroupNameLength {
		return "", invalidInput("group name is too long")
	}
	return name, nil
}

// ensureNameFree имя группы уникально в пределах создателя
func ensureNameFree(ctx context.Context, db *database.Database, creatorID uuid.UUID, name string, except uuid.UUID) error {
	existing, err := db.FindGroupByName(ctx, creatorID, name)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil
	case err != nil:
		return internal("failed to check group name", err)
	case existing.ID == except:
		return nil
	default:
		return alreadyExists("group name already exists")
	}
}
