package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/groupchat/internal/handlers/dto"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/internal/services"
)

type GroupHandler struct {
	groups     *services.GroupService
	membership *services.MembershipService
}

func NewGroupHandler(groups *services.GroupService, membership *services.MembershipService) *GroupHandler {
	return &GroupHandler{groups: groups, membership: membership}
}

// CreateGroup создает группу, создатель становится администратором
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.GroupNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), middleware.UserID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "group created", group)
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "groups", groups)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	group, err := h.groups.GetGroup(c.Request.Context(), groupID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "group", group)
}

// RenameGroup меняет имя, только для администраторов
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}
	var req dto.GroupNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.groups.RenameGroup(c.Request.Context(), middleware.UserID(c), groupID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "group renamed", group)
}

// DeleteGroup удаляет группу со всеми сообщениями и участниками
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	if err := h.groups.DeleteGroup(c.Request.Context(), middleware.UserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "group deleted", nil)
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	members, err := h.groups.ListMembers(c.Request.Context(), groupID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "group members", members)
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}
	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	member, err := h.membership.AddMember(c.Request.Context(), middleware.UserID(c), groupID, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "member added", member)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	if err := h.membership.Remove(c.Request.Context(), middleware.UserID(c), groupID, userID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "member removed", nil)
}

// AddAdmin назначает участника администратором
func (h *GroupHandler) AddAdmin(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}
	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	member, err := h.membership.Promote(c.Request.Context(), middleware.UserID(c), groupID, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "member promoted to admin", member)
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupID, ok := uuidParam(c, "groupId")
	if !ok {
		return
	}

	if err := h.membership.Leave(c.Request.Context(), middleware.UserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "left group", nil)
}
