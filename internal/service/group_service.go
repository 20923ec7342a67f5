package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// guestPrefix marks member ids of people without an account.
const guestPrefix = "guest-"

// GroupService implements the Connect GroupService.
type GroupService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// CreateGroup creates a group with the caller as its first member and admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}

	creatorName := middleware.GetName(ctx)
	if creatorName == "" {
		creatorName = middleware.GetEmail(ctx)
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   userID,
		Members: []models.Member{{
			UserID:  userID,
			Name:    creatorName,
			Email:   middleware.GetEmail(ctx),
			IsAdmin: true,
		}},
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fail(s.logger, "CreateGroup", err)
	}

	s.logger.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "GetGroup", err, "group_id", req.Msg.GroupID)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fail(s.logger, "ListGroups", err, "user_id", userID)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}

	s.logger.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a person to the group. A registered user with the same
// email keeps their account id; anyone else gets a guest id.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("AddMember request received", "group_id", req.Msg.GroupID, "email", req.Msg.Email)

	name := strings.TrimSpace(req.Msg.Name)
	email := auth.NormalizeEmail(req.Msg.Email)
	if name == "" || email == "" {
		return nil, invalidArgument("name and email are required")
	}

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "AddMember", err, "group_id", req.Msg.GroupID)
	}
	if _, exists := group.FindMemberByEmail(email); exists {
		return nil, connect.NewError(connect.CodeAlreadyExists, errMemberEmailExists)
	}

	member := models.Member{
		UserID: guestPrefix + uuid.New().String(),
		Name:   name,
		Email:  email,
		Phone:  strings.TrimSpace(req.Msg.Phone),
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fail(s.logger, "AddMember", err, "group_id", group.ID)
	}
	if user != nil {
		if _, exists := group.FindMember(user.ID); exists {
			return nil, connect.NewError(connect.CodeAlreadyExists, errMemberEmailExists)
		}
		member.UserID = user.ID
	}

	if err := s.store.AddGroupMember(ctx, group.ID, &member); err != nil {
		return nil, fail(s.logger, "AddMember", err, "group_id", group.ID)
	}
	group.Members = append(group.Members, member)

	s.logger.Info("Member added", "group_id", group.ID, "member_id", member.UserID, "registered", user != nil)
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group), Member: toAPIMember(&member)}), nil
}

// RemoveMember removes another member. Admins only.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.UserID)

	group, err := s.adminGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "RemoveMember", err, "group_id", req.Msg.GroupID)
	}
	if req.Msg.UserID == userID {
		return nil, failedPrecondition("you cannot remove yourself from the group, leave it instead")
	}
	target, ok := group.FindMember(req.Msg.UserID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errMemberNotFound)
	}
	if target.IsAdmin && group.AdminCount() == 1 {
		return nil, failedPrecondition("cannot remove the only admin of the group")
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, target.UserID); err != nil {
		return nil, fail(s.logger, "RemoveMember", err, "group_id", group.ID)
	}

	group, err = s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, fail(s.logger, "RemoveMember", err, "group_id", req.Msg.GroupID)
	}

	s.logger.Info("Member removed", "group_id", group.ID, "member_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group)}), nil
}

// SetMemberAdmin grants or revokes admin rights. Admins only; the last
// admin cannot be demoted.
func (s *GroupService) SetMemberAdmin(ctx context.Context, req *connect.Request[api.SetMemberAdminRequest]) (*connect.Response[api.SetMemberAdminResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("SetMemberAdmin request received",
		"group_id", req.Msg.GroupID,
		"member_id", req.Msg.UserID,
		"is_admin", req.Msg.IsAdmin,
	)

	group, err := s.adminGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "SetMemberAdmin", err, "group_id", req.Msg.GroupID)
	}
	target, ok := group.FindMember(req.Msg.UserID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errMemberNotFound)
	}
	if target.IsAdmin && !req.Msg.IsAdmin && group.AdminCount() == 1 {
		return nil, failedPrecondition("cannot remove admin status, the group must have at least one admin")
	}

	if target.IsAdmin != req.Msg.IsAdmin {
		target.IsAdmin = req.Msg.IsAdmin
		if err := s.store.UpdateGroupMember(ctx, group.ID, target); err != nil {
			return nil, fail(s.logger, "SetMemberAdmin", err, "group_id", group.ID)
		}
	}

	return connect.NewResponse(&api.SetMemberAdminResponse{Group: toAPIGroup(group)}), nil
}

// LeaveGroup removes the caller. The last member leaving deletes the group;
// the only admin leaving hands admin rights to the next member in order.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("LeaveGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, me, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "LeaveGroup", err, "group_id", req.Msg.GroupID)
	}

	if len(group.Members) == 1 {
		if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
			return nil, fail(s.logger, "LeaveGroup", err, "group_id", group.ID)
		}
		s.logger.Info("Last member left, group deleted", "group_id", group.ID)
		return connect.NewResponse(&api.LeaveGroupResponse{GroupDeleted: true}), nil
	}

	var successor string
	if me.IsAdmin && group.AdminCount() == 1 {
		for _, m := range group.Members {
			if m.UserID != userID {
				successor = m.UserID
				break
			}
		}
	}

	if err := s.store.HandOverAndRemove(ctx, group.ID, userID, successor); err != nil {
		return nil, fail(s.logger, "LeaveGroup", err, "group_id", group.ID)
	}
	if successor != "" {
		s.logger.Info("Admin rights handed over", "group_id", group.ID, "member_id", successor)
	}

	return connect.NewResponse(&api.LeaveGroupResponse{}), nil
}

// DeleteGroup removes a group with all its expenses. Admins only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := actingUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.adminGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail(s.logger, "DeleteGroup", err, "group_id", req.Msg.GroupID)
	}
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return nil, fail(s.logger, "DeleteGroup", err, "group_id", group.ID)
	}

	s.logger.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// adminGroup loads a group and checks that userID is one of its admins.
func (s *GroupService) adminGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, me, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !me.IsAdmin {
		return nil, errNotAdmin
	}
	return group, nil
}
