package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aldenhart/docspace/internal/api/middleware"
	"github.com/aldenhart/docspace/internal/api/response"
	"github.com/aldenhart/docspace/internal/domain"
	"github.com/aldenhart/docspace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MemberHandler handles space membership and invitation endpoints
type MemberHandler struct {
	memberService     *service.MemberService
	invitationService *service.InvitationService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *service.MemberService, invitationService *service.InvitationService) *MemberHandler {
	return &MemberHandler{
		memberService:     memberService,
		invitationService: invitationService,
	}
}

// List handles listing a space's members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), userID, spaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, members)
}

// Update handles changing a member's role or permission overrides
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	targetUserID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user ID")
		return
	}

	var input domain.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	member, err := h.memberService.UpdateMember(r.Context(), userID, spaceID, targetUserID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, member)
}

// Remove handles removing a member from a space
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	targetUserID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user ID")
		return
	}

	if err := h.memberService.RemoveMember(r.Context(), userID, spaceID, targetUserID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Invite handles issuing a space invitation
func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	var input domain.InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	issued, err := h.invitationService.Invite(r.Context(), userID, spaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, issued)
}

// ListInvitations handles listing a space's invitations
func (h *MemberHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	invitations, err := h.invitationService.ListInvitations(r.Context(), userID, spaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, invitations)
}

// Accept handles redeeming an invitation token
func (h *MemberHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	member, err := h.invitationService.Accept(r.Context(), userID, input.Token)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, member)
}

// Decline handles declining a pending invitation to a space
func (h *MemberHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	if err := h.memberService.DeclineInvitation(r.Context(), userID, spaceID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}
