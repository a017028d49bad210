package httpapi

import (
	"net/http"

	"org-relay/domain"

	"github.com/samber/lo"
)

// UserStatus is one row of the membership listing.
type UserStatus struct {
	FirstName string                `json:"firstName"`
	LastName  string                `json:"lastName"`
	Email     string                `json:"email"`
	UserID    string                `json:"userId"`
	Status    domain.PresenceStatus `json:"status"`
}

// handleUsers lists the caller's organization members and marks who is connected.
// Personal accounts have no organization and get an empty list.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	identity, err := s.gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}

	if !identity.HasOrganization() {
		writeJSON(w, http.StatusOK, []UserStatus{})
		return
	}

	members, err := s.directory.ListMembers(r.Context(), identity.OrganizationID)
	if err != nil {
		s.log.Error("Failed to list organization members",
			"org_id", identity.OrganizationID,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server error."})
		return
	}

	online := lo.SliceToMap(s.relay.Online(), func(conn *domain.Connection) (string, struct{}) {
		return conn.Identity.SubjectID, struct{}{}
	})

	writeJSON(w, http.StatusOK, lo.Map(members, func(member domain.Member, _ int) UserStatus {
		status := domain.Offline
		if _, ok := online[member.UserID]; ok {
			status = domain.Online
		}
		return UserStatus{
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Email:     member.Email,
			UserID:    member.UserID,
			Status:    status,
		}
	}))
}
