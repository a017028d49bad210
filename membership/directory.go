package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"org-relay/domain"
	"org-relay/errors"
)

// Directory is a read-only organization membership listing loaded at startup.
// It stands in for the identity provider's membership API.
type Directory struct {
	members map[string][]domain.Member // organization -> members
}

func NewDirectory(members map[string][]domain.Member) *Directory {
	if members == nil {
		members = make(map[string][]domain.Member)
	}
	return &Directory{members: members}
}

// LoadFile reads a JSON document mapping organization ids to their members.
// An empty path yields an empty directory.
func LoadFile(path string) (*Directory, error) {
	if path == "" {
		return NewDirectory(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read membership file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var members map[string][]domain.Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMembership, err)
	}

	for org, list := range members {
		if org == "" {
			return nil, fmt.Errorf("%w: empty organization id", errors.ErrInvalidMembership)
		}
		for i, member := range list {
			if err := domain.ValidateMember(member); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", errors.ErrInvalidMembership, org, i, err)
			}
		}
	}
	return NewDirectory(members), nil
}

// ListMembers returns a copy of the organization's members; unknown organizations have none.
func (d *Directory) ListMembers(_ context.Context, organizationID string) ([]domain.Member, error) {
	return append([]domain.Member(nil), d.members[organizationID]...), nil
}
