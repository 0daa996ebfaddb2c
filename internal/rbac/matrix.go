// Package rbac holds the role-matrix grant logic and the seeded defaults
// for roles and the named permission catalog.
package rbac

import (
	"fmt"
	"sort"
	"strconv"
)

// Matrix actions a role may be granted on users of a target role.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var validActions = map[string]bool{
	ActionCreate: true,
	ActionRead:   true,
	ActionUpdate: true,
	ActionDelete: true,
}

// ValidateActions rejects any action outside the create/read/update/delete set.
func ValidateActions(actions []string) error {
	for _, a := range actions {
		if !validActions[a] {
			return fmt.Errorf("invalid permission: %s", a)
		}
	}
	return nil
}

// CanAct reports whether grants allow the action on users of the target role.
// grants is keyed by target role id in decimal form.
func CanAct(grants map[string][]string, targetRoleID int64, action string) bool {
	for _, a := range grants[strconv.FormatInt(targetRoleID, 10)] {
		if a == action {
			return true
		}
	}
	return false
}

// HasAnyGrant reports whether grants allow the action on at least one target
// role. Used for the coarse endpoint-level guard.
func HasAnyGrant(grants map[string][]string, action string) bool {
	for _, actions := range grants {
		for _, a := range actions {
			if a == action {
				return true
			}
		}
	}
	return false
}

// GrantedRoleIDs returns the target role ids on which grants allow the
// action, sorted ascending. Malformed keys are skipped.
func GrantedRoleIDs(grants map[string][]string, action string) []int64 {
	ids := make([]int64, 0, len(grants))
	for key, actions := range grants {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		for _, a := range actions {
			if a == action {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
