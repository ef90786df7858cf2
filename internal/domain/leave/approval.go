package leave

import "github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"

// CanDecide reports whether a reviewer holding approverRole may approve or
// reject a request authored by someone holding requesterRole.
// isDirectManagerOf tells whether the reviewer is the requester's direct
// manager. Self-decision is not checked here.
func CanDecide(approverRole, requesterRole user.Role, isDirectManagerOf bool) bool {
	switch approverRole {
	case user.RoleAdmin:
		return true
	case user.RoleHR:
		// HR-authored requests go to admin only
		return requesterRole != user.RoleHR
	case user.RoleManager:
		return isDirectManagerOf && requesterRole == user.RoleEmployee
	default:
		return false
	}
}
