package service

// Authorizer is a static allow-list gate. The list is fixed at process start;
// finer-grained permissions are left to the cluster's own RBAC, whose denials
// surface as forbidden results at dispatch time.
type Authorizer struct {
	users map[string]struct{}
}

func NewAuthorizer(userIDs []string) *Authorizer {
	users := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			users[id] = struct{}{}
		}
	}
	return &Authorizer{users: users}
}

// Authorize reports whether the user may issue commands. Pure predicate, no
// side effects.
func (a *Authorizer) Authorize(userID string) bool {
	_, ok := a.users[userID]
	return ok
}
