package testutil

import (
	"net/http"

	id "presale/pkg/domain"
	"presale/pkg/requestcontext"
)

// AsRole returns req as seen by handlers after the session middleware resolved
// a user with the given role.
func AsRole(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, id.NewSessionID())
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// AsGuest marks req as anonymous.
func AsGuest(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithRole(req.Context(), id.RoleGuest))
}
