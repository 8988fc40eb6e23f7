package policy

import "yamdb/internal/microservices/http-api/apperror"

var errAnonymous = apperror.NotAuthenticated("authentication credentials were not provided")

// Rule is a casbin matcher expression evaluated for one policy row.
type Rule string

const (
	// Authenticated requires a logged-in actor for every action.
	Authenticated Rule = "r.sub.Authenticated"

	// ReadOnly admits list and retrieve only.
	ReadOnly Rule = "r.act in ('list', 'retrieve')"

	// AdminOnly requires the admin role for every action, reads included.
	AdminOnly Rule = "r.sub.Authenticated && grants(r.sub.Role, 'administer')"

	AuthenticatedOrReadOnly = ReadOnly + " || " + Authenticated

	AdminOrReadOnly = ReadOnly + " || (" + AdminOnly + ")"

	// AuthorOrStaffOrReadOnly allows writes on an existing resource to its
	// author and to moderators and admins. Collection-level actions pass.
	AuthorOrStaffOrReadOnly = ReadOnly + " || !r.obj.Present || (r.sub.Authenticated && " +
		"(r.obj.OwnerID == r.sub.UserID || grants(r.sub.Role, 'moderate')))"
)

// Per-resource authorizers. Update means PATCH; no resource accepts PUT.
var (
	Categories = NewAuthorizer("category").DenyWith("admin role required").
		AddPolicy(ActionList, AdminOrReadOnly).
		AddPolicy(ActionCreate, AdminOrReadOnly).
		AddPolicy(ActionDelete, AdminOrReadOnly)

	Genres = NewAuthorizer("genre").DenyWith("admin role required").
		AddPolicy(ActionList, AdminOrReadOnly).
		AddPolicy(ActionCreate, AdminOrReadOnly).
		AddPolicy(ActionDelete, AdminOrReadOnly)

	Titles = everyAction(NewAuthorizer("title").DenyWith("admin role required"), AdminOrReadOnly)

	Reviews = everyAction(NewAuthorizer("review").DenyWith("only the author, a moderator or an admin may change this"),
		AuthenticatedOrReadOnly, AuthorOrStaffOrReadOnly)

	Comments = everyAction(NewAuthorizer("comment").DenyWith("only the author, a moderator or an admin may change this"),
		AuthenticatedOrReadOnly, AuthorOrStaffOrReadOnly)

	Users = everyAction(NewAuthorizer("user").DenyWith("admin role required"), AdminOnly)

	// Me is the self-profile. It cannot be listed, created or deleted.
	Me = NewAuthorizer("me").
		AddPolicy(ActionRetrieve, Authenticated).
		AddPolicy(ActionUpdate, Authenticated)
)

func everyAction(a *Authorizer, rules ...Rule) *Authorizer {
	for _, action := range []Action{ActionList, ActionRetrieve, ActionCreate, ActionUpdate, ActionDelete} {
		a.AddPolicy(action, rules...)
	}
	return a
}
