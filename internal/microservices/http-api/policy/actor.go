package policy

// Actor is whoever is making the request. The zero value is anonymous.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// Anonymous returns the actor used for requests without credentials.
func Anonymous() Actor {
	return Actor{}
}

// AuthenticatedAs returns an actor for a known user.
func AuthenticatedAs(userID, username string, role Role) Actor {
	return Actor{UserID: userID, Username: username, Role: role}
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

// Can reports whether the actor holds the capability. Anonymous actors hold none.
func (a Actor) Can(c Capability) bool {
	return a.IsAuthenticated() && a.Role.Grants(c)
}

// Owns reports whether the resource belongs to the actor.
func (a Actor) Owns(res Owned) bool {
	return a.IsAuthenticated() && res != nil && res.OwnerID() == a.UserID
}
