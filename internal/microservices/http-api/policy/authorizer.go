/*
Package policy decides whether an actor may perform an action on a resource.

Each resource kind has an [Authorizer] backed by a casbin enforcer. A policy
row binds an [Action] to a [Rule], a casbin matcher expression over the
request:

	r.sub  the actor: UserID, Role, Authenticated
	r.obj  the resource: OwnerID, Present (false for list and create)
	r.act  the action name

Rules passed to AddPolicy together must all hold:

	reviews := policy.NewAuthorizer("review").
		AddPolicy(policy.ActionUpdate, policy.AuthenticatedOrReadOnly, policy.AuthorOrStaffOrReadOnly)

	if err := reviews.Enforce(actor, policy.ActionUpdate, review); err != nil {
		// 401, 403 or 405 depending on the error kind
	}

An action without a registered policy is not supported on that resource and
is reported as method-not-allowed.
*/
package policy

import (
	"fmt"
	"strings"

	"yamdb/internal/microservices/http-api/apperror"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = act, rule

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.act == p.act && eval(p.rule)
`

// Action is the verb class of a request.
type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Safe reports whether the action only reads.
func (a Action) Safe() bool {
	return a == ActionList || a == ActionRetrieve
}

// Method returns the HTTP method an action is served on.
func (a Action) Method() string {
	switch a {
	case ActionCreate:
		return "POST"
	case ActionUpdate:
		return "PATCH"
	case ActionDelete:
		return "DELETE"
	default:
		return "GET"
	}
}

// Owned is implemented by resources that have an author.
type Owned interface {
	OwnerID() string
}

// subject and object are what the matcher sees as r.sub and r.obj.
type subject struct {
	UserID        string
	Role          string
	Authenticated bool
}

type object struct {
	OwnerID string
	Present bool
}

// Authorizer holds the policies for one resource kind.
type Authorizer struct {
	resource string
	denial   *apperror.Error
	actions  map[Action]bool
	enforcer *casbin.SyncedEnforcer
}

func NewAuthorizer(resource string) *Authorizer {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		panic("policy: " + err.Error())
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		panic("policy: " + err.Error())
	}
	e.AddFunction("grants", grantsFunc)

	return &Authorizer{
		resource: resource,
		denial:   apperror.ErrPermission,
		actions:  map[Action]bool{},
		enforcer: e,
	}
}

// DenyWith sets the message returned to authenticated actors who are refused.
func (a *Authorizer) DenyWith(message string) *Authorizer {
	a.denial = apperror.Permission(message)
	return a
}

// AddPolicy registers the rules for an action. Registering an action twice panics.
func (a *Authorizer) AddPolicy(action Action, rules ...Rule) *Authorizer {
	if a.actions[action] {
		panic("policy: a policy already exists for " + a.resource + " " + string(action))
	}
	if len(rules) == 0 {
		panic("policy: empty policy for " + a.resource + " " + string(action))
	}
	if _, err := a.enforcer.AddPolicy(string(action), all(rules)); err != nil {
		panic("policy: " + err.Error())
	}
	a.actions[action] = true
	return a
}

// Allows reports whether a policy exists for the action.
func (a *Authorizer) Allows(action Action) bool {
	return a.actions[action]
}

// Enforce checks the actor against the action's rules. res is nil for
// collection-level actions (list, create).
func (a *Authorizer) Enforce(actor Actor, action Action, res Owned) error {
	if !a.actions[action] {
		return apperror.MethodNotAllowed(action.Method())
	}

	sub := subject{UserID: actor.UserID, Role: string(actor.Role), Authenticated: actor.IsAuthenticated()}
	obj := object{}
	if res != nil {
		obj = object{OwnerID: res.OwnerID(), Present: true}
	}

	ok, err := a.enforcer.Enforce(sub, obj, string(action))
	if err != nil {
		return fmt.Errorf("enforce %s %s: %w", a.resource, action, err)
	}
	switch {
	case ok:
		return nil
	case !actor.IsAuthenticated():
		return errAnonymous
	default:
		return a.denial
	}
}

func all(rules []Rule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = "(" + string(r) + ")"
	}
	return strings.Join(parts, " && ")
}

var capabilities = map[string]Capability{
	"moderate":   CapModerate,
	"administer": CapAdminister,
}

// grantsFunc exposes Role.Grants to matchers as grants(role, capability).
func grantsFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("grants: want 2 arguments, got %d", len(args))
	}
	role, _ := args[0].(string)
	name, _ := args[1].(string)
	c, ok := capabilities[name]
	if !ok {
		return false, fmt.Errorf("grants: unknown capability %q", name)
	}
	return Role(role).Grants(c), nil
}
