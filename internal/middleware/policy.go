package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/models"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type permission struct {
	resource string
	actions  []string
	roles    []string
}

var (
	allRoles = []string{models.RoleAdmin, models.RoleDispatcher, models.RoleDriver}
	staff    = []string{models.RoleAdmin, models.RoleDispatcher}
	admins   = []string{models.RoleAdmin}
)

// permissions is the whole access table. Anything not listed is denied.
var permissions = []permission{
	{"ticket", []string{"read", "transition"}, allRoles},
	{"ticket", []string{"create", "edit", "delete"}, staff},
	{"treatment", []string{"record"}, allRoles},
	{"material", []string{"read"}, allRoles},
	{"material", []string{"usage", "restock", "edit"}, staff},
	{"truck", []string{"read"}, allRoles},
	{"truck", []string{"create", "update", "delete"}, staff},
	{"user", []string{"read", "create", "update", "delete"}, admins},
	{"weather", []string{"read"}, allRoles},
	{"dashboard", []string{"statewide"}, admins},
	{"dashboard", []string{"tmc"}, allRoles},
	{"preference", []string{"read", "update"}, allRoles},
}

var enforcer = mustEnforcer()

func mustEnforcer() *casbin.SyncedEnforcer {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		panic(err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		panic(err)
	}

	var rules [][]string
	for _, p := range permissions {
		for _, role := range p.roles {
			for _, act := range p.actions {
				rules = append(rules, []string{role, p.resource, act})
			}
		}
	}
	if _, err := e.AddPolicies(rules); err != nil {
		panic(err)
	}
	return e
}

// Allowed reports whether role may perform action on resource.
func Allowed(role, resource, action string) bool {
	ok, err := enforcer.Enforce(role, resource, action)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"role":     role,
			"resource": resource,
			"action":   action,
		}).Error("Policy check failed")
		return false
	}
	return ok
}

// Authorize must run after RequireAuth.
func Authorize(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !Allowed(actor.Role, resource, action) {
			logrus.WithFields(logrus.Fields{
				"user_id":  actor.ID,
				"role":     actor.Role,
				"resource": resource,
				"action":   action,
			}).Warn("Access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
