// Package auth answers role and permission questions for actors and
// issues the tokens that carry actor identity between requests. It owns
// user/role associations; the core only reads them.
package auth

import (
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// Permission grant names.
const (
	PermCreateArticleReport = "create article report"
	PermViewArticleReport   = "view article report"
)

// rolePermissions is the fixed grant set. The workflow is not a
// configurable permission graph; the three roles and their grants are
// part of the product.
var rolePermissions = map[string][]string{
	model.RoleAdministrator: {PermViewArticleReport},
	model.RoleEditor:        {PermViewArticleReport, PermCreateArticleReport},
	model.RoleExecutive:     {PermViewArticleReport},
}

// RoleOracle answers role membership and permission checks for an actor.
type RoleOracle interface {
	HasRole(userID, role string) (bool, error)
	HasAnyRole(userID string, roles ...string) (bool, error)
	HasPermission(userID, permission string) (bool, error)
	// PrimaryRole returns the actor's role name, or ErrNotFound for an
	// unknown actor.
	PrimaryRole(userID string) (string, error)
}

// DBRoleOracle reads role assignments from the user store, memoizing
// lookups in a short-lived cache so policy checks on hot paths do not
// hit the database per request.
type DBRoleOracle struct {
	db    *gorm.DB
	cache *PermissionCache
}

// NewDBRoleOracle creates the oracle. Role lookups are cached for ttl.
func NewDBRoleOracle(db *gorm.DB, ttl time.Duration) *DBRoleOracle {
	return &DBRoleOracle{
		db:    db,
		cache: NewPermissionCache(ttl),
	}
}

// PrimaryRole resolves the actor's role, consulting the cache first.
func (o *DBRoleOracle) PrimaryRole(userID string) (string, error) {
	if role, found := o.cache.GetRole("role:" + userID); found {
		return role, nil
	}

	var user model.User
	if err := o.db.Select("role").Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}

	o.cache.SetRole("role:"+userID, user.Role)
	return user.Role, nil
}

// HasRole reports whether the actor holds exactly the given role.
func (o *DBRoleOracle) HasRole(userID, role string) (bool, error) {
	actual, err := o.PrimaryRole(userID)
	if err != nil {
		if err == model.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return actual == role, nil
}

// HasAnyRole reports whether the actor holds any of the given roles.
func (o *DBRoleOracle) HasAnyRole(userID string, roles ...string) (bool, error) {
	actual, err := o.PrimaryRole(userID)
	if err != nil {
		if err == model.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	for _, r := range roles {
		if actual == r {
			return true, nil
		}
	}
	return false, nil
}

// HasPermission reports whether the actor's role carries the grant.
func (o *DBRoleOracle) HasPermission(userID, permission string) (bool, error) {
	role, err := o.PrimaryRole(userID)
	if err != nil {
		if err == model.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached role for an actor. Called after admin
// user updates so role changes take effect within a request or two.
func (o *DBRoleOracle) Invalidate(userID string) {
	o.cache.Delete("role:" + userID)
}
