// Package policy decides who may perform which operation on which resource.
//
// Decisions come in two tiers. CanAccessCollection is the coarse check run
// before any object is loaded (list, create, and the gate for everything under
// a collection). CanAccessObject is the fine check run once the target object
// exists and its author is known. An anonymous actor is represented by a nil
// *models.User and is never allowed a non-read operation.
package policy

import (
	"net/http"

	"yamdb/internal/models"
)

// Scope identifies the rule set guarding a collection.
type Scope int

const (
	// AdminOnly collections (user management) are open to admins and superusers.
	AdminOnly Scope = iota
	// AdminOrReadOnly collections (categories, genres, titles) are readable by
	// anyone and writable by admins.
	AdminOrReadOnly
	// AuthorOrStaffOrReadOnly collections (reviews, comments) are readable by
	// anyone; any authenticated actor may create, and objects are mutable by
	// their author, moderators and admins.
	AuthorOrStaffOrReadOnly
	// Authenticated collections (the caller's own profile) require a login.
	Authenticated
)

// IsReadMethod reports whether method never mutates state.
func IsReadMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanAccessCollection is the coarse, collection-scoped check.
func CanAccessCollection(scope Scope, actor *models.User, method string) bool {
	switch scope {
	case AdminOnly:
		return actor != nil && (actor.IsSuperuser || actor.IsAdmin())
	case AdminOrReadOnly:
		return IsReadMethod(method) || (actor != nil && actor.IsAdmin())
	case AuthorOrStaffOrReadOnly:
		return IsReadMethod(method) || actor != nil
	case Authenticated:
		return actor != nil
	}
	return false
}

// CanAccessObject is the fine-grained check for authored objects.
func CanAccessObject(actor *models.User, method string, authorID uint) bool {
	if IsReadMethod(method) {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.ID == authorID ||
		actor.IsAdmin() ||
		actor.IsModerator() ||
		actor.IsSuperuser
}
