package iam

import (
	"reflect"
	"sort"

	"github.com/ryanuber/go-glob"
)

// MatchStringLike evaluates a StringLike pattern where * matches any
// sequence of characters, including none.
func MatchStringLike(pattern, value string) bool {
	return glob.Glob(pattern, value)
}

// AllowsWebIdentity reports whether doc admits a web-identity token from
// provider carrying claims. Claims are keyed like condition keys
// ("<issuer>:sub"). Statements are ORed; every condition within a statement
// must hold. Unknown operators never match.
func (d *Document) AllowsWebIdentity(provider any, claims map[string]string) bool {
	for _, s := range d.Statement {
		if !s.isWebIdentity() || !reflect.DeepEqual(s.Principal.Federated, provider) {
			continue
		}
		if s.Condition.holds(claims) {
			return true
		}
	}
	return false
}

func (c Condition) holds(claims map[string]string) bool {
	for op, entries := range c {
		for key, expected := range entries {
			actual, ok := claims[key]
			if !ok {
				return false
			}
			switch op {
			case StringEquals:
				if actual != expected {
					return false
				}
			case StringLike:
				if !MatchStringLike(expected, actual) {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
