package auth

import "strings"

// Mode determines how a rule's role requirement is applied.
type Mode int

const (
	// ModeAuthenticated requires a decodable credential, no specific role.
	ModeAuthenticated Mode = iota
	// ModePermitAll lets the request through with or without a credential.
	ModePermitAll
	// ModeAnyRole requires at least one of the rule's roles.
	ModeAnyRole
)

// Role names used across the system.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// Rule maps (method, path pattern) to an authorization requirement.
// Method "*" matches every method. Patterns match whole path segments;
// a trailing "/**" matches any number of further segments.
type Rule struct {
	Method  string
	Pattern string
	Mode    Mode
	Roles   []string
}

// Policy is an ordered rule table, built once at startup and read-only
// afterwards. Evaluation is first-match-wins, so more specific rules must
// be declared before broader ones covering the same prefix.
type Policy struct {
	rules []Rule
}

// NewPolicy creates a policy from rules, keeping declaration order.
func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// Evaluate returns the mode and required roles for a request. When no
// rule matches, the default is "authenticated, no role required".
func (p *Policy) Evaluate(method, path string) (Mode, []string) {
	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		if !matchPattern(rule.Pattern, path) {
			continue
		}

		return rule.Mode, rule.Roles
	}

	return ModeAuthenticated, nil
}

// matchPattern matches path against pattern segment by segment. A final
// "**" segment consumes the rest of the path, including the empty rest.
func matchPattern(pattern, path string) bool {
	patternSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	for i, seg := range patternSegs {
		if seg == "**" {
			return true
		}
		if i >= len(pathSegs) || pathSegs[i] != seg {
			return false
		}
	}

	return len(pathSegs) == len(patternSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

// PermitAll builds a rule letting matching requests through unconditionally.
func PermitAll(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Mode: ModePermitAll}
}

// AnyRole builds a rule requiring at least one of roles.
func AnyRole(method, pattern string, roles ...string) Rule {
	return Rule{Method: method, Pattern: pattern, Mode: ModeAnyRole, Roles: roles}
}

// GatewayRules is the full edge rule table. The catalog and order services
// enforce the relevant subsets with the same evaluation code.
func GatewayRules() []Rule {
	rules := []Rule{
		PermitAll("*", "/health"),
		PermitAll("*", "/actuator/**"),
		PermitAll("*", "/swagger-ui/**"),
		PermitAll("*", "/v3/api-docs/**"),
		PermitAll("OPTIONS", "/**"),
	}
	rules = append(rules, CatalogRules()...)
	rules = append(rules, OrderRules()...)

	return rules
}

// CatalogRules guards the product endpoints.
func CatalogRules() []Rule {
	return []Rule{
		AnyRole("POST", "/api/produits", RoleAdmin),
		AnyRole("POST", "/api/produits/**", RoleAdmin),
		AnyRole("PUT", "/api/produits", RoleAdmin),
		AnyRole("PUT", "/api/produits/**", RoleAdmin),
		AnyRole("DELETE", "/api/produits", RoleAdmin),
		AnyRole("DELETE", "/api/produits/**", RoleAdmin),
		AnyRole("GET", "/api/produits", RoleAdmin, RoleClient),
		AnyRole("GET", "/api/produits/**", RoleAdmin, RoleClient),
		PermitAll("GET", "/catalog/**"),
	}
}

// OrderRules guards the order endpoints. The per-client listing is further
// restricted by an ownership check inside the order service, which the
// rule table cannot express.
func OrderRules() []Rule {
	return []Rule{
		AnyRole("POST", "/api/commandes", RoleClient),
		AnyRole("POST", "/api/commandes/**", RoleClient),
		AnyRole("GET", "/api/commandes/client/**", RoleClient),
		AnyRole("GET", "/api/commandes", RoleAdmin),
		AnyRole("GET", "/api/commandes/**", RoleAdmin, RoleClient),
	}
}
