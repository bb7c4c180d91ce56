package auth

import "strings"

// Outcome is what the gate tells the transport layer to do
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// State labels how a request was classified
type State string

const (
	StateUnverified             State = "unverified"
	StateInvalid                State = "invalid"
	StateVerifiedAdmin          State = "verified_admin"
	StateVerifiedCashierAllowed State = "verified_cashier_allowed"
	StateVerifiedCashierDenied  State = "verified_cashier_denied"
	StateVerifiedNoRole         State = "verified_no_role"
)

// Decision is the result of Decide
type Decision struct {
	Outcome  Outcome
	Location string
	State    State
}

// Policy is the fixed routing table the gate decides against
type Policy struct {
	LoginPath         string
	PublicPaths       []string // sign-in pages; authenticated users are sent away
	ProtectedPrefixes []string // back office; needs a role
	MemberPrefixes    []string // any authenticated user
	CashierAllowed    []string
	CashierLanding    string
	AdminLanding      string
	MemberLanding     string
}

// DefaultPolicy is the gym back office routing table
func DefaultPolicy() Policy {
	return Policy{
		LoginPath:         "/login",
		PublicPaths:       []string{"/login", "/register"},
		ProtectedPrefixes: []string{"/admin"},
		MemberPrefixes:    []string{"/api/account"},
		CashierAllowed: []string{
			"/admin/active-customer",
			"/admin/inactive-customer",
			"/admin/payments",
			"/admin/users",
		},
		CashierLanding: "/admin/active-customer",
		AdminLanding:   "/admin",
		MemberLanding:  "/",
	}
}

// Decide classifies a request. It is a pure function of its inputs;
// claims is nil for anonymous or invalid sessions.
func Decide(path string, claims *Claims, policy Policy) Decision {
	state := classify(path, claims, policy)

	if matchesExact(path, policy.PublicPaths) {
		if claims == nil {
			return Decision{Outcome: Allow, State: state}
		}
		return Decision{Outcome: Redirect, Location: policy.Landing(claims.Role), State: state}
	}

	protected := hasPrefix(path, policy.ProtectedPrefixes)
	member := hasPrefix(path, policy.MemberPrefixes)
	if !protected && !member {
		return Decision{Outcome: Allow, State: state}
	}

	if claims == nil {
		return Decision{Outcome: Redirect, Location: policy.LoginPath, State: state}
	}

	if member {
		return Decision{Outcome: Allow, State: state}
	}

	switch claims.Role {
	case RoleAdmin:
		return Decision{Outcome: Allow, State: state}
	case RoleCashier:
		if hasPrefix(path, policy.CashierAllowed) {
			return Decision{Outcome: Allow, State: state}
		}
		return Decision{Outcome: Redirect, Location: policy.CashierLanding, State: state}
	}
	return Decision{Outcome: Forbidden, State: state}
}

func classify(path string, claims *Claims, policy Policy) State {
	if claims == nil {
		return StateUnverified
	}
	switch claims.Role {
	case RoleAdmin:
		return StateVerifiedAdmin
	case RoleCashier:
		if hasPrefix(path, policy.CashierAllowed) {
			return StateVerifiedCashierAllowed
		}
		return StateVerifiedCashierDenied
	}
	return StateVerifiedNoRole
}

// Landing is where a user with role is sent after sign-in
func (p Policy) Landing(role string) string {
	switch role {
	case RoleAdmin:
		return p.AdminLanding
	case RoleCashier:
		return p.CashierLanding
	}
	return p.MemberLanding
}

func matchesExact(path string, paths []string) bool {
	path = trimSlash(path)
	for _, p := range paths {
		if path == trimSlash(p) {
			return true
		}
	}
	return false
}

// hasPrefix reports whether path equals a prefix or lies below it
func hasPrefix(path string, prefixes []string) bool {
	path = trimSlash(path)
	for _, prefix := range prefixes {
		prefix = trimSlash(prefix)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}
