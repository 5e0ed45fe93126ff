package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RouteClass string

const (
	AuthLogin          RouteClass = "auth_login"
	AuthRegister       RouteClass = "auth_register"
	AuthForgotPassword RouteClass = "auth_forgot_password"
	AuthResetPassword  RouteClass = "auth_reset_password"
	APIDefault         RouteClass = "api_default"
	APIHeavy           RouteClass = "api_heavy"
	APICreate          RouteClass = "api_create"
	APIUpdate          RouteClass = "api_update"
	APIDelete          RouteClass = "api_delete"
)

// Classes lists every known route class in a stable order.
func Classes() []RouteClass {
	return []RouteClass{
		AuthLogin,
		AuthRegister,
		AuthForgotPassword,
		AuthResetPassword,
		APIDefault,
		APIHeavy,
		APICreate,
		APIUpdate,
		APIDelete,
	}
}

// Rule admits at most Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

func (r Rule) valid() bool {
	return r.Limit > 0 && r.Window > 0
}

// DefaultRules keeps credential-guessing surfaces far tighter than general
// API traffic.
func DefaultRules() map[RouteClass]Rule {
	return map[RouteClass]Rule{
		AuthLogin:          {Limit: 5, Window: time.Minute},
		AuthRegister:       {Limit: 10, Window: time.Hour},
		AuthForgotPassword: {Limit: 3, Window: time.Hour},
		AuthResetPassword:  {Limit: 5, Window: time.Hour},
		APIDefault:         {Limit: 100, Window: time.Minute},
		APIHeavy:           {Limit: 30, Window: time.Minute},
		APICreate:          {Limit: 20, Window: time.Minute},
		APIUpdate:          {Limit: 50, Window: time.Minute},
		APIDelete:          {Limit: 10, Window: time.Minute},
	}
}

var windowUnits = map[string]time.Duration{
	"s":      time.Second,
	"sec":    time.Second,
	"second": time.Second,
	"m":      time.Minute,
	"min":    time.Minute,
	"minute": time.Minute,
	"h":      time.Hour,
	"hour":   time.Hour,
	"d":      24 * time.Hour,
	"day":    24 * time.Hour,
}

// ParseRule reads "N/unit" (second, minute, hour, day) or "N/<duration>" such
// as "100/30s".
func ParseRule(raw string) (Rule, error) {
	count, window, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Rule{}, fmt.Errorf("ratelimit: rule %q must look like N/unit", raw)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || limit < 1 {
		return Rule{}, fmt.Errorf("ratelimit: rule %q has an invalid count", raw)
	}
	window = strings.ToLower(strings.TrimSpace(window))
	unit, ok := windowUnits[window]
	if !ok && len(window) > 2 {
		// plural unit words only; "ms" must not become "m"
		unit, ok = windowUnits[strings.TrimSuffix(window, "s")]
	}
	if !ok {
		unit, err = time.ParseDuration(window)
		if err != nil || unit <= 0 {
			return Rule{}, fmt.Errorf("ratelimit: rule %q has an invalid window", raw)
		}
	}
	return Rule{Limit: limit, Window: unit}, nil
}
