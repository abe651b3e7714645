// Package routes parses `rails routes` listing output into structured
// records and matches controller actions against them.
package routes

import "strings"

// Route is one parsed line of routing output.
type Route struct {
	Verb           string // HTTP method, "" when the listing omitted it
	URL            string // named route helper prefix, e.g. "users_path"
	Pattern        string // raw URL pattern, e.g. "/users(.:format)"
	RefinedPattern string // Pattern with the optional-format suffix stripped
	Controller     string
	Action         string
}

const formatSuffix = "(.:format)"

// Parse converts a raw routing listing into Routes, preserving listing order.
//
// Each line is tokenized on runs of whitespace. A line with a verb yields
// 4 fields [verb, url, pattern, controller#action]; a continuation line
// (the listing omits the verb when identical to the row above) yields
// 3 fields [url, pattern, controller#action] and the verb is forced to "".
// Any other field count — headers, blanks, malformed rows — is skipped.
func Parse(raw string) []Route {
	var result []Route
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)

		var r Route
		switch len(fields) {
		case 4:
			r = Route{Verb: fields[0], URL: fields[1], Pattern: fields[2]}
			r.Controller, r.Action = splitTarget(fields[3])
		case 3:
			r = Route{URL: fields[0], Pattern: fields[1]}
			r.Controller, r.Action = splitTarget(fields[2])
		default:
			continue
		}
		if r.Controller == "" || r.Action == "" {
			continue
		}
		r.RefinedPattern = strings.TrimSuffix(r.Pattern, formatSuffix)
		result = append(result, r)
	}
	return result
}

// splitTarget splits a "controller#action" pair once on '#'.
// Returns empty strings when the separator is absent.
func splitTarget(target string) (controller, action string) {
	parts := strings.SplitN(target, "#", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Match returns the first Route whose controller and action case-insensitively
// equal the inputs. Absence is a normal outcome, signalled by ok=false.
func Match(rts []Route, controller, action string) (Route, bool) {
	for _, r := range rts {
		if strings.EqualFold(r.Controller, controller) && strings.EqualFold(r.Action, action) {
			return r, true
		}
	}
	return Route{}, false
}
