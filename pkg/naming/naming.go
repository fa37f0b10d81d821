// Package naming converts declared Go-style identifiers into the stable
// lowercase tokens used for workflow registration and output table names.
package naming

import (
	"regexp"
	"strings"
)

var (
	// splits a run of capitals before its last capital when followed by
	// lowercase, so acronyms stay intact: HTTPServer -> HTTP_Server.
	acronymBoundary = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	// splits every lowercase/digit-to-uppercase transition.
	caseBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// DeriveName converts a CamelCase identifier to its snake_case token.
// Derivation is deterministic and acronym-aware:
//
//	DeriveName("HTTPServer")   = "http_server"
//	DeriveName("XMLParser")    = "xml_parser"
//	DeriveName("Workflow2024") = "workflow2024"
func DeriveName(identifier string) string {
	s := acronymBoundary.ReplaceAllString(identifier, "${1}_${2}")
	s = caseBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
