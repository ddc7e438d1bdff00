package cli

import "io"

// ShowHelp prints usage information for gradectl.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `gradectl
========

Runs one grade workflow command against the grades backend and prints the
result as a table. Settings come from GRADEBASE_* variables or the file named
by GRADEBASE_CONFIG; flags override them.

Usage:
  gradectl [global options] <command> [command options] [args]

Global options:
  -url string        Base URL of the grades backend
  -token string      Bearer token for the backend
  -timeout duration  Per-request timeout
  -verbose           Log debug output to stderr

Commands:
  sections                       List sections ordered by course, then name
  students <section-id>          List the roster of one section
  search    [filter]             Fetch, reconcile and print grades
  export    [filter] <format>    Save an export (csv, xlsx or pdf) to the export directory
  projection [filter]            Print grades with projected final grades
  risk       [filter]            Print grades with risk classifications
  login -username u -password p  Print an access token for -token

Filter options:
  -course string      Course code
  -section-id int     Section id
  -section string     Section name
  -student string     Student code
  -page int           Single page to fetch (0 follows every page)

Examples:
  gradectl sections
  gradectl search -section-id 4
  gradectl risk -course MAT101 -section A
  gradectl export -section-id 4 xlsx
`)
}
