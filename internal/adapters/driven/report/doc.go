// Package report renders finished runs for people and other tools.
//
// Writers implement driven.ReportWriter and are looked up by name through
// a Registry: text, csv, json, yaml and xlsx. The validation runner never
// calls them; the CLI and MCP adapters hand a RunResult to a writer once
// a run is terminal.
package report
