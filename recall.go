// Package recall provides a local page-capture and recall agent. It watches
// a Chrome browser over the DevTools protocol, submits every page the user
// finishes loading in the foreground tab to a local indexing service, and
// answers free-text queries by opening the best-matching page and
// highlighting the matching passage.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, http/, sqlite/).
package recall
