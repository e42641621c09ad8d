// Package definitions loads screens, sections, fields and controls from YAML
// or JSON documents and registers them with a registry.
//
// A document targets one object type and, optionally, one subtype:
//
//	objectType: post
//	subtype: page
//	screens:
//	  - id: details
//	    title: Page details
//	sections:
//	  - id: main
//	    parent: details
//	fields:
//	  - id: subtitle
//	    section: main
//	    control:
//	      type: text
//
// Every entry is the registration args map of its kind plus an "id" key.
// Watcher reloads a directory of documents whenever it changes.
package definitions
