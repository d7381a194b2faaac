// Package config builds the domain configuration tree used to route log
// records.
//
// A configuration source is a hierarchical mapping. The reserved keys
// "level" and "output" set the severity ceiling and output kind of a node;
// every other key whose value is a mapping names a child domain segment.
// Keys may join several segments with a slash, which is the same as nesting
// them:
//
//	level: info
//	output: console
//	echo-server:
//	  level: debug
//	  client/#127.0.0.1:5000:
//	    level: trace
//	    output: void
//
// Nodes that do not set level or output inherit them from the nearest
// enclosing node when the tree is built, so resolution is a plain walk.
//
// # Resolution
//
// Resolve walks the slash-separated segments of a domain and stops at the
// first segment without a child. The returned Configuration carries the
// matched prefix and the settings of the deepest matched node. Resolution
// never fails: an unmatched domain resolves to the root.
//
// # Sources
//
// LoadFile reads YAML, JSON or TOML depending on the file extension. Load
// picks a path from the argument, the DOMAINLOG_CONFIG environment variable
// or a log.{yaml,yml,json,toml} file in the working directory, and falls back
// to Default when nothing is found.
package config
