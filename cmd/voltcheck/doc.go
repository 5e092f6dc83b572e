// Package main hosts the voltcheck CLI entrypoint and command graph.
//
// The Cobra-based command tree covers synchronous image and video analysis,
// code question answering, record queue maintenance, the background daemon,
// and configuration scaffolding. It centralizes configuration resolution and
// pipeline wiring so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
