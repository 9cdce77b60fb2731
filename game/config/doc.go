// Package config loads and caches board configurations for Monster Duel.
//
// Configurations are JSON files in a directory, each describing a board
// (rows, columns, monsters per player, and the ordered monster-type cycle).
// The Manager caches parsed configurations and falls back to the built-in
// default when the directory has no usable files.
package config
