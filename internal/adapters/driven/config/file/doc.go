// Package file provides file-backed configuration adapters.
//
// ConfigStore reads and writes ~/.docqa/config.toml. Nested TOML tables are
// flattened to dot-notation keys on load and expanded back to tables on save.
//
// PromptStore serves prompt templates from ~/.docqa/prompts, writing the
// built-in defaults there on first use so they can be edited.
package file
