// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration with a SCHOLARSYNC_* environment overlay
//   - PromptStore: user-editable prompt templates
package file
