// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - IngestService: load, split and index a batch of files
//   - IndexService: embed chunks into a vector store and query it
//   - AnswerService: retrieve context and ask the model
//   - SettingsService: typed view over the config store
//
// Services never import adapters; main wires them together.
package services
