// Package driving declares the operations the adapters in
// internal/adapters/driving invoke. internal/core/services implements them.
package driving
