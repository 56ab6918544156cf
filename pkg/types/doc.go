// Package types defines the Console and Table interfaces, the storage Backend
// contract, entity types, and the standard errors shared by every backstage
// component.
package types
