// Package memory provides an in-process implementation of the progress store.
package memory
