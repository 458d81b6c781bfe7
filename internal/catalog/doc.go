// Package catalog loads the lesson and quiz catalog the recommendation
// generator ranks against. A built-in astronomy catalog is embedded; a YAML
// file with the same shape can replace it.
package catalog
