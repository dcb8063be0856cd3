// Package migrations holds the sql backend schema. Each file registers its
// migrations from init(); cmd/storefront imports the package for that.
package migrations
