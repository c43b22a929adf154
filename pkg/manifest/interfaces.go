// Package manifest locates project manifests and resolves their dependency
// closure through the external package manager.
package manifest

import "context"

//go:generate mockgen -destination=./mocks/resolver_mock.go -package=mocks github.com/glorpus-work/cratecache/pkg/manifest Resolver

// Resolver returns the manifest paths of every package in the full dependency
// closure of a project, with all features enabled.
type Resolver interface {
	DependencyManifests(ctx context.Context, manifestPath string) ([]string, error)
}
