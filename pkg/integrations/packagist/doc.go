// Package packagist fetches version metadata from Composer repositories
// that serve the Packagist p2 API.
//
// # Overview
//
// [Client.Versions] downloads {baseURL}/p2/{vendor}/{name}.json and returns
// every version it lists as [repository.Package] values, newest first, in
// the order the server sent them. No constraint filtering happens here;
// repositories apply constraints to the result.
//
//	base := integrations.NewClient(c, "http", 24*time.Hour, nil)
//	client := packagist.NewClient(base, packagist.DefaultURL)
//
//	versions, err := client.Versions(ctx, "monolog/monolog", false)
//
// # Minified Metadata
//
// p2 responses marked "minified": "composer/2.0" only list the fields that
// changed since the previous version. The client expands them: each entry
// inherits every field of the entry before it, and the value "__unset"
// removes an inherited field.
//
// # Dev Versions
//
// Branch versions live in a separate {name}~dev.json document. Enable them
// with [WithDevVersions]; a missing dev document is not an error.
//
// [repository.Package]: github.com/matzehuels/repoman/pkg/repository.Package
package packagist
