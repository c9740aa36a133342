// Package repository is the registry a package manager uses to locate the
// sources it queries for installable packages.
//
// # Overview
//
// A [Manager] holds three things:
//
//   - an ordered pool of [Repository] values, queried in insertion order
//   - one distinguished local [WritableRepository] holding installed packages
//   - a type registry mapping type identifiers ("composer", "path") to the
//     [Class] used to construct repositories from raw [Config]
//
// The manager never resolves dependency graphs, never deduplicates results
// beyond concatenation, and never persists anything. Concrete repositories
// live in subpackages; [builtin.Register] binds the shipped types.
//
// # Querying
//
//	m := repository.NewManager(env)
//	m.AddRepository(installed)
//	m.AddRepository(packagist)
//
//	// First registered repository with a match wins.
//	pkg, err := m.FindPackage(ctx, "monolog/monolog", constraint.MustParse("^3.0"))
//
//	// Every match from every repository, in registration order.
//	all, err := m.FindPackages(ctx, "monolog/monolog", nil)
//
// # Constructing Repositories
//
// Registration records whether a class accepts the network-fetch client, so
// construction never inspects constructor shapes at runtime:
//
//	m.SetRepositoryClass("composer", repository.NewFetchingClass(composer.New))
//	m.SetRepositoryClass("package", repository.NewClass(memory.New))
//
//	r, err := m.CreateRepository(ctx, "composer", repository.Config{"url": "https://repo.packagist.org"})
//	m.AddRepository(r) // CreateRepository does not add to the pool
//
// An unknown type fails with [*UnregisteredTypeError] before anything is
// constructed.
//
// # Concurrency
//
// All Manager methods are safe for concurrent use. Queries iterate a
// snapshot of the pool taken under a read lock, so repositories added
// during a query are not visited by it.
//
// [builtin.Register]: github.com/matzehuels/repoman/pkg/repository/builtin.Register
package repository
