package resolver

import "context"

// Resolver computes a Plan for the modules participating on one platform.
//
// Resolution never constructs providers; it only validates the declared
// graph: totality, uniqueness, version compatibility and acyclicity.
type Resolver interface {
	Resolve(ctx context.Context, in Input) (Plan, error)
}
