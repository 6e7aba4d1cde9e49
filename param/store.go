package param

import "context"

type Store interface {
	Get(ctx context.Context, name string) (*Parameter, error)
	// Put creates or replaces the named parameter.
	Put(ctx context.Context, p *Parameter) error
	List(ctx context.Context) ([]*Parameter, error)
}
