package object

import (
	"fmt"
	"sync"
)

// Pool is a typed object pool that runs lifecycle hooks.
// Get returns a constructed object; Put destructs before recycling.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	obj := p.p.Get().(*T)
	Construct(obj)
	return obj
}

// Put destructs v and returns it to the pool. An object whose destructor
// fails is dropped, never recycled, and the error is returned.
func (p *Pool[T]) Put(v *T) error {
	if err := Destruct(v); err != nil {
		return fmt.Errorf("object.Pool: refusing to recycle %T: %w", v, err)
	}
	p.p.Put(v)
	return nil
}
