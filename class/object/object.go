// Package object is the lifecycle base shared by every container element:
// optional construct and destruct hooks plus a typed pool that runs them.
package object

// Constructor is implemented by types that need their fields put into a
// known state before first use.
type Constructor interface {
	Construct()
}

// Destructor is implemented by types that must verify or release state
// before their storage is reused. A non-nil error means the object is
// still referenced somewhere and must not be recycled.
type Destructor interface {
	Destruct() error
}

// Construct runs v's constructor hook, if it has one.
func Construct(v any) {
	if c, ok := v.(Constructor); ok {
		c.Construct()
	}
}

// Destruct runs v's destructor hook, if it has one.
func Destruct(v any) error {
	if d, ok := v.(Destructor); ok {
		return d.Destruct()
	}
	return nil
}
