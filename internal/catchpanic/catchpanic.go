package catchpanic

import (
	"errors"
	"fmt"
	"runtime"

	"fknsrs.biz/p/viddown/internal/stackutil"
)

// PanicError wraps a recovered panic value along with the stack at the
// point the panic was caught.
type PanicError struct {
	Value interface{}
	Stack []runtime.Frame
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "catchpanic: " + err.Error()
	}

	return fmt.Sprintf("catchpanic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

func Catch(fn func()) (err error) {
	defer func() {
		if ex := recover(); ex != nil {
			err = &PanicError{Value: ex, Stack: stackutil.GetStack(32, 2)}
		}
	}()

	fn()

	return
}

func CatchErr0(fn func() error) error {
	var err error

	if err1 := Catch(func() { err = fn() }); err1 != nil {
		return err1
	}

	return err
}

func CatchErr1[T any](fn func() (T, error)) (T, error) {
	var res T
	var err error

	if err1 := Catch(func() { res, err = fn() }); err1 != nil {
		err = err1
	}

	return res, err
}

func IsPanic(err error) bool {
	var p *PanicError
	return errors.As(err, &p)
}
