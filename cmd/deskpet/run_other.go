//go:build !linux

package main

import (
	"context"
	"errors"
)

func runPet(context.Context) error {
	return errors.New("deskpet run needs an X11 desktop and is only supported on Linux")
}
