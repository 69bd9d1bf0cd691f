package main

import (
	"github.com/eleven-am/snapsolve/internal/bootstrap/overlay"
	"github.com/eleven-am/snapsolve/internal/cmd"
)

func main() {
	cmd.OverlayRunner = overlay.Run
	cmd.Execute()
}
