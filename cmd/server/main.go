package main

import (
	"github.com/eleven-am/snapsolve/internal/bootstrap"
)

// @title SnapSolve Gateway API
// @version 1.0.0
// @description Screenshot and question answering gateway in front of an OpenAI-compatible provider

// @host localhost:3000
// @BasePath /

func main() {
	bootstrap.Run()
}
