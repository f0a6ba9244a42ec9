package main

import (
	"mailmerge/cmd/handlers"
	"mailmerge/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
