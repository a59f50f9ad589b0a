package main

import (
	"pomelo/internal/server"
	"pomelo/internal/util"
	"pomelo/pkg/logger"
	"pomelo/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
