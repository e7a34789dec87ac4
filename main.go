package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"

	"papertrader/cmd/executor"
	"papertrader/src/database"
)

var APP_NAME = os.Getenv("APP_NAME")

func main() {
	_ = godotenv.Load()
	config := database.GetConfig()
	executor.SetupLogger(config.LogLevel, config.LogFormat)
	defer handlePanic()

	if err := (&executor.Executor{}).Start(); err != nil {
		logger.WithError(err).Fatal("Executor failed")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}
