package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var Version = "dev"

func main() {
	// QRIS_* 环境变量可来自 .env
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
