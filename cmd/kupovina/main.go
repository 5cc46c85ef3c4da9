package main

import (
	"log"

	"github.com/MrSnakeDoc/kupovina/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		log.Fatalf("❌ kupovina failed: %v", err)
	}
}
