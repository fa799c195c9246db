package main

import (
	"log"

	"github.com/MrSnakeDoc/favorg/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ favorg failed to start: %v", err)
	}
}
