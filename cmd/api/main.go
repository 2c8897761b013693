package main

import (
	"context"
	"log"

	"github.com/Apurer/go-rental-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("rentals API exited: %v", err)
	}
}
