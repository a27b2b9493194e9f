package main

import (
	"log"

	"github.com/itsd-platform/helpdesk-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
