package main

import (
	"log"

	"github.com/clubops/ticket-desk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
