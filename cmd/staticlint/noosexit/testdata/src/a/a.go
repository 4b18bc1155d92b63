package main

import (
	"log"
	"os"
	osalias "os"
)

func main() {
	defer func() {
		os.Exit(2)
	}()

	if len(os.Args) > 3 {
		log.Fatalf("too many arguments: %d", len(os.Args)) // want "avoid using log.Fatalf in main.main"
	}
	if len(os.Args) > 2 {
		osalias.Exit(1) // want "avoid using os.Exit in main.main"
	}

	os.Exit(0) // want "avoid using os.Exit in main.main"
}

func helper() {
	os.Exit(3)
}
