package main

import (
	"flag"
	"fmt"
	"log"

	"tipnplay/internal/utils"
)

// Mints a widget API credential for the APP_API_KEY environment variable.
func main() {
	length := flag.Int("length", 32, "Random bytes in the credential")
	flag.Parse()

	key, err := utils.GenerateSecureToken(*length)
	if err != nil {
		log.Fatalf("Failed to generate credential: %v", err)
	}

	fmt.Printf("APP_API_KEY=%s\n", key)
}
