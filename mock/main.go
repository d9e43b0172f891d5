package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
)

func main() {
	// Default port
	port := "8081"

	// Check if port is provided as command line argument
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	http.HandleFunc("/partner/products/search", ViatorProductSearchHandler)
	http.HandleFunc("/partner/taxonomy/destinations", ViatorDestinationsHandler)

	addr := fmt.Sprintf(":%s", port)
	fmt.Printf("Viator Mock Server running on port %s...\n", port)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal(err)
	}
}
