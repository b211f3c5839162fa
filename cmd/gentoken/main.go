package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/auth"
)

// Mints a development JWT accepted by the local verifier. Production
// tokens are issued by the auth service.
func main() {
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret")
	userID := flag.String("user", "", "User id (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: secret is required (flag or JWT_SECRET)")
		os.Exit(1)
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid user id: %v\n", err)
			os.Exit(1)
		}
		id = parsed
	}

	token, err := auth.GenerateToken(*secret, id, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("USER_ID=%s\nTOKEN=%s\n", id, token)
}
