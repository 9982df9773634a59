// Command mintoken mints a bearer token for local development and scripted
// testing, without going through /api/v1/auth/login.
//
// Usage:
//
//	JWT_SECRET=... go run ./cmd/mintoken [-user analyst] [-role user] [-ttl 8h]
//
// The signing key must match the server's JWT_SECRET or the token will be
// rejected.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"veridian/diligence-api/internal/auth"
)

func main() {
	user := flag.String("user", "dev", "username claim")
	role := flag.String("role", auth.RoleUser, "role claim (user or admin)")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET not set")
		os.Exit(1)
	}
	if *role != auth.RoleAdmin && *role != auth.RoleUser {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(secret, *ttl)
	raw, err := tokens.Generate(&auth.User{
		ID:       uuid.NewString(),
		Username: *user,
		Role:     *role,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "minting token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(raw)
}
