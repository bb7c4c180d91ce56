package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/config"
)

// mint_session prints a keyring session token. POST it as idToken to
// /auth/login, or set it directly as the session cookie.
func main() {
	uid := flag.String("uid", "", "User id (mandatory)")
	email := flag.String("email", "", "Email")
	name := flag.String("name", "", "Display name")
	role := flag.String("role", "", "Role: admin, cashier or empty for a member")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")

	flag.Parse()

	if *uid == "" {
		fmt.Println("Usage: mint_session -uid <uid> [-role admin|cashier] [-email <email>] [-ttl 24h]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *role != "" && *role != auth.RoleAdmin && *role != auth.RoleCashier {
		log.Fatalf("Invalid role %q", *role)
	}

	cfg := config.Load()
	keys := auth.ParseKeyList(cfg.SessionSigningKeys)
	if len(keys) == 0 {
		log.Fatal("SESSION_SIGNING_KEYS is not set")
	}
	keyring, err := auth.NewKeyringVerifier(keys...)
	if err != nil {
		log.Fatal(err)
	}

	token, err := keyring.Sign(auth.Claims{UID: *uid, Email: *email, Name: *name, Role: *role}, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign session: %v", err)
	}
	fmt.Println(token)
}
