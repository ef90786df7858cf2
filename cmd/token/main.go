// Command token mints access tokens for local development against the
// configured JWT secret.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/fixtures"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token")
	email := flag.String("demo-email", "", "derive the user id from a demo directory email")
	role := flag.String("role", string(user.RoleEmployee), "role claim: admin, hr, manager or employee")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	id := *userID
	if *email != "" {
		id = fixtures.DemoUserID(*email)
	}
	if id == "" {
		fmt.Fprintln(os.Stderr, "one of -user or -demo-email is required")
		os.Exit(2)
	}

	r := user.Role(*role)
	if !r.IsValid() {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(2)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken(user.Principal{UserID: id, Role: r})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Printf("user_id:    %s\nrole:       %s\nexpires_at: %s\n\n%s\n",
		id, r, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339), token)
}
