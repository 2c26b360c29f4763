package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"floorplan-inventory/internal/auth"
	"floorplan-inventory/internal/config"
)

func main() {
	var (
		subject    = flag.String("sub", "editor", "Token subject")
		name       = flag.String("name", "", "Display name")
		roles      = flag.String("roles", auth.RoleEditor, "Comma-separated list of roles")
		expiryMins = flag.Int("expiry", 1440, "Token expiry in minutes (default: 24 hours)")
		secret     = flag.String("secret", "", "JWT secret (overrides JWT_SECRET env var)")
		issuer     = flag.String("issuer", "", "JWT issuer (overrides JWT_ISS env var)")
		audience   = flag.String("audience", "", "JWT audience (overrides JWT_AUD env var)")
	)
	flag.Parse()

	cfg := config.Load()
	if *secret != "" {
		cfg.JWTSecret = *secret
	}
	if *issuer != "" {
		cfg.JWTIssuer = *issuer
	}
	if *audience != "" {
		cfg.JWTAudience = *audience
	}

	var roleList []string
	for _, role := range strings.Split(*roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roleList = append(roleList, role)
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, time.Duration(*expiryMins)*time.Minute)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatalf("Invalid JWT configuration: %v", err)
	}

	token, err := jwtManager.GenerateToken(*subject, *name, roleList)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("Subject: %s\n", *subject)
	fmt.Printf("Roles: %s\n", strings.Join(roleList, ", "))
	fmt.Printf("Expiry: %d minutes\n", *expiryMins)
	fmt.Printf("Issuer: %s\n", cfg.JWTIssuer)
	fmt.Printf("Audience: %s\n", cfg.JWTAudience)
	fmt.Printf("\nToken:\n%s\n\n", token)

	fmt.Printf("Usage example:\n")
	fmt.Printf("curl -X POST -H \"Authorization: Bearer %s\" http://localhost:8080/reload\n", token)
}
