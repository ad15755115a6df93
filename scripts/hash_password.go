package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/alumnihub/alumni-api/logging"
)

// Generates a bcrypt hash and the mongo command that promotes a user to admin.
// Usage: go run scripts/hash_password.go <email> <password>
func main() {
	log := logging.New()
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/hash_password.go <email> <password>")
		os.Exit(1)
	}

	email, password := os.Args[1], os.Args[2]

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalw("failed to generate hash", "error", err)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo create or promote the admin in MongoDB, run:\n")
	fmt.Printf("db.users.updateOne(\n")
	fmt.Printf("  {\"email\": \"%s\"},\n", email)
	fmt.Printf("  {$set: {\"password\": \"%s\", \"type\": \"admin\", \"isDeleted\": false}},\n", string(hashedPassword))
	fmt.Printf("  {upsert: true}\n")
	fmt.Printf(")\n")
}
