// Command genhash produces the two hashes the simulator's configuration
// needs: a bcrypt hash for auth.client_secret_hash, and the uppercase
// SHA-256 hash value an account number maps to.
package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	secret := flag.String("secret", "", "client secret to bcrypt-hash")
	account := flag.String("account", "", "account number to SHA-256 hash")
	flag.Parse()

	switch {
	case *secret != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(*secret), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(hash))
	case *account != "":
		fmt.Printf("%X\n", sha256.Sum256([]byte(*account)))
	default:
		log.Fatal("usage: genhash -secret <client secret> | -account <account number>")
	}
}
