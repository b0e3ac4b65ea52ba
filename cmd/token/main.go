// Command token mints an access token for local development and tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/auth"
)

func main() {
	secret := flag.String("s", "secretKey", "HMAC secret shared with the server")
	user := flag.String("user", "", "owner id to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	flag.Parse()

	if *user == "" {
		log.Fatal("-user is required")
	}

	tok, err := auth.GenerateToken(*user, []byte(*secret), *ttl)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(tok)
}
