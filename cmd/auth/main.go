// Command auth runs the token service.
//
//	auth [serve]                                   start the HTTP server
//	auth user-add -real-id ID -nickname N [-name NAME] [-role USER|ADMIN]
//	auth issue -sub ID                             print a token pair as JSON
//
// user-add and issue bootstrap the first admin: create the account, issue it
// a pair, then use that access token against POST /v1/auth/issue. issue needs
// the redis driver; the memory store forgets the refresh token on exit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/aussiebroadwan/tokenauth/internal/auth/app"
	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	switch cmd {
	case "serve":
		if err := application.Run(); err != nil {
			log.Fatalf("application error: %v", err)
		}

	case "user-add":
		defer application.Close()
		if err := userAdd(application, args); err != nil {
			log.Fatalf("user-add: %v", err)
		}

	case "issue":
		defer application.Close()
		if err := issue(application, args); err != nil {
			log.Fatalf("issue: %v", err)
		}

	default:
		_ = application.Close()
		log.Fatalf("unknown command %q (want serve, user-add or issue)", cmd)
	}
}

func userAdd(application *app.Application, args []string) error {
	fs := flag.NewFlagSet("user-add", flag.ContinueOnError)
	realID := fs.String("real-id", "", "stable user identifier, becomes the token subject")
	nickname := fs.String("nickname", "", "display nickname")
	name := fs.String("name", "", "full name")
	role := fs.String("role", domain.RoleUser.String(), "USER or ADMIN")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *realID == "" || *nickname == "" {
		return errors.New("-real-id and -nickname are required")
	}

	r, err := domain.ParseRole(*role)
	if err != nil {
		return err
	}

	u, err := application.CreateUser(context.Background(), domain.User{
		RealID:   *realID,
		Nickname: *nickname,
		Name:     *name,
		Role:     r,
	})
	if err != nil {
		return err
	}
	log.Printf("created user %d (%s)", u.ID, u.RealID)
	return nil
}

func issue(application *app.Application, args []string) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	sub := fs.String("sub", "", "RealID of the user to issue for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pair, err := application.IssueFor(context.Background(), *sub)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(authsdk.TokenResponse{
		GrantType:    pair.GrantType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresInSeconds(),
	})
}
