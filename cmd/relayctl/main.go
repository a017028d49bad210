package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"org-relay/auth"
	"org-relay/domain"
	"org-relay/internal"
	"org-relay/transport/httpapi"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// ctlConfig is the subset of the relay configuration the CLI needs to mint tokens.
type ctlConfig struct {
	JWTSecret         string `env:"JWT_SECRET"`
	JWTIssuer         string `env:"JWT_ISSUER"`
	AuthorizedParties string `env:"AUTHORIZED_PARTIES"`
}

const usage = `usage:
  relayctl token -sub <subject> [-org <organization>] [-ttl 1h] [-azp <party>]
  relayctl users -url http://localhost:8080 -token <jwt>`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()
	var config ctlConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "token":
		err = mintToken(config, os.Args[2:], os.Stdout)
	case "users":
		err = listUsers(os.Args[2:], os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "relayctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func mintToken(config ctlConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("sub", "", "subject id")
	org := fs.String("org", "", "organization id, empty for a personal account")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	party := fs.String("azp", firstOrEmpty(internal.SplitList(config.AuthorizedParties)), "authorized party")
	secret := fs.String("secret", config.JWTSecret, "signing secret, defaults to JWT_SECRET")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return fmt.Errorf("-sub is required")
	}
	if *secret == "" {
		return fmt.Errorf("no signing secret, set JWT_SECRET or -secret")
	}

	token, err := auth.GenerateToken([]byte(*secret), config.JWTIssuer, *subject, *org, *party, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func listUsers(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	baseURL := fs.String("url", "http://localhost:8080", "relay base url")
	token := fs.String("token", "", "session token")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	users, err := fetchUsers(ctx, http.DefaultClient, *baseURL, *token)
	if err != nil {
		return err
	}
	renderUsers(out, users)
	return nil
}

func fetchUsers(ctx context.Context, client *http.Client, baseURL, token string) ([]httpapi.UserStatus, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/users", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("relay answered %d: %s", resp.StatusCode, body.Message)
	}

	var users []httpapi.UserStatus
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

func renderUsers(out io.Writer, users []httpapi.UserStatus) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"User", "Name", "Email", "Status"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")

	for _, user := range users {
		table.Append([]string{
			user.UserID,
			strings.TrimSpace(user.FirstName + " " + user.LastName),
			user.Email,
			statusLabel(user.Status),
		})
	}
	table.Render()
}

func statusLabel(status domain.PresenceStatus) string {
	if status == domain.Online {
		return color.FgGreen.Render(string(status))
	}
	return color.FgGray.Render(string(status))
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
