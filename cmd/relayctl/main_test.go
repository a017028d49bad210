package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"org-relay/auth"
	"org-relay/domain"

	"github.com/stretchr/testify/require"
)

func TestMintToken(t *testing.T) {
	req := require.New(t)
	config := ctlConfig{JWTSecret: "secret", JWTIssuer: "https://auth.test", AuthorizedParties: "https://app.test"}
	var out bytes.Buffer

	// When a token is minted for u1 of org1
	err := mintToken(config, []string{"-sub", "u1", "-org", "org1"}, &out)
	req.NoError(err)

	// Then the relay verifier accepts it
	verifier := auth.NewJWTVerifier([]byte("secret"), "https://auth.test", []string{"https://app.test"})
	token, err := verifier.Verify(context.Background(), strings.TrimSpace(out.String()))
	req.NoError(err)
	req.Equal("u1", token.SubjectID)
	req.Equal("org1", token.OrganizationID)
}

func TestMintToken_Requires_Subject(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	req.Error(mintToken(ctlConfig{JWTSecret: "secret"}, nil, &out))
	req.Error(mintToken(ctlConfig{}, []string{"-sub", "u1"}, &out))
}

func TestFetchUsers(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"userId":"u1","firstName":"Ada","lastName":"Lovelace","email":"ada@org1.test","status":"online"}]`))
	}))
	defer server.Close()

	users, err := fetchUsers(context.Background(), server.Client(), server.URL+"/", "good")
	req.NoError(err)
	req.Len(users, 1)
	req.Equal(domain.Online, users[0].Status)

	var out bytes.Buffer
	renderUsers(&out, users)
	req.Contains(out.String(), "Ada Lovelace")

	_, err = fetchUsers(context.Background(), server.Client(), server.URL, "bad")
	req.ErrorContains(err, "Unauthorized")
}
