package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"pos_backoffice_go/config"
	"pos_backoffice_go/services"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	email := flag.String("email", "", "back office user email")
	salePath := flag.String("sale", "", "path to the sale JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	payload, err := readSale(*salePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read sale")
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Register Sale ===")
	fmt.Println()

	if *email == "" {
		fmt.Print("Email: ")
		line, _ := reader.ReadString('\n')
		*email = strings.TrimSpace(line)
	}

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		logrus.WithError(err).Fatal("failed to read password")
	}
	password := string(passwordBytes)
	fmt.Println() // New line after password input

	if *email == "" || password == "" {
		logrus.Fatal("email and password are required")
	}

	client, err := services.NewHTTPBackofficeClient(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		logrus.WithError(err).Fatal("invalid back office configuration")
	}

	ctx := context.Background()
	session, err := client.Login(ctx, *email, password)
	if err != nil {
		logrus.WithError(err).Fatal(describe(err, "Error en login"))
	}
	fmt.Printf("✓ Logged in as %s\n", session.Label())

	created, err := client.RegisterSale(ctx, session.Token, payload)
	if err != nil {
		logrus.WithError(err).Fatal(describe(err, "Error registrando venta"))
	}

	out, _ := json.MarshalIndent(created, "", "  ")
	fmt.Println()
	fmt.Println("✓ Venta registrada exitosamente")
	fmt.Println(string(out))
}

// readSale loads the sale payload and checks it is a JSON object
func readSale(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, errors.New("-sale is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("sale is not a JSON object: %w", err)
	}
	return raw, nil
}

// describe prefers the back office's own message
func describe(err error, fallback string) string {
	var apiErr *services.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, services.ErrConnection):
		return "Error de conexión"
	default:
		return fallback
	}
}
