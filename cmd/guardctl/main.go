package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (*http.Response, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("SOCIALGUARD_URL", "http://localhost:8080")
		token   = envOr("SOCIALGUARD_TOKEN", "")
		out     = envOr("SOCIALGUARD_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "guardctl",
		Short: "CLI para consultar un servicio socialguard",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env SOCIALGUARD_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "token de sesión Bearer (env SOCIALGUARD_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "formato de salida: text|json (env SOCIALGUARD_OUT)")

	newClient := func() *client {
		// Sin seguir redirects: el redirect del guard ES la respuesta útil.
		return &client{
			BaseURL:   baseURL,
			Token:     token,
			OutFormat: out,
			HTTP: &http.Client{
				Timeout: 30 * time.Second,
				CheckRedirect: func(req *http.Request, via []*http.Request) error {
					return http.ErrUseLastResponse
				},
			},
		}
	}

	// guardctl health
	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Chequea liveness y readiness del servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			for _, path := range []string{"/healthz", "/readyz"} {
				resp, body, err := c.do(http.MethodGet, path, nil)
				if err != nil {
					return err
				}
				fmt.Printf("%s: ", path)
				c.print(resp.StatusCode, body)
			}
			return nil
		},
	})

	// guardctl check <path>
	var checkMethod string
	check := &cobra.Command{
		Use:   "check <path>",
		Short: "Prueba el acceso a un recurso y reporta qué providers faltan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			resp, body, err := c.do(strings.ToUpper(checkMethod), args[0], nil)
			if err != nil {
				return err
			}
			switch resp.StatusCode {
			case http.StatusFound:
				required := resp.Header.Get("X-Required-Providers")
				fmt.Printf("denied: connect one of [%s] (redirect: %s)\n",
					required, resp.Header.Get("Location"))
			case http.StatusForbidden:
				fmt.Println("denied: no provider combination grants access")
			default:
				fmt.Printf("status=%d\n", resp.StatusCode)
				c.print(resp.StatusCode, body)
			}
			return nil
		},
	}
	check.Flags().StringVar(&checkMethod, "method", "GET", "método HTTP a probar")
	root.AddCommand(check)

	// guardctl signup <username>
	root.AddCommand(&cobra.Command{
		Use:   "signup <username>",
		Short: "Envía un intento de sign-up con el username dado",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			payload, _ := json.Marshal(map[string]string{"username": args[0]})
			resp, body, err := c.do(http.MethodPost, "/signup", payload)
			if err != nil {
				return err
			}
			c.print(resp.StatusCode, body)
			return nil
		},
	})

	// guardctl me
	root.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Muestra el usuario autenticado y sus providers vinculados",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			resp, body, err := c.do(http.MethodGet, "/me", nil)
			if err != nil {
				return err
			}
			c.print(resp.StatusCode, body)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
