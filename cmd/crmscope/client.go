package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoval/crmscope/internal/config"
)

// apiClient talks to the local management endpoints of a running server.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var newAPIClient = func() (*apiClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	token, err := config.GetServerToken()
	if err != nil {
		return nil, fmt.Errorf("getting server token: %w", err)
	}

	return &apiClient{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server not reachable, is crmscope running? (%w)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var reportsCmd = &cobra.Command{
	Use:   "reports [id]",
	Short: "List archived reports, or print one report body",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			var report struct {
				Kind      string `json:"kind"`
				Subject   string `json:"subject"`
				Body      string `json:"body"`
				CreatedAt string `json:"created_at"`
			}
			if err := client.get(cmd.Context(), "/reports/"+args[0], &report); err != nil {
				return err
			}
			fmt.Printf("%s: %s (%s)\n\n%s\n", report.Kind, report.Subject, report.CreatedAt, report.Body)
			return nil
		}

		var reports []struct {
			ID        string `json:"id"`
			Kind      string `json:"kind"`
			Subject   string `json:"subject"`
			CreatedAt string `json:"created_at"`
		}
		if err := client.get(cmd.Context(), "/reports?limit=50", &reports); err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("no archived reports")
			return nil
		}
		for _, r := range reports {
			fmt.Printf("%s  %-18s %-24s %s\n", r.ID, r.Kind, r.Subject, r.CreatedAt)
		}
		return nil
	},
}
