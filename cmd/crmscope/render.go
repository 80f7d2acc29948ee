package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoval/crmscope/internal/api"
	"github.com/dkoval/crmscope/internal/catalog"
	"github.com/dkoval/crmscope/internal/config"
	"github.com/dkoval/crmscope/internal/flowchart"
	"github.com/dkoval/crmscope/internal/hubspot"
)

var renderCmd = &cobra.Command{
	Use:   "render <workflow name or id>",
	Short: "Render a workflow's action graph as an ASCII diagram",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := hubspot.NewClientWithBaseURL(cfg.HubSpot.APIToken, cfg.HubSpot.BaseURL)
		workflows := catalog.NewWorkflowCache(client)

		flow, alternatives, err := api.ResolveFlow(cmd.Context(), workflows, query)
		if err != nil {
			return err
		}
		if len(alternatives) > 0 {
			printWarning("workflow name %q is ambiguous:", query)
			for _, alt := range alternatives {
				fmt.Printf("  - %s (id %s, score %.2f)\n", alt.Label, alt.Item.ID, alt.Score)
			}
			return fmt.Errorf("ambiguous workflow name")
		}

		fmt.Println(flowchart.Render(flow))
		return nil
	},
}
