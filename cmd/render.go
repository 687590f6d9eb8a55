package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/dusty-domains/internal/thanks"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <path> [key=value...]",
		Short: "Render one thanks page to stdout",
		Example: `  thanks render /thanks/example.com/
  thanks render /thanks/example.com/ name=Ada`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			query, err := parseQuery(args[1:])
			if err != nil {
				return err
			}

			resp := appInstance.Handler().Handle(cmd.Context(), thanks.Request{Path: args[0], Query: query})
			if resp.StatusCode != http.StatusOK {
				fmt.Fprintln(cmd.ErrOrStderr(), resp.Body)
				return fmt.Errorf("render %s: status %d", args[0], resp.StatusCode)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), resp.Body)
			return err
		},
	}
}

func parseQuery(pairs []string) (map[string]string, error) {
	query := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("query parameter %q must be key=value", pair)
		}
		query[key] = value
	}
	return query, nil
}
